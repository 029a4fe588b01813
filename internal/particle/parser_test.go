package particle

import (
	"testing"
	"testing/fstest"

	"github.com/decker502/bubblefx/pkg/components"
	"github.com/decker502/bubblefx/pkg/embedded"
)

const testPresetYAML = `
effects:
  sparkles:
    shape: star
    gravity: "-12"
    pulseSpeed: "[2 4]"
  shards:
    bounce: "[0.2 0.5]"
    trailLength: 4
`

func basePreset() Preset {
	return Preset{
		Shape:      components.ShapeCircle,
		Speed:      Fixed(100),
		Life:       Fixed(800),
		LifeJitter: Between(0.2, 0.4),
		Size:       Between(2, 4),
		Friction:   Fixed(0.98),
	}
}

// TestParsePresetYAML tests parsing a preset document
func TestParsePresetYAML(t *testing.T) {
	file, err := ParsePresetYAML([]byte(testPresetYAML))
	if err != nil {
		t.Fatalf("ParsePresetYAML error: %v", err)
	}
	if len(file.Effects) != 2 {
		t.Fatalf("Expected 2 effects, got %d", len(file.Effects))
	}

	sparkles := file.Effects["sparkles"]
	if sparkles.Shape != "star" {
		t.Errorf("sparkles shape: got %q, want star", sparkles.Shape)
	}
	if sparkles.TrailLength != nil {
		t.Errorf("sparkles trailLength should be unset, got %d", *sparkles.TrailLength)
	}
	if shards := file.Effects["shards"]; shards.TrailLength == nil || *shards.TrailLength != 4 {
		t.Errorf("shards trailLength: got %v, want 4", shards.TrailLength)
	}
}

// TestParsePresetYAML_Errors tests rejection of empty and malformed documents
func TestParsePresetYAML_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Empty", ""},
		{"No effects", "effects: {}\n"},
		{"Bad yaml", "effects: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePresetYAML([]byte(tt.input)); err == nil {
				t.Error("Expected error")
			}
		})
	}
}

// TestLoadPresetFile tests loading through the embedded filesystem
func TestLoadPresetFile(t *testing.T) {
	embedded.Init(fstest.MapFS{
		"data/effect_presets.yaml": {Data: []byte(testPresetYAML)},
	})
	defer embedded.Init(nil)

	file, err := LoadPresetFile("data/effect_presets.yaml")
	if err != nil {
		t.Fatalf("LoadPresetFile error: %v", err)
	}
	if _, ok := file.Effects["shards"]; !ok {
		t.Error("Expected shards preset")
	}

	if _, err := LoadPresetFile("data/missing.yaml"); err == nil {
		t.Error("Expected error for missing file")
	}
}

// TestPresetConfig_Apply tests overlaying file values on a compiled preset
func TestPresetConfig_Apply(t *testing.T) {
	trail := 6
	cfg := PresetConfig{
		Shape:       "lightning",
		Gravity:     "[20 50]",
		Bounce:      "0.5",
		TrailLength: &trail,
	}

	got, err := cfg.Apply(basePreset())
	if err != nil {
		t.Fatalf("Apply error: %v", err)
	}
	if got.Shape != components.ShapeLightning {
		t.Errorf("Shape: got %v, want lightning", got.Shape)
	}
	if got.Gravity != Between(20, 50) {
		t.Errorf("Gravity: got %v, want [20 50]", got.Gravity)
	}
	if got.Bounce != Fixed(0.5) {
		t.Errorf("Bounce: got %v, want 0.5", got.Bounce)
	}
	if got.TrailLength != 6 {
		t.Errorf("TrailLength: got %d, want 6", got.TrailLength)
	}
	// 未配置的字段保持默认值
	if got.Speed != Fixed(100) {
		t.Errorf("Speed should keep default, got %v", got.Speed)
	}
}

// TestPresetConfig_ApplyRejectsInvalid tests validation of overlaid values
func TestPresetConfig_ApplyRejectsInvalid(t *testing.T) {
	tooLong := components.MaxTrailCapacity + 1
	tests := []struct {
		name string
		cfg  PresetConfig
	}{
		{"Unknown shape", PresetConfig{Shape: "hexagon"}},
		{"Zero friction", PresetConfig{Friction: "0"}},
		{"Friction above one", PresetConfig{Friction: "[0.9 1.2]"}},
		{"Negative bounce", PresetConfig{Bounce: "-0.1"}},
		{"Bad range", PresetConfig{Gravity: "[1 2"}},
		{"Non-positive life", PresetConfig{Life: "0"}},
		{"Trail too long", PresetConfig{TrailLength: &tooLong}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base := basePreset()
			got, err := tt.cfg.Apply(base)
			if err == nil {
				t.Fatal("Expected error")
			}
			if got != base {
				t.Error("Apply should return the base preset on error")
			}
		})
	}
}
