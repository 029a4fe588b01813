package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/decker502/bubblefx/pkg/embedded"
)

func TestDefaultEffectsConfig(t *testing.T) {
	cfg := DefaultEffectsConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should be valid, got %v", err)
	}
	if cfg.Particles.MaxCount != 500 {
		t.Errorf("MaxCount: got %d, want 500", cfg.Particles.MaxCount)
	}
	if cfg.Particles.PoolSize != 100 {
		t.Errorf("PoolSize: got %d, want 100", cfg.Particles.PoolSize)
	}
	if cfg.Particles.BoundaryY != 600 {
		t.Errorf("BoundaryY: got %v, want 600", cfg.Particles.BoundaryY)
	}
	if cfg.Particles.Bubble.Count != 15 {
		t.Errorf("Bubble.Count: got %d, want 15", cfg.Particles.Bubble.Count)
	}
	if got := len(cfg.QualityLevels); got != 4 {
		t.Errorf("QualityLevels: got %d entries, want 4", got)
	}
}

func TestParseEffectsConfig(t *testing.T) {
	tests := []struct {
		name        string
		yamlContent string
		wantErr     bool
		errContains string
		validate    func(*testing.T, *EffectsConfig)
	}{
		{
			name: "partial override keeps defaults",
			yamlContent: `
particles:
  maxCount: 200
  bubble:
    count: 20
    size: 3
    speed: 120
    life: 900
`,
			validate: func(t *testing.T, cfg *EffectsConfig) {
				if cfg.Particles.MaxCount != 200 {
					t.Errorf("expected maxCount = 200, got %d", cfg.Particles.MaxCount)
				}
				if cfg.Particles.Bubble.Count != 20 {
					t.Errorf("expected bubble count = 20, got %d", cfg.Particles.Bubble.Count)
				}
				// 未覆盖的字段保留默认值
				if cfg.Particles.Star.Count != 10 {
					t.Errorf("expected star count = 10, got %d", cfg.Particles.Star.Count)
				}
				if cfg.Particles.BoundaryY != 600 {
					t.Errorf("expected boundaryY = 600, got %v", cfg.Particles.BoundaryY)
				}
			},
		},
		{
			name: "custom boundary",
			yamlContent: `
particles:
  boundaryY: 768
`,
			validate: func(t *testing.T, cfg *EffectsConfig) {
				if cfg.Particles.BoundaryY != 768 {
					t.Errorf("expected boundaryY = 768, got %v", cfg.Particles.BoundaryY)
				}
			},
		},
		{
			name: "zero boundary rejected",
			yamlContent: `
particles:
  boundaryY: 0
`,
			wantErr:     true,
			errContains: "boundaryY",
		},
		{
			name: "negative quality rejected",
			yamlContent: `
particles:
  quality: -1
`,
			wantErr:     true,
			errContains: "quality",
		},
		{
			name: "unknown default level",
			yamlContent: `
defaultLevel: extreme
`,
			wantErr:     true,
			errContains: "extreme",
		},
		{
			name: "bad particle life",
			yamlContent: `
particles:
  star:
    count: 10
    life: 0
`,
			wantErr:     true,
			errContains: "star",
		},
		{
			name: "zero bubble speed rejected",
			yamlContent: `
particles:
  bubble:
    speed: 0
`,
			wantErr:     true,
			errContains: "bubble.speed",
		},
		{
			name: "zero star speed rejected",
			yamlContent: `
particles:
  star:
    speed: 0
`,
			wantErr:     true,
			errContains: "star.speed",
		},
		{
			name: "negative explosion speed rejected",
			yamlContent: `
particles:
  explosion:
    speed: -10
`,
			wantErr:     true,
			errContains: "explosion.speed",
		},
		{
			name:        "malformed yaml",
			yamlContent: "particles: [",
			wantErr:     true,
			errContains: "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := ParseEffectsConfig([]byte(tt.yamlContent))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("expected error containing %q, got %v", tt.errContains, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.validate != nil {
				tt.validate(t, cfg)
			}
		})
	}
}

func TestLoadEffectsConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "effects.yaml")
	content := `
particles:
  poolSize: 64
defaultLevel: medium
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := LoadEffectsConfig(path)
	if err != nil {
		t.Fatalf("LoadEffectsConfig() error: %v", err)
	}
	if cfg.Particles.PoolSize != 64 {
		t.Errorf("PoolSize: got %d, want 64", cfg.Particles.PoolSize)
	}
	if cfg.DefaultLevel != QualityMedium {
		t.Errorf("DefaultLevel: got %q, want %q", cfg.DefaultLevel, QualityMedium)
	}

	if _, err := LoadEffectsConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

// TestLoadEmbeddedEffectsConfig 仓库自带的 data/effects.yaml 必须与默认配置一致
func TestLoadEmbeddedEffectsConfig(t *testing.T) {
	embedded.Init(os.DirFS(filepath.Join("..", "..")))
	t.Cleanup(func() { embedded.Init(nil) })

	cfg, err := LoadEmbeddedEffectsConfig("data/effects.yaml")
	if err != nil {
		t.Fatalf("LoadEmbeddedEffectsConfig() error: %v", err)
	}
	def := DefaultEffectsConfig()
	if cfg.Particles != def.Particles {
		t.Errorf("Particles: got %+v, want %+v", cfg.Particles, def.Particles)
	}
	if cfg.DefaultLevel != def.DefaultLevel {
		t.Errorf("DefaultLevel: got %q, want %q", cfg.DefaultLevel, def.DefaultLevel)
	}
	for _, name := range def.LevelNames() {
		got, ok := cfg.QualityLevel(name)
		want, _ := def.QualityLevel(name)
		if !ok || got != want {
			t.Errorf("level %s: got %+v (ok=%v), want %+v", name, got, ok, want)
		}
	}

	if _, err := LoadEmbeddedEffectsConfig("data/missing.yaml"); err == nil {
		t.Error("expected error for missing embedded file")
	}
}

func TestLevelNames(t *testing.T) {
	cfg := DefaultEffectsConfig()
	cfg.QualityLevels["custom"] = QualityLevelSettings{ParticleQuality: 0.5, MaxParticles: 50}

	got := cfg.LevelNames()
	want := []string{"low", "medium", "high", "ultra", "custom"}
	if len(got) != len(want) {
		t.Fatalf("LevelNames: got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("LevelNames[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestClampQuality(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.3, 0.3},
		{1.0, 1.0},
		{1.5, 1.0},
		{0, 1.0},
		{-2, 1.0},
	}
	for _, tt := range tests {
		if got := ClampQuality(tt.in); got != tt.want {
			t.Errorf("ClampQuality(%v): got %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestGetBubbleColors(t *testing.T) {
	if got := len(BubblePalettes); got != 14 {
		t.Errorf("palette table: got %d entries, want 14", got)
	}
	if got := len(GetBubbleColors("rainbow")); got != 7 {
		t.Errorf("rainbow palette: got %d colors, want 7", got)
	}

	normal := GetBubbleColors("normal")
	unknown := GetBubbleColors("does-not-exist")
	if len(unknown) != len(normal) || unknown[0] != normal[0] {
		t.Errorf("unknown type should fall back to normal palette, got %v", unknown)
	}
}

func TestGetBackgroundColors(t *testing.T) {
	if got := len(BackgroundPalettes); got != len(BackgroundThemeOrder) {
		t.Errorf("theme table: got %d entries, want %d", got, len(BackgroundThemeOrder))
	}
	for _, theme := range BackgroundThemeOrder {
		if len(GetBackgroundColors(theme)) == 0 {
			t.Errorf("theme %q has no colors", theme)
		}
	}

	night := GetBackgroundColors("night")
	if night[0] != "#2C2C54" {
		t.Errorf("night palette: got %v", night)
	}

	def := GetBackgroundColors(DefaultBackgroundTheme)
	unknown := GetBackgroundColors("volcano")
	if len(unknown) != len(def) || unknown[0] != def[0] {
		t.Errorf("unknown theme should fall back to default palette, got %v", unknown)
	}
}
