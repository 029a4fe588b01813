// Package particle provides data structures and parsing functionality for
// bubble effect presets.
//
// Presets describe the physics and appearance parameters a particle factory
// applies when it spawns an effect. They are normally compiled into the
// systems package, and may be overridden by a YAML preset file whose values
// use the range notation understood by ParseValue.
package particle

import (
	"fmt"

	"github.com/decker502/bubblefx/pkg/components"
)

// PresetFile represents the root structure of an effect preset file.
type PresetFile struct {
	Effects map[string]PresetConfig `yaml:"effects"`
}

// PresetConfig is the raw, file-level form of a single effect preset.
//
// Numeric fields are strings so they can hold either:
//   - Fixed values: "20"
//   - Ranges: "[20 50]" (random value between min and max)
//
// Empty fields keep the compiled default for that effect.
type PresetConfig struct {
	Shape         string `yaml:"shape,omitempty"`         // circle, star, diamond ...
	Speed         string `yaml:"speed,omitempty"`         // Launch speed (像素/秒)
	Life          string `yaml:"life,omitempty"`          // Nominal lifetime (毫秒)
	LifeJitter    string `yaml:"lifeJitter,omitempty"`    // Fraction of life added/removed at random
	Size          string `yaml:"size,omitempty"`          // Radius (像素)
	Gravity       string `yaml:"gravity,omitempty"`       // 像素/秒², negative rises
	Friction      string `yaml:"friction,omitempty"`      // Velocity multiplier per frame
	Bounce        string `yaml:"bounce,omitempty"`        // Floor restitution
	RotationSpeed string `yaml:"rotationSpeed,omitempty"` // 弧度/秒
	ScaleSpeed    string `yaml:"scaleSpeed,omitempty"`    // Scale units per second
	PulseSpeed    string `yaml:"pulseSpeed,omitempty"`    // Pulse frequency factor
	TrailLength   *int   `yaml:"trailLength,omitempty"`   // Trail points kept, 0 disables
}

// Preset is the resolved form of PresetConfig used by the factories.
type Preset struct {
	Shape         components.ShapeType
	Speed         Range
	Life          Range
	LifeJitter    Range
	Size          Range
	Gravity       Range
	Friction      Range
	Bounce        Range
	RotationSpeed Range
	ScaleSpeed    Range
	PulseSpeed    Range
	TrailLength   int
}

// Apply overlays the non-empty fields of cfg onto a copy of base.
func (cfg PresetConfig) Apply(base Preset) (Preset, error) {
	out := base

	if cfg.Shape != "" {
		shape, ok := components.ParseShapeType(cfg.Shape)
		if !ok {
			return base, fmt.Errorf("unknown shape %q", cfg.Shape)
		}
		out.Shape = shape
	}

	fields := []struct {
		name string
		raw  string
		dst  *Range
	}{
		{"speed", cfg.Speed, &out.Speed},
		{"life", cfg.Life, &out.Life},
		{"lifeJitter", cfg.LifeJitter, &out.LifeJitter},
		{"size", cfg.Size, &out.Size},
		{"gravity", cfg.Gravity, &out.Gravity},
		{"friction", cfg.Friction, &out.Friction},
		{"bounce", cfg.Bounce, &out.Bounce},
		{"rotationSpeed", cfg.RotationSpeed, &out.RotationSpeed},
		{"scaleSpeed", cfg.ScaleSpeed, &out.ScaleSpeed},
		{"pulseSpeed", cfg.PulseSpeed, &out.PulseSpeed},
	}
	for _, f := range fields {
		if f.raw == "" {
			continue
		}
		r, err := ParseValue(f.raw)
		if err != nil {
			return base, fmt.Errorf("field %s: %w", f.name, err)
		}
		*f.dst = r
	}

	if cfg.TrailLength != nil {
		if *cfg.TrailLength < 0 || *cfg.TrailLength > components.MaxTrailCapacity {
			return base, fmt.Errorf("trailLength %d out of range [0, %d]", *cfg.TrailLength, components.MaxTrailCapacity)
		}
		out.TrailLength = *cfg.TrailLength
	}

	if err := out.Validate(); err != nil {
		return base, err
	}
	return out, nil
}

// Validate checks the physical constraints of a preset.
func (p Preset) Validate() error {
	if p.Friction.Min <= 0 || p.Friction.Max > 1 {
		return fmt.Errorf("friction %s must lie in (0, 1]", p.Friction)
	}
	if p.Bounce.Min < 0 || p.Bounce.Max > 1 {
		return fmt.Errorf("bounce %s must lie in [0, 1]", p.Bounce)
	}
	if p.Life.Min <= 0 {
		return fmt.Errorf("life %s must be positive", p.Life)
	}
	if p.LifeJitter.Min < 0 || p.LifeJitter.Max >= 1 {
		return fmt.Errorf("lifeJitter %s must lie in [0, 1)", p.LifeJitter)
	}
	if p.Size.Min < 0 {
		return fmt.Errorf("size %s must not be negative", p.Size)
	}
	return nil
}
