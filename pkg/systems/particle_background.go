package systems

import (
	"math"

	"github.com/decker502/bubblefx/pkg/components"
	"github.com/decker502/bubblefx/pkg/config"
	"github.com/decker502/bubblefx/pkg/graphics"
)

const (
	// backgroundCellArea 每多少平方像素按密度 1 放置一个背景粒子
	backgroundCellArea = 10000
	// backgroundDrift 背景粒子初速度范围 ±backgroundDrift 像素/秒
	backgroundDrift = 10
	// 背景粒子脉冲：scale = sin(t)·0.2 + 0.8
	backgroundPulseAmplitude = 0.2
	backgroundPulseOffset    = 0.8
	// backgroundZIndex 背景粒子排在其他粒子之下
	backgroundZIndex = -1
)

// BackgroundParticleCount returns how many ambient particles cover bounds at
// the given density (clamped to [0,1]) and quality.
func BackgroundParticleCount(density float64, bounds graphics.Viewport, quality float64) int {
	density = clampDensity(density)
	if density == 0 || bounds.Width <= 0 || bounds.Height <= 0 {
		return 0
	}
	quality = config.ClampQuality(quality)
	return int(math.Floor(bounds.Width * bounds.Height / backgroundCellArea * density * quality))
}

func clampDensity(density float64) float64 {
	if math.IsNaN(density) || density <= 0 {
		return 0
	}
	if density > 1 {
		return 1
	}
	return density
}

// CreateBackgroundParticles spawns slow ambient particles scattered across
// bounds using the theme's palette (unknown themes use the default one).
//
// Background particles never expire: they must be advanced with
// UpdateBackgroundParticles, not UpdateParticles, and returned to the pool
// explicitly.
func (m *ParticleLifecycleManager) CreateBackgroundParticles(density float64, theme string, bounds graphics.Viewport, quality float64) []*components.Particle {
	return m.build("createBackgroundParticles", func(out *[]*components.Particle) error {
		colors := config.GetBackgroundColors(theme)
		count := BackgroundParticleCount(density, bounds, quality)

		for i := 0; i < count; i++ {
			p := m.GetParticleFromPool()
			m.spawning = p

			p.X = bounds.X + m.rng.Float64()*bounds.Width
			p.Y = bounds.Y + m.rng.Float64()*bounds.Height
			p.VX = (m.rng.Float64()*2 - 1) * backgroundDrift
			p.VY = (m.rng.Float64()*2 - 1) * backgroundDrift
			p.Size = 1 + m.rng.Float64()*2
			p.Color = colors[m.rng.Intn(len(colors))]
			p.Alpha = 0.3 + m.rng.Float64()*0.4
			p.PulseSpeed = 1 + m.rng.Float64()*2
			p.Life, p.MaxLife = 1, 1
			p.Type = components.ShapeCircle
			p.ZIndex = backgroundZIndex

			m.spawning = nil
			*out = append(*out, p)
		}
		return nil
	})
}

// UpdateBackgroundParticles moves ambient particles by deltaTimeMs, bouncing
// them off the edges of bounds, and pulses their scale around 0.8 using the
// simulation clock. Life and alpha are left untouched.
func (m *ParticleLifecycleManager) UpdateBackgroundParticles(list []*components.Particle, deltaTimeMs float64, bounds graphics.Viewport) {
	dt := sanitizeDelta(deltaTimeMs) / 1000
	maxX, maxY := bounds.X+bounds.Width, bounds.Y+bounds.Height

	for _, p := range list {
		if p == nil || !p.IsActive {
			continue
		}

		p.X += p.VX * dt
		p.Y += p.VY * dt

		if p.X < bounds.X || p.X > maxX {
			p.VX = -p.VX
			p.X = math.Max(bounds.X, math.Min(maxX, p.X))
		}
		if p.Y < bounds.Y || p.Y > maxY {
			p.VY = -p.VY
			p.Y = math.Max(bounds.Y, math.Min(maxY, p.Y))
		}

		if p.PulseSpeed > 0 {
			p.Scale = math.Sin(m.nowMs*0.001*p.PulseSpeed)*backgroundPulseAmplitude + backgroundPulseOffset
			p.BaseScale = p.Scale
		}
	}
}
