package systems

import (
	"fmt"
	"log"

	"github.com/decker502/bubblefx/internal/particle"
	"github.com/decker502/bubblefx/pkg/components"
	"github.com/decker502/bubblefx/pkg/config"
	"github.com/decker502/bubblefx/pkg/game"
	"github.com/decker502/bubblefx/pkg/graphics"
)

// 自适应品质的帧率阈值
const (
	lowFPSThreshold  = 30
	highFPSThreshold = 55
)

// ParticleManager wires the lifecycle manager and the renderer into the
// game loop: factories on gameplay events, one Update per frame, then Render.
//
// It also enforces the configured particle cap, the enabled flag and the
// current quality level.
type ParticleManager struct {
	config    *config.EffectsConfig
	lifecycle *ParticleLifecycleManager
	renderer  *ParticleRenderer

	active []*components.Particle

	// 背景粒子单独保存，不计入上限，也不会过期
	background        []*components.Particle
	backgroundDensity float64
	backgroundTheme   string
	backgroundBounds  graphics.Viewport

	enabled      bool
	qualityLevel string
	quality      float64
	maxParticles int

	// 帧率自适应需要连续多帧越界才调整，避免来回抖动
	lowFrames  int
	highFrames int
}

// adaptiveFrames 连续越界多少帧后调整品质
const adaptiveFrames = 30

// NewParticleManager creates a particle manager from the effects config.
// A nil cfg uses config.DefaultEffectsConfig(); a nil handler logs errors.
func NewParticleManager(cfg *config.EffectsConfig, handler game.ErrorHandler, seed int64) (*ParticleManager, error) {
	if cfg == nil {
		cfg = config.DefaultEffectsConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid effects config: %w", err)
	}

	lifecycle, err := NewParticleLifecycleManager(LifecycleConfig{
		PoolSize:       cfg.Particles.PoolSize,
		BoundaryY:      cfg.Particles.BoundaryY,
		MaxTrailLength: cfg.Particles.MaxTrailLength,
		Seed:           seed,
	}, handler)
	if err != nil {
		return nil, err
	}
	lifecycle.InitializePool(cfg.Particles.PoolSize)

	pm := &ParticleManager{
		config:       cfg,
		lifecycle:    lifecycle,
		renderer:     NewParticleRenderer(seed),
		active:       make([]*components.Particle, 0, cfg.Particles.MaxCount),
		enabled:      cfg.Particles.Enabled,
		quality:      config.ClampQuality(cfg.Particles.Quality),
		maxParticles: cfg.Particles.MaxCount,
	}

	if cfg.DefaultLevel != "" {
		if err := pm.SetQualityLevel(cfg.DefaultLevel); err != nil {
			return nil, err
		}
	}

	log.Printf("[ParticleManager] Initialized (pool=%d, max=%d, quality=%s/%.2f)",
		cfg.Particles.PoolSize, pm.maxParticles, pm.qualityLevel, pm.quality)
	return pm, nil
}

// Lifecycle returns the underlying lifecycle manager.
func (pm *ParticleManager) Lifecycle() *ParticleLifecycleManager {
	return pm.lifecycle
}

// Renderer returns the underlying renderer.
func (pm *ParticleManager) Renderer() *ParticleRenderer {
	return pm.renderer
}

// LoadPresets overlays effect presets (see ParticleLifecycleManager.LoadPresets).
func (pm *ParticleManager) LoadPresets(file *particle.PresetFile) error {
	return pm.lifecycle.LoadPresets(file)
}

// SetEnabled turns particle spawning on or off. Disabling clears all
// particles.
func (pm *ParticleManager) SetEnabled(enabled bool) {
	if pm.enabled == enabled {
		return
	}
	pm.enabled = enabled
	if enabled {
		pm.rebuildBackground()
	} else {
		pm.Clear()
		pm.releaseBackground()
	}
	log.Printf("[ParticleManager] Particles enabled: %v", enabled)
}

// Enabled reports whether particles are enabled.
func (pm *ParticleManager) Enabled() bool {
	return pm.enabled
}

// SetQualityLevel switches to a configured quality level. The level's
// quality scalar is clamped into (0,1].
func (pm *ParticleManager) SetQualityLevel(name string) error {
	level, ok := pm.config.QualityLevel(name)
	if !ok {
		return fmt.Errorf("unknown quality level %q", name)
	}

	pm.qualityLevel = name
	pm.quality = config.ClampQuality(level.ParticleQuality)
	pm.maxParticles = level.MaxParticles
	if pm.maxParticles > pm.config.Particles.MaxCount {
		pm.maxParticles = pm.config.Particles.MaxCount
	}
	pm.trimToLimit()
	pm.rebuildBackground()
	return nil
}

// QualityLevel returns the current quality level name ("" when none has been
// selected).
func (pm *ParticleManager) QualityLevel() string {
	return pm.qualityLevel
}

// Quality returns the current quality scalar in (0,1].
func (pm *ParticleManager) Quality() float64 {
	return pm.quality
}

// ParticleCountMultiplier returns the factor the current quality applies to
// particle counts.
func (pm *ParticleManager) ParticleCountMultiplier() float64 {
	return pm.quality
}

// complexity 品质档位复杂度：low 1，medium 2，其余 3
func (pm *ParticleManager) complexity() int {
	switch pm.qualityLevel {
	case config.QualityLow:
		return 1
	case config.QualityMedium:
		return 2
	default:
		return 3
	}
}

// ShouldRenderEffect reports whether an effect of the given 1-10 priority is
// shown at the current quality level: low shows priority 8 and up, medium 5
// and up, higher levels everything.
func (pm *ParticleManager) ShouldRenderEffect(priority int) bool {
	switch pm.complexity() {
	case 1:
		return priority >= 8
	case 2:
		return priority >= 5
	default:
		return true
	}
}

// MaxParticles returns the active particle cap.
func (pm *ParticleManager) MaxParticles() int {
	return pm.maxParticles
}

// AdjustQualityForFPS steps the quality level down after sustained frame
// rates below 30 fps and up after sustained rates above 55 fps. It returns
// true when the level changed.
func (pm *ParticleManager) AdjustQualityForFPS(fps float64) bool {
	switch {
	case fps < lowFPSThreshold:
		pm.lowFrames++
		pm.highFrames = 0
	case fps > highFPSThreshold:
		pm.highFrames++
		pm.lowFrames = 0
	default:
		pm.lowFrames, pm.highFrames = 0, 0
		return false
	}

	step := 0
	if pm.lowFrames >= adaptiveFrames {
		step = -1
	} else if pm.highFrames >= adaptiveFrames {
		step = 1
	}
	if step == 0 {
		return false
	}
	pm.lowFrames, pm.highFrames = 0, 0

	levels := pm.config.LevelNames()
	idx := -1
	for i, name := range levels {
		if name == pm.qualityLevel {
			idx = i
			break
		}
	}
	next := idx + step
	if idx < 0 || next < 0 || next >= len(levels) {
		return false
	}
	if err := pm.SetQualityLevel(levels[next]); err != nil {
		return false
	}
	log.Printf("[ParticleManager] Quality adjusted to %s (fps=%.1f)", levels[next], fps)
	return true
}

// add appends spawned particles, returning any beyond the cap to the pool.
func (pm *ParticleManager) add(spawned []*components.Particle) int {
	added := 0
	for _, p := range spawned {
		if len(pm.active) >= pm.maxParticles {
			pm.lifecycle.ReturnParticleToPool(p)
			continue
		}
		pm.active = append(pm.active, p)
		added++
	}
	return added
}

// trimToLimit 品质下降后丢弃超出上限的最旧粒子
func (pm *ParticleManager) trimToLimit() {
	excess := len(pm.active) - pm.maxParticles
	if excess <= 0 {
		return
	}
	for _, p := range pm.active[:excess] {
		pm.lifecycle.ReturnParticleToPool(p)
	}
	n := copy(pm.active, pm.active[excess:])
	for i := n; i < len(pm.active); i++ {
		pm.active[i] = nil
	}
	pm.active = pm.active[:n]
}

// CreateBubbleEffect spawns the full pop effect for a bubble and returns the
// number of particles added.
func (pm *ParticleManager) CreateBubbleEffect(x, y float64, bubbleType string, size float64) int {
	if !pm.enabled {
		return 0
	}
	return pm.add(pm.lifecycle.CreateAdvancedBubbleEffect(x, y, bubbleType, size, pm.config, pm.quality))
}

// CreateComboEffect spawns combo stars.
func (pm *ParticleManager) CreateComboEffect(x, y float64, combo int) int {
	if !pm.enabled {
		return 0
	}
	return pm.add(pm.lifecycle.CreateComboStars(x, y, combo, pm.config, pm.quality))
}

// CreateSpecialEffect spawns one of the colour-driven effects at the given
// intensity (1 is nominal; see ParticleLifecycleManager.CreateSpecialBubbleEffect).
// Effects whose priority is too low for the current quality level are skipped.
func (pm *ParticleManager) CreateSpecialEffect(kind EffectKind, x, y float64, color string, intensity float64) int {
	if !pm.enabled || !pm.ShouldRenderEffect(EffectPriority(kind)) {
		return 0
	}
	return pm.add(pm.lifecycle.CreateSpecialBubbleEffect(kind, x, y, color, intensity, pm.config, pm.quality))
}

// ComboType selects how elaborate a combo effect is.
type ComboType string

const (
	ComboBasic       ComboType = "basic"
	ComboEnhanced    ComboType = "enhanced"
	ComboSpectacular ComboType = "spectacular"
)

// 连击档位阈值
const (
	enhancedComboAt    = 5
	spectacularComboAt = 10
)

const comboGold = "#FFD700"

// ComboTypeFor picks the combo type for a combo count.
func ComboTypeFor(combo int) ComboType {
	switch {
	case combo >= spectacularComboAt:
		return ComboSpectacular
	case combo >= enhancedComboAt:
		return ComboEnhanced
	default:
		return ComboBasic
	}
}

// CreateEnhancedComboEffect spawns combo stars plus extras for the combo
// type: enhanced adds gold sparkles, spectacular adds stronger sparkles and
// a gold explosion that grows with the combo. Unknown types behave like
// basic. The extras are subject to ShouldRenderEffect.
func (pm *ParticleManager) CreateEnhancedComboEffect(x, y float64, combo int, comboType ComboType) int {
	if !pm.enabled {
		return 0
	}
	added := pm.CreateComboEffect(x, y, combo)

	switch comboType {
	case ComboEnhanced:
		added += pm.CreateSpecialEffect(EffectSparkles, x, y, comboGold, 1)
	case ComboSpectacular:
		added += pm.CreateSpecialEffect(EffectSparkles, x, y, comboGold, 1.5)
		added += pm.CreateSpecialEffect(EffectExplosion, x, y, comboGold, float64(combo)/spectacularComboAt)
	}
	return added
}

// CreateBackgroundParticles replaces the ambient background with particles
// covering bounds at density (0-1) in the given theme. A density of 0 removes
// the background. It returns the number of background particles.
//
// Background particles are kept apart from the effect particles: they do not
// count against MaxParticles and are rebuilt when the quality level changes
// or particles are re-enabled.
func (pm *ParticleManager) CreateBackgroundParticles(density float64, theme string, bounds graphics.Viewport) int {
	pm.backgroundDensity = clampDensity(density)
	pm.backgroundTheme = theme
	pm.backgroundBounds = bounds
	pm.rebuildBackground()
	log.Printf("[ParticleManager] Background particles: %d (density=%.2f, theme=%s)",
		len(pm.background), pm.backgroundDensity, theme)
	return len(pm.background)
}

func (pm *ParticleManager) rebuildBackground() {
	pm.releaseBackground()
	if !pm.enabled || pm.backgroundDensity == 0 {
		return
	}
	pm.background = pm.lifecycle.CreateBackgroundParticles(pm.backgroundDensity, pm.backgroundTheme, pm.backgroundBounds, pm.quality)
}

func (pm *ParticleManager) releaseBackground() {
	pm.background = pm.lifecycle.ClearAllParticles(pm.background)
}

// BackgroundParticles returns the ambient particles. Callers must not retain
// the slice across calls that rebuild the background.
func (pm *ParticleManager) BackgroundParticles() []*components.Particle {
	return pm.background
}

// BackgroundCount returns the number of ambient particles.
func (pm *ParticleManager) BackgroundCount() int {
	return len(pm.background)
}

// BackgroundDensity returns the background density in [0,1].
func (pm *ParticleManager) BackgroundDensity() float64 {
	return pm.backgroundDensity
}

// BackgroundTheme returns the current background theme.
func (pm *ParticleManager) BackgroundTheme() string {
	return pm.backgroundTheme
}

// Update advances all particles by dtMs milliseconds.
func (pm *ParticleManager) Update(dtMs float64) {
	pm.active = pm.lifecycle.UpdateParticles(pm.active, dtMs)
	pm.lifecycle.UpdateBackgroundParticles(pm.background, dtMs, pm.backgroundBounds)
}

// Render draws the background and then the active particles, culled to
// viewport when non-nil.
func (pm *ParticleManager) Render(s graphics.Surface, viewport *graphics.Viewport) int {
	if !pm.enabled {
		return 0
	}
	drawn := pm.renderer.RenderOptimized(s, pm.background, viewport)
	return drawn + pm.renderer.RenderOptimized(s, pm.active, viewport)
}

// ActiveParticles returns the live particle slice. Callers must not retain
// it across Update calls.
func (pm *ParticleManager) ActiveParticles() []*components.Particle {
	return pm.active
}

// ActiveCount returns the number of live particles.
func (pm *ParticleManager) ActiveCount() int {
	return len(pm.active)
}

// Statistics returns the lifecycle statistics.
func (pm *ParticleManager) Statistics() LifecycleStatistics {
	return pm.lifecycle.GetStatistics()
}

// Clear returns every live effect particle to the pool. The background is
// kept.
func (pm *ParticleManager) Clear() {
	pm.active = pm.lifecycle.ClearAllParticles(pm.active)
}

// OptimizeMemory trims the pool and decays statistics.
func (pm *ParticleManager) OptimizeMemory() {
	pm.lifecycle.OptimizeMemoryUsage()
}
