// Package scenes contains the demo scenes that drive the particle engine
// from gameplay events.
package scenes

import (
	"fmt"
	"image/color"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/bubblefx/pkg/config"
	"github.com/decker502/bubblefx/pkg/game"
	"github.com/decker502/bubblefx/pkg/graphics"
	"github.com/decker502/bubblefx/pkg/systems"
	"github.com/decker502/bubblefx/pkg/telemetry"
	"github.com/decker502/bubblefx/pkg/utils"
)

const (
	// comboWindow 连击判定窗口（秒）
	comboWindow = 1.5
	// comboThreshold 连击数达到该值后出现连击星星
	comboThreshold = 3
	// optimizeInterval 每隔多少帧整理一次对象池
	optimizeInterval = 600
	// defaultBackgroundDensity 切换主题时使用的背景密度
	defaultBackgroundDensity = 0.3
)

var backgroundColor = color.RGBA{R: 18, G: 24, B: 44, A: 255}

// qualityKeys 数字键 → 品质档位
var qualityKeys = []struct {
	key   ebiten.Key
	level string
}{
	{ebiten.Key1, config.QualityLow},
	{ebiten.Key2, config.QualityMedium},
	{ebiten.Key3, config.QualityHigh},
	{ebiten.Key4, config.QualityUltra},
}

// BubbleSceneConfig 演示场景参数
type BubbleSceneConfig struct {
	Width, Height int
	Seed          int64

	// BackgroundDensity 背景粒子密度（0-1），0 表示不显示背景
	BackgroundDensity float64
	// BackgroundTheme 背景主题，未知主题使用 default
	BackgroundTheme string
}

// BubbleScene is the bubble popping demo: bubbles float up, clicks pop
// them and the particle manager renders the resulting effects.
type BubbleScene struct {
	width, height float64

	field     *BubbleField
	painter   *bubblePainter
	particles *systems.ParticleManager
	settings  *game.EffectSettingsManager
	stats     *telemetry.StatsRecorder
	surface   *graphics.EbitenSurface
	viewport  graphics.Viewport

	score      int
	combo      int
	comboTimer float64
	frame      int

	// fps 返回当前帧率，测试中可替换
	fps      func() float64
	pointers []utils.PointerPress
}

// NewBubbleScene creates the demo scene. settings may be nil (memory-only
// settings) and stats may be nil (export disabled). The persisted quality
// level and particle switch are applied to pm.
func NewBubbleScene(pm *systems.ParticleManager, settings *game.EffectSettingsManager, stats *telemetry.StatsRecorder, cfg BubbleSceneConfig) *BubbleScene {
	s := &BubbleScene{
		width:     float64(cfg.Width),
		height:    float64(cfg.Height),
		field:     NewBubbleField(float64(cfg.Width), float64(cfg.Height), cfg.Seed),
		painter:   newBubblePainter(),
		particles: pm,
		settings:  settings,
		stats:     stats,
		viewport:  graphics.Viewport{Width: float64(cfg.Width), Height: float64(cfg.Height)},
		fps:       ebiten.ActualFPS,
	}

	if settings != nil {
		current := settings.GetSettings()
		if err := pm.SetQualityLevel(current.QualityLevel); err != nil {
			log.Printf("[BubbleScene] Warning: saved quality level rejected: %v", err)
		}
		pm.SetEnabled(current.ParticlesOn)
	}
	if cfg.BackgroundDensity > 0 {
		pm.CreateBackgroundParticles(cfg.BackgroundDensity, cfg.BackgroundTheme, s.viewport)
	}

	log.Printf("[BubbleScene] Created (%dx%d, quality=%s)", cfg.Width, cfg.Height, pm.QualityLevel())
	return s
}

// Field returns the bubble field.
func (s *BubbleScene) Field() *BubbleField {
	return s.field
}

// Score returns the number of popped bubbles.
func (s *BubbleScene) Score() int {
	return s.score
}

// Combo returns the current combo count.
func (s *BubbleScene) Combo() int {
	return s.combo
}

// Update handles input and advances the scene by deltaTime seconds.
func (s *BubbleScene) Update(deltaTime float64) {
	s.handleKeys()

	s.pointers = utils.AppendJustPressedPointers(s.pointers[:0])
	for _, p := range s.pointers {
		s.PopAt(float64(p.X), float64(p.Y))
	}

	s.Step(deltaTime)
}

func (s *BubbleScene) handleKeys() {
	for _, qk := range qualityKeys {
		if inpututil.IsKeyJustPressed(qk.key) {
			s.setQualityLevel(qk.level)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		s.setParticlesOn(!s.particles.Enabled())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyA) && s.settings != nil {
		on := !s.settings.GetSettings().AdaptiveQuality
		s.settings.SetAdaptiveQuality(on)
		log.Printf("[BubbleScene] Adaptive quality: %v", on)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) && s.settings != nil {
		s.settings.SetShowStats(!s.settings.GetSettings().ShowStats)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		s.particles.Clear()
		s.field.Clear()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyT) {
		s.NextBackgroundTheme()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		s.particles.CreateSpecialEffect(systems.EffectExplosion, s.width/2, s.height/2, "#FF4500", 1)
	}
}

// NextBackgroundTheme switches the ambient background to the next theme and
// returns its name. A scene without a background gets one at the default
// density.
func (s *BubbleScene) NextBackgroundTheme() string {
	order := config.BackgroundThemeOrder
	next := order[0]
	for i, name := range order {
		if name == s.particles.BackgroundTheme() {
			next = order[(i+1)%len(order)]
		}
	}
	density := s.particles.BackgroundDensity()
	if density == 0 {
		density = defaultBackgroundDensity
	}
	n := s.particles.CreateBackgroundParticles(density, next, s.viewport)
	log.Printf("[BubbleScene] Background theme: %s (%d particles)", next, n)
	return next
}

func (s *BubbleScene) setQualityLevel(level string) {
	if err := s.particles.SetQualityLevel(level); err != nil {
		log.Printf("[BubbleScene] %v", err)
		return
	}
	if s.settings != nil {
		s.settings.SetQualityLevel(level)
	}
}

func (s *BubbleScene) setParticlesOn(on bool) {
	s.particles.SetEnabled(on)
	if s.settings != nil {
		s.settings.SetParticlesOn(on)
	}
}

// PopAt pops the topmost bubble under (x, y) and spawns its effect. It
// reports whether a bubble was hit.
func (s *BubbleScene) PopAt(x, y float64) bool {
	b := s.field.BubbleAt(x, y)
	if b == nil {
		return false
	}
	s.field.Pop(b)
	s.score++

	if s.comboTimer > 0 {
		s.combo++
	} else {
		s.combo = 1
	}
	s.comboTimer = comboWindow

	bx := b.DisplayX()
	s.particles.CreateBubbleEffect(bx, b.Y, b.Type, b.Radius)
	if s.combo >= comboThreshold {
		s.particles.CreateEnhancedComboEffect(bx, b.Y-b.Radius, s.combo, systems.ComboTypeFor(s.combo))
	}
	return true
}

// Step advances the simulation by deltaTime seconds without reading input.
func (s *BubbleScene) Step(deltaTime float64) {
	s.frame++
	s.field.Update(deltaTime)

	if s.comboTimer > 0 {
		s.comboTimer -= deltaTime
		if s.comboTimer <= 0 {
			s.combo = 0
		}
	}

	s.particles.Update(deltaTime * 1000)

	// 游戏尚未开始运行时帧率为 0，不参与调节
	if fps := s.fps(); fps > 0 && s.adaptiveQuality() {
		if s.particles.AdjustQualityForFPS(fps) && s.settings != nil {
			s.settings.SetQualityLevel(s.particles.QualityLevel())
		}
	}

	if s.frame%optimizeInterval == 0 {
		s.particles.OptimizeMemory()
	}

	lifecycle := s.particles.Lifecycle()
	if err := s.stats.Record(telemetry.NewFrameStats(s.frame, lifecycle.Now(), s.particles.ActiveCount(),
		s.particles.QualityLevel(), s.particles.Statistics())); err != nil {
		log.Printf("[BubbleScene] Warning: stats export failed, disabling: %v", err)
		s.stats = nil
	}
}

func (s *BubbleScene) adaptiveQuality() bool {
	return s.settings == nil || s.settings.GetSettings().AdaptiveQuality
}

// Draw renders bubbles, particles and the overlay.
func (s *BubbleScene) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	if s.surface == nil {
		s.surface = graphics.NewEbitenSurface(screen)
	} else {
		s.surface.Reset(screen)
	}

	s.DrawWorld(s.surface)
	s.drawOverlay(screen)
}

// DrawWorld draws bubbles and particles onto any surface.
func (s *BubbleScene) DrawWorld(surface graphics.Surface) int {
	s.painter.Draw(surface, s.field.Bubbles())
	return s.particles.Render(surface, &s.viewport)
}

func (s *BubbleScene) drawOverlay(screen *ebiten.Image) {
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Score: %d  Combo: %d", s.score, s.combo), 10, 10)

	showStats := s.settings != nil && s.settings.GetSettings().ShowStats
	if showStats {
		st := s.particles.Statistics()
		lines := []string{
			fmt.Sprintf("FPS: %.1f  Quality: %s (%.2f)", s.fps(), s.particles.QualityLevel(), s.particles.Quality()),
			fmt.Sprintf("Active: %d / %d  Peak: %d  Background: %d (%s)", s.particles.ActiveCount(), s.particles.MaxParticles(),
				st.MaxActiveParticles, s.particles.BackgroundCount(), s.particles.BackgroundTheme()),
			fmt.Sprintf("Pool: %d  Hits: %d  Misses: %d  Eff: %.0f%%", st.CurrentPoolSize, st.PoolHits, st.PoolMisses, st.PoolEfficiency*100),
		}
		for i, line := range lines {
			ebitenutil.DebugPrintAt(screen, line, 10, 30+i*16)
		}
	}

	help := "Click: pop  1-4: quality  P: particles  A: adaptive  S: stats  T: theme  R: reset  Space: boom"
	ebitenutil.DebugPrintAt(screen, help, 10, int(s.height)-20)
}

// SaveOnExit persists the effect settings.
func (s *BubbleScene) SaveOnExit() bool {
	if s.settings == nil {
		return true
	}
	if err := s.settings.Save(); err != nil {
		log.Printf("[BubbleScene] Warning: failed to save effect settings: %v", err)
		return false
	}
	return true
}
