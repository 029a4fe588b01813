// Package app 提供演示程序的核心包装器
//
// 该包将初始化逻辑从 main 包提取出来：加载效果配置与预设、
// 打开设置存储、创建粒子管理器和场景，并实现 ebiten.Game 接口。
package app

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/bubblefx/internal/particle"
	"github.com/decker502/bubblefx/pkg/config"
	"github.com/decker502/bubblefx/pkg/game"
	"github.com/decker502/bubblefx/pkg/scenes"
	"github.com/decker502/bubblefx/pkg/systems"
	"github.com/decker502/bubblefx/pkg/telemetry"
)

const (
	// AppName gdata 存储目录名
	AppName = "bubblefx"

	// DefaultWidth 逻辑屏幕宽度
	DefaultWidth = 800
	// DefaultHeight 逻辑屏幕高度
	DefaultHeight = 600

	// EffectsConfigPath 嵌入的效果配置
	EffectsConfigPath = "data/effects.yaml"
	// EffectPresetsPath 嵌入的效果预设
	EffectPresetsPath = "data/effect_presets.yaml"

	// DefaultBackgroundTheme 与深色场景背景相配的主题
	DefaultBackgroundTheme = "night"
	// DefaultBackgroundDensity 默认背景粒子密度
	DefaultBackgroundDensity = 0.3
)

// Config 定义应用启动配置
type Config struct {
	// Verbose 启用详细日志输出
	Verbose bool
	// Seed 随机种子，0 表示使用当前时间
	Seed int64
	// StatsCSV 逐帧统计导出路径，为空则不导出
	StatsCSV string
	// EffectsPath 磁盘上的效果配置，为空则使用嵌入的 data/effects.yaml
	EffectsPath string
	// PresetsPath 磁盘上的效果预设，为空则使用嵌入的 data/effect_presets.yaml
	PresetsPath string
	// Width, Height 逻辑屏幕尺寸，0 使用默认值
	Width, Height int
	// Ephemeral 不打开 gdata 存储，设置只保存在内存中
	Ephemeral bool
	// BackgroundTheme 背景粒子主题，为空使用 DefaultBackgroundTheme
	BackgroundTheme string
	// BackgroundDensity 背景粒子密度（0-1），0 使用默认值，负数关闭背景
	BackgroundDensity float64
}

// App 是演示程序的核心包装器，实现 ebiten.Game 接口
type App struct {
	sceneManager *game.SceneManager
	particles    *systems.ParticleManager
	stats        *telemetry.StatsRecorder
	verbose      bool

	width, height int

	pendingWindowSizeReset   bool // 延迟设置窗口大小标志
	windowSizeResetCountdown int  // 延迟帧数
}

// NewApp 创建并初始化应用
//
// 使用嵌入配置时，调用此函数前必须先调用 embedded.Init()。
func NewApp(cfg Config) (*App, error) {
	// 配置日志输出
	if !cfg.Verbose {
		log.SetOutput(io.Discard)
		log.SetFlags(0)
	}

	if cfg.Width <= 0 {
		cfg.Width = DefaultWidth
	}
	if cfg.Height <= 0 {
		cfg.Height = DefaultHeight
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.BackgroundTheme == "" {
		cfg.BackgroundTheme = DefaultBackgroundTheme
	}
	if cfg.BackgroundDensity == 0 {
		cfg.BackgroundDensity = DefaultBackgroundDensity
	}

	effectsCfg, err := LoadEffectsConfig(cfg.EffectsPath)
	if err != nil {
		return nil, fmt.Errorf("效果配置加载失败: %w", err)
	}
	presets, err := LoadEffectPresets(cfg.PresetsPath)
	if err != nil {
		return nil, fmt.Errorf("效果预设加载失败: %w", err)
	}

	pm, err := systems.NewParticleManager(effectsCfg, game.LogErrorHandler{}, cfg.Seed)
	if err != nil {
		return nil, fmt.Errorf("粒子管理器创建失败: %w", err)
	}
	if err := pm.LoadPresets(presets); err != nil {
		return nil, fmt.Errorf("效果预设无效: %w", err)
	}
	log.Printf("[App] ParticleManager initialized (seed=%d, %d presets)", cfg.Seed, len(presets.Effects))

	var store *gdata.Manager
	if !cfg.Ephemeral {
		store = openStore()
	}
	settings, err := game.NewEffectSettingsManager(store)
	if err != nil {
		return nil, fmt.Errorf("效果设置加载失败: %w", err)
	}

	stats, err := telemetry.CreateStatsFile(cfg.StatsCSV)
	if err != nil {
		return nil, fmt.Errorf("统计导出初始化失败: %w", err)
	}
	if stats != nil {
		log.Printf("[App] Exporting frame statistics to %s", cfg.StatsCSV)
	}

	sceneManager := game.NewSceneManager()
	sceneManager.SwitchTo(scenes.NewBubbleScene(pm, settings, stats, scenes.BubbleSceneConfig{
		Width:  cfg.Width,
		Height: cfg.Height,
		Seed:   cfg.Seed,

		BackgroundDensity: cfg.BackgroundDensity,
		BackgroundTheme:   cfg.BackgroundTheme,
	}))

	return &App{
		sceneManager: sceneManager,
		particles:    pm,
		stats:        stats,
		verbose:      cfg.Verbose,
		width:        cfg.Width,
		height:       cfg.Height,
	}, nil
}

// openStore 打开 gdata 存储，失败时返回 nil（降级为内存模式）
func openStore() *gdata.Manager {
	m, err := gdata.Open(gdata.Config{AppName: AppName})
	if err != nil {
		log.Printf("[App] Warning: gdata unavailable, settings will not persist: %v", err)
		return nil
	}
	return m
}

// LoadEffectsConfig 加载效果配置
//
// path 为空时读取嵌入的 data/effects.yaml，否则从磁盘读取。
func LoadEffectsConfig(path string) (*config.EffectsConfig, error) {
	if path != "" {
		return config.LoadEffectsConfig(path)
	}
	return config.LoadEmbeddedEffectsConfig(EffectsConfigPath)
}

// LoadEffectPresets 加载效果预设
//
// path 为空时读取嵌入的 data/effect_presets.yaml，否则从磁盘读取。
func LoadEffectPresets(path string) (*particle.PresetFile, error) {
	if path == "" {
		return particle.LoadPresetFile(EffectPresetsPath)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read effect preset file %s: %w", path, err)
	}
	return particle.ParsePresetYAML(data)
}

// Update 更新游戏逻辑
// 每个 tick 调用一次（通常每秒 60 次）
func (a *App) Update() error {
	// 延迟设置窗口大小（退出全屏后需要等待几帧才能正确设置）
	if a.pendingWindowSizeReset {
		a.windowSizeResetCountdown--
		if a.windowSizeResetCountdown <= 0 {
			ebiten.SetWindowSize(a.width, a.height)
			log.Printf("[App] Delayed SetWindowSize(%d, %d)", a.width, a.height)
			a.pendingWindowSizeReset = false
		}
	}

	// F11 切换全屏
	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		if ebiten.IsFullscreen() {
			ebiten.SetFullscreen(false)
			if ebiten.IsWindowMaximized() || ebiten.IsWindowMinimized() {
				ebiten.RestoreWindow()
			}
			a.pendingWindowSizeReset = true
			a.windowSizeResetCountdown = 3
			log.Printf("[App] Exit fullscreen, will reset window size in 3 frames")
		} else {
			ebiten.SetFullscreen(true)
		}
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	a.sceneManager.Update(deltaTime)
	return nil
}

// Draw 绘制画面
func (a *App) Draw(screen *ebiten.Image) {
	a.sceneManager.Draw(screen)
}

// DrawFinalScreen 实现 FinalScreenDrawer 接口
// 用于控制全屏时的缩放和 letterbox 颜色
func (a *App) DrawFinalScreen(screen ebiten.FinalScreen, offscreen *ebiten.Image, geoM ebiten.GeoM) {
	screen.Fill(color.Black)
	op := &ebiten.DrawImageOptions{}
	op.GeoM = geoM
	op.Filter = ebiten.FilterLinear
	screen.DrawImage(offscreen, op)
}

// Layout 返回逻辑屏幕尺寸
func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	return a.width, a.height
}

// GetSceneManager 返回场景管理器
func (a *App) GetSceneManager() *game.SceneManager {
	return a.sceneManager
}

// Particles 返回粒子管理器
func (a *App) Particles() *systems.ParticleManager {
	return a.particles
}

// IsVerbose 返回是否启用了详细日志
func (a *App) IsVerbose() bool {
	return a.verbose
}

// Close 保存设置并关闭统计导出
func (a *App) Close() error {
	a.sceneManager.SaveOnExit()

	if a.stats == nil {
		return nil
	}
	log.Printf("[App] Active particle summary: %s", a.stats.Summary())
	if err := a.stats.Close(); err != nil {
		return fmt.Errorf("failed to close stats export: %w", err)
	}
	return nil
}
