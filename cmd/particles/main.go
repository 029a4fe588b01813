// Package main provides a particle effect viewer for testing and tuning the
// bubble effects.
//
// Usage:
//
//	go run ./cmd/particles [flags]
//
// Flags:
//
//	--filter <keyword>    Initial filter by name (e.g., --filter=bubble)
//	--effect <name>       Start with specific effect (e.g., --effect=fx:sparks)
//	--auto-play           Automatically cycle through effects every 3 seconds
//	--quality <level>     Initial quality level (low/medium/high/ultra)
//	--seed <n>            Random seed (0 = current time)
//	--config <path>       Effects config (default data/effects.yaml)
//	--presets <path>      Effect presets (default data/effect_presets.yaml)
//	--headless            Run without a window and print a summary
//	--frames <n>          Frames to simulate in headless mode
//	--stats-csv <path>    Write per-frame statistics to a CSV file
//	--intensity <x>       Intensity of fx:<kind> effects (0.1-3)
//	--background <theme>  Ambient background theme (default/spring/.../cosmic)
//	--density <x>         Ambient background density (0-1, 0 = off)
//
// Controls:
//
//	Mouse Click / Touch - Spawn effect at cursor position
//	Left/Right Arrow    - Switch to previous/next effect
//	Page Up/Down        - Jump 10 effects forward/backward
//	Home/End            - Jump to first/last effect
//	1-9, 0              - Quick jump to effect by index (0=10th)
//	Space               - Spawn effect at screen center
//	P                   - Toggle pause (停止切换，观看完整动画)
//	F or /              - Enter search mode
//	R                   - Clear all active particles
//	[ / ]               - Lower/raise quality level
//	B                   - Cycle background theme
//	Q/Escape            - Quit
//
// Search Mode (press F or /):
//
//	Type letters        - Filter effects by name
//	Backspace           - Delete last character
//	Enter/Escape        - Exit search mode
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"io"
	"log"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/bubblefx/pkg/app"
	"github.com/decker502/bubblefx/pkg/config"
	"github.com/decker502/bubblefx/pkg/embedded"
	"github.com/decker502/bubblefx/pkg/game"
	"github.com/decker502/bubblefx/pkg/graphics"
	"github.com/decker502/bubblefx/pkg/systems"
	"github.com/decker502/bubblefx/pkg/telemetry"
	"github.com/decker502/bubblefx/pkg/utils"
)

const (
	screenWidth  = 1024
	screenHeight = 768

	// viewerBackgroundDensity B 键开启背景时的密度
	viewerBackgroundDensity = 0.3
)

var (
	filterFlag     = flag.String("filter", "", "Initial filter by name keyword")
	effectFlag     = flag.String("effect", "", "Start with specific effect name")
	autoPlayFlag   = flag.Bool("auto-play", false, "Auto cycle through effects every 3 seconds")
	verboseFlag    = flag.Bool("verbose", false, "Enable verbose logging (default off)")
	qualityFlag    = flag.String("quality", "", "Initial quality level (default from config)")
	seedFlag       = flag.Int64("seed", 0, "Random seed (0 = current time)")
	configFlag     = flag.String("config", "", "Effects config on disk (default data/effects.yaml)")
	presetsFlag    = flag.String("presets", "", "Effect presets on disk (default data/effect_presets.yaml)")
	headlessFlag   = flag.Bool("headless", false, "Run without a window and print a summary")
	framesFlag     = flag.Int("frames", 600, "Frames to simulate in headless mode")
	statsCSVFlag   = flag.String("stats-csv", "", "Write per-frame statistics to this CSV file")
	intensityFlag  = flag.Float64("intensity", defaultIntensity, "Intensity of fx:<kind> effects (0.1-3)")
	backgroundFlag = flag.String("background", config.DefaultBackgroundTheme, "Ambient background theme")
	densityFlag    = flag.Float64("density", 0, "Ambient background density (0-1, 0 = off)")
)

var errQuit = errors.New("quit requested")

// ParticleViewerGame implements ebiten.Game interface for the particle viewer
type ParticleViewerGame struct {
	particles *systems.ParticleManager
	stats     *telemetry.StatsRecorder
	surface   *graphics.EbitenSurface
	viewport  graphics.Viewport
	frame     int

	// Effect lists
	allEffects      []effectEntry // All available effects
	filteredEffects []effectEntry // Currently filtered list
	currentIndex    int           // Current effect index in filtered list

	// Search mode
	searchMode  bool   // Whether in search mode
	searchQuery string // Current search query

	// Auto-play mode
	autoPlay      bool
	lastSpawnTime time.Time

	// Pause mode (for watching complete animation)
	paused bool

	pointers []utils.PointerPress

	// UI state
	statusMessage string
}

// newParticleManager builds the manager from the effects config and
// presets. Missing default files fall back to the compiled defaults.
func newParticleManager() (*systems.ParticleManager, error) {
	// 以当前目录作为数据文件系统，默认路径相对仓库根目录
	embedded.Init(os.DirFS("."))

	cfg, err := app.LoadEffectsConfig(*configFlag)
	if err != nil {
		if *configFlag != "" {
			return nil, fmt.Errorf("failed to load effects config: %w", err)
		}
		log.Printf("Warning: %v (using built-in defaults)", err)
		cfg = config.DefaultEffectsConfig()
	}

	pm, err := systems.NewParticleManager(cfg, game.LogErrorHandler{}, seedOrNow(*seedFlag))
	if err != nil {
		return nil, err
	}

	presets, err := app.LoadEffectPresets(*presetsFlag)
	switch {
	case err == nil:
		if err := pm.LoadPresets(presets); err != nil {
			return nil, fmt.Errorf("invalid effect presets: %w", err)
		}
	case *presetsFlag != "":
		return nil, fmt.Errorf("failed to load effect presets: %w", err)
	default:
		log.Printf("Warning: %v (using built-in presets)", err)
	}

	if *qualityFlag != "" {
		if err := pm.SetQualityLevel(*qualityFlag); err != nil {
			return nil, err
		}
	}
	if *densityFlag > 0 {
		pm.CreateBackgroundParticles(*densityFlag, *backgroundFlag, graphics.Viewport{Width: screenWidth, Height: screenHeight})
	}
	return pm, nil
}

func seedOrNow(seed int64) int64 {
	if seed == 0 {
		return time.Now().UnixNano()
	}
	return seed
}

// NewParticleViewerGame creates a new particle viewer game instance
func NewParticleViewerGame(pm *systems.ParticleManager, stats *telemetry.StatsRecorder) (*ParticleViewerGame, error) {
	allEffects := buildCatalog(systems.ClampIntensity(*intensityFlag))

	// Apply initial filter if specified
	initialQuery := *filterFlag
	filtered := filterEffects(allEffects, initialQuery)
	if len(filtered) == 0 {
		log.Printf("Warning: No effects match initial filter %q, showing all", initialQuery)
		filtered = allEffects
		initialQuery = ""
	}

	startIndex := 0
	if *effectFlag != "" {
		if i := indexOf(filtered, *effectFlag); i >= 0 {
			startIndex = i
		}
	}

	g := &ParticleViewerGame{
		particles:       pm,
		stats:           stats,
		viewport:        graphics.Viewport{Width: screenWidth, Height: screenHeight},
		allEffects:      allEffects,
		filteredEffects: filtered,
		currentIndex:    startIndex,
		searchQuery:     initialQuery,
		autoPlay:        *autoPlayFlag,
		lastSpawnTime:   time.Now(),
	}

	g.updateStatusMessage()
	log.Printf("Particle Viewer initialized: %d total effects, %d after filter", len(allEffects), len(filtered))

	// 启动时自动在屏幕中心生成当前选择的效果，避免空白屏幕
	g.spawnCurrentEffect(screenWidth/2, screenHeight/2)

	return g, nil
}

// Update updates the viewer state
func (g *ParticleViewerGame) Update() error {
	if g.searchMode {
		return g.updateSearchMode()
	}
	return g.updateNormalMode()
}

// updateSearchMode handles input when in search mode
func (g *ParticleViewerGame) updateSearchMode() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.searchMode = false
		g.statusMessage = fmt.Sprintf("Search: %q (%d results)", g.searchQuery, len(g.filteredEffects))
		log.Printf("Exited search mode. Query: %q, Results: %d", g.searchQuery, len(g.filteredEffects))
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if len(g.searchQuery) > 0 {
			g.searchQuery = g.searchQuery[:len(g.searchQuery)-1]
			g.applySearch()
		}
		return nil
	}

	runes := ebiten.AppendInputChars(nil)
	if len(runes) > 0 {
		for _, r := range runes {
			// 只接受字母数字和名称中出现的分隔符
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == ':' || r == '-' {
				g.searchQuery += string(r)
			}
		}
		g.applySearch()
	}
	return nil
}

// applySearch filters the effect list and resets index
func (g *ParticleViewerGame) applySearch() {
	g.filteredEffects = filterEffects(g.allEffects, g.searchQuery)
	g.currentIndex = 0
	log.Printf("Search query: %q, Results: %d", g.searchQuery, len(g.filteredEffects))
}

// updateNormalMode handles input when in normal mode
func (g *ParticleViewerGame) updateNormalMode() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF) || inpututil.IsKeyJustPressed(ebiten.KeySlash) {
		g.searchMode = true
		g.statusMessage = "Search mode: Type to filter effects..."
		log.Println("Entered search mode")
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
		if g.paused {
			g.statusMessage = "PAUSED - Press P to resume, Space to spawn more"
		} else {
			g.statusMessage = "Resumed"
		}
		return nil
	}

	// 暂停时不允许切换效果
	if !g.paused {
		g.handleNavigation()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		n := g.particles.ActiveCount()
		g.particles.Clear()
		g.statusMessage = "Cleared all particles"
		log.Printf("Cleared %d particles", n)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyBracketLeft) {
		g.stepQuality(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBracketRight) {
		g.stepQuality(1)
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		g.cycleBackground()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.spawnCurrentEffect(screenWidth/2, screenHeight/2)
	}

	g.pointers = utils.AppendJustPressedPointers(g.pointers[:0])
	for _, p := range g.pointers {
		g.spawnCurrentEffect(float64(p.X), float64(p.Y))
	}

	if g.autoPlay && !g.paused && time.Since(g.lastSpawnTime) > 3*time.Second {
		g.nextEffect()
		g.lastSpawnTime = time.Now()
	}

	g.particles.Update(1000.0 / float64(ebiten.TPS()))
	g.frame++
	if err := g.stats.Record(telemetry.NewFrameStats(g.frame, g.particles.Lifecycle().Now(), g.particles.ActiveCount(),
		g.particles.QualityLevel(), g.particles.Statistics())); err != nil {
		log.Printf("Warning: stats export failed, disabling: %v", err)
		g.stats = nil
	}
	return nil
}

func (g *ParticleViewerGame) handleNavigation() {
	// Quick jump with number keys (1-9, 0 = 10th)
	for i := 0; i <= 9; i++ {
		if !inpututil.IsKeyJustPressed(ebiten.Key(int(ebiten.Key0) + i)) {
			continue
		}
		target := i - 1
		if i == 0 {
			target = 9
		}
		if target < len(g.filteredEffects) {
			g.selectEffect(target)
		}
		return
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyArrowLeft) {
		g.jumpEffects(-1)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowRight) {
		g.nextEffect()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageUp) {
		g.jumpEffects(-10)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPageDown) {
		g.jumpEffects(10)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyHome) {
		g.selectEffect(0)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnd) && len(g.filteredEffects) > 0 {
		g.selectEffect(len(g.filteredEffects) - 1)
	}
}

// stepQuality moves the quality level by delta steps along the level order.
func (g *ParticleViewerGame) stepQuality(delta int) {
	order := config.QualityLevelOrder
	current := 0
	for i, name := range order {
		if name == g.particles.QualityLevel() {
			current = i
		}
	}
	next := current + delta
	if next < 0 || next >= len(order) {
		return
	}
	if err := g.particles.SetQualityLevel(order[next]); err != nil {
		g.statusMessage = fmt.Sprintf("Error: %v", err)
		return
	}
	g.statusMessage = fmt.Sprintf("Quality: %s", order[next])
}

// cycleBackground switches to the next background theme, turning the
// background on at a default density when it was off.
func (g *ParticleViewerGame) cycleBackground() {
	density := *densityFlag
	if density <= 0 {
		density = viewerBackgroundDensity
	}
	order := config.BackgroundThemeOrder
	next := order[0]
	for i, name := range order {
		if name == g.particles.BackgroundTheme() && g.particles.BackgroundCount() > 0 {
			next = order[(i+1)%len(order)]
		}
	}
	n := g.particles.CreateBackgroundParticles(density, next, g.viewport)
	g.statusMessage = fmt.Sprintf("Background: %s (%d particles)", next, n)
}

// Draw renders the viewer screen
func (g *ParticleViewerGame) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{25, 25, 38, 255})

	if g.surface == nil {
		g.surface = graphics.NewEbitenSurface(screen)
	} else {
		g.surface.Reset(screen)
	}
	drawn := g.particles.Render(g.surface, &g.viewport)

	g.drawUI(screen, drawn)
}

// drawUI draws the overlay UI with effect info and controls
func (g *ParticleViewerGame) drawUI(screen *ebiten.Image, drawn int) {
	if len(g.filteredEffects) == 0 {
		ebitenutil.DebugPrintAt(screen, "No effects match current filter", 10, 10)
		return
	}

	title := fmt.Sprintf("Particle Viewer - Effect %d/%d", g.currentIndex+1, len(g.filteredEffects))
	ebitenutil.DebugPrintAt(screen, title, 10, 10)

	if g.searchQuery != "" {
		searchStatus := fmt.Sprintf("Filter: %q (%d/%d effects)", g.searchQuery, len(g.filteredEffects), len(g.allEffects))
		ebitenutil.DebugPrintAt(screen, searchStatus, 10, 30)
	}

	ebitenutil.DebugPrintAt(screen, "Effect: "+g.filteredEffects[g.currentIndex].Name, 10, 50)

	st := g.particles.Statistics()
	lines := []string{
		fmt.Sprintf("Active Particles: %d / %d  Drawn: %d", g.particles.ActiveCount(), g.particles.MaxParticles(), drawn),
		fmt.Sprintf("Quality: %s (%.2f)  FPS: %.1f", g.particles.QualityLevel(), g.particles.Quality(), ebiten.ActualFPS()),
		fmt.Sprintf("Pool: %d  Hits: %d  Misses: %d  Peak: %d", st.CurrentPoolSize, st.PoolHits, st.PoolMisses, st.MaxActiveParticles),
	}
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, 10, 70+i*20)
	}

	if g.searchMode {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("SEARCH: %s_", g.searchQuery), 10, 140)
		ebitenutil.DebugPrintAt(screen, "(Type to filter, Backspace to delete, Enter/Esc to exit)", 10, 160)
	} else if g.statusMessage != "" {
		ebitenutil.DebugPrintAt(screen, g.statusMessage, 10, 140)
	}

	controls := []string{
		"Navigation: <-/-> = Next/Prev  PgUp/PgDn = Jump 10  Home/End = First/Last  1-9 = Quick Jump",
		"Actions:    Click/Space = Spawn  R = Clear  P = Pause  F/Slash = Search  Q = Quit",
		"Quality:    [ = Lower  ] = Raise  B = Background theme",
	}
	y := screenHeight - len(controls)*20 - 10
	for i, line := range controls {
		ebitenutil.DebugPrintAt(screen, line, 10, y+i*20)
	}

	if g.paused {
		ebitenutil.DebugPrintAt(screen, "PAUSED (Press P to resume)", screenWidth-300, 10)
	} else if g.autoPlay {
		ebitenutil.DebugPrintAt(screen, "AUTO-PLAY MODE", screenWidth-200, 10)
	}
}

// Layout returns the viewer's logical screen size
func (g *ParticleViewerGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// spawnCurrentEffect spawns the currently selected effect at the given position
func (g *ParticleViewerGame) spawnCurrentEffect(x, y float64) {
	if len(g.filteredEffects) == 0 {
		g.statusMessage = "No effects to spawn"
		return
	}

	e := g.filteredEffects[g.currentIndex]
	n := e.Spawn(g.particles, x, y)
	if n == 0 && !g.particles.Enabled() {
		g.statusMessage = "Particles disabled"
		return
	}
	log.Printf("Spawned effect: %s at (%.0f, %.0f), %d particles", e.Name, x, y, n)
	g.statusMessage = fmt.Sprintf("Spawned: %s (%d particles)", e.Name, n)
}

// selectEffect switches to index i and spawns it at the centre
func (g *ParticleViewerGame) selectEffect(i int) {
	g.currentIndex = i
	g.updateStatusMessage()
	g.spawnCurrentEffect(screenWidth/2, screenHeight/2)
}

// nextEffect switches to the next effect in the list and spawns it
func (g *ParticleViewerGame) nextEffect() {
	g.jumpEffects(1)
}

// jumpEffects jumps forward or backward by delta effects and spawns
func (g *ParticleViewerGame) jumpEffects(delta int) {
	n := len(g.filteredEffects)
	if n == 0 {
		return
	}
	g.selectEffect(((g.currentIndex+delta)%n + n) % n)
}

// updateStatusMessage updates the status message when switching effects
func (g *ParticleViewerGame) updateStatusMessage() {
	if len(g.filteredEffects) == 0 {
		g.statusMessage = "No effects available"
		return
	}
	name := g.filteredEffects[g.currentIndex].Name
	g.statusMessage = fmt.Sprintf("Selected: %s", name)
	log.Printf("Current effect: %s (%d/%d)", name, g.currentIndex+1, len(g.filteredEffects))
}

func main() {
	flag.Parse()

	// 默认静音运行；如需详细调试，传入 --verbose
	if !*verboseFlag {
		log.SetOutput(io.Discard)
	}

	log.Println("=== BubbleFX Particle Effect Viewer ===")
	log.Printf("Initial filter: %q", *filterFlag)
	log.Printf("Start effect: %q", *effectFlag)
	log.Printf("Auto-play: %v", *autoPlayFlag)

	pm, err := newParticleManager()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize particles:", err)
		os.Exit(1)
	}

	stats, err := telemetry.CreateStatsFile(*statsCSVFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to create stats file:", err)
		os.Exit(1)
	}
	defer stats.Close()

	if *headlessFlag {
		entries := filterEffects(buildCatalog(systems.ClampIntensity(*intensityFlag)), *filterFlag)
		if *effectFlag != "" {
			if i := indexOf(entries, *effectFlag); i >= 0 {
				entries = entries[i : i+1]
			}
		}
		res, err := runHeadless(pm, entries, *framesFlag, screenWidth, screenHeight, stats)
		if err != nil {
			fmt.Fprintln(os.Stderr, "Headless run failed:", err)
			os.Exit(1)
		}
		fmt.Println(res)
		return
	}

	viewer, err := NewParticleViewerGame(pm, stats)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Failed to initialize viewer:", err)
		os.Exit(1)
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("BubbleFX Particle Effect Viewer")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(viewer); err != nil && !errors.Is(err, errQuit) {
		log.Fatal(err)
	}
	if stats != nil {
		log.Printf("Active particle summary: %s", stats.Summary())
	}
	log.Println("Particle viewer closed")
}
