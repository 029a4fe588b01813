package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/bubblefx/pkg/app"
	"github.com/decker502/bubblefx/pkg/embedded"
)

func main() {
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	seed := flag.Int64("seed", 0, "Random seed (0 = current time)")
	statsCSV := flag.String("stats-csv", "", "Write per-frame particle statistics to this CSV file")
	effectsPath := flag.String("config", "", "Effects config on disk (default: embedded data/effects.yaml)")
	presetsPath := flag.String("presets", "", "Effect presets on disk (default: embedded data/effect_presets.yaml)")
	theme := flag.String("theme", app.DefaultBackgroundTheme, "Background particle theme (default/spring/summer/autumn/winter/night/cosmic)")
	density := flag.Float64("density", app.DefaultBackgroundDensity, "Background particle density (0-1, negative = off)")
	flag.Parse()

	// 初始化嵌入资源，dataFS 在 embed.go 中声明
	embedded.Init(dataFS)

	gameApp, err := app.NewApp(app.Config{
		Verbose:     *verbose,
		Seed:        *seed,
		StatsCSV:    *statsCSV,
		EffectsPath: *effectsPath,
		PresetsPath: *presetsPath,

		BackgroundTheme:   *theme,
		BackgroundDensity: *density,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}

	ebiten.SetWindowSize(app.DefaultWidth, app.DefaultHeight)
	ebiten.SetWindowTitle("BubbleFX - Particle Effects")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	runErr := ebiten.RunGame(gameApp)
	if err := gameApp.Close(); err != nil {
		log.Printf("[Main] Warning: %v", err)
	}
	if runErr != nil {
		log.Fatal(runErr)
	}
}
