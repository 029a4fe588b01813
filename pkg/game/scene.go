package game

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// Scene is one screen of the demo (the bubble field, a benchmark view...).
// The SceneManager forwards the ebiten Update/Draw calls to the active scene.
type Scene interface {
	// Update advances the scene by deltaTime seconds.
	Update(deltaTime float64)

	// Draw renders the scene to screen.
	Draw(screen *ebiten.Image)
}

// Saveable 可选接口：场景在程序退出时持久化自身状态（如效果设置）
type Saveable interface {
	// SaveOnExit 返回 false 表示保存失败，程序仍会正常退出
	SaveOnExit() bool
}
