// Package utils 提供演示场景使用的通用工具：缓动函数与指针输入
package utils

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// PointerPress 本帧刚发生的一次点击或触摸
type PointerPress struct {
	X, Y    int
	IsTouch bool
}

// AppendJustPressedPointers 追加本帧所有刚按下的指针（每个触摸点一次，鼠标左键一次）
// 多点触摸时每根手指都能戳破泡泡
func AppendJustPressedPointers(dst []PointerPress) []PointerPress {
	var touchIDs [8]ebiten.TouchID
	for _, id := range inpututil.AppendJustPressedTouchIDs(touchIDs[:0]) {
		x, y := ebiten.TouchPosition(id)
		dst = append(dst, PointerPress{X: x, Y: y, IsTouch: true})
	}
	if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		x, y := ebiten.CursorPosition()
		dst = append(dst, PointerPress{X: x, Y: y})
	}
	return dst
}
