// Package graphics 提供粒子渲染使用的 2D 绘图表面抽象
//
// Surface 采用“画布”式的即时模式接口：变换栈、全局透明度、填充/描边样式、
// 路径构建。渲染器只依赖此接口，因此可以绘制到 ebiten 屏幕（EbitenSurface），
// 也可以在测试或无头模式中记录绘制调用（Recorder）。
package graphics

import "image/color"

// LineCap 线段端点样式
type LineCap uint8

const (
	LineCapButt LineCap = iota
	LineCapRound
	LineCapSquare
)

// LineJoin 线段连接样式
type LineJoin uint8

const (
	LineJoinMiter LineJoin = iota
	LineJoinRound
	LineJoinBevel
)

// CompositeOp 合成（混合）模式
type CompositeOp uint8

const (
	CompositeSourceOver CompositeOp = iota // 普通 Alpha 混合
	CompositeLighter                       // 加法混合（发光）
	CompositeMultiply                      // 正片叠底
	CompositeScreen                        // 滤色
)

var compositeNames = [...]string{"source-over", "lighter", "multiply", "screen"}

func (op CompositeOp) String() string {
	if int(op) < len(compositeNames) {
		return compositeNames[op]
	}
	return "unknown"
}

// Surface 2D 绘图表面
//
// 坐标变换按画布语义叠加：后调用的 Translate/Rotate/Scale 先作用于路径点。
// 路径点在 MoveTo/LineTo/Arc 调用时按当前变换转换，因此 Fill/Stroke 之前
// 修改变换不会影响已添加的点。
type Surface interface {
	// 状态栈：变换、透明度、样式、合成模式
	Save()
	Restore()

	Translate(x, y float64)
	Rotate(angle float64)
	Scale(sx, sy float64)

	SetGlobalAlpha(alpha float64)
	GlobalAlpha() float64
	SetFillColor(c color.Color)
	SetStrokeColor(c color.Color)
	SetLineWidth(width float64)
	SetLineCap(lineCap LineCap)
	SetLineJoin(lineJoin LineJoin)
	SetCompositeOperation(op CompositeOp)

	// 路径
	BeginPath()
	MoveTo(x, y float64)
	LineTo(x, y float64)
	Arc(x, y, radius, startAngle, endAngle float64)
	ClosePath()
	Fill()
	Stroke()
}

// Viewport 可见区域（世界坐标）
type Viewport struct {
	X, Y          float64
	Width, Height float64
}

// Intersects 判断以 (x, y) 为中心、半边长为 margin 的正方形是否与视口相交
func (v Viewport) Intersects(x, y, margin float64) bool {
	return x+margin >= v.X && x-margin <= v.X+v.Width &&
		y+margin >= v.Y && y-margin <= v.Y+v.Height
}
