package graphics

import (
	"image/color"
	"math"
)

// Call 一次被记录的 Surface 调用
type Call struct {
	Name string    // 方法名，如 "Fill"、"Translate"
	Args []float64 // 数值参数（Translate/Rotate/Scale/MoveTo/LineTo/Arc/SetLineWidth/SetGlobalAlpha）

	// 以下字段记录调用时刻的绘图状态，仅 Fill/Stroke 有意义
	Color     color.RGBA
	Alpha     float64
	Composite CompositeOp
	LineCap   LineCap
	LineJoin  LineJoin
	LineWidth float64
	Points    int // 路径中的点数
}

type recorderState struct {
	globalAlpha float64
	fill        color.RGBA
	stroke      color.RGBA
	lineWidth   float64
	lineCap     LineCap
	lineJoin    LineJoin
	composite   CompositeOp
}

// Recorder 记录绘制调用的无头 Surface
//
// 用于渲染器测试和无头基准：不做任何光栅化，只维护状态栈并记录调用序列。
type Recorder struct {
	calls  []Call
	state  recorderState
	stack  []recorderState
	points int

	// MaxDepth 记录过程中状态栈达到的最大深度
	MaxDepth int
}

var _ Surface = (*Recorder)(nil)

// NewRecorder 创建记录器
func NewRecorder() *Recorder {
	r := &Recorder{}
	r.state = recorderState{globalAlpha: 1, lineWidth: 1, fill: color.RGBA{A: 255}, stroke: color.RGBA{A: 255}}
	return r
}

// Calls 返回已记录的调用
func (r *Recorder) Calls() []Call {
	return r.calls
}

// Count 统计指定方法的调用次数
func (r *Recorder) Count(name string) int {
	n := 0
	for _, c := range r.calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// Filter 返回指定方法的全部调用
func (r *Recorder) Filter(name string) []Call {
	var out []Call
	for _, c := range r.calls {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Depth 当前状态栈深度（Save 未配对 Restore 的数量）
func (r *Recorder) Depth() int {
	return len(r.stack)
}

// Reset 清空记录，保留已分配的缓冲
func (r *Recorder) Reset() {
	r.calls = r.calls[:0]
	r.stack = r.stack[:0]
	r.points = 0
	r.MaxDepth = 0
	r.state = recorderState{globalAlpha: 1, lineWidth: 1, fill: color.RGBA{A: 255}, stroke: color.RGBA{A: 255}}
}

func (r *Recorder) record(name string, args ...float64) {
	r.calls = append(r.calls, Call{Name: name, Args: args})
}

func (r *Recorder) Save() {
	r.stack = append(r.stack, r.state)
	if len(r.stack) > r.MaxDepth {
		r.MaxDepth = len(r.stack)
	}
	r.record("Save")
}

func (r *Recorder) Restore() {
	if len(r.stack) > 0 {
		r.state = r.stack[len(r.stack)-1]
		r.stack = r.stack[:len(r.stack)-1]
	}
	r.record("Restore")
}

func (r *Recorder) Translate(x, y float64)       { r.record("Translate", x, y) }
func (r *Recorder) Rotate(angle float64)         { r.record("Rotate", angle) }
func (r *Recorder) Scale(sx, sy float64)         { r.record("Scale", sx, sy) }
func (r *Recorder) GlobalAlpha() float64         { return r.state.globalAlpha }
func (r *Recorder) SetLineCap(c LineCap)         { r.state.lineCap = c; r.record("SetLineCap", float64(c)) }
func (r *Recorder) SetLineJoin(j LineJoin)       { r.state.lineJoin = j; r.record("SetLineJoin", float64(j)) }
func (r *Recorder) SetFillColor(c color.Color)   { r.state.fill = toRGBA(c); r.record("SetFillColor") }
func (r *Recorder) SetStrokeColor(c color.Color) { r.state.stroke = toRGBA(c); r.record("SetStrokeColor") }

func (r *Recorder) SetGlobalAlpha(alpha float64) {
	r.state.globalAlpha = clamp01(alpha)
	r.record("SetGlobalAlpha", alpha)
}

func (r *Recorder) SetLineWidth(width float64) {
	if width > 0 && !math.IsInf(width, 0) {
		r.state.lineWidth = width
	}
	r.record("SetLineWidth", width)
}

func (r *Recorder) SetCompositeOperation(op CompositeOp) {
	r.state.composite = op
	r.record("SetCompositeOperation", float64(op))
}

func (r *Recorder) BeginPath() {
	r.points = 0
	r.record("BeginPath")
}

func (r *Recorder) MoveTo(x, y float64) {
	r.points++
	r.record("MoveTo", x, y)
}

func (r *Recorder) LineTo(x, y float64) {
	r.points++
	r.record("LineTo", x, y)
}

func (r *Recorder) Arc(x, y, radius, startAngle, endAngle float64) {
	r.points++
	r.record("Arc", x, y, radius, startAngle, endAngle)
}

func (r *Recorder) ClosePath() { r.record("ClosePath") }

func (r *Recorder) Fill() {
	r.calls = append(r.calls, r.paint("Fill", r.state.fill))
}

func (r *Recorder) Stroke() {
	r.calls = append(r.calls, r.paint("Stroke", r.state.stroke))
}

func (r *Recorder) paint(name string, c color.RGBA) Call {
	return Call{
		Name:      name,
		Color:     c,
		Alpha:     r.state.globalAlpha,
		Composite: r.state.composite,
		LineCap:   r.state.lineCap,
		LineJoin:  r.state.lineJoin,
		LineWidth: r.state.lineWidth,
		Points:    r.points,
	}
}
