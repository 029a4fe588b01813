package graphics

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// arcSegmentsPerRadian 圆弧细分密度
const arcSegmentsPerRadian = 4

// minArcSegments 每段圆弧最少的细分数
const minArcSegments = 8

// surfaceState 可保存/恢复的绘图状态
type surfaceState struct {
	geoM        ebiten.GeoM
	globalAlpha float64
	fill        color.RGBA
	stroke      color.RGBA
	lineWidth   float64
	lineCap     LineCap
	lineJoin    LineJoin
	composite   CompositeOp
}

// EbitenSurface 将 Surface 调用转换为 ebiten 的三角形绘制
//
// 路径使用 vector.Path 构建，Fill/Stroke 通过 DrawTriangles 和一张白色纹理输出。
// 顶点与索引缓冲在帧之间复用，避免每次绘制分配内存。
type EbitenSurface struct {
	dst   *ebiten.Image
	state surfaceState
	stack []surfaceState

	path    vector.Path
	hasPath bool

	vertices []ebiten.Vertex
	indices  []uint16
}

var _ Surface = (*EbitenSurface)(nil)

var whiteImage = func() *ebiten.Image {
	img := ebiten.NewImage(3, 3)
	img.Fill(color.White)
	return img
}()

// whiteSubImage 取白色纹理的中心像素，避免采样到边缘
var whiteSubImage = whiteImage.SubImage(whiteImage.Bounds().Inset(1)).(*ebiten.Image)

// NewEbitenSurface 创建绘制到 dst 的表面
func NewEbitenSurface(dst *ebiten.Image) *EbitenSurface {
	s := &EbitenSurface{dst: dst}
	s.state = defaultSurfaceState()
	return s
}

func defaultSurfaceState() surfaceState {
	return surfaceState{
		globalAlpha: 1,
		fill:        color.RGBA{0, 0, 0, 255},
		stroke:      color.RGBA{0, 0, 0, 255},
		lineWidth:   1,
	}
}

// Reset 切换绘制目标并清空状态栈（每帧开始时调用）
func (s *EbitenSurface) Reset(dst *ebiten.Image) {
	s.dst = dst
	s.state = defaultSurfaceState()
	s.stack = s.stack[:0]
	s.BeginPath()
}

func (s *EbitenSurface) Save() {
	s.stack = append(s.stack, s.state)
}

// Restore 恢复最近一次 Save 的状态，栈为空时忽略
func (s *EbitenSurface) Restore() {
	if len(s.stack) == 0 {
		return
	}
	s.state = s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
}

// premultiply 在当前变换之前插入 m（画布语义）
func (s *EbitenSurface) premultiply(m ebiten.GeoM) {
	m.Concat(s.state.geoM)
	s.state.geoM = m
}

func (s *EbitenSurface) Translate(x, y float64) {
	var m ebiten.GeoM
	m.Translate(x, y)
	s.premultiply(m)
}

func (s *EbitenSurface) Rotate(angle float64) {
	var m ebiten.GeoM
	m.Rotate(angle)
	s.premultiply(m)
}

func (s *EbitenSurface) Scale(sx, sy float64) {
	var m ebiten.GeoM
	m.Scale(sx, sy)
	s.premultiply(m)
}

func (s *EbitenSurface) SetGlobalAlpha(alpha float64) {
	s.state.globalAlpha = clamp01(alpha)
}

func (s *EbitenSurface) GlobalAlpha() float64 {
	return s.state.globalAlpha
}

func (s *EbitenSurface) SetFillColor(c color.Color) {
	s.state.fill = toRGBA(c)
}

func (s *EbitenSurface) SetStrokeColor(c color.Color) {
	s.state.stroke = toRGBA(c)
}

func (s *EbitenSurface) SetLineWidth(width float64) {
	if width > 0 {
		s.state.lineWidth = width
	}
}

func (s *EbitenSurface) SetLineCap(lineCap LineCap) {
	s.state.lineCap = lineCap
}

func (s *EbitenSurface) SetLineJoin(lineJoin LineJoin) {
	s.state.lineJoin = lineJoin
}

func (s *EbitenSurface) SetCompositeOperation(op CompositeOp) {
	s.state.composite = op
}

func (s *EbitenSurface) BeginPath() {
	s.path = vector.Path{}
	s.hasPath = false
}

func (s *EbitenSurface) MoveTo(x, y float64) {
	tx, ty := s.apply(x, y)
	s.path.MoveTo(tx, ty)
	s.hasPath = true
}

func (s *EbitenSurface) LineTo(x, y float64) {
	tx, ty := s.apply(x, y)
	if !s.hasPath {
		s.path.MoveTo(tx, ty)
		s.hasPath = true
		return
	}
	s.path.LineTo(tx, ty)
}

// Arc 以折线逼近圆弧（顺时针，从 startAngle 到 endAngle）
func (s *EbitenSurface) Arc(x, y, radius, startAngle, endAngle float64) {
	sweep := endAngle - startAngle
	if sweep > 2*math.Pi {
		sweep = 2 * math.Pi
	}
	n := int(math.Ceil(math.Abs(sweep) * arcSegmentsPerRadian))
	if n < minArcSegments {
		n = minArcSegments
	}
	for i := 0; i <= n; i++ {
		a := startAngle + sweep*float64(i)/float64(n)
		px := x + math.Cos(a)*radius
		py := y + math.Sin(a)*radius
		if i == 0 && !s.hasPath {
			s.MoveTo(px, py)
			continue
		}
		s.LineTo(px, py)
	}
}

func (s *EbitenSurface) ClosePath() {
	if s.hasPath {
		s.path.Close()
	}
}

// Fill 使用非零环绕规则填充当前路径
func (s *EbitenSurface) Fill() {
	if !s.hasPath || s.dst == nil {
		return
	}
	s.vertices, s.indices = s.path.AppendVerticesAndIndicesForFilling(s.vertices[:0], s.indices[:0])
	s.draw(s.state.fill, ebiten.FillRuleNonZero)
}

// Stroke 按当前线宽描边，线宽随变换的缩放系数缩放
func (s *EbitenSurface) Stroke() {
	if !s.hasPath || s.dst == nil {
		return
	}
	op := &vector.StrokeOptions{
		Width:    float32(s.state.lineWidth * s.scaleFactor()),
		LineCap:  toVectorLineCap(s.state.lineCap),
		LineJoin: toVectorLineJoin(s.state.lineJoin),
	}
	s.vertices, s.indices = s.path.AppendVerticesAndIndicesForStroke(s.vertices[:0], s.indices[:0], op)
	s.draw(s.state.stroke, ebiten.FillRuleFillAll)
}

func (s *EbitenSurface) draw(c color.RGBA, rule ebiten.FillRule) {
	if len(s.indices) == 0 {
		return
	}
	alpha := float32(c.A) / 255 * float32(s.state.globalAlpha)
	if alpha <= 0 {
		return
	}
	r := float32(c.R) / 255
	g := float32(c.G) / 255
	b := float32(c.B) / 255
	for i := range s.vertices {
		s.vertices[i].SrcX = 1
		s.vertices[i].SrcY = 1
		s.vertices[i].ColorR = r
		s.vertices[i].ColorG = g
		s.vertices[i].ColorB = b
		s.vertices[i].ColorA = alpha
	}

	op := &ebiten.DrawTrianglesOptions{}
	op.AntiAlias = true
	op.FillRule = rule
	op.Blend = BlendFor(s.state.composite)
	s.dst.DrawTriangles(s.vertices, s.indices, whiteSubImage, op)
}

func (s *EbitenSurface) apply(x, y float64) (float32, float32) {
	tx, ty := s.state.geoM.Apply(x, y)
	return float32(tx), float32(ty)
}

// scaleFactor 当前变换的平均缩放系数 sqrt(|det|)
func (s *EbitenSurface) scaleFactor() float64 {
	g := s.state.geoM
	det := g.Element(0, 0)*g.Element(1, 1) - g.Element(0, 1)*g.Element(1, 0)
	return math.Sqrt(math.Abs(det))
}

// BlendFor 将合成模式映射为 ebiten 混合参数
func BlendFor(op CompositeOp) ebiten.Blend {
	switch op {
	case CompositeLighter:
		// 加法混合模式（用于发光效果）
		return ebiten.BlendLighter
	case CompositeMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case CompositeScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	default:
		return ebiten.BlendSourceOver
	}
}

func toVectorLineCap(c LineCap) vector.LineCap {
	switch c {
	case LineCapRound:
		return vector.LineCapRound
	case LineCapSquare:
		return vector.LineCapSquare
	default:
		return vector.LineCapButt
	}
}

func toVectorLineJoin(j LineJoin) vector.LineJoin {
	switch j {
	case LineJoinRound:
		return vector.LineJoinRound
	case LineJoinBevel:
		return vector.LineJoinBevel
	default:
		return vector.LineJoinMiter
	}
}

func toRGBA(c color.Color) color.RGBA {
	if c == nil {
		return color.RGBA{}
	}
	// color.Color 返回预乘值，这里还原为直通 Alpha
	r, g, b, a := c.RGBA()
	if a == 0 {
		return color.RGBA{}
	}
	return color.RGBA{
		R: uint8(r * 0xffff / a >> 8),
		G: uint8(g * 0xffff / a >> 8),
		B: uint8(b * 0xffff / a >> 8),
		A: uint8(a >> 8),
	}
}

func clamp01(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
