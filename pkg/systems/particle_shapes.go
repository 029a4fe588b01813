package systems

import (
	"image/color"
	"math"

	"github.com/decker502/bubblefx/pkg/components"
	"github.com/decker502/bubblefx/pkg/graphics"
)

// shapeDrawer 在粒子局部坐标系中绘制形状，原点为粒子中心，半径为 p.Size
type shapeDrawer func(r *ParticleRenderer, s graphics.Surface, p *components.Particle, c color.RGBA)

// shapeDrawers 形状 → 绘制例程
// 数组长度由 ShapeTypeCount 决定，新增形状时此处缺少条目会导致渲染回退为圆形
var shapeDrawers = [components.ShapeTypeCount]shapeDrawer{
	components.ShapeCircle:    drawCircle,
	components.ShapeStar:      drawStar,
	components.ShapeDiamond:   drawDiamond,
	components.ShapeSpike:     drawSpike,
	components.ShapeLightning: drawLightning,
	components.ShapeCloud:     drawCloud,
	components.ShapeRipple:    drawRipple,
	components.ShapeExplosion: drawExplosion,
}

// renderPreset 同类粒子共享的绘制状态
type renderPreset struct {
	composite graphics.CompositeOp
	lineCap   graphics.LineCap
	lineJoin  graphics.LineJoin
}

var renderPresets = [components.ShapeTypeCount]renderPreset{
	components.ShapeLightning: {composite: graphics.CompositeSourceOver, lineCap: graphics.LineCapRound, lineJoin: graphics.LineJoinRound},
	components.ShapeCloud:     {composite: graphics.CompositeMultiply},
	components.ShapeRipple:    {composite: graphics.CompositeScreen},
}

func applyRenderPreset(s graphics.Surface, shape components.ShapeType) {
	var preset renderPreset
	if shape < components.ShapeTypeCount {
		preset = renderPresets[shape]
	}
	s.SetCompositeOperation(preset.composite)
	if preset.lineCap != graphics.LineCapButt || preset.lineJoin != graphics.LineJoinMiter {
		s.SetLineCap(preset.lineCap)
		s.SetLineJoin(preset.lineJoin)
	}
}

const (
	starPoints      = 5
	starInnerRatio  = 0.5
	explosionPoints = 8
)

var diamondOutline = color.RGBA{R: 255, G: 255, B: 255, A: 255}

func drawCircle(_ *ParticleRenderer, s graphics.Surface, p *components.Particle, c color.RGBA) {
	s.SetFillColor(c)
	s.BeginPath()
	s.Arc(0, 0, p.Size, 0, 2*math.Pi)
	s.Fill()
}

// drawStar 五角星，外半径 1.0，内半径 0.5
func drawStar(_ *ParticleRenderer, s graphics.Surface, p *components.Particle, c color.RGBA) {
	s.SetFillColor(c)
	s.BeginPath()
	for i := 0; i < starPoints*2; i++ {
		radius := p.Size
		if i%2 == 1 {
			radius *= starInnerRatio
		}
		angle := -math.Pi/2 + float64(i)*math.Pi/starPoints
		x, y := math.Cos(angle)*radius, math.Sin(angle)*radius
		if i == 0 {
			s.MoveTo(x, y)
		} else {
			s.LineTo(x, y)
		}
	}
	s.ClosePath()
	s.Fill()
}

// drawDiamond 菱形，带白色描边
func drawDiamond(_ *ParticleRenderer, s graphics.Surface, p *components.Particle, c color.RGBA) {
	r := p.Size
	s.SetFillColor(c)
	s.BeginPath()
	s.MoveTo(0, -r)
	s.LineTo(r*0.7, 0)
	s.LineTo(0, r)
	s.LineTo(-r*0.7, 0)
	s.ClosePath()
	s.Fill()

	s.SetStrokeColor(diamondOutline)
	s.SetLineWidth(1)
	s.Stroke()
}

// drawSpike 三角尖刺，尖端朝 -Y
func drawSpike(_ *ParticleRenderer, s graphics.Surface, p *components.Particle, c color.RGBA) {
	r := p.Size
	s.SetFillColor(c)
	s.BeginPath()
	s.MoveTo(0, -r*1.5)
	s.LineTo(r*0.5, r*0.5)
	s.LineTo(-r*0.5, r*0.5)
	s.ClosePath()
	s.Fill()
}

// drawLightning 折线闪电，端点样式由渲染预设提供
func drawLightning(_ *ParticleRenderer, s graphics.Surface, p *components.Particle, c color.RGBA) {
	r := p.Size
	s.SetStrokeColor(c)
	s.SetLineWidth(math.Max(1, r*0.5))
	s.BeginPath()
	s.MoveTo(-r, 0)
	s.LineTo(-r/3, -r/2)
	s.LineTo(r/3, r/2)
	s.LineTo(r, 0)
	s.Stroke()
}

// drawCloud 三个重叠圆组成的云团，透明度 ×0.6
func drawCloud(_ *ParticleRenderer, s graphics.Surface, p *components.Particle, c color.RGBA) {
	r := p.Size
	s.SetGlobalAlpha(s.GlobalAlpha() * 0.6)
	s.SetFillColor(c)
	for _, puff := range [3][3]float64{
		{-r * 0.5, 0, r * 0.6},
		{r * 0.5, 0, r * 0.6},
		{0, -r * 0.4, r * 0.7},
	} {
		s.BeginPath()
		s.Arc(puff[0], puff[1], puff[2], 0, 2*math.Pi)
		s.Fill()
	}
}

// drawRipple 描边圆环，透明度 ×0.5
func drawRipple(_ *ParticleRenderer, s graphics.Surface, p *components.Particle, c color.RGBA) {
	s.SetGlobalAlpha(s.GlobalAlpha() * 0.5)
	s.SetStrokeColor(c)
	s.SetLineWidth(2)
	s.BeginPath()
	s.Arc(0, 0, p.Size, 0, 2*math.Pi)
	s.Stroke()
}

// drawExplosion 八顶点不规则多边形
// 半径抖动取自以粒子 ID 为种子的 simplex 噪声，同一粒子每帧形状一致
func drawExplosion(r *ParticleRenderer, s graphics.Surface, p *components.Particle, c color.RGBA) {
	s.SetFillColor(c)
	s.BeginPath()
	for i := 0; i < explosionPoints; i++ {
		angle := float64(i) * 2 * math.Pi / explosionPoints
		radius := p.Size * r.explosionJitter(p.ID, i)
		x, y := math.Cos(angle)*radius, math.Sin(angle)*radius
		if i == 0 {
			s.MoveTo(x, y)
		} else {
			s.LineTo(x, y)
		}
	}
	s.ClosePath()
	s.Fill()
}

// explosionJitter 返回 [0.7, 1.0] 范围内的半径系数
func (r *ParticleRenderer) explosionJitter(id uint64, vertex int) float64 {
	n := r.noise.Eval2(float64(id)*0.37, float64(vertex)*1.31)
	return 0.7 + 0.3*(n+1)/2
}
