package systems

import (
	"fmt"
	"image/color"
	"log"
	"math"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/ojrac/opensimplex-go"

	"github.com/decker502/bubblefx/pkg/components"
	"github.com/decker502/bubblefx/pkg/config"
	"github.com/decker502/bubblefx/pkg/graphics"
)

// DrawFunc draws a particle in its local coordinate system (origin at the
// particle centre). A returned error or a panic marks the particle as not
// drawn for this frame.
type DrawFunc func(s graphics.Surface, p *components.Particle) error

// fallbackColor 无法解析的颜色按白色绘制
var fallbackColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// ParticleRenderer draws particle slices onto a graphics.Surface.
//
// It keeps no per-frame state between calls apart from caches: a colour
// cache, a reusable sort buffer and the custom draw registry.
type ParticleRenderer struct {
	customDraw [components.ShapeTypeCount]DrawFunc
	colors     map[string]color.RGBA
	scratch    []*components.Particle
	noise      opensimplex.Noise
}

// NewParticleRenderer creates a renderer. seed drives the explosion outline
// noise.
func NewParticleRenderer(seed int64) *ParticleRenderer {
	return &ParticleRenderer{
		colors: make(map[string]color.RGBA),
		noise:  opensimplex.New(seed),
	}
}

// Render draws every active particle in slice order.
//
// For each particle: save → translate → trail → rotate/scale → body →
// restore. The shape's render preset is applied per particle.
func (r *ParticleRenderer) Render(s graphics.Surface, particles []*components.Particle) {
	for _, p := range particles {
		if p == nil || !p.IsActive {
			continue
		}
		s.Save()
		applyRenderPreset(s, p.Type)
		r.drawParticle(s, p)
		s.Restore()
	}
}

// RenderOptimized draws the particles that intersect viewport (all of them
// when viewport is nil), grouped by shape then ZIndex so each run of equal
// shapes shares one render preset. It returns the number of particles drawn.
func (r *ParticleRenderer) RenderOptimized(s graphics.Surface, particles []*components.Particle, viewport *graphics.Viewport) int {
	r.scratch = r.scratch[:0]
	for _, p := range particles {
		if p == nil || !p.IsActive {
			continue
		}
		if viewport != nil && !viewport.Intersects(p.X, p.Y, p.Size*2) {
			continue
		}
		r.scratch = append(r.scratch, p)
	}

	sort.SliceStable(r.scratch, func(i, j int) bool {
		a, b := r.scratch[i], r.scratch[j]
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.ZIndex < b.ZIndex
	})

	inRun := false
	var current components.ShapeType
	for _, p := range r.scratch {
		if !inRun || p.Type != current {
			if inRun {
				s.Restore()
			}
			s.Save()
			applyRenderPreset(s, p.Type)
			current = p.Type
			inRun = true
		}
		r.drawParticle(s, p)
	}
	if inRun {
		s.Restore()
	}

	drawn := len(r.scratch)
	// 不持有粒子引用到下一帧
	for i := range r.scratch {
		r.scratch[i] = nil
	}
	return drawn
}

// drawParticle 在局部坐标系中绘制拖尾与本体
func (r *ParticleRenderer) drawParticle(s graphics.Surface, p *components.Particle) {
	s.Save()
	s.Translate(p.X, p.Y)

	// 拖尾在旋转/缩放之前绘制，保持与世界坐标方向一致
	r.RenderTrail(s, p)

	if p.Rotation != 0 {
		s.Rotate(p.Rotation)
	}
	if p.Scale != 1 {
		s.Scale(p.Scale, p.Scale)
	}
	r.RenderParticle(s, p)
	s.Restore()
}

// RenderParticle draws the particle body at the surface origin. A registered
// custom draw function replaces the built-in shape.
func (r *ParticleRenderer) RenderParticle(s graphics.Surface, p *components.Particle) {
	if r.HasCustomDrawFunction(p.Type) {
		r.ExecuteCustomDrawFunction(s, p)
		return
	}

	drawer := drawCircle
	if p.Type < components.ShapeTypeCount && shapeDrawers[p.Type] != nil {
		drawer = shapeDrawers[p.Type]
	}

	s.SetGlobalAlpha(p.Alpha)
	drawer(r, s, p, r.color(p.Color))
}

// RenderTrail draws the trail as segments relative to the particle position;
// the surface origin must be at the particle. Segment i fades with
// pointAlpha × i/len. Trails shorter than two points are skipped.
func (r *ParticleRenderer) RenderTrail(s graphics.Surface, p *components.Particle) {
	n := p.Trail.Len()
	if n < 2 {
		return
	}

	s.Save()
	s.SetStrokeColor(r.color(p.Color))
	s.SetLineWidth(math.Max(1, p.Size*0.5))
	s.SetLineCap(graphics.LineCapRound)

	prev := p.Trail.At(0)
	for i := 1; i < n; i++ {
		pt := p.Trail.At(i)
		s.SetGlobalAlpha(pt.Alpha * float64(i) / float64(n))
		s.BeginPath()
		s.MoveTo(prev.X-p.X, prev.Y-p.Y)
		s.LineTo(pt.X-p.X, pt.Y-p.Y)
		s.Stroke()
		prev = pt
	}
	s.Restore()
}

// GetBubbleColors returns the palette for a bubble type, falling back to the
// normal palette.
func (r *ParticleRenderer) GetBubbleColors(bubbleType string) []string {
	return config.GetBubbleColors(bubbleType)
}

// RegisterCustomDrawFunction overrides the drawing of shape with fn.
func (r *ParticleRenderer) RegisterCustomDrawFunction(shape components.ShapeType, fn DrawFunc) error {
	if shape >= components.ShapeTypeCount {
		return fmt.Errorf("cannot register draw function for unknown shape %d", shape)
	}
	if fn == nil {
		return fmt.Errorf("draw function for %s is nil", shape)
	}
	r.customDraw[shape] = fn
	return nil
}

// UnregisterCustomDrawFunction restores the built-in drawing for shape.
func (r *ParticleRenderer) UnregisterCustomDrawFunction(shape components.ShapeType) {
	if shape < components.ShapeTypeCount {
		r.customDraw[shape] = nil
	}
}

// HasCustomDrawFunction reports whether shape has a custom draw function.
func (r *ParticleRenderer) HasCustomDrawFunction(shape components.ShapeType) bool {
	return shape < components.ShapeTypeCount && r.customDraw[shape] != nil
}

// ExecuteCustomDrawFunction runs the custom draw function for p's shape.
// It reports whether the particle was drawn; errors and panics are logged
// and leave the surface state as it was before the call.
func (r *ParticleRenderer) ExecuteCustomDrawFunction(s graphics.Surface, p *components.Particle) (drawn bool) {
	if !r.HasCustomDrawFunction(p.Type) {
		return false
	}
	fn := r.customDraw[p.Type]

	s.Save()
	defer func() {
		if rec := recover(); rec != nil {
			log.Printf("[ParticleRenderer] Custom draw function for %s panicked (particle %d): %v", p.Type, p.ID, rec)
			drawn = false
		}
		s.Restore()
	}()

	s.SetGlobalAlpha(p.Alpha)
	if err := fn(s, p); err != nil {
		log.Printf("[ParticleRenderer] Custom draw function for %s failed (particle %d): %v", p.Type, p.ID, err)
		return false
	}
	return true
}

// color 解析并缓存十六进制颜色
func (r *ParticleRenderer) color(hex string) color.RGBA {
	if c, ok := r.colors[hex]; ok {
		return c
	}

	c := fallbackColor
	parsed, err := colorful.Hex(hex)
	if err != nil {
		log.Printf("[ParticleRenderer] Warning: invalid color %q, using white", hex)
	} else {
		cr, cg, cb := parsed.Clamped().RGB255()
		c = color.RGBA{R: cr, G: cg, B: cb, A: 255}
	}
	r.colors[hex] = c
	return c
}
