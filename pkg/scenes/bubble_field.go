package scenes

import (
	"image/color"
	"math"
	"math/rand"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/bubblefx/pkg/config"
	"github.com/decker502/bubblefx/pkg/graphics"
	"github.com/decker502/bubblefx/pkg/utils"
)

// 泡泡场参数
const (
	bubbleMinRadius = 18.0
	bubbleMaxRadius = 42.0
	bubbleMinSpeed  = 35.0 // 像素/秒
	bubbleMaxSpeed  = 90.0
	bubbleGrowTime  = 0.35 // 出现动画时长（秒）
	bubbleWobble    = 6.0  // 水平摆动幅度（像素）

	defaultSpawnInterval = 0.6
	defaultMaxBubbles    = 24
)

// bubbleTypeWeights 生成泡泡类型的权重，普通泡泡最常见
var bubbleTypeWeights = []struct {
	name   string
	weight int
}{
	{"normal", 30},
	{"pink", 8},
	{"stone", 6},
	{"iron", 5},
	{"clock", 5},
	{"escape", 5},
	{"electric", 5},
	{"spiky", 5},
	{"poison", 5},
	{"frozen", 5},
	{"diamond", 4},
	{"rainbow", 4},
	{"golden", 3},
	{"boss", 2},
}

// Bubble 一个上浮的泡泡
type Bubble struct {
	ID     int
	X, Y   float64
	Radius float64
	Type   string
	Speed  float64 // 上浮速度
	Phase  float64 // 摆动相位
	Age    float64 // 存在时间（秒）
}

// DisplayRadius 出现动画期间带回弹的半径
func (b *Bubble) DisplayRadius() float64 {
	return b.Radius * utils.EaseOutBack(b.Age/bubbleGrowTime)
}

// DisplayX 叠加水平摆动后的绘制位置
func (b *Bubble) DisplayX() float64 {
	return b.X + math.Sin(b.Phase+b.Age*2)*bubbleWobble
}

// Contains reports whether (x, y) lies inside the drawn bubble.
func (b *Bubble) Contains(x, y float64) bool {
	r := b.DisplayRadius()
	dx, dy := x-b.DisplayX(), y-b.Y
	return dx*dx+dy*dy <= r*r
}

// BubbleField spawns bubbles at the bottom of the play area and floats them
// upward until they leave the top edge or are popped.
type BubbleField struct {
	width, height float64
	rng           *rand.Rand

	bubbles       []*Bubble
	nextID        int
	spawnTimer    float64
	spawnInterval float64
	maxBubbles    int
	totalWeight   int
}

// NewBubbleField creates an empty field of the given size.
func NewBubbleField(width, height float64, seed int64) *BubbleField {
	total := 0
	for _, w := range bubbleTypeWeights {
		total += w.weight
	}
	return &BubbleField{
		width:         width,
		height:        height,
		rng:           rand.New(rand.NewSource(seed)),
		spawnInterval: defaultSpawnInterval,
		maxBubbles:    defaultMaxBubbles,
		totalWeight:   total,
	}
}

// Bubbles returns the live bubbles, oldest first.
func (f *BubbleField) Bubbles() []*Bubble {
	return f.bubbles
}

// Update advances the field by dt seconds.
func (f *BubbleField) Update(dt float64) {
	kept := f.bubbles[:0]
	for _, b := range f.bubbles {
		b.Age += dt
		b.Y -= b.Speed * dt
		if b.Y+b.Radius < 0 {
			continue
		}
		kept = append(kept, b)
	}
	for i := len(kept); i < len(f.bubbles); i++ {
		f.bubbles[i] = nil
	}
	f.bubbles = kept

	f.spawnTimer += dt
	for f.spawnTimer >= f.spawnInterval {
		f.spawnTimer -= f.spawnInterval
		if len(f.bubbles) < f.maxBubbles {
			f.Spawn()
		}
	}
}

// Spawn adds a random bubble just below the bottom edge.
func (f *BubbleField) Spawn() *Bubble {
	radius := bubbleMinRadius + f.rng.Float64()*(bubbleMaxRadius-bubbleMinRadius)
	f.nextID++
	b := &Bubble{
		ID:     f.nextID,
		X:      radius + f.rng.Float64()*(f.width-2*radius),
		Y:      f.height + radius,
		Radius: radius,
		Type:   f.randomType(),
		Speed:  bubbleMinSpeed + f.rng.Float64()*(bubbleMaxSpeed-bubbleMinSpeed),
		Phase:  f.rng.Float64() * 2 * math.Pi,
	}
	f.bubbles = append(f.bubbles, b)
	return b
}

func (f *BubbleField) randomType() string {
	n := f.rng.Intn(f.totalWeight)
	for _, w := range bubbleTypeWeights {
		if n < w.weight {
			return w.name
		}
		n -= w.weight
	}
	return config.DefaultBubbleType
}

// BubbleAt returns the topmost bubble under (x, y), or nil.
func (f *BubbleField) BubbleAt(x, y float64) *Bubble {
	// 后生成的泡泡绘制在上层
	for i := len(f.bubbles) - 1; i >= 0; i-- {
		if f.bubbles[i].Contains(x, y) {
			return f.bubbles[i]
		}
	}
	return nil
}

// Pop removes b from the field. It reports false if b is not in the field.
func (f *BubbleField) Pop(b *Bubble) bool {
	for i, candidate := range f.bubbles {
		if candidate == b {
			copy(f.bubbles[i:], f.bubbles[i+1:])
			f.bubbles[len(f.bubbles)-1] = nil
			f.bubbles = f.bubbles[:len(f.bubbles)-1]
			return true
		}
	}
	return false
}

// Clear removes every bubble.
func (f *BubbleField) Clear() {
	for i := range f.bubbles {
		f.bubbles[i] = nil
	}
	f.bubbles = f.bubbles[:0]
}

// bubblePainter 泡泡外观的颜色缓存
type bubblePainter struct {
	fills   map[string]color.RGBA
	strokes map[string]color.RGBA
}

func newBubblePainter() *bubblePainter {
	return &bubblePainter{
		fills:   make(map[string]color.RGBA),
		strokes: make(map[string]color.RGBA),
	}
}

// colors 填充色取调色板首色，描边取末色并加深
func (p *bubblePainter) colors(bubbleType string) (fill, stroke color.RGBA) {
	if c, ok := p.fills[bubbleType]; ok {
		return c, p.strokes[bubbleType]
	}

	palette := config.GetBubbleColors(bubbleType)
	first, err := colorful.Hex(palette[0])
	if err != nil {
		first = colorful.Color{R: 1, G: 1, B: 1}
	}
	last, err := colorful.Hex(palette[len(palette)-1])
	if err != nil {
		last = first
	}
	last = last.BlendLab(colorful.Color{}, 0.25)

	fill = rgba(first)
	stroke = rgba(last)
	p.fills[bubbleType] = fill
	p.strokes[bubbleType] = stroke
	return fill, stroke
}

func rgba(c colorful.Color) color.RGBA {
	r, g, b := c.Clamped().RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Draw paints the bubbles onto s: a translucent body, a rim and a small
// highlight.
func (p *bubblePainter) Draw(s graphics.Surface, bubbles []*Bubble) {
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	for _, b := range bubbles {
		r := b.DisplayRadius()
		if r <= 0 {
			continue
		}
		fill, stroke := p.colors(b.Type)

		s.Save()
		s.Translate(b.DisplayX(), b.Y)

		s.SetGlobalAlpha(0.35)
		s.SetFillColor(fill)
		s.BeginPath()
		s.Arc(0, 0, r, 0, 2*math.Pi)
		s.Fill()

		s.SetGlobalAlpha(0.9)
		s.SetStrokeColor(stroke)
		s.SetLineWidth(2)
		s.Stroke()

		s.SetGlobalAlpha(0.7)
		s.SetFillColor(white)
		s.BeginPath()
		s.Arc(-r*0.35, -r*0.35, r*0.18, 0, 2*math.Pi)
		s.Fill()

		s.Restore()
	}
}
