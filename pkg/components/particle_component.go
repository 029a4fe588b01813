package components

// ShapeType 粒子形状（闭合枚举）
//
// 每个形状对应一个绘制例程和一组物理预设，新增形状时必须同步更新
// systems 包中以 shapeTypeCount 为长度的分派表，否则编译失败。
type ShapeType uint8

const (
	ShapeCircle ShapeType = iota
	ShapeStar
	ShapeDiamond
	ShapeSpike
	ShapeLightning
	ShapeCloud
	ShapeRipple
	ShapeExplosion

	// ShapeTypeCount is the number of shapes; used to size dispatch tables.
	ShapeTypeCount
)

var shapeTypeNames = [ShapeTypeCount]string{
	ShapeCircle:    "circle",
	ShapeStar:      "star",
	ShapeDiamond:   "diamond",
	ShapeSpike:     "spike",
	ShapeLightning: "lightning",
	ShapeCloud:     "cloud",
	ShapeRipple:    "ripple",
	ShapeExplosion: "explosion",
}

// String returns the lowercase tag used in configuration files.
func (s ShapeType) String() string {
	if s < ShapeTypeCount {
		return shapeTypeNames[s]
	}
	return "unknown"
}

// ParseShapeType 将配置中的字符串标签转换为 ShapeType
func ParseShapeType(name string) (ShapeType, bool) {
	for i, n := range shapeTypeNames {
		if n == name {
			return ShapeType(i), true
		}
	}
	return ShapeCircle, false
}

// DefaultParticleColor 粒子重置后的默认颜色
const DefaultParticleColor = "#FFFFFF"

// MinParticleScale 缩放下限，外观更新后 Scale 不会低于此值
const MinParticleScale = 0.1

// Particle represents a single pooled particle.
//
// A particle is owned by exactly one collection at a time: either the idle
// pool of a ParticleLifecycleManager or the caller's active slice. Ownership
// moves only through GetParticleFromPool / ReturnParticleToPool.
//
// This is a pure data component - behaviour lives in pkg/systems.
type Particle struct {
	// Position (世界坐标)
	X, Y float64

	// Velocity (像素/秒)
	VX, VY float64

	// Appearance
	Size          float64
	Color         string  // "#RRGGBB"
	Alpha         float64 // 0-1, derived from Life/MaxLife each frame
	Rotation      float64 // radians
	RotationSpeed float64 // radians per second
	Scale         float64 // effective scale including pulse, >= MinParticleScale
	BaseScale     float64 // integrated scale before pulse is applied
	ScaleSpeed    float64 // scale units per second

	// Physics
	Gravity  float64 // 像素/秒², 负值表示上升
	Friction float64 // per-frame velocity multiplier in (0,1]
	Bounce   float64 // restitution when crossing the floor, 0 disables

	// Lifecycle (毫秒)
	Life     float64
	MaxLife  float64
	IsActive bool

	// Special
	PulseSpeed     float64
	Trail          Trail
	MaxTrailLength int
	ZIndex         int

	// Identity
	ID   uint64
	Type ShapeType
}

// LifeRatio returns Life/MaxLife clamped to [0,1].
func (p *Particle) LifeRatio() float64 {
	if p.MaxLife <= 0 {
		return 0
	}
	r := p.Life / p.MaxLife
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}
