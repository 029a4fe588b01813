package systems

import (
	"errors"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/decker502/bubblefx/internal/particle"
	"github.com/decker502/bubblefx/pkg/components"
	"github.com/decker502/bubblefx/pkg/config"
)

// EffectKind identifies a particle factory.
type EffectKind uint8

const (
	EffectBubblePop EffectKind = iota
	EffectComboStars
	EffectSparkles
	EffectSparks
	EffectSpikes
	EffectShards
	EffectExplosion
	EffectCloud
	EffectRipple

	// EffectKindCount is the number of effect kinds.
	EffectKindCount
)

var effectKindNames = [EffectKindCount]string{
	EffectBubblePop:  "bubblePop",
	EffectComboStars: "comboStars",
	EffectSparkles:   "sparkles",
	EffectSparks:     "sparks",
	EffectSpikes:     "spikes",
	EffectShards:     "shards",
	EffectExplosion:  "explosion",
	EffectCloud:      "cloud",
	EffectRipple:     "ripple",
}

func (k EffectKind) String() string {
	if k < EffectKindCount {
		return effectKindNames[k]
	}
	return "unknown"
}

// ParseEffectKind 将预设文件中的名称转换为 EffectKind
func ParseEffectKind(name string) (EffectKind, bool) {
	for i, n := range effectKindNames {
		if n == name {
			return EffectKind(i), true
		}
	}
	return 0, false
}

// 固定数量的效果
const (
	sparkleCount   = 15
	sparkCount     = 20
	spikeCount     = 8
	shardCount     = 12
	explosionCount = 30
	cloudCount     = 10
	rippleCount    = 5

	// maxComboBonus 连击对星星数量的加成上限
	maxComboBonus = 10

	// bubblePopAngleJitter 泡泡破裂粒子的角度抖动（弧度）
	bubblePopAngleJitter = 0.25
)

var comboStarColors = []string{"#FFD700", "#FFA500", "#FFFF00", "#FFFFFF"}

// defaultPresets 各效果的物理与外观预设
// 速度单位 像素/秒，寿命单位 毫秒；泡泡破裂与连击星星的速度、寿命、尺寸
// 由 config.EffectsConfig 提供
var defaultPresets = [EffectKindCount]particle.Preset{
	EffectBubblePop: {
		Shape:      components.ShapeCircle,
		Speed:      particle.Fixed(100),
		Life:       particle.Fixed(800),
		LifeJitter: particle.Between(0.2, 0.4),
		Size:       particle.Between(1.5, 4.5),
		Gravity:    particle.Between(20, 50),
		Friction:   particle.Fixed(0.98),
		Bounce:     particle.Between(0.3, 0.7),
	},
	EffectComboStars: {
		Shape:         components.ShapeStar,
		Speed:         particle.Fixed(80),
		Life:          particle.Fixed(1200),
		LifeJitter:    particle.Between(0.2, 0.4),
		Size:          particle.Between(2, 6),
		Gravity:       particle.Fixed(30),
		Friction:      particle.Fixed(0.97),
		RotationSpeed: particle.Between(-4, 4),
	},
	EffectSparkles: {
		Shape:         components.ShapeStar,
		Speed:         particle.Fixed(60),
		Life:          particle.Fixed(1000),
		LifeJitter:    particle.Between(0.2, 0.3),
		Size:          particle.Between(2, 4),
		Gravity:       particle.Fixed(-10),
		Friction:      particle.Fixed(0.98),
		RotationSpeed: particle.Between(-2, 2),
		PulseSpeed:    particle.Between(3, 6),
	},
	EffectSparks: {
		Shape:       components.ShapeLightning,
		Speed:       particle.Fixed(200),
		Life:        particle.Fixed(500),
		LifeJitter:  particle.Between(0.2, 0.4),
		Size:        particle.Between(2, 4),
		Gravity:     particle.Fixed(80),
		Friction:    particle.Fixed(0.95),
		TrailLength: 6,
	},
	EffectSpikes: {
		Shape:      components.ShapeSpike,
		Speed:      particle.Fixed(150),
		Life:       particle.Fixed(700),
		LifeJitter: particle.Between(0.2, 0.3),
		Size:       particle.Between(4, 7),
		Gravity:    particle.Fixed(0),
		Friction:   particle.Fixed(0.92),
	},
	EffectShards: {
		Shape:         components.ShapeDiamond,
		Speed:         particle.Fixed(140),
		Life:          particle.Fixed(1100),
		LifeJitter:    particle.Between(0.2, 0.4),
		Size:          particle.Between(3, 6),
		Gravity:       particle.Fixed(120),
		Friction:      particle.Fixed(0.97),
		Bounce:        particle.Fixed(0.4),
		RotationSpeed: particle.Between(-6, 6),
	},
	EffectExplosion: {
		Shape:         components.ShapeExplosion,
		Speed:         particle.Fixed(150),
		Life:          particle.Fixed(1500),
		LifeJitter:    particle.Between(0.2, 0.4),
		Size:          particle.Between(3, 7),
		Gravity:       particle.Fixed(40),
		Friction:      particle.Fixed(0.94),
		RotationSpeed: particle.Between(-3, 3),
		ScaleSpeed:    particle.Fixed(-0.3),
	},
	EffectCloud: {
		Shape:      components.ShapeCloud,
		Speed:      particle.Fixed(30),
		Life:       particle.Fixed(2000),
		LifeJitter: particle.Between(0.2, 0.4),
		Size:       particle.Between(8, 14),
		Gravity:    particle.Fixed(-5),
		Friction:   particle.Fixed(0.99),
		ScaleSpeed: particle.Between(0.3, 0.6),
	},
	EffectRipple: {
		Shape:      components.ShapeRipple,
		Speed:      particle.Fixed(0),
		Life:       particle.Fixed(1000),
		LifeJitter: particle.Between(0.2, 0.3),
		Size:       particle.Fixed(10),
		Friction:   particle.Fixed(1),
		ScaleSpeed: particle.Fixed(1.5),
	},
}

// Preset returns the preset currently used for kind.
func (m *ParticleLifecycleManager) Preset(kind EffectKind) (particle.Preset, bool) {
	if kind >= EffectKindCount {
		return particle.Preset{}, false
	}
	return m.presets[kind], true
}

// LoadPresets overlays a preset file on the current presets.
//
// Every entry is applied independently: a bad entry is skipped and reported
// in the returned error while the others still take effect.
func (m *ParticleLifecycleManager) LoadPresets(file *particle.PresetFile) error {
	if file == nil {
		return nil
	}

	var errs []error
	for name, cfg := range file.Effects {
		kind, ok := ParseEffectKind(name)
		if !ok {
			errs = append(errs, fmt.Errorf("unknown effect %q", name))
			continue
		}
		preset, err := cfg.Apply(m.presets[kind])
		if err != nil {
			errs = append(errs, fmt.Errorf("effect %s: %w", name, err))
			continue
		}
		m.presets[kind] = preset
	}
	return errors.Join(errs...)
}

// spawnRequest 单个粒子的生成参数
type spawnRequest struct {
	preset  particle.Preset
	x, y    float64
	angle   float64
	speed   float64 // already scaled by quality
	color   string
	zIndex  int
	quality float64
}

func (m *ParticleLifecycleManager) spawn(req spawnRequest) *components.Particle {
	preset := req.preset
	p := m.GetParticleFromPool()
	m.spawning = p

	p.X, p.Y = req.x, req.y
	p.VX = math.Cos(req.angle) * req.speed
	p.VY = math.Sin(req.angle) * req.speed
	p.Size = preset.Size.Sample(m.rng)
	p.Color = req.color

	p.Gravity = preset.Gravity.Sample(m.rng)
	p.Friction = preset.Friction.Sample(m.rng)
	p.Bounce = preset.Bounce.Sample(m.rng)

	p.RotationSpeed = preset.RotationSpeed.Sample(m.rng)
	p.ScaleSpeed = preset.ScaleSpeed.Sample(m.rng)
	p.PulseSpeed = preset.PulseSpeed.Sample(m.rng)

	life := m.jitteredLife(preset)
	p.Life, p.MaxLife = life, life

	trail := preset.TrailLength
	if trail > m.maxTrailLength {
		trail = m.maxTrailLength
	}
	p.MaxTrailLength = trail
	p.Trail.SetLimit(trail)

	p.Type = preset.Shape
	p.ZIndex = req.zIndex
	m.spawning = nil
	return p
}

// jitteredLife 名义寿命 ±(20%~40%)
func (m *ParticleLifecycleManager) jitteredLife(preset particle.Preset) float64 {
	nominal := preset.Life.Sample(m.rng)
	jitter := preset.LifeJitter.Sample(m.rng)
	if m.rng.Intn(2) == 0 {
		jitter = -jitter
	}
	life := nominal * (1 + jitter)
	if life < 1 {
		life = 1
	}
	return life
}

// launchSpeed = base × U(0.5, 1.0) × quality
func (m *ParticleLifecycleManager) launchSpeed(preset particle.Preset, quality float64) float64 {
	return preset.Speed.Sample(m.rng) * (0.5 + 0.5*m.rng.Float64()) * quality
}

func (m *ParticleLifecycleManager) randomAngle() float64 {
	return m.rng.Float64() * 2 * math.Pi
}

// evenAngle 均匀分布角度加随机抖动
func (m *ParticleLifecycleManager) evenAngle(i, count int, jitter float64) float64 {
	return 2*math.Pi*float64(i)/float64(count) + (m.rng.Float64()*2-1)*jitter
}

func effectsConfigOrDefault(cfg *config.EffectsConfig) *config.EffectsConfig {
	if cfg == nil {
		return config.DefaultEffectsConfig()
	}
	return cfg
}

// parseColor validates a hex colour.
func parseColor(hex string) (colorful.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return c, nil
}

// tint 将颜色向白色混合 amount，用于生成同色系的变化
func tint(c colorful.Color, amount float64) string {
	return c.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, amount).Clamped().Hex()
}

// CreateBubblePopParticles spawns the burst for a popped bubble.
//
// Count is floor((floor(bubbleSize/5) + cfg.Particles.Bubble.Count) × quality);
// particles fan out evenly with ±0.25 rad jitter using the bubble type's
// palette.
func (m *ParticleLifecycleManager) CreateBubblePopParticles(x, y float64, bubbleType string, bubbleSize float64, cfg *config.EffectsConfig, quality float64) []*components.Particle {
	return m.build("createBubblePopParticles", func(out *[]*components.Particle) error {
		cfg := effectsConfigOrDefault(cfg)
		quality := config.ClampQuality(quality)
		bubble := cfg.Particles.Bubble

		colors := config.GetBubbleColors(bubbleType)
		for _, c := range colors {
			if _, err := parseColor(c); err != nil {
				return fmt.Errorf("palette %s: %w", bubbleType, err)
			}
		}

		preset := m.presets[EffectBubblePop]
		preset.Speed = particle.Fixed(bubble.Speed)
		preset.Life = particle.Fixed(bubble.Life)
		preset.Size = particle.Between(bubble.Size*0.5, bubble.Size*1.5)

		count := int(math.Floor((math.Floor(bubbleSize/5) + float64(bubble.Count)) * quality))
		for i := 0; i < count; i++ {
			*out = append(*out, m.spawn(spawnRequest{
				preset: preset,
				x:      x,
				y:      y,
				angle:  m.evenAngle(i, count, bubblePopAngleJitter),
				speed:  m.launchSpeed(preset, quality),
				color:  colors[m.rng.Intn(len(colors))],
			}))
		}
		return nil
	})
}

// CreateComboStars spawns rotating stars for a combo; larger combos (up to
// +10) add more stars.
func (m *ParticleLifecycleManager) CreateComboStars(x, y float64, comboCount int, cfg *config.EffectsConfig, quality float64) []*components.Particle {
	return m.build("createComboStars", func(out *[]*components.Particle) error {
		cfg := effectsConfigOrDefault(cfg)
		quality := config.ClampQuality(quality)
		star := cfg.Particles.Star

		bonus := comboCount
		if bonus < 0 {
			bonus = 0
		}
		if bonus > maxComboBonus {
			bonus = maxComboBonus
		}

		preset := m.presets[EffectComboStars]
		preset.Speed = particle.Fixed(star.Speed)
		preset.Life = particle.Fixed(star.Life)
		preset.Size = particle.Between(star.Size*0.75, star.Size*1.5)

		count := int(math.Floor(float64(star.Count+bonus) * quality))
		for i := 0; i < count; i++ {
			p := m.spawn(spawnRequest{
				preset: preset,
				x:      x,
				y:      y,
				angle:  m.evenAngle(i, count, 0.3),
				speed:  m.launchSpeed(preset, quality),
				color:  comboStarColors[i%len(comboStarColors)],
				zIndex: 1,
			})
			p.Rotation = m.randomAngle()
			*out = append(*out, p)
		}
		return nil
	})
}

// CreateSparkles spawns 15 rising, pulsing stars tinted around color.
func (m *ParticleLifecycleManager) CreateSparkles(x, y float64, color string, cfg *config.EffectsConfig, quality float64) []*components.Particle {
	return m.build("createSparkles", func(out *[]*components.Particle) error {
		quality := config.ClampQuality(quality)
		base, err := parseColor(color)
		if err != nil {
			return err
		}

		preset := m.presets[EffectSparkles]
		for i := 0; i < sparkleCount; i++ {
			p := m.spawn(spawnRequest{
				preset: preset,
				x:      x + (m.rng.Float64()*2-1)*10,
				y:      y + (m.rng.Float64()*2-1)*10,
				angle:  m.randomAngle(),
				speed:  m.launchSpeed(preset, quality),
				color:  tint(base, m.rng.Float64()*0.4),
				zIndex: 2,
			})
			*out = append(*out, p)
		}
		return nil
	})
}

// CreateSparks spawns 20 fast lightning sparks in random directions with
// short trails.
func (m *ParticleLifecycleManager) CreateSparks(x, y float64, color string, cfg *config.EffectsConfig, quality float64) []*components.Particle {
	return m.build("createSparks", func(out *[]*components.Particle) error {
		quality := config.ClampQuality(quality)
		base, err := parseColor(color)
		if err != nil {
			return err
		}

		preset := m.presets[EffectSparks]
		if cfg != nil && cfg.Particles.MaxTrailLength > 0 && preset.TrailLength > cfg.Particles.MaxTrailLength {
			preset.TrailLength = cfg.Particles.MaxTrailLength
		}
		for i := 0; i < sparkCount; i++ {
			p := m.spawn(spawnRequest{
				preset: preset,
				x:      x,
				y:      y,
				angle:  m.randomAngle(),
				speed:  m.launchSpeed(preset, quality),
				color:  tint(base, m.rng.Float64()*0.5),
			})
			p.Rotation = math.Atan2(p.VY, p.VX)
			*out = append(*out, p)
		}
		return nil
	})
}

// CreateSpikes spawns 8 spikes flying straight out, each pointing along its
// direction of travel.
func (m *ParticleLifecycleManager) CreateSpikes(x, y float64, color string, cfg *config.EffectsConfig, quality float64) []*components.Particle {
	return m.build("createSpikes", func(out *[]*components.Particle) error {
		quality := config.ClampQuality(quality)
		if _, err := parseColor(color); err != nil {
			return err
		}

		preset := m.presets[EffectSpikes]
		for i := 0; i < spikeCount; i++ {
			angle := m.evenAngle(i, spikeCount, 0)
			p := m.spawn(spawnRequest{
				preset: preset,
				x:      x,
				y:      y,
				angle:  angle,
				speed:  m.launchSpeed(preset, quality),
				color:  color,
			})
			// 尖刺三角形的顶点朝 -Y，旋转到运动方向
			p.Rotation = angle + math.Pi/2
			*out = append(*out, p)
		}
		return nil
	})
}

// CreateShards spawns 12 tumbling diamond shards that fall and bounce.
func (m *ParticleLifecycleManager) CreateShards(x, y float64, color string, cfg *config.EffectsConfig, quality float64) []*components.Particle {
	return m.build("createShards", func(out *[]*components.Particle) error {
		quality := config.ClampQuality(quality)
		base, err := parseColor(color)
		if err != nil {
			return err
		}

		preset := m.presets[EffectShards]
		for i := 0; i < shardCount; i++ {
			p := m.spawn(spawnRequest{
				preset: preset,
				x:      x,
				y:      y,
				angle:  m.evenAngle(i, shardCount, 0.4),
				speed:  m.launchSpeed(preset, quality),
				color:  tint(base, m.rng.Float64()*0.3),
			})
			p.Rotation = m.randomAngle()
			*out = append(*out, p)
		}
		return nil
	})
}

// CreateExplosion spawns 30 explosion fragments in random directions. A third
// of them form a hot core drawn above the rest.
func (m *ParticleLifecycleManager) CreateExplosion(x, y float64, color string, cfg *config.EffectsConfig, quality float64) []*components.Particle {
	return m.build("createExplosion", func(out *[]*components.Particle) error {
		cfg := effectsConfigOrDefault(cfg)
		quality := config.ClampQuality(quality)
		base, err := parseColor(color)
		if err != nil {
			return err
		}
		hot, _ := colorful.Hex("#FFD700")

		explosion := cfg.Particles.Explosion
		preset := m.presets[EffectExplosion]
		preset.Speed = particle.Fixed(explosion.Speed)
		preset.Life = particle.Fixed(explosion.Life)
		preset.Size = particle.Between(explosion.Size*0.6, explosion.Size*1.4)

		for i := 0; i < explosionCount; i++ {
			req := spawnRequest{
				preset: preset,
				x:      x,
				y:      y,
				angle:  m.randomAngle(),
				speed:  m.launchSpeed(preset, quality),
				color:  base.BlendLab(hot, m.rng.Float64()*0.3).Clamped().Hex(),
			}
			if i%3 == 0 {
				req.color = base.BlendLab(hot, 0.5+m.rng.Float64()*0.5).Clamped().Hex()
				req.zIndex = 1
			}
			p := m.spawn(req)
			p.Rotation = m.randomAngle()
			*out = append(*out, p)
		}
		return nil
	})
}

// CreateCloud spawns 10 slowly drifting, growing cloud puffs.
func (m *ParticleLifecycleManager) CreateCloud(x, y float64, color string, cfg *config.EffectsConfig, quality float64) []*components.Particle {
	return m.build("createCloud", func(out *[]*components.Particle) error {
		quality := config.ClampQuality(quality)
		if _, err := parseColor(color); err != nil {
			return err
		}

		preset := m.presets[EffectCloud]
		for i := 0; i < cloudCount; i++ {
			p := m.spawn(spawnRequest{
				preset: preset,
				x:      x + (m.rng.Float64()*2-1)*15,
				y:      y + (m.rng.Float64()*2-1)*15,
				angle:  m.randomAngle(),
				speed:  m.launchSpeed(preset, quality),
				color:  color,
			})
			*out = append(*out, p)
		}
		return nil
	})
}

// CreateRipple spawns 5 concentric rings expanding at staggered rates.
func (m *ParticleLifecycleManager) CreateRipple(x, y float64, color string, cfg *config.EffectsConfig, quality float64) []*components.Particle {
	return m.build("createRipple", func(out *[]*components.Particle) error {
		quality := config.ClampQuality(quality)
		if _, err := parseColor(color); err != nil {
			return err
		}

		preset := m.presets[EffectRipple]
		for i := 0; i < rippleCount; i++ {
			p := m.spawn(spawnRequest{
				preset: preset,
				x:      x,
				y:      y,
				speed:  m.launchSpeed(preset, quality),
				color:  color,
				zIndex: i,
			})
			// 外圈扩散更快
			p.ScaleSpeed *= 1 + 0.4*float64(i)
			*out = append(*out, p)
		}
		return nil
	})
}

// CreateEffect dispatches to the colour-driven factory for kind.
// Bubble pops and combo stars need extra inputs and use their own factories.
func (m *ParticleLifecycleManager) CreateEffect(kind EffectKind, x, y float64, color string, cfg *config.EffectsConfig, quality float64) []*components.Particle {
	switch kind {
	case EffectSparkles:
		return m.CreateSparkles(x, y, color, cfg, quality)
	case EffectSparks:
		return m.CreateSparks(x, y, color, cfg, quality)
	case EffectSpikes:
		return m.CreateSpikes(x, y, color, cfg, quality)
	case EffectShards:
		return m.CreateShards(x, y, color, cfg, quality)
	case EffectExplosion:
		return m.CreateExplosion(x, y, color, cfg, quality)
	case EffectCloud:
		return m.CreateCloud(x, y, color, cfg, quality)
	case EffectRipple:
		return m.CreateRipple(x, y, color, cfg, quality)
	default:
		m.reportError("createEffect", fmt.Errorf("effect %s cannot be created by color", kind))
		return nil
	}
}

// signatureEffects 泡泡类型对应的特色效果
var signatureEffects = map[string]EffectKind{
	"electric": EffectSparks,
	"spiky":    EffectSpikes,
	"diamond":  EffectShards,
	"frozen":   EffectShards,
	"boss":     EffectExplosion,
	"poison":   EffectCloud,
	"rainbow":  EffectSparkles,
	"golden":   EffectSparkles,
}

// SignatureEffect returns the extra effect a bubble type triggers when it
// pops, if any.
func SignatureEffect(bubbleType string) (EffectKind, bool) {
	kind, ok := signatureEffects[bubbleType]
	return kind, ok
}

// CreateAdvancedBubbleEffect combines the bubble pop with the bubble type's
// signature effect and a ripple.
func (m *ParticleLifecycleManager) CreateAdvancedBubbleEffect(x, y float64, bubbleType string, bubbleSize float64, cfg *config.EffectsConfig, quality float64) []*components.Particle {
	out := m.CreateBubblePopParticles(x, y, bubbleType, bubbleSize, cfg, quality)

	colors := config.GetBubbleColors(bubbleType)
	if kind, ok := SignatureEffect(bubbleType); ok {
		out = append(out, m.CreateEffect(kind, x, y, colors[0], cfg, quality)...)
	}
	out = append(out, m.CreateRipple(x, y, colors[len(colors)-1], cfg, quality)...)
	return out
}

// 效果强度范围
const (
	minIntensity = 0.1
	maxIntensity = 3
)

// ClampIntensity limits an effect intensity to [0.1, 3]. NaN becomes 1.
func ClampIntensity(intensity float64) float64 {
	switch {
	case math.IsNaN(intensity):
		return 1
	case intensity < minIntensity:
		return minIntensity
	case intensity > maxIntensity:
		return maxIntensity
	}
	return intensity
}

// CreateSpecialBubbleEffect runs the colour-driven factory for kind at the
// given intensity: the particle count becomes max(1, round(n × intensity))
// and every launch velocity is multiplied by intensity.
func (m *ParticleLifecycleManager) CreateSpecialBubbleEffect(kind EffectKind, x, y float64, color string, intensity float64, cfg *config.EffectsConfig, quality float64) []*components.Particle {
	intensity = ClampIntensity(intensity)

	out := m.CreateEffect(kind, x, y, color, cfg, quality)
	if len(out) == 0 {
		return out
	}

	want := int(math.Round(float64(len(out)) * intensity))
	if want < 1 {
		want = 1
	}
	for len(out) < want {
		more := m.CreateEffect(kind, x, y, color, cfg, quality)
		if len(more) == 0 {
			break
		}
		out = append(out, more...)
	}
	if want > len(out) {
		want = len(out)
	}
	for _, p := range out[want:] {
		m.ReturnParticleToPool(p)
	}
	for i := want; i < len(out); i++ {
		out[i] = nil
	}
	out = out[:want]

	for _, p := range out {
		p.VX *= intensity
		p.VY *= intensity
	}
	return out
}

// effectPriorities 效果优先度 1-10，低品质下只显示高优先度效果
var effectPriorities = [EffectKindCount]int{
	EffectBubblePop:  10,
	EffectComboStars: 9,
	EffectExplosion:  8,
	EffectSparks:     7,
	EffectSpikes:     6,
	EffectShards:     6,
	EffectSparkles:   5,
	EffectCloud:      4,
	EffectRipple:     3,
}

// EffectPriority returns the 1-10 importance of kind.
func EffectPriority(kind EffectKind) int {
	if kind >= EffectKindCount {
		return 0
	}
	return effectPriorities[kind]
}
