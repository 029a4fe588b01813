package systems

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/decker502/bubblefx/internal/particle"
	"github.com/decker502/bubblefx/pkg/components"
	"github.com/decker502/bubblefx/pkg/config"
	"github.com/decker502/bubblefx/pkg/game"
)

// TestCreateBubblePopParticles 40 像素的普通泡泡产生 floor(40/5)+bubble.count 个圆形粒子
func TestCreateBubblePopParticles(t *testing.T) {
	m := newTestLifecycle(t, 100)
	cfg := config.DefaultEffectsConfig()

	ps := m.CreateBubblePopParticles(100, 100, "normal", 40, cfg, 1.0)

	want := 40/5 + cfg.Particles.Bubble.Count
	if len(ps) != want {
		t.Fatalf("count: got %d, want %d", len(ps), want)
	}

	palette := config.GetBubbleColors("normal")
	for i, p := range ps {
		if p.VX*p.VX+p.VY*p.VY <= 0 {
			t.Errorf("particle %d has zero velocity", i)
		}
		if p.Type != components.ShapeCircle {
			t.Errorf("particle %d type: got %v, want circle", i, p.Type)
		}
		if p.Life != p.MaxLife || p.Life <= 0 {
			t.Errorf("particle %d life: got %v/%v", i, p.Life, p.MaxLife)
		}
		if p.X != 100 || p.Y != 100 {
			t.Errorf("particle %d origin: got (%v, %v)", i, p.X, p.Y)
		}
		if p.Gravity < 20 || p.Gravity > 50 {
			t.Errorf("particle %d gravity %v outside [20, 50]", i, p.Gravity)
		}
		if p.Bounce < 0.3 || p.Bounce > 0.7 {
			t.Errorf("particle %d bounce %v outside [0.3, 0.7]", i, p.Bounce)
		}
		if !containsString(palette, p.Color) {
			t.Errorf("particle %d color %q not in normal palette", i, p.Color)
		}
	}
}

func TestBubblePopQualityScaling(t *testing.T) {
	tests := []struct {
		name    string
		size    float64
		quality float64
		want    int
	}{
		{"full quality", 40, 1.0, 23},
		{"half quality", 40, 0.5, 11},
		{"low quality", 40, 0.3, 6},
		{"small bubble", 4, 1.0, 15},
		{"quality above one is clamped", 40, 1.5, 23},
		{"invalid quality falls back to one", 40, -1, 23},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestLifecycle(t, 100)
			ps := m.CreateBubblePopParticles(0, 0, "normal", tt.size, nil, tt.quality)
			if len(ps) != tt.want {
				t.Errorf("count: got %d, want %d", len(ps), tt.want)
			}
		})
	}
}

// TestBubblePopVelocityAndLife 速度 = base × U(0.5,1) × quality，寿命抖动 ±20%~40%
func TestBubblePopVelocityAndLife(t *testing.T) {
	m := newTestLifecycle(t, 100)
	cfg := config.DefaultEffectsConfig()
	const quality = 0.8

	ps := m.CreateBubblePopParticles(0, 0, "pink", 20, cfg, quality)
	base := cfg.Particles.Bubble.Speed
	nominal := cfg.Particles.Bubble.Life

	for i, p := range ps {
		speed := math.Hypot(p.VX, p.VY)
		if speed < base*0.5*quality-1e-9 || speed > base*quality+1e-9 {
			t.Errorf("particle %d speed %v outside [%v, %v]", i, speed, base*0.5*quality, base*quality)
		}
		dev := math.Abs(p.Life/nominal - 1)
		if dev < 0.2-1e-9 || dev > 0.4+1e-9 {
			t.Errorf("particle %d life deviation %v outside [0.2, 0.4]", i, dev)
		}
	}
}

// TestBubblePopAnglesAreSpread 角度均匀分布（抖动 ±0.25 rad）
func TestBubblePopAnglesAreSpread(t *testing.T) {
	m := newTestLifecycle(t, 100)
	ps := m.CreateBubblePopParticles(0, 0, "normal", 0, nil, 1)
	n := len(ps)

	for i, p := range ps {
		want := 2 * math.Pi * float64(i) / float64(n)
		got := math.Atan2(p.VY, p.VX)
		diff := math.Remainder(got-want, 2*math.Pi)
		if math.Abs(diff) > bubblePopAngleJitter+1e-9 {
			t.Errorf("particle %d angle %v deviates %v from %v", i, got, diff, want)
		}
	}
}

func TestCreateComboStars(t *testing.T) {
	tests := []struct {
		combo int
		want  int
	}{
		{0, 10},
		{3, 13},
		{25, 20},
		{-4, 10},
	}
	for _, tt := range tests {
		m := newTestLifecycle(t, 100)
		ps := m.CreateComboStars(0, 0, tt.combo, nil, 1)
		if len(ps) != tt.want {
			t.Errorf("combo %d: got %d stars, want %d", tt.combo, len(ps), tt.want)
		}
		for _, p := range ps {
			if p.Type != components.ShapeStar {
				t.Fatalf("combo %d: type %v, want star", tt.combo, p.Type)
			}
		}
	}
}

// TestFixedCountEffects 固定数量效果与品质无关，形状与物理预设正确
func TestFixedCountEffects(t *testing.T) {
	tests := []struct {
		kind    EffectKind
		count   int
		shape   components.ShapeType
		gravity float64
	}{
		{EffectSparkles, 15, components.ShapeStar, -10},
		{EffectSparks, 20, components.ShapeLightning, 80},
		{EffectSpikes, 8, components.ShapeSpike, 0},
		{EffectShards, 12, components.ShapeDiamond, 120},
		{EffectExplosion, 30, components.ShapeExplosion, 40},
		{EffectCloud, 10, components.ShapeCloud, -5},
		{EffectRipple, 5, components.ShapeRipple, 0},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			m := newTestLifecycle(t, 100)
			for _, quality := range []float64{1, 0.3} {
				ps := m.CreateEffect(tt.kind, 50, 60, "#FF00FF", nil, quality)
				if len(ps) != tt.count {
					t.Fatalf("quality %v: got %d particles, want %d", quality, len(ps), tt.count)
				}
				for _, p := range ps {
					if p.Type != tt.shape {
						t.Errorf("type: got %v, want %v", p.Type, tt.shape)
					}
					if p.Gravity != tt.gravity {
						t.Errorf("gravity: got %v, want %v", p.Gravity, tt.gravity)
					}
					if p.Life != p.MaxLife || p.Life <= 0 {
						t.Errorf("life: got %v/%v", p.Life, p.MaxLife)
					}
					if !p.IsActive {
						t.Error("spawned particle is not active")
					}
				}
			}
		})
	}
}

func TestSparksHaveTrails(t *testing.T) {
	m := newTestLifecycle(t, 100)
	for _, p := range m.CreateSparks(0, 0, "#FFFF00", nil, 1) {
		if p.MaxTrailLength != 6 {
			t.Fatalf("MaxTrailLength: got %d, want 6", p.MaxTrailLength)
		}
	}

	// 配置的拖尾上限生效
	cfg := config.DefaultEffectsConfig()
	cfg.Particles.MaxTrailLength = 3
	for _, p := range m.CreateSparks(0, 0, "#FFFF00", cfg, 1) {
		if p.MaxTrailLength != 3 {
			t.Fatalf("MaxTrailLength with cap: got %d, want 3", p.MaxTrailLength)
		}
	}
}

func TestRippleStaggeredExpansion(t *testing.T) {
	m := newTestLifecycle(t, 100)
	ps := m.CreateRipple(10, 10, "#87CEEB", nil, 1)

	for i, p := range ps {
		if p.VX != 0 || p.VY != 0 {
			t.Errorf("ripple %d should not move: v=(%v, %v)", i, p.VX, p.VY)
		}
		if i > 0 && p.ScaleSpeed <= ps[i-1].ScaleSpeed {
			t.Errorf("ripple %d scaleSpeed %v not greater than previous %v", i, p.ScaleSpeed, ps[i-1].ScaleSpeed)
		}
	}
}

func TestSparklesTintedFromBaseColor(t *testing.T) {
	m := newTestLifecycle(t, 100)
	for _, p := range m.CreateSparkles(0, 0, "#FF0000", nil, 1) {
		if !strings.HasPrefix(p.Color, "#") || len(p.Color) != 7 {
			t.Errorf("color %q is not #rrggbb", p.Color)
		}
		if p.PulseSpeed <= 0 {
			t.Errorf("sparkle should pulse, PulseSpeed=%v", p.PulseSpeed)
		}
	}
}

// TestFactoryReportsInvalidColor 颜色非法时通过错误处理器上报并返回空结果
func TestFactoryReportsInvalidColor(t *testing.T) {
	var reported []game.ErrorContext
	m, err := NewParticleLifecycleManager(LifecycleConfig{PoolSize: 10, BoundaryY: 600, Seed: 7},
		game.ErrorHandlerFunc(func(err error, ctx game.ErrorContext) {
			reported = append(reported, ctx)
		}))
	if err != nil {
		t.Fatalf("NewParticleLifecycleManager() error: %v", err)
	}

	ps := m.CreateSparkles(0, 0, "not-a-color", nil, 1)
	if len(ps) != 0 {
		t.Errorf("got %d particles, want 0", len(ps))
	}
	if len(reported) != 1 {
		t.Fatalf("reported errors: got %d, want 1", len(reported))
	}
	want := game.ErrorContext{Operation: "createSparkles", Component: "ParticleLifecycleManager"}
	if reported[0] != want {
		t.Errorf("context: got %+v, want %+v", reported[0], want)
	}
}

// TestBuildReturnsPartialResult 工厂中途 panic 时返回已生成的粒子
func TestBuildReturnsPartialResult(t *testing.T) {
	var reported error
	m, err := NewParticleLifecycleManager(LifecycleConfig{PoolSize: 10, BoundaryY: 600, Seed: 7},
		game.ErrorHandlerFunc(func(err error, ctx game.ErrorContext) { reported = err }))
	if err != nil {
		t.Fatalf("NewParticleLifecycleManager() error: %v", err)
	}

	out := m.build("createTest", func(out *[]*components.Particle) error {
		*out = append(*out, m.GetParticleFromPool(), m.GetParticleFromPool())
		panic("palette exploded")
	})
	if len(out) != 2 {
		t.Errorf("partial result: got %d particles, want 2", len(out))
	}
	if reported == nil || !strings.Contains(reported.Error(), "palette exploded") {
		t.Errorf("reported error: got %v", reported)
	}

	sentinel := errors.New("bad config")
	out = m.build("createTest", func(out *[]*components.Particle) error {
		*out = append(*out, m.GetParticleFromPool())
		return sentinel
	})
	if len(out) != 1 || !errors.Is(reported, sentinel) {
		t.Errorf("error result: got %d particles, err %v", len(out), reported)
	}
}

func TestCreateEffectRejectsBubbleKinds(t *testing.T) {
	reported := 0
	m, _ := NewParticleLifecycleManager(LifecycleConfig{PoolSize: 10, BoundaryY: 600, Seed: 7},
		game.ErrorHandlerFunc(func(error, game.ErrorContext) { reported++ }))

	if ps := m.CreateEffect(EffectBubblePop, 0, 0, "#FFFFFF", nil, 1); len(ps) != 0 {
		t.Errorf("got %d particles, want 0", len(ps))
	}
	if reported != 1 {
		t.Errorf("reported: got %d, want 1", reported)
	}
}

func TestCreateAdvancedBubbleEffect(t *testing.T) {
	tests := []struct {
		bubbleType string
		extraShape components.ShapeType
		extraCount int
	}{
		{"electric", components.ShapeLightning, sparkCount},
		{"spiky", components.ShapeSpike, spikeCount},
		{"frozen", components.ShapeDiamond, shardCount},
		{"boss", components.ShapeExplosion, explosionCount},
		{"poison", components.ShapeCloud, cloudCount},
		{"golden", components.ShapeStar, sparkleCount},
		{"normal", components.ShapeRipple, rippleCount},
	}
	for _, tt := range tests {
		t.Run(tt.bubbleType, func(t *testing.T) {
			m := newTestLifecycle(t, 200)
			ps := m.CreateAdvancedBubbleEffect(0, 0, tt.bubbleType, 40, nil, 1)

			counts := make(map[components.ShapeType]int)
			for _, p := range ps {
				counts[p.Type]++
			}
			if counts[components.ShapeCircle] != 23 {
				t.Errorf("circles: got %d, want 23", counts[components.ShapeCircle])
			}
			if counts[tt.extraShape] != tt.extraCount {
				t.Errorf("%v: got %d, want %d", tt.extraShape, counts[tt.extraShape], tt.extraCount)
			}
			if tt.extraShape != components.ShapeRipple && counts[components.ShapeRipple] != rippleCount {
				t.Errorf("ripples: got %d, want %d", counts[components.ShapeRipple], rippleCount)
			}
		})
	}
}

func TestLoadPresets(t *testing.T) {
	m := newTestLifecycle(t, 100)
	trail := 2

	err := m.LoadPresets(&particle.PresetFile{Effects: map[string]particle.PresetConfig{
		"sparkles": {Gravity: "-50", Shape: "diamond"},
		"sparks":   {TrailLength: &trail},
		"mystery":  {Gravity: "1"},
		"cloud":    {Friction: "2"},
	}})
	if err == nil {
		t.Fatal("expected error for unknown effect and invalid friction")
	}
	if !strings.Contains(err.Error(), "mystery") || !strings.Contains(err.Error(), "cloud") {
		t.Errorf("error should name both bad entries, got %v", err)
	}

	for _, p := range m.CreateSparkles(0, 0, "#FFFFFF", nil, 1) {
		if p.Gravity != -50 || p.Type != components.ShapeDiamond {
			t.Fatalf("sparkle override not applied: gravity=%v type=%v", p.Gravity, p.Type)
		}
	}
	for _, p := range m.CreateSparks(0, 0, "#FFFFFF", nil, 1) {
		if p.MaxTrailLength != 2 {
			t.Fatalf("spark trail override not applied: %d", p.MaxTrailLength)
		}
	}
	// 非法条目保留原预设
	cloud, _ := m.Preset(EffectCloud)
	if cloud.Friction != particle.Fixed(0.99) {
		t.Errorf("cloud friction changed to %v", cloud.Friction)
	}
}

func TestParseEffectKind(t *testing.T) {
	for k := EffectKind(0); k < EffectKindCount; k++ {
		got, ok := ParseEffectKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseEffectKind(%q): got %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseEffectKind("fireworks"); ok {
		t.Error("ParseEffectKind(fireworks) should fail")
	}
}

func TestDefaultPresetsAreValid(t *testing.T) {
	for k := EffectKind(0); k < EffectKindCount; k++ {
		if err := defaultPresets[k].Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", k, err)
		}
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func TestCreateSpecialBubbleEffectCount(t *testing.T) {
	tests := []struct {
		name      string
		kind      EffectKind
		intensity float64
		want      int
	}{
		{"nominal", EffectSparks, 1, sparkCount},
		{"half", EffectSparks, 0.5, sparkCount / 2},
		{"double", EffectSparks, 2, sparkCount * 2},
		{"clamped low", EffectSparks, 0.01, 2},
		{"clamped high", EffectSpikes, 10, spikeCount * 3},
		{"NaN is nominal", EffectSparks, math.NaN(), sparkCount},
		{"rounded half up", EffectRipple, 0.5, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestLifecycle(t, 128)
			ps := m.CreateSpecialBubbleEffect(tt.kind, 100, 100, "#00FFFF", tt.intensity, nil, 1)
			if len(ps) != tt.want {
				t.Errorf("count: got %d, want %d", len(ps), tt.want)
			}
			for i, p := range ps {
				if p == nil || !p.IsActive {
					t.Fatalf("particle %d not active", i)
				}
			}
		})
	}
}

func TestCreateSpecialBubbleEffectScalesSpeed(t *testing.T) {
	for _, intensity := range []float64{0.5, 2} {
		nominal := newTestLifecycle(t, 128).CreateSpecialBubbleEffect(EffectSparks, 0, 0, "#00FFFF", 1, nil, 1)
		m := newTestLifecycle(t, 128)
		scaled := m.CreateSpecialBubbleEffect(EffectSparks, 0, 0, "#00FFFF", intensity, nil, 1)

		// 同一种子下前 n 个粒子与名义效果一一对应
		n := len(nominal)
		if len(scaled) < n {
			n = len(scaled)
		}
		for i := 0; i < n; i++ {
			if !approxEqual(scaled[i].VX, nominal[i].VX*intensity) || !approxEqual(scaled[i].VY, nominal[i].VY*intensity) {
				t.Fatalf("intensity %v particle %d: got (%v, %v), want (%v, %v)", intensity, i,
					scaled[i].VX, scaled[i].VY, nominal[i].VX*intensity, nominal[i].VY*intensity)
			}
		}

		// 多生成的粒子回到池中
		if intensity < 1 {
			if got, want := m.PoolLen(), sparkCount-len(scaled); got != want {
				t.Errorf("PoolLen after trimming: got %d, want %d", got, want)
			}
		}
	}
}

func TestEffectPriority(t *testing.T) {
	if EffectPriority(EffectBubblePop) <= EffectPriority(EffectRipple) {
		t.Error("bubble pops should outrank ripples")
	}
	for kind := EffectKind(0); kind < EffectKindCount; kind++ {
		if p := EffectPriority(kind); p < 1 || p > 10 {
			t.Errorf("%s priority %d outside [1, 10]", kind, p)
		}
	}
	if got := EffectPriority(EffectKindCount); got != 0 {
		t.Errorf("unknown kind priority: got %d, want 0", got)
	}
}
