package systems

import (
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/decker502/bubblefx/internal/particle"
	"github.com/decker502/bubblefx/pkg/components"
	"github.com/decker502/bubblefx/pkg/game"
)

const lifecycleComponent = "ParticleLifecycleManager"

// pulseAmplitude 脉冲缩放幅度：scale × (sin(t)·0.3 + 1)
const pulseAmplitude = 0.3

// LifecycleConfig configures a ParticleLifecycleManager.
type LifecycleConfig struct {
	// PoolSize is the idle-pool capacity. Particles returned while the pool
	// is full are discarded.
	PoolSize int

	// BoundaryY is the floor that bouncing particles reflect off (usually the
	// canvas height). Required; there is no implicit default.
	BoundaryY float64

	// MaxTrailLength caps the trail length any preset may request.
	// 0 means MaxTrailCapacity.
	MaxTrailLength int

	// Seed seeds the factory RNG. 0 uses the current time.
	Seed int64
}

// Validate checks the configuration.
func (c LifecycleConfig) Validate() error {
	if c.PoolSize < 0 {
		return fmt.Errorf("pool size must not be negative, got %d", c.PoolSize)
	}
	if c.BoundaryY <= 0 || math.IsNaN(c.BoundaryY) || math.IsInf(c.BoundaryY, 0) {
		return fmt.Errorf("boundaryY must be a positive finite value, got %v", c.BoundaryY)
	}
	if c.MaxTrailLength < 0 {
		return fmt.Errorf("max trail length must not be negative, got %d", c.MaxTrailLength)
	}
	return nil
}

// ParticleLifecycleManager owns the particle pool, the id counter and the
// lifecycle statistics. It provides the effect factories and the per-frame
// update loop (physics → appearance → trail).
//
// The manager is not safe for concurrent use; it is driven from the game
// loop goroutine only.
type ParticleLifecycleManager struct {
	// 空闲池：自由指针栈，栈顶在切片末尾
	pool         []*components.Particle
	poolCapacity int

	boundaryY      float64
	maxTrailLength int

	nextID uint64
	stats  lifecycleCounters

	handler game.ErrorHandler
	rng     *rand.Rand
	presets [EffectKindCount]particle.Preset

	// simulation clock in milliseconds, advanced by UpdateParticles
	nowMs float64

	// spawning 正在初始化的粒子，工厂 panic 时由 build 归还
	spawning *components.Particle
}

// NewParticleLifecycleManager creates a lifecycle manager.
// A nil handler logs reported errors.
func NewParticleLifecycleManager(cfg LifecycleConfig, handler game.ErrorHandler) (*ParticleLifecycleManager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lifecycle config: %w", err)
	}
	if handler == nil {
		handler = game.LogErrorHandler{}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	trailCap := cfg.MaxTrailLength
	if trailCap == 0 || trailCap > components.MaxTrailCapacity {
		trailCap = components.MaxTrailCapacity
	}

	m := &ParticleLifecycleManager{
		poolCapacity:   cfg.PoolSize,
		boundaryY:      cfg.BoundaryY,
		maxTrailLength: trailCap,
		handler:        handler,
		rng:            rand.New(rand.NewSource(seed)),
		presets:        defaultPresets,
	}
	return m, nil
}

// BoundaryY returns the bounce floor.
func (m *ParticleLifecycleManager) BoundaryY() float64 {
	return m.boundaryY
}

// Now returns the simulation clock in milliseconds.
func (m *ParticleLifecycleManager) Now() float64 {
	return m.nowMs
}

// UpdateParticles advances the simulation clock by deltaTimeMs and updates
// every particle in list. See UpdateParticlesAt.
func (m *ParticleLifecycleManager) UpdateParticles(list []*components.Particle, deltaTimeMs float64) []*components.Particle {
	deltaTimeMs = sanitizeDelta(deltaTimeMs)
	m.nowMs += deltaTimeMs
	return m.UpdateParticlesAt(list, deltaTimeMs, m.nowMs)
}

// UpdateParticlesAt updates every active particle in list using nowMs as the
// simulation time for pulsing.
//
// Each particle loses deltaTimeMs of life; a negative or non-finite delta is
// treated as 0 so life never exceeds MaxLife. Particles whose life drops to 0 or
// below are returned to the pool and removed; the rest get physics,
// appearance and trail updates. Inactive (pool-owned) entries are dropped.
//
// The returned slice shares list's backing array; the caller must replace
// its reference with the result.
func (m *ParticleLifecycleManager) UpdateParticlesAt(list []*components.Particle, deltaTimeMs, nowMs float64) []*components.Particle {
	deltaTimeMs = sanitizeDelta(deltaTimeMs)
	dt := deltaTimeMs / 1000

	alive := list[:0]
	for _, p := range list {
		if p == nil || !p.IsActive {
			continue
		}

		p.Life -= deltaTimeMs
		if p.Life <= 0 {
			m.ReturnParticleToPool(p)
			continue
		}

		m.updatePhysics(p, dt)
		updateAppearance(p, dt, nowMs)
		updateTrail(p)
		alive = append(alive, p)
	}

	// 释放尾部引用，避免已回收的粒子被旧切片持有
	for i := len(alive); i < len(list); i++ {
		list[i] = nil
	}

	if len(alive) > m.stats.maxActive {
		m.stats.maxActive = len(alive)
	}
	return alive
}

// sanitizeDelta 负数、NaN 与 Inf 的帧间隔按 0 处理
func sanitizeDelta(deltaTimeMs float64) float64 {
	if deltaTimeMs < 0 || math.IsNaN(deltaTimeMs) || math.IsInf(deltaTimeMs, 0) {
		return 0
	}
	return deltaTimeMs
}

// updatePhysics 半隐式欧拉积分，dt 单位为秒
func (m *ParticleLifecycleManager) updatePhysics(p *components.Particle, dt float64) {
	p.VY += p.Gravity * dt
	p.VX *= p.Friction
	p.VY *= p.Friction
	p.X += p.VX * dt
	p.Y += p.VY * dt

	// 落地反弹：只在向下运动穿过地面时反射
	if p.Bounce > 0 && p.Y > m.boundaryY && p.VY > 0 {
		p.VY *= -p.Bounce
		p.Y = m.boundaryY
	}
}

// updateAppearance 线性淡出、缩放积分、旋转、脉冲
func updateAppearance(p *components.Particle, dt, nowMs float64) {
	p.Alpha = p.LifeRatio()

	p.BaseScale += p.ScaleSpeed * dt
	if p.BaseScale < components.MinParticleScale {
		p.BaseScale = components.MinParticleScale
	}

	p.Rotation += p.RotationSpeed * dt

	// 脉冲作用于 BaseScale，不会逐帧累乘
	scale := p.BaseScale
	if p.PulseSpeed > 0 {
		scale *= math.Sin(nowMs*0.001*p.PulseSpeed)*pulseAmplitude + 1
	}
	if scale < components.MinParticleScale {
		scale = components.MinParticleScale
	}
	p.Scale = scale
}

func updateTrail(p *components.Particle) {
	if p.MaxTrailLength <= 0 {
		return
	}
	if p.Trail.Limit() != p.MaxTrailLength {
		p.Trail.SetLimit(p.MaxTrailLength)
	}
	p.Trail.Push(components.TrailPoint{X: p.X, Y: p.Y, Alpha: p.Alpha})
}

// reportError forwards a generation error to the injected handler.
func (m *ParticleLifecycleManager) reportError(operation string, err error) {
	m.handler.HandleError(err, game.ErrorContext{
		Operation: operation,
		Component: lifecycleComponent,
	})
}

// build runs a factory body, converting returned errors and panics into
// handler reports. Whatever the body appended before failing is returned;
// a particle that was still being initialised goes back to the pool.
func (m *ParticleLifecycleManager) build(operation string, body func(out *[]*components.Particle) error) (out []*components.Particle) {
	m.spawning = nil
	defer func() {
		if r := recover(); r != nil {
			if m.spawning != nil {
				m.ReturnParticleToPool(m.spawning)
				m.spawning = nil
			}
			log.Printf("[%s] Recovered panic in %s: %v", lifecycleComponent, operation, r)
			m.reportError(operation, fmt.Errorf("panic: %v", r))
		}
	}()

	if err := body(&out); err != nil {
		m.reportError(operation, err)
	}
	return out
}
