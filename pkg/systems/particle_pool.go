package systems

import (
	"log"

	"github.com/decker502/bubblefx/pkg/components"
)

// counterDecayThreshold 累计计数器超过此值时按 10% 衰减
const counterDecayThreshold = 10000

type lifecycleCounters struct {
	created    int
	destroyed  int
	poolHits   int
	poolMisses int
	maxActive  int
}

// LifecycleStatistics is a snapshot of the pool and lifecycle counters.
type LifecycleStatistics struct {
	Created            int
	Destroyed          int
	PoolHits           int
	PoolMisses         int
	MaxActiveParticles int
	CurrentPoolSize    int
	PoolEfficiency     float64 // hits / (hits + misses)
	MemoryUtilization  float64 // idle pool length / capacity
}

// InitializePool pre-allocates n inactive particles in one contiguous block
// and sets the pool capacity to n.
//
// 已存在的空闲粒子会被丢弃。
func (m *ParticleLifecycleManager) InitializePool(n int) {
	if n < 0 {
		n = 0
	}
	for i := range m.pool {
		m.pool[i] = nil
	}
	m.pool = m.pool[:0]
	m.poolCapacity = n
	m.grow(n)

	log.Printf("[%s] Pool initialized with %d particles", lifecycleComponent, n)
}

// grow pushes n freshly allocated inactive particles onto the free stack.
func (m *ParticleLifecycleManager) grow(n int) {
	if n <= 0 {
		return
	}
	arena := make([]components.Particle, n)
	for i := range arena {
		ResetParticle(&arena[i])
		m.pool = append(m.pool, &arena[i])
	}
}

// GetParticleFromPool returns a reset, active particle with a fresh id.
//
// The particle is taken from the idle pool when possible (pool hit);
// otherwise a new one is allocated (pool miss, counted as created).
func (m *ParticleLifecycleManager) GetParticleFromPool() *components.Particle {
	var p *components.Particle
	if n := len(m.pool); n > 0 {
		p = m.pool[n-1]
		m.pool[n-1] = nil
		m.pool = m.pool[:n-1]
		m.stats.poolHits++
	} else {
		p = &components.Particle{}
		m.stats.poolMisses++
		m.stats.created++
	}

	ResetParticle(p)
	m.nextID++
	p.ID = m.nextID
	p.IsActive = true
	return p
}

// ReturnParticleToPool deactivates p and pushes it back onto the idle pool if
// the pool is below capacity; otherwise p is discarded. Every returned
// particle counts as destroyed.
//
// Returning a particle that is already inactive does nothing, so a particle
// can never sit on the free stack twice.
func (m *ParticleLifecycleManager) ReturnParticleToPool(p *components.Particle) {
	if p == nil || !p.IsActive {
		return
	}

	p.IsActive = false
	p.Life = 0
	p.Trail.Clear()
	m.stats.destroyed++

	if len(m.pool) < m.poolCapacity {
		m.pool = append(m.pool, p)
	}
}

// ResetParticle restores every field of p to its canonical default.
// The id is left untouched; GetParticleFromPool assigns a new one.
func ResetParticle(p *components.Particle) {
	id := p.ID
	*p = components.Particle{
		Color:     components.DefaultParticleColor,
		Alpha:     1,
		Scale:     1,
		BaseScale: 1,
		Friction:  1,
		Type:      components.ShapeCircle,
		ID:        id,
	}
}

// ResetParticle is the method form of the package-level ResetParticle.
func (m *ParticleLifecycleManager) ResetParticle(p *components.Particle) {
	ResetParticle(p)
}

// ResizePool truncates or extends the idle pool to exactly n entries and sets
// the capacity to n.
func (m *ParticleLifecycleManager) ResizePool(n int) {
	if n < 0 {
		n = 0
	}
	old := len(m.pool)
	m.poolCapacity = n

	if old > n {
		for i := n; i < old; i++ {
			m.pool[i] = nil
		}
		m.pool = m.pool[:n]
	} else {
		m.grow(n - old)
	}

	log.Printf("[%s] Pool resized: %d -> %d", lifecycleComponent, old, n)
}

// OptimizeMemoryUsage trims the idle pool to its capacity and decays
// cumulative counters above 10,000 to 10% until they fall under the
// threshold. Calling it twice in a row changes nothing the second time.
func (m *ParticleLifecycleManager) OptimizeMemoryUsage() {
	if len(m.pool) > m.poolCapacity {
		for i := m.poolCapacity; i < len(m.pool); i++ {
			m.pool[i] = nil
		}
		m.pool = m.pool[:m.poolCapacity]
	}

	// 底层数组远大于容量时重新分配
	if cap(m.pool) > 2*m.poolCapacity+16 {
		shrunk := make([]*components.Particle, len(m.pool), m.poolCapacity)
		copy(shrunk, m.pool)
		m.pool = shrunk
	}

	for _, c := range []*int{&m.stats.created, &m.stats.destroyed, &m.stats.poolHits, &m.stats.poolMisses} {
		for *c > counterDecayThreshold {
			*c /= 10
		}
	}
}

// ClearAllParticles force-returns every particle in list and returns the
// emptied slice.
func (m *ParticleLifecycleManager) ClearAllParticles(list []*components.Particle) []*components.Particle {
	for i, p := range list {
		m.ReturnParticleToPool(p)
		list[i] = nil
	}
	return list[:0]
}

// PoolLen returns the number of idle particles.
func (m *ParticleLifecycleManager) PoolLen() int {
	return len(m.pool)
}

// PoolCapacity returns the configured idle-pool capacity.
func (m *ParticleLifecycleManager) PoolCapacity() int {
	return m.poolCapacity
}

// GetStatistics returns a snapshot of the lifecycle statistics.
func (m *ParticleLifecycleManager) GetStatistics() LifecycleStatistics {
	s := LifecycleStatistics{
		Created:            m.stats.created,
		Destroyed:          m.stats.destroyed,
		PoolHits:           m.stats.poolHits,
		PoolMisses:         m.stats.poolMisses,
		MaxActiveParticles: m.stats.maxActive,
		CurrentPoolSize:    len(m.pool),
	}
	if total := s.PoolHits + s.PoolMisses; total > 0 {
		s.PoolEfficiency = float64(s.PoolHits) / float64(total)
	}
	if m.poolCapacity > 0 {
		s.MemoryUtilization = float64(len(m.pool)) / float64(m.poolCapacity)
	}
	return s
}

// ResetStatistics zeroes all counters.
func (m *ParticleLifecycleManager) ResetStatistics() {
	m.stats = lifecycleCounters{}
}
