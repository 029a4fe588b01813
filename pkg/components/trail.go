package components

// MaxTrailCapacity 拖尾环形缓冲区的物理容量
// 粒子的 MaxTrailLength 超过此值时会被截断
const MaxTrailCapacity = 32

// TrailPoint 拖尾中的一个历史位置
type TrailPoint struct {
	X     float64
	Y     float64
	Alpha float64
}

// Trail is a fixed-capacity ring buffer of recent particle positions.
//
// The backing array lives inside the Particle so pushing never allocates.
// Once Len reaches the limit, Push overwrites the oldest point.
type Trail struct {
	points [MaxTrailCapacity]TrailPoint
	head   int // index of the oldest point
	count  int
	limit  int
}

// SetLimit sets the logical capacity, clamped to [0, MaxTrailCapacity].
// Existing points beyond the new limit are dropped from the front.
func (t *Trail) SetLimit(n int) {
	if n < 0 {
		n = 0
	}
	if n > MaxTrailCapacity {
		n = MaxTrailCapacity
	}
	if t.count > n {
		// 丢弃最旧的点，保留最新的 n 个
		drop := t.count - n
		t.head = (t.head + drop) % MaxTrailCapacity
		t.count = n
	}
	t.limit = n
}

// Limit returns the logical capacity.
func (t *Trail) Limit() int {
	return t.limit
}

// Len returns the number of stored points.
func (t *Trail) Len() int {
	return t.count
}

// Push appends a point, evicting the oldest one when the trail is full.
func (t *Trail) Push(p TrailPoint) {
	if t.limit <= 0 {
		return
	}
	t.points[(t.head+t.count)%MaxTrailCapacity] = p
	if t.count < t.limit {
		t.count++
		return
	}
	// 已满：新点写在区间尾部，头指针前移即丢弃最旧的点
	t.head = (t.head + 1) % MaxTrailCapacity
}

// At returns the i-th point, oldest first. It panics on out-of-range access
// like a slice index would.
func (t *Trail) At(i int) TrailPoint {
	if i < 0 || i >= t.count {
		panic("components: trail index out of range")
	}
	return t.points[(t.head+i)%MaxTrailCapacity]
}

// Clear removes all points but keeps the limit.
func (t *Trail) Clear() {
	t.head = 0
	t.count = 0
}

// Reset clears the trail and its limit.
func (t *Trail) Reset() {
	t.Clear()
	t.limit = 0
}
