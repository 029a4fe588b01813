package components

import (
	"testing"
)

func TestTrail_PushWithinLimit(t *testing.T) {
	var tr Trail
	tr.SetLimit(4)

	for i := 0; i < 3; i++ {
		tr.Push(TrailPoint{X: float64(i), Y: float64(i * 10), Alpha: 1})
	}

	if tr.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", tr.Len())
	}
	for i := 0; i < 3; i++ {
		if got := tr.At(i).X; got != float64(i) {
			t.Errorf("At(%d).X: got %v, want %v", i, got, float64(i))
		}
	}
}

func TestTrail_EvictsOldest(t *testing.T) {
	tests := []struct {
		name   string
		limit  int
		pushes int
	}{
		{"小容量", 3, 10},
		{"满容量", MaxTrailCapacity, MaxTrailCapacity*2 + 5},
		{"单点", 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tr Trail
			tr.SetLimit(tt.limit)
			for i := 0; i < tt.pushes; i++ {
				tr.Push(TrailPoint{X: float64(i)})
			}

			if tr.Len() != tt.limit {
				t.Fatalf("Len: got %d, want %d", tr.Len(), tt.limit)
			}
			// 保留最新的 limit 个点，按从旧到新排列
			first := tt.pushes - tt.limit
			for i := 0; i < tt.limit; i++ {
				if got, want := tr.At(i).X, float64(first+i); got != want {
					t.Errorf("At(%d).X: got %v, want %v", i, got, want)
				}
			}
		})
	}
}

func TestTrail_ZeroLimitIgnoresPush(t *testing.T) {
	var tr Trail
	tr.Push(TrailPoint{X: 1})
	if tr.Len() != 0 {
		t.Errorf("Len: got %d, want 0", tr.Len())
	}
}

func TestTrail_SetLimitShrinkKeepsNewest(t *testing.T) {
	var tr Trail
	tr.SetLimit(5)
	for i := 0; i < 5; i++ {
		tr.Push(TrailPoint{X: float64(i)})
	}

	tr.SetLimit(2)
	if tr.Len() != 2 {
		t.Fatalf("Len: got %d, want 2", tr.Len())
	}
	if tr.At(0).X != 3 || tr.At(1).X != 4 {
		t.Errorf("points after shrink: got (%v, %v), want (3, 4)", tr.At(0).X, tr.At(1).X)
	}

	tr.Push(TrailPoint{X: 5})
	if tr.At(0).X != 4 || tr.At(1).X != 5 {
		t.Errorf("points after push: got (%v, %v), want (4, 5)", tr.At(0).X, tr.At(1).X)
	}
}

func TestTrail_ClearAndReset(t *testing.T) {
	var tr Trail
	tr.SetLimit(3)
	tr.Push(TrailPoint{X: 1})
	tr.Clear()
	if tr.Len() != 0 || tr.Limit() != 3 {
		t.Errorf("after Clear: len=%d limit=%d, want 0 and 3", tr.Len(), tr.Limit())
	}

	tr.Push(TrailPoint{X: 2})
	tr.Reset()
	if tr.Len() != 0 || tr.Limit() != 0 {
		t.Errorf("after Reset: len=%d limit=%d, want 0 and 0", tr.Len(), tr.Limit())
	}
}

func TestTrail_AtOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("At(0) on empty trail should panic")
		}
	}()
	var tr Trail
	tr.At(0)
}
