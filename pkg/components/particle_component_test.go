package components

import "testing"

func TestShapeType_StringRoundTrip(t *testing.T) {
	for s := ShapeType(0); s < ShapeTypeCount; s++ {
		name := s.String()
		got, ok := ParseShapeType(name)
		if !ok {
			t.Errorf("ParseShapeType(%q) not found", name)
			continue
		}
		if got != s {
			t.Errorf("ParseShapeType(%q): got %v, want %v", name, got, s)
		}
	}
}

func TestParseShapeType_Unknown(t *testing.T) {
	got, ok := ParseShapeType("hexagon")
	if ok {
		t.Error("ParseShapeType(hexagon) should fail")
	}
	if got != ShapeCircle {
		t.Errorf("fallback shape: got %v, want circle", got)
	}
	if ShapeTypeCount.String() != "unknown" {
		t.Errorf("out of range String: got %q", ShapeTypeCount.String())
	}
}

func TestParticle_LifeRatio(t *testing.T) {
	tests := []struct {
		name    string
		life    float64
		maxLife float64
		want    float64
	}{
		{"满生命", 100, 100, 1},
		{"一半", 50, 100, 0.5},
		{"已过期", -10, 100, 0},
		{"零上限", 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Particle{Life: tt.life, MaxLife: tt.maxLife}
			if got := p.LifeRatio(); got != tt.want {
				t.Errorf("LifeRatio: got %v, want %v", got, tt.want)
			}
		})
	}
}
