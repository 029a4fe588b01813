package graphics

import (
	"image/color"
	"testing"
)

func TestRecorderStateStack(t *testing.T) {
	r := NewRecorder()

	r.SetGlobalAlpha(0.5)
	r.SetCompositeOperation(CompositeMultiply)
	r.Save()
	r.SetGlobalAlpha(0.25)
	r.SetCompositeOperation(CompositeScreen)
	r.Save()

	if got := r.Depth(); got != 2 {
		t.Fatalf("Depth: got %d, want 2", got)
	}

	r.BeginPath()
	r.Arc(0, 0, 5, 0, 6.28)
	r.Fill()

	r.Restore()
	r.Restore()

	if got := r.GlobalAlpha(); got != 0.5 {
		t.Errorf("GlobalAlpha after Restore: got %v, want 0.5", got)
	}
	if r.MaxDepth != 2 {
		t.Errorf("MaxDepth: got %d, want 2", r.MaxDepth)
	}

	fills := r.Filter("Fill")
	if len(fills) != 1 {
		t.Fatalf("Fill calls: got %d, want 1", len(fills))
	}
	if fills[0].Alpha != 0.25 {
		t.Errorf("Fill alpha: got %v, want 0.25", fills[0].Alpha)
	}
	if fills[0].Composite != CompositeScreen {
		t.Errorf("Fill composite: got %v, want %v", fills[0].Composite, CompositeScreen)
	}
	if fills[0].Points != 1 {
		t.Errorf("Fill points: got %d, want 1", fills[0].Points)
	}
}

func TestRecorderRestoreOnEmptyStack(t *testing.T) {
	r := NewRecorder()
	r.SetGlobalAlpha(0.3)
	r.Restore()
	if got := r.GlobalAlpha(); got != 0.3 {
		t.Errorf("GlobalAlpha: got %v, want 0.3", got)
	}
	if got := r.Depth(); got != 0 {
		t.Errorf("Depth: got %d, want 0", got)
	}
}

func TestRecorderColors(t *testing.T) {
	r := NewRecorder()
	r.SetFillColor(color.RGBA{R: 255, G: 0, B: 0, A: 255})
	r.SetStrokeColor(color.White)
	r.SetLineWidth(3)
	r.SetLineCap(LineCapRound)

	r.BeginPath()
	r.MoveTo(0, 0)
	r.LineTo(10, 0)
	r.Fill()
	r.Stroke()

	fill := r.Filter("Fill")[0]
	if fill.Color != (color.RGBA{R: 255, A: 255}) {
		t.Errorf("fill color: got %v", fill.Color)
	}
	stroke := r.Filter("Stroke")[0]
	if stroke.Color != (color.RGBA{R: 255, G: 255, B: 255, A: 255}) {
		t.Errorf("stroke color: got %v", stroke.Color)
	}
	if stroke.LineWidth != 3 || stroke.LineCap != LineCapRound {
		t.Errorf("stroke style: got width=%v cap=%v", stroke.LineWidth, stroke.LineCap)
	}
	if stroke.Points != 2 {
		t.Errorf("stroke points: got %d, want 2", stroke.Points)
	}

	r.Reset()
	if len(r.Calls()) != 0 {
		t.Errorf("Calls after Reset: got %d, want 0", len(r.Calls()))
	}
}

func TestViewportIntersects(t *testing.T) {
	v := Viewport{X: 0, Y: 0, Width: 800, Height: 600}
	tests := []struct {
		name   string
		x, y   float64
		margin float64
		want   bool
	}{
		{"inside", 400, 300, 10, true},
		{"edge overlap", -5, 300, 10, true},
		{"left outside", -50, 300, 10, false},
		{"below outside", 400, 700, 20, false},
		{"corner overlap", 805, 605, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := v.Intersects(tt.x, tt.y, tt.margin); got != tt.want {
				t.Errorf("Intersects(%v, %v, %v): got %v, want %v", tt.x, tt.y, tt.margin, got, tt.want)
			}
		})
	}
}

func TestCompositeOpString(t *testing.T) {
	if got := CompositeMultiply.String(); got != "multiply" {
		t.Errorf("got %q, want multiply", got)
	}
	if got := CompositeOp(99).String(); got != "unknown" {
		t.Errorf("got %q, want unknown", got)
	}
}
