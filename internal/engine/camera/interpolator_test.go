package camera

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{
		"off":     ModeOff,
		"linear":  ModeLinear,
		"damped":  ModeDamped,
		"sigmoid": ModeSigmoid,
	}
	for s, want := range tests {
		got, err := ParseMode(s)
		if err != nil || got != want {
			t.Errorf("ParseMode(%q): got %v, %v", s, got, err)
		}
	}
	if _, err := ParseMode("bezier"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestFirstTransformSnaps(t *testing.T) {
	for _, mode := range []Mode{ModeOff, ModeLinear, ModeDamped, ModeSigmoid} {
		ip := NewInterpolator(mode, 0.1, mgl32.Vec2{})
		target := mgl32.Vec2{500, -250}
		if got := ip.Transform(target, mgl32.Vec2{400, 300}); got != target {
			t.Errorf("mode %v: expected snap to %v, got %v", mode, target, got)
		}
	}
}

func TestLinearStep(t *testing.T) {
	ip := NewInterpolator(ModeLinear, 0.5, mgl32.Vec2{})
	half := mgl32.Vec2{400, 300}
	ip.Transform(mgl32.Vec2{0, 0}, half)

	got := ip.Transform(mgl32.Vec2{100, 0}, half)
	if got != (mgl32.Vec2{50, 0}) {
		t.Errorf("expected halfway (50, 0), got %v", got)
	}
}

func TestModesConverge(t *testing.T) {
	half := mgl32.Vec2{400, 300}
	target := mgl32.Vec2{300, 200}
	for _, mode := range []Mode{ModeLinear, ModeDamped, ModeSigmoid} {
		ip := NewInterpolator(mode, 0.2, mgl32.Vec2{})
		ip.Transform(mgl32.Vec2{}, half)

		var got mgl32.Vec2
		for i := 0; i < 300; i++ {
			got = ip.Transform(target, half)
		}
		if !got.ApproxEqualThreshold(target, 0.01) {
			t.Errorf("mode %v: expected convergence to %v, got %v", mode, target, got)
		}
	}
}

func TestDampedDoesNotOvershoot(t *testing.T) {
	ip := NewInterpolator(ModeDamped, 0.2, mgl32.Vec2{})
	half := mgl32.Vec2{400, 300}
	ip.Transform(mgl32.Vec2{}, half)

	for i := 0; i < 200; i++ {
		got := ip.Transform(mgl32.Vec2{100, 0}, half)
		if got[0] > 100.0001 {
			t.Fatalf("step %d: overshoot to %v", i, got[0])
		}
	}
}

func TestClampToWorld(t *testing.T) {
	half := mgl32.Vec2{400, 300}
	ip := NewInterpolator(ModeOff, 1, mgl32.Vec2{2000, 1000})

	tests := []struct {
		target, want mgl32.Vec2
	}{
		{mgl32.Vec2{0, 0}, mgl32.Vec2{400, 300}},
		{mgl32.Vec2{1000, 500}, mgl32.Vec2{1000, 500}},
		{mgl32.Vec2{5000, 5000}, mgl32.Vec2{1600, 700}},
	}
	for _, tt := range tests {
		if got := ip.Transform(tt.target, half); got != tt.want {
			t.Errorf("target %v: expected %v, got %v", tt.target, tt.want, got)
		}
	}

	// A world narrower than the view is centred.
	small := NewInterpolator(ModeOff, 1, mgl32.Vec2{600, 400})
	if got := small.Transform(mgl32.Vec2{10, 10}, half); got != (mgl32.Vec2{300, 200}) {
		t.Errorf("expected centred (300, 200), got %v", got)
	}
}

func TestReset(t *testing.T) {
	ip := NewInterpolator(ModeLinear, 0.1, mgl32.Vec2{})
	half := mgl32.Vec2{400, 300}
	ip.Transform(mgl32.Vec2{}, half)
	ip.Reset()
	if got := ip.Transform(mgl32.Vec2{900, 900}, half); got != (mgl32.Vec2{900, 900}) {
		t.Errorf("expected snap after reset, got %v", got)
	}
}
