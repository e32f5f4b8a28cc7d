package convert

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

const epsilon = 1e-3

func approxEqual(a, b float32) bool {
	return math.Abs(float64(a-b)) <= epsilon*math.Max(1, math.Abs(float64(b)))
}

func TestNewRejectsInvalidScale(t *testing.T) {
	tests := []struct {
		name string
		ppm  float32
		zoom float32
	}{
		{"zero ppm", 0, 1},
		{"negative ppm", -18, 1},
		{"zero zoom", 18, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.ppm, tt.zoom)
			if !errors.Is(err, ErrInvalidScale) {
				t.Errorf("expected ErrInvalidScale, got %v", err)
			}
		})
	}
}

func TestMetersPixelsRoundTrip(t *testing.T) {
	c, err := New(18, 1.5)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for _, px := range []float32{0, 1, -1, 0.5, 17.99, 256, -4096.25, 123456.75} {
		got := c.MetersToPixels(c.PixelsToMeters(px))
		if !approxEqual(got, px) {
			t.Errorf("round trip of %v: got %v", px, got)
		}
	}

	v := mgl32.Vec2{320.5, -77}
	back := c.MtToPx(c.PxToMt(v))
	if !approxEqual(back[0], v[0]) || !approxEqual(back[1], v[1]) {
		t.Errorf("vector round trip: got %v, want %v", back, v)
	}
}

func TestScaledPixelsPerMeter(t *testing.T) {
	c := Converter{PixelsPerMeter: 18, TileMapZoom: 2}
	if got := c.ScaledPixelsPerMeter(); got != 9 {
		t.Errorf("expected 9, got %v", got)
	}
}

func TestWorldPixelsToScreen(t *testing.T) {
	half := mgl32.Vec2{400, 300}

	// Camera centre lands on screen centre.
	cam := mgl32.Vec2{1000, 2000}
	got := WorldPixelsToScreen(cam, cam, half, 1)
	if got != half {
		t.Errorf("camera centre: got %v, want %v", got, half)
	}

	// World y up means screen y down.
	got = WorldPixelsToScreen(mgl32.Vec2{1010, 2010}, cam, half, 1)
	want := mgl32.Vec2{410, 290}
	if got != want {
		t.Errorf("offset point: got %v, want %v", got, want)
	}

	// Zooming out halves on-screen distances.
	got = WorldPixelsToScreen(mgl32.Vec2{1100, 2000}, cam, half, 2)
	if got[0] != 450 {
		t.Errorf("zoomed x: expected 450, got %v", got[0])
	}
}

func TestScreenToWorldPixelsInverse(t *testing.T) {
	half := mgl32.Vec2{640, 360}
	cam := mgl32.Vec2{-35.5, 812}
	for _, zoom := range []float32{0.5, 1, 1.75} {
		p := mgl32.Vec2{123.25, -456.5}
		back := ScreenToWorldPixels(WorldPixelsToScreen(p, cam, half, zoom), cam, half, zoom)
		if !approxEqual(back[0], p[0]) || !approxEqual(back[1], p[1]) {
			t.Errorf("zoom %v: got %v, want %v", zoom, back, p)
		}
	}
}

func TestMapToWorld(t *testing.T) {
	got := MapToWorld(mgl32.Vec2{10, 30}, 100)
	if got != (mgl32.Vec2{10, 70}) {
		t.Errorf("expected (10, 70), got %v", got)
	}
}
