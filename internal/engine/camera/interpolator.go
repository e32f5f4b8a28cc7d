// Package camera provides the camera rig: three synchronized projections
// derived from one tracked position.
package camera

import (
	"fmt"
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

// Mode selects how the camera follows its target.
type Mode uint8

const (
	ModeOff     Mode = iota // follow exactly
	ModeLinear              // fixed-fraction lerp per update
	ModeDamped              // critically damped spring
	ModeSigmoid             // lerp fraction grows with distance
)

// ParseMode maps a config string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "off":
		return ModeOff, nil
	case "linear":
		return ModeLinear, nil
	case "damped":
		return ModeDamped, nil
	case "sigmoid":
		return ModeSigmoid, nil
	}
	return ModeOff, fmt.Errorf("unknown interpolation mode %q", s)
}

// fixedStep is the update interval the damped spring assumes.
const fixedStep = 1.0 / 60.0

// Interpolator smooths a tracked world position into a camera focus and
// keeps the focus inside the world so the view never shows past its edges.
type Interpolator struct {
	Mode      Mode
	Smoothing float32 // (0, 1]; 1 follows instantly

	// WorldSizePx bounds the focus. A zero size disables clamping.
	WorldSizePx mgl32.Vec2

	current  mgl32.Vec2
	velocity mgl32.Vec2
	started  bool
}

// NewInterpolator returns an interpolator with the given mode and smoothing.
func NewInterpolator(mode Mode, smoothing float32, worldSizePx mgl32.Vec2) *Interpolator {
	if smoothing <= 0 || smoothing > 1 {
		smoothing = 1
	}
	return &Interpolator{Mode: mode, Smoothing: smoothing, WorldSizePx: worldSizePx}
}

// Reset makes the next Transform snap to its target.
func (ip *Interpolator) Reset() {
	ip.started = false
	ip.velocity = mgl32.Vec2{}
}

// Current returns the last computed focus.
func (ip *Interpolator) Current() mgl32.Vec2 {
	return ip.current
}

// Transform advances one update towards target and returns the new focus,
// clamped so a view of halfVisible half-extent stays inside the world.
func (ip *Interpolator) Transform(target, halfVisible mgl32.Vec2) mgl32.Vec2 {
	if !ip.started {
		ip.current = target
		ip.started = true
	} else {
		switch ip.Mode {
		case ModeLinear:
			ip.current = ip.current.Add(target.Sub(ip.current).Mul(ip.Smoothing))
		case ModeSigmoid:
			d := target.Sub(ip.current)
			reach := halfVisible.Len()
			t := float32(1)
			if reach > 0 {
				t = smoothstep(d.Len() / reach)
			}
			alpha := ip.Smoothing + (1-ip.Smoothing)*t
			ip.current = ip.current.Add(d.Mul(alpha))
		case ModeDamped:
			ip.current = ip.damp(target)
		default:
			ip.current = target
		}
	}
	ip.current = ip.clamp(ip.current, halfVisible)
	return ip.current
}

// damp is a critically damped spring stepped at fixedStep.
func (ip *Interpolator) damp(target mgl32.Vec2) mgl32.Vec2 {
	smoothTime := float32(fixedStep) / ip.Smoothing
	omega := 2 / smoothTime
	x := omega * fixedStep
	decay := 1 / (1 + x + 0.48*x*x + 0.235*x*x*x)

	change := ip.current.Sub(target)
	temp := ip.velocity.Add(change.Mul(omega)).Mul(fixedStep)
	ip.velocity = ip.velocity.Sub(temp.Mul(omega)).Mul(decay)
	return target.Add(change.Add(temp).Mul(decay))
}

func (ip *Interpolator) clamp(p, half mgl32.Vec2) mgl32.Vec2 {
	for i := 0; i < 2; i++ {
		size := ip.WorldSizePx[i]
		if size <= 0 {
			continue
		}
		if size <= 2*half[i] {
			p[i] = size / 2
			continue
		}
		p[i] = mgl32.Clamp(p[i], half[i], size-half[i])
	}
	return p
}

func smoothstep(x float32) float32 {
	x = float32(gomath.Max(0, gomath.Min(1, float64(x))))
	return x * x * (3 - 2*x)
}
