package world

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/trackview/internal/engine/lighting"
)

// Driver moves an actor around a closed loop of waypoints at constant speed.
// Positions are world pixels with y up.
type Driver struct {
	path     []mgl32.Vec2
	speedPx  float32 // pixels per second
	lengthMt float32
	loop     float32

	next     int
	position mgl32.Vec2
	heading  float32 // degrees, 0 = +X
}

// NewDriver starts at the first waypoint heading for the second. A path
// with fewer than two points keeps the driver parked.
func NewDriver(path []mgl32.Vec2, speedPx, lengthMt float32) *Driver {
	d := &Driver{path: path, speedPx: speedPx, lengthMt: lengthMt}
	if len(path) > 0 {
		d.position = path[0]
	}
	if len(path) > 1 {
		d.next = 1
		d.heading = headingTo(d.position, path[1])
		d.loop = loopLength(path)
	}
	return d
}

// Update advances the driver by dt seconds, turning at each waypoint.
func (d *Driver) Update(dt float32) {
	if d.loop == 0 || dt <= 0 {
		return
	}
	remaining := float32(math.Mod(float64(d.speedPx*dt), float64(d.loop)))
	for remaining > 0 {
		target := d.path[d.next]
		delta := target.Sub(d.position)
		dist := delta.Len()
		if dist > remaining {
			d.position = d.position.Add(delta.Mul(remaining / dist))
			d.heading = headingTo(d.position, target)
			return
		}
		d.position = target
		remaining -= dist
		d.next = (d.next + 1) % len(d.path)
		d.heading = headingTo(d.position, d.path[d.next])
	}
}

func loopLength(path []mgl32.Vec2) float32 {
	var total float32
	for i := range path {
		total += path[(i+1)%len(path)].Sub(path[i]).Len()
	}
	return total
}

// Position returns the actor position in world pixels.
func (d *Driver) Position() mgl32.Vec2 {
	return d.position
}

// Actor returns the state the headlights follow. Orientation 0 faces +Y.
func (d *Driver) Actor() lighting.Actor {
	return lighting.Actor{
		PositionPx:     d.position,
		OrientationDeg: d.heading - 90,
		LengthMt:       d.lengthMt,
	}
}

func headingTo(from, to mgl32.Vec2) float32 {
	v := to.Sub(from)
	if v.Len() == 0 {
		return 0
	}
	return float32(math.Atan2(float64(v[1]), float64(v[0])) * 180 / math.Pi)
}
