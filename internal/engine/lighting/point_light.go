package lighting

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the maximum number of lights drawn into one light map.
const MaxLights = 64

// PointLight is an omnidirectional light. Positions and distances are in
// world meters.
type PointLight struct {
	Position mgl32.Vec2
	Color    mgl32.Vec4 // RGB, intensity in alpha
	Distance float32    // reach
	Active   bool
}

// ConeLight is a light that shines along a direction. It implements
// Headlight.
type ConeLight struct {
	PointLight
	DirectionDeg float32
	ConeDeg      float32 // half angle
}

// NewConeLight returns an active cone light at the origin pointing along +X.
func NewConeLight(color mgl32.Vec4, distance, coneDeg float32) *ConeLight {
	if distance <= 0 {
		distance = 1
	}
	return &ConeLight{
		PointLight: PointLight{Color: clampColor(color), Distance: distance, Active: true},
		ConeDeg:    coneDeg,
	}
}

func (c *ConeLight) SetActive(active bool) {
	c.Active = active
}

func (c *ConeLight) SetDirection(deg float32) {
	c.DirectionDeg = deg
}

func (c *ConeLight) SetPosition(p mgl32.Vec2) {
	c.Position = p
}

// splat is the disc a light covers on the light map.
func (l *PointLight) splat() (centre mgl32.Vec2, radius float32) {
	return l.Position, l.Distance
}

// Cone lights are drawn as a disc half their reach ahead of the lamp.
func (c *ConeLight) splat() (centre mgl32.Vec2, radius float32) {
	r := c.Distance / 2
	return c.Position.Add(Direction(c.DirectionDeg).Mul(r)), r
}

// Direction returns the unit vector for an angle in degrees, measured
// counter-clockwise from +X.
func Direction(deg float32) mgl32.Vec2 {
	rad := float64(mgl32.DegToRad(deg))
	return mgl32.Vec2{float32(math.Cos(rad)), float32(math.Sin(rad))}
}

func clampColor(c mgl32.Vec4) mgl32.Vec4 {
	for i := 0; i < 4; i++ {
		c[i] = mgl32.Clamp(c[i], 0, 1)
	}
	return c
}
