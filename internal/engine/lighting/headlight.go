package lighting

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/trackview/pkg/convert"
)

// Headlight is a steerable light owned by the light system.
type Headlight interface {
	SetActive(active bool)
	SetDirection(deg float32)
	SetPosition(p mgl32.Vec2) // meters
}

// Actor is the tracked body the headlights follow.
type Actor struct {
	PositionPx     mgl32.Vec2
	OrientationDeg float32
	LengthMt       float32
}

// HeadlightPose is where a headlight sits for a given actor.
type HeadlightPose struct {
	Position     mgl32.Vec2 // meters
	DirectionDeg float32
}

// Lamps sit this far past the actor's front edge.
const headlightGapMt = 0.25

// HeadlightPoseFor places the light on the actor's forward axis, just past
// its front edge. Orientation 0 faces +Y.
func HeadlightPoseFor(a Actor, conv convert.Converter) HeadlightPose {
	ang := 90 + a.OrientationDeg
	off := a.LengthMt/2 + headlightGapMt
	pos := conv.PxToMt(a.PositionPx).Add(Direction(ang).Mul(off))
	return HeadlightPose{Position: pos, DirectionDeg: ang}
}
