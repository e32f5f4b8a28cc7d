// Package mesh describes level-owned renderables. Values here are created
// once at level load and are never mutated by the renderer.
package mesh

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/trackview/internal/engine/cull"
	"github.com/Faultbox/trackview/internal/engine/gfx"
)

// Placement positions a flat-aligned model on the play field.
type Placement struct {
	PositionPx    mgl32.Vec2 // tile-map pixel position (origin top-left)
	OffsetPx      mgl32.Vec2 // screen-space nudge applied after projection
	RotationAxis  mgl32.Vec3
	RotationAngle float32 // degrees
	ScaleAxis     mgl32.Vec3
}

// Model returns the local rotate-then-scale transform of p.
// A zero rotation axis or angle means no rotation; a zero scale axis means unit scale.
func (p Placement) Model() mgl32.Mat4 {
	m := mgl32.Ident4()
	if p.RotationAngle != 0 && p.RotationAxis.Len() > 0 {
		m = m.Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(p.RotationAngle), p.RotationAxis.Normalize()))
	}
	if p.ScaleAxis != (mgl32.Vec3{}) {
		m = m.Mul4(mgl32.Scale3D(p.ScaleAxis[0], p.ScaleAxis[1], p.ScaleAxis[2]))
	}
	return m
}

// Static is a flat, textured mesh: track walls and decorative static meshes.
type Static struct {
	Placement
	Mesh        gfx.Mesh
	Material    gfx.Material
	LocalBounds cull.AABB
}

// Tree is an extruded foliage model drawn in two passes. Material is the
// foliage material; all trunks share one texture owned by the level.
type Tree struct {
	Placement
	Trunk       gfx.Mesh
	Leaves      gfx.Mesh
	Material    gfx.Material
	LocalBounds cull.AABB
}
