// Package cull classifies bounding boxes against a camera frustum.
//
// The test is conservative: a box is culled only when it lies entirely on the
// outside of at least one frustum plane. Boxes that straddle a plane or a
// corner are always reported visible.
package cull

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Result is the per-frame classification of one box.
type Result uint8

const (
	Visible Result = iota
	Culled
)

func (r Result) String() string {
	if r == Visible {
		return "visible"
	}
	return "culled"
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max mgl32.Vec3
}

// Box builds an AABB from two opposite corners in any order.
func Box(a, b mgl32.Vec3) AABB {
	return AABB{
		Min: mgl32.Vec3{min(a[0], b[0]), min(a[1], b[1]), min(a[2], b[2])},
		Max: mgl32.Vec3{max(a[0], b[0]), max(a[1], b[1]), max(a[2], b[2])},
	}
}

// Size returns the extent along each axis.
func (b AABB) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Center returns the box centre.
func (b AABB) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Degenerate reports boxes that cannot be meaningfully tested: NaN or
// infinite coordinates, inverted extents, or zero extent on two or more
// axes (a line or a point). Planar boxes with one zero extent are valid:
// flat meshes and upright wall quads have them.
func (b AABB) Degenerate() bool {
	flat := 0
	for i := 0; i < 3; i++ {
		if !finite(b.Min[i]) || !finite(b.Max[i]) || b.Max[i] < b.Min[i] {
			return true
		}
		if b.Max[i] == b.Min[i] {
			flat++
		}
	}
	return flat >= 2
}

// Corners returns the eight corners. Bit 0 of the index selects max X,
// bit 1 max Y, bit 2 max Z.
func (b AABB) Corners() [8]mgl32.Vec3 {
	var c [8]mgl32.Vec3
	for i := range c {
		c[i] = mgl32.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			c[i][0] = b.Max[0]
		}
		if i&2 != 0 {
			c[i][1] = b.Max[1]
		}
		if i&4 != 0 {
			c[i][2] = b.Max[2]
		}
	}
	return c
}

// Transform returns the axis-aligned box enclosing all eight transformed
// corners. This never shrinks the box, which keeps culling conservative
// under rotation.
func (b AABB) Transform(m mgl32.Mat4) AABB {
	corners := b.Corners()
	p := mgl32.TransformCoordinate(corners[0], m)
	out := AABB{Min: p, Max: p}
	for _, c := range corners[1:] {
		p = mgl32.TransformCoordinate(c, m)
		for i := 0; i < 3; i++ {
			out.Min[i] = min(out.Min[i], p[i])
			out.Max[i] = max(out.Max[i], p[i])
		}
	}
	return out
}

func finite(f float32) bool {
	return !math.IsNaN(float64(f)) && !math.IsInf(float64(f), 0)
}

type plane struct {
	a, b, c, d float32
}

// Frustum is six normalized planes: left, right, bottom, top, near, far.
// A point p is inside a plane when a*x + b*y + c*z + d >= 0.
type Frustum struct {
	planes [6]plane
}

// NewFrustum extracts the frustum planes from a combined projection*view matrix.
func NewFrustum(clip mgl32.Mat4) Frustum {
	// mgl32 is column-major: row r, column c is clip[c*4+r].
	m00, m01, m02, m03 := clip[0], clip[4], clip[8], clip[12]
	m10, m11, m12, m13 := clip[1], clip[5], clip[9], clip[13]
	m20, m21, m22, m23 := clip[2], clip[6], clip[10], clip[14]
	m30, m31, m32, m33 := clip[3], clip[7], clip[11], clip[15]

	var f Frustum
	f.planes[0] = normalizePlane(plane{m30 + m00, m31 + m01, m32 + m02, m33 + m03})
	f.planes[1] = normalizePlane(plane{m30 - m00, m31 - m01, m32 - m02, m33 - m03})
	f.planes[2] = normalizePlane(plane{m30 + m10, m31 + m11, m32 + m12, m33 + m13})
	f.planes[3] = normalizePlane(plane{m30 - m10, m31 - m11, m32 - m12, m33 - m13})
	f.planes[4] = normalizePlane(plane{m30 + m20, m31 + m21, m32 + m22, m33 + m23})
	f.planes[5] = normalizePlane(plane{m30 - m20, m31 - m21, m32 - m22, m33 - m23})
	return f
}

func normalizePlane(p plane) plane {
	l := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}

// ContainsPoint reports whether p is inside or on every plane.
func (f *Frustum) ContainsPoint(p mgl32.Vec3) bool {
	for _, pl := range f.planes {
		if pl.a*p[0]+pl.b*p[1]+pl.c*p[2]+pl.d < 0 {
			return false
		}
	}
	return true
}

// Classify tests a world-space box. Degenerate boxes are culled.
func (f *Frustum) Classify(b AABB) Result {
	if b.Degenerate() {
		return Culled
	}
	for _, pl := range f.planes {
		// Positive vertex: the corner furthest along the plane normal.
		px := b.Max[0]
		if pl.a < 0 {
			px = b.Min[0]
		}
		py := b.Max[1]
		if pl.b < 0 {
			py = b.Min[1]
		}
		pz := b.Max[2]
		if pl.c < 0 {
			pz = b.Min[2]
		}
		if pl.a*px+pl.b*py+pl.c*pz+pl.d < 0 {
			return Culled
		}
	}
	return Visible
}
