package world

import "github.com/go-gl/mathgl/mgl32"

// Vertices are interleaved x, y, z, u, v.

// boxVertices returns the five visible faces of an axis-aligned box (the
// bottom is never seen from above), four vertices each, wound CCW from
// outside.
func boxVertices(lo, hi mgl32.Vec3) []float32 {
	x0, y0, z0 := lo[0], lo[1], lo[2]
	x1, y1, z1 := hi[0], hi[1], hi[2]
	return []float32{
		// top
		x0, y0, z1, 0, 1,
		x1, y0, z1, 1, 1,
		x1, y1, z1, 1, 0,
		x0, y1, z1, 0, 0,
		// -y
		x0, y0, z0, 0, 1,
		x1, y0, z0, 1, 1,
		x1, y0, z1, 1, 0,
		x0, y0, z1, 0, 0,
		// +x
		x1, y0, z0, 0, 1,
		x1, y1, z0, 1, 1,
		x1, y1, z1, 1, 0,
		x1, y0, z1, 0, 0,
		// +y
		x1, y1, z0, 0, 1,
		x0, y1, z0, 1, 1,
		x0, y1, z1, 1, 0,
		x1, y1, z1, 0, 0,
		// -x
		x0, y1, z0, 0, 1,
		x0, y0, z0, 1, 1,
		x0, y0, z1, 1, 0,
		x0, y1, z1, 0, 0,
	}
}

var boxIndices = quadIndices(5)

// canopyVertices returns two crossed vertical quads plus a horizontal one at
// the top, radius r around the trunk axis.
func canopyVertices(r, top float32) []float32 {
	bottom := top * 0.4
	return []float32{
		-r, 0, bottom, 0, 1,
		r, 0, bottom, 1, 1,
		r, 0, top, 1, 0,
		-r, 0, top, 0, 0,

		0, -r, bottom, 0, 1,
		0, r, bottom, 1, 1,
		0, r, top, 1, 0,
		0, -r, top, 0, 0,

		-r, -r, top, 0, 1,
		r, -r, top, 1, 1,
		r, r, top, 1, 0,
		-r, r, top, 0, 0,
	}
}

var canopyIndices = quadIndices(3)

// quadIndices triangulates n quads of four consecutive vertices.
func quadIndices(n int) []uint32 {
	idx := make([]uint32, 0, n*6)
	for q := range n {
		b := uint32(q * 4)
		idx = append(idx, b, b+1, b+2, b, b+2, b+3)
	}
	return idx
}
