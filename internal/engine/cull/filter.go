package cull

import "github.com/go-gl/mathgl/mgl32"

// Filter classifies boxes against the frustum of the current frame and counts
// the outcome. With Enabled false every non-degenerate box is visible, which
// is useful to compare output with and without culling.
type Filter struct {
	Enabled bool

	frustum Frustum
	visible int
	culled  int
}

// NewFilter returns an enabled filter with an empty frustum.
// Call SetCamera before the first Classify of a frame.
func NewFilter() *Filter {
	return &Filter{Enabled: true}
}

// SetCamera rebuilds the frustum from a combined matrix.
func (f *Filter) SetCamera(combined mgl32.Mat4) {
	f.frustum = NewFrustum(combined)
}

// Frustum returns the current frustum.
func (f *Filter) Frustum() *Frustum {
	return &f.frustum
}

// Classify tests a world-space box and updates the counters.
func (f *Filter) Classify(b AABB) Result {
	var r Result
	switch {
	case b.Degenerate():
		r = Culled
	case !f.Enabled:
		r = Visible
	default:
		r = f.frustum.Classify(b)
	}
	if r == Visible {
		f.visible++
	} else {
		f.culled++
	}
	return r
}

// Counts returns the visible and culled totals since the last ResetCounts.
func (f *Filter) Counts() (visible, culled int) {
	return f.visible, f.culled
}

// ResetCounts zeroes the counters.
func (f *Filter) ResetCounts() {
	f.visible, f.culled = 0, 0
}
