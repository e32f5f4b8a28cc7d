package batch

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/trackview/internal/engine/cull"
)

// Record is the per-frame derived state of one mesh. Records live in an
// Arena and are indexed like the mesh slice they were computed from.
type Record struct {
	Model  mgl32.Mat4
	MVP    mgl32.Mat4
	Bounds cull.AABB // world space
	Result cull.Result
	Err    error // placement failure, if any
}

// Arena holds the records of one group for the current frame. Its storage
// is reused across frames.
type Arena struct {
	records []Record
}

// Reset sizes the arena for n meshes and zeroes every record.
func (a *Arena) Reset(n int) []Record {
	if cap(a.records) < n {
		a.records = make([]Record, n)
		return a.records
	}
	a.records = a.records[:n]
	clear(a.records)
	return a.records
}

// Records returns the records of the last render. The slice is only valid
// until the next Reset.
func (a *Arena) Records() []Record {
	return a.records
}

// Len returns the number of records.
func (a *Arena) Len() int {
	return len(a.records)
}
