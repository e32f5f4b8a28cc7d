// Package debug provides debug visualization utilities.
package debug

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/trackview/internal/engine/batch"
	"github.com/Faultbox/trackview/internal/engine/cull"
	"github.com/Faultbox/trackview/internal/engine/gfx"
)

// BoxVertexCount is the number of vertices for a box wireframe (12 edges × 2).
const BoxVertexCount = 24

// Box colours. Both are translucent so the meshes stay readable.
var (
	VisibleBoxColor = mgl32.Vec4{0, 0, 1, 0.15}
	CulledBoxColor  = mgl32.Vec4{1, 0, 0, 0.15}
)

// AppendBoxLines appends the 12 edges of b to dst as a line list of xyz
// triples.
func AppendBoxLines(dst []float32, b cull.AABB) []float32 {
	minX, minY, minZ := b.Min[0], b.Min[1], b.Min[2]
	maxX, maxY, maxZ := b.Max[0], b.Max[1], b.Max[2]
	return append(dst,
		// Bottom face
		minX, minY, minZ, maxX, minY, minZ,
		maxX, minY, minZ, maxX, maxY, minZ,
		maxX, maxY, minZ, minX, maxY, minZ,
		minX, maxY, minZ, minX, minY, minZ,
		// Top face
		minX, minY, maxZ, maxX, minY, maxZ,
		maxX, minY, maxZ, maxX, maxY, maxZ,
		maxX, maxY, maxZ, minX, maxY, maxZ,
		minX, maxY, maxZ, minX, minY, maxZ,
		// Vertical edges
		minX, minY, minZ, minX, minY, maxZ,
		maxX, minY, minZ, maxX, minY, maxZ,
		maxX, maxY, minZ, maxX, maxY, maxZ,
		minX, maxY, minZ, minX, maxY, maxZ,
	)
}

// BoxOverlay draws the world bounds of a group's last render.
type BoxOverlay struct {
	program gfx.Program
	visible []float32
	culled  []float32
}

// NewBoxOverlay returns an overlay drawing with program, which must accept
// UniformMVP and UniformColor.
func NewBoxOverlay(program gfx.Program) *BoxOverlay {
	return &BoxOverlay{program: program}
}

// Draw renders the bounds in records through mvp, visible boxes blue and
// culled boxes red. Records whose placement failed have no bounds and are
// skipped. It returns the number of boxes drawn.
func (o *BoxOverlay) Draw(ctx gfx.Context, mvp mgl32.Mat4, records []batch.Record) int {
	o.visible = o.visible[:0]
	o.culled = o.culled[:0]
	for i := range records {
		r := &records[i]
		if r.Err != nil {
			continue
		}
		if r.Result == cull.Visible {
			o.visible = AppendBoxLines(o.visible, r.Bounds)
		} else {
			o.culled = AppendBoxLines(o.culled, r.Bounds)
		}
	}
	n := (len(o.visible) + len(o.culled)) / (BoxVertexCount * 3)
	if n == 0 {
		return 0
	}

	ctx.UseProgram(o.program)
	ctx.SetMatrix(gfx.UniformMVP, mvp)
	ctx.SetDepth(gfx.DepthState{Test: true, Func: gfx.DepthLessEqual})
	ctx.SetCull(gfx.CullOff)
	ctx.SetBlend(gfx.BlendAlpha)
	if len(o.visible) > 0 {
		ctx.SetColor(gfx.UniformColor, VisibleBoxColor)
		ctx.DrawLines(o.visible)
	}
	if len(o.culled) > 0 {
		ctx.SetColor(gfx.UniformColor, CulledBoxColor)
		ctx.DrawLines(o.culled)
	}
	ctx.SetBlend(gfx.BlendOff)
	return n
}
