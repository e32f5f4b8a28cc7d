// Package batch draws ordered groups of level meshes through the perspective
// camera, culling each one and eliding redundant material binds.
//
// Material binds follow RebindAdjacent: a mesh's material is bound when it
// is the first mesh drawn, when any mesh before it was culled since the last
// bind, or when it differs from the material of the mesh drawn just before
// it. Meshes are never reordered. Interleaved materials such as
// [m1, m2, m1, m2] therefore bind four times; callers that want fewer binds
// must sort their groups by material at load time. Sorting here would change
// draw order and with it the layering of overlapping translucent meshes.
package batch

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/trackview/internal/engine/camera"
	"github.com/Faultbox/trackview/internal/engine/cull"
	"github.com/Faultbox/trackview/internal/engine/gfx"
	"github.com/Faultbox/trackview/internal/engine/mesh"
	"github.com/Faultbox/trackview/internal/logger"
	"github.com/Faultbox/trackview/pkg/convert"
)

// RebindPolicy selects how a renderer decides to rebind materials.
type RebindPolicy uint8

const (
	// RebindAdjacent compares each drawn mesh with its predecessor only and
	// forces a bind after a cull. See the package documentation.
	RebindAdjacent RebindPolicy = iota
)

// Camera is the part of the camera rig the renderer needs.
type Camera interface {
	State() camera.State
	PlaceOnScreen(screen mgl32.Vec2) (mgl32.Vec3, error)
}

// GroupStats counts the outcome of one group render.
type GroupStats struct {
	Rendered int
	Culled   int
	Binds    int
}

// Total returns Rendered + Culled.
func (s GroupStats) Total() int {
	return s.Rendered + s.Culled
}

// Renderer draws one mesh group. Each group owns a renderer so its arena
// stays valid for debug overlays until the group is drawn again.
type Renderer struct {
	Policy RebindPolicy

	name          string
	filter        *cull.Filter
	worldHeightPx float32
	arena         Arena
	log           *zap.Logger
}

// NewRenderer returns a renderer for the named group. Tile-map positions are
// flipped into world space using worldHeightPx.
func NewRenderer(name string, filter *cull.Filter, worldHeightPx float32) *Renderer {
	return &Renderer{
		Policy:        RebindAdjacent,
		name:          name,
		filter:        filter,
		worldHeightPx: worldHeightPx,
		log:           logger.Named("batch").With(zap.String("group", name)),
	}
}

// Name returns the group name.
func (r *Renderer) Name() string {
	return r.name
}

// Arena returns the records of the last render.
func (r *Renderer) Arena() *Arena {
	return &r.arena
}

// RenderGroup draws flat meshes in slice order. The caller sets the program
// and the depth, cull and blend state beforehand.
func (r *Renderer) RenderGroup(ctx gfx.Context, group []mesh.Static, cam Camera) GroupStats {
	s := cam.State()
	recs := r.arena.Reset(len(group))

	var stats GroupStats
	b := newBinder()
	for i := range group {
		m := &group[i]
		rec := &recs[i]
		r.place(m.Placement, m.LocalBounds, &s, cam, rec)
		if rec.Result != cull.Visible {
			b.culled()
			stats.Culled++
			continue
		}
		b.bind(ctx, m.Material)
		ctx.SetMatrix(gfx.UniformMVP, rec.MVP)
		ctx.Draw(m.Mesh)
		stats.Rendered++
	}
	stats.Binds = b.binds
	return stats
}

// RenderTrees draws trees in two passes: opaque trunks with depth test and
// back-face culling, then blended foliage with culling off. The trunk
// texture is bound once for the whole first pass. Each tree is classified
// once and both passes skip it when culled. Rendered counts trees whose
// foliage was drawn.
func (r *Renderer) RenderTrees(ctx gfx.Context, trees []mesh.Tree, trunk gfx.Texture, cam Camera) GroupStats {
	s := cam.State()
	recs := r.arena.Reset(len(trees))
	for i := range trees {
		r.place(trees[i].Placement, trees[i].LocalBounds, &s, cam, &recs[i])
	}

	ctx.SetDepth(gfx.DepthOpaque)
	ctx.SetCull(gfx.CullBack)
	ctx.SetBlend(gfx.BlendOff)
	ctx.BindTexture(trunk)
	for i := range trees {
		if recs[i].Result != cull.Visible {
			continue
		}
		ctx.SetMatrix(gfx.UniformMVP, recs[i].MVP)
		ctx.Draw(trees[i].Trunk)
	}

	ctx.SetCull(gfx.CullOff)
	ctx.SetBlend(gfx.BlendAlpha)

	var stats GroupStats
	b := newBinder()
	for i := range trees {
		if recs[i].Result != cull.Visible {
			b.culled()
			stats.Culled++
			continue
		}
		b.bind(ctx, trees[i].Material)
		ctx.SetMatrix(gfx.UniformMVP, recs[i].MVP)
		ctx.Draw(trees[i].Leaves)
		stats.Rendered++
	}
	stats.Binds = b.binds
	return stats
}

// place projects a mesh onto the placement plane and fills rec. A placement
// that cannot be projected is culled.
func (r *Renderer) place(p mesh.Placement, local cull.AABB, s *camera.State, cam Camera, rec *Record) {
	world := convert.MapToWorld(p.PositionPx, r.worldHeightPx)
	screen := convert.WorldPixelsToScreen(world, s.Position, s.HalfViewport, s.Zoom).Add(p.OffsetPx)

	pos, err := cam.PlaceOnScreen(screen)
	if err != nil {
		r.log.Debug("placement failed", zap.Error(err))
		rec.Err = err
		rec.Result = cull.Culled
		return
	}

	inv := 1 / s.Zoom
	rec.Model = mgl32.Translate3D(pos[0], pos[1], pos[2]).
		Mul4(p.Model()).
		Mul4(mgl32.Scale3D(inv, inv, inv))
	rec.MVP = s.PerspCombined.Mul4(rec.Model)
	rec.Bounds = local.Transform(rec.Model)
	rec.Result = r.filter.Classify(rec.Bounds)
}

// binder tracks the RebindAdjacent state within one pass.
type binder struct {
	prev  gfx.Material
	force bool
	binds int
}

func newBinder() binder {
	return binder{force: true}
}

func (b *binder) culled() {
	b.force = true
}

func (b *binder) bind(ctx gfx.Context, m gfx.Material) {
	if b.force || m != b.prev {
		ctx.BindMaterial(m)
		b.binds++
	}
	b.prev = m
	b.force = false
}
