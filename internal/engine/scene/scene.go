// Package scene provides the world renderer: it keeps the camera rig, the
// light map and the mesh batches of one level in step, frame by frame.
//
// A frame follows a fixed protocol:
//
//	SetCameraPosition  // required first
//	RenderTilemap      // background, no depth, no blending
//	RenderAllMeshes    // walls, trees, static meshes
//	RenderLightMap     // independent of RenderAllMeshes
//
// Rendering before the first SetCameraPosition uses the default camera
// centred on the world origin and logs a warning.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Faultbox/trackview/internal/engine/batch"
	"github.com/Faultbox/trackview/internal/engine/camera"
	"github.com/Faultbox/trackview/internal/engine/cull"
	"github.com/Faultbox/trackview/internal/engine/debug"
	"github.com/Faultbox/trackview/internal/engine/gfx"
	"github.com/Faultbox/trackview/internal/engine/lighting"
	"github.com/Faultbox/trackview/internal/engine/shaders"
	"github.com/Faultbox/trackview/internal/engine/tilemap"
	"github.com/Faultbox/trackview/internal/logger"
	"github.com/Faultbox/trackview/pkg/convert"
)

// Config contains world renderer options.
type Config struct {
	Camera         camera.Config
	Interpolation  camera.Mode
	Smoothing      float32
	PixelsPerMeter float32

	FrustumCulling      bool
	RenderBoundingBoxes bool
	RenderTileGrid      bool
}

// DefaultConfig returns a default renderer configuration.
func DefaultConfig() Config {
	return Config{
		Camera: camera.Config{
			ViewportWidth:     1280,
			ViewportHeight:    720,
			Zoom:              1,
			MinZoom:           0.1,
			MaxZoom:           4,
			TileMapZoom:       1,
			Elevation:         100,
			FarPlane:          240,
			ModelUnitsPerTile: 14.2,
			TileSizePx:        256,
		},
		Interpolation:  camera.ModeLinear,
		Smoothing:      0.25,
		PixelsPerMeter: 18,
		FrustumCulling: true,
	}
}

// FrameStats counts what one RenderAllMeshes call drew.
type FrameStats struct {
	Walls   batch.GroupStats
	Trees   batch.GroupStats
	Statics batch.GroupStats
	Boxes   int // debug bounding boxes
}

// RenderedWalls returns the number of walls drawn.
func (s FrameStats) RenderedWalls() int { return s.Walls.Rendered }

// RenderedTrees returns the number of trees drawn.
func (s FrameStats) RenderedTrees() int { return s.Trees.Rendered }

// RenderedStatics returns the number of static meshes drawn.
func (s FrameStats) RenderedStatics() int { return s.Statics.Rendered }

// CulledMeshes returns the number of meshes culled in all groups.
func (s FrameStats) CulledMeshes() int {
	return s.Walls.Culled + s.Trees.Culled + s.Statics.Culled
}

// MaterialBinds returns the number of material binds in all groups.
func (s FrameStats) MaterialBinds() int {
	return s.Walls.Binds + s.Trees.Binds + s.Statics.Binds
}

type programs struct {
	mesh gfx.Program
	tree gfx.Program
	tile gfx.Program
	bbox gfx.Program
}

// WorldRenderer draws one level. It is not safe for concurrent use; every
// method runs on the render thread.
type WorldRenderer struct {
	ctx   gfx.Context
	level *Level
	conv  convert.Converter

	rig    *camera.Rig
	filter *cull.Filter
	light  *lighting.Compositor

	walls   *batch.Renderer
	trees   *batch.Renderer
	statics *batch.Renderer
	tiles   *tilemap.Renderer
	boxes   *debug.BoxOverlay
	grid    *debug.TileGrid

	programs   programs
	screenQuad [1]gfx.Quad

	renderBoxes bool
	renderGrid  bool

	cameraSet      bool
	warnedNoCamera bool
	cameraGen      uint64
	meshGen        uint64

	last FrameStats
	log  *zap.Logger
}

// New builds a renderer for level. Shader compile failures and light system
// init failures are fatal. light may be nil to run without a light map.
func New(ctx gfx.Context, compiler gfx.Compiler, level *Level, light lighting.System, cfg Config) (*WorldRenderer, error) {
	if level == nil {
		return nil, ErrNoLevel
	}

	conv, err := convert.New(cfg.PixelsPerMeter, cfg.Camera.TileMapZoom)
	if err != nil {
		return nil, fmt.Errorf("unit conversion: %w", err)
	}

	w := &WorldRenderer{
		ctx:         ctx,
		level:       level,
		conv:        conv,
		renderBoxes: cfg.RenderBoundingBoxes,
		renderGrid:  cfg.RenderTileGrid,
		log:         logger.Named("scene"),
	}

	if err := w.compilePrograms(compiler); err != nil {
		return nil, err
	}

	interp := camera.NewInterpolator(cfg.Interpolation, cfg.Smoothing, level.WorldSizePx())
	w.rig, err = camera.NewRig(cfg.Camera, conv, interp)
	if err != nil {
		return nil, fmt.Errorf("creating camera rig: %w", err)
	}

	w.filter = cull.NewFilter()
	w.filter.Enabled = cfg.FrustumCulling
	w.filter.SetCamera(w.rig.PerspectiveCombined())

	height := level.WorldSizePx()[1]
	w.walls = batch.NewRenderer("walls", w.filter, height)
	w.trees = batch.NewRenderer("trees", w.filter, height)
	w.statics = batch.NewRenderer("statics", w.filter, height)
	w.boxes = debug.NewBoxOverlay(w.programs.bbox)

	if level.TileMap != nil {
		w.tiles, err = tilemap.NewRenderer(level.TileMap, w.programs.tile)
		if err != nil {
			return nil, fmt.Errorf("creating tile map renderer: %w", err)
		}
		w.grid = debug.NewTileGrid(level.TileMap, w.programs.bbox)
	}

	w.light, err = lighting.NewCompositor(light, conv)
	if err != nil {
		return nil, fmt.Errorf("creating light compositor: %w", err)
	}

	cols, rows := level.WorldSizeTiles()
	w.log.Info("world renderer ready",
		zap.Int("walls", len(level.Walls)),
		zap.Int("trees", len(level.Trees)),
		zap.Int("statics", len(level.Statics)),
		zap.Int("tile_cols", cols),
		zap.Int("tile_rows", rows),
		zap.Bool("light_map", w.light.Enabled()),
	)
	return w, nil
}

func (w *WorldRenderer) compilePrograms(compiler gfx.Compiler) error {
	targets := []struct {
		src shaders.Source
		dst *gfx.Program
	}{
		{shaders.Mesh, &w.programs.mesh},
		{shaders.Tree, &w.programs.tree},
		{shaders.Tile, &w.programs.tile},
		{shaders.Bbox, &w.programs.bbox},
	}
	for _, t := range targets {
		p, err := compiler.CompileProgram(t.src.Name, t.src.Vertex, t.src.Fragment)
		if err != nil {
			return fmt.Errorf("compiling %s program: %w", t.src.Name, err)
		}
		*t.dst = p
	}
	return nil
}

// SetCameraPosition tracks pos (world pixels) and syncs every camera, the
// visibility filter and the light map to it. With round the orthographic
// position snaps to whole pixels.
func (w *WorldRenderer) SetCameraPosition(pos mgl32.Vec2, round bool) {
	w.rig.SetTrackedPosition(pos, round)
	w.filter.SetCamera(w.rig.PerspectiveCombined())
	w.light.SyncToCamera(w.rig.State())
	w.cameraSet = true
	w.cameraGen++
}

func (w *WorldRenderer) checkCamera(pass string) {
	if w.cameraSet || w.warnedNoCamera {
		return
	}
	w.warnedNoCamera = true
	w.log.Warn("rendering before SetCameraPosition, using default camera", zap.String("pass", pass))
}

// RenderTilemap draws the background through the tile-map camera.
func (w *WorldRenderer) RenderTilemap() {
	w.checkCamera("tilemap")
	if w.tiles == nil {
		return
	}
	view := w.rig.TileMapView()
	w.tiles.Render(w.ctx, view)
	if w.renderGrid {
		w.grid.Draw(w.ctx, view)
	}
	w.ctx.UseProgram(gfx.NoProgram)
}

// RenderAllMeshes draws walls, then trees if there are any, then static
// meshes, and leaves depth testing, depth writes, face culling and blending
// off with no program or material bound.
func (w *WorldRenderer) RenderAllMeshes() FrameStats {
	w.checkCamera("meshes")
	if w.cameraSet && w.meshGen == w.cameraGen && logger.Enabled(zapcore.DebugLevel) {
		w.log.Debug("meshes rendered twice for one camera update", zap.Uint64("camera_gen", w.cameraGen))
	}
	w.meshGen = w.cameraGen
	w.filter.ResetCounts()

	var stats FrameStats
	ctx := w.ctx
	ctx.SetDepth(gfx.DepthOpaque)

	// Walls are translucent at their edges and seen from both sides.
	ctx.UseProgram(w.programs.mesh)
	ctx.SetColor(gfx.UniformColor, gfx.ColorOpaque)
	ctx.SetCull(gfx.CullOff)
	ctx.SetBlend(gfx.BlendAlpha)
	stats.Walls = w.walls.RenderGroup(ctx, w.level.Walls, w.rig)

	if len(w.level.Trees) > 0 {
		ctx.UseProgram(w.programs.tree)
		ctx.SetColor(gfx.UniformColor, gfx.ColorOpaque)
		stats.Trees = w.trees.RenderTrees(ctx, w.level.Trees, w.level.TrunkTexture, w.rig)
	}

	ctx.UseProgram(w.programs.mesh)
	ctx.SetColor(gfx.UniformColor, gfx.ColorOpaque)
	ctx.SetCull(gfx.CullBack)
	ctx.SetBlend(gfx.BlendAlpha)
	stats.Statics = w.statics.RenderGroup(ctx, w.level.Statics, w.rig)

	if w.renderBoxes {
		combined := w.rig.PerspectiveCombined()
		for _, r := range []*batch.Renderer{w.walls, w.trees, w.statics} {
			stats.Boxes += w.boxes.Draw(ctx, combined, r.Arena().Records())
		}
	}

	ctx.SetCull(gfx.CullOff)
	ctx.SetDepth(gfx.DepthOff)
	ctx.SetBlend(gfx.BlendOff)
	ctx.BindMaterial(gfx.NoMaterial)
	ctx.UseProgram(gfx.NoProgram)

	w.last = stats
	return stats
}

// RenderLightMap renders the light map into target. Without a light system
// it does nothing.
func (w *WorldRenderer) RenderLightMap(target gfx.Target) error {
	w.checkCamera("light map")
	return w.light.RenderLightMap(target)
}

// CompositeLightMap multiplies the rendered light map over the current
// framebuffer. Without a light system it does nothing.
func (w *WorldRenderer) CompositeLightMap(target gfx.Target) {
	if !w.light.Enabled() {
		return
	}
	ctx := w.ctx
	ctx.SetDepth(gfx.DepthOff)
	ctx.SetCull(gfx.CullOff)
	ctx.SetBlend(gfx.BlendMultiply)
	ctx.UseProgram(w.programs.tile)
	ctx.SetMatrix(gfx.UniformMVP, mgl32.Ortho2D(0, 1, 0, 1))
	ctx.BindTexture(gfx.Texture(target.ColorTexture()))
	// Framebuffer rows run bottom-up.
	w.screenQuad[0] = gfx.Quad{W: 1, H: 1, UV: [4]float32{0, 1, 1, 0}}
	ctx.DrawQuads(w.screenQuad[:])
	ctx.SetBlend(gfx.BlendOff)
	ctx.UseProgram(gfx.NoProgram)
}

// UpdateHeadlights moves the headlight in front of a.
func (w *WorldRenderer) UpdateHeadlights(a lighting.Actor) {
	w.light.UpdateHeadlights(a)
}

// SetHeadlight attaches the light that follows the tracked actor.
func (w *WorldRenderer) SetHeadlight(h lighting.Headlight) {
	w.light.SetHeadlight(h)
}

// SetHeadlightsEnabled toggles the headlight.
func (w *WorldRenderer) SetHeadlightsEnabled(on bool) {
	w.light.SetHeadlightsEnabled(on)
}

// SetZoom sets the zoom applied from the next SetCameraPosition on.
func (w *WorldRenderer) SetZoom(z float32) {
	w.rig.SetZoom(z)
}

// CameraZoom returns the zoom of the current frame.
func (w *WorldRenderer) CameraZoom() float32 {
	return w.rig.State().Zoom
}

// Resize changes the viewport size.
func (w *WorldRenderer) Resize(width, height int) {
	w.rig.Resize(float32(width), float32(height))
	w.filter.SetCamera(w.rig.PerspectiveCombined())
}

// OrthoCamera returns the orthographic camera state for overlays.
func (w *WorldRenderer) OrthoCamera() camera.State {
	return w.rig.Ortho()
}

// OrthoMVP returns the meter-based orthographic matrix.
func (w *WorldRenderer) OrthoMVP() mgl32.Mat4 {
	return w.rig.OrthoMVP()
}

// WorldToScreen maps a world pixel position to screen pixels for overlays
// anchored to world objects.
func (w *WorldRenderer) WorldToScreen(posPx mgl32.Vec2) mgl32.Vec2 {
	return w.rig.WorldToScreen(posPx)
}

// SetFrustumCulling toggles culling. With culling off every mesh with
// usable bounds is drawn.
func (w *WorldRenderer) SetFrustumCulling(on bool) {
	w.filter.Enabled = on
}

// FrustumCulling reports whether culling is on.
func (w *WorldRenderer) FrustumCulling() bool {
	return w.filter.Enabled
}

// SetRenderBoundingBoxes toggles the bounding box overlay.
func (w *WorldRenderer) SetRenderBoundingBoxes(on bool) {
	w.renderBoxes = on
}

// SetRenderTileGrid toggles the tile grid overlay.
func (w *WorldRenderer) SetRenderTileGrid(on bool) {
	w.renderGrid = on
}

// LastStats returns the result of the last RenderAllMeshes.
func (w *WorldRenderer) LastStats() FrameStats {
	return w.last
}

// Converter returns the unit converter in use.
func (w *WorldRenderer) Converter() convert.Converter {
	return w.conv
}
