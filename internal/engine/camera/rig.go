package camera

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/trackview/pkg/convert"
)

// ErrNoPlacement is returned when a screen point cannot be projected onto
// the placement plane.
var ErrNoPlacement = errors.New("camera: screen point does not reach placement plane")

const (
	orthoNear = 0
	orthoFar  = 100

	perspNear = 1
	// The perspective far plane sits a little past the placement plane so
	// mesh bases on that plane are never clipped.
	perspFarPadding = 1.05
)

// Rect is an axis-aligned rectangle, origin at its bottom-left.
type Rect struct {
	X, Y, W, H float32
}

// Overlaps reports whether r and o share any area.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Config holds the fixed parameters of a rig.
type Config struct {
	ViewportWidth  float32
	ViewportHeight float32

	Zoom    float32
	MinZoom float32
	MaxZoom float32

	TileMapZoom float32
	Elevation   float32 // perspective camera z
	FarPlane    float32 // distance from the perspective camera to the placement plane

	// One tile of TileSizePx pixels spans ModelUnitsPerTile model units on
	// the placement plane. This fixes the perspective field of view.
	ModelUnitsPerTile float32
	TileSizePx        float32
}

// TileMapView is the background camera.
type TileMapView struct {
	Position mgl32.Vec2
	Zoom     float32
	Viewport mgl32.Vec2
	Combined mgl32.Mat4
}

// Rect returns the tile-map pixel area the view covers.
func (v TileMapView) Rect() Rect {
	w, h := v.Viewport[0]*v.Zoom, v.Viewport[1]*v.Zoom
	return Rect{X: v.Position[0] - w/2, Y: v.Position[1] - h/2, W: w, H: h}
}

// State is a snapshot of every derived camera value for one frame.
type State struct {
	Position     mgl32.Vec2 // orthographic camera, world pixels
	Zoom         float32
	Viewport     mgl32.Vec2
	HalfViewport mgl32.Vec2
	WorldRect    Rect // world pixels visible through the orthographic camera

	OrthoCombined mgl32.Mat4 // pixels -> clip
	OrthoMVP      mgl32.Mat4 // meters -> clip

	TileMap TileMapView

	PerspPosition mgl32.Vec3
	PerspView     mgl32.Mat4
	PerspProj     mgl32.Mat4
	PerspCombined mgl32.Mat4
	PlaneZ        float32 // z of the mesh placement plane
}

// Rig owns the orthographic, tile-map and perspective cameras. All three are
// re-derived together from one authoritative position by SetTrackedPosition.
type Rig struct {
	cfg    Config
	conv   convert.Converter
	interp *Interpolator

	zoom  float32
	fovY  float32
	state State
}

// NewRig builds a rig centred on the world origin, so its state is usable
// before the first SetTrackedPosition.
func NewRig(cfg Config, conv convert.Converter, interp *Interpolator) (*Rig, error) {
	if cfg.ViewportWidth <= 0 || cfg.ViewportHeight <= 0 {
		return nil, fmt.Errorf("camera: invalid viewport %vx%v", cfg.ViewportWidth, cfg.ViewportHeight)
	}
	if cfg.FarPlane <= perspNear {
		return nil, fmt.Errorf("camera: far plane %v must exceed near plane %v", cfg.FarPlane, perspNear)
	}
	if cfg.ModelUnitsPerTile <= 0 || cfg.TileSizePx <= 0 {
		return nil, fmt.Errorf("camera: invalid tile scale %v/%v", cfg.ModelUnitsPerTile, cfg.TileSizePx)
	}
	if cfg.MinZoom <= 0 {
		cfg.MinZoom = 0.1
	}
	if cfg.MaxZoom < cfg.MinZoom {
		cfg.MaxZoom = cfg.MinZoom
	}
	if cfg.TileMapZoom <= 0 {
		cfg.TileMapZoom = 1
	}
	if interp == nil {
		interp = NewInterpolator(ModeOff, 1, mgl32.Vec2{})
	}

	r := &Rig{cfg: cfg, conv: conv, interp: interp}
	r.zoom = r.clampZoom(cfg.Zoom)
	r.updateFOV()
	r.derive(mgl32.Vec2{})
	return r, nil
}

func (r *Rig) clampZoom(z float32) float32 {
	if z != z || z <= 0 {
		z = 1
	}
	return mgl32.Clamp(z, r.cfg.MinZoom, r.cfg.MaxZoom)
}

func (r *Rig) updateFOV() {
	unitsPerPx := r.cfg.ModelUnitsPerTile / r.cfg.TileSizePx
	visible := r.cfg.ViewportHeight * unitsPerPx
	r.fovY = float32(2 * gomath.Atan(float64(visible/(2*r.cfg.FarPlane))))
}

// SetZoom sets the zoom used from the next SetTrackedPosition on, clamped
// to the configured range. It never reaches zero.
func (r *Rig) SetZoom(z float32) {
	r.zoom = r.clampZoom(z)
}

// Zoom returns the pending zoom.
func (r *Rig) Zoom() float32 {
	return r.zoom
}

// Resize changes the viewport and re-derives the current frame.
func (r *Rig) Resize(width, height float32) {
	if width <= 0 || height <= 0 {
		return
	}
	r.cfg.ViewportWidth = width
	r.cfg.ViewportHeight = height
	r.updateFOV()
	r.derive(r.state.Position)
}

// SetTrackedPosition moves the rig towards pos (world pixels) through the
// interpolator. With roundToPixel the orthographic position is snapped to
// whole pixels, which removes sub-pixel shimmer.
func (r *Rig) SetTrackedPosition(pos mgl32.Vec2, roundToPixel bool) {
	half := mgl32.Vec2{r.cfg.ViewportWidth / 2, r.cfg.ViewportHeight / 2}.Mul(r.zoom)
	p := r.interp.Transform(pos, half)
	if roundToPixel {
		p = mgl32.Vec2{float32(gomath.Round(float64(p[0]))), float32(gomath.Round(float64(p[1])))}
	}
	r.derive(p)
}

func (r *Rig) derive(pos mgl32.Vec2) {
	s := &r.state
	s.Position = pos
	s.Zoom = r.zoom
	s.Viewport = mgl32.Vec2{r.cfg.ViewportWidth, r.cfg.ViewportHeight}
	s.HalfViewport = s.Viewport.Mul(0.5)

	hw, hh := s.HalfViewport[0]*r.zoom, s.HalfViewport[1]*r.zoom
	s.WorldRect = Rect{X: pos[0] - hw, Y: pos[1] - hh, W: 2 * hw, H: 2 * hh}

	up := mgl32.Vec3{0, 1, 0}

	// Orthographic camera at z=0 looking down -Z.
	eye := mgl32.Vec3{pos[0], pos[1], 0}
	orthoProj := mgl32.Ortho(-hw, hw, -hh, hh, orthoNear, orthoFar)
	orthoView := mgl32.LookAtV(eye, eye.Sub(mgl32.Vec3{0, 0, 1}), up)
	s.OrthoCombined = orthoProj.Mul4(orthoView)

	// Same transform with input in meters: scale the XY basis by scaled ppm.
	ppm := r.conv.ScaledPixelsPerMeter()
	s.OrthoMVP = s.OrthoCombined
	s.OrthoMVP[0] *= ppm
	s.OrthoMVP[1] *= ppm
	s.OrthoMVP[4] *= ppm
	s.OrthoMVP[5] *= ppm

	// Tile-map camera follows at its own zoom.
	tz := r.cfg.TileMapZoom
	s.TileMap = TileMapView{
		Position: pos.Mul(tz),
		Zoom:     tz * r.zoom,
		Viewport: s.Viewport,
	}
	thw, thh := s.HalfViewport[0]*s.TileMap.Zoom, s.HalfViewport[1]*s.TileMap.Zoom
	tileEye := mgl32.Vec3{s.TileMap.Position[0], s.TileMap.Position[1], 0}
	s.TileMap.Combined = mgl32.Ortho(-thw, thw, -thh, thh, orthoNear, orthoFar).
		Mul4(mgl32.LookAtV(tileEye, tileEye.Sub(mgl32.Vec3{0, 0, 1}), up))

	// Perspective camera straight above the tile-map focus, looking down.
	s.PerspPosition = mgl32.Vec3{s.TileMap.Position[0], s.TileMap.Position[1], r.cfg.Elevation}
	s.PerspView = mgl32.LookAtV(s.PerspPosition, s.PerspPosition.Sub(mgl32.Vec3{0, 0, 1}), up)
	s.PerspProj = mgl32.Perspective(r.fovY, r.cfg.ViewportWidth/r.cfg.ViewportHeight, perspNear, r.cfg.FarPlane*perspFarPadding)
	s.PerspCombined = s.PerspProj.Mul4(s.PerspView)
	s.PlaneZ = r.cfg.Elevation - r.cfg.FarPlane
}

// State returns a copy of the current frame's camera state.
func (r *Rig) State() State {
	return r.state
}

// OrthoMVP returns the meter-based orthographic matrix for overlays and lighting.
func (r *Rig) OrthoMVP() mgl32.Mat4 {
	return r.state.OrthoMVP
}

// FOV returns the perspective vertical field of view in radians.
func (r *Rig) FOV() float32 {
	return r.fovY
}

// WorldToScreen maps a world pixel position to screen pixels for this frame.
func (r *Rig) WorldToScreen(pos mgl32.Vec2) mgl32.Vec2 {
	return convert.WorldPixelsToScreen(pos, r.state.Position, r.state.HalfViewport, r.state.Zoom)
}

// PlaceOnScreen casts a ray from the perspective camera through a screen
// point (origin top-left) and returns where it meets the placement plane.
func (r *Rig) PlaceOnScreen(screen mgl32.Vec2) (mgl32.Vec3, error) {
	s := &r.state
	w, h := int(s.Viewport[0]), int(s.Viewport[1])
	win := mgl32.Vec3{screen[0], s.Viewport[1] - screen[1], 0}

	near, err := mgl32.UnProject(win, s.PerspView, s.PerspProj, 0, 0, w, h)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("unproject near: %w", err)
	}
	win[2] = 1
	far, err := mgl32.UnProject(win, s.PerspView, s.PerspProj, 0, 0, w, h)
	if err != nil {
		return mgl32.Vec3{}, fmt.Errorf("unproject far: %w", err)
	}

	dz := far[2] - near[2]
	if dz == 0 {
		return mgl32.Vec3{}, ErrNoPlacement
	}
	t := (s.PlaneZ - near[2]) / dz
	if t < 0 || t != t {
		return mgl32.Vec3{}, ErrNoPlacement
	}
	p := near.Add(far.Sub(near).Mul(t))
	p[2] = s.PlaneZ
	return p, nil
}

// Ortho returns the orthographic camera state. The copy is read-only for
// callers such as HUD overlays.
func (r *Rig) Ortho() State {
	return r.state
}

// PerspectiveCombined returns the perspective projection times view.
func (r *Rig) PerspectiveCombined() mgl32.Mat4 {
	return r.state.PerspCombined
}

// TileMapView returns the background camera.
func (r *Rig) TileMapView() TileMapView {
	return r.state.TileMap
}

// WorldRect returns the world pixels visible through the orthographic camera.
func (r *Rig) WorldRect() Rect {
	return r.state.WorldRect
}
