package lighting

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Faultbox/trackview/internal/engine/camera"
	"github.com/Faultbox/trackview/internal/engine/gfx"
	"github.com/Faultbox/trackview/internal/logger"
	"github.com/Faultbox/trackview/pkg/convert"
)

type fakeSystem struct {
	initErr   error
	updateErr error
	mapErr    error
	renderErr error

	mvp        mgl32.Mat4
	rect       [4]float32
	updates    int
	mapUpdates int
	renders    int
}

func (f *fakeSystem) Init() error { return f.initErr }

func (f *fakeSystem) SetCombinedMatrix(m mgl32.Mat4, x, y, w, h float32) {
	f.mvp = m
	f.rect = [4]float32{x, y, w, h}
}

func (f *fakeSystem) Update() error {
	f.updates++
	return f.updateErr
}

func (f *fakeSystem) UpdateLightMap() error {
	f.mapUpdates++
	return f.mapErr
}

func (f *fakeSystem) RenderLightMap(gfx.Target) error {
	f.renders++
	return f.renderErr
}

type fakeHeadlight struct {
	active bool
	dir    float32
	pos    mgl32.Vec2
	moves  int
}

func (h *fakeHeadlight) SetActive(v bool)         { h.active = v }
func (h *fakeHeadlight) SetDirection(deg float32) { h.dir = deg; h.moves++ }
func (h *fakeHeadlight) SetPosition(p mgl32.Vec2) { h.pos = p }

var testConv = convert.Converter{PixelsPerMeter: 10, TileMapZoom: 1}

func observe(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Use(zap.New(core))
	t.Cleanup(func() { logger.Use(nil) })
	return logs
}

func testState() camera.State {
	return camera.State{
		Position:  mgl32.Vec2{100, 50},
		OrthoMVP:  mgl32.Scale3D(2, 2, 1),
		WorldRect: camera.Rect{X: -300, Y: -250, W: 800, H: 600},
	}
}

func TestNewCompositorInitFailureIsFatal(t *testing.T) {
	boom := errors.New("no GL")
	_, err := NewCompositor(&fakeSystem{initErr: boom}, testConv)
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped init error, got %v", err)
	}
}

func TestNilSystemDisabled(t *testing.T) {
	c, err := NewCompositor(nil, testConv)
	if err != nil {
		t.Fatal(err)
	}
	if c.Enabled() {
		t.Error("expected disabled compositor")
	}
	if c.SyncToCamera(testState()) {
		t.Error("expected no sync without a system")
	}
	if err := c.RenderLightMap(&gfx.FakeTarget{}); err != nil {
		t.Errorf("expected no-op render, got %v", err)
	}
	if _, ok := c.LastSync(); ok {
		t.Error("expected no last sync")
	}
}

func TestSyncToCameraPushesMeters(t *testing.T) {
	sys := &fakeSystem{}
	c, err := NewCompositor(sys, testConv)
	if err != nil {
		t.Fatal(err)
	}

	s := testState()
	if !c.SyncToCamera(s) {
		t.Fatal("expected sync")
	}
	if sys.mvp != s.OrthoMVP {
		t.Error("expected meter MVP pushed")
	}
	if want := [4]float32{10, 5, 80, 60}; sys.rect != want {
		t.Errorf("expected rect %v, got %v", want, sys.rect)
	}
	if sys.updates != 1 || sys.mapUpdates != 1 {
		t.Errorf("expected one update each, got %d/%d", sys.updates, sys.mapUpdates)
	}

	last, ok := c.LastSync()
	if !ok || last.X != 10 || last.Width != 80 {
		t.Errorf("unexpected last sync %+v", last)
	}
}

func TestSyncSkipsUnavailableFrames(t *testing.T) {
	logs := observe(t)
	sys := &fakeSystem{updateErr: ErrUnavailable}
	c, err := NewCompositor(sys, testConv)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if c.SyncToCamera(testState()) {
			t.Fatal("expected skipped sync")
		}
	}
	if sys.mapUpdates != 0 {
		t.Error("expected light map update skipped after a failed update")
	}
	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 1 {
		t.Errorf("expected one warning for a run of failures, got %d", n)
	}

	sys.updateErr = nil
	if !c.SyncToCamera(testState()) {
		t.Error("expected sync after recovery")
	}
	if logs.FilterMessage("light system recovered").Len() != 1 {
		t.Error("expected recovery logged")
	}
}

func TestRenderLightMapErrors(t *testing.T) {
	observe(t)
	sys := &fakeSystem{renderErr: ErrUnavailable}
	c, _ := NewCompositor(sys, testConv)

	if err := c.RenderLightMap(&gfx.FakeTarget{}); err != nil {
		t.Errorf("expected unavailable swallowed, got %v", err)
	}

	boom := errors.New("fbo lost")
	sys.renderErr = boom
	if err := c.RenderLightMap(&gfx.FakeTarget{}); !errors.Is(err, boom) {
		t.Errorf("expected wrapped error, got %v", err)
	}
}

func nearVec2(a, b mgl32.Vec2, eps float64) bool {
	return math.Abs(float64(a[0]-b[0])) <= eps && math.Abs(float64(a[1]-b[1])) <= eps
}

func TestHeadlightPose(t *testing.T) {
	p := HeadlightPoseFor(Actor{PositionPx: mgl32.Vec2{100, 200}, OrientationDeg: 0, LengthMt: 4}, testConv)
	if p.DirectionDeg != 90 {
		t.Errorf("expected direction 90, got %v", p.DirectionDeg)
	}
	// Facing +Y: 2.25 m ahead of (10, 20).
	if !nearVec2(p.Position, mgl32.Vec2{10, 22.25}, 1e-4) {
		t.Errorf("expected (10, 22.25), got %v", p.Position)
	}

	p = HeadlightPoseFor(Actor{PositionPx: mgl32.Vec2{}, OrientationDeg: 90, LengthMt: 2}, testConv)
	if !nearVec2(p.Position, mgl32.Vec2{-1.25, 0}, 1e-4) {
		t.Errorf("expected (-1.25, 0), got %v", p.Position)
	}
}

func TestUpdateHeadlights(t *testing.T) {
	c, _ := NewCompositor(nil, testConv)
	// No headlight attached: must not panic.
	c.UpdateHeadlights(Actor{LengthMt: 4})

	h := &fakeHeadlight{}
	c.SetHeadlight(h)
	if !h.active {
		t.Error("expected headlight activated on attach")
	}

	c.UpdateHeadlights(Actor{PositionPx: mgl32.Vec2{100, 200}, LengthMt: 4})
	if h.moves != 1 || h.dir != 90 {
		t.Errorf("expected one move facing 90, got %d moves, dir %v", h.moves, h.dir)
	}

	c.SetHeadlightsEnabled(false)
	if h.active {
		t.Error("expected headlight deactivated")
	}
	c.UpdateHeadlights(Actor{LengthMt: 4})
	if h.moves != 1 {
		t.Error("expected no move while disabled")
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		deg  float32
		want mgl32.Vec2
	}{
		{0, mgl32.Vec2{1, 0}},
		{90, mgl32.Vec2{0, 1}},
		{180, mgl32.Vec2{-1, 0}},
		{-90, mgl32.Vec2{0, -1}},
	}
	for _, tt := range tests {
		if got := Direction(tt.deg); !nearVec2(got, tt.want, 1e-6) {
			t.Errorf("Direction(%v): expected %v, got %v", tt.deg, tt.want, got)
		}
	}
}

func TestLightMapLifecycle(t *testing.T) {
	rec := gfx.NewRecorder()
	lm := NewLightMap(rec, rec)

	if err := lm.Update(); !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable before Init, got %v", err)
	}
	if err := lm.Init(); err != nil {
		t.Fatal(err)
	}

	lm.AddPointLight(PointLight{Position: mgl32.Vec2{0, 0}, Color: mgl32.Vec4{1, 0.5, 0, 2}, Distance: 5, Active: true})
	lm.AddPointLight(PointLight{Position: mgl32.Vec2{500, 500}, Color: mgl32.Vec4{1, 1, 1, 1}, Distance: 5, Active: true})
	lm.AddPointLight(PointLight{Position: mgl32.Vec2{1, 1}, Color: mgl32.Vec4{1, 1, 1, 1}, Distance: 5})
	cone := NewConeLight(mgl32.Vec4{0, 0, 1, 1}, 10, 30)
	cone.SetPosition(mgl32.Vec2{-20, 0})
	lm.AddConeLight(cone)

	lm.SetCombinedMatrix(mgl32.Ident4(), 0, 0, 40, 30)
	if err := lm.Update(); err != nil {
		t.Fatal(err)
	}
	if err := lm.UpdateLightMap(); err != nil {
		t.Fatal(err)
	}
	if n := lm.RenderedLastFrame(); n != 2 {
		t.Fatalf("expected 2 lights in view, got %d", n)
	}

	target := &gfx.FakeTarget{Width: 64, Height: 64}
	if err := lm.RenderLightMap(target); err != nil {
		t.Fatal(err)
	}
	if target.Binds != 1 || target.Unbinds != 1 || target.Bound() {
		t.Errorf("expected target bound once and released, got %d/%d", target.Binds, target.Unbinds)
	}
	if len(target.Cleared) != 1 || target.Cleared[0] != DefaultAmbient {
		t.Errorf("expected ambient clear, got %v", target.Cleared)
	}

	draws := rec.Filter(gfx.OpDrawQuads)
	if len(draws) != 2 {
		t.Fatalf("expected 2 light splats, got %d", len(draws))
	}
	if draws[0].State.Blend != gfx.BlendAdditive {
		t.Errorf("expected additive blending, got %+v", draws[0].State.Blend)
	}
	colors := rec.Filter(gfx.OpSetColor)
	if colors[0].Color != (mgl32.Vec4{1, 0.5, 0, 1}) {
		t.Errorf("expected clamped colour of first light, got %v", colors[0].Color)
	}
	if colors[1].Color != (mgl32.Vec4{0, 0, 1, 1}) {
		t.Errorf("expected cone colour second, got %v", colors[1].Color)
	}
	if st := rec.State(); st.Program != gfx.NoProgram || st.Blend.Enabled {
		t.Errorf("expected program and blending reset, got %+v", st)
	}
}

// splatCounter is a render context that only counts light splats.
type splatCounter struct {
	gfx.Context
	calls, quads int
}

func (c *splatCounter) UseProgram(gfx.Program) {}
func (c *splatCounter) SetMatrix(string, mgl32.Mat4) {}
func (c *splatCounter) SetColor(string, mgl32.Vec4) {}
func (c *splatCounter) SetDepth(gfx.DepthState) {}
func (c *splatCounter) SetCull(gfx.CullState) {}
func (c *splatCounter) SetBlend(gfx.BlendState) {}
func (c *splatCounter) DrawQuads(q []gfx.Quad) { c.calls++; c.quads += len(q) }

type nopTarget struct{}

func (nopTarget) Bind() {}
func (nopTarget) Unbind() {}
func (nopTarget) Clear(mgl32.Vec4) {}
func (nopTarget) Size() (int32, int32) { return 64, 64 }
func (nopTarget) ColorTexture() uint32 { return 0 }

func TestRenderLightMapSteadyStateAllocs(t *testing.T) {
	ctx := &splatCounter{}
	lm := NewLightMap(ctx, gfx.NewRecorder())
	if err := lm.Init(); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		lm.AddPointLight(PointLight{Position: mgl32.Vec2{float32(i), 0}, Color: mgl32.Vec4{1, 1, 1, 1}, Distance: 3, Active: true})
	}
	lm.SetCombinedMatrix(mgl32.Ident4(), 0, 0, 40, 40)
	if err := lm.Update(); err != nil {
		t.Fatal(err)
	}
	if err := lm.UpdateLightMap(); err != nil {
		t.Fatal(err)
	}

	var target nopTarget
	allocs := testing.AllocsPerRun(50, func() {
		if err := lm.RenderLightMap(target); err != nil {
			t.Fatal(err)
		}
	})
	if allocs != 0 {
		t.Errorf("expected no allocations per light map render, got %v", allocs)
	}
	if ctx.calls == 0 || ctx.quads != ctx.calls {
		t.Errorf("expected one quad per splat call, got %d quads over %d calls", ctx.quads, ctx.calls)
	}
}

func TestLightMapInitFailure(t *testing.T) {
	rec := gfx.NewRecorder()
	rec.FailPrograms = map[string]error{"light": errors.New("syntax error")}
	lm := NewLightMap(rec, rec)

	_, err := NewCompositor(lm, testConv)
	if err == nil {
		t.Fatal("expected fatal init error")
	}
}

func TestConeSplatAhead(t *testing.T) {
	c := NewConeLight(mgl32.Vec4{1, 1, 1, 1}, 10, 20)
	c.SetPosition(mgl32.Vec2{0, 0})
	c.SetDirection(90)
	centre, r := c.splat()
	if r != 5 || math.Abs(float64(centre[1]-5)) > 1e-5 || math.Abs(float64(centre[0])) > 1e-5 {
		t.Errorf("expected disc radius 5 at (0, 5), got %v at %v", r, centre)
	}
}
