package world

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/trackview/internal/engine/gfx"
	"github.com/Faultbox/trackview/internal/engine/mesh"
	"github.com/Faultbox/trackview/internal/engine/scene"
	"github.com/Faultbox/trackview/internal/engine/tilemap"
)

type fakeUploader struct {
	meshes   int
	textures int
	failMesh error
}

func (u *fakeUploader) UploadMesh(vertices []float32, indices []uint32) (gfx.Mesh, error) {
	if u.failMesh != nil {
		return gfx.Mesh{}, u.failMesh
	}
	u.meshes++
	return gfx.Mesh{VAO: uint32(u.meshes), Count: int32(len(indices)), Indexed: true}, nil
}

func (u *fakeUploader) UploadTexture(*image.RGBA) gfx.Texture {
	u.textures++
	return gfx.Texture(100 + u.textures)
}

func nearVec2(a, b mgl32.Vec2, eps float64) bool {
	return math.Abs(float64(a[0]-b[0])) <= eps && math.Abs(float64(a[1]-b[1])) <= eps
}

var square = []mgl32.Vec2{{0, 0}, {100, 0}, {100, 100}, {0, 100}}

func TestDriverMovesAlongPath(t *testing.T) {
	d := NewDriver(square, 50, 4)
	if d.Position() != square[0] {
		t.Fatalf("expected start at first waypoint, got %v", d.Position())
	}

	d.Update(1)
	if !nearVec2(d.Position(), mgl32.Vec2{50, 0}, 1e-4) {
		t.Errorf("expected (50, 0), got %v", d.Position())
	}
	if a := d.Actor(); a.OrientationDeg != -90 || a.LengthMt != 4 {
		t.Errorf("expected heading +X as orientation -90, got %+v", a)
	}

	// Turn the first corner.
	d.Update(1.5)
	if !d.Position().ApproxEqual(mgl32.Vec2{100, 25}) {
		t.Errorf("expected (100, 25), got %v", d.Position())
	}
	if a := d.Actor(); a.OrientationDeg != 0 {
		t.Errorf("expected heading +Y as orientation 0, got %v", a.OrientationDeg)
	}
}

func TestDriverWrapsLoop(t *testing.T) {
	d := NewDriver(square, 100, 4)
	// One lap plus 50 px.
	d.Update(4.5)
	if !nearVec2(d.Position(), mgl32.Vec2{50, 0}, 1e-3) {
		t.Errorf("expected (50, 0) after a lap, got %v", d.Position())
	}
}

func TestDriverParked(t *testing.T) {
	tests := []struct {
		name string
		path []mgl32.Vec2
	}{
		{"empty", nil},
		{"single", []mgl32.Vec2{{5, 5}}},
		{"coincident", []mgl32.Vec2{{5, 5}, {5, 5}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := NewDriver(tt.path, 100, 4)
			before := d.Position()
			d.Update(1)
			if d.Position() != before {
				t.Errorf("expected parked driver, moved to %v", d.Position())
			}
		})
	}
}

func TestBuildTrack(t *testing.T) {
	up := &fakeUploader{}
	cfg := DefaultTrackConfig()
	tr, err := BuildTrack(up, cfg)
	if err != nil {
		t.Fatal(err)
	}
	l := tr.Level

	if err := l.TileMap.Validate(); err != nil {
		t.Fatalf("invalid tile map: %v", err)
	}
	if got := l.WorldSizePx(); got != (mgl32.Vec2{16 * 256, 12 * 256}) {
		t.Errorf("unexpected world size %v", got)
	}
	if len(l.Walls) == 0 || len(l.Trees) != cfg.Trees || len(l.Statics) != 7 {
		t.Errorf("unexpected groups: %d walls, %d trees, %d statics", len(l.Walls), len(l.Trees), len(l.Statics))
	}
	if l.TrunkTexture == 0 {
		t.Error("expected a trunk texture")
	}
	if up.meshes != 5 {
		t.Errorf("expected 5 shared meshes, got %d", up.meshes)
	}

	for i, w := range l.Walls {
		if w.Material.Texture == 0 {
			t.Fatalf("wall %d has no texture", i)
		}
	}
	for i := 1; i < len(l.Statics); i++ {
		if l.Statics[i].Material.ID < l.Statics[i-1].Material.ID {
			t.Fatal("expected statics sorted by material")
		}
	}

	if len(tr.Path) != 4 {
		t.Fatalf("expected a 4 corner loop, got %d", len(tr.Path))
	}
	// Top-left corner of the loop is (2.5, 2.5) tiles from the top-left.
	if !tr.Path[0].ApproxEqual(mgl32.Vec2{640, 12*256 - 640}) {
		t.Errorf("unexpected first waypoint %v", tr.Path[0])
	}
}

func TestGroundLayers(t *testing.T) {
	cfg := DefaultTrackConfig()
	layers := groundLayers(cfg)
	at := func(layer, col, row int) int { return layers[layer][row*cfg.Cols+col] }

	if at(0, 0, 0) != TileSand || at(0, 2, 5) != TileAsphalt || at(0, 5, 5) != TileGrass {
		t.Error("unexpected ground tiles")
	}
	if at(1, 2, 2) != TileCurb || at(1, 5, 2) != tilemap.Empty {
		t.Error("unexpected decal tiles")
	}
}

func TestBuildTrackErrors(t *testing.T) {
	small := DefaultTrackConfig()
	small.Cols = 5
	if _, err := BuildTrack(&fakeUploader{}, small); err == nil {
		t.Error("expected error for a track too small for its inset")
	}

	boom := errors.New("out of memory")
	if _, err := BuildTrack(&fakeUploader{failMesh: boom}, DefaultTrackConfig()); !errors.Is(err, boom) {
		t.Errorf("expected wrapped upload error, got %v", err)
	}

	missing := DefaultTrackConfig()
	missing.TilesetPath = "does-not-exist.png"
	if _, err := BuildTrack(&fakeUploader{}, missing); err == nil {
		t.Error("expected error for a missing tileset")
	}
}

func TestSortByMaterialIsStable(t *testing.T) {
	l := &scene.Level{Walls: []mesh.Static{
		{Material: gfx.Material{ID: 2}, Mesh: gfx.Mesh{VAO: 1}},
		{Material: gfx.Material{ID: 1}, Mesh: gfx.Mesh{VAO: 2}},
		{Material: gfx.Material{ID: 2}, Mesh: gfx.Mesh{VAO: 3}},
		{Material: gfx.Material{ID: 1}, Mesh: gfx.Mesh{VAO: 4}},
	}}
	SortByMaterial(l)
	want := []uint32{2, 4, 1, 3}
	for i, w := range l.Walls {
		if w.Mesh.VAO != want[i] {
			t.Fatalf("position %d: expected vao %d, got %d", i, want[i], w.Mesh.VAO)
		}
	}
}

func TestQuadIndices(t *testing.T) {
	idx := quadIndices(2)
	want := []uint32{0, 1, 2, 0, 2, 3, 4, 5, 6, 4, 6, 7}
	for i := range want {
		if idx[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, idx)
		}
	}
	if n := len(boxVertices(mgl32.Vec3{}, mgl32.Vec3{1, 1, 1})); n != 5*4*5 {
		t.Errorf("expected 100 floats for a box, got %d", n)
	}
}
