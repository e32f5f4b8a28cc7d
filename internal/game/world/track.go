// Package world builds the demo track: a tile-map background with walls,
// trees and static meshes placed along a closed loop, plus the loop the
// tracked car drives.
package world

import (
	"cmp"
	"fmt"
	"image"
	"image/color"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/trackview/internal/engine/cull"
	"github.com/Faultbox/trackview/internal/engine/gfx"
	"github.com/Faultbox/trackview/internal/engine/mesh"
	"github.com/Faultbox/trackview/internal/engine/scene"
	"github.com/Faultbox/trackview/internal/engine/texture"
	"github.com/Faultbox/trackview/internal/engine/tilemap"
	"github.com/Faultbox/trackview/pkg/convert"
)

// Uploader creates GPU resources for the level.
type Uploader interface {
	UploadMesh(vertices []float32, indices []uint32) (gfx.Mesh, error)
	UploadTexture(img *image.RGBA) gfx.Texture
}

// Tile ids in the generated tileset.
const (
	TileGrass = iota
	TileAsphalt
	TileCurb
	TileSand
)

// TrackConfig sizes the generated track.
type TrackConfig struct {
	Cols, Rows int     // map size in tiles
	TileSizePx float32 // tile edge in pixels
	Inset      int     // tiles between the map edge and the loop
	WallEvery  float32 // wall spacing along the loop, pixels
	Trees      int     // trees scattered on the infield

	// TilesetPath loads the tileset atlas from a PNG, BMP or TGA file with a
	// 2x2 layout. Empty generates one.
	TilesetPath string
}

// DefaultTrackConfig returns a 16x12 track of 256 px tiles.
func DefaultTrackConfig() TrackConfig {
	return TrackConfig{
		Cols:       16,
		Rows:       12,
		TileSizePx: 256,
		Inset:      2,
		WallEvery:  128,
		Trees:      24,
	}
}

// Track is a generated level and the loop driven around it.
type Track struct {
	Level *scene.Level
	Path  []mgl32.Vec2 // world pixels, y up
}

// Materials used by the generated meshes, ordered by id.
var (
	materialWall   = gfx.Material{ID: 1}
	materialCone   = gfx.Material{ID: 2}
	materialCrate  = gfx.Material{ID: 3}
	materialLeaves = gfx.Material{ID: 4}
)

// BuildTrack generates the track and uploads its meshes and textures.
func BuildTrack(up Uploader, cfg TrackConfig) (*Track, error) {
	if cfg.Cols < 2*cfg.Inset+3 || cfg.Rows < 2*cfg.Inset+3 {
		return nil, fmt.Errorf("track %dx%d too small for inset %d", cfg.Cols, cfg.Rows, cfg.Inset)
	}
	if cfg.TileSizePx <= 0 || cfg.WallEvery <= 0 {
		return nil, fmt.Errorf("invalid track scale: tile %v, wall spacing %v", cfg.TileSizePx, cfg.WallEvery)
	}

	atlas, err := tileset(cfg.TilesetPath)
	if err != nil {
		return nil, err
	}
	m := &tilemap.Map{
		TileWidth:  cfg.TileSizePx,
		TileHeight: cfg.TileSizePx,
		Cols:       cfg.Cols,
		Rows:       cfg.Rows,
		Layers:     groundLayers(cfg),
		Tileset:    tilemap.Tileset{Texture: up.UploadTexture(atlas), Cols: 2, Rows: 2},
	}

	b := builder{up: up, cfg: cfg, worldH: m.SizePx()[1]}
	if err := b.meshes(); err != nil {
		return nil, err
	}

	mats := map[uint32]*image.RGBA{
		materialWall.ID:   texture.Checker(32, 8, color.RGBA{220, 40, 40, 255}, color.RGBA{240, 240, 240, 255}),
		materialCone.ID:   texture.Solid(4, color.RGBA{255, 140, 0, 255}),
		materialCrate.ID:  texture.Checker(32, 16, color.RGBA{150, 100, 50, 255}, color.RGBA{120, 80, 40, 255}),
		materialLeaves.ID: leaves(),
	}
	textures := make(map[uint32]gfx.Texture, len(mats))
	for id, img := range mats {
		textures[id] = up.UploadTexture(img)
	}
	trunk := up.UploadTexture(texture.Solid(4, color.RGBA{90, 60, 30, 255}))

	level := &scene.Level{
		Walls:        b.walls,
		Trees:        b.trees,
		Statics:      b.statics,
		TrunkTexture: trunk,
		TileMap:      m,
	}
	for i := range level.Walls {
		level.Walls[i].Material.Texture = textures[level.Walls[i].Material.ID]
	}
	for i := range level.Statics {
		level.Statics[i].Material.Texture = textures[level.Statics[i].Material.ID]
	}
	for i := range level.Trees {
		level.Trees[i].Material.Texture = textures[level.Trees[i].Material.ID]
	}
	SortByMaterial(level)

	return &Track{Level: level, Path: b.path()}, nil
}

// SortByMaterial orders every group by material id so the renderer binds
// each material once per run. The sort is stable, keeping load order
// within a material.
func SortByMaterial(l *scene.Level) {
	slices.SortStableFunc(l.Walls, func(a, b mesh.Static) int { return cmp.Compare(a.Material.ID, b.Material.ID) })
	slices.SortStableFunc(l.Statics, func(a, b mesh.Static) int { return cmp.Compare(a.Material.ID, b.Material.ID) })
	slices.SortStableFunc(l.Trees, func(a, b mesh.Tree) int { return cmp.Compare(a.Material.ID, b.Material.ID) })
}

func tileset(path string) (*image.RGBA, error) {
	if path != "" {
		img, err := texture.Load(path, true)
		if err != nil {
			return nil, fmt.Errorf("loading tileset: %w", err)
		}
		return img, nil
	}
	const size = 64
	return texture.Atlas([]*image.RGBA{
		TileGrass:   texture.Checker(size, 16, color.RGBA{60, 130, 50, 255}, color.RGBA{70, 140, 60, 255}),
		TileAsphalt: texture.Solid(size, color.RGBA{70, 70, 75, 255}),
		TileCurb:    texture.Checker(size, 16, color.RGBA{220, 40, 40, 255}, color.RGBA{240, 240, 240, 255}),
		TileSand:    texture.Solid(size, color.RGBA{210, 190, 130, 255}),
	}, size, 2, 2), nil
}

func leaves() *image.RGBA {
	img := texture.Checker(32, 4, color.RGBA{30, 110, 30, 255}, color.RGBA{40, 140, 40, 255})
	// Round canopy: clear the corners so alpha testing cuts them away.
	for y := range 32 {
		for x := range 32 {
			dx, dy := float32(x)-15.5, float32(y)-15.5
			if dx*dx+dy*dy > 16*16 {
				img.SetRGBA(x, y, color.RGBA{})
			}
		}
	}
	return img
}

// onLoop reports whether a cell lies on the ring of track tiles.
func onLoop(cfg TrackConfig, col, row int) bool {
	lo, hiC, hiR := cfg.Inset, cfg.Cols-1-cfg.Inset, cfg.Rows-1-cfg.Inset
	if col < lo || col > hiC || row < lo || row > hiR {
		return false
	}
	return col == lo || col == hiC || row == lo || row == hiR
}

func groundLayers(cfg TrackConfig) [][]int {
	n := cfg.Cols * cfg.Rows
	ground := make([]int, n)
	decals := make([]int, n)
	for row := range cfg.Rows {
		for col := range cfg.Cols {
			i := row*cfg.Cols + col
			decals[i] = tilemap.Empty
			switch {
			case onLoop(cfg, col, row):
				ground[i] = TileAsphalt
			case col == 0 || row == 0 || col == cfg.Cols-1 || row == cfg.Rows-1:
				ground[i] = TileSand
			default:
				ground[i] = TileGrass
			}
		}
	}
	// Curbs at the four corners of the loop.
	lo, hiC, hiR := cfg.Inset, cfg.Cols-1-cfg.Inset, cfg.Rows-1-cfg.Inset
	for _, c := range [][2]int{{lo, lo}, {hiC, lo}, {hiC, hiR}, {lo, hiR}} {
		decals[c[1]*cfg.Cols+c[0]] = TileCurb
	}
	return [][]int{ground, decals}
}

type builder struct {
	up     Uploader
	cfg    TrackConfig
	worldH float32

	walls   []mesh.Static
	trees   []mesh.Tree
	statics []mesh.Static
}

// corners returns the loop corners in map pixels (origin top-left),
// clockwise on screen from the top-left.
func (b *builder) corners() [4]mgl32.Vec2 {
	ts := b.cfg.TileSizePx
	lo := (float32(b.cfg.Inset) + 0.5) * ts
	hiX := (float32(b.cfg.Cols-1-b.cfg.Inset) + 0.5) * ts
	hiY := (float32(b.cfg.Rows-1-b.cfg.Inset) + 0.5) * ts
	return [4]mgl32.Vec2{{lo, lo}, {hiX, lo}, {hiX, hiY}, {lo, hiY}}
}

// path returns the loop in world pixels.
func (b *builder) path() []mgl32.Vec2 {
	c := b.corners()
	out := make([]mgl32.Vec2, len(c))
	for i, p := range c {
		out[i] = convert.MapToWorld(p, b.worldH)
	}
	return out
}

func (b *builder) meshes() error {
	wall, err := b.up.UploadMesh(boxVertices(mgl32.Vec3{-1.5, -0.25, 0}, mgl32.Vec3{1.5, 0.25, 1}), boxIndices)
	if err != nil {
		return fmt.Errorf("uploading wall mesh: %w", err)
	}
	cone, err := b.up.UploadMesh(boxVertices(mgl32.Vec3{-0.3, -0.3, 0}, mgl32.Vec3{0.3, 0.3, 0.8}), boxIndices)
	if err != nil {
		return fmt.Errorf("uploading cone mesh: %w", err)
	}
	crate, err := b.up.UploadMesh(boxVertices(mgl32.Vec3{-1, -1, 0}, mgl32.Vec3{1, 1, 2}), boxIndices)
	if err != nil {
		return fmt.Errorf("uploading crate mesh: %w", err)
	}
	trunk, err := b.up.UploadMesh(boxVertices(mgl32.Vec3{-0.2, -0.2, 0}, mgl32.Vec3{0.2, 0.2, 2}), boxIndices)
	if err != nil {
		return fmt.Errorf("uploading trunk mesh: %w", err)
	}
	canopy, err := b.up.UploadMesh(canopyVertices(2, 2.5), canopyIndices)
	if err != nil {
		return fmt.Errorf("uploading canopy mesh: %w", err)
	}

	ts := b.cfg.TileSizePx
	half := ts * 0.5
	c := b.corners()

	// Walls run along the outer edge of each straight.
	for i := range c {
		from, to := c[i], c[(i+1)%len(c)]
		dir := to.Sub(from).Normalize()
		out := mgl32.Vec2{dir[1], -dir[0]} // outward for a clockwise loop on screen
		angle := mgl32.RadToDeg(float32(math.Atan2(float64(dir[1]), float64(dir[0]))))
		length := to.Sub(from).Len()
		for d := float32(0); d < length; d += b.cfg.WallEvery {
			p := from.Add(dir.Mul(d)).Add(out.Mul(half + 8))
			b.walls = append(b.walls, mesh.Static{
				Placement: mesh.Placement{
					PositionPx:    p,
					RotationAxis:  mgl32.Vec3{0, 0, 1},
					RotationAngle: -angle,
				},
				Mesh:        wall,
				Material:    materialWall,
				LocalBounds: cull.Box(mgl32.Vec3{-1.5, -0.25, 0}, mgl32.Vec3{1.5, 0.25, 1}),
			})
		}
	}

	// Cones at the inner apex of each corner, a crate stack past the start line.
	for _, p := range c {
		centre := mgl32.Vec2{float32(b.cfg.Cols) * ts / 2, float32(b.cfg.Rows) * ts / 2}
		inward := centre.Sub(p).Normalize()
		b.statics = append(b.statics, mesh.Static{
			Placement:   mesh.Placement{PositionPx: p.Add(inward.Mul(half + 16))},
			Mesh:        cone,
			Material:    materialCone,
			LocalBounds: cull.Box(mgl32.Vec3{-0.3, -0.3, 0}, mgl32.Vec3{0.3, 0.3, 0.8}),
		})
	}
	for i := range 3 {
		b.statics = append(b.statics, mesh.Static{
			Placement: mesh.Placement{
				PositionPx: c[0].Add(mgl32.Vec2{ts * float32(i+1), -half - 48}),
			},
			Mesh:        crate,
			Material:    materialCrate,
			LocalBounds: cull.Box(mgl32.Vec3{-1, -1, 0}, mgl32.Vec3{1, 1, 2}),
		})
	}

	// Trees on a jittered grid over the infield.
	in0 := mgl32.Vec2{float32(b.cfg.Inset+1) * ts, float32(b.cfg.Inset+1) * ts}
	in1 := mgl32.Vec2{float32(b.cfg.Cols-1-b.cfg.Inset) * ts, float32(b.cfg.Rows-1-b.cfg.Inset) * ts}
	size := in1.Sub(in0)
	perRow := max(1, int(float32(b.cfg.Trees)*size[0]/(size[0]+size[1])))
	for i := range b.cfg.Trees {
		col, row := i%perRow, i/perRow
		rows := (b.cfg.Trees + perRow - 1) / perRow
		fx := (float32(col) + 0.5 + jitter(i, 0)) / float32(perRow)
		fy := (float32(row) + 0.5 + jitter(i, 1)) / float32(rows)
		b.trees = append(b.trees, mesh.Tree{
			Placement: mesh.Placement{
				PositionPx: in0.Add(mgl32.Vec2{fx * size[0], fy * size[1]}),
				ScaleAxis:  mgl32.Vec3{1, 1, 1}.Mul(0.8 + 0.4*(jitter(i, 2)+0.3)),
			},
			Trunk:       trunk,
			Leaves:      canopy,
			Material:    materialLeaves,
			LocalBounds: cull.Box(mgl32.Vec3{-2, -2, 0}, mgl32.Vec3{2, 2, 2.5}),
		})
	}
	return nil
}

// jitter is a deterministic offset in [-0.3, 0.3).
func jitter(i, axis int) float32 {
	h := uint32(i*73856093) ^ uint32(axis*19349663)
	h ^= h >> 13
	h *= 0x5bd1e995
	h ^= h >> 15
	return float32(h%1000)/1000*0.6 - 0.3
}
