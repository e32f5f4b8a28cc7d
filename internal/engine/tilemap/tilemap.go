// Package tilemap draws the background tile layers seen by the tile-map
// camera.
package tilemap

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/trackview/internal/engine/camera"
	"github.com/Faultbox/trackview/internal/engine/gfx"
)

// Empty marks a cell with no tile.
const Empty = -1

// Tileset is a texture atlas of equally sized tiles, row-major from the
// top-left.
type Tileset struct {
	Texture gfx.Texture
	Cols    int
	Rows    int
}

// uv returns (u0, v0, u1, v1) for tile id.
func (ts Tileset) uv(id int) [4]float32 {
	c, r := id%ts.Cols, id/ts.Cols
	du, dv := 1/float32(ts.Cols), 1/float32(ts.Rows)
	return [4]float32{float32(c) * du, float32(r) * dv, float32(c+1) * du, float32(r+1) * dv}
}

// Map is a layered tile grid. Layers[l][row*Cols+col] holds a tile id or
// Empty; row 0 is the top of the map.
type Map struct {
	TileWidth  float32
	TileHeight float32
	Cols       int
	Rows       int
	Layers     [][]int
	Tileset    Tileset
}

// Validate checks the map dimensions and layer sizes.
func (m *Map) Validate() error {
	if m.TileWidth <= 0 || m.TileHeight <= 0 {
		return fmt.Errorf("invalid tile size %vx%v", m.TileWidth, m.TileHeight)
	}
	if m.Cols <= 0 || m.Rows <= 0 {
		return fmt.Errorf("invalid map size %dx%d", m.Cols, m.Rows)
	}
	if m.Tileset.Cols <= 0 || m.Tileset.Rows <= 0 {
		return errors.New("tileset has no tiles")
	}
	limit := m.Tileset.Cols * m.Tileset.Rows
	for l, layer := range m.Layers {
		if len(layer) != m.Cols*m.Rows {
			return fmt.Errorf("layer %d has %d cells, expected %d", l, len(layer), m.Cols*m.Rows)
		}
		for i, id := range layer {
			if id != Empty && (id < 0 || id >= limit) {
				return fmt.Errorf("layer %d cell %d: tile %d outside tileset", l, i, id)
			}
		}
	}
	return nil
}

// SizePx returns the map size in pixels.
func (m *Map) SizePx() mgl32.Vec2 {
	return mgl32.Vec2{float32(m.Cols) * m.TileWidth, float32(m.Rows) * m.TileHeight}
}

// SizeTiles returns the map size in tiles.
func (m *Map) SizeTiles() (cols, rows int) {
	return m.Cols, m.Rows
}

// Window is a range of visible cells, end exclusive.
type Window struct {
	Col0, Col1 int
	Row0, Row1 int
}

// Empty reports whether the window covers no cells.
func (w Window) Empty() bool {
	return w.Col0 >= w.Col1 || w.Row0 >= w.Row1
}

// VisibleWindow returns the cells overlapping r, a rectangle in map pixels
// with y up, clamped to the map.
func (m *Map) VisibleWindow(r camera.Rect) Window {
	h := float32(m.Rows) * m.TileHeight
	w := Window{
		Col0: clampIndex(floor(r.X/m.TileWidth), m.Cols),
		Col1: clampIndex(ceil((r.X+r.W)/m.TileWidth), m.Cols),
		Row0: clampIndex(floor((h-(r.Y+r.H))/m.TileHeight), m.Rows),
		Row1: clampIndex(ceil((h-r.Y)/m.TileHeight), m.Rows),
	}
	return w
}

func floor(f float32) int { return int(math.Floor(float64(f))) }
func ceil(f float32) int  { return int(math.Ceil(float64(f))) }

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// Renderer draws a Map through the tile-map camera.
type Renderer struct {
	m       *Map
	program gfx.Program
	quads   []gfx.Quad
}

// NewRenderer validates m and returns a renderer using program.
func NewRenderer(m *Map, program gfx.Program) (*Renderer, error) {
	if m == nil {
		return nil, errors.New("nil tile map")
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("tile map: %w", err)
	}
	return &Renderer{m: m, program: program}, nil
}

// Render draws the visible part of every layer with blending and depth
// testing off. It issues one DrawQuads per non-empty layer and returns the
// number of tiles drawn.
func (r *Renderer) Render(ctx gfx.Context, view camera.TileMapView) int {
	ctx.SetBlend(gfx.BlendOff)
	ctx.SetDepth(gfx.DepthOff)
	ctx.SetCull(gfx.CullOff)

	win := r.m.VisibleWindow(view.Rect())
	if win.Empty() {
		return 0
	}

	ctx.UseProgram(r.program)
	ctx.SetMatrix(gfx.UniformMVP, view.Combined)
	ctx.BindTexture(r.m.Tileset.Texture)

	m := r.m
	h := float32(m.Rows) * m.TileHeight
	drawn := 0
	for _, layer := range m.Layers {
		r.quads = r.quads[:0]
		for row := win.Row0; row < win.Row1; row++ {
			y := h - float32(row+1)*m.TileHeight
			for col := win.Col0; col < win.Col1; col++ {
				id := layer[row*m.Cols+col]
				if id == Empty {
					continue
				}
				r.quads = append(r.quads, gfx.Quad{
					X: float32(col) * m.TileWidth, Y: y,
					W: m.TileWidth, H: m.TileHeight,
					UV: m.Tileset.uv(id),
				})
			}
		}
		if len(r.quads) > 0 {
			ctx.DrawQuads(r.quads)
			drawn += len(r.quads)
		}
	}
	ctx.UseProgram(gfx.NoProgram)
	return drawn
}
