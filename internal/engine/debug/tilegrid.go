package debug

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/trackview/internal/engine/camera"
	"github.com/Faultbox/trackview/internal/engine/gfx"
	"github.com/Faultbox/trackview/internal/engine/tilemap"
)

// GridColor is the tile grid line colour.
var GridColor = mgl32.Vec4{0.5, 0.5, 0.5, 0.5}

// AppendGridLines appends the cell borders of win to dst as a line list in
// map pixels (y up, z 0).
func AppendGridLines(dst []float32, m *tilemap.Map, win tilemap.Window) []float32 {
	if win.Empty() {
		return dst
	}
	h := float32(m.Rows) * m.TileHeight
	top := h - float32(win.Row0)*m.TileHeight
	bottom := h - float32(win.Row1)*m.TileHeight
	left := float32(win.Col0) * m.TileWidth
	right := float32(win.Col1) * m.TileWidth

	// Vertical lines
	for c := win.Col0; c <= win.Col1; c++ {
		x := float32(c) * m.TileWidth
		dst = append(dst, x, bottom, 0, x, top, 0)
	}
	// Horizontal lines
	for r := win.Row0; r <= win.Row1; r++ {
		y := h - float32(r)*m.TileHeight
		dst = append(dst, left, y, 0, right, y, 0)
	}
	return dst
}

// TileGrid draws the borders of the visible tiles.
type TileGrid struct {
	program gfx.Program
	m       *tilemap.Map
	verts   []float32
}

// NewTileGrid returns a grid overlay for m.
func NewTileGrid(m *tilemap.Map, program gfx.Program) *TileGrid {
	return &TileGrid{program: program, m: m}
}

// Draw renders the grid for the part of the map view sees. It returns the
// number of lines drawn.
func (g *TileGrid) Draw(ctx gfx.Context, view camera.TileMapView) int {
	g.verts = AppendGridLines(g.verts[:0], g.m, g.m.VisibleWindow(view.Rect()))
	if len(g.verts) == 0 {
		return 0
	}
	ctx.UseProgram(g.program)
	ctx.SetMatrix(gfx.UniformMVP, view.Combined)
	ctx.SetBlend(gfx.BlendAlpha)
	ctx.SetColor(gfx.UniformColor, GridColor)
	ctx.DrawLines(g.verts)
	ctx.SetBlend(gfx.BlendOff)
	return len(g.verts) / 6
}
