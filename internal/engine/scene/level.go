package scene

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/trackview/internal/engine/gfx"
	"github.com/Faultbox/trackview/internal/engine/mesh"
	"github.com/Faultbox/trackview/internal/engine/tilemap"
)

// ErrNoLevel is returned when a renderer is built without a level.
var ErrNoLevel = errors.New("scene: no level")

// Level is the content of a loaded track. The renderer borrows it for its
// whole lifetime and never writes to it.
//
// Mesh groups are drawn in slice order. Sorting a group by material at load
// time minimizes material binds.
type Level struct {
	Walls   []mesh.Static
	Trees   []mesh.Tree
	Statics []mesh.Static

	// TrunkTexture is shared by every tree trunk.
	TrunkTexture gfx.Texture

	// TileMap is the background. It may be nil.
	TileMap *tilemap.Map

	// SizePx overrides the world size. When zero the tile map size is used.
	SizePx mgl32.Vec2
}

// WorldSizePx returns the world size in pixels, or zero when unknown.
// A zero size disables camera clamping.
func (l *Level) WorldSizePx() mgl32.Vec2 {
	if l.SizePx != (mgl32.Vec2{}) {
		return l.SizePx
	}
	if l.TileMap != nil {
		return l.TileMap.SizePx()
	}
	return mgl32.Vec2{}
}

// WorldSizeTiles returns the world size in tiles, or zero without a tile map.
func (l *Level) WorldSizeTiles() (cols, rows int) {
	if l.TileMap == nil {
		return 0, 0
	}
	return l.TileMap.SizeTiles()
}

// MeshCount returns the total number of meshes in all groups.
func (l *Level) MeshCount() int {
	return len(l.Walls) + len(l.Trees) + len(l.Statics)
}
