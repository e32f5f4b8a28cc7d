// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// MeshVertexShader is the vertex shader for walls and static meshes.
//
//go:embed mesh.vert
var MeshVertexShader string

// MeshFragmentShader is the fragment shader for walls and static meshes.
//
//go:embed mesh.frag
var MeshFragmentShader string

// TreeVertexShader is the vertex shader for trunks and foliage.
//
//go:embed tree.vert
var TreeVertexShader string

// TreeFragmentShader is the alpha-tested fragment shader for trunks and foliage.
//
//go:embed tree.frag
var TreeFragmentShader string

// TileVertexShader is the vertex shader for tile-map quads.
//
//go:embed tile.vert
var TileVertexShader string

// TileFragmentShader is the fragment shader for tile-map quads.
//
//go:embed tile.frag
var TileFragmentShader string

// BboxVertexShader is the vertex shader for bounding box rendering.
//
//go:embed bbox.vert
var BboxVertexShader string

// BboxFragmentShader is the fragment shader for bounding box rendering.
//
//go:embed bbox.frag
var BboxFragmentShader string

// LightVertexShader is the vertex shader for light-map splats.
//
//go:embed light.vert
var LightVertexShader string

// LightFragmentShader is the fragment shader for light-map splats.
//
//go:embed light.frag
var LightFragmentShader string

// Source is a named vertex and fragment pair.
type Source struct {
	Name     string
	Vertex   string
	Fragment string
}

// Core programs. Rendering cannot start without them.
var (
	Mesh  = Source{Name: "mesh", Vertex: MeshVertexShader, Fragment: MeshFragmentShader}
	Tree  = Source{Name: "tree", Vertex: TreeVertexShader, Fragment: TreeFragmentShader}
	Tile  = Source{Name: "tile", Vertex: TileVertexShader, Fragment: TileFragmentShader}
	Bbox  = Source{Name: "bbox", Vertex: BboxVertexShader, Fragment: BboxFragmentShader}
	Light = Source{Name: "light", Vertex: LightVertexShader, Fragment: LightFragmentShader}
)
