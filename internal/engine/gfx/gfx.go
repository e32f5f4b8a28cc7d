// Package gfx defines the render context: a small typed command set through
// which every render pass changes GPU state, so transitions are explicit in
// the interface rather than hidden in ambient GL calls.
package gfx

import "github.com/go-gl/mathgl/mgl32"

// Program is a linked shader program name. NoProgram unbinds.
type Program uint32

// NoProgram is the zero program.
const NoProgram Program = 0

// Texture is a texture name.
type Texture uint32

// Material is the per-mesh surface state. Two materials are equal when all
// fields match; the batch renderer relies on this for rebind elision.
type Material struct {
	ID      uint32
	Texture Texture
}

// NoMaterial unbinds any material.
var NoMaterial = Material{}

// Primitive is the topology of a mesh.
type Primitive uint8

const (
	Triangles Primitive = iota
	TriangleStrip
	Lines
)

// Mesh is an uploaded vertex array.
type Mesh struct {
	VAO       uint32
	Count     int32
	Indexed   bool
	Primitive Primitive
}

// Valid reports whether the mesh can be drawn.
func (m Mesh) Valid() bool {
	return m.VAO != 0 && m.Count > 0
}

// DepthFunc is the depth comparison function.
type DepthFunc uint8

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
	DepthAlways
)

// DepthState configures the depth test.
type DepthState struct {
	Test  bool
	Write bool
	Func  DepthFunc
}

// Face selects which faces are culled.
type Face uint8

const (
	FaceBack Face = iota
	FaceFront
)

// Winding is the front-face winding order.
type Winding uint8

const (
	CCW Winding = iota
	CW
)

// CullState configures face culling.
type CullState struct {
	Enabled bool
	Face    Face
	Front   Winding
}

// BlendFactor is a blend function factor.
type BlendFactor uint8

const (
	One BlendFactor = iota
	Zero
	SrcAlpha
	OneMinusSrcAlpha
	DstColor
)

// BlendEquation is the blend combine equation.
type BlendEquation uint8

const (
	FuncAdd BlendEquation = iota
	FuncSubtract
)

// BlendState configures blending.
type BlendState struct {
	Enabled  bool
	Src      BlendFactor
	Dst      BlendFactor
	Equation BlendEquation
}

// Common states.
var (
	DepthOff      = DepthState{}
	DepthOpaque   = DepthState{Test: true, Write: true, Func: DepthLess}
	CullOff       = CullState{}
	CullBack      = CullState{Enabled: true, Face: FaceBack, Front: CCW}
	BlendOff      = BlendState{}
	BlendAlpha    = BlendState{Enabled: true, Src: SrcAlpha, Dst: OneMinusSrcAlpha, Equation: FuncAdd}
	BlendAdditive = BlendState{Enabled: true, Src: One, Dst: One, Equation: FuncAdd}
	BlendMultiply = BlendState{Enabled: true, Src: DstColor, Dst: Zero, Equation: FuncAdd}
	ColorOpaque   = mgl32.Vec4{1, 1, 1, 1}
)

// Uniform names shared by every core program.
const (
	UniformMVP   = "uMVP"
	UniformColor = "uColor"
)

// Quad is one textured rectangle in the current program's space.
// UV holds (u0, v0, u1, v1).
type Quad struct {
	X, Y, W, H float32
	UV         [4]float32
}

// Target is an offscreen render target, such as the light map.
type Target interface {
	Bind()
	Unbind()
	Clear(c mgl32.Vec4)
	Size() (int32, int32)
	ColorTexture() uint32
}

// Context is the render command sink. Implementations must apply commands in
// order; there is no other channel to the GPU.
type Context interface {
	UseProgram(p Program)
	SetMatrix(name string, m mgl32.Mat4)
	SetColor(name string, c mgl32.Vec4)
	BindMaterial(m Material)
	BindTexture(t Texture)
	SetDepth(s DepthState)
	SetCull(s CullState)
	SetBlend(s BlendState)
	Draw(m Mesh)
	DrawQuads(quads []Quad)
	// DrawLines draws a line list; vertices are packed xyz triples.
	DrawLines(vertices []float32)
}

// Compiler links shader programs. Failures are fatal for core programs.
type Compiler interface {
	CompileProgram(name, vertexSrc, fragmentSrc string) (Program, error)
}
