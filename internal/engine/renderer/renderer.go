// Package renderer is the OpenGL implementation of gfx.Context.
package renderer

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/trackview/internal/engine/gfx"
	"github.com/Faultbox/trackview/internal/engine/shader"
	"github.com/Faultbox/trackview/internal/logger"
)

// Config holds renderer configuration.
type Config struct {
	Width      int
	Height     int
	ClearColor mgl32.Vec4
}

// Renderer applies gfx commands to the current GL context. It tracks bound
// state and skips redundant GL calls.
type Renderer struct {
	config   Config
	uniforms *shader.Uniforms
	program  gfx.Program
	texture  gfx.Texture

	// Streaming buffers for quads and lines.
	quadVAO, quadVBO uint32
	lineVAO, lineVBO uint32
	scratch          []float32

	meshes   []meshBuffers
	textures []uint32

	stats Stats
	log   *zap.Logger
}

type meshBuffers struct {
	vao, vbo, ebo uint32
}

// Stats counts GL work since the last Begin.
type Stats struct {
	DrawCalls     int
	TextureBinds  int
	ProgramSwaps  int
	UniformWrites int
}

// New initializes OpenGL and the streaming buffers.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}

	r := &Renderer{
		config:   cfg,
		uniforms: shader.NewUniforms(),
		log:      logger.Named("renderer"),
	}
	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	r.quadVAO, r.quadVBO = streamBuffer([]int32{2, 2})
	r.lineVAO, r.lineVBO = streamBuffer([]int32{3})

	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.Viewport(0, 0, int32(cfg.Width), int32(cfg.Height))
	return r, nil
}

// streamBuffer creates a VAO with one dynamic VBO and the given float
// attribute sizes, interleaved in order.
func streamBuffer(sizes []int32) (vao, vbo uint32) {
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)

	var stride int32
	for _, s := range sizes {
		stride += s * 4
	}
	var offset uintptr
	for i, s := range sizes {
		gl.VertexAttribPointerWithOffset(uint32(i), s, gl.FLOAT, false, stride, offset)
		gl.EnableVertexAttribArray(uint32(i))
		offset += uintptr(s * 4)
	}
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	return vao, vbo
}

// Close releases every buffer and texture the renderer created.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for _, m := range r.meshes {
		gl.DeleteVertexArrays(1, &m.vao)
		gl.DeleteBuffers(1, &m.vbo)
		if m.ebo != 0 {
			gl.DeleteBuffers(1, &m.ebo)
		}
	}
	r.meshes = nil
	if len(r.textures) > 0 {
		gl.DeleteTextures(int32(len(r.textures)), &r.textures[0])
		r.textures = nil
	}
	gl.DeleteVertexArrays(1, &r.quadVAO)
	gl.DeleteBuffers(1, &r.quadVBO)
	gl.DeleteVertexArrays(1, &r.lineVAO)
	gl.DeleteBuffers(1, &r.lineVBO)
}

// Resize handles window resize.
func (r *Renderer) Resize(width, height int) {
	r.config.Width = width
	r.config.Height = height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Begin clears the default framebuffer and resets the frame counters. The
// bind cache is dropped too, since render targets bind textures directly.
func (r *Renderer) Begin() {
	r.stats = Stats{}
	r.program, r.texture = gfx.NoProgram, 0
	gl.UseProgram(0)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(r.config.Width), int32(r.config.Height))
	c := r.config.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.DepthMask(true)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// End checks for GL errors raised during the frame.
func (r *Renderer) End() {
	if code := gl.GetError(); code != gl.NO_ERROR {
		r.log.Warn("GL error", zap.Uint32("code", code))
	}
}

// Stats returns the counters of the current frame.
func (r *Renderer) Stats() Stats {
	return r.stats
}

// ReadPixels reads the default framebuffer as bottom-up RGBA rows.
func (r *Renderer) ReadPixels() ([]byte, int, int) {
	w, h := r.config.Width, r.config.Height
	pixels := make([]byte, w*h*4)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.ReadPixels(0, 0, int32(w), int32(h), gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	return pixels, w, h
}

// UseProgram binds p unless it is already current.
func (r *Renderer) UseProgram(p gfx.Program) {
	if p == r.program {
		return
	}
	r.program = p
	r.stats.ProgramSwaps++
	gl.UseProgram(uint32(p))
}

// SetMatrix writes a mat4 uniform on the current program.
func (r *Renderer) SetMatrix(name string, m mgl32.Mat4) {
	if r.program == gfx.NoProgram {
		return
	}
	r.stats.UniformWrites++
	gl.UniformMatrix4fv(r.uniforms.Location(r.program, name), 1, false, &m[0])
}

// SetColor writes a vec4 uniform on the current program.
func (r *Renderer) SetColor(name string, c mgl32.Vec4) {
	if r.program == gfx.NoProgram {
		return
	}
	r.stats.UniformWrites++
	gl.Uniform4fv(r.uniforms.Location(r.program, name), 1, &c[0])
}

// BindMaterial binds the material texture to unit 0.
func (r *Renderer) BindMaterial(m gfx.Material) {
	r.BindTexture(m.Texture)
}

// BindTexture binds t to unit 0 unless it is already bound.
func (r *Renderer) BindTexture(t gfx.Texture) {
	if t == r.texture {
		return
	}
	r.texture = t
	r.stats.TextureBinds++
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

// SetDepth applies depth test, compare func and write mask.
func (r *Renderer) SetDepth(s gfx.DepthState) {
	if s.Test {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthFunc(depthFunc(s.Func))
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
	gl.DepthMask(s.Write)
}

// SetCull applies face culling and winding.
func (r *Renderer) SetCull(s gfx.CullState) {
	if !s.Enabled {
		gl.Disable(gl.CULL_FACE)
		return
	}
	gl.Enable(gl.CULL_FACE)
	if s.Face == gfx.FaceFront {
		gl.CullFace(gl.FRONT)
	} else {
		gl.CullFace(gl.BACK)
	}
	if s.Front == gfx.CW {
		gl.FrontFace(gl.CW)
	} else {
		gl.FrontFace(gl.CCW)
	}
}

// SetBlend applies the blend factors and equation.
func (r *Renderer) SetBlend(s gfx.BlendState) {
	if !s.Enabled {
		gl.Disable(gl.BLEND)
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendFunc(blendFactor(s.Src), blendFactor(s.Dst))
	if s.Equation == gfx.FuncSubtract {
		gl.BlendEquation(gl.FUNC_SUBTRACT)
	} else {
		gl.BlendEquation(gl.FUNC_ADD)
	}
}

// Draw issues one draw call for an uploaded mesh. Invalid meshes are skipped.
func (r *Renderer) Draw(m gfx.Mesh) {
	if !m.Valid() {
		return
	}
	r.stats.DrawCalls++
	gl.BindVertexArray(m.VAO)
	if m.Indexed {
		gl.DrawElementsWithOffset(primitive(m.Primitive), m.Count, gl.UNSIGNED_INT, 0)
	} else {
		gl.DrawArrays(primitive(m.Primitive), 0, m.Count)
	}
	gl.BindVertexArray(0)
}

// DrawQuads expands quads into two triangles each. V0 maps to the top edge.
func (r *Renderer) DrawQuads(quads []gfx.Quad) {
	if len(quads) == 0 {
		return
	}
	v := r.scratch[:0]
	for _, q := range quads {
		x0, y0, x1, y1 := q.X, q.Y, q.X+q.W, q.Y+q.H
		u0, v0, u1, v1 := q.UV[0], q.UV[1], q.UV[2], q.UV[3]
		v = append(v,
			x0, y0, u0, v1,
			x1, y0, u1, v1,
			x1, y1, u1, v0,
			x0, y0, u0, v1,
			x1, y1, u1, v0,
			x0, y1, u0, v0,
		)
	}
	r.scratch = v
	r.stream(r.quadVAO, r.quadVBO, v, gl.TRIANGLES, int32(len(quads)*6))
}

// DrawLines streams xyz vertex pairs as GL_LINES.
func (r *Renderer) DrawLines(vertices []float32) {
	if len(vertices) < 6 {
		return
	}
	r.stream(r.lineVAO, r.lineVBO, vertices, gl.LINES, int32(len(vertices)/3))
}

func (r *Renderer) stream(vao, vbo uint32, data []float32, mode uint32, count int32) {
	r.stats.DrawCalls++
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STREAM_DRAW)
	gl.DrawArrays(mode, 0, count)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	gl.BindVertexArray(0)
}

// UploadMesh uploads interleaved position (xyz) and texcoord (uv) vertices.
// indices may be nil for a non-indexed mesh.
func (r *Renderer) UploadMesh(vertices []float32, indices []uint32) (gfx.Mesh, error) {
	if len(vertices) == 0 || len(vertices)%5 != 0 {
		return gfx.Mesh{}, fmt.Errorf("vertex data length %d is not a multiple of 5", len(vertices))
	}
	var b meshBuffers
	gl.GenVertexArrays(1, &b.vao)
	gl.BindVertexArray(b.vao)

	gl.GenBuffers(1, &b.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 5*4, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, 5*4, 3*4)
	gl.EnableVertexAttribArray(1)

	m := gfx.Mesh{VAO: b.vao, Count: int32(len(vertices) / 5)}
	if len(indices) > 0 {
		gl.GenBuffers(1, &b.ebo)
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, b.ebo)
		gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(indices)*4, gl.Ptr(indices), gl.STATIC_DRAW)
		m.Indexed = true
		m.Count = int32(len(indices))
	}

	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
	r.meshes = append(r.meshes, b)
	return m, nil
}

// UploadTexture uploads img with linear filtering and clamped edges.
func (r *Renderer) UploadTexture(img *image.RGBA) gfx.Texture {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	b := img.Bounds()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(img.Pix))
	gl.BindTexture(gl.TEXTURE_2D, uint32(r.texture))
	r.textures = append(r.textures, id)
	return gfx.Texture(id)
}

func depthFunc(f gfx.DepthFunc) uint32 {
	switch f {
	case gfx.DepthLessEqual:
		return gl.LEQUAL
	case gfx.DepthAlways:
		return gl.ALWAYS
	}
	return gl.LESS
}

func blendFactor(f gfx.BlendFactor) uint32 {
	switch f {
	case gfx.Zero:
		return gl.ZERO
	case gfx.SrcAlpha:
		return gl.SRC_ALPHA
	case gfx.OneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	case gfx.DstColor:
		return gl.DST_COLOR
	}
	return gl.ONE
}

func primitive(p gfx.Primitive) uint32 {
	switch p {
	case gfx.TriangleStrip:
		return gl.TRIANGLE_STRIP
	case gfx.Lines:
		return gl.LINES
	}
	return gl.TRIANGLES
}
