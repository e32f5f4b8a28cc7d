package lighting

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/trackview/internal/engine/gfx"
	"github.com/Faultbox/trackview/internal/engine/shaders"
)

// DefaultAmbient is the light map clear colour: dim night light.
var DefaultAmbient = mgl32.Vec4{0.1, 0.1, 0.15, 1}

type splat struct {
	quad  gfx.Quad
	color mgl32.Vec4
}

// LightMap is a System that splats point and cone lights into a target with
// additive blending over an ambient clear.
type LightMap struct {
	Ambient mgl32.Vec4

	ctx      gfx.Context
	compiler gfx.Compiler
	program  gfx.Program

	points []*PointLight
	cones  []*ConeLight

	mvp     mgl32.Mat4
	view    [4]float32 // min x, min y, max x, max y
	visible []splat
	quads   []splat
	scratch [1]gfx.Quad
	ready   bool
}

// NewLightMap returns a light map that draws through ctx. Init compiles its
// program with compiler.
func NewLightMap(ctx gfx.Context, compiler gfx.Compiler) *LightMap {
	return &LightMap{
		Ambient:  DefaultAmbient,
		ctx:      ctx,
		compiler: compiler,
		visible:  make([]splat, 0, MaxLights),
		quads:    make([]splat, 0, MaxLights),
	}
}

// Init compiles the light program.
func (m *LightMap) Init() error {
	if m.ctx == nil || m.compiler == nil {
		return errors.New("light map needs a render context and compiler")
	}
	p, err := m.compiler.CompileProgram(shaders.Light.Name, shaders.Light.Vertex, shaders.Light.Fragment)
	if err != nil {
		return fmt.Errorf("compiling light program: %w", err)
	}
	m.program = p
	return nil
}

// AddPointLight registers a point light and returns it for later updates.
func (m *LightMap) AddPointLight(l PointLight) *PointLight {
	l.Color = clampColor(l.Color)
	p := &l
	m.points = append(m.points, p)
	return p
}

// AddConeLight registers a cone light.
func (m *LightMap) AddConeLight(c *ConeLight) {
	m.cones = append(m.cones, c)
}

// SetCombinedMatrix stores the meter-based camera transform. x and y are the
// view centre.
func (m *LightMap) SetCombinedMatrix(mvp mgl32.Mat4, x, y, viewportWidth, viewportHeight float32) {
	m.mvp = mvp
	hw, hh := viewportWidth/2, viewportHeight/2
	m.view = [4]float32{x - hw, y - hh, x + hw, y + hh}
}

// Update collects the active lights that reach into the view.
func (m *LightMap) Update() error {
	if m.program == gfx.NoProgram {
		return ErrUnavailable
	}
	m.visible = m.visible[:0]
	for _, l := range m.points {
		if l.Active {
			centre, r := l.splat()
			m.collect(centre, r, l.Color)
		}
	}
	for _, c := range m.cones {
		if c.Active {
			centre, r := c.splat()
			m.collect(centre, r, c.Color)
		}
	}
	return nil
}

func (m *LightMap) collect(centre mgl32.Vec2, radius float32, color mgl32.Vec4) {
	if len(m.visible) >= MaxLights || radius <= 0 {
		return
	}
	if centre[0]+radius < m.view[0] || centre[0]-radius > m.view[2] ||
		centre[1]+radius < m.view[1] || centre[1]-radius > m.view[3] {
		return
	}
	m.visible = append(m.visible, splat{
		quad: gfx.Quad{
			X: centre[0] - radius, Y: centre[1] - radius,
			W: 2 * radius, H: 2 * radius,
			UV: [4]float32{0, 0, 1, 1},
		},
		color: color,
	})
}

// UpdateLightMap freezes the collected lights for the next render.
func (m *LightMap) UpdateLightMap() error {
	if m.program == gfx.NoProgram {
		return ErrUnavailable
	}
	m.quads = append(m.quads[:0], m.visible...)
	m.ready = true
	return nil
}

// RenderedLastFrame returns how many lights the last UpdateLightMap kept.
func (m *LightMap) RenderedLastFrame() int {
	return len(m.quads)
}

// RenderLightMap clears target to the ambient colour and adds every light.
func (m *LightMap) RenderLightMap(target gfx.Target) error {
	if target == nil {
		return errors.New("nil light map target")
	}
	if !m.ready {
		return ErrUnavailable
	}

	target.Bind()
	defer target.Unbind()
	target.Clear(m.Ambient)

	m.ctx.UseProgram(m.program)
	m.ctx.SetMatrix(gfx.UniformMVP, m.mvp)
	m.ctx.SetDepth(gfx.DepthOff)
	m.ctx.SetCull(gfx.CullOff)
	m.ctx.SetBlend(gfx.BlendAdditive)
	for i := range m.quads {
		m.ctx.SetColor(gfx.UniformColor, m.quads[i].color)
		m.scratch[0] = m.quads[i].quad
		m.ctx.DrawQuads(m.scratch[:])
	}
	m.ctx.SetBlend(gfx.BlendOff)
	m.ctx.UseProgram(gfx.NoProgram)
	return nil
}
