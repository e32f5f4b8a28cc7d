package gfx

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// Op identifies a recorded command.
type Op uint8

const (
	OpUseProgram Op = iota
	OpSetMatrix
	OpSetColor
	OpBindMaterial
	OpBindTexture
	OpSetDepth
	OpSetCull
	OpSetBlend
	OpDraw
	OpDrawQuads
	OpDrawLines
)

var opNames = [...]string{
	OpUseProgram:   "UseProgram",
	OpSetMatrix:    "SetMatrix",
	OpSetColor:     "SetColor",
	OpBindMaterial: "BindMaterial",
	OpBindTexture:  "BindTexture",
	OpSetDepth:     "SetDepth",
	OpSetCull:      "SetCull",
	OpSetBlend:     "SetBlend",
	OpDraw:         "Draw",
	OpDrawQuads:    "DrawQuads",
	OpDrawLines:    "DrawLines",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", o)
}

// State is the pipeline state a Recorder tracks between commands.
type State struct {
	Program  Program
	Material Material
	Texture  Texture
	Depth    DepthState
	Cull     CullState
	Blend    BlendState
	MVP      mgl32.Mat4
}

// Command is one recorded call plus the state in effect when it ran.
type Command struct {
	Op       Op
	Name     string
	Matrix   mgl32.Mat4
	Color    mgl32.Vec4
	Mesh     Mesh
	Quads    int
	Vertices int
	State    State
}

// Recorder is a Context and Compiler that records a command trace instead of
// talking to a GPU. Tests inspect the trace to verify state transitions.
type Recorder struct {
	Commands []Command

	// FailPrograms makes CompileProgram fail for the listed program names.
	FailPrograms map[string]error

	state    State
	programs map[string]Program
	next     Program
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{programs: make(map[string]Program)}
}

// CompileProgram hands out sequential program names.
func (r *Recorder) CompileProgram(name, vertexSrc, fragmentSrc string) (Program, error) {
	if err, ok := r.FailPrograms[name]; ok {
		return NoProgram, err
	}
	if vertexSrc == "" || fragmentSrc == "" {
		return NoProgram, fmt.Errorf("%s: empty shader source", name)
	}
	if r.programs == nil {
		r.programs = make(map[string]Program)
	}
	r.next++
	r.programs[name] = r.next
	return r.next, nil
}

// ProgramByName returns the program compiled under name.
func (r *Recorder) ProgramByName(name string) Program {
	return r.programs[name]
}

// State returns the current tracked state.
func (r *Recorder) State() State {
	return r.state
}

// Reset clears the trace but keeps compiled programs and state.
func (r *Recorder) Reset() {
	r.Commands = r.Commands[:0]
}

func (r *Recorder) record(c Command) {
	c.State = r.state
	r.Commands = append(r.Commands, c)
}

func (r *Recorder) UseProgram(p Program) {
	r.state.Program = p
	r.record(Command{Op: OpUseProgram})
}

func (r *Recorder) SetMatrix(name string, m mgl32.Mat4) {
	if name == UniformMVP {
		r.state.MVP = m
	}
	r.record(Command{Op: OpSetMatrix, Name: name, Matrix: m})
}

func (r *Recorder) SetColor(name string, c mgl32.Vec4) {
	r.record(Command{Op: OpSetColor, Name: name, Color: c})
}

func (r *Recorder) BindMaterial(m Material) {
	r.state.Material = m
	r.state.Texture = m.Texture
	r.record(Command{Op: OpBindMaterial})
}

func (r *Recorder) BindTexture(t Texture) {
	r.state.Texture = t
	r.record(Command{Op: OpBindTexture})
}

func (r *Recorder) SetDepth(s DepthState) {
	r.state.Depth = s
	r.record(Command{Op: OpSetDepth})
}

func (r *Recorder) SetCull(s CullState) {
	r.state.Cull = s
	r.record(Command{Op: OpSetCull})
}

func (r *Recorder) SetBlend(s BlendState) {
	r.state.Blend = s
	r.record(Command{Op: OpSetBlend})
}

func (r *Recorder) Draw(m Mesh) {
	r.record(Command{Op: OpDraw, Mesh: m})
}

func (r *Recorder) DrawQuads(quads []Quad) {
	r.record(Command{Op: OpDrawQuads, Quads: len(quads)})
}

func (r *Recorder) DrawLines(vertices []float32) {
	r.record(Command{Op: OpDrawLines, Vertices: len(vertices) / 3})
}

// Count returns how many commands of the given op were recorded.
func (r *Recorder) Count(op Op) int {
	n := 0
	for _, c := range r.Commands {
		if c.Op == op {
			n++
		}
	}
	return n
}

// Filter returns the recorded commands of the given op, in order.
func (r *Recorder) Filter(op Op) []Command {
	var out []Command
	for _, c := range r.Commands {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// FakeTarget is an in-memory Target that counts its calls.
type FakeTarget struct {
	Width, Height int32
	Texture       uint32

	Binds, Unbinds int
	Cleared        []mgl32.Vec4
	bound          bool
}

func (t *FakeTarget) Bind() {
	t.Binds++
	t.bound = true
}

func (t *FakeTarget) Unbind() {
	t.Unbinds++
	t.bound = false
}

func (t *FakeTarget) Clear(c mgl32.Vec4) {
	t.Cleared = append(t.Cleared, c)
}

func (t *FakeTarget) Size() (int32, int32) {
	return t.Width, t.Height
}

func (t *FakeTarget) ColorTexture() uint32 {
	return t.Texture
}

// Bound reports whether the target is currently bound.
func (t *FakeTarget) Bound() bool {
	return t.bound
}
