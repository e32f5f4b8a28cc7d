// Package shader compiles GLSL programs and caches their uniform locations.
package shader

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/trackview/internal/engine/gfx"
	"github.com/Faultbox/trackview/internal/logger"
)

// Compiler links programs on the current GL context. It implements
// gfx.Compiler.
type Compiler struct {
	names map[gfx.Program]string
}

// NewCompiler returns a compiler. A GL context must be current.
func NewCompiler() *Compiler {
	return &Compiler{names: make(map[gfx.Program]string)}
}

// CompileProgram compiles and links a vertex and fragment shader pair.
func (c *Compiler) CompileProgram(name, vertexSrc, fragmentSrc string) (gfx.Program, error) {
	vert, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return gfx.NoProgram, fmt.Errorf("%s: %w", name, err)
	}
	defer gl.DeleteShader(vert)

	frag, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return gfx.NoProgram, fmt.Errorf("%s: %w", name, err)
	}
	defer gl.DeleteShader(frag)

	program := gl.CreateProgram()
	gl.AttachShader(program, vert)
	gl.AttachShader(program, frag)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetProgramInfoLog(program, logLen, nil, &log[0])
		gl.DeleteProgram(program)
		return gfx.NoProgram, fmt.Errorf("%s: link: %s", name, string(log))
	}

	p := gfx.Program(program)
	c.names[p] = name
	logger.Debug("shader program linked", zap.String("name", name), zap.Uint32("program", program))
	return p, nil
}

// Name returns the name a program was compiled under.
func (c *Compiler) Name(p gfx.Program) string {
	return c.names[p]
}

// Destroy deletes every program this compiler linked.
func (c *Compiler) Destroy() {
	for p := range c.names {
		gl.DeleteProgram(uint32(p))
	}
	clear(c.names)
}

func compileShader(source string, shaderType uint32, stage string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLen int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLen)
		log := make([]byte, logLen+1)
		gl.GetShaderInfoLog(shader, logLen, nil, &log[0])
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%s shader: %s", stage, string(log))
	}
	return shader, nil
}

// Uniforms caches uniform locations per program. Missing uniforms are
// cached as -1, which GL ignores on upload.
type Uniforms struct {
	locs map[uniformKey]int32
}

type uniformKey struct {
	program gfx.Program
	name    string
}

// NewUniforms returns an empty cache.
func NewUniforms() *Uniforms {
	return &Uniforms{locs: make(map[uniformKey]int32)}
}

// Location returns the location of name in program, querying GL once.
func (u *Uniforms) Location(program gfx.Program, name string) int32 {
	k := uniformKey{program, name}
	if loc, ok := u.locs[k]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00"))
	if loc < 0 {
		logger.Debug("uniform not found", zap.String("name", name), zap.Uint32("program", uint32(program)))
	}
	u.locs[k] = loc
	return loc
}
