//go:build !tinygo && cgo

package glpipe

import (
	"strings"

	"github.com/go-gl/gl/all-core/gl"
)

// NewGLAPI returns an [API] backed by the OpenGL context current on the
// calling thread. gl.Init must have run for that context.
func NewGLAPI() (API, error) {
	return glAPI{}, nil
}

type glAPI struct{}

func (glAPI) CreateStage(s Stage) uint32 {
	if s == FragmentStage {
		return gl.CreateShader(gl.FRAGMENT_SHADER)
	}
	return gl.CreateShader(gl.VERTEX_SHADER)
}

func (glAPI) CompileStage(id uint32, source string) {
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(id, 1, csources, nil)
	free()
	gl.CompileShader(id)
}

func (glAPI) StageOK(id uint32) bool {
	var status int32
	gl.GetShaderiv(id, gl.COMPILE_STATUS, &status)
	return status == gl.TRUE
}

func (glAPI) StageLog(id uint32) string {
	var n int32
	gl.GetShaderiv(id, gl.INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(n+1))
	gl.GetShaderInfoLog(id, n, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (glAPI) CreateProgram() uint32 { return gl.CreateProgram() }

func (glAPI) AttachStage(program, stage uint32) { gl.AttachShader(program, stage) }

func (glAPI) LinkProgram(program uint32) { gl.LinkProgram(program) }

func (glAPI) LinkOK(program uint32) bool {
	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	return status == gl.TRUE
}

func (glAPI) ProgramLog(program uint32) string {
	var n int32
	gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &n)
	if n <= 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(n+1))
	gl.GetProgramInfoLog(program, n, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (glAPI) DetachStage(program, stage uint32) { gl.DetachShader(program, stage) }

func (glAPI) DeleteStage(stage uint32) { gl.DeleteShader(stage) }

func (glAPI) BindTexture2D(tex uint32) { gl.BindTexture(gl.TEXTURE_2D, tex) }

func (glAPI) TexParameter(pname uint32, value int32) {
	gl.TexParameteri(gl.TEXTURE_2D, pname, value)
}

func (glAPI) TexImage2D(internal int32, width, height int32, layout, xtype uint32, data []float32) {
	gl.TexImage2D(gl.TEXTURE_2D, 0, internal, width, height, 0, layout, xtype, gl.Ptr(data))
}
