package glpipe

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// Stage designates a programmable pipeline stage.
type Stage uint32

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	}
	return "unknown"
}

// API is the capability surface the builder needs from the GL driver. The
// real implementation is [NewGLAPI] and requires a current GL context on the
// calling thread; tests substitute a software mock so builder and uploader
// logic runs without a GPU. Texture methods operate on the texture bound by
// the latest BindTexture2D call, mirroring the context-global binding state
// of the driver.
type API interface {
	CreateStage(s Stage) uint32
	CompileStage(id uint32, source string)
	StageOK(id uint32) bool
	StageLog(id uint32) string
	CreateProgram() uint32
	AttachStage(program, stage uint32)
	LinkProgram(program uint32)
	LinkOK(program uint32) bool
	ProgramLog(program uint32) string
	DetachStage(program, stage uint32)
	DeleteStage(stage uint32)
	BindTexture2D(tex uint32)
	TexParameter(pname uint32, value int32)
	TexImage2D(internal int32, width, height int32, layout, xtype uint32, data []float32)
}

// GL enums issued through [API]. Values are from the GL spec so the policy
// logic stays testable without cgo and so callers can pass driver constants
// straight through.
const (
	FormatRGB    = 0x1907
	FormatRGBA   = 0x1908
	FormatRed    = 0x1903
	FormatRGB32F = 0x8815
	TypeFloat    = 0x1406

	texBaseLevel = 0x813C
	texMaxLevel  = 0x813D
	texMagFilter = 0x2800
	texMinFilter = 0x2801
	texWrapS     = 0x2802
	texWrapT     = 0x2803
	nearest      = 0x2600
	clampToEdge  = 0x812F
)

// TextureFormat describes a texture upload: the GPU-side storage format, the
// channel layout of the source buffer and its element numeric type.
type TextureFormat struct {
	Internal int32
	Layout   uint32
	Type     uint32
}

// DefaultTextureFormat is 3-channel floating point RGB, the format of
// transform and palette lookup textures.
func DefaultTextureFormat() TextureFormat {
	return TextureFormat{Internal: FormatRGB, Layout: FormatRGB, Type: TypeFloat}
}

var (
	errNilAPI        = errors.New("nil API")
	errBadDims       = errors.New("texture dimensions must be positive")
	errShortBuffer   = errors.New("texture buffer shorter than width*height*channels")
	errUnknownLayout = errors.New("unknown channel layout")
)

// Builder builds shader programs and uploads lookup textures through an
// [API]. Compile and link failures are not errors: their info logs go to the
// diagnostics writer and the caller keeps the returned handle, since a
// broken shader during interactive development should show up as text and a
// black screen, not a dead process.
type Builder struct {
	api  API
	diag io.Writer
}

// NewBuilder returns a Builder issuing calls through api. Diagnostics are
// written to diagnostics, or to os.Stderr when nil.
func NewBuilder(api API, diagnostics io.Writer) (*Builder, error) {
	if api == nil {
		return nil, errNilAPI
	}
	if diagnostics == nil {
		diagnostics = os.Stderr
	}
	return &Builder{api: api, diag: diagnostics}, nil
}

// BuildProgram compiles the vertex/fragment pair and links it into a
// program, returning the program handle unconditionally. Every non-empty
// stage or link info log is emitted in full to the diagnostics writer, also
// on success: drivers report non-fatal warnings through the same channel.
// The intermediate stage objects are detached and deleted before returning;
// only the program handle persists.
func (b *Builder) BuildProgram(vertexSrc, fragmentSrc string) uint32 {
	vert := b.compileStage(VertexStage, vertexSrc)
	frag := b.compileStage(FragmentStage, fragmentSrc)

	program := b.api.CreateProgram()
	b.api.AttachStage(program, vert)
	b.api.AttachStage(program, frag)
	b.api.LinkProgram(program)
	if log := b.api.ProgramLog(program); log != "" {
		fmt.Fprintf(b.diag, "program link: %s\n", log)
	}

	b.api.DetachStage(program, vert)
	b.api.DetachStage(program, frag)
	b.api.DeleteStage(vert)
	b.api.DeleteStage(frag)
	return program
}

func (b *Builder) compileStage(s Stage, source string) uint32 {
	id := b.api.CreateStage(s)
	b.api.CompileStage(id, source)
	if log := b.api.StageLog(id); log != "" {
		fmt.Fprintf(b.diag, "%s stage: %s\n", s, log)
	}
	return id
}

// LoadTexture configures the pre-generated texture tex for lookup-table use
// and uploads data interpreted as width x height texels in format f. Lookup
// tables hold encoded values, not pictures, so sampling is pinned to
// nearest-neighbor filtering, clamp-to-edge addressing on both axes and a
// single mipmap level (without the level pinning the texture would be
// mipmap-incomplete and sample black).
//
// The currently bound texture of the context changes as a side effect;
// callers must not rely on a previous binding surviving this call.
func (b *Builder) LoadTexture(data []float32, width, height int, tex uint32, f TextureFormat) error {
	if width <= 0 || height <= 0 {
		return errBadDims
	}
	channels, err := channelsPerTexel(f.Layout)
	if err != nil {
		return err
	}
	if len(data) < width*height*channels {
		return errShortBuffer
	}
	b.api.BindTexture2D(tex)

	b.api.TexParameter(texMaxLevel, 0)
	b.api.TexParameter(texBaseLevel, 0)

	b.api.TexParameter(texMagFilter, nearest)
	b.api.TexParameter(texMinFilter, nearest)

	b.api.TexParameter(texWrapS, clampToEdge)
	b.api.TexParameter(texWrapT, clampToEdge)

	b.api.TexImage2D(f.Internal, int32(width), int32(height), f.Layout, f.Type, data)
	return nil
}

func channelsPerTexel(layout uint32) (int, error) {
	switch layout {
	case FormatRGBA:
		return 4, nil
	case FormatRGB:
		return 3, nil
	case FormatRed:
		return 1, nil
	}
	return 0, errUnknownLayout
}
