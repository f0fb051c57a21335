package vizaux

import (
	"context"
	"image"
	"io"

	"github.com/cloudgl/cloudgl"
	"github.com/soypat/geometry/ms3"
	"golang.org/x/image/draw"
)

// Config configures the auxiliary viewer window.
type Config struct {
	Title         string
	Width, Height int
	// Mono false-colors point keys through Palette instead of using their RGB.
	Mono    bool
	Palette cloudgl.Palette
	// Diagnostics receives shader build logs. Defaults to os.Stderr.
	Diagnostics io.Writer
	// Context cancels the render loop when done.
	Context context.Context
}

// Scene is the drawable content handed to [Show]. Nil members are skipped.
type Scene struct {
	Cloud   *Cloud
	Rings   *Rings
	Cuboids []Cuboid
	Image   *ImagePanel
}

// Cloud holds the per-point buffers consumed by the point program, laid out
// exactly as its vertex attributes: 3 floats per point for XYZ and Offset,
// 1 for Range and TransIndex, 4 for Key and Mask.
type Cloud struct {
	XYZ        []float32
	Offset     []float32
	Range      []float32
	TransIndex []float32
	Key        []float32
	Mask       []float32
	// Poses become the packed transform texture selected by TransIndex.
	Poses []cloudgl.Pose
	// Model is the sensor extrinsic calibration.
	Model cloudgl.Pose
}

// Points returns the number of points, bounded by the shortest buffer.
func (c *Cloud) Points() int {
	n := len(c.XYZ) / 3
	if m := len(c.Offset) / 3; m < n {
		n = m
	}
	for _, buf := range [][]float32{c.Range, c.TransIndex} {
		if len(buf) < n {
			n = len(buf)
		}
	}
	for _, buf := range [][]float32{c.Key, c.Mask} {
		if len(buf)/4 < n {
			n = len(buf) / 4
		}
	}
	return n
}

// Rings draws concentric range rings on the ground plane every Spacing
// world units with lines Thickness pixels wide.
type Rings struct {
	Spacing   float32
	Thickness float32
}

// Cuboid is an oriented box drawn in a flat translucent color.
type Cuboid struct {
	Pose  cloudgl.Pose
	Scale ms3.Vec
	RGBA  cloudgl.RGBA
}

// ImagePanel is a 2D overlay drawn in normalized device coordinates by the
// image program. Data is a 1-channel intensity buffer; Mask, when non-nil,
// is a 4-channel RGBA buffer of the same dimensions composited on top.
type ImagePanel struct {
	Data          []float32
	Mask          []float32
	Width, Height int
	// X0, Y0, X1, Y1 are the panel corners in NDC.
	X0, Y0, X1, Y1 float32
	UsePalette     bool
}

// unit cube corner k has coordinate bits (x,y,z) = (k&1, k>>1&1, k>>2&1)
// remapped to -0.5/+0.5.
var cuboidEdges = [24]int{
	0, 1, 1, 3, 3, 2, 2, 0,
	4, 5, 5, 7, 7, 6, 6, 4,
	0, 4, 1, 5, 3, 7, 2, 6,
}

var cuboidTriangles = [36]int{
	0, 2, 1, 1, 2, 3, // -z
	4, 5, 6, 5, 7, 6, // +z
	0, 1, 4, 1, 5, 4, // -y
	2, 6, 3, 3, 6, 7, // +y
	0, 4, 2, 2, 4, 6, // -x
	1, 3, 5, 3, 7, 5, // +x
}

func (c Cuboid) corner(k int) ms3.Vec {
	p := ms3.Vec{X: float32(k&1) - 0.5, Y: float32(k>>1&1) - 0.5, Z: float32(k>>2&1) - 0.5}
	return c.Pose.Transform(ms3.MulElem(p, c.Scale))
}

// AppendEdges appends the 24 world-space line vertices of the cuboid's 12
// edges to dst for drawing with line primitives.
func (c Cuboid) AppendEdges(dst []float32) []float32 {
	for _, k := range cuboidEdges {
		v := c.corner(k)
		dst = append(dst, v.X, v.Y, v.Z)
	}
	return dst
}

// AppendTriangles appends the 36 world-space vertices of the cuboid's 12
// faces triangles to dst.
func (c Cuboid) AppendTriangles(dst []float32) []float32 {
	for _, k := range cuboidTriangles {
		v := c.corner(k)
		dst = append(dst, v.X, v.Y, v.Z)
	}
	return dst
}

// GroundQuad returns the two ground-plane triangles spanning
// [-halfSize,halfSize] in x and y fed to the ring program.
func GroundQuad(halfSize float32) []float32 {
	s := halfSize
	return []float32{
		-s, -s, 0, s, -s, 0, -s, s, 0,
		-s, s, 0, s, -s, 0, s, s, 0,
	}
}

// ImageQuad returns the position and UV buffers of a screen-space quad with
// corners (x0,y0) and (x1,y1) in NDC for the image program.
func ImageQuad(x0, y0, x1, y1 float32) (pos, uv []float32) {
	pos = []float32{
		x0, y0, x1, y0, x0, y1,
		x0, y1, x1, y0, x1, y1,
	}
	uv = []float32{
		0, 1, 1, 1, 0, 0,
		0, 0, 1, 1, 1, 0,
	}
	return pos, uv
}

// ImageToGray scales img to width x height and returns it as the 1-channel
// float intensity buffer the image program samples through its red channel.
func ImageToGray(img image.Image, width, height int) []float32 {
	rgba := scaleRGBA(img, width, height)
	out := make([]float32, 0, width*height)
	for i := 0; i < len(rgba.Pix); i += 4 {
		r := float32(rgba.Pix[i])
		g := float32(rgba.Pix[i+1])
		b := float32(rgba.Pix[i+2])
		out = append(out, (0.299*r+0.587*g+0.114*b)/255)
	}
	return out
}

// ImageToRGBA scales img to width x height and returns it as a 4-channel
// float buffer, suitable as a mask texture.
func ImageToRGBA(img image.Image, width, height int) []float32 {
	rgba := scaleRGBA(img, width, height)
	out := make([]float32, 0, 4*width*height)
	for _, p := range rgba.Pix {
		out = append(out, float32(p)/255)
	}
	return out
}

func scaleRGBA(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
