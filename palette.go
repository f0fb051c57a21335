package cloudgl

import (
	"errors"
	"image/color"

	"github.com/chewxy/math32"
	"github.com/soypat/glgl/math/ms1"
)

// Palette is a single-row RGB lookup texture mapping a scalar key in [0,1]
// to a false color. It is sampled by the point and image fragment stages in
// mono mode and uploaded like any other lookup texture, so entries must be
// read back with nearest filtering to preserve the encoded colors.
type Palette struct {
	data []float32
}

var errPaletteArgs = errors.New("palette needs at least 2 entries and 2 color stops")

// NewPalette builds an n-entry palette running through stops, evenly spaced
// and interpolated in HSV space so gradients pass through vivid hues rather
// than through grey.
func NewPalette(n int, stops ...color.Color) (Palette, error) {
	if n < 2 || len(stops) < 2 {
		return Palette{}, errPaletteArgs
	}
	segs := len(stops) - 1
	data := make([]float32, 0, 3*n)
	for i := 0; i < n; i++ {
		f := float32(i) / float32(n-1) * float32(segs)
		si := clampi(int(f), 0, segs-1)
		h0, s0, v0 := colorToHSV(stops[si])
		h1, s1, v1 := colorToHSV(stops[si+1])
		h, s, v := interpHSV(h0, s0, v0, h1, s1, v1, ms1.Clamp(f-float32(si), 0, 1))
		r, g, b := hsvToRGB(h, s, v)
		data = append(data, r, g, b)
	}
	return Palette{data: data}, nil
}

// Greyscale returns an n-entry linear grey ramp.
func Greyscale(n int) Palette {
	if n < 2 {
		n = 2
	}
	data := make([]float32, 0, 3*n)
	for i := 0; i < n; i++ {
		g := float32(i) / float32(n-1)
		data = append(data, g, g, g)
	}
	return Palette{data: data}
}

// Heat returns an n-entry black-red-yellow-white ramp, a reasonable default
// for false-coloring lidar intensity.
func Heat(n int) Palette {
	if n < 2 {
		n = 2
	}
	p, _ := NewPalette(n, color.Black,
		color.RGBA{R: 255, A: 255},
		color.RGBA{R: 255, G: 255, A: 255},
		color.White)
	return p
}

// Len returns the number of palette entries, which is the width in texels of
// the uploaded texture (height is 1).
func (p Palette) Len() int { return len(p.data) / 3 }

// RawData returns the texel buffer to hand to the texture uploader.
func (p Palette) RawData() []float32 { return p.data }

// Sample looks up key k with the nearest/clamped semantics of the GPU
// sampler. Keys outside [0,1] clamp to the first or last entry.
func (p Palette) Sample(k float32) (r, g, b float32) {
	n := p.Len()
	i := 3 * clampi(int(k*float32(n)), 0, n-1)
	return p.data[i], p.data[i+1], p.data[i+2]
}

func colorToHSV(c color.Color) (h, s, v float32) {
	r0, g0, b0, _ := c.RGBA()
	return rgbToHSV(float32(r0)/0xffff, float32(g0)/0xffff, float32(b0)/0xffff)
}

func rgbToHSV(r, g, b float32) (h, s, v float32) {
	hi := max(r, g, b)
	c := hi - min(r, g, b)
	v = hi
	switch {
	case c == 0:
	case hi == r:
		h = (g - b) / (c * 6)
	case hi == g:
		h = 1.0/3 + (b-r)/(c*6)
	default:
		h = 2.0/3 + (r-g)/(c*6)
	}
	if h < 0 {
		h++
	}
	if hi > 0 {
		s = c / hi
	}
	return h, s, v
}

func interpHSV(h0, s0, v0, h1, s1, v1, t float32) (h, s, v float32) {
	// Take the short way around the hue circle.
	if h1-h0 > 0.5 {
		h0++
	} else if h1-h0 < -0.5 {
		h1++
	}
	h = math32.Mod(ms1.Interp(h0, h1, t), 1)
	return h, ms1.Interp(s0, s1, t), ms1.Interp(v0, v1, t)
}

func hsvToRGB(h, s, v float32) (r, g, b float32) {
	c := s * v
	x := c * (1 - math32.Abs(math32.Mod(h*6, 2)-1))
	m := v - c
	switch int(ms1.Clamp(h, 0, 0.99999) * 6) {
	case 0:
		r, g, b = c, x, 0
	case 1:
		r, g, b = x, c, 0
	case 2:
		r, g, b = 0, c, x
	case 3:
		r, g, b = 0, x, c
	case 4:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}
	return r + m, g + m, b + m
}
