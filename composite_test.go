package cloudgl_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/cloudgl/cloudgl"
)

func TestAlphaOverTransparentMaskIsIdentity(t *testing.T) {
	bases := []cloudgl.RGBA{
		{R: 0.3, G: 0.6, B: 0.9, A: 1},
		{R: 1, G: 0, B: 0.25, A: 0.7},
		{R: 0.01, G: 0.02, B: 0.03, A: 0.125},
	}
	mask := cloudgl.RGBA{R: 1, G: 1, B: 1, A: 0}
	for _, base := range bases {
		got := cloudgl.AlphaOver(mask, base)
		cmpRGBA(t, "identity", got, base)
	}
}

func TestAlphaOverOpaqueMaskWins(t *testing.T) {
	mask := cloudgl.RGBA{R: 0.2, G: 0.4, B: 0.6, A: 1}
	for _, base := range []cloudgl.RGBA{
		{R: 1, G: 1, B: 1, A: 1},
		{R: 0.5, G: 0.5, B: 0.5, A: 0.5},
		{},
	} {
		got := cloudgl.AlphaOver(mask, base)
		want := mask
		if got != want {
			t.Errorf("opaque mask: got %+v, want %+v", got, want)
		}
	}
}

func TestAlphaOverZeroTotalAlpha(t *testing.T) {
	mask := cloudgl.RGBA{R: 1, G: 1, B: 1, A: 0}
	base := cloudgl.RGBA{R: 1, G: 0, B: 1, A: 0}
	got := cloudgl.AlphaOver(mask, base)
	if got != (cloudgl.RGBA{}) {
		t.Errorf("zero alpha: got %+v, want transparent black", got)
	}
	if math32.IsNaN(got.R) || math32.IsNaN(got.A) {
		t.Error("zero alpha composite produced NaN")
	}
}

func TestAlphaOverBlend(t *testing.T) {
	mask := cloudgl.RGBA{R: 1, G: 0, B: 0, A: 0.5}
	base := cloudgl.RGBA{R: 0, G: 1, B: 0, A: 1}
	got := cloudgl.AlphaOver(mask, base)
	want := cloudgl.RGBA{R: 0.5, G: 0.5, B: 0, A: 1}
	cmpRGBA(t, "blend", got, want)
}

func TestPointFragmentMono(t *testing.T) {
	pal := cloudgl.Greyscale(256)
	key := cloudgl.RGBA{R: 0.25, G: 0.9, B: 0.1, A: 1} // G,B ignored in mono
	clear := cloudgl.RGBA{}
	got := cloudgl.PointFragment(key, clear, true, pal)
	r, g, b := pal.Sample(0.25)
	cmpRGBA(t, "mono point", got, cloudgl.RGBA{R: r, G: g, B: b, A: 1})

	got = cloudgl.PointFragment(key, clear, false, pal)
	cmpRGBA(t, "rgb point", got, key)
}

func TestImageFragmentModes(t *testing.T) {
	pal := cloudgl.Heat(256)
	img := cloudgl.RGBA{R: 0.5, G: 0.2, B: 0.8, A: 1}
	clear := cloudgl.RGBA{}

	got := cloudgl.ImageFragment(img, clear, false, false, pal)
	cmpRGBA(t, "true color", got, img)

	got = cloudgl.ImageFragment(img, clear, true, false, pal)
	cmpRGBA(t, "mono grey", got, cloudgl.RGBA{R: 0.5, G: 0.5, B: 0.5, A: 1})

	r, g, b := pal.Sample(0.5)
	got = cloudgl.ImageFragment(img, clear, true, true, pal)
	cmpRGBA(t, "mono palette", got, cloudgl.RGBA{R: r, G: g, B: b, A: 1})

	// Mask wins when opaque, regardless of mode.
	mask := cloudgl.RGBA{R: 0.1, G: 0.2, B: 0.3, A: 1}
	got = cloudgl.ImageFragment(img, mask, true, true, pal)
	cmpRGBA(t, "masked", got, mask)
}

func cmpRGBA(t *testing.T, what string, got, want cloudgl.RGBA) {
	t.Helper()
	const tol = 1e-6
	if math32.Abs(got.R-want.R) > tol || math32.Abs(got.G-want.G) > tol ||
		math32.Abs(got.B-want.B) > tol || math32.Abs(got.A-want.A) > tol {
		t.Errorf("%s: got %+v, want %+v", what, got, want)
	}
}
