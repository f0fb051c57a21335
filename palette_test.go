package cloudgl_test

import (
	"image/color"
	"testing"

	"github.com/chewxy/math32"
	"github.com/cloudgl/cloudgl"
)

func TestGreyscaleSampling(t *testing.T) {
	pal := cloudgl.Greyscale(64)
	if pal.Len() != 64 {
		t.Fatalf("Len=%d, want 64", pal.Len())
	}
	if len(pal.RawData()) != 3*64 {
		t.Fatalf("raw data length %d", len(pal.RawData()))
	}
	cases := []struct {
		key  float32
		want float32
	}{
		{key: 0, want: 0},
		{key: 1, want: 1},  // clamps to the last entry
		{key: -2, want: 0}, // clamps below
		{key: 5, want: 1},  // clamps above
	}
	for _, tc := range cases {
		r, g, b := pal.Sample(tc.key)
		if r != g || g != b {
			t.Errorf("key=%g: not grey: %g %g %g", tc.key, r, g, b)
		}
		if math32.Abs(r-tc.want) > 1e-6 {
			t.Errorf("key=%g: got %g, want %g", tc.key, r, tc.want)
		}
	}
	// Nearest filtering: keys inside the same texel read the same entry.
	r0, _, _ := pal.Sample(0.5)
	r1, _, _ := pal.Sample(0.5 + 0.4/64)
	if r0 != r1 {
		t.Errorf("keys within one texel differ: %g vs %g", r0, r1)
	}
}

func TestNewPaletteArgs(t *testing.T) {
	if _, err := cloudgl.NewPalette(1, color.Black, color.White); err == nil {
		t.Error("expected error for single entry")
	}
	if _, err := cloudgl.NewPalette(16, color.Black); err == nil {
		t.Error("expected error for single stop")
	}
}

func TestHeatEndpoints(t *testing.T) {
	pal := cloudgl.Heat(128)
	r, g, b := pal.Sample(0)
	if r > 1e-3 || g > 1e-3 || b > 1e-3 {
		t.Errorf("heat(0) = %g %g %g, want black", r, g, b)
	}
	r, g, b = pal.Sample(1)
	if r < 0.999 || g < 0.999 || b < 0.999 {
		t.Errorf("heat(1) = %g %g %g, want white", r, g, b)
	}
	// Interior stops land at red and yellow.
	r, g, b = pal.Sample(1.0 / 3)
	if math32.Abs(r-1) > 5e-2 || g > 5e-2 || b > 5e-2 {
		t.Errorf("heat(1/3) = %g %g %g, want red", r, g, b)
	}
	r, g, b = pal.Sample(2.0 / 3)
	if math32.Abs(r-1) > 5e-2 || math32.Abs(g-1) > 5e-2 || b > 5e-2 {
		t.Errorf("heat(2/3) = %g %g %g, want yellow", r, g, b)
	}
}

func TestPaletteHueInterpolation(t *testing.T) {
	red := color.RGBA{R: 255, A: 255}
	yellow := color.RGBA{R: 255, G: 255, A: 255}
	pal, err := cloudgl.NewPalette(32, red, yellow)
	if err != nil {
		t.Fatal(err)
	}
	r, g, b := pal.Sample(0.5)
	// Halfway from red to yellow stays saturated orange, it does not dip
	// through grey like a plain RGB lerp can.
	if math32.Abs(r-1) > 5e-2 || b > 5e-2 {
		t.Errorf("midpoint %g %g %g, want saturated orange", r, g, b)
	}
	if g < 0.25 || g > 0.75 {
		t.Errorf("midpoint green %g out of range", g)
	}
}
