package cloudgl

// RGBA is a linear color with straight (unassociated) alpha, the form the
// fragment stages consume and emit.
type RGBA struct {
	R, G, B, A float32
}

// AlphaOver composites mask over base with the "over" operator and returns
// the straight-alpha result. A zero total alpha has no defined color, so
// the result is transparent black rather than a division by zero.
func AlphaOver(mask, base RGBA) RGBA {
	a := mask.A + base.A*(1-mask.A)
	if a <= 0 {
		return RGBA{}
	}
	inv := base.A * (1 - mask.A)
	return RGBA{
		R: (mask.R*mask.A + base.R*inv) / a,
		G: (mask.G*mask.A + base.G*inv) / a,
		B: (mask.B*mask.A + base.B*inv) / a,
		A: a,
	}
}

// PointFragment mirrors the point program's fragment stage: the key color is
// resolved through the palette in mono mode or taken as-is otherwise, then
// the mask is composited over it.
func PointFragment(key, mask RGBA, mono bool, palette Palette) RGBA {
	base := RGBA{R: key.R, G: key.G, B: key.B, A: key.A}
	if mono {
		base.R, base.G, base.B = palette.Sample(key.R)
	}
	return AlphaOver(mask, base)
}

// ImageFragment mirrors the image program's fragment stage. img is the image
// texture sample at the fragment's UV and mask the mask texture sample at
// the same UV. In mono mode the base color is scalar: the red channel either
// spread across RGB or, with usePalette, looked up in the palette.
func ImageFragment(img, mask RGBA, mono, usePalette bool, palette Palette) RGBA {
	base := RGBA{R: img.R, G: img.G, B: img.B, A: img.A}
	if mono {
		if usePalette {
			base.R, base.G, base.B = palette.Sample(img.R)
		} else {
			base.R, base.G, base.B = img.R, img.R, img.R
		}
	}
	return AlphaOver(mask, base)
}
