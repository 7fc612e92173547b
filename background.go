package fanwheel

import (
	"image"
	"image/color"
)

const (
	// bgCornerTolerance is the maximum per-channel spread between corner
	// pixels for them to count as a uniform background.
	bgCornerTolerance = 30
	// bgWhiteFloor is the per-channel value above which a uniform corner
	// color is treated as white and ignored.
	bgWhiteFloor = 240
)

// InferBackground samples the four corner pixels of a logo image. If they
// are mutually similar and not near-white, the common color is the logo's
// intrinsic background and is returned for use as its backing plate, so the
// logo blends instead of sitting on a visible white disc. ok is false when
// the corners disagree or the background is white.
func InferBackground(img image.Image) (color.RGBA, bool) {
	b := img.Bounds()
	if b.Dx() < 2 || b.Dy() < 2 {
		return color.RGBA{}, false
	}

	corners := []color.RGBA{
		rgbaAt(img, b.Min.X, b.Min.Y),
		rgbaAt(img, b.Max.X-1, b.Min.Y),
		rgbaAt(img, b.Min.X, b.Max.Y-1),
		rgbaAt(img, b.Max.X-1, b.Max.Y-1),
	}

	first := corners[0]
	for _, c := range corners[1:] {
		if absDiff(c.R, first.R) >= bgCornerTolerance ||
			absDiff(c.G, first.G) >= bgCornerTolerance ||
			absDiff(c.B, first.B) >= bgCornerTolerance {
			return color.RGBA{}, false
		}
	}

	if first.R > bgWhiteFloor && first.G > bgWhiteFloor && first.B > bgWhiteFloor {
		return color.RGBA{}, false
	}

	first.A = 255
	return first, true
}

func rgbaAt(img image.Image, x, y int) color.RGBA {
	r, g, b, a := img.At(x, y).RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
