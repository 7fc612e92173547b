package fanwheel

import "math"

// Layout coordinates are expressed in plot units on a square canvas spanning
// [-canvasExtent, +canvasExtent] on both axes, with the wheel centered at the
// origin. Pixel positions are derived from the canvas size in inches and the
// output DPI.

const (
	// canvasExtent is the half-width of the layout coordinate system.
	canvasExtent = 6.0

	pointsPerInch = 72.0
)

// pixelsPerUnit returns the pixel scale for a canvas of the given size.
func pixelsPerUnit(sizePx int) float64 {
	return float64(sizePx) / (2 * canvasExtent)
}

// pointsToPixels converts a size in typographic points to pixels at the given DPI.
func pointsToPixels(pt, dpi float64) float64 {
	return pt * dpi / pointsPerInch
}

// canvasPixels returns the canvas edge length in pixels, clamped to a sane range.
func canvasPixels(inches, dpi float64) int {
	px := int(math.Round(inches * dpi))
	if px < 64 {
		px = 64
	}
	if px > 16384 {
		px = 16384
	}
	return px
}
