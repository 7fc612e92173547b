package fanwheel

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayoutEqualSectors(t *testing.T) {
	for _, n := range []int{1, 2, 3, 5, 10, 12} {
		geo := Layout(n, DefaultRadii())
		require.Len(t, geo.Sectors, n)

		want := 360.0 / float64(n)
		var total float64
		for _, s := range geo.Sectors {
			width := s.EndAngle - s.StartAngle
			assert.InDelta(t, want, width, 1e-9, "n=%d", n)
			total += width
		}
		assert.InDelta(t, 360.0, total, 1e-9, "n=%d", n)
	}
}

func TestLayoutStartsAtTopClockwise(t *testing.T) {
	geo := Layout(4, DefaultRadii())

	// first divider points straight up from the medallion to the rim
	first := geo.Sectors[0]
	assert.InDelta(t, 0.0, first.DividerFrom.X, 1e-9)
	assert.InDelta(t, -1.6, first.DividerFrom.Y, 1e-9)
	assert.InDelta(t, 0.0, first.DividerTo.X, 1e-9)
	assert.InDelta(t, -5.0, first.DividerTo.Y, 1e-9)

	// second sector starts at 90 degrees, which is the right-hand side
	second := geo.Sectors[1]
	assert.InDelta(t, 4.0, second.ArrowPos.X, 1e-9)
	assert.InDelta(t, 0.0, second.ArrowPos.Y, 1e-9)
}

func TestLayoutContentAtSectorMidpoint(t *testing.T) {
	r := DefaultRadii()
	geo := Layout(4, r)

	// sector 0 spans 0..90, midpoint 45 degrees
	s := geo.Sectors[0]
	wantX := r.LogoRing * math.Cos(-45*math.Pi/180)
	wantY := r.LogoRing * math.Sin(-45*math.Pi/180)
	assert.InDelta(t, wantX, s.LogoPos.X, 1e-9)
	assert.InDelta(t, wantY, s.LogoPos.Y, 1e-9)

	// text sits at the midpoint of the outer band, same angle as the logo
	assert.InDelta(t, r.TextRing(), math.Hypot(s.TextPos.X, s.TextPos.Y), 1e-9)
	assert.InDelta(t, wheelAngle(s.LogoPos), wheelAngle(s.TextPos), 1e-9)
}

func TestArrowHeadingIsUnitTangent(t *testing.T) {
	geo := Layout(6, DefaultRadii())
	for _, s := range geo.Sectors {
		h := s.ArrowHeading
		assert.InDelta(t, 1.0, math.Hypot(h.X, h.Y), 1e-9)

		// heading is perpendicular to the radial direction at the badge
		dot := h.X*s.ArrowPos.X + h.Y*s.ArrowPos.Y
		assert.InDelta(t, 0.0, dot, 1e-9)
	}
}

func TestWheelAngleRoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 45, 90, 135, 180, 270, 359} {
		p := wheelPoint(deg, 3.0)
		assert.InDelta(t, deg, wheelAngle(p), 1e-9, "deg=%v", deg)
	}
}

func TestCanvasPixelsClamped(t *testing.T) {
	assert.Equal(t, 3600, canvasPixels(12, 300))
	assert.Equal(t, 64, canvasPixels(0.01, 10))
	assert.Equal(t, 16384, canvasPixels(100, 1000))
}

func TestPointsToPixels(t *testing.T) {
	assert.InDelta(t, 300.0, pointsToPixels(72, 300), 1e-9)
	assert.InDelta(t, 14.0, pointsToPixels(14, 72), 1e-9)
}
