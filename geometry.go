package fanwheel

import "math"

// Radii are the concentric ring radii of a wheel, in plot units on the
// [-6, 6] canvas.
type Radii struct {
	Outer    float64 // rim of the wheel
	LogoRing float64 // boundary between the two ring tones; logos sit here
	Inner    float64 // center medallion
	Arrow    float64 // ring the arrow badges sit on
}

// DefaultRadii returns the stock wheel proportions.
func DefaultRadii() Radii {
	return Radii{
		Outer:    5.0,
		LogoRing: 2.8,
		Inner:    1.6,
		Arrow:    4.0,
	}
}

// TextRing returns the radius of the behavior-text ring: the midpoint of the
// outer two-tone band.
func (r Radii) TextRing() float64 {
	return (r.LogoRing + r.Outer) / 2
}

// Point is a position in plot units. The y axis points down, matching
// raster image coordinates.
type Point struct {
	X, Y float64
}

// Sector is the computed geometry for one wedge.
type Sector struct {
	// StartAngle and EndAngle are in wheel degrees: 0 at the top of the
	// wheel, increasing clockwise.
	StartAngle float64
	EndAngle   float64

	LogoPos Point // center of the logo backing plate
	TextPos Point // anchor of the behavior text block

	// DividerFrom/DividerTo span the boundary line at StartAngle.
	DividerFrom Point
	DividerTo   Point

	// ArrowPos is the center of the boundary arrow badge; ArrowHeading is
	// the unit vector of the clockwise reading direction at that point.
	ArrowPos     Point
	ArrowHeading Point
}

// WheelGeometry is the full derived layout for one render. It is computed
// once from the segment count and radii, and holds no mutable state.
type WheelGeometry struct {
	Radii   Radii
	Sectors []Sector
}

// AngleStep returns the angular width of each sector in degrees.
func (g WheelGeometry) AngleStep() float64 {
	return 360.0 / float64(len(g.Sectors))
}

// wheelPoint converts a wheel angle (degrees, 0 at top, clockwise) and
// radius to a canvas point. The -90 offset moves the origin of the standard
// atan2 convention from "right" to "top"; the y-down canvas makes increasing
// angles run clockwise on screen.
func wheelPoint(deg, radius float64) Point {
	rad := (deg - 90) * math.Pi / 180
	return Point{X: radius * math.Cos(rad), Y: radius * math.Sin(rad)}
}

// wheelAngle is the inverse of wheelPoint: the wheel angle in [0, 360) of a
// canvas point.
func wheelAngle(p Point) float64 {
	deg := math.Atan2(p.Y, p.X)*180/math.Pi + 90
	if deg < 0 {
		deg += 360
	}
	return deg
}

// Layout partitions the wheel into n equal sectors in input order, starting
// at the top and proceeding clockwise, and derives every per-sector position
// from the given radii. n must be >= 1; guarding against empty input is the
// caller's responsibility.
func Layout(n int, r Radii) WheelGeometry {
	step := 360.0 / float64(n)
	sectors := make([]Sector, n)

	for i := 0; i < n; i++ {
		start := float64(i) * step
		mid := start + step/2

		sectors[i] = Sector{
			StartAngle:   start,
			EndAngle:     start + step,
			LogoPos:      wheelPoint(mid, r.LogoRing),
			TextPos:      wheelPoint(mid, r.TextRing()),
			DividerFrom:  wheelPoint(start, r.Inner),
			DividerTo:    wheelPoint(start, r.Outer),
			ArrowPos:     wheelPoint(start, r.Arrow),
			ArrowHeading: wheelPoint(start+90, 1),
		}
	}

	return WheelGeometry{Radii: r, Sectors: sectors}
}
