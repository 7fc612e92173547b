package fanwheel

import (
	"image/color"
	"strings"
)

// Color represents an ARGB color.
type Color struct {
	ARGB string // 8-character hex string, e.g., "FF000000" for black
}

// Predefined colors.
var (
	ColorBlack = Color{ARGB: "FF000000"}
	ColorWhite = Color{ARGB: "FFFFFFFF"}
	ColorGray  = Color{ARGB: "FF646464"}
)

// NewColor creates a new Color from an ARGB hex string.
// Accepts 6-char RGB (e.g. "1D428A") or 8-char ARGB (e.g. "FF1D428A").
// A leading "#" is stripped automatically.
func NewColor(argb string) Color {
	argb = strings.TrimPrefix(argb, "#")
	if len(argb) == 6 {
		argb = "FF" + argb
	}
	argb = strings.ToUpper(argb)
	if !isValidARGB(argb) {
		return Color{ARGB: "FF000000"} // fallback to black
	}
	return Color{ARGB: argb}
}

// isValidARGB checks that s is exactly 8 hex characters.
func isValidARGB(s string) bool {
	if len(s) != 8 {
		return false
	}
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// GetRed returns the red component (0-255).
func (c Color) GetRed() uint8 {
	return parseHexByte(c.ARGB, 2)
}

// GetGreen returns the green component (0-255).
func (c Color) GetGreen() uint8 {
	return parseHexByte(c.ARGB, 4)
}

// GetBlue returns the blue component (0-255).
func (c Color) GetBlue() uint8 {
	return parseHexByte(c.ARGB, 6)
}

// GetAlpha returns the alpha component (0-255).
func (c Color) GetAlpha() uint8 {
	return parseHexByte(c.ARGB, 0)
}

// RGBA returns the color as an image/color RGBA value.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{R: c.GetRed(), G: c.GetGreen(), B: c.GetBlue(), A: c.GetAlpha()}
}

// parseHexByte parses two hex characters at offset into a uint8.
// Returns 0 on any error (out of range, invalid chars).
func parseHexByte(s string, offset int) uint8 {
	if offset+2 > len(s) {
		return 0
	}
	h := hexVal(s[offset])
	l := hexVal(s[offset+1])
	if h < 0 || l < 0 {
		return 0
	}
	return uint8(h<<4 | l)
}

func hexVal(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	default:
		return -1
	}
}

// Palette holds the brand colors used to paint a wheel.
type Palette struct {
	Primary   Color // inner ring (center to logo ring)
	Secondary Color // outer ring (logo ring to rim)
	Accent    Color // arrows and medallion border
	Divider   Color // sector boundary lines
	Medallion Color // center circle fill
	Text      Color // behavior and title text
}

// DefaultPalette returns the stock wheel palette: a dark primary ring, a
// lighter secondary ring, a gold accent, white dividers and text, and a
// black center medallion.
func DefaultPalette() Palette {
	return Palette{
		Primary:   NewColor("1D428A"),
		Secondary: NewColor("4169E1"),
		Accent:    NewColor("FFD700"),
		Divider:   ColorWhite,
		Medallion: ColorBlack,
		Text:      ColorWhite,
	}
}

// Font represents text font properties for wheel labels.
type Font struct {
	Name string
	Size float64 // in points, at the canvas design size
	Bold bool
	Color Color
}

// NewFont creates a new Font with defaults.
func NewFont() *Font {
	return &Font{
		Name:  "Red Hat Display",
		Size:  14,
		Bold:  true,
		Color: ColorWhite,
	}
}

// SetBold sets the bold property and returns the font for chaining.
func (f *Font) SetBold(bold bool) *Font {
	f.Bold = bold
	return f
}

// SetSize sets the font size in points (clamped to 1-400).
func (f *Font) SetSize(size float64) *Font {
	if size < 1 {
		size = 1
	}
	if size > 400 {
		size = 400
	}
	f.Size = size
	return f
}

// SetColor sets the font color.
func (f *Font) SetColor(color Color) *Font {
	f.Color = color
	return f
}

// SetName sets the font name.
func (f *Font) SetName(name string) *Font {
	f.Name = name
	return f
}
