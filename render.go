package fanwheel

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	defaultCanvasInches = 12.0
	defaultDPI          = 300.0

	titleFontPt    = 24.0
	initialsFontPt = 16.0

	dividerWidthPt    = 8.0
	medallionBorderPt = 5.0

	// plateRadius is the logo backing plate radius in plot units;
	// logoBoxFrac is the fraction of the plate diameter the logo may fill.
	plateRadius = 0.55
	logoBoxFrac = 0.78

	arrowBadgeRadius = 0.3
	arrowSize        = 0.15

	// centerMarkOffsetY / centerTitleOffsetY split the medallion vertically
	// when a center mark image is present.
	centerMarkOffsetY  = -0.4
	centerTitleOffsetY = 0.6
	centerMarkBox      = 1.1
)

// fallbackFontNames are tried in order when the requested font family is not
// installed.
var fallbackFontNames = []string{"arial", "dejavu sans", "liberation sans"}

// RenderOptions controls the appearance of one wheel render. The zero value
// is usable; unset fields take the documented defaults.
type RenderOptions struct {
	// Title is drawn in the center medallion.
	Title string
	// CanvasInches is the square canvas edge. Default 12.
	CanvasInches float64
	// DPI is the output resolution. Default 300.
	DPI float64
	// Palette holds the brand colors. Default DefaultPalette.
	Palette Palette
	// Radii are the ring proportions. Default DefaultRadii.
	Radii Radii
	// TextFont styles the behavior text in the outer ring. Default
	// NewFont() with the palette text color.
	TextFont *Font
	// TitleFont styles the medallion title. Default NewFont() at 24pt with
	// the palette text color.
	TitleFont *Font
	// CenterMark is an optional image (team logo) drawn above the title in
	// the medallion.
	CenterMark image.Image
}

// DefaultRenderOptions returns the stock 12-inch, 300 DPI configuration.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		CanvasInches: defaultCanvasInches,
		DPI:          defaultDPI,
		Palette:      DefaultPalette(),
		Radii:        DefaultRadii(),
		TextFont:     NewFont(),
		TitleFont:    NewFont().SetSize(titleFontPt),
	}
}

func (o RenderOptions) withDefaults() RenderOptions {
	d := DefaultRenderOptions()
	if o.CanvasInches <= 0 {
		o.CanvasInches = d.CanvasInches
	}
	if o.DPI <= 0 {
		o.DPI = d.DPI
	}
	if o.Palette.Primary.ARGB == "" {
		o.Palette = d.Palette
	}
	if o.Radii.Outer <= 0 {
		o.Radii = d.Radii
	}
	if o.TextFont == nil {
		o.TextFont = NewFont().SetColor(o.Palette.Text)
	}
	if o.TitleFont == nil {
		o.TitleFont = NewFont().SetSize(titleFontPt).SetColor(o.Palette.Text)
	}
	return o
}

// Engine renders fan wheels. It pairs an asset Resolver for logo lookup with
// a FontCache for text; both may be shared across engines and renders.
type Engine struct {
	Assets *Resolver
	Fonts  *FontCache
}

// NewEngine creates an Engine. A nil resolver disables logo lookup (every
// sector falls back to initials); a nil font cache falls back to the built-in
// bitmap font.
func NewEngine(assets *Resolver, fonts *FontCache) *Engine {
	return &Engine{Assets: assets, Fonts: fonts}
}

// Render draws a complete wheel for the given segments and returns the image.
// Segments are laid out clockwise from the top in input order. The segment
// slice must be non-empty; callers guard that before rendering.
func (e *Engine) Render(ctx context.Context, segments []SegmentRecord, opts RenderOptions) (image.Image, error) {
	opts = opts.withDefaults()

	size := canvasPixels(opts.CanvasInches, opts.DPI)
	c := &canvas{
		img:   image.NewRGBA(image.Rect(0, 0, size, size)),
		size:  size,
		scale: pixelsPerUnit(size),
		dpi:   opts.DPI,
	}

	geo := Layout(len(segments), opts.Radii)

	c.fillRings(geo, opts.Palette)

	dividerPx := pointsToPixels(dividerWidthPt, opts.DPI)
	for _, s := range geo.Sectors {
		c.thickLine(s.DividerFrom, s.DividerTo, dividerPx, opts.Palette.Divider.RGBA())
	}

	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		e.drawLogo(ctx, c, seg, geo.Sectors[i], opts)
	}

	textFace := e.face(opts.TextFont, opts.DPI)
	for i, seg := range segments {
		c.textCentered(textFace, seg.BehaviorText, geo.Sectors[i].TextPos, opts.TextFont.Color.RGBA())
	}

	for _, s := range geo.Sectors {
		c.fillCircle(s.ArrowPos, arrowBadgeRadius, color.RGBA{255, 255, 255, 255})
		c.arrowhead(s.ArrowPos, s.ArrowHeading, arrowSize, opts.Palette.Accent.RGBA())
	}

	borderPx := pointsToPixels(medallionBorderPt, opts.DPI)
	c.strokeCircle(Point{}, opts.Radii.Inner, borderPx, opts.Palette.Accent.RGBA())

	e.drawCenter(c, opts)

	return c.img, nil
}

// RenderToFile renders the wheel and writes it as a PNG, plus a companion
// summary CSV when summaryPath is non-empty.
func (e *Engine) RenderToFile(ctx context.Context, segments []SegmentRecord, opts RenderOptions, imagePath, summaryPath string) error {
	img, err := e.Render(ctx, segments, opts)
	if err != nil {
		return err
	}
	if err := savePNG(imagePath, img); err != nil {
		return err
	}
	log.Info().Str("path", imagePath).Int("segments", len(segments)).Msg("wheel rendered")

	if summaryPath != "" {
		if err := WriteSummaryCSV(summaryPath, segments); err != nil {
			return err
		}
		log.Info().Str("path", summaryPath).Msg("summary written")
	}
	return nil
}

// drawLogo paints one sector's logo: a circular backing plate colored from
// the logo's own background when it has one, the logo image scaled into the
// plate, and merchant initials when no image can be drawn.
func (e *Engine) drawLogo(ctx context.Context, c *canvas, seg SegmentRecord, sector Sector, opts RenderOptions) {
	var logo image.Image
	if e.Assets != nil {
		path, err := e.Assets.Resolve(ctx, seg.AssetKey)
		if err == nil {
			logo, err = loadImage(path)
		}
		if err != nil {
			log.Warn().Err(err).Str("asset", seg.AssetKey).Msg("logo unusable, falling back to initials")
			logo = nil
		}
	}

	plate := color.RGBA{255, 255, 255, 255}
	if logo != nil {
		if bg, ok := InferBackground(logo); ok {
			plate = bg
		}
	}
	c.fillCircle(sector.LogoPos, plateRadius, plate)

	if logo == nil {
		initials := NewFont().SetName(opts.TextFont.Name).SetSize(initialsFontPt).SetColor(ColorGray)
		c.textCentered(e.face(initials, opts.DPI), seg.Initials(), sector.LogoPos, initials.Color.RGBA())
		return
	}

	box := 2 * plateRadius * logoBoxFrac
	c.imageInBox(logo, sector.LogoPos, box)
}

// drawCenter fills the medallion with the title, and with the center mark
// image above it when one is configured.
func (e *Engine) drawCenter(c *canvas, opts RenderOptions) {
	titlePos := Point{}
	if opts.CenterMark != nil {
		c.imageInBox(opts.CenterMark, Point{Y: centerMarkOffsetY}, centerMarkBox)
		titlePos = Point{Y: centerTitleOffsetY}
	}
	if opts.Title != "" {
		c.textCentered(e.face(opts.TitleFont, opts.DPI), opts.Title, titlePos, opts.TitleFont.Color.RGBA())
	}
}

// face resolves the font's face at the render DPI, walking the fallback
// families and finally the built-in bitmap font.
func (e *Engine) face(f *Font, dpi float64) font.Face {
	sizePx := pointsToPixels(f.Size, dpi)
	if e.Fonts != nil {
		if face := e.Fonts.GetFace(f.Name, sizePx, f.Bold); face != nil {
			return face
		}
		for _, alt := range fallbackFontNames {
			if face := e.Fonts.GetFace(alt, sizePx, f.Bold); face != nil {
				return face
			}
		}
	}
	return basicfont.Face7x13
}

// canvas wraps the output image with the plot-unit coordinate mapping.
type canvas struct {
	img   *image.RGBA
	size  int
	scale float64 // pixels per plot unit
	dpi   float64
}

// px maps a plot-unit point to pixel coordinates. The origin is the canvas
// center; y grows downward in both systems.
func (c *canvas) px(p Point) (float64, float64) {
	half := float64(c.size) / 2
	return half + p.X*c.scale, half + p.Y*c.scale
}

// unit maps a pixel back to plot units.
func (c *canvas) unit(x, y int) Point {
	half := float64(c.size) / 2
	return Point{X: (float64(x) + 0.5 - half) / c.scale, Y: (float64(y) + 0.5 - half) / c.scale}
}

// fillRings paints the two-tone wheel body and the medallion fill in a single
// pass over the pixel grid, classifying each pixel by its radius.
func (c *canvas) fillRings(geo WheelGeometry, pal Palette) {
	primary := pal.Primary.RGBA()
	secondary := pal.Secondary.RGBA()
	medallion := pal.Medallion.RGBA()
	white := color.RGBA{255, 255, 255, 255}
	r := geo.Radii

	for y := 0; y < c.size; y++ {
		for x := 0; x < c.size; x++ {
			p := c.unit(x, y)
			dist := math.Hypot(p.X, p.Y)
			switch {
			case dist > r.Outer:
				c.img.SetRGBA(x, y, white)
			case dist > r.LogoRing:
				c.img.SetRGBA(x, y, secondary)
			case dist > r.Inner:
				c.img.SetRGBA(x, y, primary)
			default:
				c.img.SetRGBA(x, y, medallion)
			}
		}
	}
}

// fillCircle paints a filled disc centered at a plot-unit point.
func (c *canvas) fillCircle(center Point, radius float64, col color.RGBA) {
	cx, cy := c.px(center)
	rPx := radius * c.scale
	c.fillDiscPx(cx, cy, rPx, col)
}

func (c *canvas) fillDiscPx(cx, cy, rPx float64, col color.RGBA) {
	x0, x1 := int(cx-rPx)-1, int(cx+rPx)+1
	y0, y1 := int(cy-rPx)-1, int(cy+rPx)+1
	r2 := rPx * rPx
	for y := max(y0, 0); y <= min(y1, c.size-1); y++ {
		for x := max(x0, 0); x <= min(x1, c.size-1); x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			if dx*dx+dy*dy <= r2 {
				c.img.SetRGBA(x, y, col)
			}
		}
	}
}

// strokeCircle draws a ring outline of the given pixel width.
func (c *canvas) strokeCircle(center Point, radius, widthPx float64, col color.RGBA) {
	cx, cy := c.px(center)
	rPx := radius * c.scale
	outer := rPx + widthPx/2
	inner := rPx - widthPx/2
	if inner < 0 {
		inner = 0
	}
	o2, i2 := outer*outer, inner*inner

	x0, x1 := int(cx-outer)-1, int(cx+outer)+1
	y0, y1 := int(cy-outer)-1, int(cy+outer)+1
	for y := max(y0, 0); y <= min(y1, c.size-1); y++ {
		for x := max(x0, 0); x <= min(x1, c.size-1); x++ {
			dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
			d2 := dx*dx + dy*dy
			if d2 <= o2 && d2 >= i2 {
				c.img.SetRGBA(x, y, col)
			}
		}
	}
}

// thickLine draws a line of the given pixel width by stamping discs along it.
func (c *canvas) thickLine(from, to Point, widthPx float64, col color.RGBA) {
	x0, y0 := c.px(from)
	x1, y1 := c.px(to)
	length := math.Hypot(x1-x0, y1-y0)
	if length == 0 {
		c.fillDiscPx(x0, y0, widthPx/2, col)
		return
	}
	steps := int(length/(widthPx/4)) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		c.fillDiscPx(x0+(x1-x0)*t, y0+(y1-y0)*t, widthPx/2, col)
	}
}

// arrowhead draws a filled triangle at a plot-unit position pointing along
// the given unit heading.
func (c *canvas) arrowhead(pos, heading Point, size float64, col color.RGBA) {
	perp := Point{X: -heading.Y, Y: heading.X}
	tip := Point{X: pos.X + heading.X*size, Y: pos.Y + heading.Y*size}
	baseL := Point{
		X: pos.X - heading.X*size*0.6 + perp.X*size*0.7,
		Y: pos.Y - heading.Y*size*0.6 + perp.Y*size*0.7,
	}
	baseR := Point{
		X: pos.X - heading.X*size*0.6 - perp.X*size*0.7,
		Y: pos.Y - heading.Y*size*0.6 - perp.Y*size*0.7,
	}
	c.fillTriangle(tip, baseL, baseR, col)
}

// fillTriangle rasterizes a triangle with an edge-sign test over its
// bounding box.
func (c *canvas) fillTriangle(a, b, d Point, col color.RGBA) {
	ax, ay := c.px(a)
	bx, by := c.px(b)
	dx, dy := c.px(d)

	x0 := int(math.Min(ax, math.Min(bx, dx))) - 1
	x1 := int(math.Max(ax, math.Max(bx, dx))) + 1
	y0 := int(math.Min(ay, math.Min(by, dy))) - 1
	y1 := int(math.Max(ay, math.Max(by, dy))) + 1

	edge := func(x0, y0, x1, y1, px, py float64) float64 {
		return (x1-x0)*(py-y0) - (y1-y0)*(px-x0)
	}

	for y := max(y0, 0); y <= min(y1, c.size-1); y++ {
		for x := max(x0, 0); x <= min(x1, c.size-1); x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			e0 := edge(ax, ay, bx, by, px, py)
			e1 := edge(bx, by, dx, dy, px, py)
			e2 := edge(dx, dy, ax, ay, px, py)
			if (e0 >= 0 && e1 >= 0 && e2 >= 0) || (e0 <= 0 && e1 <= 0 && e2 <= 0) {
				c.img.SetRGBA(x, y, col)
			}
		}
	}
}

// imageInBox scales an image to fit a square box (plot units) centered at a
// plot-unit point, preserving aspect ratio, using nearest-neighbor sampling.
func (c *canvas) imageInBox(img image.Image, center Point, boxUnits float64) {
	src := img.Bounds()
	if src.Dx() == 0 || src.Dy() == 0 {
		return
	}

	boxPx := boxUnits * c.scale
	fit := math.Min(boxPx/float64(src.Dx()), boxPx/float64(src.Dy()))
	dw := int(float64(src.Dx()) * fit)
	dh := int(float64(src.Dy()) * fit)
	if dw < 1 || dh < 1 {
		return
	}

	cx, cy := c.px(center)
	ox := int(cx) - dw/2
	oy := int(cy) - dh/2

	for y := 0; y < dh; y++ {
		ty := oy + y
		if ty < 0 || ty >= c.size {
			continue
		}
		sy := src.Min.Y + y*src.Dy()/dh
		for x := 0; x < dw; x++ {
			tx := ox + x
			if tx < 0 || tx >= c.size {
				continue
			}
			sx := src.Min.X + x*src.Dx()/dw
			sc := img.At(sx, sy)
			if _, _, _, a := sc.RGBA(); a == 0 {
				continue
			}
			// over-composite so partially transparent logo edges blend
			draw.Draw(c.img, image.Rect(tx, ty, tx+1, ty+1), &image.Uniform{sc}, image.Point{}, draw.Over)
		}
	}
}

// textCentered draws up to two newline-separated lines centered on a
// plot-unit point, both horizontally and as a block vertically.
func (c *canvas) textCentered(face font.Face, text string, center Point, col color.RGBA) {
	if text == "" {
		return
	}
	lines := strings.SplitN(text, "\n", 2)

	m := face.Metrics()
	lineH := (m.Ascent + m.Descent).Ceil()
	blockH := lineH * len(lines)

	cx, cy := c.px(center)
	top := int(cy) - blockH/2

	for i, line := range lines {
		w := font.MeasureString(face, line).Ceil()
		d := &font.Drawer{
			Dst:  c.img,
			Src:  &image.Uniform{col},
			Face: face,
			Dot:  fixed.P(int(cx)-w/2, top+i*lineH+m.Ascent.Ceil()),
		}
		d.DrawString(line)
	}
}

// LoadCenterMark loads an image file for use as RenderOptions.CenterMark.
func LoadCenterMark(path string) (image.Image, error) {
	return loadImage(path)
}

// loadImage opens and decodes an image file in any registered format.
func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode image %s: %w", path, err)
	}
	return img, nil
}

// savePNG writes an image to disk, creating parent directories as needed.
func savePNG(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
