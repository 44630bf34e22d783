package overlay

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"screen-fixed-crop/src/ratio"
	"screen-fixed-crop/src/screenshot"
)

// Style describes how a frame is painted.
type Style struct {
	Mask          color.NRGBA
	Tint          color.NRGBA
	Border        color.NRGBA
	BorderWidth   int
	Grid          color.NRGBA
	GridDivisions int
	Crosshair     color.NRGBA
	ShowHints     bool
}

// DefaultStyle is a black 150/255 mask, a white 50/255 tint and white
// border, grid and crosshair.
func DefaultStyle() Style {
	return Style{
		Mask:          color.NRGBA{A: 150},
		Tint:          color.NRGBA{R: 255, G: 255, B: 255, A: 50},
		Border:        color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		BorderWidth:   2,
		Grid:          color.NRGBA{R: 255, G: 255, B: 255, A: 100},
		GridDivisions: 4,
		Crosshair:     color.NRGBA{R: 255, G: 255, B: 255, A: 150},
		ShowHints:     true,
	}
}

const hintText = "Click or Enter: capture    Esc: cancel"

var hintFace = basicfont.Face7x13

// Render paints one overlay frame for the given cursor into dst and returns
// it. dst is reallocated when nil or not the same size as src; src is only
// read. The selection rectangle may extend past src and is clipped when
// painting.
func Render(dst, src *image.RGBA, cursor image.Point, dims ratio.Dimensions, style Style) *image.RGBA {
	bounds := src.Bounds()
	if dst == nil || dst.Bounds() != bounds {
		dst = image.NewRGBA(bounds)
	}

	draw.Draw(dst, bounds, src, bounds.Min, draw.Src)
	fillRect(dst, bounds, style.Mask)

	box := screenshot.SelectionRect(cursor, dims)
	if inner := box.Intersect(bounds); !inner.Empty() {
		draw.Draw(dst, inner, src, inner.Min, draw.Src)
		fillRect(dst, inner, style.Tint)
	}

	drawGrid(dst, box, style)
	drawCrosshair(dst, box, style.Crosshair)
	drawBorder(dst, box, style.BorderWidth, style.Border)

	if style.ShowHints {
		drawHints(dst, box, dims)
	}
	return dst
}

func fillRect(dst *image.RGBA, r image.Rectangle, c color.NRGBA) {
	r = r.Intersect(dst.Bounds())
	if r.Empty() || c.A == 0 {
		return
	}
	op := draw.Over
	if c.A == 0xff {
		op = draw.Src
	}
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, op)
}

func drawBorder(dst *image.RGBA, box image.Rectangle, width int, c color.NRGBA) {
	if width <= 0 {
		return
	}
	fillRect(dst, image.Rect(box.Min.X, box.Min.Y, box.Max.X, box.Min.Y+width), c)
	fillRect(dst, image.Rect(box.Min.X, box.Max.Y-width, box.Max.X, box.Max.Y), c)
	fillRect(dst, image.Rect(box.Min.X, box.Min.Y+width, box.Min.X+width, box.Max.Y-width), c)
	fillRect(dst, image.Rect(box.Max.X-width, box.Min.Y+width, box.Max.X, box.Max.Y-width), c)
}

// drawGrid splits the box into GridDivisions sections per axis; the lines
// sit at multiples of the truncated section size, as the crop guide.
func drawGrid(dst *image.RGBA, box image.Rectangle, style Style) {
	n := style.GridDivisions
	if n < 2 {
		return
	}
	sectionW := box.Dx() / n
	sectionH := box.Dy() / n
	for i := 1; i < n; i++ {
		x := box.Min.X + i*sectionW
		fillRect(dst, image.Rect(x, box.Min.Y, x+1, box.Max.Y), style.Grid)
		y := box.Min.Y + i*sectionH
		fillRect(dst, image.Rect(box.Min.X, y, box.Max.X, y+1), style.Grid)
	}
}

func drawCrosshair(dst *image.RGBA, box image.Rectangle, c color.NRGBA) {
	cx := box.Min.X + box.Dx()/2
	cy := box.Min.Y + box.Dy()/2
	fillRect(dst, image.Rect(cx, box.Min.Y, cx+1, box.Max.Y), c)
	fillRect(dst, image.Rect(box.Min.X, cy, box.Max.X, cy+1), c)
}

func drawHints(dst *image.RGBA, box image.Rectangle, dims ratio.Dimensions) {
	b := dst.Bounds()
	drawLabel(dst, image.Pt(b.Min.X+16, b.Min.Y+16), hintText)

	label := dims.String()
	at := image.Pt(box.Min.X, box.Min.Y-labelHeight()-4)
	if at.Y < b.Min.Y {
		at.Y = box.Max.Y + 4
	}
	if at.X < b.Min.X {
		at.X = b.Min.X
	}
	drawLabel(dst, at, label)
}

func labelHeight() int {
	return hintFace.Metrics().Height.Ceil() + 4
}

// drawLabel paints text with a dark backing plate whose top-left is at.
func drawLabel(dst *image.RGBA, at image.Point, text string) {
	w := font.MeasureString(hintFace, text).Ceil() + 8
	plate := image.Rect(at.X, at.Y, at.X+w, at.Y+labelHeight())
	fillRect(dst, plate, color.NRGBA{A: 180})

	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.White),
		Face: hintFace,
		Dot:  fixed.P(at.X+4, at.Y+2+hintFace.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}
