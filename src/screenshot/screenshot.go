package screenshot

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/kbinani/screenshot"

	"screen-fixed-crop/src/ratio"
)

// ErrNoDisplay is returned when no active display can be captured.
var ErrNoDisplay = errors.New("no active displays found")

// Fill names accepted by ParseFill.
const (
	FillTransparent = "transparent"
	FillBlack       = "black"
)

// CapturePrimary captures the whole primary display (display 0). The returned
// image is normalised so its bounds start at (0,0), matching overlay-local
// coordinates.
func CapturePrimary() (*image.RGBA, error) {
	bounds, err := GetDisplayBounds()
	if err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("failed to capture display %v: %w", bounds, err)
	}
	return normalize(img), nil
}

// GetDisplayBounds returns the bounds of the primary display
func GetDisplayBounds() (image.Rectangle, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return image.Rectangle{}, ErrNoDisplay
	}
	return screenshot.GetDisplayBounds(0), nil
}

// SelectionRect is the crop rectangle of the given size centred on cursor.
// It is not clamped to any bounds.
func SelectionRect(cursor image.Point, dims ratio.Dimensions) image.Rectangle {
	topLeft := image.Pt(cursor.X-dims.Width/2, cursor.Y-dims.Height/2)
	return image.Rectangle{Min: topLeft, Max: topLeft.Add(image.Pt(dims.Width, dims.Height))}
}

// Crop copies r out of src into a new image with bounds (0,0)-(r.Dx(),r.Dy()).
// The result always has the full size of r: pixels that fall outside src are
// set to fill (nil leaves them transparent).
func Crop(src *image.RGBA, r image.Rectangle, fill color.Color) *image.RGBA {
	r = r.Canon()
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	if fill != nil {
		if _, _, _, a := fill.RGBA(); a != 0 {
			draw.Draw(dst, dst.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
		}
	}
	if src == nil {
		return dst
	}

	visible := r.Intersect(src.Bounds())
	if visible.Empty() {
		return dst
	}
	target := visible.Sub(r.Min)
	draw.Draw(dst, target, src, visible.Min, draw.Src)
	return dst
}

// ParseFill maps a fill name to the colour used for out-of-bounds crop pixels.
func ParseFill(name string) (color.Color, error) {
	switch name {
	case "", FillTransparent:
		return color.Transparent, nil
	case FillBlack:
		return color.Black, nil
	default:
		return nil, fmt.Errorf("unknown fill %q (want %s or %s)", name, FillTransparent, FillBlack)
	}
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode image as PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodePNG decodes PNG data into an RGBA image with bounds starting at (0,0).
func DecodePNG(data []byte) (*image.RGBA, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode PNG: %w", err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts any image to *image.RGBA anchored at (0,0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

func normalize(img *image.RGBA) *image.RGBA {
	if img.Bounds().Min == (image.Point{}) {
		return img
	}
	return ToRGBA(img)
}
