package ratio

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidDimensions is returned for non-numeric, non-positive or oversized
// width/height.
var ErrInvalidDimensions = errors.New("invalid dimensions")

// MaxSide is the largest accepted width or height. A MaxSide x MaxSide crop
// is 4 GiB of RGBA.
const MaxSide = 1 << 15

// Ratio is a named preset from the ratio dropdown.
type Ratio string

const (
	Custom     Ratio = "Custom"
	Ratio16x9  Ratio = "16:9"
	Ratio16x10 Ratio = "16:10"
	Ratio4x3   Ratio = "4:3"
	Ratio1x1   Ratio = "1:1"
)

// Slider range. The centre value means 1.0x.
const (
	SliderMin    = 1
	SliderMax    = 20
	SliderCenter = 10
)

// Dimensions is the fixed size of the selection rectangle in pixels.
type Dimensions struct {
	Width  int
	Height int
}

// Validate reports ErrInvalidDimensions unless both sides are in [1, MaxSide].
func (d Dimensions) Validate() error {
	if d.Width <= 0 || d.Height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, d.Width, d.Height)
	}
	if d.Width > MaxSide || d.Height > MaxSide {
		return fmt.Errorf("%w: %dx%d exceeds the %d px limit", ErrInvalidDimensions, d.Width, d.Height, MaxSide)
	}
	return nil
}

func (d Dimensions) String() string {
	return fmt.Sprintf("%dx%d", d.Width, d.Height)
}

var bases = map[Ratio]Dimensions{
	Ratio16x9:  {Width: 1600, Height: 900},
	Ratio16x10: {Width: 1600, Height: 1000},
	Ratio4x3:   {Width: 1200, Height: 900},
	Ratio1x1:   {Width: 1000, Height: 1000},
}

// All returns the presets in dropdown order.
func All() []Ratio {
	return []Ratio{Custom, Ratio16x9, Ratio16x10, Ratio4x3, Ratio1x1}
}

// Options returns All as strings, for select widgets.
func Options() []string {
	all := All()
	out := make([]string, len(all))
	for i, r := range all {
		out[i] = string(r)
	}
	return out
}

// Base returns the canonical dimensions of a preset. Custom has none, so the
// caller clears the fields.
func Base(r Ratio) (Dimensions, bool) {
	d, ok := bases[r]
	return d, ok
}

// Parse resolves a preset name. Matching ignores case and surrounding space;
// an empty string is Custom.
func Parse(s string) (Ratio, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Custom, nil
	}
	for _, r := range All() {
		if strings.EqualFold(string(r), s) {
			return r, nil
		}
	}
	return Custom, fmt.Errorf("unknown ratio %q", s)
}

// Scale multiplies base by value/10, truncating. Value is clamped to the
// slider range. Base must be valid; the result may exceed MaxSide and is
// rejected later by Validate.
func Scale(base Dimensions, value int) Dimensions {
	value = clampSlider(value)
	return Dimensions{
		Width:  base.Width * value / SliderCenter,
		Height: base.Height * value / SliderCenter,
	}
}

// ScaleText scales textual field values. Input that does not parse as valid
// dimensions is a no-op and returns the inputs unchanged with ok=false.
func ScaleText(width, height string, value int) (string, string, bool) {
	base, err := ParseDimensions(width, height)
	if err != nil {
		return width, height, false
	}
	d := Scale(base, value)
	return strconv.Itoa(d.Width), strconv.Itoa(d.Height), true
}

// ParseDimensions parses the width and height fields.
func ParseDimensions(width, height string) (Dimensions, error) {
	w, err := parseField("width", width)
	if err != nil {
		return Dimensions{}, err
	}
	h, err := parseField("height", height)
	if err != nil {
		return Dimensions{}, err
	}
	d := Dimensions{Width: w, Height: h}
	if err := d.Validate(); err != nil {
		return Dimensions{}, err
	}
	return d, nil
}

func parseField(name, value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("%w: %s is empty", ErrInvalidDimensions, name)
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q is not a whole number", ErrInvalidDimensions, name, value)
	}
	return n, nil
}

func clampSlider(v int) int {
	if v < SliderMin {
		return SliderMin
	}
	if v > SliderMax {
		return SliderMax
	}
	return v
}
