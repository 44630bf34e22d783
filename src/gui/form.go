package gui

import (
	"strconv"

	"screen-fixed-crop/src/ratio"
)

// Form is the state behind the main window: the two dimension fields, the
// ratio dropdown and the scale slider. It holds no widgets so it can be
// driven directly.
//
// Slider moves scale from a remembered base rather than from the current
// field values, so moving the slider back and forth does not compound.
// Choosing a preset sets the base; a manual edit clears it and the next
// slider move adopts whatever the fields hold.
type Form struct {
	Width  string
	Height string
	Ratio  ratio.Ratio
	Slider int

	base *ratio.Dimensions
}

func NewForm() *Form {
	return &Form{Ratio: ratio.Custom, Slider: ratio.SliderCenter}
}

// SelectRatio applies a dropdown choice. Presets fill both fields and
// re-centre the slider; Custom clears the fields.
func (f *Form) SelectRatio(r ratio.Ratio) {
	f.Ratio = r
	f.Slider = ratio.SliderCenter
	base, ok := ratio.Base(r)
	if !ok {
		f.Width, f.Height = "", ""
		f.base = nil
		return
	}
	f.Width, f.Height = itoa(base.Width), itoa(base.Height)
	f.base = &base
}

// SetSlider moves the slider and rescales the fields. It reports whether the
// fields changed; with Custom selected or non-numeric fields it only records
// the slider position.
func (f *Form) SetSlider(value int) bool {
	f.Slider = value
	if f.Ratio == ratio.Custom {
		return false
	}
	if f.base == nil {
		d, err := ratio.ParseDimensions(f.Width, f.Height)
		if err != nil {
			return false
		}
		f.base = &d
	}
	scaled := ratio.Scale(*f.base, value)
	w, h := itoa(scaled.Width), itoa(scaled.Height)
	if w == f.Width && h == f.Height {
		return false
	}
	f.Width, f.Height = w, h
	return true
}

// EditWidth records text typed into the width field.
func (f *Form) EditWidth(s string) {
	if s != f.Width {
		f.Width = s
		f.base = nil
	}
}

// EditHeight records text typed into the height field.
func (f *Form) EditHeight(s string) {
	if s != f.Height {
		f.Height = s
		f.base = nil
	}
}

// Dimensions parses the fields into a selection size.
func (f *Form) Dimensions() (ratio.Dimensions, error) {
	return ratio.ParseDimensions(f.Width, f.Height)
}

// Field identifies one of the two dimension inputs.
type Field int

const (
	WidthField Field = iota
	HeightField
)

func (fl Field) other() Field {
	if fl == WidthField {
		return HeightField
	}
	return WidthField
}

// SubmitAction is what Enter in a dimension field should do.
type SubmitAction int

const (
	SubmitNone SubmitAction = iota
	SubmitFocusWidth
	SubmitFocusHeight
	SubmitCapture
)

// Submit decides the Enter behaviour for the given field: jump to the other
// field while it is empty, start a capture once both are filled.
func (f *Form) Submit(from Field) SubmitAction {
	switch {
	case from == HeightField && f.Width == "":
		return SubmitFocusWidth
	case from == WidthField && f.Height == "":
		return SubmitFocusHeight
	case f.Width != "" && f.Height != "":
		return SubmitCapture
	default:
		return SubmitNone
	}
}

func itoa(n int) string { return strconv.Itoa(n) }
