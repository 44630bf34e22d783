package gui

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"screen-fixed-crop/src/ratio"
)

const windowTitle = "Screenshot Selector"

// MainWindow is the dimension form. It satisfies session.MainWindow and is
// the dimension source for the event loop.
type MainWindow struct {
	win  fyne.Window
	form *Form

	width   *dimensionEntry
	height  *dimensionEntry
	ratios  *widget.Select
	slider  *widget.Slider
	capture *widget.Button

	onCapture func()
	syncing   bool
}

// NewMainWindow builds the form window. onCapture runs on the UI thread when
// the user asks for a capture; it must not block.
func NewMainWindow(app fyne.App, onCapture func()) *MainWindow {
	m := &MainWindow{
		win:       app.NewWindow(windowTitle),
		form:      NewForm(),
		onCapture: onCapture,
	}

	m.width = newDimensionEntry(WidthField, m.focusOther)
	m.height = newDimensionEntry(HeightField, m.focusOther)
	m.width.OnChanged = func(s string) {
		if !m.syncing {
			m.form.EditWidth(s)
		}
	}
	m.height.OnChanged = func(s string) {
		if !m.syncing {
			m.form.EditHeight(s)
		}
	}
	m.width.OnSubmitted = func(string) { m.submit(WidthField) }
	m.height.OnSubmitted = func(string) { m.submit(HeightField) }

	m.ratios = widget.NewSelect(ratio.Options(), func(s string) {
		r, err := ratio.Parse(s)
		if err != nil {
			log.Printf("GUI: %v", err)
			return
		}
		m.form.SelectRatio(r)
		m.syncFields()
	})
	m.ratios.Selected = string(ratio.Custom)

	m.slider = widget.NewSlider(ratio.SliderMin, ratio.SliderMax)
	m.slider.Step = 1
	m.slider.Value = ratio.SliderCenter
	m.slider.OnChanged = func(v float64) {
		if m.syncing {
			return
		}
		if m.form.SetSlider(int(v)) {
			m.syncFields()
		}
	}

	m.capture = widget.NewButton("Select Screenshot Area", m.requestCapture)

	inputs := container.NewGridWithColumns(4,
		widget.NewLabel("Width (px):"), m.width,
		widget.NewLabel("Height (px):"), m.height,
	)
	m.win.SetContent(container.NewVBox(
		inputs,
		widget.NewLabel("Select Ratio:"),
		m.ratios,
		widget.NewLabel("Scale Size:"),
		m.slider,
		m.capture,
	))
	m.win.Resize(fyne.NewSize(480, 0))
	return m
}

// Window exposes the underlying fyne window.
func (m *MainWindow) Window() fyne.Window { return m.win }

// Preset applies initial values: a ratio preset and/or explicit dimensions.
// Explicit dimensions win over the preset's base.
func (m *MainWindow) Preset(r ratio.Ratio, dims ratio.Dimensions) {
	if r != ratio.Custom {
		m.ratios.SetSelected(string(r))
	}
	if dims.Width > 0 {
		m.form.EditWidth(itoa(dims.Width))
	}
	if dims.Height > 0 {
		m.form.EditHeight(itoa(dims.Height))
	}
	m.syncFields()
}

// Dimensions returns the parsed form values. The form is read on the UI
// thread, so like Hide it must be called from outside it.
func (m *MainWindow) Dimensions() (dims ratio.Dimensions, err error) {
	fyne.DoAndWait(func() { dims, err = m.form.Dimensions() })
	return dims, err
}

// Hide removes the window from screen and returns once fyne has processed it.
// Call it from outside the UI thread.
func (m *MainWindow) Hide() {
	fyne.DoAndWait(m.win.Hide)
}

// Show brings the window back. It is safe to call from any goroutine.
func (m *MainWindow) Show() {
	fyne.Do(func() {
		m.win.Show()
		m.win.RequestFocus()
	})
}

func (m *MainWindow) requestCapture() {
	if m.onCapture != nil {
		m.onCapture()
	}
}

func (m *MainWindow) submit(from Field) {
	switch m.form.Submit(from) {
	case SubmitFocusWidth:
		m.win.Canvas().Focus(m.width)
	case SubmitFocusHeight:
		m.win.Canvas().Focus(m.height)
	case SubmitCapture:
		m.requestCapture()
	}
}

func (m *MainWindow) focusOther(from Field) {
	if from.other() == WidthField {
		m.win.Canvas().Focus(m.width)
	} else {
		m.win.Canvas().Focus(m.height)
	}
}

// syncFields pushes the form model into the widgets without feeding the
// change back as a manual edit.
func (m *MainWindow) syncFields() {
	m.syncing = true
	defer func() { m.syncing = false }()
	if m.width.Text != m.form.Width {
		m.width.SetText(m.form.Width)
	}
	if m.height.Text != m.form.Height {
		m.height.SetText(m.form.Height)
	}
	if int(m.slider.Value) != m.form.Slider {
		m.slider.SetValue(float64(m.form.Slider))
	}
}
