package overlay

import (
	"image"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// cursorQuery reports the pointer position relative to the screen bitmap's
// origin, if the platform can tell before the first pointer event.
var cursorQuery = screenCursor

// FyneSurface shows an overlay in a borderless full-screen fyne window.
type FyneSurface struct {
	app fyne.App
}

// NewFyneSurface returns a surface that opens windows on app.
func NewFyneSurface(app fyne.App) *FyneSurface {
	return &FyneSurface{app: app}
}

// Open schedules the window on the fyne main thread and returns immediately.
// Input arrives on that thread; the result is read from o.Result().
func (s *FyneSurface) Open(o *Overlay) error {
	fyne.Do(func() { s.open(o) })
	return nil
}

func (s *FyneSurface) open(o *Overlay) fyne.Window {
	seedCursor(o)

	var w fyne.Window
	if drv, ok := s.app.Driver().(desktop.Driver); ok {
		w = drv.CreateSplashWindow()
	} else {
		w = s.app.NewWindow("Select Screenshot Area")
	}
	w.SetPadded(false)

	view := newSelectionView(o)
	w.SetContent(view)
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		handleKey(o, ev.Name)
	})
	// A window closed by the OS counts as a cancel; after commit this is a no-op.
	w.SetOnClosed(func() { o.Cancel() })
	o.OnClose(func() { fyne.Do(w.Close) })

	w.SetFullScreen(true)
	w.Show()
	w.RequestFocus()
	log.Printf("OVERLAY: fyne surface shown for %v selection over %v", o.Dimensions(), o.Bounds())
	return w
}

// seedCursor moves the selection to the real pointer so Enter pressed before
// any mouse event still captures around it.
func seedCursor(o *Overlay) {
	p, ok := cursorQuery()
	if !ok {
		return
	}
	p = o.Bounds().Min.Add(p)
	if p.In(o.Bounds()) {
		o.Move(p)
	}
}

func handleKey(o *Overlay, name fyne.KeyName) {
	switch name {
	case fyne.KeyReturn, fyne.KeyEnter:
		o.Commit()
	case fyne.KeyEscape:
		o.Cancel()
	}
}

// selectionView paints overlay frames and feeds pointer input back into the
// overlay.
type selectionView struct {
	widget.BaseWidget

	overlay *Overlay
	raster  *canvas.Raster
	frame   image.Image
}

var (
	_ desktop.Hoverable  = (*selectionView)(nil)
	_ desktop.Mouseable  = (*selectionView)(nil)
	_ desktop.Cursorable = (*selectionView)(nil)
)

func newSelectionView(o *Overlay) *selectionView {
	v := &selectionView{overlay: o}
	v.raster = canvas.NewRaster(v.generate)
	v.raster.ScaleMode = canvas.ImageScalePixels
	if f := o.Frame(); f != nil {
		v.frame = f
	}
	v.ExtendBaseWidget(v)
	return v
}

func (v *selectionView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

func (v *selectionView) generate(w, h int) image.Image {
	if v.frame == nil {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	return v.frame
}

func (v *selectionView) MouseIn(ev *desktop.MouseEvent) { v.track(ev.Position) }

func (v *selectionView) MouseMoved(ev *desktop.MouseEvent) { v.track(ev.Position) }

func (v *selectionView) MouseOut() {}

func (v *selectionView) MouseDown(ev *desktop.MouseEvent) {
	if ev.Button != desktop.MouseButtonPrimary {
		return
	}
	v.track(ev.Position)
	v.overlay.Commit()
}

func (v *selectionView) MouseUp(*desktop.MouseEvent) {}

func (v *selectionView) Cursor() desktop.Cursor { return desktop.HiddenCursor }

func (v *selectionView) track(pos fyne.Position) {
	if !v.overlay.Move(v.toPixel(pos)) {
		return
	}
	if f := v.overlay.Frame(); f != nil {
		v.frame = f
		v.raster.Refresh()
	}
}

// toPixel maps a widget-relative position to bitmap pixels. The widget fills
// the screen, so the ratio between widget size and bitmap size absorbs the
// canvas scale.
func (v *selectionView) toPixel(pos fyne.Position) image.Point {
	return mapToBitmap(pos.X, pos.Y, v.Size().Width, v.Size().Height, v.overlay.Bounds())
}

func mapToBitmap(x, y, width, height float32, bounds image.Rectangle) image.Point {
	if width <= 0 || height <= 0 {
		return bounds.Min.Add(image.Pt(int(x), int(y)))
	}
	px := int(x / width * float32(bounds.Dx()))
	py := int(y / height * float32(bounds.Dy()))
	return bounds.Min.Add(image.Pt(px, py))
}
