package overlay

import (
	"image"
	"image/color"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"

	"screen-fixed-crop/src/ratio"
	"screen-fixed-crop/src/screenshot"
)

func mouse(x, y float32, button desktop.MouseButton) *desktop.MouseEvent {
	return &desktop.MouseEvent{
		PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)},
		Button:     button,
	}
}

func withoutCursorQuery(t *testing.T) {
	t.Helper()
	prev := cursorQuery
	cursorQuery = func() (image.Point, bool) { return image.Point{}, false }
	t.Cleanup(func() { cursorQuery = prev })
}

func TestSelectionViewPointerInput(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	dims := ratio.Dimensions{Width: 200, Height: 100}
	o, err := New(solid(1920, 1080, color.RGBA{R: 200, G: 200, B: 200, A: 255}), dims, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	v := newSelectionView(o)
	// half-size widget: every widget unit is two bitmap pixels
	v.Resize(fyne.NewSize(960, 540))

	v.MouseMoved(mouse(100, 100, desktop.MouseButtonPrimary))
	if got := o.Cursor(); got != image.Pt(200, 200) {
		t.Fatalf("Expected cursor (200,200) after move, got %v", got)
	}
	frame, ok := v.generate(1920, 1080).(*image.RGBA)
	if !ok {
		t.Fatal("Expected an RGBA frame")
	}
	// (110,160) lies inside the moved selection, (110,400) only under the mask
	inside, outside := frame.RGBAAt(110, 160), frame.RGBAAt(110, 400)
	if inside == outside {
		t.Errorf("Expected the frame to follow the cursor, both pixels are %v", inside)
	}

	v.MouseDown(mouse(300, 200, desktop.MouseButtonSecondary))
	if o.State() != Active {
		t.Fatalf("Expected secondary button to be ignored, got %s", o.State())
	}
	if got := o.Cursor(); got != image.Pt(200, 200) {
		t.Errorf("Expected secondary button not to move the cursor, got %v", got)
	}

	v.MouseDown(mouse(480, 270, desktop.MouseButtonPrimary))
	if o.State() != Committed {
		t.Fatalf("Expected primary button to commit, got %s", o.State())
	}
	res := <-o.Result()
	want := screenshot.SelectionRect(image.Pt(960, 540), dims)
	if res.Rect != want {
		t.Errorf("Expected committed rect %v, got %v", want, res.Rect)
	}
	if res.Image == nil || res.Image.Bounds().Dx() != dims.Width || res.Image.Bounds().Dy() != dims.Height {
		t.Errorf("Expected a %v crop, got %v", dims, res.Image)
	}

	// input after commit changes nothing
	v.MouseMoved(mouse(10, 10, desktop.MouseButtonPrimary))
	if got := o.Cursor(); got != image.Pt(960, 540) {
		t.Errorf("Expected cursor frozen after commit, got %v", got)
	}
}

func TestFyneSurfaceWindowClose(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()
	withoutCursorQuery(t)

	s := NewFyneSurface(app)
	dims := ratio.Dimensions{Width: 20, Height: 20}

	o, _ := New(solid(100, 100, color.RGBA{A: 255}), dims, DefaultOptions())
	w := s.open(o)
	w.Close()
	if o.State() != Cancelled {
		t.Fatalf("Expected closing the window to cancel, got %s", o.State())
	}
	if res := <-o.Result(); !res.Cancelled || res.Image != nil {
		t.Errorf("Expected a cancelled result without image, got %+v", res)
	}

	o, _ = New(solid(100, 100, color.RGBA{A: 255}), dims, DefaultOptions())
	w = s.open(o)
	handleKey(o, fyne.KeyReturn)
	w.Close()
	if o.State() != Committed {
		t.Fatalf("Expected close after commit to be a no-op, got %s", o.State())
	}
	if res := <-o.Result(); res.Cancelled || res.Image == nil {
		t.Errorf("Expected the committed result, got %+v", res)
	}
	select {
	case extra := <-o.Result():
		t.Errorf("Expected a single result, got another %+v", extra)
	default:
	}
}

func TestFyneSurfaceSeedsCursor(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()

	prev := cursorQuery
	defer func() { cursorQuery = prev }()
	s := NewFyneSurface(app)
	dims := ratio.Dimensions{Width: 20, Height: 20}

	cursorQuery = func() (image.Point, bool) { return image.Pt(30, 70), true }
	o, _ := New(solid(100, 100, color.RGBA{A: 255}), dims, DefaultOptions())
	s.open(o)
	if got := o.Cursor(); got != image.Pt(30, 70) {
		t.Fatalf("Expected cursor seeded to (30,70), got %v", got)
	}
	handleKey(o, fyne.KeyReturn)
	if res := <-o.Result(); res.Rect != image.Rect(20, 60, 40, 80) {
		t.Errorf("Expected Enter to capture around the seeded cursor, got %v", res.Rect)
	}

	// a pointer on another display leaves the centred default
	cursorQuery = func() (image.Point, bool) { return image.Pt(-500, 40), true }
	o, _ = New(solid(100, 100, color.RGBA{A: 255}), dims, DefaultOptions())
	s.open(o)
	if got := o.Cursor(); got != image.Pt(50, 50) {
		t.Errorf("Expected centred cursor for an off-bitmap pointer, got %v", got)
	}
	o.Cancel()

	cursorQuery = func() (image.Point, bool) { return image.Point{}, false }
	o, _ = New(solid(100, 100, color.RGBA{A: 255}), dims, DefaultOptions())
	s.open(o)
	if got := o.Cursor(); got != image.Pt(50, 50) {
		t.Errorf("Expected centred cursor without a platform query, got %v", got)
	}
	o.Cancel()
}
