package session

import (
	"context"
	"errors"
	"image"
	"image/color"
	"sync"
	"testing"
	"time"

	"screen-fixed-crop/src/overlay"
	"screen-fixed-crop/src/ratio"
)

type fakeWindow struct {
	mu     sync.Mutex
	hidden bool
	hides  int
	shows  int
}

func (w *fakeWindow) Hide() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hidden = true
	w.hides++
}

func (w *fakeWindow) Show() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.hidden = false
	w.shows++
}

func (w *fakeWindow) isHidden() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.hidden
}

type fakeSink struct {
	mu        sync.Mutex
	saved     []image.Image
	published []image.Image
	saveErr   error
	clipErr   error
}

func (s *fakeSink) Save(img image.Image) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return "", s.saveErr
	}
	s.saved = append(s.saved, img)
	return "out/screenshot_test.png", nil
}

func (s *fakeSink) PublishToClipboard(img image.Image) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clipErr != nil {
		return s.clipErr
	}
	s.published = append(s.published, img)
	return nil
}

// scriptedSurface drives each opened overlay from a goroutine, the way a
// user would from the UI thread.
type scriptedSurface struct {
	script func(o *overlay.Overlay)
	opened chan *overlay.Overlay
}

func (s *scriptedSurface) Open(o *overlay.Overlay) error {
	if s.opened != nil {
		s.opened <- o
	}
	if s.script != nil {
		go s.script(o)
	}
	return nil
}

type failingSurface struct{}

func (failingSurface) Open(*overlay.Overlay) error { return errors.New("no display") }

func screen(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: uint8(x + y), A: 255})
		}
	}
	return img
}

func newController(t *testing.T, win *fakeWindow, sink *fakeSink, surface overlay.Surface, capture CaptureFunc) *Controller {
	t.Helper()
	if capture == nil {
		capture = func() (*image.RGBA, error) { return screen(1920, 1080), nil }
	}
	c, err := New(Options{
		Window:   win,
		Capture:  capture,
		Launcher: overlay.Launcher{Surface: surface, Options: overlay.DefaultOptions()},
		Sink:     sink,
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c
}

func TestNewRequiresDependencies(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatal("Expected error without Capture")
	}
	capture := func() (*image.RGBA, error) { return nil, nil }
	if _, err := New(Options{Capture: capture}); err == nil {
		t.Fatal("Expected error without Launcher")
	}
	if _, err := New(Options{Capture: capture, Launcher: overlay.Launcher{}}); err == nil {
		t.Fatal("Expected error without Sink")
	}
}

func TestBeginEndToEnd(t *testing.T) {
	win := &fakeWindow{}
	sink := &fakeSink{}
	var hiddenDuringSession bool
	surface := &scriptedSurface{script: func(o *overlay.Overlay) {
		hiddenDuringSession = win.isHidden()
		o.Move(image.Pt(960, 540))
		o.Frame()
		o.Commit()
	}}
	c := newController(t, win, sink, surface, nil)

	out, err := c.Begin(context.Background(), ratio.Dimensions{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if !hiddenDuringSession {
		t.Error("Expected main window hidden while the overlay is up")
	}
	if win.hides != 1 || win.shows != 1 || win.isHidden() {
		t.Errorf("Expected one hide and one show, got hides=%d shows=%d", win.hides, win.shows)
	}
	if out.Cancelled {
		t.Fatal("Expected committed outcome")
	}
	if want := image.Rect(560, 240, 1360, 840); out.Rect != want {
		t.Errorf("Expected rect %v, got %v", want, out.Rect)
	}
	if out.Image.Bounds().Dx() != 800 || out.Image.Bounds().Dy() != 600 {
		t.Errorf("Expected 800x600 image, got %v", out.Image.Bounds())
	}
	if got, want := out.Image.RGBAAt(0, 0), screen(1920, 1080).RGBAAt(560, 240); got != want {
		t.Errorf("Expected top-left pixel %v, got %v", want, got)
	}
	if out.Path == "" {
		t.Error("Expected saved path")
	}
	if len(sink.saved) != 1 || len(sink.published) != 1 {
		t.Fatalf("Expected one save and one publish, got %d/%d", len(sink.saved), len(sink.published))
	}
	if sink.saved[0] != sink.published[0] {
		t.Error("Expected the same image to be saved and published")
	}
}

func TestBeginInvalidDimensionsDoesNothing(t *testing.T) {
	win := &fakeWindow{}
	sink := &fakeSink{}
	captured := false
	c := newController(t, win, sink, &scriptedSurface{}, func() (*image.RGBA, error) {
		captured = true
		return screen(10, 10), nil
	})

	for _, dims := range []ratio.Dimensions{{Width: 0, Height: 600}, {Width: 800, Height: -1}, {Width: 100000, Height: 100000}} {
		_, err := c.Begin(context.Background(), dims)
		if !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("Begin(%v): expected ErrInvalidDimensions, got %v", dims, err)
		}
	}
	if win.hides != 0 || win.shows != 0 {
		t.Errorf("Expected window untouched, got hides=%d shows=%d", win.hides, win.shows)
	}
	if captured {
		t.Error("Expected no capture for invalid dimensions")
	}
}

func TestBeginCaptureFailureRestoresWindow(t *testing.T) {
	win := &fakeWindow{}
	sink := &fakeSink{}
	c := newController(t, win, sink, &scriptedSurface{}, func() (*image.RGBA, error) {
		return nil, errors.New("no active displays found")
	})

	_, err := c.Begin(context.Background(), ratio.Dimensions{Width: 100, Height: 100})
	if !errors.Is(err, ErrCaptureUnavailable) {
		t.Fatalf("Expected ErrCaptureUnavailable, got %v", err)
	}
	if win.isHidden() || win.shows != 1 {
		t.Errorf("Expected window restored, shows=%d", win.shows)
	}
	if len(sink.saved)+len(sink.published) != 0 {
		t.Error("Expected no output on capture failure")
	}
}

func TestBeginSurfaceFailureRestoresWindow(t *testing.T) {
	win := &fakeWindow{}
	c := newController(t, win, &fakeSink{}, failingSurface{}, nil)

	if _, err := c.Begin(context.Background(), ratio.Dimensions{Width: 100, Height: 100}); err == nil {
		t.Fatal("Expected error when the surface cannot open")
	}
	if win.isHidden() {
		t.Error("Expected window restored")
	}
}

func TestBeginCancelIsPure(t *testing.T) {
	win := &fakeWindow{}
	sink := &fakeSink{}
	surface := &scriptedSurface{script: func(o *overlay.Overlay) {
		o.Move(image.Pt(100, 100))
		o.Cancel()
		o.Commit()
	}}
	c := newController(t, win, sink, surface, nil)

	out, err := c.Begin(context.Background(), ratio.Dimensions{Width: 800, Height: 600})
	if err != nil {
		t.Fatalf("Expected no error on cancel, got %v", err)
	}
	if !out.Cancelled || out.Image != nil || out.Path != "" {
		t.Errorf("Expected empty cancelled outcome, got %+v", out)
	}
	if len(sink.saved) != 0 || len(sink.published) != 0 {
		t.Error("Expected cancel to write nothing")
	}
	if win.isHidden() {
		t.Error("Expected window restored after cancel")
	}
}

func TestBeginPartialOutputFailure(t *testing.T) {
	commit := &scriptedSurface{script: func(o *overlay.Overlay) { o.Commit() }}

	t.Run("save fails", func(t *testing.T) {
		win := &fakeWindow{}
		sink := &fakeSink{saveErr: errors.New("disk full")}
		c := newController(t, win, sink, commit, nil)

		out, err := c.Begin(context.Background(), ratio.Dimensions{Width: 50, Height: 50})
		if !errors.Is(err, ErrOutputWrite) {
			t.Fatalf("Expected ErrOutputWrite, got %v", err)
		}
		if errors.Is(err, ErrClipboardUnavailable) {
			t.Error("Did not expect a clipboard error")
		}
		if len(sink.published) != 1 {
			t.Error("Expected clipboard publish despite save failure")
		}
		if out.Image == nil || out.Path != "" {
			t.Errorf("Expected image without path, got %+v", out)
		}
		if win.isHidden() {
			t.Error("Expected window restored")
		}
	})

	t.Run("clipboard fails", func(t *testing.T) {
		sink := &fakeSink{clipErr: errors.New("locked")}
		c := newController(t, &fakeWindow{}, sink, commit, nil)

		out, err := c.Begin(context.Background(), ratio.Dimensions{Width: 50, Height: 50})
		if !errors.Is(err, ErrClipboardUnavailable) {
			t.Fatalf("Expected ErrClipboardUnavailable, got %v", err)
		}
		if len(sink.saved) != 1 || out.Path == "" {
			t.Error("Expected file saved despite clipboard failure")
		}
	})

	t.Run("both fail", func(t *testing.T) {
		sink := &fakeSink{saveErr: errors.New("disk full"), clipErr: errors.New("locked")}
		c := newController(t, &fakeWindow{}, sink, commit, nil)

		_, err := c.Begin(context.Background(), ratio.Dimensions{Width: 50, Height: 50})
		if !errors.Is(err, ErrOutputWrite) || !errors.Is(err, ErrClipboardUnavailable) {
			t.Fatalf("Expected both errors, got %v", err)
		}
	})
}

func TestBeginContextCancelClosesOverlay(t *testing.T) {
	win := &fakeWindow{}
	sink := &fakeSink{}
	surface := &scriptedSurface{opened: make(chan *overlay.Overlay, 1)}
	c := newController(t, win, sink, surface, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	var out Outcome
	var err error
	go func() {
		out, err = c.Begin(ctx, ratio.Dimensions{Width: 10, Height: 10})
		close(done)
	}()

	o := <-surface.opened
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Begin did not return after context cancellation")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if !out.Cancelled || o.State() != overlay.Cancelled {
		t.Errorf("Expected overlay cancelled, got %v", o.State())
	}
	if win.isHidden() {
		t.Error("Expected window restored")
	}
}

func TestBeginRejectsConcurrentSession(t *testing.T) {
	surface := &scriptedSurface{opened: make(chan *overlay.Overlay, 1)}
	c := newController(t, &fakeWindow{}, &fakeSink{}, surface, nil)

	done := make(chan error, 1)
	go func() {
		_, err := c.Begin(context.Background(), ratio.Dimensions{Width: 10, Height: 10})
		done <- err
	}()
	o := <-surface.opened
	if !c.Busy() {
		t.Error("Expected controller busy while the overlay is open")
	}

	if _, err := c.Begin(context.Background(), ratio.Dimensions{Width: 10, Height: 10}); !errors.Is(err, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", err)
	}

	o.Cancel()
	if err := <-done; err != nil {
		t.Fatalf("first session failed: %v", err)
	}
	if c.Busy() {
		t.Error("Expected controller idle after the session")
	}
}

func TestBeginHideDelayHonoursContext(t *testing.T) {
	win := &fakeWindow{}
	c, err := New(Options{
		Window:    win,
		Capture:   func() (*image.RGBA, error) { t.Error("capture should not run"); return nil, nil },
		Launcher:  overlay.Launcher{Surface: &scriptedSurface{}},
		Sink:      &fakeSink{},
		HideDelay: time.Hour,
	})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := c.Begin(ctx, ratio.Dimensions{Width: 10, Height: 10}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Expected DeadlineExceeded, got %v", err)
	}
	if win.isHidden() {
		t.Error("Expected window restored")
	}
}
