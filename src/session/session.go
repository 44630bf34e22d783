package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"
	"time"

	"screen-fixed-crop/src/overlay"
	"screen-fixed-crop/src/ratio"
)

var (
	// ErrInvalidDimensions is ratio.ErrInvalidDimensions, re-exported so
	// callers can match every session failure against this package.
	ErrInvalidDimensions    = ratio.ErrInvalidDimensions
	ErrCaptureUnavailable   = errors.New("screen capture unavailable")
	ErrOutputWrite          = errors.New("could not write screenshot file")
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
	ErrBusy                 = errors.New("a capture session is already running")
)

// DefaultHideDelay gives the compositor time to remove the main window before
// the screen is grabbed.
const DefaultHideDelay = 250 * time.Millisecond

// MainWindow is the application window hidden for the duration of a session.
// Both calls must be idempotent.
type MainWindow interface {
	Hide()
	Show()
}

type CaptureFunc func() (*image.RGBA, error)

type Launcher interface {
	Launch(bitmap *image.RGBA, dims ratio.Dimensions) (*overlay.Overlay, error)
}

type Sink interface {
	Save(img image.Image) (string, error)
	PublishToClipboard(img image.Image) error
}

type Options struct {
	Window    MainWindow
	Capture   CaptureFunc
	Launcher  Launcher
	Sink      Sink
	HideDelay time.Duration
}

// Outcome describes a finished session. Image, Path and Rect are set when
// the selection was committed; Path stays empty if saving failed.
type Outcome struct {
	Image     *image.RGBA
	Path      string
	Rect      image.Rectangle
	Cancelled bool
}

// Controller runs capture sessions one at a time.
type Controller struct {
	opts Options
	mu   sync.Mutex
	busy bool
}

func New(opts Options) (*Controller, error) {
	if opts.Capture == nil {
		return nil, errors.New("Capture is required")
	}
	if opts.Launcher == nil {
		return nil, errors.New("Launcher is required")
	}
	if opts.Sink == nil {
		return nil, errors.New("Sink is required")
	}
	if opts.HideDelay < 0 {
		opts.HideDelay = 0
	}
	return &Controller{opts: opts}, nil
}

// Busy reports whether a session is in progress.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Begin runs one session: hide the main window, grab the primary display,
// let the user place the fixed-size rectangle and deliver the crop. The main
// window is shown again on every path that hid it.
func (c *Controller) Begin(ctx context.Context, dims ratio.Dimensions) (Outcome, error) {
	if err := dims.Validate(); err != nil {
		return Outcome{}, err
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return Outcome{}, ErrBusy
	}
	c.busy = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.busy = false
		c.mu.Unlock()
	}()

	log.Printf("SESSION: starting %s capture", dims)
	if w := c.opts.Window; w != nil {
		w.Hide()
		defer w.Show()
	}

	if err := c.waitHidden(ctx); err != nil {
		return Outcome{}, err
	}

	bitmap, err := c.opts.Capture()
	if err != nil {
		log.Printf("SESSION: capture failed: %v", err)
		return Outcome{}, fmt.Errorf("%w: %v", ErrCaptureUnavailable, err)
	}
	if bitmap == nil || bitmap.Bounds().Empty() {
		return Outcome{}, fmt.Errorf("%w: empty screen bitmap", ErrCaptureUnavailable)
	}

	o, err := c.opts.Launcher.Launch(bitmap, dims)
	if err != nil {
		log.Printf("SESSION: overlay failed: %v", err)
		return Outcome{}, err
	}

	var res overlay.Result
	select {
	case res = <-o.Result():
	case <-ctx.Done():
		if o.Cancel() {
			<-o.Result()
			log.Printf("SESSION: aborted: %v", ctx.Err())
			return Outcome{Cancelled: true}, ctx.Err()
		}
		// the user committed first
		res = <-o.Result()
	}

	if res.Cancelled {
		log.Printf("SESSION: cancelled")
		return Outcome{Cancelled: true}, nil
	}
	return c.deliver(res)
}

func (c *Controller) waitHidden(ctx context.Context) error {
	if c.opts.HideDelay == 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(c.opts.HideDelay)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// deliver saves and publishes the crop. Both are attempted even if the other
// fails; their errors are joined.
func (c *Controller) deliver(res overlay.Result) (Outcome, error) {
	out := Outcome{Image: res.Image, Rect: res.Rect}

	var saveErr, clipErr error
	if path, err := c.opts.Sink.Save(res.Image); err != nil {
		log.Printf("SESSION: save failed: %v", err)
		saveErr = fmt.Errorf("%w: %v", ErrOutputWrite, err)
	} else {
		out.Path = path
	}
	if err := c.opts.Sink.PublishToClipboard(res.Image); err != nil {
		log.Printf("SESSION: clipboard failed: %v", err)
		clipErr = fmt.Errorf("%w: %v", ErrClipboardUnavailable, err)
	}

	if err := errors.Join(saveErr, clipErr); err != nil {
		return out, err
	}
	log.Printf("SESSION: completed %v -> %s", res.Rect, out.Path)
	return out, nil
}
