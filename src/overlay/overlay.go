package overlay

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log"
	"sync"

	"screen-fixed-crop/src/ratio"
	"screen-fixed-crop/src/screenshot"
)

// ErrNoBitmap is returned when an overlay is created without a screen image.
var ErrNoBitmap = errors.New("overlay: empty screen bitmap")

// State of a selection overlay. Committed and Cancelled are terminal.
type State int

const (
	Active State = iota
	Committed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Committed:
		return "committed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Result is emitted exactly once per overlay. When Cancelled is true, Image
// is nil.
type Result struct {
	Image     *image.RGBA
	Rect      image.Rectangle
	Cancelled bool
}

// Options tune cropping and rendering.
type Options struct {
	// Fill is used for crop pixels outside the screen bitmap. Nil means
	// transparent.
	Fill  color.Color
	Style Style
}

// DefaultOptions returns transparent padding and the default style.
func DefaultOptions() Options {
	return Options{Fill: color.Transparent, Style: DefaultStyle()}
}

// Overlay is the cursor-tracking selection state machine. It owns the screen
// bitmap for the lifetime of the session and drops it once a result has been
// emitted. Input methods are meant to be driven by a single UI thread; the
// mutex only guards the hand-off to whoever cancels from outside.
type Overlay struct {
	mu      sync.Mutex
	bitmap  *image.RGBA
	bounds  image.Rectangle
	dims    ratio.Dimensions
	cursor  image.Point
	state   State
	opts    Options
	frame   *image.RGBA
	results chan Result
	onClose []func()
}

// New creates an Active overlay with the cursor at the centre of bitmap.
func New(bitmap *image.RGBA, dims ratio.Dimensions, opts Options) (*Overlay, error) {
	if bitmap == nil || bitmap.Bounds().Empty() {
		return nil, ErrNoBitmap
	}
	if err := dims.Validate(); err != nil {
		return nil, err
	}
	b := bitmap.Bounds()
	return &Overlay{
		bitmap:  bitmap,
		bounds:  b,
		dims:    dims,
		cursor:  image.Pt(b.Min.X+b.Dx()/2, b.Min.Y+b.Dy()/2),
		opts:    opts,
		results: make(chan Result, 1),
	}, nil
}

// Bounds returns the bounds of the screen bitmap.
func (o *Overlay) Bounds() image.Rectangle { return o.bounds }

// Dimensions returns the fixed selection size.
func (o *Overlay) Dimensions() ratio.Dimensions { return o.dims }

// State returns the current state.
func (o *Overlay) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Cursor returns the last tracked cursor position.
func (o *Overlay) Cursor() image.Point {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.cursor
}

// Selection returns the rectangle centred on the current cursor.
func (o *Overlay) Selection() image.Rectangle {
	o.mu.Lock()
	defer o.mu.Unlock()
	return screenshot.SelectionRect(o.cursor, o.dims)
}

// Move records a pointer position. It reports whether the surface should
// re-render, which is only the case while Active.
func (o *Overlay) Move(p image.Point) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != Active {
		return false
	}
	o.cursor = p
	return true
}

// Frame renders the current state into the overlay's frame buffer. It
// returns nil once the overlay has left the Active state. The buffer is
// reused between calls.
func (o *Overlay) Frame() *image.RGBA {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state != Active {
		return nil
	}
	o.frame = Render(o.frame, o.bitmap, o.cursor, o.dims, o.opts.Style)
	return o.frame
}

// Commit crops the current selection and emits it. Only the first call
// from the Active state has any effect.
func (o *Overlay) Commit() bool {
	o.mu.Lock()
	if o.state != Active {
		o.mu.Unlock()
		return false
	}
	rect := screenshot.SelectionRect(o.cursor, o.dims)
	img := screenshot.Crop(o.bitmap, rect, o.opts.Fill)
	hooks := o.finishLocked(Committed, Result{Image: img, Rect: rect})
	o.mu.Unlock()

	log.Printf("OVERLAY: committed selection %v", rect)
	runHooks(hooks)
	return true
}

// Cancel aborts the session without producing an image. Only the first call
// from the Active state has any effect.
func (o *Overlay) Cancel() bool {
	o.mu.Lock()
	if o.state != Active {
		o.mu.Unlock()
		return false
	}
	hooks := o.finishLocked(Cancelled, Result{Cancelled: true})
	o.mu.Unlock()

	log.Printf("OVERLAY: selection cancelled")
	runHooks(hooks)
	return true
}

// Result delivers the single outcome of the overlay.
func (o *Overlay) Result() <-chan Result { return o.results }

// OnClose registers fn to run when the overlay reaches a terminal state.
// Surfaces use it to tear down their window. If the overlay is already
// terminal, fn runs immediately.
func (o *Overlay) OnClose(fn func()) {
	o.mu.Lock()
	if o.state != Active {
		o.mu.Unlock()
		fn()
		return
	}
	o.onClose = append(o.onClose, fn)
	o.mu.Unlock()
}

func (o *Overlay) String() string {
	return fmt.Sprintf("overlay{%s %v cursor=%v}", o.State(), o.dims, o.Cursor())
}

func (o *Overlay) finishLocked(state State, res Result) []func() {
	o.state = state
	o.results <- res
	o.bitmap = nil
	o.frame = nil
	hooks := o.onClose
	o.onClose = nil
	return hooks
}

func runHooks(hooks []func()) {
	for _, fn := range hooks {
		fn()
	}
}
