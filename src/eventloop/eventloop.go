package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"

	"screen-fixed-crop/src/hotkey"
	"screen-fixed-crop/src/notification"
	"screen-fixed-crop/src/ratio"
	"screen-fixed-crop/src/session"
	"screen-fixed-crop/src/worker"
)

// Source names where a capture request came from.
type Source string

const (
	SourceButton  Source = "button"
	SourceHotkey  Source = "hotkey"
	SourceTray    Source = "tray"
	SourceRunOnce Source = "run-once"
)

// Controller runs one capture session.
type Controller interface {
	Begin(ctx context.Context, dims ratio.Dimensions) (session.Outcome, error)
}

// DimensionSource supplies the size the user entered.
type DimensionSource interface {
	Dimensions() (ratio.Dimensions, error)
}

// Notifier reports outcomes to the user.
type Notifier interface {
	Notify(message string)
	NotifyError(title, message string)
}

// Options wires the loop to its collaborators. OnDone, when set, is called
// from the loop goroutine after every finished or rejected request.
type Options struct {
	Controller Controller
	Dimensions DimensionSource
	Notifier   Notifier
	Status     func(busy bool)
	OnDone     func(src Source, out session.Outcome, err error)
}

// Loop is the single-threaded coordinator for capture requests. Sessions run
// on a one-worker pool; the loop itself never blocks on the overlay.
type Loop struct {
	opts     Options
	pool     *worker.Pool
	busy     bool
	requests chan Source
	results  chan result
	stopHook func()
}

type result struct {
	src Source
	out session.Outcome
	err error
}

func New(opts Options) *Loop {
	return &Loop{
		opts:     opts,
		pool:     worker.New(1),
		requests: make(chan Source, 4),
		results:  make(chan result, 1),
	}
}

// Request posts a capture request into the loop. It never blocks; when the
// queue is full the request is dropped and false is returned.
func (l *Loop) Request(src Source) bool {
	select {
	case l.requests <- src:
		return true
	default:
		log.Printf("EVENTLOOP: dropped %s request, queue full", src)
		return false
	}
}

// StartHotkey registers a global hotkey that posts capture requests.
func (l *Loop) StartHotkey(combo string) error {
	if combo == "" {
		return nil
	}
	stop, err := hotkey.Listen(combo, func() { l.Request(SourceHotkey) })
	if err != nil {
		return err
	}
	l.stopHook = stop
	return nil
}

// Run processes requests until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	defer func() {
		if l.stopHook != nil {
			l.stopHook()
		}
		l.pool.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case src := <-l.requests:
			l.handleRequest(ctx, src)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if l.opts.Status != nil {
		l.opts.Status(b)
	}
}

func (l *Loop) handleRequest(ctx context.Context, src Source) {
	log.Printf("EVENTLOOP: %s request", src)
	if l.busy {
		log.Printf("EVENTLOOP: busy, skipping %s request", src)
		l.done(src, session.Outcome{}, session.ErrBusy)
		return
	}

	dims, err := l.opts.Dimensions.Dimensions()
	if err != nil {
		l.report(err)
		l.done(src, session.Outcome{}, err)
		return
	}

	l.setBusy(true)
	submitted := l.pool.Submit(ctx, fmt.Sprintf("%s capture %s", src, dims), func(ctx context.Context) {
		out, err := l.opts.Controller.Begin(ctx, dims)
		l.results <- result{src: src, out: out, err: err}
	})
	if !submitted {
		l.setBusy(false)
		l.done(src, session.Outcome{}, session.ErrBusy)
	}
}

func (l *Loop) handleResult(res result) {
	l.setBusy(false)
	switch {
	case res.err != nil:
		log.Printf("EVENTLOOP: %s session failed: %v", res.src, res.err)
		l.report(res.err)
	case res.out.Cancelled:
		log.Printf("EVENTLOOP: %s session cancelled", res.src)
	default:
		log.Printf("EVENTLOOP: %s session saved %s", res.src, res.out.Path)
		if l.opts.Notifier != nil {
			l.opts.Notifier.Notify(notification.CaptureCompleted)
		}
	}
	l.done(res.src, res.out, res.err)
}

func (l *Loop) report(err error) {
	if l.opts.Notifier == nil || err == nil {
		return
	}
	title, msg := UserMessage(err)
	if title == "" {
		return
	}
	l.opts.Notifier.NotifyError(title, msg)
}

func (l *Loop) done(src Source, out session.Outcome, err error) {
	if l.opts.OnDone != nil {
		l.opts.OnDone(src, out, err)
	}
}

// UserMessage turns a session error into a dialog title and text. Context
// cancellation and busy rejections produce no message.
func UserMessage(err error) (title, message string) {
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, session.ErrBusy):
		return "", ""
	case errors.Is(err, ratio.ErrInvalidDimensions):
		return "Invalid dimensions", "Please enter a whole number greater than zero for both width and height."
	case errors.Is(err, session.ErrCaptureUnavailable):
		return "Capture failed", fmt.Sprintf("The screen could not be captured.\n\n%v", err)
	case errors.Is(err, session.ErrOutputWrite) && errors.Is(err, session.ErrClipboardUnavailable):
		return "Screenshot not delivered", fmt.Sprintf("The screenshot could not be saved or copied.\n\n%v", err)
	case errors.Is(err, session.ErrOutputWrite):
		return "Save failed", fmt.Sprintf("The screenshot was copied to the clipboard but could not be saved.\n\n%v", err)
	case errors.Is(err, session.ErrClipboardUnavailable):
		return "Clipboard unavailable", fmt.Sprintf("The screenshot was saved but could not be copied to the clipboard.\n\n%v", err)
	default:
		return "Screenshot failed", err.Error()
	}
}
