package notification

import (
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// CaptureCompleted is shown after a selection was saved and copied.
const CaptureCompleted = "Screenshot completed and copied to clipboard!"

// Title is the window title of informational messages.
const Title = "Notification"

const maxMessageLen = 200

// Notifier shows small transient windows. At most one is visible; a new
// message replaces the previous one.
type Notifier struct {
	app     fyne.App
	timeout time.Duration

	mu      sync.Mutex
	current fyne.Window
}

// New returns a Notifier whose informational messages close after timeout.
// A zero timeout keeps them open until dismissed.
func New(app fyne.App, timeout time.Duration) *Notifier {
	return &Notifier{app: app, timeout: timeout}
}

// Notify shows an informational message that closes on its own, on OK or on Escape.
func (n *Notifier) Notify(message string) {
	fyne.Do(func() { n.show(Title, message, n.timeout) })
}

// NotifyError shows an error that stays up until the user dismisses it.
func (n *Notifier) NotifyError(title, message string) {
	log.Printf("%s: %s", title, message)
	fyne.Do(func() { n.show(title, message, 0) })
}

// Close dismisses the visible notification, if any.
func (n *Notifier) Close() {
	fyne.Do(func() { n.closeWindow(nil) })
}

// Visible reports whether a notification window is open.
func (n *Notifier) Visible() bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current != nil
}

func (n *Notifier) show(title, message string, timeout time.Duration) {
	n.closeWindow(nil)

	w := n.app.NewWindow(title)
	label := widget.NewLabel(truncate(message))
	label.Wrapping = fyne.TextWrapWord
	ok := widget.NewButton("OK", func() { n.closeWindow(w) })
	w.SetContent(container.NewPadded(container.NewVBox(label, ok)))
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) { n.handleKey(w, ev) })
	w.SetOnClosed(func() { n.forget(w) })
	w.Resize(fyne.NewSize(320, 0))
	w.SetFixedSize(true)
	w.CenterOnScreen()

	n.mu.Lock()
	n.current = w
	n.mu.Unlock()
	w.Show()
	w.RequestFocus()

	if timeout > 0 {
		time.AfterFunc(timeout, func() {
			fyne.Do(func() { n.closeWindow(w) })
		})
	}
}

func (n *Notifier) handleKey(w fyne.Window, ev *fyne.KeyEvent) {
	if ev.Name == fyne.KeyEscape {
		n.closeWindow(w)
	}
}

// closeWindow closes w if it is still current; nil means whatever is current.
func (n *Notifier) closeWindow(w fyne.Window) {
	n.mu.Lock()
	cur := n.current
	if cur == nil || (w != nil && w != cur) {
		n.mu.Unlock()
		return
	}
	n.current = nil
	n.mu.Unlock()
	cur.Close()
}

func (n *Notifier) forget(w fyne.Window) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.current == w {
		n.current = nil
	}
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= maxMessageLen {
		return s
	}
	return string(r[:maxMessageLen]) + "..."
}
