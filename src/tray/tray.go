package tray

import (
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

const (
	captureLabel = "Capture Screen"
	busyLabel    = "Capturing..."
)

// Actions are the tray menu callbacks. They run on the UI thread.
type Actions struct {
	Capture func()
	Show    func()
	Quit    func()
}

// Tray owns the system tray menu.
type Tray struct {
	menu    *fyne.Menu
	capture *fyne.MenuItem
	desk    desktop.App
}

// Setup installs the tray menu. It returns nil when the app has no system
// tray (mobile or test drivers).
func Setup(app fyne.App, actions Actions) *Tray {
	desk, ok := app.(desktop.App)
	if !ok {
		log.Printf("TRAY: system tray not supported by this driver")
		return nil
	}
	t := newTray(actions)
	t.desk = desk
	desk.SetSystemTrayIcon(Icon)
	desk.SetSystemTrayMenu(t.menu)
	return t
}

func newTray(actions Actions) *Tray {
	t := &Tray{}
	t.capture = fyne.NewMenuItem(captureLabel, call(actions.Capture))
	show := fyne.NewMenuItem("Show", call(actions.Show))
	quit := fyne.NewMenuItem("Quit", call(actions.Quit))
	quit.IsQuit = true
	t.menu = fyne.NewMenu("Screenshot Selector", t.capture, show, fyne.NewMenuItemSeparator(), quit)
	return t
}

// SetBusy greys out the capture entry while a session runs. Safe from any
// goroutine; a nil Tray ignores it.
func (t *Tray) SetBusy(busy bool) {
	if t == nil {
		return
	}
	fyne.Do(func() { t.applyBusy(busy) })
}

func (t *Tray) applyBusy(busy bool) {
	t.capture.Disabled = busy
	if busy {
		t.capture.Label = busyLabel
	} else {
		t.capture.Label = captureLabel
	}
	if t.desk != nil {
		t.desk.SetSystemTrayMenu(t.menu)
	}
}

func call(fn func()) func() {
	return func() {
		if fn != nil {
			fn()
		}
	}
}
