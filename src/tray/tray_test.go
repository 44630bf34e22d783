package tray

import (
	"testing"

	"fyne.io/fyne/v2/test"
)

func TestIconEmbedded(t *testing.T) {
	if len(Icon.Content()) == 0 {
		t.Fatal("Expected embedded icon data")
	}
	if Icon.Name() != "icon.svg" {
		t.Errorf("Unexpected icon name %q", Icon.Name())
	}
}

func TestMenuActions(t *testing.T) {
	var captured, shown int
	tr := newTray(Actions{
		Capture: func() { captured++ },
		Show:    func() { shown++ },
	})

	if len(tr.menu.Items) != 4 {
		t.Fatalf("Expected 4 menu items, got %d", len(tr.menu.Items))
	}
	tr.menu.Items[0].Action()
	tr.menu.Items[1].Action()
	if captured != 1 || shown != 1 {
		t.Errorf("Expected one capture and one show, got %d/%d", captured, shown)
	}
	// missing callbacks are ignored
	tr.menu.Items[3].Action()
	if !tr.menu.Items[3].IsQuit {
		t.Error("Expected the last item to be the quit item")
	}
}

func TestApplyBusy(t *testing.T) {
	tr := newTray(Actions{})
	tr.applyBusy(true)
	if !tr.capture.Disabled || tr.capture.Label != busyLabel {
		t.Errorf("Expected disabled busy item, got %+v", tr.capture)
	}
	tr.applyBusy(false)
	if tr.capture.Disabled || tr.capture.Label != captureLabel {
		t.Errorf("Expected enabled capture item, got %+v", tr.capture)
	}
}

func TestSetupWithoutTray(t *testing.T) {
	app := test.NewApp()
	defer app.Quit()
	if tr := Setup(app, Actions{}); tr != nil {
		// the test driver may or may not expose a tray; either way SetBusy must be safe
		tr.SetBusy(true)
	}
	var nilTray *Tray
	nilTray.SetBusy(true)
}
