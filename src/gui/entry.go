package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// dimensionEntry is a single-line entry that hands focus to its sibling when
// the caret runs off either end with the arrow keys.
type dimensionEntry struct {
	widget.Entry
	field Field
	jump  func(from Field)
}

func newDimensionEntry(field Field, jump func(from Field)) *dimensionEntry {
	e := &dimensionEntry{field: field, jump: jump}
	e.ExtendBaseWidget(e)
	e.SetPlaceHolder("px")
	return e
}

func (e *dimensionEntry) TypedKey(key *fyne.KeyEvent) {
	switch key.Name {
	case fyne.KeyRight:
		if e.atEnd() {
			e.jump(e.field)
			return
		}
	case fyne.KeyLeft:
		if e.CursorColumn == 0 {
			e.jump(e.field)
			return
		}
	}
	e.Entry.TypedKey(key)
}

func (e *dimensionEntry) atEnd() bool {
	return e.CursorColumn >= len([]rune(e.Text))
}
