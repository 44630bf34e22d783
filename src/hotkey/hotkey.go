package hotkey

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	gohook "github.com/robotn/gohook"
)

// ErrEmptyCombo is returned by Parse for a blank combination.
var ErrEmptyCombo = errors.New("empty hotkey combination")

// Combo is a parsed key combination such as "Ctrl+Alt+S".
type Combo struct {
	Text string
	keys []comboKey
}

type comboKey struct {
	name     string
	rawcodes []uint16
}

// Parse converts "Ctrl+Alt+s" into a Combo. Every part must map to a key.
func Parse(text string) (Combo, error) {
	names := parseHotkey(text)
	if len(names) == 0 {
		return Combo{}, ErrEmptyCombo
	}
	c := Combo{Text: text}
	for _, name := range names {
		codes := keyNameToRawcodes(name)
		if len(codes) == 0 {
			return Combo{}, fmt.Errorf("unknown key %q in hotkey %q", name, text)
		}
		c.keys = append(c.keys, comboKey{name: name, rawcodes: codes})
	}
	return c, nil
}

// Keys returns the normalised key names.
func (c Combo) Keys() []string {
	out := make([]string, len(c.keys))
	for i, k := range c.keys {
		out[i] = k.name
	}
	return out
}

// matcher tracks which keys of a combo are held. Fire reports true once per
// full press of the combination.
type matcher struct {
	mu      sync.Mutex
	combo   Combo
	pressed []bool
}

func newMatcher(c Combo) *matcher {
	return &matcher{combo: c, pressed: make([]bool, len(c.keys))}
}

func (m *matcher) keyDown(rawcode uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mark(rawcode, true)
	for _, p := range m.pressed {
		if !p {
			return false
		}
	}
	// reset so holding the keys does not repeat
	for i := range m.pressed {
		m.pressed[i] = false
	}
	return true
}

func (m *matcher) keyUp(rawcode uint16) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mark(rawcode, false)
}

func (m *matcher) mark(rawcode uint16, down bool) {
	for i, k := range m.combo.keys {
		for _, code := range k.rawcodes {
			if code == rawcode {
				m.pressed[i] = down
				break
			}
		}
	}
}

var listenMu sync.Mutex

// Listen registers a global hook and calls callback from the hook goroutine
// each time the combination is pressed. The returned stop function ends the
// hook.
func Listen(text string, callback func()) (stop func(), err error) {
	combo, err := Parse(text)
	if err != nil {
		return nil, err
	}
	m := newMatcher(combo)

	listenMu.Lock()
	evChan := gohook.Start()
	listenMu.Unlock()
	if evChan == nil {
		return nil, errors.New("gohook.Start returned nil channel")
	}
	log.Printf("HOTKEY: listening for %s %v", combo.Text, combo.Keys())

	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("HOTKEY: PANIC in hook goroutine: %v", r)
			}
		}()
		for ev := range evChan {
			switch ev.Kind {
			case gohook.KeyDown:
				if m.keyDown(ev.Rawcode) {
					log.Printf("HOTKEY: %s pressed", combo.Text)
					if callback != nil {
						callback()
					}
				}
			case gohook.KeyUp:
				m.keyUp(ev.Rawcode)
			}
		}
		log.Printf("HOTKEY: event channel closed")
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			listenMu.Lock()
			defer listenMu.Unlock()
			gohook.End()
		})
	}, nil
}

// parseHotkey converts a hotkey string like "Ctrl+Alt+q" to normalized key names
func parseHotkey(hotkeyConfig string) []string {
	var keys []string
	for _, part := range strings.Split(strings.ToLower(hotkeyConfig), "+") {
		part = strings.TrimSpace(part)
		switch part {
		case "":
			continue
		case "control":
			keys = append(keys, "ctrl")
		case "win", "cmd", "super":
			keys = append(keys, "cmd")
		default:
			keys = append(keys, part)
		}
	}
	return keys
}

var namedKeys = map[string][]uint16{
	// modifiers: left and right variants
	"ctrl":  {162, 163}, // VK_LCONTROL, VK_RCONTROL
	"alt":   {164, 165}, // VK_LMENU, VK_RMENU
	"shift": {160, 161}, // VK_LSHIFT, VK_RSHIFT
	"cmd":   {91, 92},   // VK_LWIN, VK_RWIN

	"space":       {32},
	"enter":       {13},
	"return":      {13},
	"esc":         {27},
	"escape":      {27},
	"tab":         {9},
	"backspace":   {8},
	"delete":      {46},
	"del":         {46},
	"insert":      {45},
	"ins":         {45},
	"home":        {36},
	"end":         {35},
	"pageup":      {33},
	"pgup":        {33},
	"pagedown":    {34},
	"pgdn":        {34},
	"left":        {37},
	"up":          {38},
	"right":       {39},
	"down":        {40},
	"printscreen": {44}, // VK_SNAPSHOT
	"prtsc":       {44},
}

// keyNameToRawcodes maps a key name to its Windows virtual key codes.
func keyNameToRawcodes(keyName string) []uint16 {
	keyName = strings.ToLower(strings.TrimSpace(keyName))
	if codes, ok := namedKeys[keyName]; ok {
		return codes
	}
	if len(keyName) == 1 {
		c := keyName[0]
		switch {
		case c >= 'a' && c <= 'z':
			return []uint16{uint16(c-'a') + 65} // VK_A..VK_Z
		case c >= '0' && c <= '9':
			return []uint16{uint16(c-'0') + 48}
		}
	}
	var n int
	if _, err := fmt.Sscanf(keyName, "f%d", &n); err == nil && n >= 1 && n <= 24 && keyName == fmt.Sprintf("f%d", n) {
		return []uint16{uint16(111 + n)} // VK_F1 = 112
	}
	log.Printf("HOTKEY: unknown key name '%s'", keyName)
	return nil
}
