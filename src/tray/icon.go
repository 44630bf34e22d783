package tray

import (
	_ "embed"

	"fyne.io/fyne/v2"
)

//go:embed icon.svg
var iconSVG []byte

// Icon is the application and tray icon: a bright crop box with a centre
// crosshair over a dimmed square.
var Icon = fyne.NewStaticResource("icon.svg", iconSVG)
