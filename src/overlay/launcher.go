package overlay

import (
	"fmt"
	"image"
	"strings"

	"fyne.io/fyne/v2"

	"screen-fixed-crop/src/ratio"
)

// Backend names accepted by NewSurface.
const (
	BackendFyne   = "fyne"
	BackendNative = "native"
)

// Surface puts an overlay on screen and routes input into it. Open must not
// block until the overlay finishes; the caller waits on Overlay.Result.
type Surface interface {
	Open(o *Overlay) error
}

// NewSurface picks a surface by backend name.
func NewSurface(backend string, app fyne.App) (Surface, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFyne:
		return NewFyneSurface(app), nil
	case BackendNative:
		return NewNativeSurface(), nil
	default:
		return nil, fmt.Errorf("unknown overlay backend %q", backend)
	}
}

// Launcher creates overlays and opens them on a surface.
type Launcher struct {
	Surface Surface
	Options Options
}

// Launch starts a new Active overlay for bitmap on the launcher's surface.
func (l Launcher) Launch(bitmap *image.RGBA, dims ratio.Dimensions) (*Overlay, error) {
	o, err := New(bitmap, dims, l.Options)
	if err != nil {
		return nil, err
	}
	if err := l.Surface.Open(o); err != nil {
		return nil, fmt.Errorf("failed to open overlay surface: %w", err)
	}
	return o, nil
}
