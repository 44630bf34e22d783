//go:build !windows

package overlay

import (
	"errors"
	"image"
)

// ErrNativeUnsupported is returned by the native surface off Windows.
var ErrNativeUnsupported = errors.New("native overlay surface is only available on Windows")

// NativeSurface is unavailable on this platform.
type NativeSurface struct{}

// NewNativeSurface returns a surface whose Open always fails on this platform.
func NewNativeSurface() *NativeSurface { return &NativeSurface{} }

func (s *NativeSurface) Open(o *Overlay) error { return ErrNativeUnsupported }

// screenCursor has no platform query here; the overlay keeps its initial
// centred cursor until the first pointer event.
func screenCursor() (image.Point, bool) { return image.Point{}, false }
