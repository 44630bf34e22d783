package clipboard

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.design/x/clipboard"

	"screen-fixed-crop/src/screenshot"
)

// ErrUnavailable is returned when the system clipboard could not be
// initialised (no display, missing platform support).
var ErrUnavailable = errors.New("clipboard unavailable")

var (
	writeMu  sync.Mutex
	initOnce sync.Once
	initErr  error
)

// Init prepares the system clipboard. It is safe to call more than once; the
// first result is remembered.
func Init() error {
	initOnce.Do(func() {
		if err := clipboard.Init(); err != nil {
			initErr = fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	})
	return initErr
}

// WriteImage replaces the clipboard content with PNG-encoded image data.
// The library converts it to the platform's native bitmap format.
func WriteImage(pngData []byte) error {
	if len(pngData) == 0 {
		return errors.New("empty image data")
	}
	if err := Init(); err != nil {
		return err
	}
	// mutex-guarded so parallel writers cannot interleave
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtImage, pngData)
	return nil
}

// PublishImage encodes img as PNG and writes it to the clipboard.
func PublishImage(img image.Image) error {
	if img == nil {
		return errors.New("nil image")
	}
	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return err
	}
	return WriteImage(data)
}

// ReadImage returns the PNG bytes currently on the clipboard, or nil.
func ReadImage() ([]byte, error) {
	if err := Init(); err != nil {
		return nil, err
	}
	return clipboard.Read(clipboard.FmtImage), nil
}
