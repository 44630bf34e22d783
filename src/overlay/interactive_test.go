package overlay

import (
	"os"
	"runtime"
	"testing"
	"time"

	"screen-fixed-crop/src/ratio"
	"screen-fixed-crop/src/screenshot"
)

// TestNativeSurfaceInteractive opens the real overlay on the primary display.
// Move the box and click (or press Escape) to finish.
func TestNativeSurfaceInteractive(t *testing.T) {
	if runtime.GOOS != "windows" {
		t.Skip("interactive overlay test is Windows-only")
	}
	if os.Getenv("SCREEN_CROP_INTERACTIVE_TESTS") != "1" {
		t.Skip("set SCREEN_CROP_INTERACTIVE_TESTS=1 to run interactive overlay test")
	}

	bitmap, err := screenshot.CapturePrimary()
	if err != nil {
		t.Fatalf("CapturePrimary failed: %v", err)
	}

	dims := ratio.Dimensions{Width: 800, Height: 600}
	l := Launcher{Surface: NewNativeSurface(), Options: DefaultOptions()}
	o, err := l.Launch(bitmap, dims)
	if err != nil {
		t.Fatalf("Launch failed: %v", err)
	}

	select {
	case res := <-o.Result():
		if res.Cancelled {
			t.Log("Overlay cancelled")
			return
		}
		if res.Image.Bounds().Dx() != dims.Width || res.Image.Bounds().Dy() != dims.Height {
			t.Errorf("Expected %v crop, got %v", dims, res.Image.Bounds())
		}
	case <-time.After(2 * time.Minute):
		o.Cancel()
		t.Fatal("Timed out waiting for overlay result")
	}
}
