package output

import (
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"screen-fixed-crop/src/screenshot"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func testImage(w, h int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

func TestFileName(t *testing.T) {
	ts := time.Date(2024, 3, 7, 9, 5, 2, 0, time.Local)
	if got, want := FileName(ts), "screenshot_20240307_090502.png"; got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestFileSinkSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", DefaultDirName)
	ts := time.Date(2024, 12, 31, 23, 59, 58, 0, time.Local)
	sink := FileSink{Dir: dir, Now: fixedClock(ts)}

	img := testImage(800, 600, color.RGBA{R: 10, G: 20, B: 30, A: 255})
	path, err := sink.Save(img)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if want := filepath.Join(dir, "screenshot_20241231_235958.png"); path != want {
		t.Errorf("Expected path %q, got %q", want, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read saved file: %v", err)
	}
	got, err := screenshot.DecodePNG(data)
	if err != nil {
		t.Fatalf("Saved file is not a PNG: %v", err)
	}
	if got.Bounds().Dx() != 800 || got.Bounds().Dy() != 600 {
		t.Errorf("Expected 800x600, got %v", got.Bounds())
	}
	if c := got.RGBAAt(400, 300); c != (color.RGBA{R: 10, G: 20, B: 30, A: 255}) {
		t.Errorf("Unexpected pixel %v", c)
	}
}

func TestFileSinkSameSecondLastWriteWins(t *testing.T) {
	dir := t.TempDir()
	ts := time.Date(2024, 1, 1, 12, 0, 0, 0, time.Local)
	sink := FileSink{Dir: dir, Now: fixedClock(ts)}

	first, err := sink.Save(testImage(2, 2, color.RGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatalf("first Save failed: %v", err)
	}
	second, err := sink.Save(testImage(3, 3, color.RGBA{G: 255, A: 255}))
	if err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	if first != second {
		t.Fatalf("Expected same path within one second, got %q and %q", first, second)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("Expected 1 file, got %d", len(entries))
	}
	data, _ := os.ReadFile(second)
	img, err := screenshot.DecodePNG(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if img.Bounds().Dx() != 3 {
		t.Errorf("Expected the later capture to be kept, got %v", img.Bounds())
	}
}

func TestFileSinkUnwritableDir(t *testing.T) {
	base := t.TempDir()
	blocker := filepath.Join(base, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	sink := FileSink{Dir: filepath.Join(blocker, "out")}
	if _, err := sink.Save(testImage(1, 1, color.RGBA{A: 255})); err == nil {
		t.Fatal("Expected error when the directory cannot be created")
	}
}

func TestFileSinkNilImage(t *testing.T) {
	if _, err := (FileSink{Dir: t.TempDir()}).Save(nil); err == nil {
		t.Fatal("Expected error for nil image")
	}
}

func TestSinkPublish(t *testing.T) {
	var published image.Image
	s := &Sink{
		Files:   FileSink{Dir: t.TempDir()},
		Publish: func(img image.Image) error { published = img; return nil },
	}
	img := testImage(4, 4, color.RGBA{A: 255})
	if err := s.PublishToClipboard(img); err != nil {
		t.Fatalf("PublishToClipboard failed: %v", err)
	}
	if published != img {
		t.Error("Expected image to reach the publisher")
	}

	boom := errors.New("boom")
	s.Publish = func(image.Image) error { return boom }
	if err := s.PublishToClipboard(img); !errors.Is(err, boom) {
		t.Errorf("Expected publisher error, got %v", err)
	}
}

func TestDefaultDir(t *testing.T) {
	if filepath.Base(DefaultDir()) != DefaultDirName {
		t.Errorf("Expected DefaultDir to end in %q, got %q", DefaultDirName, DefaultDir())
	}
}
