package output

import (
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	"screen-fixed-crop/src/clipboard"
	"screen-fixed-crop/src/screenshot"
)

// DefaultDirName is the folder created under the working directory when no
// output directory is configured.
const DefaultDirName = "Screenshot Outputs"

const fileTimeLayout = "20060102_150405"

// FileName returns the base name used for a capture taken at t.
func FileName(t time.Time) string {
	return "screenshot_" + t.Format(fileTimeLayout) + ".png"
}

// DefaultDir resolves DefaultDirName against the current working directory.
func DefaultDir() string {
	wd, err := os.Getwd()
	if err != nil {
		return DefaultDirName
	}
	return filepath.Join(wd, DefaultDirName)
}

// FileSink writes captures as timestamped PNG files. Two captures within the
// same second map to the same name and the later one replaces the earlier.
type FileSink struct {
	Dir string
	Now func() time.Time
}

// Save encodes img and writes it into Dir, creating the directory if needed.
// It returns the path written.
func (s FileSink) Save(img image.Image) (string, error) {
	if img == nil {
		return "", errors.New("nil image")
	}
	dir := s.Dir
	if dir == "" {
		dir = DefaultDir()
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	data, err := screenshot.EncodePNG(img)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(dir, FileName(now()))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	log.Printf("OUTPUT: saved %dx%d capture to %s", img.Bounds().Dx(), img.Bounds().Dy(), path)
	return path, nil
}

// Sink delivers a capture to disk and to the clipboard.
type Sink struct {
	Files   FileSink
	Publish func(image.Image) error
}

// New returns a Sink writing into dir and publishing to the system clipboard.
func New(dir string) *Sink {
	return &Sink{
		Files:   FileSink{Dir: dir},
		Publish: clipboard.PublishImage,
	}
}

// Save writes img through the file sink.
func (s *Sink) Save(img image.Image) (string, error) {
	return s.Files.Save(img)
}

// PublishToClipboard replaces the clipboard content with img.
func (s *Sink) PublishToClipboard(img image.Image) error {
	publish := s.Publish
	if publish == nil {
		publish = clipboard.PublishImage
	}
	if err := publish(img); err != nil {
		return err
	}
	log.Printf("OUTPUT: published %dx%d capture to clipboard", img.Bounds().Dx(), img.Bounds().Dy())
	return nil
}
