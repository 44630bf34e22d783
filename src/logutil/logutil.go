package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

const (
	LogFileName  = "screen_crop_debug.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
)

// Options selects where the standard logger writes.
type Options struct {
	// FileLogging enables the rotating debug log.
	FileLogging bool
	// Dir holds the log file; empty means the working directory.
	Dir string
	// Console, when set, receives a copy of every line (e.g. os.Stderr for -v).
	Console io.Writer
}

// Setup points the standard logger at the rotating log file and/or the
// console. With neither enabled, logs are discarded to keep stdout clean.
func Setup(opts Options) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	var writers []io.Writer
	if opts.FileLogging {
		w, err := newRotatingWriter(filepath.Join(opts.Dir, LogFileName), maxSizeBytes)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		} else {
			writers = append(writers, w)
		}
	}
	if opts.Console != nil {
		writers = append(writers, opts.Console)
	}

	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}
}

// rotatingWriter appends to path and rotates it to path.1 .. path.3 once the
// next write would pass maxSize.
type rotatingWriter struct {
	path    string
	maxSize int64
	f       *os.File
}

func newRotatingWriter(path string, maxSize int64) (*rotatingWriter, error) {
	w := &rotatingWriter{path: path, maxSize: maxSize}
	w.rotateIfNeeded(0)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, err
	}
	w.f = f
	return w, nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	// naive rotation check per write
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > w.maxSize {
		_ = w.f.Close()
		w.rotateIfNeeded(int64(len(p)))
		nf, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return 0, err
		}
		w.f = nf
	}
	return w.f.Write(p)
}

func (w *rotatingWriter) Close() error { return w.f.Close() }

func (w *rotatingWriter) rotateIfNeeded(incoming int64) {
	st, err := os.Stat(w.path)
	if err != nil || st.Size()+incoming <= w.maxSize {
		return
	}
	// drop the oldest, shift the rest, move current to .1
	_ = os.Remove(w.archiveName(maxArchives))
	for i := maxArchives - 1; i >= 1; i-- {
		_ = os.Rename(w.archiveName(i), w.archiveName(i+1))
	}
	_ = os.Rename(w.path, w.archiveName(1))
}

func (w *rotatingWriter) archiveName(n int) string { return fmt.Sprintf("%s.%d", w.path, n) }
