package build

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"

	"git.home.luguber.info/inful/formidable/internal/log"
	"git.home.luguber.info/inful/formidable/internal/logfields"
)

// writer writes rendered pages, creating directories as needed.
type writer struct {
	overwrite bool
	verbose   bool
	sink      log.Sink
	stat      func(string) (fs.FileInfo, error)
}

func newWriter(overwrite, verbose bool, sink log.Sink) *writer {
	return &writer{overwrite: overwrite, verbose: verbose, sink: sink, stat: os.Stat}
}

// write stores content at path and reports whether an existing file was replaced.
// The target is checked for existence exactly once; callers use the returned
// flag for logging instead of checking again.
func (w *writer) write(path, content string) (bool, error) {
	_, err := w.stat(path)
	exists := err == nil
	if exists && !w.overwrite {
		return true, fmt.Errorf("%w: %s", ErrOverwriteDisallowed, path)
	}
	if err := w.ensureDir(filepath.Dir(path)); err != nil {
		return exists, err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return exists, fmt.Errorf("write output file: %w", err)
	}
	return exists, nil
}

// ensureDir makes sure dir and its ancestors exist as directories. Concurrent
// creation of the same directory by another writer is not an error.
func (w *writer) ensureDir(dir string) error {
	info, err := w.stat(dir)
	switch {
	case err == nil:
		if !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrNotADirectory, dir)
		}
		return nil
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
	default:
		return fmt.Errorf("stat %s: %w", dir, err)
	}

	if parent := filepath.Dir(dir); parent != dir {
		if err := w.ensureDir(parent); err != nil {
			return err
		}
	}
	if err := os.Mkdir(dir, 0o755); err != nil {
		if !errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
		info, serr := w.stat(dir)
		if serr != nil {
			return fmt.Errorf("stat %s: %w", dir, serr)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: %s", ErrNotADirectory, dir)
		}
		return nil
	}
	if w.verbose {
		w.sink.Info("Created directory", logfields.Path(dir))
	}
	return nil
}
