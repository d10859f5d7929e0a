package paths

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/gobwas/glob"
)

// GlobStream walks a directory tree and emits paths matching a glob as they are found.
// The walk stops when the stream is stopped, its context ends, or the tree is exhausted.
type GlobStream struct {
	pattern string
	matches chan string
	done    chan struct{}
	cancel  context.CancelFunc
	stopped atomic.Bool
	once    sync.Once
	err     error
}

// NewGlobStream compiles pattern (slash separated, relative to root) and starts walking.
// A leading "**/" also matches zero directories.
func NewGlobStream(ctx context.Context, root, pattern string) (*GlobStream, error) {
	pattern = strings.TrimLeft(filepath.ToSlash(pattern), "/")
	g, err := glob.Compile(pattern, '/')
	if err != nil {
		return nil, err
	}
	zeroDirs := strings.HasPrefix(pattern, "**/")
	match := func(rel string) bool {
		return g.Match(rel) || (zeroDirs && g.Match("/"+rel))
	}

	ctx, cancel := context.WithCancel(ctx)
	s := &GlobStream{
		pattern: pattern,
		matches: make(chan string),
		done:    make(chan struct{}),
		cancel:  cancel,
	}
	go s.walk(ctx, root, staticPrefix(pattern), match)
	return s, nil
}

// staticPrefix returns the leading directories of pattern that contain no glob syntax.
func staticPrefix(pattern string) string {
	parts := strings.Split(pattern, "/")
	var prefix []string
	for _, part := range parts[:len(parts)-1] {
		if strings.ContainsAny(part, `*?[]{}\`) {
			break
		}
		prefix = append(prefix, part)
	}
	return strings.Join(prefix, "/")
}

func (s *GlobStream) walk(ctx context.Context, root, prefix string, match func(string) bool) {
	defer close(s.done)
	defer close(s.matches)
	defer s.cancel()

	start := filepath.Join(root, filepath.FromSlash(prefix))
	if _, err := os.Stat(start); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.err = err
		}
		return
	}
	err := filepath.WalkDir(start, func(p string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return filepath.SkipAll
		}
		if err != nil {
			if p == start {
				return err
			}
			return nil
		}
		if d.IsDir() && p != start && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		if !match(filepath.ToSlash(rel)) {
			return nil
		}
		select {
		case s.matches <- p:
			return nil
		case <-ctx.Done():
			return filepath.SkipAll
		}
	})
	if err != nil && s.err == nil {
		s.err = err
	}
}

// Pattern returns the compiled glob source.
func (s *GlobStream) Pattern() string { return s.pattern }

// Matches yields candidate paths; it is closed when the walk ends.
func (s *GlobStream) Matches() <-chan string { return s.matches }

// Stop aborts the walk. It is safe to call more than once and after completion.
func (s *GlobStream) Stop() {
	s.once.Do(func() {
		s.stopped.Store(true)
		s.cancel()
	})
}

// Stopped reports whether Stop was called.
func (s *GlobStream) Stopped() bool { return s.stopped.Load() }

// Done is closed once the walk goroutine has exited.
func (s *GlobStream) Done() <-chan struct{} { return s.done }

// Err returns the walk error, valid after Done is closed.
func (s *GlobStream) Err() error {
	<-s.done
	return s.err
}

func globQuote(s string) string {
	return glob.QuoteMeta(s)
}
