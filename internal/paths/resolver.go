package paths

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	gocache "github.com/patrickmn/go-cache"

	"git.home.luguber.info/inful/formidable/internal/logfields"
	"git.home.luguber.info/inful/formidable/internal/metrics"
)

// DefaultModuleExtension is the conventional source extension for local modules.
const DefaultModuleExtension = ".yaml"

// DefaultTemplates is the template search list used when none is configured.
var DefaultTemplates = []string{"**/templates"}

// Options configures a Resolver.
type Options struct {
	// Root is the directory modules are resolved against.
	Root string
	// TemplatesRoot anchors the template globs; defaults to Root.
	TemplatesRoot string
	// Templates is the ordered glob list, highest priority first.
	Templates []string
	// Extension is appended to module names; defaults to DefaultModuleExtension.
	Extension string
	Recorder  metrics.Recorder
}

type entry struct {
	path string
	err  error
}

// Resolver resolves and caches module and template paths for one site instance.
type Resolver struct {
	root          string
	templatesRoot string
	templates     []string
	ext           string
	recorder      metrics.Recorder

	modules   *gocache.Cache
	templateC *gocache.Cache

	mu      sync.Mutex
	onClear []func()

	// seams for tests
	stat       func(string) (fs.FileInfo, error)
	streamHook func(*GlobStream)
}

// New creates a Resolver with empty caches.
func New(opts Options) *Resolver {
	r := &Resolver{
		root:          filepath.Clean(opts.Root),
		templatesRoot: opts.TemplatesRoot,
		templates:     opts.Templates,
		ext:           opts.Extension,
		recorder:      opts.Recorder,
		modules:       gocache.New(gocache.NoExpiration, 0),
		templateC:     gocache.New(gocache.NoExpiration, 0),
		stat:          os.Stat,
	}
	if r.templatesRoot == "" {
		r.templatesRoot = r.root
	}
	if len(r.templates) == 0 {
		r.templates = DefaultTemplates
	}
	if r.ext == "" {
		r.ext = DefaultModuleExtension
	}
	if r.recorder == nil {
		r.recorder = metrics.NoopRecorder{}
	}
	return r
}

// Root returns the module root directory.
func (r *Resolver) Root() string { return r.root }

// Join joins parts under the root. Absolute parts are treated as relative.
func (r *Resolver) Join(parts ...string) string {
	all := make([]string, 0, len(parts)+1)
	all = append(all, r.root)
	for _, p := range parts {
		all = append(all, strings.TrimLeft(p, `/\`))
	}
	return filepath.Clean(filepath.Join(all...))
}

// Module resolves a logical module name to an existing regular file.
func (r *Resolver) Module(name string) (string, error) {
	if cached, ok := r.modules.Get(name); ok {
		e := cached.(entry)
		return e.path, e.err
	}
	candidate := r.Join(filepath.Dir(name), strings.TrimSuffix(filepath.Base(name), r.ext)) + r.ext
	e := entry{path: candidate}
	info, err := r.stat(candidate)
	switch {
	case err != nil:
		e = entry{err: fmt.Errorf("%w: %q (%s)", ErrModuleNotFound, name, candidate)}
	case !info.Mode().IsRegular():
		e = entry{err: fmt.Errorf("%w: %q (%s is not a regular file)", ErrModuleNotFound, name, candidate)}
	}
	r.modules.Set(name, e, gocache.NoExpiration)
	return e.path, e.err
}

// Template resolves a template file name, trying each glob in order (synchronous form).
func (r *Resolver) Template(name string) (string, error) {
	return r.lookupTemplate(name, func() entry {
		for _, pattern := range r.templates {
			s, err := NewGlobStream(context.Background(), r.templatesRoot, pattern+"/"+quote(name))
			if err != nil {
				return entry{err: err}
			}
			if r.streamHook != nil {
				r.streamHook(s)
			}
			path, err := r.firstFile(context.Background(), s)
			if err != nil {
				return entry{err: err}
			}
			if path != "" {
				return entry{path: path}
			}
		}
		return entry{err: fmt.Errorf("%w: %q", ErrTemplateNotFound, name)}
	})
}

// FindTemplate resolves a template file name searching every glob concurrently.
// Results are taken in glob priority order; once one glob yields a file the
// remaining searches are stopped.
func (r *Resolver) FindTemplate(ctx context.Context, name string) (string, error) {
	var ctxErr error
	path, err := r.lookupTemplate(name, func() entry {
		e, cerr := r.searchConcurrently(ctx, name)
		ctxErr = cerr
		return e
	})
	if ctxErr != nil {
		// Cancellation is not a lookup result.
		r.templateC.Delete(name)
	}
	return path, err
}

func (r *Resolver) searchConcurrently(ctx context.Context, name string) (entry, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type result struct {
		path string
		err  error
	}
	streams := make([]*GlobStream, 0, len(r.templates))
	results := make([]chan result, 0, len(r.templates))
	stopAll := func() {
		for _, s := range streams {
			s.Stop()
		}
	}
	for _, pattern := range r.templates {
		s, err := NewGlobStream(ctx, r.templatesRoot, pattern+"/"+quote(name))
		if err != nil {
			stopAll()
			return entry{err: err}, nil
		}
		if r.streamHook != nil {
			r.streamHook(s)
		}
		ch := make(chan result, 1)
		streams = append(streams, s)
		results = append(results, ch)
		go func() {
			p, err := r.firstFile(ctx, s)
			ch <- result{path: p, err: err}
		}()
	}

	for i := range results {
		var res result
		select {
		case res = <-results[i]:
		case <-ctx.Done():
			stopAll()
			return entry{err: ctx.Err()}, ctx.Err()
		}
		if res.path == "" && ctx.Err() != nil {
			stopAll()
			return entry{err: ctx.Err()}, ctx.Err()
		}
		if res.err != nil {
			stopAll()
			return entry{err: res.err}, nil
		}
		if res.path != "" {
			stopAll()
			return entry{path: res.path}, nil
		}
	}
	return entry{err: fmt.Errorf("%w: %q", ErrTemplateNotFound, name)}, nil
}

// firstFile checks the candidates of one stream one after another and returns
// the first regular file, stopping the stream.
func (r *Resolver) firstFile(ctx context.Context, s *GlobStream) (string, error) {
	for candidate := range s.Matches() {
		info, err := r.stat(candidate)
		if err == nil && info.Mode().IsRegular() {
			s.Stop()
			return candidate, nil
		}
	}
	if ctx.Err() != nil || s.Stopped() {
		return "", nil
	}
	return "", s.Err()
}

func (r *Resolver) lookupTemplate(name string, search func() entry) (string, error) {
	if cached, ok := r.templateC.Get(name); ok {
		r.recorder.IncTemplateLookup(true)
		e := cached.(entry)
		return e.path, e.err
	}
	r.recorder.IncTemplateLookup(false)
	e := search()
	r.templateC.Set(name, e, gocache.NoExpiration)
	if e.err == nil {
		slog.Debug("Resolved template", logfields.Template(name), logfields.Path(e.path))
	}
	return e.path, e.err
}

// OnClear registers fn to run whenever Clear is called.
func (r *Resolver) OnClear(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onClear = append(r.onClear, fn)
}

// Clear drops every cached path, including negative results, and runs the OnClear hooks.
func (r *Resolver) Clear() {
	r.modules.Flush()
	r.templateC.Flush()
	r.mu.Lock()
	hooks := append([]func(){}, r.onClear...)
	r.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

func quote(name string) string {
	return globQuote(filepath.ToSlash(name))
}
