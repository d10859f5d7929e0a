package modules

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	gocache "github.com/patrickmn/go-cache"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/formidable/internal/logfields"
	"git.home.luguber.info/inful/formidable/internal/paths"
)

// Loader resolves and loads modules by logical name.
type Loader interface {
	// Resolve returns the source path of a module, or the name itself for an installed one.
	Resolve(name string) (string, error)
	Load(ctx context.Context, name string) (*Module, error)
}

// FileLoader looks modules up in its installed table first and falls back to
// YAML files under the resolver root. Loaded files are cached until the
// resolver is cleared.
type FileLoader struct {
	resolver *paths.Resolver
	cache    *gocache.Cache

	mu        sync.RWMutex
	installed map[string]any
}

// NewFileLoader creates a loader backed by resolver and subscribes to its Clear.
func NewFileLoader(resolver *paths.Resolver) *FileLoader {
	l := &FileLoader{
		resolver:  resolver,
		cache:     gocache.New(gocache.NoExpiration, 0),
		installed: make(map[string]any),
	}
	resolver.OnClear(l.cache.Flush)
	return l
}

// Install registers value under name. Installed modules shadow files of the same name.
func (l *FileLoader) Install(name string, value any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.installed[name] = value
}

func (l *FileLoader) lookupInstalled(name string) (any, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	v, ok := l.installed[name]
	return v, ok
}

// Resolve implements Loader.
func (l *FileLoader) Resolve(name string) (string, error) {
	if _, ok := l.lookupInstalled(name); ok {
		return name, nil
	}
	return l.resolver.Module(name)
}

// Load implements Loader.
func (l *FileLoader) Load(ctx context.Context, name string) (*Module, error) {
	if v, ok := l.lookupInstalled(name); ok {
		return &Module{Name: name, Value: v}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := l.resolver.Module(name)
	if err != nil {
		return nil, err
	}
	if cached, ok := l.cache.Get(path); ok {
		return cached.(*Module), nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read module %q: %w", name, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse module %q (%s): %w", name, path, err)
	}
	m := &Module{Name: name, Path: path}
	if doc.Kind != 0 {
		m.node = &doc
		if err := doc.Decode(&m.Value); err != nil {
			return nil, fmt.Errorf("parse module %q (%s): %w", name, path, err)
		}
	}
	l.cache.Set(path, m, gocache.NoExpiration)
	slog.Debug("Loaded module", logfields.Module(name), logfields.Path(path))
	return m, nil
}

// IsNotFound reports whether err means the module does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, paths.ErrModuleNotFound)
}
