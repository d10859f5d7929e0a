package site

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"git.home.luguber.info/inful/formidable/internal/config"
	ferrors "git.home.luguber.info/inful/formidable/internal/foundation/errors"
)

var (
	// ErrNoSettings is returned when no settings path is given and the
	// environment names none.
	ErrNoSettings = errors.New("no settings module: pass a path or set " + config.EnvSettingsModule)
	// ErrSiteExists is returned by LoadWith for a path already loaded.
	ErrSiteExists = errors.New("a site is already loaded for this settings path")
)

// Loader caches site instances by absolute settings path.
type Loader struct {
	opts []Option

	mu          sync.Mutex
	sites       map[string]*Site
	defaultPath string
}

// NewLoader creates a Loader applying opts to every site it creates.
func NewLoader(opts ...Option) *Loader {
	return &Loader{opts: opts, sites: make(map[string]*Site)}
}

// DefaultPath returns the configured default settings path, falling back to
// the environment.
func (l *Loader) DefaultPath() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.defaultPathLocked()
}

func (l *Loader) defaultPathLocked() string {
	if l.defaultPath != "" {
		return l.defaultPath
	}
	return os.Getenv(config.EnvSettingsModule)
}

func (l *Loader) key(path string) (string, error) {
	if path == "" {
		path = l.defaultPathLocked()
	}
	if path == "" {
		return "", ferrors.ConfigError(ErrNoSettings.Error()).WithCause(ErrNoSettings).Build()
	}
	abs, err := config.ResolvePath(path)
	if err != nil {
		return "", ferrors.ConfigError("invalid settings path").WithCause(err).WithContext("path", path).Build()
	}
	return abs, nil
}

// Load returns the site for path (the default path when empty), creating it
// from the settings file on first use.
func (l *Loader) Load(ctx context.Context, path string) (*Site, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key, err := l.key(path)
	if err != nil {
		return nil, err
	}
	if s, ok := l.sites[key]; ok {
		return s, nil
	}
	settings, err := config.Load(key)
	if err != nil {
		return nil, err
	}
	s, err := New(ctx, settings, l.opts...)
	if err != nil {
		return nil, err
	}
	l.sites[key] = s
	return s, nil
}

// LoadWith creates the site for path from in-memory settings. Relative paths
// in settings resolve against the directory of path. It fails if a site for
// path is already loaded.
func (l *Loader) LoadWith(ctx context.Context, path string, settings *config.Settings, opts ...Option) (*Site, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key, err := l.key(path)
	if err != nil {
		return nil, err
	}
	if _, ok := l.sites[key]; ok {
		return nil, ferrors.ConfigError(fmt.Sprintf("%v: %s", ErrSiteExists, key)).
			WithCause(ErrSiteExists).WithContext("path", key).Build()
	}
	resolved := *settings
	resolved.Path = key
	resolved.Resolve(filepath.Dir(key))
	s, err := New(ctx, &resolved, append(append([]Option(nil), l.opts...), opts...)...)
	if err != nil {
		return nil, err
	}
	l.sites[key] = s
	return s, nil
}

// Configure resets the default site and makes path the default.
func (l *Loader) Configure(path string) error {
	if err := l.Reset(); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.defaultPath = path
	return nil
}

// Reset clears the path caches of the default site and evicts it, so the
// next Load re-reads the settings. Without a default path it does nothing.
func (l *Loader) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.defaultPathLocked() == "" {
		return nil
	}
	key, err := l.key("")
	if err != nil {
		return err
	}
	s, ok := l.sites[key]
	if !ok {
		return nil
	}
	s.Paths().Clear()
	delete(l.sites, key)
	return s.Close()
}

// Close closes every cached site and empties the cache.
func (l *Loader) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	var errs []error
	for key, s := range l.sites {
		errs = append(errs, s.Close())
		delete(l.sites, key)
	}
	return errors.Join(errs...)
}
