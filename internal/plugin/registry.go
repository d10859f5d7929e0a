package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/mod/semver"

	ferrors "git.home.luguber.info/inful/formidable/internal/foundation/errors"
	"git.home.luguber.info/inful/formidable/internal/logfields"
)

// Config names a plugin and its options, as written in the settings file.
type Config struct {
	Name    string
	Options map[string]any
}

// Registry manages plugin registration and discovery.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]map[string]Plugin // map[name]map[version]Plugin
}

// NewRegistry creates a new empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]map[string]Plugin),
	}
}

// Register adds a plugin to the registry.
// Returns an error if a plugin with the same name and version already exists.
func (r *Registry) Register(plugin Plugin) error {
	if plugin == nil {
		return fmt.Errorf("cannot register nil plugin")
	}

	metadata := plugin.Metadata()
	if err := metadata.Validate(); err != nil {
		return fmt.Errorf("invalid plugin metadata: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.plugins[metadata.Name] == nil {
		r.plugins[metadata.Name] = make(map[string]Plugin)
	}
	if _, exists := r.plugins[metadata.Name][metadata.Version]; exists {
		return fmt.Errorf("plugin %s@%s already registered", metadata.Name, metadata.Version)
	}

	r.plugins[metadata.Name][metadata.Version] = plugin
	return nil
}

// Get retrieves a specific plugin by name and version.
func (r *Registry) Get(name, version string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, ok := r.plugins[name]
	if !ok {
		return nil, fmt.Errorf("plugin %s not found", name)
	}
	plugin, ok := versions[version]
	if !ok {
		return nil, fmt.Errorf("plugin %s@%s not found", name, version)
	}
	return plugin, nil
}

// GetLatest retrieves the highest registered semantic version of a plugin.
func (r *Registry) GetLatest(name string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	versions, ok := r.plugins[name]
	if !ok || len(versions) == 0 {
		return nil, fmt.Errorf("plugin %s not found", name)
	}

	latest := ""
	for version := range versions {
		if latest == "" || semver.Compare(version, latest) > 0 {
			latest = version
		}
	}
	return versions[latest], nil
}

// List returns all registered plugins ordered by name and version.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []Plugin
	for _, versions := range r.plugins {
		for _, plugin := range versions {
			result = append(result, plugin)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i].Metadata(), result[j].Metadata()
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return semver.Compare(a.Version, b.Version) < 0
	})
	return result
}

// Has checks if a plugin with the given name exists (any version).
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.plugins[name]
	return ok
}

// Unregister removes a plugin from the registry.
func (r *Registry) Unregister(name, version string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	versions, ok := r.plugins[name]
	if !ok {
		return fmt.Errorf("plugin %s not found", name)
	}
	if _, ok := versions[version]; !ok {
		return fmt.Errorf("plugin %s@%s not found", name, version)
	}

	delete(versions, version)
	if len(versions) == 0 {
		delete(r.plugins, name)
	}
	return nil
}

// Count returns the total number of registered plugins (all versions).
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, versions := range r.plugins {
		count += len(versions)
	}
	return count
}

// Setup validates and sets up the configured plugins against host, in
// configuration order. The first failure stops setup and is returned as a
// classified plugin error.
func (r *Registry) Setup(ctx context.Context, host Host, logger *slog.Logger, configs []Config) error {
	for _, cfg := range configs {
		p, err := r.GetLatest(cfg.Name)
		if err != nil {
			return setupError(NewPluginError(cfg.Name, "lookup", err))
		}
		if err := p.Validate(cfg.Options); err != nil {
			return setupError(NewPluginError(cfg.Name, "validate", err))
		}
		pc := NewPluginContext(ctx, logger, host, cfg.Name, cfg.Options)
		if err := p.Setup(ctx, pc); err != nil {
			return setupError(NewPluginError(cfg.Name, "setup", err))
		}
		pc.Logger.Debug("Plugin set up", slog.String("version", p.Metadata().Version))
	}
	return nil
}

func setupError(err *PluginError) error {
	return ferrors.PluginError(err.Error()).
		WithCause(err).
		WithContext(logfields.KeyPlugin, err.PluginName).
		Build()
}
