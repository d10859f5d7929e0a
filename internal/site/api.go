package site

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrAPIExists is returned when registering an API name twice.
var ErrAPIExists = errors.New("api already registered")

// API is the site's named registry plugins use to expose helpers.
type API struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewAPI creates an empty API registry.
func NewAPI() *API {
	return &API{values: make(map[string]any)}
}

// Register stores value under name.
func (a *API) Register(name string, value any) error {
	if name == "" {
		return fmt.Errorf("api name is required")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, exists := a.values[name]; exists {
		return fmt.Errorf("%w: %q", ErrAPIExists, name)
	}
	a.values[name] = value
	return nil
}

// Get returns the value registered under name.
func (a *API) Get(name string) (any, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	v, ok := a.values[name]
	return v, ok
}

// Names lists the registered names in order.
func (a *API) Names() []string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	names := make([]string, 0, len(a.values))
	for name := range a.values {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
