package urls

import (
	"context"
	"fmt"
	"sync"

	"git.home.luguber.info/inful/formidable/internal/modules"
)

// ModuleSource loads modules by logical name. modules.Loader satisfies it.
type ModuleSource interface {
	Load(ctx context.Context, name string) (*modules.Module, error)
}

// IncludeFunc is the Go form of a route-table module: it registers patterns on r.
type IncludeFunc func(ctx context.Context, r *Registry) ([]*Pattern, error)

// Registry stores named URL patterns for one site instance.
type Registry struct {
	mu       sync.RWMutex
	patterns map[string]*Pattern
	order    []*Pattern
	included map[string][]*Pattern
	source   ModuleSource
}

// NewRegistry creates an empty registry. source may be nil when Include is unused.
func NewRegistry(source ModuleSource) *Registry {
	return &Registry{
		patterns: make(map[string]*Pattern),
		included: make(map[string][]*Pattern),
		source:   source,
	}
}

// URL registers a leaf pattern (target is a ViewRef) under name, or prefixes
// every child with pattern (target is Children). Composition must not be named.
// The returned list composes uniformly with further URL calls.
func (r *Registry) URL(pattern string, target Target, name string) ([]*Pattern, error) {
	switch t := target.(type) {
	case Children:
		if name != "" {
			return nil, fmt.Errorf("%w: the URL pattern %q includes other URL patterns and must not be named", ErrInvalidUse, pattern)
		}
		return r.compose(pattern, t)
	case ViewRef:
		return r.register(pattern, t, name)
	default:
		return nil, fmt.Errorf("%w: unsupported target %T for %q", ErrInvalidUse, target, pattern)
	}
}

func (r *Registry) register(pattern string, view ViewRef, name string) ([]*Pattern, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: the URL pattern %q requires a name", ErrInvalidUse, pattern)
	}
	c, err := compile(pattern)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.patterns[name]; exists {
		return nil, fmt.Errorf("%w: %q", ErrDuplicateName, name)
	}
	p := &Pattern{name: name, pattern: pattern, compiled: c, view: view}
	r.patterns[name] = p
	r.order = append(r.order, p)
	return []*Pattern{p}, nil
}

func (r *Registry) compose(prefix string, children Children) ([]*Pattern, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Compile everything first so a failing child leaves all children untouched.
	next := make([]*compiled, len(children))
	for i, child := range children {
		c, err := compile(prefix + child.pattern)
		if err != nil {
			return nil, err
		}
		next[i] = c
	}
	for i, child := range children {
		child.pattern = prefix + child.pattern
		child.compiled = next[i]
	}
	return children, nil
}

// Resolve computes the concrete URL for the named pattern.
func (r *Registry) Resolve(name string, values map[string]string) (string, error) {
	r.mu.RLock()
	p, ok := r.patterns[name]
	var source string
	var c *compiled
	if ok {
		source, c = p.pattern, p.compiled
	}
	r.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPattern, name)
	}
	return c.resolve(name, source, values)
}

// Lookup returns the named pattern.
func (r *Registry) Lookup(name string) (*Pattern, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.patterns[name]
	return p, ok
}

// Patterns returns every registered pattern in registration order.
func (r *Registry) Patterns() []*Pattern {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Pattern(nil), r.order...)
}

// Len returns the number of registered patterns.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
