package urls

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Route is one entry of a YAML route-table module.
//
//   - pattern: /
//     name: home
//     view: views/home
//   - pattern: /blog
//     include: blog/urls
type Route struct {
	Pattern  string  `yaml:"pattern"`
	Name     string  `yaml:"name,omitempty"`
	View     string  `yaml:"view,omitempty"`
	Views    []View  `yaml:"views,omitempty"`
	Include  string  `yaml:"include,omitempty"`
	Children []Route `yaml:"children,omitempty"`
}

// Include loads a route-table module and returns its patterns flattened one
// level. A module is registered at most once per registry; later calls return
// the patterns from the first.
func (r *Registry) Include(ctx context.Context, module string) ([]*Pattern, error) {
	r.mu.RLock()
	cached, ok := r.included[module]
	r.mu.RUnlock()
	if ok {
		return cached, nil
	}
	if r.source == nil {
		return nil, fmt.Errorf("include %q: no module source configured", module)
	}
	m, err := r.source.Load(ctx, module)
	if err != nil {
		return nil, fmt.Errorf("include %q: %w", module, err)
	}

	var patterns []*Pattern
	if m.Installed() {
		patterns, err = r.flatten(ctx, m.Value)
	} else {
		var routes []Route
		if err = m.Decode(&routes); err != nil {
			return nil, fmt.Errorf("include %q: %w", module, err)
		}
		patterns, err = r.Routes(ctx, routes)
	}
	if err != nil {
		return nil, fmt.Errorf("include %q: %w", module, err)
	}

	r.mu.Lock()
	r.included[module] = patterns
	r.mu.Unlock()
	return patterns, nil
}

// flatten normalizes an installed module value into a pattern list.
func (r *Registry) flatten(ctx context.Context, value any) ([]*Pattern, error) {
	switch v := value.(type) {
	case []*Pattern:
		return v, nil
	case Children:
		return v, nil
	case [][]*Pattern:
		var out []*Pattern
		for _, group := range v {
			out = append(out, group...)
		}
		return out, nil
	case []Children:
		var out []*Pattern
		for _, group := range v {
			out = append(out, group...)
		}
		return out, nil
	case []Route:
		return r.Routes(ctx, v)
	case IncludeFunc:
		return v(ctx, r)
	case func(context.Context, *Registry) ([]*Pattern, error):
		return v(ctx, r)
	case []any:
		// Entries may be deferred, so resolve them concurrently and keep the order.
		groups := make([][]*Pattern, len(v))
		g, gctx := errgroup.WithContext(ctx)
		for i, item := range v {
			g.Go(func() error {
				ps, err := r.flatten(gctx, item)
				groups[i] = ps
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		var out []*Pattern
		for _, group := range groups {
			out = append(out, group...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: module value %T is not a route table", ErrInvalidUse, value)
	}
}

// Routes registers YAML route entries in order and returns the resulting patterns.
func (r *Registry) Routes(ctx context.Context, routes []Route) ([]*Pattern, error) {
	var out []*Pattern
	for _, route := range routes {
		ps, err := r.route(ctx, route)
		if err != nil {
			return nil, err
		}
		out = append(out, ps...)
	}
	return out, nil
}

func (r *Registry) route(ctx context.Context, route Route) ([]*Pattern, error) {
	if route.Include != "" || len(route.Children) > 0 {
		var children Children
		if route.Include != "" {
			included, err := r.Include(ctx, route.Include)
			if err != nil {
				return nil, err
			}
			children = append(children, included...)
		}
		nested, err := r.Routes(ctx, route.Children)
		if err != nil {
			return nil, err
		}
		children = append(children, nested...)
		return r.URL(route.Pattern, children, route.Name)
	}
	if route.View != "" && len(route.Views) > 0 {
		return nil, fmt.Errorf("%w: route %q sets both view and views", ErrInvalidUse, route.Pattern)
	}
	if route.View != "" {
		return r.URL(route.Pattern, Module(route.View), route.Name)
	}
	return r.URL(route.Pattern, Views(route.Views...), route.Name)
}
