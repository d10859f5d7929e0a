package build

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/formidable/internal/modules"
	"git.home.luguber.info/inful/formidable/internal/urls"
)

// views resolves a pattern's view reference to a flat view list.
func (o *Orchestrator) views(ctx context.Context, ref urls.ViewRef) ([]urls.View, error) {
	name, ok := ref.ModuleName()
	if !ok {
		return ref.Load(ctx)
	}
	if o.opts.Modules == nil {
		return nil, fmt.Errorf("view module %q: no module loader configured", name)
	}
	m, err := o.opts.Modules.Load(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("view module %q: %w", name, err)
	}
	views, err := moduleViews(ctx, m)
	if err != nil {
		return nil, fmt.Errorf("view module %q: %w", name, err)
	}
	return views, nil
}

// moduleViews normalizes a module to a view list. YAML modules hold one view
// mapping or a list of them.
func moduleViews(ctx context.Context, m *modules.Module) ([]urls.View, error) {
	if m.Installed() {
		return normalizeViews(ctx, m.Value)
	}
	switch m.Value.(type) {
	case nil:
		return nil, nil
	case []any:
		var views []urls.View
		if err := m.Decode(&views); err != nil {
			return nil, err
		}
		return views, nil
	case map[string]any:
		var v urls.View
		if err := m.Decode(&v); err != nil {
			return nil, err
		}
		return []urls.View{v}, nil
	default:
		return nil, fmt.Errorf("%w: YAML module must be a mapping or a list, got %T", ErrInvalidView, m.Value)
	}
}

// normalizeViews wraps single views in a list and resolves deferred values.
func normalizeViews(ctx context.Context, value any) ([]urls.View, error) {
	switch v := value.(type) {
	case urls.View:
		return []urls.View{v}, nil
	case *urls.View:
		if v == nil {
			return nil, fmt.Errorf("%w: nil view", ErrInvalidView)
		}
		return []urls.View{*v}, nil
	case []urls.View:
		return v, nil
	case []*urls.View:
		out := make([]urls.View, 0, len(v))
		for _, item := range v {
			if item == nil {
				return nil, fmt.Errorf("%w: nil view", ErrInvalidView)
			}
			out = append(out, *item)
		}
		return out, nil
	case urls.ViewRef:
		if _, ok := v.ModuleName(); ok {
			return nil, fmt.Errorf("%w: a view module cannot reference another module", ErrInvalidView)
		}
		return v.Load(ctx)
	case func(context.Context) ([]urls.View, error):
		return v(ctx)
	case func(context.Context) (urls.View, error):
		view, err := v(ctx)
		if err != nil {
			return nil, err
		}
		return []urls.View{view}, nil
	case []any:
		groups := make([][]urls.View, len(v))
		g, gctx := errgroup.WithContext(ctx)
		for i, item := range v {
			g.Go(func() error {
				views, err := normalizeViews(gctx, item)
				groups[i] = views
				return err
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		var out []urls.View
		for _, group := range groups {
			out = append(out, group...)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unsupported module value %T", ErrInvalidView, value)
	}
}
