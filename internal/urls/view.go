package urls

import (
	"context"
	"fmt"
)

// RenderFunc renders a view without a template. It receives the merged context.
type RenderFunc func(ctx context.Context, data map[string]any) (string, error)

// ContextFunc produces a view context lazily.
type ContextFunc func(ctx context.Context) (map[string]any, error)

// View is the data and template reference that render one output file.
type View struct {
	Params      map[string]string `yaml:"params,omitempty"`
	Template    string            `yaml:"template,omitempty"`
	Context     map[string]any    `yaml:"context,omitempty"`
	Render      RenderFunc        `yaml:"-"`
	ContextFunc ContextFunc       `yaml:"-"`
}

// ResolveContext returns the static context merged under the deferred one, if any.
func (v View) ResolveContext(ctx context.Context) (map[string]any, error) {
	if v.ContextFunc == nil {
		return v.Context, nil
	}
	dynamic, err := v.ContextFunc(ctx)
	if err != nil {
		return nil, fmt.Errorf("view context: %w", err)
	}
	if len(v.Context) == 0 {
		return dynamic, nil
	}
	out := make(map[string]any, len(v.Context)+len(dynamic))
	for k, val := range v.Context {
		out[k] = val
	}
	for k, val := range dynamic {
		out[k] = val
	}
	return out, nil
}

// Target is what a pattern points at: a ViewRef for leaves, Children for composition.
type Target interface {
	isTarget()
}

// ViewRef points a leaf pattern at its views. Exactly one of the forms is set.
type ViewRef struct {
	module   string
	views    []View
	deferred func(ctx context.Context) ([]View, error)
}

func (ViewRef) isTarget() {}

// Module references views exported by a module that is loaded at build time.
func Module(name string) ViewRef { return ViewRef{module: name} }

// Views references static views.
func Views(views ...View) ViewRef { return ViewRef{views: views} }

// Deferred references views produced on demand, once per build pass.
func Deferred(fn func(ctx context.Context) ([]View, error)) ViewRef {
	return ViewRef{deferred: fn}
}

// ModuleName reports the module identifier when the reference is a module.
func (r ViewRef) ModuleName() (string, bool) { return r.module, r.module != "" }

// Load returns the views of a static or deferred reference.
func (r ViewRef) Load(ctx context.Context) ([]View, error) {
	if r.deferred != nil {
		return r.deferred(ctx)
	}
	return r.views, nil
}

// Children is the list returned by earlier URL calls, used to compose under a prefix.
type Children []*Pattern

func (Children) isTarget() {}
