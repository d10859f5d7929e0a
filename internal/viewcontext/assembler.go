// Package viewcontext assembles the data handed to templates.
package viewcontext

import (
	"context"
	"fmt"

	"dario.cat/mergo"
)

// DefaultMetaKey is the key under which build metadata is attached.
const DefaultMetaKey = "meta"

// Source produces one partial context, possibly lazily.
type Source func(ctx context.Context) (map[string]any, error)

// Static wraps an already available partial.
func Static(m map[string]any) Source {
	return func(context.Context) (map[string]any, error) { return m, nil }
}

// Assembler merges the configured default context with per-view partials.
type Assembler struct {
	defaults map[string]any
	metaKey  string
}

// New creates an Assembler. An empty metaKey selects DefaultMetaKey.
func New(defaults map[string]any, metaKey string) *Assembler {
	if metaKey == "" {
		metaKey = DefaultMetaKey
	}
	return &Assembler{defaults: defaults, metaKey: metaKey}
}

// MetaKey returns the metadata key.
func (a *Assembler) MetaKey() string { return a.metaKey }

// Context deep-merges an empty map, the defaults and partials, left to right.
// Later keys win; nested maps merge recursively. Inputs are never modified.
func (a *Assembler) Context(partials ...map[string]any) (map[string]any, error) {
	out := make(map[string]any)
	layers := append([]map[string]any{a.defaults}, partials...)
	for i, layer := range layers {
		if len(layer) == 0 {
			continue
		}
		if err := mergo.Merge(&out, cloneMap(layer), mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("merge context layer %d: %w", i, err)
		}
	}
	return out, nil
}

// Resolve awaits every source in order, then merges them as Context does.
func (a *Assembler) Resolve(ctx context.Context, sources ...Source) (map[string]any, error) {
	partials := make([]map[string]any, 0, len(sources))
	for _, src := range sources {
		if src == nil {
			continue
		}
		p, err := src(ctx)
		if err != nil {
			return nil, err
		}
		partials = append(partials, p)
	}
	return a.Context(partials...)
}

// Meta returns a shallow copy of value with the metadata key set to data.
func (a *Assembler) Meta(value map[string]any, data any) map[string]any {
	out := make(map[string]any, len(value)+1)
	for k, v := range value {
		out[k] = v
	}
	out[a.metaKey] = data
	return out
}

func cloneMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneMap(t)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = cloneValue(item)
		}
		return out
	default:
		return v
	}
}
