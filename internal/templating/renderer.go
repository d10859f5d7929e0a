package templating

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"os"
	"path/filepath"
	"strings"
	"sync"
	texttemplate "text/template"

	"github.com/yuin/goldmark"
)

// Engine names.
const (
	EngineHTML     = "html"
	EngineText     = "text"
	EngineMarkdown = "markdown"
)

// DefaultEngine is used when no engine is configured.
const DefaultEngine = EngineHTML

const maxIncludeDepth = 32

var (
	// ErrRender indicates a render was requested without a template identifier.
	ErrRender = errors.New("a template identifier is required")
	// ErrUnknownEngine indicates an unsupported engine name.
	ErrUnknownEngine = errors.New("unknown templating engine")
)

// Renderer renders a template identifier with data. outputPath is the absolute
// path the result will be written to.
type Renderer interface {
	Render(ctx context.Context, template string, data map[string]any, outputPath string) (string, error)
}

// Finder locates template files by name.
type Finder interface {
	FindTemplate(ctx context.Context, name string) (string, error)
}

// URLFunc resolves a named pattern with parameter values.
type URLFunc func(name string, values map[string]string) (string, error)

// Engines lists the supported engine names.
func Engines() []string {
	return []string{EngineHTML, EngineMarkdown, EngineText}
}

// ValidEngine reports whether name is a supported engine.
func ValidEngine(name string) bool {
	for _, e := range Engines() {
		if e == name {
			return true
		}
	}
	return false
}

// Engine is the template Renderer of a site.
type Engine struct {
	name   string
	finder Finder
	md     goldmark.Markdown

	mu    sync.RWMutex
	url   URLFunc
	funcs map[string]any
}

// New creates an engine. An empty name selects DefaultEngine.
func New(name string, finder Finder) (*Engine, error) {
	if name == "" {
		name = DefaultEngine
	}
	if !ValidEngine(name) {
		return nil, fmt.Errorf("%w: %q (supported: %s)", ErrUnknownEngine, name, strings.Join(Engines(), ", "))
	}
	return &Engine{
		name:   name,
		finder: finder,
		md:     goldmark.New(),
		funcs:  make(map[string]any),
	}, nil
}

// Name returns the engine name.
func (e *Engine) Name() string { return e.name }

// SetURLFunc installs the resolver behind the url template function.
func (e *Engine) SetURLFunc(fn URLFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.url = fn
}

// Funcs adds template functions. Built-in names cannot be replaced.
func (e *Engine) Funcs(funcs map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for k, v := range funcs {
		e.funcs[k] = v
	}
}

// Render implements Renderer.
func (e *Engine) Render(ctx context.Context, name string, data map[string]any, outputPath string) (string, error) {
	return e.render(ctx, name, data, outputPath, 0)
}

func (e *Engine) render(ctx context.Context, name string, data map[string]any, outputPath string, depth int) (string, error) {
	if name == "" {
		return "", ErrRender
	}
	if depth > maxIncludeDepth {
		return "", fmt.Errorf("render %q: include depth exceeds %d", name, maxIncludeDepth)
	}
	path, err := e.finder.FindTemplate(ctx, name)
	if err != nil {
		return "", err
	}
	// #nosec G304 -- path comes from the template search roots.
	src, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read template %q: %w", name, err)
	}
	funcs := e.funcMap(ctx, outputPath, depth)

	var buf bytes.Buffer
	switch e.name {
	case EngineHTML:
		tpl, err := htmltemplate.New(filepath.Base(path)).Funcs(htmltemplate.FuncMap(funcs)).Parse(string(src))
		if err != nil {
			return "", fmt.Errorf("parse template %q: %w", name, err)
		}
		if err := tpl.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("render template %q: %w", name, err)
		}
	default:
		tpl, err := texttemplate.New(filepath.Base(path)).Funcs(texttemplate.FuncMap(funcs)).Parse(string(src))
		if err != nil {
			return "", fmt.Errorf("parse template %q: %w", name, err)
		}
		if err := tpl.Execute(&buf, data); err != nil {
			return "", fmt.Errorf("render template %q: %w", name, err)
		}
	}
	if e.name != EngineMarkdown || !isMarkdown(path) {
		return buf.String(), nil
	}
	var out bytes.Buffer
	if err := e.md.Convert(buf.Bytes(), &out); err != nil {
		return "", fmt.Errorf("convert markdown %q: %w", name, err)
	}
	return out.String(), nil
}

func isMarkdown(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

func (e *Engine) funcMap(ctx context.Context, outputPath string, depth int) map[string]any {
	e.mu.RLock()
	resolve := e.url
	funcs := make(map[string]any, len(e.funcs)+4)
	for k, v := range e.funcs {
		funcs[k] = v
	}
	e.mu.RUnlock()

	html := e.name == EngineHTML
	funcs["url"] = func(name string, args ...any) (string, error) {
		if resolve == nil {
			return "", fmt.Errorf("url %q: no URL resolver registered", name)
		}
		values, err := urlValues(args)
		if err != nil {
			return "", fmt.Errorf("url %q: %w", name, err)
		}
		return resolve(name, values)
	}
	funcs["include"] = func(name string, args ...any) (any, error) {
		var data map[string]any
		if len(args) > 0 {
			m, ok := args[0].(map[string]any)
			if !ok {
				return nil, fmt.Errorf("include %q: data must be a map, got %T", name, args[0])
			}
			data = m
		}
		out, err := e.render(ctx, name, data, outputPath, depth+1)
		if err != nil {
			return nil, err
		}
		if html {
			// #nosec G203 -- included output was escaped by its own template.
			return htmltemplate.HTML(out), nil
		}
		return out, nil
	}
	funcs["markdown"] = func(src string) (any, error) {
		var out bytes.Buffer
		if err := e.md.Convert([]byte(src), &out); err != nil {
			return nil, err
		}
		if html {
			// #nosec G203 -- goldmark escapes raw HTML by default.
			return htmltemplate.HTML(out.String()), nil
		}
		return out.String(), nil
	}
	funcs["output"] = func() string { return outputPath }
	return funcs
}

// urlValues accepts either key/value pairs or a single map.
func urlValues(args []any) (map[string]string, error) {
	values := make(map[string]string)
	if len(args) == 1 {
		switch m := args[0].(type) {
		case map[string]string:
			for k, v := range m {
				values[k] = v
			}
			return values, nil
		case map[string]any:
			for k, v := range m {
				values[k] = fmt.Sprint(v)
			}
			return values, nil
		}
	}
	if len(args)%2 != 0 {
		return nil, errors.New("parameters must be key/value pairs")
	}
	for i := 0; i < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			return nil, fmt.Errorf("parameter name must be a string, got %T", args[i])
		}
		values[key] = fmt.Sprint(args[i+1])
	}
	return values, nil
}
