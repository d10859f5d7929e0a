package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/formidable/internal/build"
	"git.home.luguber.info/inful/formidable/internal/log"
	"git.home.luguber.info/inful/formidable/internal/metrics"
	"git.home.luguber.info/inful/formidable/internal/middleware"
	"git.home.luguber.info/inful/formidable/internal/modules"
	"git.home.luguber.info/inful/formidable/internal/paths"
	"git.home.luguber.info/inful/formidable/internal/plugin"
	"git.home.luguber.info/inful/formidable/internal/urls"
)

type apiMap map[string]any

func (a apiMap) Register(name string, value any) error {
	if _, exists := a[name]; exists {
		return fmt.Errorf("api %q already registered", name)
	}
	a[name] = value
	return nil
}

func (a apiMap) Get(name string) (any, bool) {
	v, ok := a[name]
	return v, ok
}

type noRenderer struct{}

func (noRenderer) Render(context.Context, string, map[string]any, string) (string, error) {
	return "", fmt.Errorf("no renderer")
}

// harness is a minimal site: every page is a route whose view renders the
// given HTML without a template.
type harness struct {
	root  string
	out   string
	orch  *build.Orchestrator
	sink  *log.Recorder
	api   apiMap
	funcs map[string]any
	prom  *metrics.PrometheusRecorder
}

func newHarness(t *testing.T, pages map[string]string, prom *metrics.PrometheusRecorder) *harness {
	t.Helper()
	root := t.TempDir()
	var routes []urls.Route
	for u, body := range pages {
		routes = append(routes, urls.Route{
			Pattern: u,
			Name:    u,
			Views: []urls.View{{Render: func(context.Context, map[string]any) (string, error) {
				if body == "" {
					return "", fmt.Errorf("render %s failed", u)
				}
				return body, nil
			}}},
		})
	}
	loader := modules.NewFileLoader(paths.New(paths.Options{Root: root}))
	loader.Install("urls", routes)

	h := &harness{
		root:  root,
		out:   filepath.Join(root, "build"),
		sink:  log.NewRecorder(),
		api:   apiMap{},
		funcs: map[string]any{},
		prom:  prom,
	}
	opts := build.Options{
		Root:       h.out,
		Overwrite:  true,
		Registry:   urls.NewRegistry(loader),
		Modules:    loader,
		Renderer:   noRenderer{},
		Middleware: middleware.New[build.Hook](),
		Sink:       h.sink,
	}
	if prom != nil {
		opts.Recorder = prom
	}
	h.orch = build.New(opts)
	return h
}

func (h *harness) Root() string                                 { return h.root }
func (h *harness) BuildRoot() string                            { return h.out }
func (h *harness) Middleware() *middleware.Registry[build.Hook] { return h.orch.Middleware() }
func (h *harness) AddObserver(obs build.Observer)               { h.orch.AddObserver(obs) }
func (h *harness) Funcs(funcs map[string]any) {
	for k, v := range funcs {
		h.funcs[k] = v
	}
}
func (h *harness) API() plugin.API { return h.api }
func (h *harness) Prometheus() *metrics.PrometheusRecorder {
	return h.prom
}
func (h *harness) Sink() log.Sink { return h.sink }

func (h *harness) setup(t *testing.T, p plugin.Plugin, options map[string]any) error {
	t.Helper()
	if err := p.Validate(options); err != nil {
		return err
	}
	return p.Setup(context.Background(), plugin.NewPluginContext(context.Background(), nil, h, p.Metadata().Name, options))
}

func (h *harness) build(t *testing.T) (*build.Report, error) {
	t.Helper()
	return h.orch.Build(context.Background())
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}
