package site

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/formidable/internal/build"
	"git.home.luguber.info/inful/formidable/internal/config"
	"git.home.luguber.info/inful/formidable/internal/log"
	"git.home.luguber.info/inful/formidable/internal/logfields"
	"git.home.luguber.info/inful/formidable/internal/metrics"
	"git.home.luguber.info/inful/formidable/internal/middleware"
	"git.home.luguber.info/inful/formidable/internal/modules"
	"git.home.luguber.info/inful/formidable/internal/paths"
	"git.home.luguber.info/inful/formidable/internal/plugin"
	"git.home.luguber.info/inful/formidable/internal/plugin/builtin"
	"git.home.luguber.info/inful/formidable/internal/templating"
	"git.home.luguber.info/inful/formidable/internal/urls"
	"git.home.luguber.info/inful/formidable/internal/viewcontext"
)

type options struct {
	sink     log.Sink
	logger   *slog.Logger
	plugins  *plugin.Registry
	installs map[string]any
}

// Option customizes a site instance.
type Option func(*options)

// WithSink replaces the log collaborator (default: slog, exiting on Fail).
func WithSink(sink log.Sink) Option { return func(o *options) { o.sink = sink } }

// WithLogger sets the logger used for plugin and debug output.
func WithLogger(logger *slog.Logger) Option { return func(o *options) { o.logger = logger } }

// WithPlugins replaces the plugin registry (default: the built-in plugins).
func WithPlugins(r *plugin.Registry) Option { return func(o *options) { o.plugins = r } }

// WithModule installs a Go value as the module name, ahead of local files.
func WithModule(name string, value any) Option {
	return func(o *options) {
		if o.installs == nil {
			o.installs = map[string]any{}
		}
		o.installs[name] = value
	}
}

// Site is one loaded settings module and everything it owns.
type Site struct {
	settings *config.Settings
	logger   *slog.Logger
	sink     log.Sink

	resolver     *paths.Resolver
	loader       *modules.FileLoader
	urls         *urls.Registry
	assembler    *viewcontext.Assembler
	engine       *templating.Engine
	orchestrator *build.Orchestrator
	plugins      *plugin.Registry
	api          *API
	recorder     metrics.Recorder
	prom         *metrics.PrometheusRecorder

	closeOnce sync.Once
	closers   []io.Closer
}

var _ plugin.Host = (*Site)(nil)

// New creates a site instance from resolved settings and sets up its plugins.
func New(ctx context.Context, settings *config.Settings, opts ...Option) (*Site, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.sink == nil {
		o.sink = log.NewSlogSink(o.logger, settings.Verbose)
	}
	if o.plugins == nil {
		o.plugins = plugin.NewRegistry()
		if err := builtin.Register(o.plugins); err != nil {
			return nil, err
		}
	}

	s := &Site{
		settings: settings,
		logger:   o.logger,
		sink:     o.sink,
		plugins:  o.plugins,
		api:      NewAPI(),
		recorder: metrics.NoopRecorder{},
	}
	if settings.MetricsFile != "" || settings.Plugins.Has("metrics") {
		s.prom = metrics.NewPrometheusRecorder(nil)
		s.recorder = s.prom
	}

	s.resolver = paths.New(paths.Options{
		Root:      settings.Root,
		Templates: settings.Templates,
		Recorder:  s.recorder,
	})
	s.loader = modules.NewFileLoader(s.resolver)
	for name, value := range o.installs {
		s.loader.Install(name, value)
	}
	s.urls = urls.NewRegistry(s.loader)
	s.assembler = viewcontext.New(settings.Context, settings.Meta)

	engine, err := templating.New(settings.Templating, s.resolver)
	if err != nil {
		return nil, err
	}
	s.engine = engine

	s.orchestrator = build.New(build.Options{
		Root:      settings.Build,
		URLs:      settings.URLs,
		Overwrite: settings.Overwrite,
		Verbose:   settings.Verbose,
		Registry:  s.urls,
		Modules:   s.loader,
		Context:   s.assembler,
		Renderer:  s.engine,
		Sink:      s.sink,
		Recorder:  s.recorder,
	})
	s.orchestrator.AddInitializer(s.registerTemplating)

	if err := s.setupPlugins(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	if settings.Debug {
		s.logger.Debug("Site ready",
			logfields.Path(settings.Root),
			slog.String("build", settings.Build),
			slog.String("templating", settings.Templating))
	}
	return s, nil
}

func (s *Site) setupPlugins(ctx context.Context) error {
	configs := make([]plugin.Config, 0, len(s.settings.Plugins)+1)
	for _, p := range s.settings.Plugins {
		configs = append(configs, plugin.Config{Name: p.Name, Options: p.Options})
	}
	if s.settings.MetricsFile != "" && !s.settings.Plugins.Has("metrics") {
		configs = append(configs, plugin.Config{Name: "metrics", Options: map[string]any{"path": s.settings.MetricsFile}})
	}
	err := s.plugins.Setup(ctx, s, s.logger, configs)
	for _, c := range configs {
		if p, lerr := s.plugins.GetLatest(c.Name); lerr == nil {
			if closer, ok := p.(io.Closer); ok {
				s.closers = append(s.closers, closer)
			}
		}
	}
	return err
}

// registerTemplating is the pre-build step wiring the url template function
// to this site's URL registry.
func (s *Site) registerTemplating(context.Context, *build.Run) error {
	s.engine.SetURLFunc(s.urls.Resolve)
	return nil
}

// Build runs one build pass.
func (s *Site) Build(ctx context.Context) (*build.Report, error) {
	return s.orchestrator.Build(ctx)
}

// URL registers a pattern; see urls.Registry.URL.
func (s *Site) URL(pattern string, target urls.Target, name string) ([]*urls.Pattern, error) {
	return s.urls.URL(pattern, target, name)
}

// Resolve computes the URL of a named pattern.
func (s *Site) Resolve(name string, values map[string]string) (string, error) {
	return s.urls.Resolve(name, values)
}

// Include loads a route-table module into the URL registry.
func (s *Site) Include(ctx context.Context, module string) ([]*urls.Pattern, error) {
	return s.urls.Include(ctx, module)
}

// Routes loads the configured route table and returns every registered pattern.
func (s *Site) Routes(ctx context.Context) ([]*urls.Pattern, error) {
	if _, err := s.urls.Include(ctx, s.settings.URLs); err != nil {
		return nil, err
	}
	return s.urls.Patterns(), nil
}

// Context deep-merges the default context with partials.
func (s *Site) Context(partials ...map[string]any) (map[string]any, error) {
	return s.assembler.Context(partials...)
}

// Settings returns the settings the site was created from.
func (s *Site) Settings() *config.Settings { return s.settings }

// Paths returns the site's path resolver.
func (s *Site) Paths() *paths.Resolver { return s.resolver }

// Modules returns the site's module loader.
func (s *Site) Modules() *modules.FileLoader { return s.loader }

// Plugins returns the site's plugin registry.
func (s *Site) Plugins() *plugin.Registry { return s.plugins }

// Root implements plugin.Host.
func (s *Site) Root() string { return s.settings.Root }

// BuildRoot implements plugin.Host.
func (s *Site) BuildRoot() string { return s.settings.Build }

// Middleware implements plugin.Host.
func (s *Site) Middleware() *middleware.Registry[build.Hook] { return s.orchestrator.Middleware() }

// AddObserver implements plugin.Host.
func (s *Site) AddObserver(obs build.Observer) { s.orchestrator.AddObserver(obs) }

// Funcs implements plugin.Host.
func (s *Site) Funcs(funcs map[string]any) { s.engine.Funcs(funcs) }

// API implements plugin.Host.
func (s *Site) API() plugin.API { return s.api }

// Prometheus implements plugin.Host.
func (s *Site) Prometheus() *metrics.PrometheusRecorder { return s.prom }

// Sink implements plugin.Host.
func (s *Site) Sink() log.Sink { return s.sink }

// Close releases plugin resources. It is safe to call more than once.
func (s *Site) Close() error {
	var errs []error
	s.closeOnce.Do(func() {
		for _, c := range s.closers {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	})
	return errors.Join(errs...)
}
