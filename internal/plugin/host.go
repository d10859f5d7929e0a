package plugin

import (
	"git.home.luguber.info/inful/formidable/internal/build"
	"git.home.luguber.info/inful/formidable/internal/log"
	"git.home.luguber.info/inful/formidable/internal/metrics"
	"git.home.luguber.info/inful/formidable/internal/middleware"
)

// API is a named registry plugins use to share helpers with each other.
type API interface {
	Register(name string, value any) error
	Get(name string) (any, bool)
}

// Host is the part of a site instance plugins may extend.
type Host interface {
	// Root is the absolute site source root; relative plugin paths resolve against it.
	Root() string
	// BuildRoot is the absolute build output directory.
	BuildRoot() string
	// Middleware is the site's pre/post build hook registry.
	Middleware() *middleware.Registry[build.Hook]
	// AddObserver subscribes to stage and build completion.
	AddObserver(obs build.Observer)
	// Funcs adds template functions to the site's renderer.
	Funcs(funcs map[string]any)
	// API is the site's shared named API registry.
	API() API
	// Prometheus returns the site's Prometheus recorder, nil when metrics are disabled.
	Prometheus() *metrics.PrometheusRecorder
	// Sink is the site's log collaborator.
	Sink() log.Sink
}
