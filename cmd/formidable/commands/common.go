package commands

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/formidable/internal/log"
	"git.home.luguber.info/inful/formidable/internal/site"
)

// Global carries state shared by every subcommand.
type Global struct {
	Ctx    context.Context
	Out    io.Writer
	Loader *site.Loader
}

// NewGlobal creates the shared state; sites are loaded lazily through Loader.
// Build failures are returned to the caller instead of exiting the process.
func NewGlobal(ctx context.Context, out io.Writer, opts ...site.Option) *Global {
	if out == nil {
		out = os.Stdout
	}
	opts = append([]site.Option{site.WithSink(cliSink{log.NewSlogSink(nil, false)})}, opts...)
	return &Global{Ctx: ctx, Out: out, Loader: site.NewLoader(opts...)}
}

// cliSink logs progress through slog; main reports the returned error.
type cliSink struct{ log.Sink }

func (cliSink) Fail(error, int) {}

// Close releases every site the loader created.
func (g *Global) Close() error {
	return g.Loader.Close()
}

// CLI definition & global flags.
type CLI struct {
	Settings string           `short:"s" help:"Settings file or directory (defaults to $FORMIDABLE_SETTINGS_MODULE)"`
	Verbose  bool             `short:"v" help:"Enable verbose logging"`
	Version  kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build   BuildCmd   `cmd:"" help:"Render every view to the build directory"`
	Routes  RoutesCmd  `cmd:"" help:"List the named URL patterns of the site"`
	Resolve ResolveCmd `cmd:"" help:"Compute the URL of a named pattern"`
	Init    InitCmd    `cmd:"" help:"Write an example settings file"`
	History HistoryCmd `cmd:"" help:"Show recent builds recorded by the history plugin"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}

func (g *Global) load(root *CLI) (*site.Site, error) {
	return g.Loader.Load(g.Ctx, root.Settings)
}
