package build

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"git.home.luguber.info/inful/formidable/internal/log"
	"git.home.luguber.info/inful/formidable/internal/logfields"
	"git.home.luguber.info/inful/formidable/internal/metrics"
	"git.home.luguber.info/inful/formidable/internal/middleware"
	"git.home.luguber.info/inful/formidable/internal/modules"
	"git.home.luguber.info/inful/formidable/internal/templating"
	"git.home.luguber.info/inful/formidable/internal/urls"
	"git.home.luguber.info/inful/formidable/internal/viewcontext"
)

// DefaultURLs is the route-table module loaded when none is configured.
const DefaultURLs = "urls"

// Hook is a middleware or initializer function run around a build pass.
type Hook func(ctx context.Context, run *Run) error

// Run is the state of one build pass, shared with hooks.
type Run struct {
	// ID uniquely identifies the pass.
	ID string
	// Root is the build output directory.
	Root string
	// Report accumulates stage timings and written pages.
	Report *Report

	tasks []task
}

// task is one (pattern, view) pair to render.
type task struct {
	pattern *urls.Pattern
	view    urls.View
}

// Options configures an Orchestrator.
type Options struct {
	Root       string
	URLs       string
	Overwrite  bool
	Verbose    bool
	Registry   *urls.Registry
	Modules    modules.Loader
	Context    *viewcontext.Assembler
	Renderer   templating.Renderer
	Middleware *middleware.Registry[Hook]
	Sink       log.Sink
	Recorder   metrics.Recorder
}

// Orchestrator runs build passes for one site.
type Orchestrator struct {
	opts   Options
	writer *writer

	mu           sync.Mutex
	initializers []Hook
	observers    observers
}

// New creates an Orchestrator. Missing collaborators get working defaults,
// except Registry and Renderer which are required.
func New(opts Options) *Orchestrator {
	if opts.URLs == "" {
		opts.URLs = DefaultURLs
	}
	if opts.Context == nil {
		opts.Context = viewcontext.New(nil, "")
	}
	if opts.Middleware == nil {
		opts.Middleware = middleware.New[Hook]()
	}
	if opts.Sink == nil {
		opts.Sink = log.NewSlogSink(nil, opts.Verbose)
	}
	if opts.Recorder == nil {
		opts.Recorder = metrics.NoopRecorder{}
	}
	return &Orchestrator{
		opts:   opts,
		writer: newWriter(opts.Overwrite, opts.Verbose, opts.Sink),
	}
}

// Middleware returns the pre/post hook registry.
func (o *Orchestrator) Middleware() *middleware.Registry[Hook] { return o.opts.Middleware }

// AddInitializer registers a hook run at the end of the pre-build stage, after
// the pre-build middleware.
func (o *Orchestrator) AddInitializer(h Hook) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.initializers = append(o.initializers, h)
}

// AddObserver registers a lifecycle observer.
func (o *Orchestrator) AddObserver(obs Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.observers = append(o.observers, obs)
}

// Build runs one build pass. The first error aborts the pass; it is
// classified, handed to the sink's Fail and returned.
func (o *Orchestrator) Build(ctx context.Context) (*Report, error) {
	id := uuid.NewString()
	run := &Run{ID: id, Root: o.opts.Root, Report: newReport(id, o.opts.Root)}

	o.mu.Lock()
	obs := append(observers(nil), o.observers...)
	o.mu.Unlock()

	stages := []StageDef{
		{StagePreBuild, o.stagePreBuild},
		{StageResolving, o.stageResolving},
		{StageRendering, o.stageRendering},
		{StagePostBuild, o.stagePostBuild},
	}
	err := runStages(ctx, run, stages, obs, o.opts.Recorder)
	run.Report.finish(err)
	o.opts.Recorder.ObserveBuildDuration(run.Report.Duration())
	o.opts.Recorder.IncBuildOutcome(string(run.Report.Outcome))
	obs.OnBuildComplete(run.Report)

	if err != nil {
		classified := classify(err, run)
		o.opts.Sink.Fail(classified, 0)
		return run.Report, classified
	}
	if o.opts.Verbose {
		o.opts.Sink.Info("Build complete",
			logfields.BuildID(id),
			logfields.Count(len(run.Report.Pages)),
			logfields.Duration(run.Report.Duration()))
	}
	return run.Report, nil
}

func (o *Orchestrator) stagePreBuild(ctx context.Context, run *Run) error {
	for i, hook := range o.opts.Middleware.Pre() {
		if err := hook(ctx, run); err != nil {
			return fmt.Errorf("pre-build hook %d: %w", i, err)
		}
	}
	o.mu.Lock()
	inits := append([]Hook(nil), o.initializers...)
	o.mu.Unlock()
	for i, hook := range inits {
		if err := hook(ctx, run); err != nil {
			return fmt.Errorf("initializer %d: %w", i, err)
		}
	}
	return nil
}

func (o *Orchestrator) stageResolving(ctx context.Context, run *Run) error {
	if _, err := o.opts.Registry.Include(ctx, o.opts.URLs); err != nil {
		return err
	}
	patterns := o.opts.Registry.Patterns()
	groups := make([][]task, len(patterns))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range patterns {
		g.Go(func() error {
			views, err := o.views(gctx, p.View())
			if err != nil {
				return fmt.Errorf("views of %q: %w", p.Name(), err)
			}
			for _, v := range views {
				groups[i] = append(groups[i], task{pattern: p, view: v})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, group := range groups {
		run.tasks = append(run.tasks, group...)
	}
	return nil
}

func (o *Orchestrator) stageRendering(ctx context.Context, run *Run) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, t := range run.tasks {
		g.Go(func() error { return o.render(gctx, run, t) })
	}
	return g.Wait()
}

func (o *Orchestrator) stagePostBuild(ctx context.Context, run *Run) error {
	hooks := o.opts.Middleware.Post()
	for i := len(hooks) - 1; i >= 0; i-- {
		if err := hooks[i](ctx, run); err != nil {
			return fmt.Errorf("post-build hook %d: %w", i, err)
		}
	}
	return nil
}

func (o *Orchestrator) render(ctx context.Context, run *Run, t task) error {
	name := t.pattern.Name()
	u, err := o.opts.Registry.Resolve(name, t.view.Params)
	if err != nil {
		return err
	}
	out := OutputPath(run.Root, u)

	viewCtx, err := t.view.ResolveContext(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", u, err)
	}
	data, err := o.opts.Context.Context(viewCtx)
	if err != nil {
		return fmt.Errorf("%s: %w", u, err)
	}
	data = o.opts.Context.Meta(data, map[string]any{
		"params":   t.view.Params,
		"url":      u,
		"template": t.view.Template,
		"name":     name,
		"output":   out,
		"build_id": run.ID,
	})

	var content string
	if t.view.Render != nil {
		content, err = t.view.Render(ctx, data)
	} else {
		content, err = o.opts.Renderer.Render(ctx, t.view.Template, data, out)
	}
	if err != nil {
		return fmt.Errorf("render %s (%s): %w", u, name, err)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	overwritten, err := o.writer.write(out, content)
	if err != nil {
		return err
	}
	if o.opts.Verbose {
		attrs := []any{logfields.URL(u), logfields.Path(out), logfields.Template(t.view.Template)}
		if overwritten {
			o.opts.Sink.Warn("Overwrote page", attrs...)
		} else {
			o.opts.Sink.Info("Rendered page", attrs...)
		}
	}
	run.Report.addPage(Page{Name: name, Pattern: t.pattern.String(), URL: u, Path: out, Overwritten: overwritten})
	o.opts.Recorder.IncPagesWritten(overwritten)
	return nil
}

func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
