package builtin

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"git.home.luguber.info/inful/formidable/internal/build"
	"git.home.luguber.info/inful/formidable/internal/eventstore"
	"git.home.luguber.info/inful/formidable/internal/log"
	"git.home.luguber.info/inful/formidable/internal/logfields"
	"git.home.luguber.info/inful/formidable/internal/plugin"
)

// HistoryAPI is the site API name the history projection is registered under.
const HistoryAPI = "history"

// DefaultHistoryPath is the history database location relative to the site root.
var DefaultHistoryPath = filepath.Join(".formidable", "history.db")

// History records build start and completion events in SQLite and keeps a
// projection of recent builds available through the site API.
type History struct {
	build.NoopObserver
	plugin.BasePlugin

	mu         sync.Mutex
	site       string
	store      eventstore.Store
	keep       int
	projection *eventstore.BuildHistoryProjection
	sink       log.Sink
}

// NewHistory returns the history plugin.
func NewHistory() *History { return &History{} }

func (h *History) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:        "history",
		Version:     version,
		Type:        plugin.PluginTypeObserver,
		Description: "Records build events in a SQLite history database",
		Capabilities: []plugin.PluginCapability{
			plugin.CapabilityPreBuild, plugin.CapabilityObserver, plugin.CapabilityAPI,
		},
	}
}

func (h *History) Setup(ctx context.Context, pc *plugin.PluginContext) error {
	dbPath := resolvePath(pc.Host.Root(), pc.GetString("path", ""), DefaultHistoryPath)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return fmt.Errorf("ensure history dir: %w", err)
	}
	store, err := eventstore.NewSQLiteStore(dbPath)
	if err != nil {
		return err
	}
	keep := pc.GetInt("max_history", 100)
	projection := eventstore.NewBuildHistoryProjection(store, keep)
	if err := projection.Rebuild(ctx); err != nil {
		_ = store.Close()
		return fmt.Errorf("load build history: %w", err)
	}
	if err := pc.Host.API().Register(HistoryAPI, projection); err != nil {
		_ = store.Close()
		return err
	}

	h.mu.Lock()
	h.site = pc.Host.Root()
	h.store = store
	h.keep = keep
	h.projection = projection
	h.sink = pc.Host.Sink()
	h.mu.Unlock()

	pc.Host.Middleware().RegisterPre(h.recordStart)
	pc.Host.AddObserver(h)
	pc.Logger.Debug("Build history enabled", logfields.Path(dbPath))
	return nil
}

// Projection returns the build history read model, nil before Setup.
func (h *History) Projection() *eventstore.BuildHistoryProjection {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.projection
}

func (h *History) recordStart(ctx context.Context, run *build.Run) error {
	e, err := eventstore.NewBuildStarted(run.ID, eventstore.BuildStartedMeta{Site: h.site, Output: run.Root})
	if err != nil {
		return err
	}
	return h.record(ctx, e)
}

// OnBuildComplete records stage timings and the final outcome, for failed
// builds too.
func (h *History) OnBuildComplete(report *build.Report) {
	ctx := context.Background()
	var events []eventstore.Event
	for _, stage := range []build.StageName{build.StagePreBuild, build.StageResolving, build.StageRendering, build.StagePostBuild} {
		d, ok := report.StageDurations[stage]
		if !ok {
			continue
		}
		e, err := eventstore.NewStageCompleted(report.BuildID, string(stage), d)
		if err != nil {
			h.warn(report.BuildID, err)
			return
		}
		events = append(events, e)
	}

	var final eventstore.Event
	var err error
	if report.Outcome == build.OutcomeFailed {
		final, err = eventstore.NewBuildFailed(report.BuildID, string(report.FailedStage), report.Error)
	} else {
		final, err = eventstore.NewBuildCompleted(report.BuildID, eventstore.BuildCompletedData{
			Status:      string(report.Outcome),
			Pages:       len(report.Pages),
			Overwritten: report.Overwritten,
			DurationMS:  report.Duration().Milliseconds(),
		})
	}
	if err != nil {
		h.warn(report.BuildID, err)
		return
	}
	for _, e := range append(events, final) {
		if err := h.record(ctx, e); err != nil {
			h.warn(report.BuildID, err)
			return
		}
	}
	if err := h.prune(ctx); err != nil {
		h.warn(report.BuildID, err)
	}
}

// prune drops events of builds that fell out of the bounded history.
func (h *History) prune(ctx context.Context) error {
	h.mu.Lock()
	store, keep := h.store, h.keep
	h.mu.Unlock()
	if store == nil || keep <= 0 {
		return nil
	}
	_, err := store.Prune(ctx, keep)
	return err
}

func (h *History) record(ctx context.Context, e eventstore.Event) error {
	h.mu.Lock()
	store, projection := h.store, h.projection
	h.mu.Unlock()
	if store == nil {
		return nil
	}
	if err := eventstore.Record(ctx, store, e); err != nil {
		return err
	}
	projection.Apply(e)
	return nil
}

func (h *History) warn(buildID string, err error) {
	h.sink.Warn("Failed to record build history", logfields.BuildID(buildID), logfields.Error(err))
}

// Close releases the history database.
func (h *History) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.store == nil {
		return nil
	}
	err := h.store.Close()
	h.store = nil
	return err
}
