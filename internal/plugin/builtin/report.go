package builtin

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/formidable/internal/build"
	"git.home.luguber.info/inful/formidable/internal/log"
	"git.home.luguber.info/inful/formidable/internal/logfields"
	"git.home.luguber.info/inful/formidable/internal/plugin"
)

// Report persists build-report.json after every build pass.
type Report struct {
	build.NoopObserver
	plugin.BasePlugin

	dir  string
	sink log.Sink
}

// NewReport returns the report plugin.
func NewReport() *Report { return &Report{} }

func (r *Report) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:         "report",
		Version:      version,
		Type:         plugin.PluginTypeGenerator,
		Description:  "Writes " + build.ReportFile + " after each build",
		Capabilities: []plugin.PluginCapability{plugin.CapabilityObserver},
	}
}

func (r *Report) Setup(_ context.Context, pc *plugin.PluginContext) error {
	r.dir = resolvePath(pc.Host.Root(), pc.GetString("dir", ""), pc.Host.BuildRoot())
	if r.dir == "" {
		return fmt.Errorf("no report directory")
	}
	r.sink = pc.Host.Sink()
	pc.Host.AddObserver(r)
	return nil
}

// OnBuildComplete writes the report, for failed builds too.
func (r *Report) OnBuildComplete(report *build.Report) {
	if err := report.Persist(r.dir); err != nil {
		r.sink.Warn("Failed to persist build report", logfields.BuildID(report.BuildID), logfields.Error(err))
	}
}
