package builtin

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/formidable/internal/build"
	"git.home.luguber.info/inful/formidable/internal/log"
	"git.home.luguber.info/inful/formidable/internal/logfields"
	"git.home.luguber.info/inful/formidable/internal/metrics"
	"git.home.luguber.info/inful/formidable/internal/plugin"
)

// ErrMetricsDisabled is returned when the site has no Prometheus recorder.
var ErrMetricsDisabled = errors.New("metrics are not enabled for this site")

// Metrics writes the site's Prometheus registry in textfile-collector format
// after every build pass.
type Metrics struct {
	build.NoopObserver

	path     string
	recorder *metrics.PrometheusRecorder
	sink     log.Sink
}

// NewMetrics returns the metrics plugin.
func NewMetrics() *Metrics { return &Metrics{} }

func (m *Metrics) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:         "metrics",
		Version:      version,
		Type:         plugin.PluginTypeObserver,
		Description:  "Writes build metrics for the node exporter textfile collector",
		Capabilities: []plugin.PluginCapability{plugin.CapabilityObserver},
	}
}

// Validate requires a path option.
func (m *Metrics) Validate(options map[string]any) error {
	p, ok := options["path"].(string)
	if !ok || p == "" {
		return fmt.Errorf("path is required")
	}
	return nil
}

func (m *Metrics) Setup(_ context.Context, pc *plugin.PluginContext) error {
	m.recorder = pc.Host.Prometheus()
	if m.recorder == nil {
		return ErrMetricsDisabled
	}
	m.path = resolvePath(pc.Host.Root(), pc.GetString("path", ""), "")
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("ensure metrics dir: %w", err)
	}
	m.sink = pc.Host.Sink()
	pc.Host.AddObserver(m)
	return nil
}

func (m *Metrics) OnBuildComplete(report *build.Report) {
	if err := m.recorder.WriteTextfile(m.path); err != nil {
		m.sink.Warn("Failed to write metrics", logfields.BuildID(report.BuildID), logfields.Error(err))
	}
}
