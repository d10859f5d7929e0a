package logfields

import (
	"log/slog"
	"time"
)

// Canonical log field name constants to avoid drift across packages.
const (
	KeyBuildID    = "build_id"
	KeyStage      = "stage"
	KeyDurationMS = "duration_ms"
	KeyPattern    = "pattern"
	KeyName       = "name"
	KeyURL        = "url"
	KeyPath       = "path"
	KeyTemplate   = "template"
	KeyModule     = "module"
	KeyPlugin     = "plugin"
	KeyCount      = "count"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func BuildID(id string) slog.Attr { return slog.String(KeyBuildID, id) }
func Stage(name string) slog.Attr { return slog.String(KeyStage, name) }
func Pattern(p string) slog.Attr  { return slog.String(KeyPattern, p) }
func Name(n string) slog.Attr     { return slog.String(KeyName, n) }
func URL(u string) slog.Attr      { return slog.String(KeyURL, u) }
func Path(p string) slog.Attr     { return slog.String(KeyPath, p) }
func Template(t string) slog.Attr { return slog.String(KeyTemplate, t) }
func Module(m string) slog.Attr   { return slog.String(KeyModule, m) }
func Plugin(p string) slog.Attr   { return slog.String(KeyPlugin, p) }
func Count(n int) slog.Attr       { return slog.Int(KeyCount, n) }
func Duration(d time.Duration) slog.Attr {
	return slog.Float64(KeyDurationMS, float64(d.Microseconds())/1000)
}
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
