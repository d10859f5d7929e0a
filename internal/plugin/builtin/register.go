package builtin

import (
	"path/filepath"

	"git.home.luguber.info/inful/formidable/internal/plugin"
)

const version = "v1.0.0"

// Register adds new instances of every built-in plugin to r.
func Register(r *plugin.Registry) error {
	for _, p := range []plugin.Plugin{
		NewSitemap(),
		NewLinkCheck(),
		NewHistory(),
		NewReport(),
		NewMetrics(),
	} {
		if err := r.Register(p); err != nil {
			return err
		}
	}
	return nil
}

// resolvePath makes p absolute against root. An empty p yields def.
func resolvePath(root, p, def string) string {
	if p == "" {
		p = def
	}
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}
