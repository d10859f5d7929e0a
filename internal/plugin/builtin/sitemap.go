package builtin

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"git.home.luguber.info/inful/formidable/internal/build"
	"git.home.luguber.info/inful/formidable/internal/plugin"
)

// SitemapFile is the default sitemap file name under the build root.
const SitemapFile = "sitemap.xml"

const sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// Sitemap writes sitemap.xml listing every HTML page of a build pass, and
// adds an absurl template function.
type Sitemap struct{}

// NewSitemap returns the sitemap plugin.
func NewSitemap() *Sitemap { return &Sitemap{} }

func (s *Sitemap) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:         "sitemap",
		Version:      version,
		Type:         plugin.PluginTypeGenerator,
		Description:  "Writes sitemap.xml for the pages of each build",
		Capabilities: []plugin.PluginCapability{plugin.CapabilityPostBuild, plugin.CapabilityFuncs},
	}
}

// Validate requires base_url, when given, to be an absolute URL.
func (s *Sitemap) Validate(options map[string]any) error {
	raw, ok := options["base_url"]
	if !ok {
		return nil
	}
	str, ok := raw.(string)
	if !ok {
		return fmt.Errorf("base_url must be a string, got %T", raw)
	}
	u, err := url.Parse(str)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("base_url %q must be absolute", str)
	}
	return nil
}

func (s *Sitemap) Setup(_ context.Context, pc *plugin.PluginContext) error {
	base := strings.TrimRight(pc.GetString("base_url", ""), "/")
	file := pc.GetString("file", SitemapFile)

	pc.Host.Funcs(map[string]any{
		"absurl": func(p string) string { return base + p },
	})
	pc.Host.Middleware().RegisterPost(func(ctx context.Context, run *build.Run) error {
		out := filepath.Join(run.Root, file)
		if err := WriteSitemap(out, base, run.Report); err != nil {
			return err
		}
		pc.Logger.Debug("Wrote sitemap", "path", out)
		return nil
	})
	return nil
}

// WriteSitemap writes the HTML pages of report as a sitemap to path, with
// each URL prefixed by base.
func WriteSitemap(path, base string, report *build.Report) error {
	set := urlset{Xmlns: sitemapNamespace}
	lastMod := report.Start.UTC().Format("2006-01-02")
	seen := make(map[string]bool)
	for _, page := range report.PagesSnapshot() {
		if !isHTML(page.Path) || seen[page.URL] {
			continue
		}
		seen[page.URL] = true
		set.URLs = append(set.URLs, sitemapURL{Loc: base + page.URL, LastMod: lastMod})
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal sitemap: %w", err)
	}
	data := append([]byte(xml.Header), body...)
	data = append(data, '\n')
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure sitemap dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write sitemap: %w", err)
	}
	return nil
}

func isHTML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return true
	}
	return false
}
