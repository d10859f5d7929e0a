package builtin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"golang.org/x/net/html"

	"git.home.luguber.info/inful/formidable/internal/build"
	"git.home.luguber.info/inful/formidable/internal/logfields"
	"git.home.luguber.info/inful/formidable/internal/plugin"
)

// ErrBrokenLinks is returned by the linkcheck hook when fail is set.
var ErrBrokenLinks = errors.New("broken links")

// BrokenLink is a root-relative reference with no file behind it.
type BrokenLink struct {
	Page string // URL of the page holding the link
	Href string
}

// linkAttrs lists the attributes inspected per element.
var linkAttrs = map[string]string{
	"a":      "href",
	"link":   "href",
	"img":    "src",
	"script": "src",
	"iframe": "src",
	"source": "src",
}

// LinkCheck parses written HTML pages after a build pass and reports
// root-relative links that point at nothing in the build root.
type LinkCheck struct {
	plugin.BasePlugin
}

// NewLinkCheck returns the linkcheck plugin.
func NewLinkCheck() *LinkCheck { return &LinkCheck{} }

func (l *LinkCheck) Metadata() plugin.PluginMetadata {
	return plugin.PluginMetadata{
		Name:         "linkcheck",
		Version:      version,
		Type:         plugin.PluginTypeValidator,
		Description:  "Reports internal links without a built target",
		Capabilities: []plugin.PluginCapability{plugin.CapabilityPostBuild},
	}
}

func (l *LinkCheck) Setup(_ context.Context, pc *plugin.PluginContext) error {
	fail := pc.GetBool("fail", false)
	sink := pc.Host.Sink()
	pc.Host.Middleware().RegisterPost(func(ctx context.Context, run *build.Run) error {
		broken, err := CheckLinks(ctx, run.Root, run.Report.PagesSnapshot())
		if err != nil {
			return err
		}
		for _, b := range broken {
			sink.Warn("Broken link", logfields.URL(b.Page), slog.String("href", b.Href))
		}
		if fail && len(broken) > 0 {
			return fmt.Errorf("%w: %d found", ErrBrokenLinks, len(broken))
		}
		return nil
	})
	return nil
}

// CheckLinks returns the broken root-relative links of the HTML pages.
func CheckLinks(ctx context.Context, root string, pages []build.Page) ([]BrokenLink, error) {
	var broken []BrokenLink
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !isHTML(page.Path) {
			continue
		}
		links, err := extractLinks(page.Path)
		if err != nil {
			return nil, err
		}
		for _, href := range links {
			if !targetExists(root, href) {
				broken = append(broken, BrokenLink{Page: page.URL, Href: href})
			}
		}
	}
	return broken, nil
}

func extractLinks(file string) ([]string, error) {
	f, err := os.Open(file)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", file, err)
	}
	defer f.Close()

	doc, err := html.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", file, err)
	}

	var links []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if attr, ok := linkAttrs[n.Data]; ok {
				for _, a := range n.Attr {
					if a.Key == attr && isRootRelative(a.Val) {
						links = append(links, a.Val)
					}
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func isRootRelative(href string) bool {
	return strings.HasPrefix(href, "/") && !strings.HasPrefix(href, "//")
}

// targetExists accepts either the directory index a URL maps to or a file
// at the literal path.
func targetExists(root, href string) bool {
	href, _, _ = strings.Cut(href, "#")
	candidates := []string{build.OutputPath(root, href)}
	if p, _, _ := strings.Cut(href, "?"); path.Ext(p) == "" && !strings.HasSuffix(p, "/") {
		candidates = append(candidates, filepath.Join(root, filepath.FromSlash(path.Clean("/"+p))))
	}
	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && info.Mode().IsRegular() {
			return true
		}
	}
	return false
}
