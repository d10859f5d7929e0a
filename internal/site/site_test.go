package site

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/formidable/internal/build"
	"git.home.luguber.info/inful/formidable/internal/config"
	"git.home.luguber.info/inful/formidable/internal/eventstore"
	ferrors "git.home.luguber.info/inful/formidable/internal/foundation/errors"
	"git.home.luguber.info/inful/formidable/internal/log"
	"git.home.luguber.info/inful/formidable/internal/plugin/builtin"
	"git.home.luguber.info/inful/formidable/internal/urls"
)

const routes = `
- pattern: /
  name: home
  view: views/home
- pattern: /blog
  children:
    - pattern: /:slug/
      name: post
      views:
        - params: {slug: hello}
          template: post.html
          context: {title: Hello}
`

// writeSite lays out a site under dir/site and returns the settings path.
func writeSite(t *testing.T, dir, settings string, extra map[string]string) string {
	t.Helper()
	files := map[string]string{
		"settings.yaml":         settings,
		"urls.yaml":             routes,
		"views/home.yaml":       "template: home.html\ncontext: {title: Home}\n",
		"templates/home.html":   `<h1>{{.title}} - {{.site}}</h1><a href="{{ url "post" "slug" "hello" }}">post</a>`,
		"templates/post.html":   `<h1>{{.title}}</h1>{{ .meta.url }}`,
		"templates/broken.html": `{{ url "nope" }}`,
	}
	for k, v := range extra {
		files[k] = v
	}
	root := filepath.Join(dir, "site")
	for name, content := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return filepath.Join(root, "settings.yaml")
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestSiteBuild(t *testing.T) {
	dir := t.TempDir()
	path := writeSite(t, dir, `
context:
  site: Example
plugins:
  sitemap:
    base_url: https://example.com
  report:
`, nil)
	sink := log.NewRecorder()
	loader := NewLoader(WithSink(sink))
	t.Cleanup(func() { _ = loader.Close() })

	s, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	report, err := s.Build(context.Background())
	require.NoError(t, err)
	assert.Empty(t, sink.Failures())

	out := filepath.Join(dir, "build")
	assert.Equal(t, out, s.BuildRoot())
	assert.Equal(t, `<h1>Home - Example</h1><a href="/blog/hello/">post</a>`, readFile(t, filepath.Join(out, "index.html")))
	assert.Equal(t, `<h1>Hello</h1>/blog/hello/`, readFile(t, filepath.Join(out, "blog", "hello", "index.html")))
	assert.Contains(t, readFile(t, filepath.Join(out, builtin.SitemapFile)), "<loc>https://example.com/blog/hello/</loc>")
	assert.FileExists(t, filepath.Join(out, build.ReportFile))
	assert.Len(t, report.Pages, 2)

	patterns, err := s.Routes(context.Background())
	require.NoError(t, err)
	var names []string
	for _, p := range patterns {
		names = append(names, p.Name()+" "+p.String())
	}
	assert.Equal(t, []string{"home /", "post /blog/:slug/"}, names)

	u, err := s.Resolve("post", map[string]string{"slug": "x"})
	require.NoError(t, err)
	assert.Equal(t, "/blog/x/", u)
}

func TestSiteURLFuncFailsBuild(t *testing.T) {
	dir := t.TempDir()
	path := writeSite(t, dir, "{}\n", map[string]string{
		"views/home.yaml": "template: broken.html\n",
	})
	sink := log.NewRecorder()
	loader := NewLoader(WithSink(sink))
	t.Cleanup(func() { _ = loader.Close() })

	s, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	report, err := s.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), urls.ErrUnknownPattern.Error())
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryRender) || ferrors.HasCategory(err, ferrors.CategoryRouting))
	assert.Equal(t, build.OutcomeFailed, report.Outcome)
	assert.Len(t, sink.Failures(), 1)
}

func TestLoaderCachesByPath(t *testing.T) {
	dir := t.TempDir()
	path := writeSite(t, dir, "{}\n", nil)
	loader := NewLoader(WithSink(log.NewRecorder()))
	t.Cleanup(func() { _ = loader.Close() })

	a, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	b, err := loader.Load(context.Background(), filepath.Dir(path))
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestLoaderDefaultPath(t *testing.T) {
	dir := t.TempDir()
	path := writeSite(t, dir, "{}\n", nil)
	loader := NewLoader(WithSink(log.NewRecorder()))
	t.Cleanup(func() { _ = loader.Close() })

	t.Setenv(config.EnvSettingsModule, "")
	_, err := loader.Load(context.Background(), "")
	require.ErrorIs(t, err, ErrNoSettings)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))

	t.Setenv(config.EnvSettingsModule, path)
	assert.Equal(t, path, loader.DefaultPath())
	fromEnv, err := loader.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, path, fromEnv.Settings().Path)

	require.NoError(t, loader.Reset())
	again, err := loader.Load(context.Background(), "")
	require.NoError(t, err)
	assert.NotSame(t, fromEnv, again, "reset evicts the default site")
}

func TestLoaderConfigure(t *testing.T) {
	dir := t.TempDir()
	first := writeSite(t, filepath.Join(dir, "a"), "{}\n", nil)
	second := writeSite(t, filepath.Join(dir, "b"), "{}\n", nil)
	loader := NewLoader(WithSink(log.NewRecorder()))
	t.Cleanup(func() { _ = loader.Close() })

	require.NoError(t, loader.Configure(first))
	a, err := loader.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, first, a.Settings().Path)

	require.NoError(t, loader.Configure(second))
	b, err := loader.Load(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, second, b.Settings().Path)
}

func TestLoaderLoadWith(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(WithSink(log.NewRecorder()))
	t.Cleanup(func() { _ = loader.Close() })
	settingsPath := filepath.Join(dir, "memory", "settings.yaml")

	settings := config.Default()
	settings.Root = "src"
	s, err := loader.LoadWith(context.Background(), settingsPath, &settings)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "memory", "src"), s.Root())
	assert.Equal(t, filepath.Join(dir, "memory", "build"), s.BuildRoot())
	assert.Equal(t, "src", settings.Root, "caller settings are not modified")

	_, err = loader.LoadWith(context.Background(), settingsPath, &settings)
	require.ErrorIs(t, err, ErrSiteExists)

	same, err := loader.Load(context.Background(), settingsPath)
	require.NoError(t, err)
	assert.Same(t, s, same)
}

func TestSiteInstancesAreIndependent(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(WithSink(log.NewRecorder()))
	t.Cleanup(func() { _ = loader.Close() })

	settings := config.Default()
	a, err := loader.LoadWith(context.Background(), filepath.Join(dir, "a", "settings.yaml"), &settings)
	require.NoError(t, err)
	b, err := loader.LoadWith(context.Background(), filepath.Join(dir, "b", "settings.yaml"), &settings)
	require.NoError(t, err)

	_, err = a.URL("/only-a", urls.Views(urls.View{Template: "x.html"}), "only-a")
	require.NoError(t, err)
	_, err = a.Resolve("only-a", nil)
	require.NoError(t, err)
	_, err = b.Resolve("only-a", nil)
	require.ErrorIs(t, err, urls.ErrUnknownPattern)

	a.Middleware().RegisterPre(func(context.Context, *build.Run) error { return nil })
	pre, _ := b.Middleware().Len()
	assert.Zero(t, pre)
}

func TestSiteInstalledModule(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(WithSink(log.NewRecorder()), WithModule("urls", []urls.Route{{
		Pattern: "/hello.txt",
		Name:    "hello",
		Views: []urls.View{{Render: func(_ context.Context, data map[string]any) (string, error) {
			return "hi " + data["who"].(string), nil
		}, Context: map[string]any{"who": "there"}}},
	}}))
	t.Cleanup(func() { _ = loader.Close() })

	settings := config.Default()
	s, err := loader.LoadWith(context.Background(), filepath.Join(dir, "site", "settings.yaml"), &settings)
	require.NoError(t, err)
	_, err = s.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hi there", readFile(t, filepath.Join(dir, "build", "hello.txt")))
}

func TestSitePlugins(t *testing.T) {
	dir := t.TempDir()
	path := writeSite(t, dir, `
metrics_file: ../metrics/formidable.prom
plugins:
  history:
`, nil)
	loader := NewLoader(WithSink(log.NewRecorder()))
	t.Cleanup(func() { _ = loader.Close() })

	s, err := loader.Load(context.Background(), path)
	require.NoError(t, err)
	require.NotNil(t, s.Prometheus())
	_, err = s.Build(context.Background())
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "metrics", "formidable.prom"))
	v, ok := s.API().Get(builtin.HistoryAPI)
	require.True(t, ok)
	history := v.(*eventstore.BuildHistoryProjection).GetHistory()
	require.Len(t, history, 1)
	assert.Equal(t, "success", history[0].Status)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close(), "close is idempotent")
}

func TestSitePluginErrors(t *testing.T) {
	dir := t.TempDir()
	loader := NewLoader(WithSink(log.NewRecorder()))
	t.Cleanup(func() { _ = loader.Close() })

	_, err := loader.Load(context.Background(), writeSite(t, filepath.Join(dir, "a"), "plugins: {nope: }\n", nil))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryPlugin))

	_, err = loader.Load(context.Background(), writeSite(t, filepath.Join(dir, "b"), "plugins: {sitemap: {base_url: nothttp}}\n", nil))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryPlugin))
}

func TestAPI(t *testing.T) {
	api := NewAPI()
	require.NoError(t, api.Register("b", 1))
	require.NoError(t, api.Register("a", 2))
	assert.True(t, errors.Is(api.Register("a", 3), ErrAPIExists))
	assert.Error(t, api.Register("", 1))
	v, ok := api.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 2, v)
	assert.Equal(t, []string{"a", "b"}, api.Names())
}
