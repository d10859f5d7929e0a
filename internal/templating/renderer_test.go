package templating

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/formidable/internal/paths"
)

func newEngine(t *testing.T, name string, files map[string]string) *Engine {
	t.Helper()
	root := t.TempDir()
	for file, content := range files {
		p := filepath.Join(root, "templates", file)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	e, err := New(name, paths.New(paths.Options{Root: root}))
	require.NoError(t, err)
	return e
}

func TestRenderRequiresIdentifier(t *testing.T) {
	e := newEngine(t, "", nil)
	_, err := e.Render(context.Background(), "", nil, "")
	require.ErrorIs(t, err, ErrRender)
}

func TestUnknownEngine(t *testing.T) {
	_, err := New("swig", nil)
	require.ErrorIs(t, err, ErrUnknownEngine)
	assert.True(t, ValidEngine("markdown"))
	assert.False(t, ValidEngine("swig"))
}

func TestHTMLEngineEscapesAndIncludes(t *testing.T) {
	e := newEngine(t, EngineHTML, map[string]string{
		"home.html":    `<h1>{{ .title }}</h1>{{ include "partial.html" . }}`,
		"partial.html": `<p>{{ .body }}</p>`,
	})
	assert.Equal(t, EngineHTML, e.Name())
	out, err := e.Render(context.Background(), "home.html", map[string]any{"title": "Hi", "body": "<b>"}, "/build/index.html")
	require.NoError(t, err)
	assert.Equal(t, `<h1>Hi</h1><p>&lt;b&gt;</p>`, out)
}

func TestURLFunc(t *testing.T) {
	e := newEngine(t, EngineText, map[string]string{
		"links.txt": `{{ url "post" "slug" .slug }}|{{ url "home" }}`,
		"bad.txt":   `{{ url "missing" }}`,
	})
	e.SetURLFunc(func(name string, values map[string]string) (string, error) {
		switch name {
		case "post":
			return "/blog/" + values["slug"], nil
		case "home":
			return "/", nil
		}
		return "", errors.New("unknown URL pattern")
	})

	out, err := e.Render(context.Background(), "links.txt", map[string]any{"slug": "hello"}, "")
	require.NoError(t, err)
	assert.Equal(t, "/blog/hello|/", out)

	_, err = e.Render(context.Background(), "bad.txt", nil, "")
	require.Error(t, err, "url failures fail the render")
	assert.Contains(t, err.Error(), "unknown URL pattern")
}

func TestURLValues(t *testing.T) {
	got, err := urlValues([]any{"year", 2024, "month", "05"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"year": "2024", "month": "05"}, got)

	got, err = urlValues([]any{map[string]any{"slug": "x"}})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"slug": "x"}, got)

	_, err = urlValues([]any{"odd"})
	require.Error(t, err)
	_, err = urlValues([]any{1, "x"})
	require.Error(t, err)
}

func TestMarkdownEngine(t *testing.T) {
	e := newEngine(t, EngineMarkdown, map[string]string{
		"post.md":   "# {{ .title }}\n\nSome *text*.\n",
		"page.html": "<div>{{ .title }}</div>",
	})
	out, err := e.Render(context.Background(), "post.md", map[string]any{"title": "Hello"}, "")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Hello</h1>")
	assert.Contains(t, out, "<em>text</em>")

	out, err = e.Render(context.Background(), "page.html", map[string]any{"title": "Plain"}, "")
	require.NoError(t, err)
	assert.Equal(t, "<div>Plain</div>", out)
}

func TestOutputAndCustomFuncs(t *testing.T) {
	e := newEngine(t, EngineText, map[string]string{
		"p.txt": `{{ output }} {{ shout .x }}`,
	})
	e.Funcs(map[string]any{"shout": func(s string) string { return s + "!" }})
	out, err := e.Render(context.Background(), "p.txt", map[string]any{"x": "hey"}, "/b/index.html")
	require.NoError(t, err)
	assert.Equal(t, "/b/index.html hey!", out)
}

func TestMissingTemplate(t *testing.T) {
	e := newEngine(t, EngineHTML, nil)
	_, err := e.Render(context.Background(), "none.html", nil, "")
	require.ErrorIs(t, err, paths.ErrTemplateNotFound)
}

func TestIncludeDepthLimit(t *testing.T) {
	e := newEngine(t, EngineText, map[string]string{
		"loop.txt": `{{ include "loop.txt" . }}`,
	})
	_, err := e.Render(context.Background(), "loop.txt", map[string]any{}, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include depth")
}
