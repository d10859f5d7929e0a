package paths

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(s *GlobStream) []string {
	var out []string
	for m := range s.Matches() {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

func TestGlobStreamMatches(t *testing.T) {
	root := t.TempDir()
	for _, p := range []string{"templates/a.html", "x/templates/a.html", "x/y/templates/a.html", "x/other/a.html"} {
		full := filepath.Join(root, filepath.FromSlash(p))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, nil, 0o644))
	}

	s, err := NewGlobStream(context.Background(), root, "**/templates/a.html")
	require.NoError(t, err)
	got := collect(s)
	require.NoError(t, s.Err())
	assert.Equal(t, []string{
		filepath.Join(root, "templates", "a.html"),
		filepath.Join(root, "x", "templates", "a.html"),
		filepath.Join(root, "x", "y", "templates", "a.html"),
	}, got)
}

func TestGlobStreamMissingPrefixIsEmpty(t *testing.T) {
	s, err := NewGlobStream(context.Background(), t.TempDir(), "theme/templates/a.html")
	require.NoError(t, err)
	assert.Empty(t, collect(s))
	assert.NoError(t, s.Err())
}

func TestGlobStreamStop(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 20; i++ {
		dir := filepath.Join(root, "d"+string(rune('a'+i)), "templates")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "p.html"), nil, 0o644))
	}
	s, err := NewGlobStream(context.Background(), root, "**/templates/p.html")
	require.NoError(t, err)
	first, ok := <-s.Matches()
	require.True(t, ok)
	assert.NotEmpty(t, first)
	s.Stop()
	<-s.Done()
	assert.True(t, s.Stopped())
}

func TestStaticPrefix(t *testing.T) {
	assert.Equal(t, "theme/templates", staticPrefix("theme/templates/page.html"))
	assert.Equal(t, "", staticPrefix("**/templates/page.html"))
	assert.Equal(t, "a", staticPrefix("a/*/templates/x.html"))
}
