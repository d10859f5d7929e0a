package paths

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestJoinTreatsAbsolutePartsAsRelative(t *testing.T) {
	r := New(Options{Root: "/srv/site"})
	assert.Equal(t, "/srv/site/views/home", r.Join("/views", "home"))
	assert.Equal(t, "/srv/site/a/b", r.Join("a/", "/b"))
}

func TestModuleResolution(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "urls.yaml"), "[]")
	writeFile(t, filepath.Join(root, "views", "home.yaml"), "{}")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "dir.yaml"), 0o755))

	r := New(Options{Root: root})

	p, err := r.Module("urls")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "urls.yaml"), p)

	p, err = r.Module("views/home.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "views", "home.yaml"), p)

	_, err = r.Module("missing")
	require.ErrorIs(t, err, ErrModuleNotFound)

	_, err = r.Module("dir")
	require.ErrorIs(t, err, ErrModuleNotFound, "directories are not modules")
}

func TestModuleNegativeResultCachedUntilClear(t *testing.T) {
	root := t.TempDir()
	r := New(Options{Root: root})

	_, err := r.Module("late")
	require.ErrorIs(t, err, ErrModuleNotFound)

	writeFile(t, filepath.Join(root, "late.yaml"), "[]")
	_, err = r.Module("late")
	require.ErrorIs(t, err, ErrModuleNotFound, "negative result stays cached")

	cleared := 0
	r.OnClear(func() { cleared++ })
	r.Clear()
	assert.Equal(t, 1, cleared)

	p, err := r.Module("late")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "late.yaml"), p)
}

func TestTemplateSyncPriorityOrder(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "templates", "page.html"), "base")
	writeFile(t, filepath.Join(root, "theme", "templates", "page.html"), "theme")
	writeFile(t, filepath.Join(root, "templates", "only-base.html"), "base")

	r := New(Options{Root: root, Templates: []string{"theme/templates", "templates"}})

	p, err := r.Template("page.html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "theme", "templates", "page.html"), p)

	p, err = r.Template("only-base.html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "templates", "only-base.html"), p)

	_, err = r.Template("nope.html")
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestDefaultTemplateGlobMatchesAnyDepth(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "templates", "top.html"), "top")
	writeFile(t, filepath.Join(root, "apps", "blog", "templates", "post.html"), "post")
	writeFile(t, filepath.Join(root, ".hidden", "templates", "secret.html"), "secret")

	r := New(Options{Root: root})

	p, err := r.FindTemplate(context.Background(), "top.html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "templates", "top.html"), p)

	p, err = r.FindTemplate(context.Background(), "post.html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "apps", "blog", "templates", "post.html"), p)

	_, err = r.FindTemplate(context.Background(), "secret.html")
	require.ErrorIs(t, err, ErrTemplateNotFound)
}

func TestTemplateDirectoryIsNotAMatch(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "theme", "templates", "page.html"), 0o755))
	writeFile(t, filepath.Join(root, "templates", "page.html"), "base")

	r := New(Options{Root: root, Templates: []string{"theme/templates", "templates"}})
	p, err := r.FindTemplate(context.Background(), "page.html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "templates", "page.html"), p)
}

// The earlier glob wins even when its existence check finishes last, and the
// later glob's search is stopped.
func TestFindTemplatePriorityWinsOverSpeed(t *testing.T) {
	root := t.TempDir()
	themePath := filepath.Join(root, "theme", "templates", "page.html")
	writeFile(t, themePath, "theme")
	writeFile(t, filepath.Join(root, "templates", "page.html"), "base")

	r := New(Options{Root: root, Templates: []string{"theme/templates", "templates"}})
	var mu sync.Mutex
	var streams []*GlobStream
	r.streamHook = func(s *GlobStream) {
		mu.Lock()
		streams = append(streams, s)
		mu.Unlock()
	}
	r.stat = func(p string) (fs.FileInfo, error) {
		if p == themePath {
			time.Sleep(50 * time.Millisecond)
		}
		return os.Stat(p)
	}

	p, err := r.FindTemplate(context.Background(), "page.html")
	require.NoError(t, err)
	assert.Equal(t, themePath, p)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, streams, 2)
	for _, s := range streams {
		<-s.Done()
		assert.True(t, s.Stopped(), "stream %s should be stopped", s.Pattern())
	}
}

func TestFindTemplateCachesResults(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "templates", "a.html"), "a")
	r := New(Options{Root: root})

	_, err := r.FindTemplate(context.Background(), "a.html")
	require.NoError(t, err)

	calls := 0
	r.streamHook = func(*GlobStream) { calls++ }
	_, err = r.FindTemplate(context.Background(), "a.html")
	require.NoError(t, err)
	assert.Zero(t, calls, "cached lookup must not walk again")

	r.Clear()
	_, err = r.FindTemplate(context.Background(), "a.html")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestFindTemplateCanceledIsNotCached(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "templates", "a.html"), "a")
	r := New(Options{Root: root})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.FindTemplate(ctx, "a.html")
	if err != nil {
		require.True(t, errors.Is(err, context.Canceled))
	}

	p, err := r.FindTemplate(context.Background(), "a.html")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "templates", "a.html"), p)
}
