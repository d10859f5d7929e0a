package build

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// IndexFile is appended to URLs without a file extension.
const IndexFile = "index.html"

// OutputPath maps a resolved URL to a file under root. A URL without a file
// extension becomes a directory index. Query strings are not part of the path,
// and ".." segments cannot climb above root.
func OutputPath(root, rawURL string) string {
	p, _, _ := strings.Cut(rawURL, "?")
	if unescaped, err := url.PathUnescape(p); err == nil {
		p = unescaped
	}
	if path.Ext(p) == "" {
		p = path.Join(p, IndexFile)
	}
	return filepath.Join(root, filepath.FromSlash(path.Clean("/"+p)))
}
