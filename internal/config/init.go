package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/formidable/internal/foundation/errors"
)

// Example returns the settings Init writes.
func Example() Settings {
	s := Default()
	s.Root = "site"
	s.Build = "build"
	s.Context = map[string]any{
		"site": map[string]any{"title": "My Site"},
	}
	s.Plugins = Plugins{
		{Name: "sitemap", Options: map[string]any{"base_url": "https://example.com"}},
		{Name: "report"},
	}
	return s
}

// Init writes an example settings file to path.
func Init(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return ferrors.NewError(ferrors.CategoryAlreadyExists,
			fmt.Sprintf("settings file already exists: %s (use --force to overwrite)", path)).
			WithContext("path", path).Build()
	}

	example := Example()
	data, err := yaml.Marshal(&example)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create settings dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return ferrors.FileSystemError("failed to write settings file").WithCause(err).WithContext("path", path).Build()
	}
	return nil
}
