// Package config loads formidable settings files.
//
// A settings file is YAML. Environment variables are expanded before parsing
// (${VAR}), and .env.local / .env files next to the settings file are loaded
// first without overriding the process environment. Relative paths resolve
// against the settings file's directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	ferrors "git.home.luguber.info/inful/formidable/internal/foundation/errors"
	"git.home.luguber.info/inful/formidable/internal/templating"
)

// EnvSettingsModule names the environment variable holding the default settings path.
const EnvSettingsModule = "FORMIDABLE_SETTINGS_MODULE"

// DefaultFile is looked up when a settings path names a directory.
const DefaultFile = "settings.yaml"

// Defaults for optional settings.
const (
	DefaultURLs       = "urls"
	DefaultMeta       = "meta"
	DefaultTemplating = templating.DefaultEngine
)

// DefaultTemplates is the template search list used when none is configured.
var DefaultTemplates = []string{"**/templates"}

// Settings configures one site instance.
type Settings struct {
	// Path is the absolute path of the settings file; empty for in-memory settings.
	Path string `yaml:"-"`

	Root        string         `yaml:"root,omitempty"`
	Build       string         `yaml:"build,omitempty"`
	Templates   []string       `yaml:"templates,omitempty"`
	URLs        string         `yaml:"urls,omitempty"`
	Context     map[string]any `yaml:"context,omitempty"`
	Meta        string         `yaml:"meta,omitempty"`
	Overwrite   bool           `yaml:"overwrite"`
	Verbose     bool           `yaml:"verbose,omitempty"`
	Debug       bool           `yaml:"debug,omitempty"`
	Templating  string         `yaml:"templating,omitempty"`
	MetricsFile string         `yaml:"metrics_file,omitempty"`
	Plugins     Plugins        `yaml:"plugins,omitempty"`
}

// Default returns settings with every default applied except the paths,
// which depend on where the settings live.
func Default() Settings {
	return Settings{
		Templates:  append([]string(nil), DefaultTemplates...),
		URLs:       DefaultURLs,
		Meta:       DefaultMeta,
		Overwrite:  true,
		Templating: DefaultTemplating,
	}
}

// ResolvePath turns a settings module path into an absolute file path. A
// directory resolves to its settings.yaml; a path without extension that does
// not exist is tried with .yaml and .yml.
func ResolvePath(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	switch {
	case err == nil && info.IsDir():
		return filepath.Join(abs, DefaultFile), nil
	case err == nil:
		return abs, nil
	case filepath.Ext(abs) == "":
		for _, ext := range []string{".yaml", ".yml"} {
			if _, serr := os.Stat(abs + ext); serr == nil {
				return abs + ext, nil
			}
		}
	}
	return abs, nil
}

// Load reads, expands, defaults and validates the settings file at path.
func Load(path string) (*Settings, error) {
	abs, err := ResolvePath(path)
	if err != nil {
		return nil, ferrors.ConfigError("invalid settings path").WithCause(err).WithContext("path", path).Build()
	}
	if _, err := os.Stat(abs); os.IsNotExist(err) {
		return nil, ferrors.ConfigError(fmt.Sprintf("settings file not found: %s", abs)).
			WithCause(err).WithContext("path", abs).Build()
	}

	dir := filepath.Dir(abs)
	if err := loadEnvFiles(dir); err != nil {
		return nil, ferrors.ConfigError("failed to load environment files").WithCause(err).WithContext("path", dir).Build()
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, ferrors.ConfigError("failed to read settings file").WithCause(err).WithContext("path", abs).Build()
	}

	s := Default()
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &s); err != nil {
		return nil, ferrors.ConfigError("failed to parse settings file").WithCause(err).WithContext("path", abs).Build()
	}
	s.Path = abs
	s.applyDefaults(dir)

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Resolve applies path defaults relative to dir. Load calls it; callers
// building Settings in memory call it before Validate.
func (s *Settings) Resolve(dir string) {
	s.applyDefaults(dir)
}

func (s *Settings) applyDefaults(dir string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return filepath.Clean(p)
		}
		return filepath.Join(dir, p)
	}
	if s.Root == "" {
		s.Root = dir
	}
	s.Root = abs(s.Root)
	if s.Build == "" {
		s.Build = filepath.Join(s.Root, "..", "build")
	}
	s.Build = abs(s.Build)
	if s.MetricsFile != "" {
		s.MetricsFile = abs(s.MetricsFile)
	}
	if len(s.Templates) == 0 {
		s.Templates = append([]string(nil), DefaultTemplates...)
	}
	if s.URLs == "" {
		s.URLs = DefaultURLs
	}
	if s.Meta == "" {
		s.Meta = DefaultMeta
	}
	if s.Templating == "" {
		s.Templating = DefaultTemplating
	}
}
