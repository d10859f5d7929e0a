package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ferrors "git.home.luguber.info/inful/formidable/internal/foundation/errors"
	"git.home.luguber.info/inful/formidable/internal/templating"
)

// Validate checks resolved settings.
func (s *Settings) Validate() error {
	fail := func(field, msg string) error {
		return ferrors.ValidationError(msg).WithContext("field", field).WithContext("path", s.Path).Build()
	}
	if s.Root == "" || !filepath.IsAbs(s.Root) {
		return fail("root", "root must resolve to an absolute directory")
	}
	if s.Build == "" || !filepath.IsAbs(s.Build) {
		return fail("build", "build must resolve to an absolute directory")
	}
	if filepath.Clean(s.Build) == filepath.Clean(s.Root) {
		return fail("build", "build directory must differ from the site root")
	}
	if len(s.Templates) == 0 {
		return fail("templates", "at least one template search pattern is required")
	}
	for i, t := range s.Templates {
		if strings.TrimSpace(t) == "" {
			return fail("templates", fmt.Sprintf("template pattern %d is empty", i))
		}
	}
	if s.URLs == "" {
		return fail("urls", "urls module name is required")
	}
	if s.Meta == "" {
		return fail("meta", "meta key is required")
	}
	if !templating.ValidEngine(s.Templating) {
		return fail("templating", fmt.Sprintf("unknown templating engine %q (valid: %s)",
			s.Templating, strings.Join(templating.Engines(), ", ")))
	}
	seen := map[string]bool{}
	for _, p := range s.Plugins {
		if p.Name == "" {
			return fail("plugins", "plugin name is required")
		}
		if seen[p.Name] {
			return fail("plugins", fmt.Sprintf("plugin %q configured twice", p.Name))
		}
		seen[p.Name] = true
	}
	return nil
}
