// Package plugin provides the plugin system for extending a formidable site.
// Plugins are named in the settings file and set up against the site when it
// is instantiated; they contribute middleware, observers, template functions
// and shared API values.
package plugin

import (
	"context"
	"fmt"
)

// Plugin represents a formidable plugin with metadata and a setup hook.
type Plugin interface {
	// Metadata returns the plugin's metadata (name, version, type, capabilities).
	Metadata() PluginMetadata

	// Validate checks the options given in the settings file.
	Validate(options map[string]any) error

	// Setup attaches the plugin to the site exposed by pluginCtx.Host.
	Setup(ctx context.Context, pluginCtx *PluginContext) error
}

// PluginMetadata describes a plugin's identity and capabilities.
type PluginMetadata struct {
	// Name is the unique plugin identifier used in settings (e.g. "sitemap").
	Name string

	// Version is the semantic version (e.g. "v1.0.0").
	Version string

	// Type identifies the plugin category.
	Type PluginType

	// Description provides a human-readable summary of the plugin's purpose.
	Description string

	// Capabilities lists optional features this plugin provides.
	Capabilities []PluginCapability
}

// String returns a human-readable representation of the plugin metadata.
func (m PluginMetadata) String() string {
	return fmt.Sprintf("%s@%s (%s)", m.Name, m.Version, m.Type)
}

// Validate checks if the plugin metadata is valid.
func (m PluginMetadata) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("plugin name is required")
	}
	if m.Version == "" {
		return fmt.Errorf("plugin version is required")
	}
	if !m.Type.IsValid() {
		return fmt.Errorf("invalid plugin type: %s", m.Type)
	}
	return nil
}

// HasCapability reports whether the metadata lists c.
func (m PluginMetadata) HasCapability(c PluginCapability) bool {
	for _, have := range m.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// BasePlugin provides a permissive Validate. Plugins embed it when they take
// no options or validate lazily.
type BasePlugin struct{}

// Validate accepts any options.
func (BasePlugin) Validate(map[string]any) error { return nil }
