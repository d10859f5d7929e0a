package plugin

import (
	"context"
	"fmt"
	"log/slog"
)

// PluginContext provides plugins with access to the site and their options.
type PluginContext struct {
	// Context is the standard Go context for cancellation and deadlines.
	Context context.Context

	// Logger provides structured logging for plugin operations.
	Logger *slog.Logger

	// Host is the site the plugin is being set up against.
	Host Host

	// Name is the plugin name as written in the settings file.
	Name string

	// Options are the plugin's settings.
	Options map[string]any
}

// NewPluginContext creates a new plugin context.
func NewPluginContext(ctx context.Context, logger *slog.Logger, host Host, name string, options map[string]any) *PluginContext {
	if logger == nil {
		logger = slog.Default()
	}
	if options == nil {
		options = map[string]any{}
	}
	return &PluginContext{
		Context: ctx,
		Logger:  logger.With(slog.String("plugin", name)),
		Host:    host,
		Name:    name,
		Options: options,
	}
}

// GetValue retrieves an option. Returns nil if the key doesn't exist.
func (pc *PluginContext) GetValue(key string) any {
	return pc.Options[key]
}

// GetString retrieves a string option.
// Returns def if the key doesn't exist or is empty. Scalars are stringified.
func (pc *PluginContext) GetString(key, def string) string {
	switch v := pc.Options[key].(type) {
	case nil:
		return def
	case string:
		if v == "" {
			return def
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}

// GetBool retrieves a boolean option.
// Returns def if the key doesn't exist or is not a boolean.
func (pc *PluginContext) GetBool(key string, def bool) bool {
	if v, ok := pc.Options[key].(bool); ok {
		return v
	}
	return def
}

// GetInt retrieves an integer option.
// Returns def if the key doesn't exist or is not a number.
func (pc *PluginContext) GetInt(key string, def int) int {
	switch v := pc.Options[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}
