package plugin

import "fmt"

// PluginType identifies the category of plugin.
type PluginType string

const (
	// PluginTypeGenerator writes additional output after pages are rendered.
	PluginTypeGenerator PluginType = "generator"

	// PluginTypeValidator inspects the build output and reports problems.
	PluginTypeValidator PluginType = "validator"

	// PluginTypeObserver records build lifecycle events.
	PluginTypeObserver PluginType = "observer"

	// PluginTypeTemplating contributes template functions or engines.
	PluginTypeTemplating PluginType = "templating"
)

// IsValid returns true if the plugin type is recognized.
func (t PluginType) IsValid() bool {
	switch t {
	case PluginTypeGenerator, PluginTypeValidator, PluginTypeObserver, PluginTypeTemplating:
		return true
	default:
		return false
	}
}

// String returns the string representation of the plugin type.
func (t PluginType) String() string {
	return string(t)
}

// PluginCapability describes how a plugin attaches to the site.
type PluginCapability string

const (
	// CapabilityPreBuild indicates the plugin registers pre-build middleware.
	CapabilityPreBuild PluginCapability = "pre_build"

	// CapabilityPostBuild indicates the plugin registers post-build middleware.
	CapabilityPostBuild PluginCapability = "post_build"

	// CapabilityObserver indicates the plugin observes stage and build completion.
	CapabilityObserver PluginCapability = "observer"

	// CapabilityFuncs indicates the plugin adds template functions.
	CapabilityFuncs PluginCapability = "funcs"

	// CapabilityAPI indicates the plugin exposes values through the site API.
	CapabilityAPI PluginCapability = "api"
)

// String returns the string representation of the capability.
func (c PluginCapability) String() string {
	return string(c)
}

// PluginError represents an error that occurred within a plugin.
type PluginError struct {
	// PluginName identifies which plugin failed.
	PluginName string

	// Operation describes what the plugin was doing when it failed.
	Operation string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *PluginError) Error() string {
	return fmt.Sprintf("plugin %s failed during %s: %v", e.PluginName, e.Operation, e.Err)
}

// Unwrap returns the underlying error for error inspection.
func (e *PluginError) Unwrap() error {
	return e.Err
}

// NewPluginError creates a new plugin error.
func NewPluginError(pluginName, operation string, err error) *PluginError {
	return &PluginError{
		PluginName: pluginName,
		Operation:  operation,
		Err:        err,
	}
}
