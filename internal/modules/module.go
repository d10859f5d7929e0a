package modules

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Module is a loaded module value.
type Module struct {
	// Name is the logical name the module was requested by.
	Name string
	// Path is the source file; empty for installed modules.
	Path string
	// Value is the installed Go value, or the generic YAML decoding of the file.
	Value any

	node *yaml.Node
}

// Installed reports whether the module was registered in-process rather than read from disk.
func (m *Module) Installed() bool { return m.Path == "" }

// Decode decodes the module document into v.
func (m *Module) Decode(v any) error {
	if m.node != nil {
		if err := m.node.Decode(v); err != nil {
			return fmt.Errorf("decode module %q: %w", m.Name, err)
		}
		return nil
	}
	// Installed values round-trip through YAML so callers see one decoding path.
	raw, err := yaml.Marshal(m.Value)
	if err != nil {
		return fmt.Errorf("decode module %q: %w", m.Name, err)
	}
	if err := yaml.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decode module %q: %w", m.Name, err)
	}
	return nil
}
