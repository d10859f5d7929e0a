package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// PluginSettings names a plugin and its options.
type PluginSettings struct {
	Name    string
	Options map[string]any
}

// Plugins is the ordered plugin list. In YAML it is a mapping of plugin name
// to options, or a sequence of names and single-key mappings; document order
// is kept either way.
type Plugins []PluginSettings

// Has reports whether a plugin with the given name is configured.
func (p Plugins) Has(name string) bool {
	for _, ps := range p {
		if ps.Name == name {
			return true
		}
	}
	return false
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (p *Plugins) UnmarshalYAML(node *yaml.Node) error {
	var out Plugins
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			ps, err := decodePlugin(node.Content[i], node.Content[i+1])
			if err != nil {
				return err
			}
			out = append(out, ps)
		}
	case yaml.SequenceNode:
		for _, item := range node.Content {
			switch {
			case item.Kind == yaml.ScalarNode:
				out = append(out, PluginSettings{Name: item.Value})
			case item.Kind == yaml.MappingNode && len(item.Content) == 2:
				ps, err := decodePlugin(item.Content[0], item.Content[1])
				if err != nil {
					return err
				}
				out = append(out, ps)
			default:
				return fmt.Errorf("line %d: plugin entries are names or single-key mappings", item.Line)
			}
		}
	case yaml.ScalarNode:
		if node.Tag != "!!null" {
			return fmt.Errorf("line %d: plugins must be a mapping or a sequence", node.Line)
		}
	default:
		return fmt.Errorf("line %d: plugins must be a mapping or a sequence", node.Line)
	}
	*p = out
	return nil
}

func decodePlugin(key, value *yaml.Node) (PluginSettings, error) {
	ps := PluginSettings{Name: key.Value}
	if value.Kind == yaml.ScalarNode && value.Tag == "!!null" {
		return ps, nil
	}
	if value.Kind != yaml.MappingNode {
		return ps, fmt.Errorf("line %d: options of plugin %q must be a mapping", value.Line, ps.Name)
	}
	if err := value.Decode(&ps.Options); err != nil {
		return ps, fmt.Errorf("plugin %q: %w", ps.Name, err)
	}
	return ps, nil
}

// MarshalYAML writes the list as a mapping in order.
func (p Plugins) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, ps := range p {
		value := &yaml.Node{}
		if ps.Options == nil {
			value.Kind = yaml.ScalarNode
			value.Tag = "!!null"
			value.Value = "null"
		} else if err := value.Encode(ps.Options); err != nil {
			return nil, err
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: ps.Name}, value)
	}
	return node, nil
}
