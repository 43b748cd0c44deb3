package schema

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

func (e Entry) toDoc() entryDoc {
	return entryDoc{
		Type:        e.Type.Name(),
		Default:     e.Default,
		Min:         e.Min,
		Max:         e.Max,
		List:        e.List,
		Options:     e.Options,
		Pair:        e.Pair,
		Role:        string(e.Role),
		Description: e.Description,
	}
}

// MarshalJSON serializes the schema as a map of sections to items to entries.
// JSON objects carry no order; use MarshalYAML to keep declaration order.
func (m *Master) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	raw := make(map[string]map[string]entryDoc, len(m.sections))
	for _, e := range m.Entries() {
		if raw[e.Section] == nil {
			raw[e.Section] = make(map[string]entryDoc)
		}
		raw[e.Section][e.Item] = e.toDoc()
	}
	return json.Marshal(raw)
}

// UnmarshalJSON deserializes a schema written by MarshalJSON (or by hand).
func (m *Master) UnmarshalJSON(data []byte) error {
	if m == nil {
		return fmt.Errorf("schema: UnmarshalJSON on nil pointer")
	}
	if string(data) == "null" {
		*m = *NewMaster()
		return nil
	}

	parsed, err := Parse(data, FormatJSON)
	if err != nil {
		return err
	}
	*m = *parsed
	return nil
}

// MarshalYAML renders the schema as a mapping in declaration order.
func (m *Master) MarshalYAML() (any, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	if m == nil {
		return root, nil
	}

	for _, section := range m.sections {
		body := &yaml.Node{Kind: yaml.MappingNode}
		for _, item := range m.items[section] {
			var value yaml.Node
			if err := value.Encode(m.entries[section][item].toDoc()); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", section, item, err)
			}
			body.Content = append(body.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: item},
				&value,
			)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: section},
			body,
		)
	}
	return root, nil
}
