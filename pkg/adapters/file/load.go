package file

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/aretw0/inicheck/pkg/adapters/memory"
	"github.com/aretw0/inicheck/pkg/ports"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Format identifies a configuration file format.
type Format string

const (
	FormatINI  Format = "ini"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ini", ".cfg", ".conf":
		return FormatINI, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	case ".hcl":
		return FormatHCL, nil
	}
	return "", fmt.Errorf("unsupported configuration format %q", filepath.Ext(path))
}

// Load reads a configuration file into a memory store rooted at the file's
// absolute directory.
func Load(path string) (*memory.Store, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	sections, err := Parse(data, format, abs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return memory.NewStore(filepath.Dir(abs), sections...), nil
}

// Parse decodes configuration data. name is only used in HCL diagnostics.
//
// INI and HCL keep declaration order; YAML and JSON keep it too. TOML
// documents are sorted by name.
func Parse(data []byte, format Format, name string) ([]ports.Section, error) {
	switch format {
	case FormatINI:
		return parseINI(data)
	case FormatYAML, FormatJSON:
		return parseYAML(data)
	case FormatTOML:
		return parseTOML(data)
	case FormatHCL:
		return parseHCL(data, name)
	}
	return nil, fmt.Errorf("unsupported configuration format %q", format)
}

// parseINI splits values holding a comma into sequences of trimmed strings.
func parseINI(data []byte) ([]ports.Section, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{
		SpaceBeforeInlineComment: true,
	}, data)
	if err != nil {
		return nil, fmt.Errorf("invalid ini: %w", err)
	}

	var sections []ports.Section
	for _, sec := range cfg.Sections() {
		if sec.Name() == ini.DefaultSection && len(sec.Keys()) == 0 {
			continue
		}
		out := ports.Section{Name: sec.Name()}
		for _, key := range sec.Keys() {
			out.Items = append(out.Items, ports.Item{Name: key.Name(), Value: iniValue(key.String())})
		}
		sections = append(sections, out)
	}
	return sections, nil
}

func iniValue(s string) any {
	if !strings.Contains(s, ",") {
		return s
	}
	parts := strings.Split(s, ",")
	seq := make([]any, 0, len(parts))
	for _, p := range parts {
		seq = append(seq, strings.TrimSpace(p))
	}
	return seq
}

// parseYAML also reads JSON, which is a subset of YAML.
func parseYAML(data []byte) ([]ports.Section, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid document: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: configuration must be a mapping of sections", root.Line)
	}

	var sections []ports.Section
	for i := 0; i+1 < len(root.Content); i += 2 {
		name, body := root.Content[i].Value, root.Content[i+1]
		sec := ports.Section{Name: name}

		switch {
		case body.Kind == yaml.ScalarNode && body.Tag == "!!null":
		case body.Kind == yaml.MappingNode:
			for j := 0; j+1 < len(body.Content); j += 2 {
				key := body.Content[j].Value
				var v any
				if err := body.Content[j+1].Decode(&v); err != nil {
					return nil, fmt.Errorf("%s.%s: %w", name, key, err)
				}
				v, err := flatValue(v)
				if err != nil {
					return nil, fmt.Errorf("%s.%s: %w", name, key, err)
				}
				sec.Items = append(sec.Items, ports.Item{Name: key, Value: v})
			}
		default:
			return nil, fmt.Errorf("line %d: section %q must be a mapping", body.Line, name)
		}
		sections = append(sections, sec)
	}
	return sections, nil
}

func parseTOML(data []byte) ([]ports.Section, error) {
	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid toml: %w", err)
	}

	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	var sections []ports.Section
	for _, name := range names {
		table, ok := doc[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("top-level key %q is outside a section", name)
		}

		keys := make([]string, 0, len(table))
		for key := range table {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		sec := ports.Section{Name: name}
		for _, key := range keys {
			v, err := flatValue(table[key])
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", name, key, err)
			}
			sec.Items = append(sec.Items, ports.Item{Name: key, Value: v})
		}
		sections = append(sections, sec)
	}
	return sections, nil
}

// flatValue rejects nested tables and turns local TOML dates into their
// text form.
func flatValue(v any) (any, error) {
	switch x := v.(type) {
	case map[string]any:
		return nil, fmt.Errorf("nested tables are not supported")
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			if _, ok := e.([]any); ok {
				return nil, fmt.Errorf("nested sequences are not supported")
			}
			fe, err := flatValue(e)
			if err != nil {
				return nil, err
			}
			out[i] = fe
		}
		return out, nil
	case toml.LocalDate:
		return x.String(), nil
	case toml.LocalDateTime:
		return x.String(), nil
	case toml.LocalTime:
		return x.String(), nil
	}
	return v, nil
}

// textValue renders a scalar the way the datetime and number casters read
// it back.
func textValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case []byte:
		return string(bytes.TrimSpace(x))
	}
	return fmt.Sprint(v)
}
