package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format is the encoding of a schema document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the schema format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported schema file extension %q", filepath.Ext(path))
}

// entryDoc is the document shape of a single entry. An entry may also be
// written as a bare type name ("num_users: int").
type entryDoc struct {
	Type        string   `mapstructure:"type" json:"type" yaml:"type" validate:"required"`
	Default     any      `mapstructure:"default" json:"default,omitempty" yaml:"default,omitempty"`
	Min         *float64 `mapstructure:"min" json:"min,omitempty" yaml:"min,omitempty"`
	Max         *float64 `mapstructure:"max" json:"max,omitempty" yaml:"max,omitempty"`
	List        bool     `mapstructure:"list" json:"list,omitempty" yaml:"list,omitempty"`
	Options     []any    `mapstructure:"options" json:"options,omitempty" yaml:"options,omitempty"`
	Pair        string   `mapstructure:"pair" json:"pair,omitempty" yaml:"pair,omitempty"`
	Role        string   `mapstructure:"role" json:"role,omitempty" yaml:"role,omitempty" validate:"omitempty,oneof=start end"`
	Description string   `mapstructure:"description" json:"description,omitempty" yaml:"description,omitempty"`
}

type rawSection struct {
	name  string
	items []rawItem
}

type rawItem struct {
	name  string
	value any
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Load reads and parses a schema file, picking the format from its extension.
func Load(path string) (*Master, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema: %w", err)
	}

	m, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Parse decodes a schema document. The top level maps section names to
// mappings of item names to entries.
//
// YAML documents keep their declaration order; TOML and JSON documents are
// ordered by name since their decoders do not preserve key order.
// Every entry problem is collected into an *AggregateError.
func Parse(data []byte, format Format) (*Master, error) {
	var (
		sections []rawSection
		err      error
	)
	switch format {
	case FormatYAML:
		sections, err = readYAML(data)
	case FormatTOML:
		var doc map[string]any
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		sections, err = readMap(doc)
	case FormatJSON:
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		sections, err = readMap(doc)
	default:
		return nil, fmt.Errorf("unsupported schema format %q", format)
	}
	if err != nil {
		return nil, err
	}

	return build(sections)
}

func readYAML(data []byte) ([]rawSection, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("invalid YAML: top level must map section names to items")
	}

	var out []rawSection
	for i := 0; i+1 < len(root.Content); i += 2 {
		name, body := root.Content[i].Value, root.Content[i+1]
		if body.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("section %q: expected a mapping of items", name)
		}

		sec := rawSection{name: name}
		for j := 0; j+1 < len(body.Content); j += 2 {
			item := body.Content[j].Value
			var v any
			if err := body.Content[j+1].Decode(&v); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", name, item, err)
			}
			sec.items = append(sec.items, rawItem{name: item, value: v})
		}
		out = append(out, sec)
	}
	return out, nil
}

func readMap(doc map[string]any) ([]rawSection, error) {
	names := make([]string, 0, len(doc))
	for name := range doc {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]rawSection, 0, len(names))
	for _, name := range names {
		body, ok := doc[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("section %q: expected a mapping of items, got %T", name, doc[name])
		}

		items := make([]string, 0, len(body))
		for item := range body {
			items = append(items, item)
		}
		sort.Strings(items)

		sec := rawSection{name: name}
		for _, item := range items {
			sec.items = append(sec.items, rawItem{name: item, value: body[item]})
		}
		out = append(out, sec)
	}
	return out, nil
}

func build(sections []rawSection) (*Master, error) {
	m := NewMaster()
	var errs []error

	for _, sec := range sections {
		for _, it := range sec.items {
			e, entryErrs := decodeEntry(sec.name, it.name, it.value)
			if len(entryErrs) > 0 {
				errs = append(errs, entryErrs...)
				continue
			}
			if err := m.Add(e); err != nil {
				errs = append(errs, &ValidationError{Key: e.Key(), Reason: err.Error()})
			}
		}
	}

	if len(errs) > 0 {
		return nil, &AggregateError{Errors: errs}
	}
	return m, nil
}

func decodeEntry(section, item string, raw any) (Entry, []error) {
	key := section + "." + item

	var doc entryDoc
	switch v := raw.(type) {
	case string:
		doc.Type = v
	case map[string]any:
		dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &doc,
			WeaklyTypedInput: true,
			ErrorUnused:      true,
		})
		if err != nil {
			return Entry{}, []error{err}
		}
		if err := dec.Decode(v); err != nil {
			return Entry{}, []error{&ValidationError{Key: key, Reason: err.Error()}}
		}
	default:
		return Entry{}, []error{&ValidationError{Key: key, Reason: "expected a type name or a mapping", Value: raw}}
	}

	if err := validate.Struct(doc); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return Entry{}, []error{err}
		}
		errs := make([]error, 0, len(fieldErrs))
		for _, fe := range fieldErrs {
			errs = append(errs, &ValidationError{Key: key + "." + fe.Field(), Reason: describeTag(fe)})
		}
		return Entry{}, errs
	}

	typ, list, err := ParseType(doc.Type)
	if err != nil {
		return Entry{}, []error{&ValidationError{Key: key + ".type", Reason: err.Error()}}
	}

	e := Entry{
		Section:     section,
		Item:        item,
		Type:        typ,
		Default:     doc.Default,
		Min:         doc.Min,
		Max:         doc.Max,
		List:        list || doc.List,
		Options:     doc.Options,
		Pair:        doc.Pair,
		Role:        Role(doc.Role),
		Description: doc.Description,
	}

	var errs []error
	if e.HasBounds() && !typ.Numeric() {
		errs = append(errs, &ValidationError{Key: key, Reason: "min/max only apply to int and float items"})
	}
	if e.Min != nil && e.Max != nil && *e.Min > *e.Max {
		errs = append(errs, &ValidationError{Key: key, Reason: fmt.Sprintf("min %v is greater than max %v", *e.Min, *e.Max)})
	}
	if typ == TypeDatetimeOrderedPair {
		if pair, _ := e.PairItem(); pair == "" {
			errs = append(errs, &ValidationError{Key: key, Reason: "cannot resolve the paired item; declare pair and role"})
		}
	} else if e.Pair != "" || e.Role != "" {
		errs = append(errs, &ValidationError{Key: key, Reason: "pair/role only apply to datetime_ordered_pair items"})
	}
	return e, errs
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}
