package file

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/aretw0/inicheck/pkg/ports"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/ini.v1"
	"gopkg.in/yaml.v3"
)

// Save writes the store to path, in the format named by its extension.
// The file is replaced atomically.
func Save(ctx context.Context, store ports.ConfigStore, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	sections, err := ports.Snapshot(ctx, store)
	if err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}

	data, err := Encode(sections, format)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

// Encode renders sections in the given format. INI sequences are written as
// comma-separated text, which Parse reads back as a sequence when it holds
// more than one element.
func Encode(sections []ports.Section, format Format) ([]byte, error) {
	switch format {
	case FormatINI:
		return encodeINI(sections)
	case FormatYAML:
		return encodeYAML(sections)
	case FormatJSON:
		return encodeJSON(sections)
	case FormatTOML:
		return encodeTOML(sections)
	case FormatHCL:
		return encodeHCL(sections)
	}
	return nil, fmt.Errorf("unsupported configuration format %q", format)
}

func encodeINI(sections []ports.Section) ([]byte, error) {
	cfg := ini.Empty()
	for _, sec := range sections {
		out, err := cfg.NewSection(sec.Name)
		if err != nil {
			return nil, fmt.Errorf("section %s: %w", sec.Name, err)
		}
		for _, it := range sec.Items {
			if _, err := out.NewKey(it.Name, iniText(it.Value)); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", sec.Name, it.Name, err)
			}
		}
	}

	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write ini: %w", err)
	}
	return buf.Bytes(), nil
}

func iniText(v any) string {
	seq, ok := v.([]any)
	if !ok {
		return textValue(v)
	}
	parts := make([]string, len(seq))
	for i, e := range seq {
		parts[i] = textValue(e)
	}
	return strings.Join(parts, ", ")
}

func encodeYAML(sections []ports.Section) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, sec := range sections {
		body := &yaml.Node{Kind: yaml.MappingNode}
		for _, it := range sec.Items {
			val := &yaml.Node{}
			if err := val.Encode(it.Value); err != nil {
				return nil, fmt.Errorf("%s.%s: %w", sec.Name, it.Name, err)
			}
			body.Content = append(body.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: it.Name},
				val,
			)
		}
		root.Content = append(root.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: sec.Name},
			body,
		)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, fmt.Errorf("failed to write yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeJSON keeps section and item order, which a map would lose.
func encodeJSON(sections []ports.Section) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, sec := range sections {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, _ := json.Marshal(sec.Name)
		buf.Write(name)
		buf.WriteString(":{")
		for j, it := range sec.Items {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, _ := json.Marshal(it.Name)
			val, err := json.Marshal(it.Value)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", sec.Name, it.Name, err)
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("failed to write json: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// encodeTOML writes absent values as empty strings; TOML has no null.
func encodeTOML(sections []ports.Section) ([]byte, error) {
	doc := make(map[string]map[string]any, len(sections))
	for _, sec := range sections {
		table := make(map[string]any, len(sec.Items))
		for _, it := range sec.Items {
			table[it.Name] = tomlValue(it.Value)
		}
		doc[sec.Name] = table
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to write toml: %w", err)
	}
	return data, nil
}

func tomlValue(v any) any {
	switch x := v.(type) {
	case nil:
		return ""
	case []any:
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = tomlValue(e)
		}
		return out
	}
	return v
}

// writeAtomic writes to a temporary file in the destination directory,
// syncs it, then renames it over path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to ensure directory: %w", err)
	}

	mode := os.FileMode(0644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Windows cannot rename an open file.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("failed to set file mode: %w", err)
	}

	// os.Rename fails on Windows when the destination exists.
	if _, err := os.Stat(path); err == nil && runtime.GOOS == "windows" {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing file for overwrite: %w", err)
		}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
