package schema

import (
	"errors"
	"fmt"
)

// ErrUnknownItem is returned when a (section, item) is not declared in the schema.
// It signals a caller/schema mismatch, never bad user input.
var ErrUnknownItem = errors.New("item not declared in schema")

// Master is the schema store: the declared entries for every section,
// kept in declaration order.
type Master struct {
	sections []string
	items    map[string][]string
	entries  map[string]map[string]Entry
}

// NewMaster creates an empty schema.
func NewMaster() *Master {
	return &Master{
		items:   make(map[string][]string),
		entries: make(map[string]map[string]Entry),
	}
}

// Add declares a new entry. Declaring the same (section, item) twice is an error.
func (m *Master) Add(e Entry) error {
	if e.Section == "" || e.Item == "" {
		return fmt.Errorf("entry requires both section and item (got %q)", e.Key())
	}
	if !e.Type.Valid() {
		return fmt.Errorf("%s: unsupported type: %s", e.Key(), e.Type)
	}

	section, ok := m.entries[e.Section]
	if !ok {
		section = make(map[string]Entry)
		m.entries[e.Section] = section
		m.sections = append(m.sections, e.Section)
	}
	if _, dup := section[e.Item]; dup {
		return fmt.Errorf("%s: declared more than once", e.Key())
	}

	section[e.Item] = e.clone()
	m.items[e.Section] = append(m.items[e.Section], e.Item)
	return nil
}

// MustAdd is Add for statically known schemas; it panics on error.
func (m *Master) MustAdd(entries ...Entry) *Master {
	for _, e := range entries {
		if err := m.Add(e); err != nil {
			panic(err)
		}
	}
	return m
}

// Lookup returns a copy of the entry for (section, item).
func (m *Master) Lookup(section, item string) (Entry, error) {
	e, ok := m.entries[section][item]
	if !ok {
		return Entry{}, fmt.Errorf("%s.%s: %w", section, item, ErrUnknownItem)
	}
	return e.clone(), nil
}

// Has reports whether (section, item) is declared.
func (m *Master) Has(section, item string) bool {
	_, ok := m.entries[section][item]
	return ok
}

// Sections returns the declared sections in declaration order.
func (m *Master) Sections() []string {
	return append([]string(nil), m.sections...)
}

// Items returns the declared items of a section in declaration order.
func (m *Master) Items(section string) []string {
	return append([]string(nil), m.items[section]...)
}

// Entries returns copies of every entry, section by section, in declaration order.
func (m *Master) Entries() []Entry {
	var out []Entry
	for _, s := range m.sections {
		for _, i := range m.items[s] {
			out = append(out, m.entries[s][i].clone())
		}
	}
	return out
}

// Len returns the number of declared entries.
func (m *Master) Len() int {
	n := 0
	for _, s := range m.sections {
		n += len(m.items[s])
	}
	return n
}
