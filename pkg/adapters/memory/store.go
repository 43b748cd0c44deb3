package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/inicheck/pkg/ports"
)

// Store implements ports.ConfigStore in memory.
// Safe for concurrent use.
type Store struct {
	dir      string
	sections []string
	items    map[string][]string
	values   map[string]map[string]any
	mu       sync.RWMutex
}

// NewStore creates an in-memory store rooted at dir, seeded with sections
// in the given order. A section or item seen twice keeps its first
// position and its last value.
func NewStore(dir string, sections ...ports.Section) *Store {
	s := &Store{
		dir:    dir,
		items:  make(map[string][]string),
		values: make(map[string]map[string]any),
	}
	for _, sec := range sections {
		if _, ok := s.values[sec.Name]; !ok {
			s.values[sec.Name] = make(map[string]any)
			s.sections = append(s.sections, sec.Name)
		}
		for _, it := range sec.Items {
			if _, ok := s.values[sec.Name][it.Name]; !ok {
				s.items[sec.Name] = append(s.items[sec.Name], it.Name)
			}
			s.values[sec.Name][it.Name] = copyValue(it.Value)
		}
	}
	return s
}

// FromMap creates a store from nested maps. Maps carry no order, so sections
// and items are sorted by name.
func FromMap(dir string, data map[string]map[string]any) *Store {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Strings(names)

	sections := make([]ports.Section, 0, len(names))
	for _, name := range names {
		items := make([]string, 0, len(data[name]))
		for item := range data[name] {
			items = append(items, item)
		}
		sort.Strings(items)

		sec := ports.Section{Name: name}
		for _, item := range items {
			sec.Items = append(sec.Items, ports.Item{Name: item, Value: data[name][item]})
		}
		sections = append(sections, sec)
	}
	return NewStore(dir, sections...)
}

// Get returns a copy of the raw value.
func (s *Store) Get(ctx context.Context, section, item string) (any, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.values[section][item]
	if !ok {
		return nil, false, nil
	}
	return copyValue(v), true, nil
}

// Set overwrites an existing item.
func (s *Store) Set(ctx context.Context, section, item string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.values[section][item]; !ok {
		return fmt.Errorf("%s.%s: %w", section, item, ports.ErrItemNotFound)
	}
	s.values[section][item] = copyValue(value)
	return nil
}

// Sections lists sections in declaration order.
func (s *Store) Sections(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.sections...), nil
}

// Items lists the items of a section in declaration order.
func (s *Store) Items(ctx context.Context, section string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.values[section]; !ok {
		return nil, fmt.Errorf("%s: %w", section, ports.ErrSectionNotFound)
	}
	return append([]string{}, s.items[section]...), nil
}

// Dir returns the directory relative paths resolve against.
func (s *Store) Dir() string { return s.dir }

// copyValue isolates sequences so callers can't mutate the store through them.
func copyValue(v any) any {
	switch seq := v.(type) {
	case []any:
		return append([]any{}, seq...)
	case []string:
		out := make([]any, len(seq))
		for i, s := range seq {
			out[i] = s
		}
		return out
	}
	return v
}
