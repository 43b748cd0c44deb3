package ports

import (
	"context"
	"errors"
)

var (
	// ErrItemNotFound is returned by Set for a (section, item) the store does not hold.
	// Stores never invent keys.
	ErrItemNotFound = errors.New("configuration item not found")

	// ErrSectionNotFound is returned by Items for an unknown section.
	ErrSectionNotFound = errors.New("configuration section not found")
)

// ConfigStore is the raw configuration: the as-provided value of every
// (section, item) present in the user's input. A value is a scalar (string,
// bool, number, time) or an ordered sequence ([]any) of scalars.
type ConfigStore interface {
	// Get returns the raw value of an item. ok is false when the item is absent;
	// err is reserved for backend failures.
	Get(ctx context.Context, section, item string) (value any, ok bool, err error)

	// Set overwrites the value of an existing item.
	// Returns ErrItemNotFound if the item is not held by the store.
	Set(ctx context.Context, section, item string, value any) error

	// Sections lists the sections in declaration order.
	Sections(ctx context.Context) ([]string, error)

	// Items lists the items of a section in declaration order.
	// Returns ErrSectionNotFound for an unknown section.
	Items(ctx context.Context, section string) ([]string, error)

	// Dir is the directory of the configuration source. Relative paths in
	// the configuration resolve against it. Empty means the working directory.
	Dir() string
}

// Section is an ordered block of raw configuration, used to seed stores.
type Section struct {
	Name  string
	Items []Item
}

// Item is a single raw (name, value) pair.
type Item struct {
	Name  string
	Value any
}

// Get returns the value of an item in the section.
func (s Section) Get(name string) (any, bool) {
	for _, it := range s.Items {
		if it.Name == name {
			return it.Value, true
		}
	}
	return nil, false
}

// Snapshot reads a whole store into ordered sections.
func Snapshot(ctx context.Context, store ConfigStore) ([]Section, error) {
	names, err := store.Sections(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Section, 0, len(names))
	for _, name := range names {
		items, err := store.Items(ctx, name)
		if err != nil {
			return nil, err
		}
		sec := Section{Name: name, Items: make([]Item, 0, len(items))}
		for _, item := range items {
			v, ok, err := store.Get(ctx, name, item)
			if err != nil {
				return nil, err
			}
			if ok {
				sec.Items = append(sec.Items, Item{Name: item, Value: v})
			}
		}
		out = append(out, sec)
	}
	return out, nil
}
