package checkers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aretw0/inicheck/pkg/ports"
	"github.com/aretw0/inicheck/pkg/schema"
)

// Kind classifies why a scalar failed validation.
type Kind string

const (
	KindParse     Kind = "parse"     // raw value cannot be coerced to the declared type
	KindBounds    Kind = "bounds"    // value parsed but falls outside min/max
	KindRelation  Kind = "relation"  // ordered pair constraint violated
	KindStructure Kind = "structure" // list given where a single value is expected, or unknown item
	KindMissing   Kind = "missing"   // empty value, no default, and the type needs one
	KindOption    Kind = "option"    // value not in the declared allowed set
)

// Issue is a single validation failure for one scalar of an item.
type Issue struct {
	Section string
	Item    string
	Value   any
	Kind    Kind
	Reason  string
}

func (i *Issue) Error() string {
	return fmt.Sprintf("%s.%s: %s", i.Section, i.Item, i.Reason)
}

func issuef(kind Kind, format string, args ...any) *Issue {
	return &Issue{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// show renders a raw value for a message, quoting strings.
func show(v any) string {
	if s, ok := v.(string); ok {
		return strconv.Quote(s)
	}
	return fmt.Sprintf("%v", v)
}

// Update is the normalized value a successful check produced for an item.
// Checkers never write it themselves; callers decide whether to Apply it.
type Update struct {
	Section string
	Item    string
	Value   any
}

// Apply writes the normalized value back into the store.
func (u *Update) Apply(ctx context.Context, store ports.ConfigStore) error {
	if u == nil {
		return nil
	}
	if err := store.Set(ctx, u.Section, u.Item, u.Value); err != nil {
		return fmt.Errorf("failed to write back %s.%s: %w", u.Section, u.Item, err)
	}
	return nil
}

// Result is the outcome of checking one item: one entry per scalar
// considered, nil when that scalar passed.
type Result struct {
	Section string
	Item    string
	Type    schema.Type
	Issues  []error

	// Update is set only when every scalar passed.
	Update *Update
}

// Valid reports whether every scalar passed.
func (r *Result) Valid() bool {
	for _, err := range r.Issues {
		if err != nil {
			return false
		}
	}
	return true
}

// Messages returns one message per scalar, "" for the ones that passed.
func (r *Result) Messages() []string {
	out := make([]string, len(r.Issues))
	for i, err := range r.Issues {
		if err != nil {
			out[i] = err.Error()
		}
	}
	return out
}

// Err joins every failure into a single error, or returns nil when valid.
func (r *Result) Err() error {
	var errs []error
	for _, err := range r.Issues {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// IssueList returns the failures as *Issue values.
func (r *Result) IssueList() []*Issue {
	var out []*Issue
	for _, err := range r.Issues {
		var iss *Issue
		if errors.As(err, &iss) {
			out = append(out, iss)
		}
	}
	return out
}
