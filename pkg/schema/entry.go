package schema

import "strings"

// Role names which member of an ordered pair an item is.
type Role string

const (
	RoleStart Role = "start"
	RoleEnd   Role = "end"
)

// Entry is the declaration of one (section, item) in the master schema.
// Entries are immutable once added to a Master; Lookup hands out copies.
type Entry struct {
	Section string
	Item    string
	Type    Type

	// Default is the declared default, nil when the schema declares none.
	Default any

	// Min and Max are inclusive bounds, only meaningful for numeric types.
	Min *float64
	Max *float64

	// List marks the item as able to hold a sequence of values.
	List bool

	// Options is the allowed-value set. Empty means unrestricted.
	Options []any

	// Pair and Role describe the partner of an ordered-pair item.
	// When unset they are inferred from the item name (see PairItem).
	Pair string
	Role Role

	Description string
}

// Key returns the dotted "section.item" identifier.
func (e Entry) Key() string {
	return e.Section + "." + e.Item
}

// HasBounds reports whether a minimum or maximum is declared.
func (e Entry) HasBounds() bool {
	return e.Min != nil || e.Max != nil
}

// PairItem resolves the sibling item name and this item's role in the pair.
// An explicit Pair/Role wins; otherwise the "start"/"end" token in the item
// name is swapped ("start_date" pairs with "end_date", "epoch_end" with "epoch_start").
// It returns an empty name when no partner can be resolved.
func (e Entry) PairItem() (string, Role) {
	inferredPair, inferredRole := inferPair(e.Item)

	pair, role := e.Pair, e.Role
	if pair == "" {
		pair = inferredPair
	}
	if role == "" {
		role = inferredRole
	}
	if role == "" {
		return "", ""
	}
	return pair, role
}

func inferPair(item string) (string, Role) {
	tokens := strings.Split(item, "_")
	for i, tok := range tokens {
		var swapped string
		var role Role
		switch strings.ToLower(tok) {
		case "start":
			swapped, role = "end", RoleStart
		case "end":
			swapped, role = "start", RoleEnd
		default:
			continue
		}
		out := make([]string, len(tokens))
		copy(out, tokens)
		out[i] = swapped
		return strings.Join(out, "_"), role
	}
	return "", ""
}

func (e Entry) clone() Entry {
	c := e
	if e.Min != nil {
		v := *e.Min
		c.Min = &v
	}
	if e.Max != nil {
		v := *e.Max
		c.Max = &v
	}
	if e.Options != nil {
		c.Options = append([]any(nil), e.Options...)
	}
	return c
}
