package checkers

import (
	"reflect"
	"strings"
)

// normalize turns a raw value into the ordered scalars to check.
//
//   - list item, sequence value: passed through.
//   - list item, scalar value: wrapped into a one-element sequence (wrapped is true).
//   - scalar item, sequence value: a structural issue, never coerced.
func normalize(raw any, list bool) (items []any, wrapped bool, iss *Issue) {
	seq, isSeq := asSequence(raw)
	switch {
	case isSeq && list:
		return seq, false, nil
	case isSeq:
		return nil, false, issuef(KindStructure, "expected a single value, got a list of %d", len(seq))
	case list:
		return []any{raw}, true, nil
	default:
		return []any{raw}, false, nil
	}
}

// asSequence returns a copy of raw as []any when it is a slice or array.
// Byte slices are not sequences.
func asSequence(raw any) ([]any, bool) {
	switch v := raw.(type) {
	case nil, []byte:
		return nil, false
	case []any:
		return append([]any{}, v...), true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}

	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

func isEmpty(v any) bool {
	switch s := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(s) == ""
	}
	return false
}
