package checkers

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

type stringCaster struct{}

func (stringCaster) cast(raw any) (any, *Issue) {
	s, ok := raw.(string)
	if !ok {
		s = fmt.Sprint(raw)
	}
	return strings.ToLower(strings.TrimSpace(s)), nil
}

// An empty string item with no default has no value, which is allowed.
func (stringCaster) empty() (any, *Issue) { return nil, nil }

type boolCaster struct{}

func (boolCaster) cast(raw any) (any, *Issue) {
	switch v := raw.(type) {
	case bool:
		return v, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y":
			return true, nil
		case "false", "no", "n":
			return false, nil
		}
	}
	return nil, issuef(KindParse, "%s is not a valid bool, expected true/false, yes/no or y/n", show(raw))
}

func (boolCaster) empty() (any, *Issue) {
	return nil, issuef(KindMissing, "a bool value is required")
}

type intCaster struct{}

func (intCaster) cast(raw any) (any, *Issue) {
	if s, ok := raw.(string); ok {
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return nil, issuef(KindParse, "%s is not a valid int", show(raw))
		}
		return n, nil
	}

	if n, ok := asInt64(raw); ok {
		return n, nil
	}
	if f, ok := asFloat64(raw); ok {
		if math.IsInf(f, 0) || math.IsNaN(f) || math.Trunc(f) != f {
			return nil, issuef(KindParse, "%v is not a valid int, it has a fractional part", raw)
		}
		// float64(math.MaxInt64) rounds up to 2^63, which is already out of range.
		if f < math.MinInt64 || f >= math.MaxInt64 {
			return nil, issuef(KindParse, "%v is not a valid int, it is out of int range", raw)
		}
		return int64(f), nil
	}
	return nil, issuef(KindParse, "%s is not a valid int", show(raw))
}

func (intCaster) empty() (any, *Issue) {
	return nil, issuef(KindMissing, "an int value is required")
}

type floatCaster struct{}

func (floatCaster) cast(raw any) (any, *Issue) {
	if s, ok := raw.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, issuef(KindParse, "%s is not a valid float", show(raw))
		}
		return f, nil
	}

	if n, ok := asInt64(raw); ok {
		return float64(n), nil
	}
	if f, ok := asFloat64(raw); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return f, nil
	}
	return nil, issuef(KindParse, "%s is not a valid float", show(raw))
}

func (floatCaster) empty() (any, *Issue) {
	return nil, issuef(KindMissing, "a float value is required")
}

func asInt64(raw any) (int64, bool) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	}
	return 0, false
}

func asFloat64(raw any) (float64, bool) {
	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// checkBounds enforces the inclusive [min, max] range on a cast number.
func checkBounds(v any, min, max *float64) *Issue {
	var f float64
	switch n := v.(type) {
	case int64:
		f = float64(n)
	case float64:
		f = n
	default:
		return nil
	}

	if (min == nil || f >= *min) && (max == nil || f <= *max) {
		return nil
	}

	var expected string
	switch {
	case min != nil && max != nil:
		expected = fmt.Sprintf("between %v and %v", *min, *max)
	case min != nil:
		expected = fmt.Sprintf(">= %v", *min)
	default:
		expected = fmt.Sprintf("<= %v", *max)
	}
	return issuef(KindBounds, "%v is out of range, expected %s", v, expected)
}
