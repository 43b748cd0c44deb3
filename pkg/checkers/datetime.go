package checkers

import (
	"fmt"
	"strings"
	"time"
)

// datetimeLayouts are tried in order. Numeric dates with the year last are
// month first ("10-11-2018" is October 11th). Month names match in any case.
var datetimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-1-2T15:04:05",
	"2006-1-2T15:04",
	"2006-1-2 15:04:05",
	"2006-1-2 15:04",
	"2006-1-2",
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
	"2006/1/2",
	"20060102",
	"1-2-2006 15:04:05",
	"1-2-2006 15:04",
	"1-2-2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"January 2 2006 15:04:05",
	"January 2 2006 15:04",
	"January 2 2006",
	"January 2, 2006 15:04",
	"January 2, 2006",
	"Jan 2 2006 15:04",
	"Jan 2 2006",
	"Jan 2, 2006",
	"2 January 2006 15:04",
	"2 January 2006",
	"2 Jan 2006",
	"2-Jan-2006",
	time.ANSIC,
	time.RFC1123,
	time.RFC1123Z,
}

// ParseDatetime parses s with the supported layouts, in UTC unless s
// carries its own zone.
func ParseDatetime(s string) (time.Time, error) {
	s = strings.Join(strings.Fields(s), " ")
	for _, layout := range datetimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q matches no supported date/time format", s)
}

type datetimeCaster struct{}

func (datetimeCaster) cast(raw any) (any, *Issue) {
	var s string
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case string:
		s = v
	case fmt.Stringer:
		s = v.String()
	default:
		return nil, issuef(KindParse, "%v is not a valid datetime", raw)
	}

	t, err := ParseDatetime(s)
	if err != nil {
		return nil, issuef(KindParse, "%s is not a valid datetime", show(raw))
	}
	return t, nil
}

func (datetimeCaster) empty() (any, *Issue) {
	return nil, issuef(KindMissing, "a datetime value is required")
}
