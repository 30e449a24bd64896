package graph

import (
	"fmt"
	"time"
)

// Time is an RFC 3339 timestamp as exchanged with the Graph API. Fields use
// *Time so that absent values are distinguishable from the zero time.
type Time struct {
	time.Time
}

// NewTime wraps a time.Time for use in Graph payloads.
func NewTime(t time.Time) *Time {
	return &Time{Time: t}
}

// ParseTime parses an RFC 3339 timestamp string.
func ParseTime(value string) (*Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, NewValidationError("parse_time", fmt.Sprintf("invalid timestamp %q: %v", value, err))
	}
	return &Time{Time: t}, nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.Format(time.RFC3339Nano) + `"`), nil
}

func (t *Time) UnmarshalJSON(data []byte) error {
	s := string(data)
	if s == "null" || s == `""` {
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return NewValidationError("parse_time", fmt.Sprintf("invalid timestamp token %s", s))
	}
	parsed, err := ParseTime(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	t.Time = parsed.Time
	return nil
}

// String renders the timestamp in RFC 3339 form, matching the wire format.
func (t *Time) String() string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}
