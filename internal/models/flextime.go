package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// FlexTime is a timestamp that tolerates the three encodings seen in the
// wild for registration records: an ISO-8601 string, a native timestamp, or
// a document-store epoch pair {seconds, nanoseconds}. A value may be absent,
// or present but unparseable; both states survive round-trips.
type FlexTime struct {
	t       time.Time
	present bool
	broken  bool
}

// NewFlexTime wraps a concrete instant.
func NewFlexTime(t time.Time) FlexTime {
	return FlexTime{t: t, present: true}
}

// BrokenFlexTime returns a value that is present but unparseable. Used by
// tests and by decoders when the raw payload cannot be interpreted.
func BrokenFlexTime() FlexTime {
	return FlexTime{present: true, broken: true}
}

// Time returns the underlying instant; ok is false when the value is absent
// or unparseable.
func (f FlexTime) Time() (time.Time, bool) {
	return f.t, f.present && !f.broken
}

// IsZero reports whether no value was ever supplied.
func (f FlexTime) IsZero() bool { return !f.present }

// IsBroken reports whether a value was supplied but could not be parsed.
func (f FlexTime) IsBroken() bool { return f.present && f.broken }

type epochPair struct {
	Seconds     *int64 `json:"seconds"`
	Nanoseconds int64  `json:"nanoseconds"`
}

var flexLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// UnmarshalJSON accepts null, an ISO string, or {seconds, nanoseconds}.
func (f *FlexTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = FlexTime{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" {
			*f = FlexTime{}
			return nil
		}
		for _, layout := range flexLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				*f = FlexTime{t: t, present: true}
				return nil
			}
		}
		*f = BrokenFlexTime()
		return nil
	}

	var pair epochPair
	if err := json.Unmarshal(data, &pair); err == nil && pair.Seconds != nil {
		*f = FlexTime{t: time.Unix(*pair.Seconds, pair.Nanoseconds), present: true}
		return nil
	}

	*f = BrokenFlexTime()
	return nil
}

// MarshalJSON renders the instant as RFC3339 UTC, or null when absent.
func (f FlexTime) MarshalJSON() ([]byte, error) {
	t, ok := f.Time()
	if !ok {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339))
}

// Scan implements sql.Scanner for timestamp columns.
func (f *FlexTime) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*f = FlexTime{}
		return nil
	case time.Time:
		*f = FlexTime{t: v, present: true}
		return nil
	case []byte:
		return f.scanString(string(v))
	case string:
		return f.scanString(v)
	default:
		return fmt.Errorf("flextime: cannot scan %T", src)
	}
}

func (f *FlexTime) scanString(s string) error {
	if s == "" {
		*f = FlexTime{}
		return nil
	}
	for _, layout := range flexLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			*f = FlexTime{t: t, present: true}
			return nil
		}
	}
	*f = BrokenFlexTime()
	return nil
}

// Value implements driver.Valuer.
func (f FlexTime) Value() (driver.Value, error) {
	t, ok := f.Time()
	if !ok {
		return nil, nil
	}
	return t.UTC(), nil
}
