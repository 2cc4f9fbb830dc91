package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// naiveLayouts are accepted timestamp shapes that carry no offset. They are
// interpreted as UTC so submission-order comparisons are done on absolute
// instants regardless of how the source formatted them.
var naiveLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

// Timestamp is a submission instant. It accepts RFC 3339 values as well as
// naive (offset-less) values, and always normalizes to UTC.
type Timestamp struct {
	time.Time
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{Time: t.UTC()}
}

func ParseTimestamp(value string) (Timestamp, error) {
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return Timestamp{Time: t.UTC()}, nil
	}
	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, value, time.UTC); err == nil {
			return Timestamp{Time: t}, nil
		}
	}
	return Timestamp{}, fmt.Errorf("invalid timestamp %q: expected ISO 8601", value)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(time.RFC3339Nano) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	value := strings.Trim(string(data), `"`)
	if value == "" || value == "null" {
		return nil
	}
	parsed, err := ParseTimestamp(value)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Timestamp) Value() (driver.Value, error) {
	return t.Time.UTC(), nil
}

func (t *Timestamp) Scan(src any) error {
	switch v := src.(type) {
	case time.Time:
		t.Time = v.UTC()
		return nil
	case []byte:
		parsed, err := ParseTimestamp(string(v))
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case string:
		parsed, err := ParseTimestamp(v)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	case nil:
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Timestamp", src)
	}
}
