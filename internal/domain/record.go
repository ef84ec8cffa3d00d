package domain

import (
	"encoding/json"
	"maps"
	"strconv"
	"strings"
	"time"
)

// Common field names shared by every stored document.
const (
	FieldID        = "id"
	FieldCreatedAt = "created_at"
)

// Record is a raw document as stored: a JSON object decoded into a map.
type Record map[string]any

// ID returns the record id or "".
func (r Record) ID() string {
	return r.String(FieldID)
}

// String returns the string value at key, or "" when absent or not a string.
func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

// Number returns the numeric value at key; see ToNumber.
func (r Record) Number(key string) (float64, bool) {
	return ToNumber(r[key])
}

// Map returns the nested object at key, or nil.
func (r Record) Map(key string) Record {
	return ToRecord(r[key])
}

// Time returns the timestamp at key; see ToTime.
func (r Record) Time(key string) (time.Time, bool) {
	return ToTime(r[key])
}

// Has reports whether key is present with a non-nil value.
func (r Record) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// Clone returns a shallow copy.
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	return maps.Clone(r)
}

// ToRecord converts a nested JSON object into a Record.
func ToRecord(v any) Record {
	switch m := v.(type) {
	case Record:
		return m
	case map[string]any:
		return m
	}
	return nil
}

// ToNumber converts loosely typed numeric values. Strings are cleaned the way
// listing feeds write them ("£1,250,000", "1500 pcm"): everything but digits
// and the decimal point is dropped.
func ToNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case nil:
		return 0, false
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		var b strings.Builder
		for _, r := range n {
			if (r >= '0' && r <= '9') || r == '.' {
				b.WriteRune(r)
			}
		}
		if b.Len() == 0 {
			return 0, false
		}
		f, err := strconv.ParseFloat(b.String(), 64)
		return f, err == nil
	}
	return 0, false
}

// ToTime converts a stored timestamp. Accepts time.Time, RFC 3339 strings
// (with or without zone) and epoch numbers in seconds or milliseconds.
func ToTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		if t == "" {
			return time.Time{}, false
		}
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
		return time.Time{}, false
	}

	n, ok := ToNumber(v)
	if !ok || n <= 0 {
		return time.Time{}, false
	}
	if n > 1e12 {
		return time.UnixMilli(int64(n)).UTC(), true
	}
	sec := int64(n)
	return time.Unix(sec, int64((n-float64(sec))*1e9)).UTC(), true
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	time.DateOnly,
}
