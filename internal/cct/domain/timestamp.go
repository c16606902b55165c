package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// epochMillisThreshold separates epoch seconds from epoch milliseconds. 1e12 seconds
// is far beyond any real date while 1e12 milliseconds is September 2001.
const epochMillisThreshold = 1e12

// timestampLayouts are the string layouts accepted by ParseTimestamp, tried in order.
// Layouts without a zone are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp converts a loosely typed date value into a UTC instant.
//
// Accepted inputs:
//   - time.Time and *time.Time (zero values yield nil)
//   - epoch numbers (Go integer and float kinds, json.Number): seconds, or
//     milliseconds when the magnitude is at least 1e12
//   - strings in RFC 3339 or one of the zone-less layouts above
//   - timestamp objects: maps with "seconds" or "_seconds" and an optional
//     "nanoseconds" or "_nanoseconds"
//
// Any other input, including unparseable strings and NaN/Inf, yields nil.
func ParseTimestamp(value any) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case time.Time:
		return utcPtr(v)
	case *time.Time:
		if v == nil {
			return nil
		}
		return utcPtr(*v)
	case string:
		return parseTimestampString(v)
	case map[string]any:
		return parseTimestampObject(v)
	}

	f, ok := toFloat(value)
	if !ok {
		return nil
	}
	return fromEpoch(f)
}

// UnixPtr returns t as unix seconds, or nil when t is nil.
func UnixPtr(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	sec := t.Unix()
	return &sec
}

// ParseNonNegativeInt coerces an integral number (Go numeric kinds or json.Number)
// into an int64. Fractional, negative, non-finite and non-numeric values fail.
func ParseNonNegativeInt(value any) (int64, bool) {
	switch v := value.(type) {
	case int:
		return int64(v), v >= 0
	case int32:
		return int64(v), v >= 0
	case int64:
		return v, v >= 0
	case uint32:
		return int64(v), true
	case uint64:
		if v > math.MaxInt64 {
			return 0, false
		}
		return int64(v), true
	case json.Number:
		if n, err := strconv.ParseInt(v.String(), 10, 64); err == nil {
			return n, n >= 0
		}
	}

	f, ok := toFloat(value)
	if !ok || f < 0 || f != math.Trunc(f) || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

func parseTimestampString(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return utcPtr(t)
		}
	}
	return nil
}

func parseTimestampObject(m map[string]any) *time.Time {
	secondsValue, ok := m["seconds"]
	if !ok {
		secondsValue, ok = m["_seconds"]
	}
	if !ok {
		return nil
	}
	seconds, ok := toFloat(secondsValue)
	if !ok || seconds != math.Trunc(seconds) {
		return nil
	}

	var nanos float64
	if n, ok := m["nanoseconds"]; ok {
		nanos, _ = toFloat(n)
	} else if n, ok := m["_nanoseconds"]; ok {
		nanos, _ = toFloat(n)
	}

	return utcPtr(time.Unix(int64(seconds), int64(nanos)))
}

func fromEpoch(f float64) *time.Time {
	if math.Abs(f) >= epochMillisThreshold {
		ms := int64(f)
		return utcPtr(time.UnixMilli(ms))
	}
	sec, frac := math.Modf(f)
	return utcPtr(time.Unix(int64(sec), int64(frac*float64(time.Second))))
}

func toFloat(value any) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case float32:
		f = float64(v)
	case float64:
		f = v
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func utcPtr(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	u := t.UTC()
	return &u
}
