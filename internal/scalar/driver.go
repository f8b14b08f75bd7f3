package scalar

import (
	"fmt"
	"strings"
	"time"
)

// NaiveLayout is the zone-less layout timestamps are written with.
const NaiveLayout = "2006-01-02 15:04:05"

// naiveLayouts are the layouts accepted when a backend reports a timestamp
// as text. Offsets, when present, are ignored: only the wall clock is kept.
var naiveLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02T15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02",
	time.RFC3339Nano,
}

// ParseNaive parses a backend timestamp string and returns its wall clock
// labelled as UTC.
func ParseNaive(s string) (time.Time, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), "Z")
	for _, layout := range naiveLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Naive(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: unrecognized layout", s)
}

// Naive drops the zone of t, keeping its wall clock labelled as UTC.
func Naive(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

// InZone reinterprets the wall clock of t as a wall clock in loc.
func InZone(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), loc)
}

// FromDriver maps a value produced by a database/sql driver onto the union.
// Timestamps are returned as delivered; zone handling belongs to the caller.
func FromDriver(src any) Value {
	switch x := src.(type) {
	case nil:
		return nil
	case string:
		return Text(x)
	case []byte:
		return Text(string(x))
	case int64:
		return Int64(x)
	case int:
		return Int64(int64(x))
	case int32:
		return Int32(x)
	case int16:
		return Int32(int32(x))
	case int8:
		return Int32(int32(x))
	case uint64:
		return Uint64(x)
	case uint32:
		return Uint64(uint64(x))
	case uint:
		return Uint64(uint64(x))
	case float64:
		return Double(x)
	case float32:
		return Double(float64(x))
	case bool:
		if x {
			return Int32(1)
		}
		return Int32(0)
	case time.Time:
		return Timestamp(x)
	default:
		return Text(fmt.Sprint(x))
	}
}

// ToDriver converts v into a database/sql argument. Uint64 is bit-cast to
// int64 because database/sql rejects uint64 values with the high bit set;
// reading the column back into a Uint64 column restores the value.
// Timestamps are passed through unchanged.
func ToDriver(v Value) any {
	switch x := v.(type) {
	case nil:
		return nil
	case Text:
		return string(x)
	case Timestamp:
		return time.Time(x)
	case Double:
		return float64(x)
	case Int32:
		return int64(x)
	case Uint64:
		return int64(x)
	case Int64:
		return int64(x)
	}
	return nil
}
