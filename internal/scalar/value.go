package scalar

import (
	"fmt"
	"time"
)

// Kind is the runtime discriminant of a Value.
type Kind int

const (
	KindText Kind = iota
	KindTimestamp
	KindDouble
	KindInt32
	KindUint64
	KindInt64
)

// Kinds lists every kind in declaration order.
var Kinds = []Kind{KindText, KindTimestamp, KindDouble, KindInt32, KindUint64, KindInt64}

var kindNames = map[Kind]string{
	KindText:      "text",
	KindTimestamp: "timestamp",
	KindDouble:    "double",
	KindInt32:     "int32",
	KindUint64:    "uint64",
	KindInt64:     "int64",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// IsNumeric reports whether k is one of the four numeric kinds.
func (k Kind) IsNumeric() bool {
	switch k {
	case KindDouble, KindInt32, KindUint64, KindInt64:
		return true
	default:
		return false
	}
}

// ParseKind resolves a kind name as printed by Kind.String.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown scalar kind %q", name)
}

// Value is a sealed interface representing one storable column value.
// Only Text, Timestamp, Double, Int32, Uint64 and Int64 implement it.
// A nil Value stands for SQL NULL.
type Value interface {
	Kind() Kind
	scalar() // Sealed - only these types implement it
}

// Text is a character string value.
type Text string

func (Text) Kind() Kind { return KindText }
func (Text) scalar()    {}

// Timestamp is a calendar time. Only the instant and the zone it is
// presented in matter; storage never keeps the zone.
type Timestamp time.Time

func (Timestamp) Kind() Kind { return KindTimestamp }
func (Timestamp) scalar()    {}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time { return time.Time(t) }

// Double is a 64-bit floating point value.
type Double float64

func (Double) Kind() Kind { return KindDouble }
func (Double) scalar()    {}

// Int32 is a 32-bit signed integer. Boolean columns use 0 and 1.
type Int32 int32

func (Int32) Kind() Kind { return KindInt32 }
func (Int32) scalar()    {}

// Uint64 is an unsigned 64-bit integer.
type Uint64 uint64

func (Uint64) Kind() Kind { return KindUint64 }
func (Uint64) scalar()    {}

// Int64 is a signed 64-bit integer. Primary keys are always Int64.
type Int64 int64

func (Int64) Kind() Kind { return KindInt64 }
func (Int64) scalar()    {}

// Native is the set of Go types that map one-to-one onto a kind.
type Native interface {
	string | time.Time | float64 | int32 | uint64 | int64
}

// Of wraps a native Go value in its Value type.
func Of[T Native](v T) Value {
	switch x := any(v).(type) {
	case string:
		return Text(x)
	case time.Time:
		return Timestamp(x)
	case float64:
		return Double(x)
	case int32:
		return Int32(x)
	case uint64:
		return Uint64(x)
	case int64:
		return Int64(x)
	}
	return nil
}

// As unwraps v into the native type T. It reports false for a nil Value or
// when v is of a different kind than T.
func As[T Native](v Value) (T, bool) {
	var native any
	switch x := v.(type) {
	case Text:
		native = string(x)
	case Timestamp:
		native = time.Time(x)
	case Double:
		native = float64(x)
	case Int32:
		native = int32(x)
	case Uint64:
		native = uint64(x)
	case Int64:
		native = int64(x)
	}
	out, ok := native.(T)
	return out, ok
}

// Equal reports whether a and b hold the same kind and value.
// Timestamps compare by instant. Two nil Values are equal.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	if ta, ok := a.(Timestamp); ok {
		return time.Time(ta).Equal(time.Time(b.(Timestamp)))
	}
	return a == b
}

// Format renders v for logs and error messages.
func Format(v Value) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case Text:
		return fmt.Sprintf("%q", string(x))
	case Timestamp:
		return time.Time(x).Format(time.RFC3339)
	default:
		return fmt.Sprintf("%v", x)
	}
}
