package scalar

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrUnsupportedConversion is returned by Coerce for pairs of kinds that have
// no defined conversion.
var ErrUnsupportedConversion = errors.New("unsupported scalar conversion")

// Coerce converts v to kind to.
//
// The rules, in order:
//  1. nil and values already of kind to are returned unchanged
//  2. timestamp to or from any other kind fails
//  3. numeric to numeric is an arithmetic conversion
//  4. text to numeric parses the text; unparsable text yields zero
//  5. everything else (numeric to text) fails
//
// Rule 4 deliberately does not report parse failures. Callers that accept
// user text are expected to validate it before assignment.
func Coerce(v Value, to Kind) (Value, error) {
	if v == nil || v.Kind() == to {
		return v, nil
	}

	from := v.Kind()
	switch {
	case from == KindTimestamp || to == KindTimestamp:
		return nil, fmt.Errorf("%s to %s: time conversions are unsupported: %w", from, to, ErrUnsupportedConversion)
	case from.IsNumeric() && to.IsNumeric():
		return convertNumeric(v, to), nil
	case from == KindText && to.IsNumeric():
		return parseNumeric(string(v.(Text)), to), nil
	default:
		return nil, fmt.Errorf("%s to %s: numeric to non-numeric mismatch: %w", from, to, ErrUnsupportedConversion)
	}
}

// convertNumeric applies Go conversion semantics between numeric kinds.
func convertNumeric(v Value, to Kind) Value {
	switch x := v.(type) {
	case Double:
		return numericFrom(float64(x), to)
	case Int32:
		return numericFrom(int32(x), to)
	case Uint64:
		return numericFrom(uint64(x), to)
	case Int64:
		return numericFrom(int64(x), to)
	}
	return nil
}

func numericFrom[N float64 | int32 | uint64 | int64](n N, to Kind) Value {
	switch to {
	case KindDouble:
		return Double(float64(n))
	case KindInt32:
		return Int32(int32(n))
	case KindUint64:
		return Uint64(uint64(n))
	case KindInt64:
		return Int64(int64(n))
	}
	return nil
}

// parseNumeric parses text for a numeric kind. Exact integer syntax is tried
// first so that wide integers keep full precision; floating point syntax
// (some backends report numbers in scientific notation) is the fallback.
func parseNumeric(s string, to Kind) Value {
	s = strings.TrimSpace(s)

	switch to {
	case KindInt64:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Int64(n)
		}
	case KindInt32:
		if n, err := strconv.ParseInt(s, 10, 32); err == nil {
			return Int32(int32(n))
		}
	case KindUint64:
		if n, err := strconv.ParseUint(s, 10, 64); err == nil {
			return Uint64(n)
		}
		// Negative values come back from backends that store uint64 as a
		// signed 64-bit integer.
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return Uint64(uint64(n))
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		f = 0
	}
	return numericFrom(f, to)
}
