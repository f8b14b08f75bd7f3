// Package scalar provides the closed set of storable column values.
//
// This package contains the value union and its conversions only. The model
// and session packages import scalar; scalar imports nothing internal.
//
// Key design constraints:
//   - Exactly six kinds: text, timestamp, double, int32, uint64, int64
//   - A nil Value is SQL NULL; there is no seventh "null" kind
//   - Coerce is total over every (from, to) pair of kinds
//   - Timestamps are never converted to or from any other kind
package scalar
