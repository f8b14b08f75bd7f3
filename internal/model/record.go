package model

import (
	"sort"

	"github.com/roach88/modelkit/internal/scalar"
)

// Record maps column names to values. A missing key is an unknown column;
// a key holding a nil Value is SQL NULL.
type Record map[string]scalar.Value

// Clone returns a shallow copy of r.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Keys returns the column names of r, sorted.
func (r Record) Keys() []string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Has reports whether column is present and not NULL.
func (r Record) Has(column string) bool {
	v, ok := r[column]
	return ok && v != nil
}

// RecordError is one validation failure. An empty Column marks an error
// about the record as a whole.
type RecordError struct {
	Column  string
	Message string
}

// RecordErrors groups validation messages by column, in validator order.
// The empty key holds whole-record errors.
type RecordErrors map[string][]string

// Add appends message under column.
func (e RecordErrors) Add(column, message string) {
	e[column] = append(e[column], message)
}

// Clone returns a deep copy of e.
func (e RecordErrors) Clone() RecordErrors {
	out := make(RecordErrors, len(e))
	for k, msgs := range e {
		out[k] = append([]string(nil), msgs...)
	}
	return out
}
