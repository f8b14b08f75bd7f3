package model

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/roach88/modelkit/internal/scalar"
)

// ColumnTypes maps declared column names to their kinds.
type ColumnTypes map[string]scalar.Kind

// Validator checks one aspect of a record. It returns a non-nil
// *RecordError when the record fails the check, and a Go error only when
// the check itself could not run.
type Validator interface {
	Validate(ctx context.Context, rec Record, def *Definition, db Counter) (*RecordError, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, rec Record, def *Definition, db Counter) (*RecordError, error)

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, rec Record, def *Definition, db Counter) (*RecordError, error) {
	return f(ctx, rec, def, db)
}

// Counter runs "select count(*)" queries for validators that need the
// database.
type Counter interface {
	CountWhere(ctx context.Context, query string, params map[string]any) (uint64, error)
}

// Definition is the immutable schema of one entity type. It is shared by
// every Instance of that type.
type Definition struct {
	pkey       string
	table      string
	columns    ColumnTypes
	validators []Validator
	local      *time.Location // nil persists timestamps in UTC
}

// DefinitionOption configures a Definition.
type DefinitionOption func(*Definition)

// WithLocalTime persists timestamps as wall clock in loc instead of UTC.
// A nil loc means time.Local.
func WithLocalTime(loc *time.Location) DefinitionOption {
	return func(d *Definition) {
		if loc == nil {
			loc = time.Local
		}
		d.local = loc
	}
}

// NewDefinition validates and builds a Definition. The primary key must be
// a declared KindInt64 column.
func NewDefinition(pkey, table string, columns ColumnTypes, validators []Validator, opts ...DefinitionOption) (*Definition, error) {
	if strings.TrimSpace(table) == "" {
		return nil, newError(ErrCodeInvalidDefinition, table, "table name is empty")
	}
	kind, ok := columns[pkey]
	if !ok {
		return nil, newError(ErrCodeInvalidDefinition, table, "primary key %q is not a declared column", pkey)
	}
	if kind != scalar.KindInt64 {
		return nil, newError(ErrCodeInvalidDefinition, table, "primary key %q must be %s, got %s", pkey, scalar.KindInt64, kind)
	}
	for i, v := range validators {
		if v == nil {
			return nil, newError(ErrCodeInvalidDefinition, table, "validator %d is nil", i)
		}
	}

	d := &Definition{
		pkey:       pkey,
		table:      table,
		columns:    make(ColumnTypes, len(columns)),
		validators: append([]Validator(nil), validators...),
	}
	for col, k := range columns {
		d.columns[col] = k
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// MustDefinition is like NewDefinition but panics on error. It is meant for
// package-level entity declarations.
func MustDefinition(pkey, table string, columns ColumnTypes, validators []Validator, opts ...DefinitionOption) *Definition {
	d, err := NewDefinition(pkey, table, columns, validators, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// PrimaryKey returns the primary key column name.
func (d *Definition) PrimaryKey() string { return d.pkey }

// Table returns the table name.
func (d *Definition) Table() string { return d.table }

// Columns returns the declared column names, sorted.
func (d *Definition) Columns() []string {
	cols := make([]string, 0, len(d.columns))
	for col := range d.columns {
		cols = append(cols, col)
	}
	sort.Strings(cols)
	return cols
}

// ColumnTypes returns a copy of the declared columns.
func (d *Definition) ColumnTypes() ColumnTypes {
	out := make(ColumnTypes, len(d.columns))
	for col, k := range d.columns {
		out[col] = k
	}
	return out
}

// ColumnKind returns the declared kind of column.
func (d *Definition) ColumnKind(column string) (scalar.Kind, bool) {
	k, ok := d.columns[column]
	return k, ok
}

// Validators returns a copy of the validator list, in declaration order.
func (d *Definition) Validators() []Validator {
	return append([]Validator(nil), d.validators...)
}

// PersistsInUTC reports whether timestamps are stored as UTC wall clock.
func (d *Definition) PersistsInUTC() bool { return d.local == nil }

// Location returns the zone timestamps are persisted in.
func (d *Definition) Location() *time.Location {
	if d.local == nil {
		return time.UTC
	}
	return d.local
}

// Normalize converts v to the declared kind of column. Undeclared columns
// are stored as given. Timestamps are moved into the persistence zone and
// truncated to whole seconds.
func (d *Definition) Normalize(column string, v scalar.Value) (scalar.Value, error) {
	if v == nil {
		return nil, nil
	}
	kind, declared := d.columns[column]
	if !declared {
		return v, nil
	}
	out, err := scalar.Coerce(v, kind)
	if err != nil {
		return nil, &Error{
			Code:    ErrCodeUnsupportedConversion,
			Message: "cannot store " + v.Kind().String() + " in " + kind.String() + " column",
			Table:   d.table,
			Column:  column,
			Err:     err,
		}
	}
	if ts, ok := out.(scalar.Timestamp); ok {
		out = scalar.Timestamp(ts.Time().In(d.Location()).Truncate(time.Second))
	}
	return out, nil
}

// Encode converts v into a driver argument. Timestamps become zone-naive
// wall clock text in the persistence zone.
func (d *Definition) Encode(v scalar.Value) any {
	if ts, ok := v.(scalar.Timestamp); ok {
		return ts.Time().In(d.Location()).Format(scalar.NaiveLayout)
	}
	return scalar.ToDriver(v)
}

// decode maps a scanned driver value for column back onto a Value.
// Timestamps, whether delivered as time.Time or text, are read as wall
// clock in the persistence zone.
func (d *Definition) decode(column string, raw any) (scalar.Value, error) {
	if t, ok := raw.(time.Time); ok {
		return scalar.Timestamp(scalar.InZone(t, d.Location())), nil
	}
	v := scalar.FromDriver(raw)
	if kind, ok := d.columns[column]; ok && kind == scalar.KindTimestamp {
		if text, ok := v.(scalar.Text); ok {
			t, err := scalar.ParseNaive(string(text))
			if err != nil {
				return nil, &Error{
					Code:    ErrCodeUnsupportedConversion,
					Message: "unreadable timestamp",
					Table:   d.table,
					Column:  column,
					Err:     errors.Join(scalar.ErrUnsupportedConversion, err),
				}
			}
			return scalar.Timestamp(scalar.InZone(t, d.Location())), nil
		}
	}
	return v, nil
}
