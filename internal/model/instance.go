package model

import (
	"context"
	"sort"

	"github.com/roach88/modelkit/internal/scalar"
)

// Instance is one record bound to its Definition. It is not safe for
// concurrent use.
type Instance struct {
	record Record
	def    *Definition
	tbl    *table

	dirty  bool
	fromDB bool

	// Validation cache: valid is nil until Errors has run.
	valid *bool
	errs  RecordErrors
}

func newInstance(tbl *table) *Instance {
	return &Instance{
		record: Record{},
		def:    tbl.def,
		tbl:    tbl,
		dirty:  true,
	}
}

// load builds an Instance from rec. Every column goes through Set so the
// same coercion rules apply to loaded and assigned values.
func load(tbl *table, rec Record, fromDatabase bool) (*Instance, error) {
	inst := newInstance(tbl)
	for _, col := range rec.Keys() {
		if err := inst.Set(col, rec[col]); err != nil {
			return nil, err
		}
	}
	inst.fromDB = fromDatabase
	inst.dirty = !fromDatabase
	return inst, nil
}

// Definition returns the schema shared by all instances of this type.
func (i *Instance) Definition() *Definition { return i.def }

// Set assigns v to column, converting it to the declared kind. It marks the
// instance dirty and drops the cached validation result. Assigning the
// primary key detaches the instance from its row, so the next Save inserts.
func (i *Instance) Set(column string, v scalar.Value) error {
	stored, err := i.def.Normalize(column, v)
	if err != nil {
		return err
	}
	i.record[column] = stored
	i.dirty = true
	i.ResetStateCache()
	if column == i.def.pkey {
		i.fromDB = false
	}
	return nil
}

// SetNull assigns SQL NULL to column.
func (i *Instance) SetNull(column string) error {
	return i.Set(column, nil)
}

// Get returns the value of column. It reports false when the column is
// absent; a present NULL column returns (nil, true).
func (i *Instance) Get(column string) (scalar.Value, bool) {
	v, ok := i.record[column]
	return v, ok
}

// Field returns the value of column as the native type T. It reports false
// when the column is absent, NULL or of another kind.
func Field[T scalar.Native](i *Instance, column string) (T, bool) {
	v, _ := i.Get(column)
	return scalar.As[T](v)
}

// SetField assigns the native value v to column.
func SetField[T scalar.Native](i *Instance, column string, v T) error {
	return i.Set(column, scalar.Of(v))
}

// ID returns the primary key, or false when the instance has none.
func (i *Instance) ID() (int64, bool) {
	return Field[int64](i, i.def.pkey)
}

// Keys returns every column present in the record, sorted.
func (i *Instance) Keys() []string {
	return i.record.Keys()
}

// ModelKeys returns the present columns that are declared, sorted.
func (i *Instance) ModelKeys() []string {
	keys := make([]string, 0, len(i.record))
	for col := range i.record {
		if _, ok := i.def.columns[col]; ok {
			keys = append(keys, col)
		}
	}
	sort.Strings(keys)
	return keys
}

// Record returns a copy of the underlying record.
func (i *Instance) Record() Record { return i.record.Clone() }

// IsDirty reports whether the record has unsaved changes.
func (i *Instance) IsDirty() bool { return i.dirty }

// IsFromDatabase reports whether the record corresponds to a stored row.
func (i *Instance) IsFromDatabase() bool { return i.fromDB }

// ResetStateCache forces the next Errors or IsValid call to re-run the
// validators.
func (i *Instance) ResetStateCache() {
	i.valid = nil
	i.errs = nil
}

// Errors runs every validator in declaration order and groups the failures
// by column. The result is cached until the next Set or ResetStateCache.
// A returned Go error means a validator could not run; nothing is cached.
func (i *Instance) Errors(ctx context.Context) (RecordErrors, error) {
	if i.valid != nil {
		return i.errs.Clone(), nil
	}

	rec := i.record.Clone()
	errs := RecordErrors{}
	for _, v := range i.def.validators {
		re, err := v.Validate(ctx, rec, i.def, i.tbl)
		if err != nil {
			return nil, err
		}
		if re != nil {
			errs.Add(re.Column, re.Message)
		}
	}

	valid := len(errs) == 0
	i.valid = &valid
	i.errs = errs
	return errs.Clone(), nil
}

// IsValid reports whether Errors is empty.
func (i *Instance) IsValid(ctx context.Context) (bool, error) {
	if i.valid != nil {
		return *i.valid, nil
	}
	if _, err := i.Errors(ctx); err != nil {
		return false, err
	}
	return *i.valid, nil
}

// Save persists a dirty record: an update when it came from the database,
// an insert otherwise. A clean record is left alone. Invalid records are
// rejected with ErrInvalidRecord before any write.
func (i *Instance) Save(ctx context.Context) error {
	if !i.dirty {
		return nil
	}

	valid, err := i.IsValid(ctx)
	if err != nil {
		return err
	}
	if !valid {
		return &Error{
			Code:    ErrCodeInvalidRecord,
			Message: "record failed validation",
			Table:   i.def.table,
		}
	}

	if i.fromDB {
		if err := i.tbl.update(ctx, i.record); err != nil {
			return err
		}
	} else {
		id, err := i.tbl.insert(ctx, i.record)
		if err != nil {
			return err
		}
		if err := i.Set(i.def.pkey, scalar.Int64(id)); err != nil {
			return err
		}
	}

	i.dirty = false
	i.fromDB = true
	return nil
}

// Remove deletes the row with this instance's primary key. The in-memory
// record and flags are left unchanged.
func (i *Instance) Remove(ctx context.Context) error {
	id, ok := i.ID()
	if !ok {
		return &Error{
			Code:    ErrCodeMissingPrimaryKey,
			Message: "cannot remove a record without a primary key",
			Table:   i.def.table,
			Column:  i.def.pkey,
		}
	}
	return i.tbl.remove(ctx, id)
}
