package model

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/modelkit/internal/scalar"
)

func TestNewDefinition_Rejects(t *testing.T) {
	tests := []struct {
		name       string
		pkey       string
		table      string
		columns    ColumnTypes
		validators []Validator
	}{
		{"empty table", "id", "", ColumnTypes{"id": scalar.KindInt64}, nil},
		{"undeclared pkey", "id", "things", ColumnTypes{"name": scalar.KindText}, nil},
		{"text pkey", "id", "things", ColumnTypes{"id": scalar.KindText}, nil},
		{"int32 pkey", "id", "things", ColumnTypes{"id": scalar.KindInt32}, nil},
		{"nil validator", "id", "things", ColumnTypes{"id": scalar.KindInt64}, []Validator{nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDefinition(tt.pkey, tt.table, tt.columns, tt.validators)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidDefinition))
			assert.True(t, HasCode(err, ErrCodeInvalidDefinition))
		})
	}
}

func TestMustDefinition_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustDefinition("id", "things", ColumnTypes{}, nil)
	})
}

func TestDefinition_Accessors(t *testing.T) {
	noop := ValidatorFunc(func(_ context.Context, _ Record, _ *Definition, _ Counter) (*RecordError, error) {
		return nil, nil
	})
	def, err := NewDefinition("id", "things",
		ColumnTypes{"id": scalar.KindInt64, "name": scalar.KindText},
		[]Validator{noop})
	require.NoError(t, err)

	assert.Equal(t, "id", def.PrimaryKey())
	assert.Equal(t, "things", def.Table())
	assert.Equal(t, []string{"id", "name"}, def.Columns())
	assert.Len(t, def.Validators(), 1)
	assert.True(t, def.PersistsInUTC())
	assert.Equal(t, time.UTC, def.Location())

	kind, ok := def.ColumnKind("name")
	assert.True(t, ok)
	assert.Equal(t, scalar.KindText, kind)
	_, ok = def.ColumnKind("missing")
	assert.False(t, ok)

	// Accessors hand out copies.
	cols := def.ColumnTypes()
	cols["extra"] = scalar.KindDouble
	_, ok = def.ColumnKind("extra")
	assert.False(t, ok)

	vs := def.Validators()
	vs[0] = nil
	assert.NotNil(t, def.Validators()[0])
}

func TestDefinition_DoesNotAliasInput(t *testing.T) {
	cols := ColumnTypes{"id": scalar.KindInt64}
	def := MustDefinition("id", "things", cols, nil)

	cols["late"] = scalar.KindText
	_, ok := def.ColumnKind("late")
	assert.False(t, ok)
}

func TestWithLocalTime(t *testing.T) {
	ny := mustLocation(t, "America/New_York")

	def := MustDefinition("id", "events", ColumnTypes{"id": scalar.KindInt64}, nil, WithLocalTime(ny))
	assert.False(t, def.PersistsInUTC())
	assert.Equal(t, ny, def.Location())

	def = MustDefinition("id", "events", ColumnTypes{"id": scalar.KindInt64}, nil, WithLocalTime(nil))
	assert.Equal(t, time.Local, def.Location())
}

func TestDefinition_NormalizeTruncatesToSeconds(t *testing.T) {
	def := MustDefinition("id", "time_models", timeColumns, nil)
	at := time.Date(2019, 12, 10, 14, 4, 27, 999_000_000, time.UTC)

	v, err := def.Normalize("tested_at", scalar.Timestamp(at))
	require.NoError(t, err)
	got, ok := scalar.As[time.Time](v)
	require.True(t, ok)
	assert.True(t, at.Truncate(time.Second).Equal(got), "got %s", got)
	assert.False(t, at.Equal(got))
}

func TestDefinition_Encode(t *testing.T) {
	ny := mustLocation(t, "America/New_York")
	at := time.Date(2019, 12, 10, 14, 4, 27, 0, time.UTC)

	utc := MustDefinition("id", "things", ColumnTypes{"id": scalar.KindInt64}, nil)
	local := MustDefinition("id", "things", ColumnTypes{"id": scalar.KindInt64}, nil, WithLocalTime(ny))

	assert.Equal(t, "2019-12-10 14:04:27", utc.Encode(scalar.Timestamp(at)))
	assert.Equal(t, "2019-12-10 09:04:27", local.Encode(scalar.Timestamp(at)))
	assert.Equal(t, int64(-1), utc.Encode(scalar.Uint64(^uint64(0))))
	assert.Equal(t, "x", utc.Encode(scalar.Text("x")))
	assert.Nil(t, utc.Encode(nil))
}

func TestDefinition_Decode(t *testing.T) {
	ny := mustLocation(t, "America/New_York")
	def := MustDefinition("id", "events",
		ColumnTypes{"id": scalar.KindInt64, "at": scalar.KindTimestamp}, nil, WithLocalTime(ny))
	want := time.Date(2019, 12, 10, 14, 4, 27, 0, ny)

	// Drivers deliver naive wall clock either as time.Time or as text.
	v, err := def.decode("at", time.Date(2019, 12, 10, 14, 4, 27, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, want.Equal(v.(scalar.Timestamp).Time()))

	v, err = def.decode("at", []byte("2019-12-10 14:04:27"))
	require.NoError(t, err)
	assert.True(t, want.Equal(v.(scalar.Timestamp).Time()))

	// Text in an undeclared column stays text.
	v, err = def.decode("at_string", "2019-12-10 14:04:27")
	require.NoError(t, err)
	assert.Equal(t, scalar.Text("2019-12-10 14:04:27"), v)

	_, err = def.decode("at", "not a time")
	assert.True(t, errors.Is(err, ErrUnsupportedConversion))
}
