package model

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/modelkit/internal/scalar"
	"github.com/roach88/modelkit/internal/session"
	"github.com/roach88/modelkit/internal/testutil"
)

var testerColumns = ColumnTypes{
	"id":              scalar.KindInt64,
	"first_name":      scalar.KindText,
	"last_name":       scalar.KindText,
	"email":           scalar.KindText,
	"password":        scalar.KindText,
	"favorite_number": scalar.KindInt64,
	"unlucky_number":  scalar.KindInt64,
	"double_test":     scalar.KindDouble,
	"ulong_test":      scalar.KindUint64,
	"int_test":        scalar.KindInt32,
	"is_enthusiastic": scalar.KindInt32,
	"is_lazy":         scalar.KindInt32,
	"updated_at":      scalar.KindTimestamp,
}

var testerDefinition = MustDefinition("id", "tester_models", testerColumns, nil)

// tester is the entity type used throughout these tests.
type tester struct{ *Instance }

func wrapTester(i *Instance) *tester { return &tester{i} }

func (t *tester) FirstName() (string, bool) { return Field[string](t.Instance, "first_name") }
func (t *tester) LastName() (string, bool)  { return Field[string](t.Instance, "last_name") }
func (t *tester) Email() (string, bool)     { return Field[string](t.Instance, "email") }

func johnSmith() Record {
	return Record{
		"first_name":      scalar.Text("John"),
		"last_name":       scalar.Text("Smith"),
		"email":           scalar.Text("jsmith@google.com"),
		"favorite_number": scalar.Int64(7),
		"unlucky_number":  scalar.Int64(3),
		"is_enthusiastic": scalar.Int32(1),
		"is_lazy":         scalar.Int32(0),
		"untyped_string":  scalar.Text("this wasnt in the constructor"),
	}
}

// offlineRepository has no pool behind it; only in-memory operations work.
func offlineRepository(def *Definition, opts ...RepositoryOption) *Repository[*tester] {
	return NewRepository(session.New(), def, wrapTester, opts...)
}

// sqliteRepository returns a repository on a fresh SQLite file with the
// table created.
func sqliteRepository(t *testing.T, def *Definition, opts ...session.Option) *Repository[*tester] {
	t.Helper()

	reg := testutil.NewRegistry(t, 2, opts...)
	repo := NewRepository(reg, def, wrapTester)
	require.NoError(t, repo.CreateTable(context.Background()))
	return repo
}

func mustLocation(t *testing.T, name string) *time.Location {
	t.Helper()

	loc, err := time.LoadLocation(name)
	require.NoError(t, err)
	return loc
}
