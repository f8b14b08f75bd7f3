package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/modelkit/internal/session"
)

// NewRegistry returns a Registry whose default pool is a fresh SQLite file
// in t.TempDir(). The registry is closed when the test ends.
func NewRegistry(t testing.TB, size int, opts ...session.Option) *session.Registry {
	t.Helper()

	reg := session.New(opts...)
	dsn := "sqlite3://" + filepath.Join(t.TempDir(), "test.db")
	require.NoError(t, reg.Dsn(session.DefaultPool, dsn, size))
	t.Cleanup(func() { _ = reg.Close() })
	return reg
}

// ExternalDSN returns the DSN in the environment variable env, skipping the
// test when it is unset.
func ExternalDSN(t testing.TB, env string) string {
	t.Helper()

	dsn := os.Getenv(env)
	if dsn == "" {
		t.Skipf("%s not set", env)
	}
	return dsn
}
