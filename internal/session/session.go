package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/roach88/modelkit/internal/querysql"
)

// Session is one borrowed connection. It is not safe for concurrent use;
// each call stack borrows its own.
type Session struct {
	id          string
	pool        string
	backendName string
	backend     Backend // nil when backendName is unrecognized
	conn        *sql.Conn
	reg         *Registry
	released    bool
}

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// BackendName returns the name the pool was registered with.
func (s *Session) BackendName() string { return s.backendName }

// Backend returns the session's Backend, or ErrUnsupportedBackend.
func (s *Session) Backend() (Backend, error) {
	if s.backend == nil {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedBackend, s.backendName)
	}
	return s.backend, nil
}

// compiler returns a parameter rewriter for the backend. Unrecognized
// backends get "?" placeholders.
func (s *Session) compiler() *querysql.Compiler {
	if s.backend == nil {
		return querysql.NewCompiler(nil)
	}
	return querysql.NewCompiler(s.backend.Placeholder)
}

// Named rewrites ":name" parameters for the backend and collects their
// values from params.
func (s *Session) Named(query string, params map[string]any) (string, []any, error) {
	return s.compiler().Named(query, params)
}

// Positional binds args to the ":name" parameters of query in order.
func (s *Session) Positional(query string, args []any) (string, []any, error) {
	return s.compiler().Positional(query, args)
}

// Exec executes a statement that returns no rows.
func (s *Session) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	s.reg.logQuery(query)
	return s.conn.ExecContext(ctx, query, args...)
}

// Query executes a statement that returns rows.
// Callers are responsible for closing the returned rows.
func (s *Session) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	s.reg.logQuery(query)
	return s.conn.QueryContext(ctx, query, args...)
}

// QueryRow executes a statement expected to return at most one row.
func (s *Session) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	s.reg.logQuery(query)
	return s.conn.QueryRowContext(ctx, query, args...)
}

// Release returns the connection to its pool. Calling it more than once is
// a no-op.
func (s *Session) Release() error {
	if s.released {
		return nil
	}
	s.released = true
	slog.Debug("session released", "pool", s.pool, "session", s.id)
	return s.conn.Close()
}
