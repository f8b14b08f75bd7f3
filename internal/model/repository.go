package model

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/modelkit/internal/querysql"
	"github.com/roach88/modelkit/internal/scalar"
	"github.com/roach88/modelkit/internal/session"
)

// Repository loads and manages rows of one entity type. T is the entity
// type wrapping *Instance, usually a struct embedding it.
//
// A Repository is safe for concurrent use; the entities it returns are not.
type Repository[T any] struct {
	tbl  *table
	wrap func(*Instance) T
}

// RepositoryOption configures a Repository.
type RepositoryOption func(*table)

// WithPool selects the connection pool. The default is session.DefaultPool.
func WithPool(name string) RepositoryOption {
	return func(t *table) { t.pool = name }
}

// WithCounter replaces the database count used by validators.
func WithCounter(c Counter) RepositoryOption {
	return func(t *table) { t.counter = c }
}

// WithColumns fixes the DDL type of the named declared columns. Columns it
// does not name get the backend's type for their kind.
func WithColumns(columns ...session.Column) RepositoryOption {
	return func(t *table) {
		if t.ddl == nil {
			t.ddl = make(map[string]string, len(columns))
		}
		for _, c := range columns {
			t.ddl[c.Name] = c.Type
		}
	}
}

// NewRepository binds def to the registry. wrap turns an Instance into the
// entity type.
func NewRepository[T any](reg *session.Registry, def *Definition, wrap func(*Instance) T, opts ...RepositoryOption) *Repository[T] {
	t := &table{def: def, reg: reg, pool: session.DefaultPool}
	for _, opt := range opts {
		opt(t)
	}
	return &Repository[T]{tbl: t, wrap: wrap}
}

// Definition returns the entity schema.
func (r *Repository[T]) Definition() *Definition { return r.tbl.def }

// Pool returns the connection pool name.
func (r *Repository[T]) Pool() string { return r.tbl.pool }

// New returns an empty entity. Its first Save inserts.
func (r *Repository[T]) New() T {
	return r.wrap(newInstance(r.tbl))
}

// Load builds an entity from rec. With fromDatabase the entity is clean and
// its next Save updates the row with rec's primary key; otherwise it is
// dirty and its next Save inserts.
func (r *Repository[T]) Load(rec Record, fromDatabase bool) (T, error) {
	inst, err := load(r.tbl, rec, fromDatabase)
	if err != nil {
		var zero T
		return zero, err
	}
	return r.wrap(inst), nil
}

// Find loads the row with primary key id. It reports false when no row
// matches.
func (r *Repository[T]) Find(ctx context.Context, id int64) (T, bool, error) {
	pkey := r.tbl.def.pkey
	return r.FindWhere(ctx, pkey+" = :"+pkey, Record{pkey: scalar.Int64(id)})
}

// FindWhere loads the first row matching where. Parameters bind by name.
func (r *Repository[T]) FindWhere(ctx context.Context, where string, params Record) (T, bool, error) {
	var zero T

	named := make(map[string]any, len(params))
	for col, v := range params {
		named[col] = r.tbl.def.Encode(v)
	}

	var recs []Record
	err := r.tbl.withSession(ctx, func(s *session.Session) error {
		q, args, err := s.Named(querysql.SelectOne(r.tbl.def.table, where), named)
		if err != nil {
			return err
		}
		recs, err = r.tbl.queryRecords(ctx, s, q, args)
		return err
	})
	if err != nil || len(recs) == 0 {
		return zero, false, err
	}

	inst, err := load(r.tbl, recs[0], true)
	if err != nil {
		return zero, false, err
	}
	return r.wrap(inst), true, nil
}

// Select runs query and returns one entity per row. args bind positionally
// to the query's ":name" parameters.
func (r *Repository[T]) Select(ctx context.Context, query string, args ...any) ([]T, error) {
	var recs []Record
	err := r.tbl.withSession(ctx, func(s *session.Session) error {
		q, bound, err := s.Positional(query, r.tbl.args(args))
		if err != nil {
			return err
		}
		recs, err = r.tbl.queryRecords(ctx, s, q, bound)
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(recs))
	for _, rec := range recs {
		inst, err := load(r.tbl, rec, true)
		if err != nil {
			return nil, err
		}
		out = append(out, r.wrap(inst))
	}
	return out, nil
}

// Count runs a "select count(*)" query. args bind positionally.
func (r *Repository[T]) Count(ctx context.Context, query string, args ...any) (uint64, error) {
	var n uint64
	err := r.tbl.withSession(ctx, func(s *session.Session) error {
		q, bound, err := s.Positional(query, r.tbl.args(args))
		if err != nil {
			return err
		}
		n, err = r.tbl.scanCount(ctx, s, q, bound)
		return err
	})
	return n, err
}

// CountWhere runs a named count query. It implements Counter.
func (r *Repository[T]) CountWhere(ctx context.Context, query string, params map[string]any) (uint64, error) {
	return r.tbl.CountWhere(ctx, query, params)
}

// Execute runs a statement and returns the number of affected rows.
// args bind positionally. On mysql pools the count is of matched rows, so
// an update that changes nothing still counts the rows its where clause hit.
func (r *Repository[T]) Execute(ctx context.Context, query string, args ...any) (int64, error) {
	var affected int64
	err := r.tbl.withSession(ctx, func(s *session.Session) error {
		q, bound, err := s.Positional(query, r.tbl.args(args))
		if err != nil {
			return err
		}
		res, err := s.Exec(ctx, q, bound...)
		if err != nil {
			return fmt.Errorf("execute on %s: %w", r.tbl.def.table, err)
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected, err
}

// Remove deletes the row with primary key id. Exactly one row must match.
func (r *Repository[T]) Remove(ctx context.Context, id int64) error {
	return r.tbl.remove(ctx, id)
}

// CreateTable creates the entity table if it does not exist. With no
// columns it derives them from the declared kinds and WithColumns.
func (r *Repository[T]) CreateTable(ctx context.Context, columns ...session.Column) error {
	return r.tbl.withSession(ctx, func(s *session.Session) error {
		backend, err := s.Backend()
		if err != nil {
			return r.tbl.backendError(err)
		}
		if len(columns) == 0 {
			columns = r.tbl.defaultColumns(backend)
		}
		ddl := backend.CreateTable(r.tbl.def.table, r.tbl.def.pkey, columns)
		if _, err := s.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create table %s: %w", r.tbl.def.table, err)
		}
		slog.Info("table created", "table", r.tbl.def.table, "pool", r.tbl.pool, "backend", backend.Name())
		return nil
	})
}

// DropTable drops the entity table.
func (r *Repository[T]) DropTable(ctx context.Context) error {
	return r.tbl.withSession(ctx, func(s *session.Session) error {
		if _, err := s.Exec(ctx, "drop table "+r.tbl.def.table); err != nil {
			return fmt.Errorf("drop table %s: %w", r.tbl.def.table, err)
		}
		slog.Info("table dropped", "table", r.tbl.def.table, "pool", r.tbl.pool)
		return nil
	})
}

// Migrate brings the table to version: 1 creates it, 0 drops it.
// It implements session.Migrator.
func (r *Repository[T]) Migrate(ctx context.Context, version uint) error {
	switch version {
	case 0:
		return r.DropTable(ctx)
	case 1:
		return r.CreateTable(ctx)
	default:
		return &Error{
			Code:    ErrCodeInvalidDefinition,
			Message: fmt.Sprintf("no migration for version %d", version),
			Table:   r.tbl.def.table,
		}
	}
}
