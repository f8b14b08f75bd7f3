package model

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/modelkit/internal/querysql"
	"github.com/roach88/modelkit/internal/scalar"
	"github.com/roach88/modelkit/internal/session"
)

// table executes the statements of one Definition against one pool.
type table struct {
	def     *Definition
	reg     *session.Registry
	pool    string
	counter Counter           // overrides CountWhere for validators when set
	ddl     map[string]string // column type overrides for CreateTable
}

func (t *table) withSession(ctx context.Context, fn func(*session.Session) error) error {
	return t.reg.WithSession(ctx, t.pool, fn)
}

// params encodes the named columns of rec as driver arguments.
func (t *table) params(rec Record, columns []string) map[string]any {
	out := make(map[string]any, len(columns))
	for _, col := range columns {
		out[col] = t.def.Encode(rec[col])
	}
	return out
}

// args encodes positional query arguments. Values and time.Time get the
// same encoding as record columns; anything else is passed through.
func (t *table) args(in []any) []any {
	out := make([]any, len(in))
	for i, a := range in {
		switch x := a.(type) {
		case scalar.Value:
			out[i] = t.def.Encode(x)
		case time.Time:
			out[i] = t.def.Encode(scalar.Timestamp(x))
		default:
			out[i] = a
		}
	}
	return out
}

// writeColumns returns the declared columns of rec to write. A NULL primary
// key is left out so the backend assigns one.
func (t *table) writeColumns(rec Record) []string {
	cols := make([]string, 0, len(rec))
	for _, col := range rec.Keys() {
		if _, ok := t.def.columns[col]; !ok {
			continue
		}
		if col == t.def.pkey && rec[col] == nil {
			continue
		}
		cols = append(cols, col)
	}
	return cols
}

func (t *table) insert(ctx context.Context, rec Record) (int64, error) {
	cols := t.writeColumns(rec)
	var id int64
	err := t.withSession(ctx, func(s *session.Session) error {
		backend, err := s.Backend()
		if err != nil {
			return t.backendError(err)
		}
		query, args, err := s.Named(querysql.Insert(t.def.table, cols), t.params(rec, cols))
		if err != nil {
			return err
		}
		id, err = backend.InsertID(ctx, s, query, args, t.def.pkey)
		if errors.Is(err, session.ErrInsertID) {
			return &Error{Code: ErrCodeInsertID, Message: "backend reported no generated id", Table: t.def.table, Err: err}
		}
		if err != nil {
			return fmt.Errorf("insert into %s: %w", t.def.table, err)
		}
		if id == 0 {
			return &Error{Code: ErrCodeInsertID, Message: "backend reported id 0", Table: t.def.table}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	slog.Debug("record inserted", "table", t.def.table, "id", id)
	return id, nil
}

func (t *table) update(ctx context.Context, rec Record) error {
	if !rec.Has(t.def.pkey) {
		return &Error{
			Code:    ErrCodeMissingPrimaryKey,
			Message: "cannot update a record without a primary key",
			Table:   t.def.table,
			Column:  t.def.pkey,
		}
	}
	cols := t.writeColumns(rec)
	_, err := t.execOne(ctx, querysql.Update(t.def.table, t.def.pkey, cols), t.params(rec, cols))
	return err
}

func (t *table) remove(ctx context.Context, id int64) error {
	params := map[string]any{t.def.pkey: id}
	_, err := t.execOne(ctx, querysql.Delete(t.def.table, t.def.pkey), params)
	return err
}

// execOne runs a named statement that must affect exactly one row.
func (t *table) execOne(ctx context.Context, query string, params map[string]any) (int64, error) {
	var affected int64
	err := t.withSession(ctx, func(s *session.Session) error {
		q, args, err := s.Named(query, params)
		if err != nil {
			return err
		}
		res, err := s.Exec(ctx, q, args...)
		if err != nil {
			return fmt.Errorf("exec on %s: %w", t.def.table, err)
		}
		affected, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected on %s: %w", t.def.table, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	if affected != 1 {
		return affected, &Error{
			Code:    ErrCodeAffectedRows,
			Message: fmt.Sprintf("expected 1 affected row, got %d", affected),
			Table:   t.def.table,
		}
	}
	return affected, nil
}

// CountWhere runs a named count query. It implements Counter.
func (t *table) CountWhere(ctx context.Context, query string, params map[string]any) (uint64, error) {
	if t.counter != nil {
		return t.counter.CountWhere(ctx, query, params)
	}
	var n uint64
	err := t.withSession(ctx, func(s *session.Session) error {
		q, args, err := s.Named(query, params)
		if err != nil {
			return err
		}
		n, err = t.scanCount(ctx, s, q, args)
		return err
	})
	return n, err
}

func (t *table) scanCount(ctx context.Context, s *session.Session, query string, args []any) (uint64, error) {
	var n int64
	if err := s.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, &Error{Code: ErrCodeNoData, Message: "count query returned no row", Table: t.def.table, Err: err}
		}
		return 0, fmt.Errorf("count on %s: %w", t.def.table, err)
	}
	return uint64(n), nil
}

// queryRecords runs query and decodes every row.
func (t *table) queryRecords(ctx context.Context, s *session.Session, query string, args []any) ([]Record, error) {
	rows, err := s.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query on %s: %w", t.def.table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []Record
	for rows.Next() {
		raw := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range raw {
			ptrs[i] = &raw[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan %s row: %w", t.def.table, err)
		}
		rec := make(Record, len(cols))
		for i, col := range cols {
			v, err := t.def.decode(col, raw[i])
			if err != nil {
				return nil, err
			}
			rec[col] = v
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s rows: %w", t.def.table, err)
	}
	return out, nil
}

// defaultColumns derives DDL columns from the declared kinds, primary key
// excluded. Types set with WithColumns take precedence.
func (t *table) defaultColumns(backend session.Backend) []session.Column {
	var cols []session.Column
	for _, name := range t.def.Columns() {
		if name == t.def.pkey {
			continue
		}
		typ, ok := t.ddl[name]
		if !ok {
			typ = backend.ColumnType(t.def.columns[name])
		}
		cols = append(cols, session.Column{Name: name, Type: typ})
	}
	return cols
}

func (t *table) backendError(err error) error {
	return &Error{Code: ErrCodeUnsupportedBackend, Message: "backend has no implementation", Table: t.def.table, Err: err}
}
