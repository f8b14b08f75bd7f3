package session

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/modelkit/internal/querysql"
	"github.com/roach88/modelkit/internal/scalar"
)

// Backend names, as used in DSN schemes.
const (
	SQLite3  = "sqlite3"
	MySQL    = "mysql"
	Postgres = "postgres"
)

// Column is one column of a create table statement.
type Column struct {
	Name string
	Type string
}

// Backend captures what differs between database servers.
type Backend interface {
	// Name is the DSN scheme of the backend.
	Name() string

	// DriverName is the database/sql driver to open.
	DriverName() string

	// PrepareDSN converts the part of the DSN after "scheme://" into the
	// driver's connection string.
	PrepareDSN(rest string) (string, error)

	// Placeholder renders the n-th positional parameter.
	Placeholder(n int) string

	// InsertID executes an insert statement and returns the generated
	// primary key. A zero id is reported as ErrInsertID.
	InsertID(ctx context.Context, s *Session, query string, args []any, pkey string) (int64, error)

	// CreateTable returns DDL for a table with an auto-incrementing
	// 64-bit primary key followed by columns.
	CreateTable(table, pkey string, columns []Column) string

	// ColumnType returns the column type used for a scalar kind.
	ColumnType(k scalar.Kind) string
}

var backends = map[string]Backend{
	SQLite3:  sqliteBackend{},
	MySQL:    mysqlBackend{},
	Postgres: postgresBackend{},
}

// LookupBackend returns the Backend registered under name.
func LookupBackend(name string) (Backend, error) {
	b, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnsupportedBackend, name)
	}
	return b, nil
}

// Backends returns the recognized backend names, sorted.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseDSN splits "scheme://rest" into the backend and its driver DSN.
func ParseDSN(dsn string) (Backend, string, error) {
	scheme, rest, ok := strings.Cut(dsn, "://")
	if !ok || scheme == "" {
		return nil, "", fmt.Errorf("dsn %q: expected <backend>://<connection>", dsn)
	}
	b, err := LookupBackend(scheme)
	if err != nil {
		return nil, "", fmt.Errorf("dsn %q: %w", dsn, err)
	}
	driverDSN, err := b.PrepareDSN(rest)
	if err != nil {
		return nil, "", fmt.Errorf("dsn %q: %w", dsn, err)
	}
	return b, driverDSN, nil
}

// sqliteBackend talks to SQLite through mattn/go-sqlite3.
type sqliteBackend struct{}

func (sqliteBackend) Name() string       { return SQLite3 }
func (sqliteBackend) DriverName() string { return "sqlite3" }

// PrepareDSN adds the connection pragmas every pooled connection needs:
//   - busy_timeout=5000: wait for locks up to 5 seconds
//   - foreign_keys=on: enforce referential integrity
//   - journal_mode=WAL: concurrent reads during writes (file databases only)
func (sqliteBackend) PrepareDSN(rest string) (string, error) {
	if rest == "" {
		return "", fmt.Errorf("sqlite3: empty database path")
	}

	params := []string{}
	if !strings.Contains(rest, "_busy_timeout") && !strings.Contains(rest, "_timeout") {
		params = append(params, "_busy_timeout=5000")
	}
	if !strings.Contains(rest, "_foreign_keys") && !strings.Contains(rest, "_fk") {
		params = append(params, "_foreign_keys=on")
	}
	if !isMemoryDSN(rest) && !strings.Contains(rest, "_journal") {
		params = append(params, "_journal_mode=WAL")
	}
	if len(params) == 0 {
		return rest, nil
	}

	sep := "?"
	if strings.Contains(rest, "?") {
		sep = "&"
	}
	return rest + sep + strings.Join(params, "&"), nil
}

// isMemoryDSN reports whether rest names an in-memory database:
// ":memory:", "file::memory:" or a URI with mode=memory.
func isMemoryDSN(rest string) bool {
	path, query, _ := strings.Cut(rest, "?")
	if path == ":memory:" || path == "file::memory:" {
		return true
	}
	for _, param := range strings.Split(query, "&") {
		if param == "mode=memory" {
			return true
		}
	}
	return false
}

func (sqliteBackend) Placeholder(n int) string { return querysql.Question(n) }

func (sqliteBackend) InsertID(ctx context.Context, s *Session, query string, args []any, _ string) (int64, error) {
	if _, err := s.Exec(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}

	// last_insert_rowid() is per connection; the session pins one.
	var id int64
	if err := s.QueryRow(ctx, "select last_insert_rowid()").Scan(&id); err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	if id == 0 {
		return 0, ErrInsertID
	}
	return id, nil
}

func (sqliteBackend) CreateTable(table, pkey string, columns []Column) string {
	return fmt.Sprintf("create table if not exists %s ( %s integer primary key%s )",
		table, pkey, joinColumns(columns))
}

func (sqliteBackend) ColumnType(k scalar.Kind) string {
	switch k {
	case scalar.KindText:
		return "text"
	case scalar.KindTimestamp:
		return "datetime"
	case scalar.KindDouble:
		return "real"
	default:
		return "integer"
	}
}

// mysqlBackend talks to MySQL through go-sql-driver/mysql.
type mysqlBackend struct{}

func (mysqlBackend) Name() string       { return MySQL }
func (mysqlBackend) DriverName() string { return "mysql" }

// PrepareDSN forces the connection options the model layer relies on:
//   - parseTime with loc=UTC: DATETIME columns arrive as zone-naive time.Time
//   - clientFoundRows: affected rows count matched rows, so re-saving an
//     unchanged record still reports exactly one row
func (mysqlBackend) PrepareDSN(rest string) (string, error) {
	cfg, err := mysql.ParseDSN(rest)
	if err != nil {
		return "", fmt.Errorf("mysql: %w", err)
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.ClientFoundRows = true
	return cfg.FormatDSN(), nil
}

func (mysqlBackend) Placeholder(n int) string { return querysql.Question(n) }

func (mysqlBackend) InsertID(ctx context.Context, s *Session, query string, args []any, _ string) (int64, error) {
	res, err := s.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	if id == 0 {
		return 0, ErrInsertID
	}
	return id, nil
}

func (mysqlBackend) CreateTable(table, pkey string, columns []Column) string {
	return fmt.Sprintf("create table if not exists %s ( %s bigint NOT NULL AUTO_INCREMENT%s, PRIMARY KEY(%s) )",
		table, pkey, joinColumns(columns), pkey)
}

func (mysqlBackend) ColumnType(k scalar.Kind) string {
	switch k {
	case scalar.KindText:
		return "varchar(255)"
	case scalar.KindTimestamp:
		return "datetime"
	case scalar.KindDouble:
		return "double"
	case scalar.KindInt32:
		return "int"
	default:
		return "bigint"
	}
}

// postgresBackend talks to PostgreSQL through pgx's database/sql driver.
type postgresBackend struct{}

func (postgresBackend) Name() string       { return Postgres }
func (postgresBackend) DriverName() string { return "pgx" }

func (postgresBackend) PrepareDSN(rest string) (string, error) {
	if rest == "" {
		return "", fmt.Errorf("postgres: empty connection string")
	}
	return "postgres://" + rest, nil
}

func (postgresBackend) Placeholder(n int) string { return querysql.Dollar(n) }

// InsertID appends RETURNING; pgx reports no LastInsertId.
func (postgresBackend) InsertID(ctx context.Context, s *Session, query string, args []any, pkey string) (int64, error) {
	var id int64
	if err := s.QueryRow(ctx, query+" returning "+pkey, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert: %w", err)
	}
	if id == 0 {
		return 0, ErrInsertID
	}
	return id, nil
}

func (postgresBackend) CreateTable(table, pkey string, columns []Column) string {
	return fmt.Sprintf("create table if not exists %s ( %s bigserial primary key%s )",
		table, pkey, joinColumns(columns))
}

func (postgresBackend) ColumnType(k scalar.Kind) string {
	switch k {
	case scalar.KindText:
		return "text"
	case scalar.KindTimestamp:
		return "timestamp"
	case scalar.KindDouble:
		return "double precision"
	case scalar.KindInt32:
		return "integer"
	default:
		return "bigint"
	}
}

func joinColumns(columns []Column) string {
	var b strings.Builder
	for _, c := range columns {
		b.WriteString(", ")
		b.WriteString(c.Name)
		b.WriteString(" ")
		b.WriteString(c.Type)
	}
	return b.String()
}
