// Package session provides the process-wide connection registry used by the
// model layer.
//
// A Registry owns:
//   - Pools: named database handles, each a fixed-size database/sql pool
//   - Migrations: per-entity Migrate(version) callbacks, iterated by the CLI
//   - Query logger: a hook invoked once per executed statement
//
// # Backends
//
// Three backends are recognized by DSN scheme: sqlite3://, mysql:// and
// postgres://. They disagree on how the last generated id and affected row
// counts are reported, so each Backend implements insert-id retrieval itself:
//
//   - sqlite3: "select last_insert_rowid()" on the same connection
//   - mysql: LastInsertId from the OK packet; clientFoundRows is forced so
//     an update that changes nothing still reports its matched row
//   - postgres: no LastInsertId at all; inserts use RETURNING
//
// # Pool policy
//
// Every database call borrows one connection for its duration. Acquire waits
// at most the configured acquire timeout (10s by default) and then fails
// with ErrPoolExhausted instead of blocking forever.
//
// Registration (Dsn, Attach, RegisterMigration) is expected to happen once at
// startup; lookups afterwards are read-only.
package session
