package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultPool is the pool name used when callers do not pick one.
const DefaultPool = "default"

// DefaultAcquireTimeout bounds how long Acquire waits for a free connection.
const DefaultAcquireTimeout = 10 * time.Second

// QueryLogger receives every executed statement.
type QueryLogger func(query string)

// Migrator creates (version 1) or drops (version 0) an entity's table.
type Migrator interface {
	Migrate(ctx context.Context, version uint) error
}

// MigratorFunc adapts a function to Migrator.
type MigratorFunc func(ctx context.Context, version uint) error

// Migrate calls f.
func (f MigratorFunc) Migrate(ctx context.Context, version uint) error { return f(ctx, version) }

// Option configures a Registry.
type Option func(*Registry)

// WithAcquireTimeout sets the bounded wait for a pooled connection.
// Zero or negative waits until the caller's context is done.
func WithAcquireTimeout(d time.Duration) Option {
	return func(r *Registry) { r.timeout = d }
}

// WithQueryLogger installs the statement hook.
func WithQueryLogger(fn QueryLogger) Option {
	return func(r *Registry) { r.logger = fn }
}

// pool is one registered database handle.
type pool struct {
	name    string
	db      *sql.DB
	backend string
	size    int
	owned   bool // opened by Dsn, closed by Close
}

// Registry holds named connection pools and migration callbacks.
// Construct one at startup with New and pass it to the components that
// need it; call Close at shutdown.
type Registry struct {
	mu         sync.RWMutex
	pools      map[string]*pool
	migrations map[string]Migrator
	logger     QueryLogger
	timeout    time.Duration
}

// New creates an empty Registry.
func New(opts ...Option) *Registry {
	r := &Registry{
		pools:      make(map[string]*pool),
		migrations: make(map[string]Migrator),
		logger:     defaultQueryLogger,
		timeout:    DefaultAcquireTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func defaultQueryLogger(query string) {
	slog.Debug("DB Query", "sql", query)
}

// Dsn opens a pool of size connections for dsn and registers it as name.
// The dsn has the form "<backend>://<connection>".
//
// Re-registering an existing name is an error.
func (r *Registry) Dsn(name, dsn string, size int) error {
	if size <= 0 {
		return fmt.Errorf("register %q: pool size must be positive, got %d", name, size)
	}
	if r.has(name) {
		return fmt.Errorf("register %q: %w", name, ErrAlreadyRegistered)
	}

	backend, driverDSN, err := ParseDSN(dsn)
	if err != nil {
		return fmt.Errorf("register %q: %w", name, err)
	}

	db, err := sql.Open(backend.DriverName(), driverDSN)
	if err != nil {
		return fmt.Errorf("register %q: failed to open database: %w", name, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return fmt.Errorf("register %q: failed to connect to database: %w", name, err)
	}

	if err := r.add(&pool{name: name, db: db, backend: backend.Name(), size: size, owned: true}); err != nil {
		db.Close()
		return err
	}

	slog.Info("database pool registered", "pool", name, "backend", backend.Name(), "size", size)
	return nil
}

// Attach registers an already opened handle as name. The backend name is
// not checked here: an unrecognized backend fails when a statement needs
// backend-specific behavior. Attached handles are not closed by Close.
func (r *Registry) Attach(name string, db *sql.DB, backend string, size int) error {
	if size <= 0 {
		return fmt.Errorf("attach %q: pool size must be positive, got %d", name, size)
	}
	return r.add(&pool{name: name, db: db, backend: backend, size: size})
}

func (r *Registry) add(p *pool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pools[p.name]; exists {
		return fmt.Errorf("register %q: %w", p.name, ErrAlreadyRegistered)
	}

	p.db.SetMaxOpenConns(p.size)
	p.db.SetMaxIdleConns(p.size)
	r.pools[p.name] = p
	return nil
}

func (r *Registry) has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pools[name]
	return ok
}

func (r *Registry) lookup(name string) (*pool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pools[name]
	if !ok {
		return nil, fmt.Errorf("pool %q: %w", name, ErrNotRegistered)
	}
	return p, nil
}

// BackendName returns the backend of the named pool.
func (r *Registry) BackendName(name string) (string, error) {
	p, err := r.lookup(name)
	if err != nil {
		return "", err
	}
	return p.backend, nil
}

// DB returns the underlying sql.DB of the named pool.
// Use with caution - prefer borrowing a Session.
func (r *Registry) DB(name string) (*sql.DB, error) {
	p, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return p.db, nil
}

// Acquire borrows one connection from the named pool. The caller must
// Release the session, usually with defer.
//
// If the pool stays exhausted for the acquire timeout, Acquire returns
// ErrPoolExhausted.
func (r *Registry) Acquire(ctx context.Context, name string) (*Session, error) {
	p, err := r.lookup(name)
	if err != nil {
		return nil, err
	}

	acquireCtx, cancel := ctx, context.CancelFunc(func() {})
	if r.timeout > 0 {
		acquireCtx, cancel = context.WithTimeout(ctx, r.timeout)
	}
	defer cancel()

	conn, err := p.db.Conn(acquireCtx)
	if err != nil {
		if ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("acquire %q: no connection free after %s (pool size %d): %w",
				name, r.timeout, p.size, ErrPoolExhausted)
		}
		return nil, fmt.Errorf("acquire %q: %w", name, err)
	}

	s := &Session{
		id:          uuid.Must(uuid.NewV7()).String(),
		pool:        p.name,
		backendName: p.backend,
		conn:        conn,
		reg:         r,
	}
	s.backend, _ = LookupBackend(p.backend)

	slog.Debug("session acquired", "pool", p.name, "session", s.id)
	return s, nil
}

// WithSession borrows a session for the duration of fn.
func (r *Registry) WithSession(ctx context.Context, name string, fn func(*Session) error) error {
	s, err := r.Acquire(ctx, name)
	if err != nil {
		return err
	}
	defer s.Release()
	return fn(s)
}

// SetQueryLogger replaces the statement hook. A nil logger disables logging.
func (r *Registry) SetQueryLogger(fn QueryLogger) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.logger = fn
}

func (r *Registry) logQuery(query string) {
	r.mu.RLock()
	logger := r.logger
	r.mu.RUnlock()

	if logger != nil {
		logger(query)
	}
}

// RegisterMigration adds the Migrate callback of an entity type.
func (r *Registry) RegisterMigration(name string, m Migrator) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.migrations[name]; exists {
		return fmt.Errorf("register migration %q: %w", name, ErrAlreadyRegistered)
	}
	r.migrations[name] = m
	return nil
}

// Migrations returns the registered migration names, sorted.
func (r *Registry) Migrations() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.migrations))
	for name := range r.migrations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Migrate runs the named entity's callback: version 1 creates its table,
// version 0 drops it.
func (r *Registry) Migrate(ctx context.Context, name string, version uint) error {
	r.mu.RLock()
	m, ok := r.migrations[name]
	r.mu.RUnlock()

	if !ok {
		return fmt.Errorf("migrate %q: %w", name, ErrUnknownModel)
	}
	if err := m.Migrate(ctx, version); err != nil {
		return fmt.Errorf("migrate %q to version %d: %w", name, version, err)
	}
	return nil
}

// Close closes every pool opened by Dsn. Attached handles are left open.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for name, p := range r.pools {
		if p.owned {
			if err := p.db.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %q: %w", name, err))
			}
		}
		delete(r.pools, name)
	}
	return errors.Join(errs...)
}
