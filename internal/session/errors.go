package session

import "errors"

var (
	// ErrAlreadyRegistered is returned when a pool or migration name is reused.
	ErrAlreadyRegistered = errors.New("already registered")

	// ErrNotRegistered is returned when no pool exists under the requested name.
	ErrNotRegistered = errors.New("database connection has not been initialized")

	// ErrPoolExhausted is returned when no connection frees up within the
	// acquire timeout.
	ErrPoolExhausted = errors.New("connection pool exhausted")

	// ErrUnsupportedBackend is returned for backend names with no Backend
	// implementation.
	ErrUnsupportedBackend = errors.New("unrecognized backend")

	// ErrInsertID is returned when a backend reports no generated id.
	ErrInsertID = errors.New("last insert id returned zero")

	// ErrUnknownModel is returned by Migrate for names nobody registered.
	ErrUnknownModel = errors.New("unknown model")
)
