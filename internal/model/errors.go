package model

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes persistence errors.
type ErrorCode string

const (
	// ErrCodeInvalidDefinition indicates a schema misconfiguration.
	ErrCodeInvalidDefinition ErrorCode = "INVALID_DEFINITION"

	// ErrCodeUnsupportedConversion indicates a value that cannot be stored
	// in a column of the declared kind.
	ErrCodeUnsupportedConversion ErrorCode = "UNSUPPORTED_CONVERSION"

	// ErrCodeUnsupportedBackend indicates a pool whose backend has no
	// insert-id or DDL implementation.
	ErrCodeUnsupportedBackend ErrorCode = "UNSUPPORTED_BACKEND"

	// ErrCodeAffectedRows indicates an update or delete that did not touch
	// exactly one row.
	ErrCodeAffectedRows ErrorCode = "AFFECTED_ROWS"

	// ErrCodeInsertID indicates the backend reported no generated id.
	ErrCodeInsertID ErrorCode = "INSERT_ID"

	// ErrCodeNoData indicates a count query that returned no row.
	ErrCodeNoData ErrorCode = "NO_DATA"

	// ErrCodeInvalidRecord indicates Save on a record that fails validation.
	ErrCodeInvalidRecord ErrorCode = "INVALID_RECORD"

	// ErrCodeMissingPrimaryKey indicates an operation that needs an id.
	ErrCodeMissingPrimaryKey ErrorCode = "MISSING_PRIMARY_KEY"
)

// Sentinels for errors.Is. They match any *Error with the same code.
var (
	ErrInvalidDefinition     = &Error{Code: ErrCodeInvalidDefinition}
	ErrUnsupportedConversion = &Error{Code: ErrCodeUnsupportedConversion}
	ErrUnsupportedBackend    = &Error{Code: ErrCodeUnsupportedBackend}
	ErrAffectedRows          = &Error{Code: ErrCodeAffectedRows}
	ErrInsertID              = &Error{Code: ErrCodeInsertID}
	ErrNoData                = &Error{Code: ErrCodeNoData}
	ErrInvalidRecord         = &Error{Code: ErrCodeInvalidRecord}
	ErrMissingPrimaryKey     = &Error{Code: ErrCodeMissingPrimaryKey}
)

// Error is a persistence failure. These are programming or data integrity
// errors; the model layer never retries them.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Table is the affected table, if any.
	Table string

	// Column is the affected column, if any.
	Column string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.Table != "" && e.Column != "":
		msg += fmt.Sprintf(" (table=%s, column=%s)", e.Table, e.Column)
	case e.Table != "":
		msg += fmt.Sprintf(" (table=%s)", e.Table)
	case e.Column != "":
		msg += fmt.Sprintf(" (column=%s)", e.Column)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// HasCode reports whether err wraps an *Error with the given code.
// Uses errors.As to handle wrapped errors.
func HasCode(err error, code ErrorCode) bool {
	var me *Error
	if errors.As(err, &me) {
		return me.Code == code
	}
	return false
}

func newError(code ErrorCode, table string, format string, args ...any) *Error {
	return &Error{Code: code, Table: table, Message: fmt.Sprintf(format, args...)}
}
