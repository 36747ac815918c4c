// Package apigen holds the runtime support types shared by the code
// generator and the handler code it emits: the API error taxonomy,
// the response envelope, and the data-access call shaping rules.
package apigen

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	sqlite "modernc.org/sqlite"
)

// ErrorKind classifies every error that may leave a generated handler.
// No other error shape is permitted to reach API callers.
type ErrorKind uint8

const (
	// KindInternal is the catch-all for unrecognized failures.
	// It is the zero value so that an unmapped kind never widens access.
	KindInternal ErrorKind = iota

	// KindConflict indicates a uniqueness or reference violation.
	KindConflict

	// KindNotFound indicates a missing record or relation target.
	KindNotFound

	// KindBadRequest indicates a malformed value or schema violation.
	KindBadRequest
)

// String returns the wire name of the kind.
func (k ErrorKind) String() string {
	switch k {
	case KindConflict:
		return "conflict"
	case KindNotFound:
		return "notFound"
	case KindBadRequest:
		return "badRequest"
	default:
		return "internal"
	}
}

// HTTPStatus returns the status classification for the kind.
func (k ErrorKind) HTTPStatus() int {
	switch k {
	case KindConflict:
		return 409
	case KindNotFound:
		return 404
	case KindBadRequest:
		return 400
	default:
		return 500
	}
}

// Sentinel errors raised directly by generated handlers.
var (
	// ErrNotFound is raised by findById/findFirst handlers when the
	// underlying lookup returns no record.
	ErrNotFound = errors.New("apigen: record not found")

	// ErrConflict is the generic uniqueness/reference violation sentinel.
	ErrConflict = errors.New("apigen: constraint conflict")
)

// Error is the only error type surfaced by generated handlers. It
// deliberately does not implement Unwrap: once a low-level data-store
// error is mapped, callers observe the taxonomy and nothing else.
type Error struct {
	kind    ErrorKind
	entity  string
	message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.entity != "" {
		return fmt.Sprintf("apigen: %s: %s: %s", e.kind, e.entity, e.message)
	}
	return fmt.Sprintf("apigen: %s: %s", e.kind, e.message)
}

// Kind returns the taxonomy kind.
func (e *Error) Kind() ErrorKind { return e.kind }

// Entity returns the entity name the failing call was issued for.
func (e *Error) Entity() string { return e.entity }

// Message returns the sanitized, caller-safe message.
func (e *Error) Message() string { return e.message }

// Is matches the handler sentinels so that generated code can use
// errors.Is(err, apigen.ErrNotFound) after mapping.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.kind == KindNotFound
	case ErrConflict:
		return e.kind == KindConflict
	}
	return false
}

// NewError returns a taxonomy error of the given kind.
func NewError(kind ErrorKind, entity, message string) *Error {
	return &Error{kind: kind, entity: entity, message: message}
}

// NewNotFound returns a NotFound taxonomy error for the entity.
func NewNotFound(entity string) *Error {
	return &Error{kind: KindNotFound, entity: entity, message: "record not found"}
}

// NewConflict returns a Conflict taxonomy error for the entity.
func NewConflict(entity, message string) *Error {
	return &Error{kind: KindConflict, entity: entity, message: message}
}

// IsNotFound reports whether the error maps to the NotFound kind.
func IsNotFound(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.kind == KindNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether the error maps to the Conflict kind.
func IsConflict(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.kind == KindConflict
	}
	return errors.Is(err, ErrConflict)
}

// Map translates a low-level data-store error into a taxonomy error.
// The mapping is total: every non-nil input maps to exactly one kind,
// defaulting to internal. The original error is never carried along.
//
// Recognized signals: database/sql row misses, Postgres (lib/pq)
// SQLSTATE codes, MySQL error numbers and SQLite result codes.
func Map(entity string, err error) *Error {
	if err == nil {
		return nil
	}
	// Already mapped. Re-tag with the entity if the first mapping
	// happened below the handler and lacked one.
	var mapped *Error
	if errors.As(err, &mapped) {
		if mapped.entity == "" && entity != "" {
			return &Error{kind: mapped.kind, entity: entity, message: mapped.message}
		}
		return mapped
	}
	switch {
	case errors.Is(err, sql.ErrNoRows), errors.Is(err, ErrNotFound):
		return NewNotFound(entity)
	case errors.Is(err, ErrConflict):
		return NewConflict(entity, "constraint conflict")
	}
	var pqe *pq.Error
	if errors.As(err, &pqe) {
		return mapPostgres(entity, pqe)
	}
	var mye *mysql.MySQLError
	if errors.As(err, &mye) {
		return mapMySQL(entity, mye)
	}
	var lite *sqlite.Error
	if errors.As(err, &lite) {
		return mapSQLite(entity, lite)
	}
	return &Error{kind: KindInternal, entity: entity, message: "internal error"}
}

// mapPostgres translates lib/pq SQLSTATE codes.
func mapPostgres(entity string, err *pq.Error) *Error {
	switch err.Code {
	case "23505": // unique_violation
		return NewConflict(entity, "unique constraint violation")
	case "23503": // foreign_key_violation
		return NewConflict(entity, "reference constraint violation")
	case "23502": // not_null_violation
		return &Error{kind: KindBadRequest, entity: entity, message: "missing required value"}
	case "23514": // check_violation
		return &Error{kind: KindBadRequest, entity: entity, message: "value violates check constraint"}
	}
	// Class 22: data exceptions (e.g. 22P02 invalid_text_representation).
	if err.Code.Class() == "22" {
		return &Error{kind: KindBadRequest, entity: entity, message: "malformed value"}
	}
	return &Error{kind: KindInternal, entity: entity, message: "internal error"}
}

// mapMySQL translates go-sql-driver/mysql server error numbers.
func mapMySQL(entity string, err *mysql.MySQLError) *Error {
	switch err.Number {
	case 1062: // ER_DUP_ENTRY
		return NewConflict(entity, "unique constraint violation")
	case 1451, 1452: // ER_ROW_IS_REFERENCED_2, ER_NO_REFERENCED_ROW_2
		return NewConflict(entity, "reference constraint violation")
	case 1048, 1364: // ER_BAD_NULL_ERROR, ER_NO_DEFAULT_FOR_FIELD
		return &Error{kind: KindBadRequest, entity: entity, message: "missing required value"}
	case 1264, 1292, 1406: // out of range, truncated, data too long
		return &Error{kind: KindBadRequest, entity: entity, message: "malformed value"}
	}
	return &Error{kind: KindInternal, entity: entity, message: "internal error"}
}

// mapSQLite translates modernc.org/sqlite extended result codes.
func mapSQLite(entity string, err *sqlite.Error) *Error {
	const sqliteConstraint = 19
	switch err.Code() {
	case 2067, 1555: // SQLITE_CONSTRAINT_UNIQUE, SQLITE_CONSTRAINT_PRIMARYKEY
		return NewConflict(entity, "unique constraint violation")
	case 787: // SQLITE_CONSTRAINT_FOREIGNKEY
		return NewConflict(entity, "reference constraint violation")
	case 1299: // SQLITE_CONSTRAINT_NOTNULL
		return &Error{kind: KindBadRequest, entity: entity, message: "missing required value"}
	case 275: // SQLITE_CONSTRAINT_CHECK
		return &Error{kind: KindBadRequest, entity: entity, message: "value violates check constraint"}
	}
	if err.Code()&0xff == sqliteConstraint {
		return &Error{kind: KindBadRequest, entity: entity, message: "constraint violation"}
	}
	return &Error{kind: KindInternal, entity: entity, message: "internal error"}
}
