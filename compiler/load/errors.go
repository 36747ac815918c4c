package load

import (
	"errors"
	"strings"
)

// ErrMapping is the sentinel matched by every schema-mapping failure.
var ErrMapping = errors.New("apigen: schema mapping failed")

// MappingError reports a raw schema descriptor that could not be
// normalized into the canonical entity model. It always aborts the
// generation run.
type MappingError struct {
	Entity  string // entity name, if known
	Field   string // field name, if the failure is field-scoped
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *MappingError) Error() string {
	var b strings.Builder
	b.WriteString("apigen: schema mapping error")
	if e.Entity != "" {
		b.WriteString(" on entity ")
		b.WriteString(e.Entity)
	}
	if e.Field != "" {
		b.WriteString(" field ")
		b.WriteString(e.Field)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *MappingError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the mapping sentinel.
func (e *MappingError) Is(target error) bool {
	return target == ErrMapping
}

// NewMappingError creates a new MappingError.
func NewMappingError(entity, field, message string, cause error) *MappingError {
	return &MappingError{
		Entity:  entity,
		Field:   field,
		Message: message,
		Cause:   cause,
	}
}

// IsMappingError reports whether the error is a MappingError.
func IsMappingError(err error) bool {
	var me *MappingError
	return errors.As(err, &me)
}
