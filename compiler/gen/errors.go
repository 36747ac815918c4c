package gen

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for common failure cases.
var (
	// ErrInvalidSchema indicates an entity definition error.
	ErrInvalidSchema = errors.New("apigen: invalid schema")
	// ErrMissingConfig indicates a configuration error.
	ErrMissingConfig = errors.New("apigen: missing configuration")
	// ErrSynthesisFailed indicates a procedure synthesis failure.
	ErrSynthesisFailed = errors.New("apigen: procedure synthesis failed")
	// ErrInconsistent indicates artifacts that violate a cross-artifact
	// consistency guarantee.
	ErrInconsistent = errors.New("apigen: inconsistent artifacts")
)

// SchemaError represents an entity definition error.
type SchemaError struct {
	Type    string // Entity type name
	Field   string // Field name (if applicable)
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *SchemaError) Error() string {
	var b strings.Builder
	b.WriteString("apigen: schema error")
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
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
func (e *SchemaError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SchemaError.
func (e *SchemaError) Is(target error) bool {
	return target == ErrInvalidSchema
}

// NewSchemaError creates a new SchemaError.
func NewSchemaError(typeName, fieldName, message string, cause error) *SchemaError {
	return &SchemaError{
		Type:    typeName,
		Field:   fieldName,
		Message: message,
		Cause:   cause,
	}
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Option  string
	Value   any
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("apigen: config error for %q (value: %v): %s", e.Option, e.Value, e.Message)
	}
	return fmt.Sprintf("apigen: config error for %q: %s", e.Option, e.Message)
}

// Is reports whether the target matches the sentinel error for ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrMissingConfig
}

// NewConfigError creates a new ConfigError.
func NewConfigError(option string, value any, message string) *ConfigError {
	return &ConfigError{
		Option:  option,
		Value:   value,
		Message: message,
	}
}

// SynthesisError represents a procedure synthesis error: a requested
// operation cannot be realized for an entity.
type SynthesisError struct {
	Type      string // Entity type name
	Procedure string // Procedure name (if derived before failing)
	Op        string // Operation kind name
	Message   string
	Cause     error
}

// Error implements the error interface.
func (e *SynthesisError) Error() string {
	var b strings.Builder
	b.WriteString("apigen: synthesis error")
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
	}
	if e.Op != "" {
		b.WriteString(" operation ")
		b.WriteString(e.Op)
	}
	if e.Procedure != "" {
		b.WriteString(" (procedure: ")
		b.WriteString(e.Procedure)
		b.WriteString(")")
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
func (e *SynthesisError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches the sentinel error for SynthesisError.
func (e *SynthesisError) Is(target error) bool {
	return target == ErrSynthesisFailed
}

// NewSynthesisError creates a new SynthesisError.
func NewSynthesisError(typeName string, op Op, message string, cause error) *SynthesisError {
	return &SynthesisError{
		Type:    typeName,
		Op:      op.String(),
		Message: message,
		Cause:   cause,
	}
}

// ConsistencyError represents a violated cross-artifact guarantee:
// rule-table keys, bundle exports, or routes that drift apart.
type ConsistencyError struct {
	Type      string // Entity type name (if applicable)
	Artifact  string // "rules", "bundles", "routes", "policy"
	Message   string
	Conflicts []string
}

// Error implements the error interface.
func (e *ConsistencyError) Error() string {
	var b strings.Builder
	b.WriteString("apigen: consistency error")
	if e.Artifact != "" {
		b.WriteString(" in ")
		b.WriteString(e.Artifact)
	}
	if e.Type != "" {
		b.WriteString(" on type ")
		b.WriteString(e.Type)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if len(e.Conflicts) > 0 {
		b.WriteString(" [")
		b.WriteString(strings.Join(e.Conflicts, ", "))
		b.WriteString("]")
	}
	return b.String()
}

// Is reports whether the target matches the sentinel error for ConsistencyError.
func (e *ConsistencyError) Is(target error) bool {
	return target == ErrInconsistent
}

// NewConsistencyError creates a new ConsistencyError.
func NewConsistencyError(typeName, artifact, message string, conflicts ...string) *ConsistencyError {
	return &ConsistencyError{
		Type:      typeName,
		Artifact:  artifact,
		Message:   message,
		Conflicts: conflicts,
	}
}

// IsSchemaError reports whether the error is a SchemaError.
func IsSchemaError(err error) bool {
	var schemaErr *SchemaError
	return errors.As(err, &schemaErr)
}

// IsConfigError reports whether the error is a ConfigError.
func IsConfigError(err error) bool {
	var configErr *ConfigError
	return errors.As(err, &configErr)
}

// IsSynthesisError reports whether the error is a SynthesisError.
func IsSynthesisError(err error) bool {
	var synthErr *SynthesisError
	return errors.As(err, &synthErr)
}

// IsConsistencyError reports whether the error is a ConsistencyError.
func IsConsistencyError(err error) bool {
	var consErr *ConsistencyError
	return errors.As(err, &consErr)
}
