package pak

import (
	"errors"
	"fmt"
)

// Error types represent the small number of categories of error this
// package actually raises. Most of pak's surface is total — corrupt
// descriptors are handled by clamping or silently failing to match, not by
// returning an error — so these are reserved for the two places that
// genuinely can fail: parameter validation, and reading an archive from an
// I/O stream that runs short.

// ValidationError represents a caller-supplied parameter that fails a
// precondition check.
type ValidationError struct {
	Field   string // the parameter that failed validation
	Value   any    // the invalid value
	Message string // human-readable explanation
	Err     error  // underlying sentinel error, if any
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("pak: validation error: %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("pak: validation error: %s", e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IOError represents a failure reading an archive from a byte stream.
type IOError struct {
	Operation string // "read header" or "read body"
	Message   string // human-readable explanation
	Err       error  // underlying error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("pak: io error: %s: %s", e.Operation, e.Message)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// CorruptionError represents a descriptor-tree inconsistency surfaced by
// Validate. The total predicates IsValidFile/IsValidDir never return this
// themselves; Validate is the explicit, opt-in place a caller asks for an
// error instead of a bool.
type CorruptionError struct {
	Path    string // the descriptor's path, if known
	Message string // human-readable explanation
}

func (e *CorruptionError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("pak: corruption error: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("pak: corruption error: %s", e.Message)
}

// AuthenticationError is reserved for a future caller-supplied MAC hook over
// the header's HMAC field. Nothing in this package constructs one today: no
// HMAC is computed or checked anywhere in the core.
type AuthenticationError struct {
	Path    string
	Message string
	Err     error
}

func (e *AuthenticationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("pak: authentication error: %s: %s", e.Path, e.Message)
	}
	return fmt.Sprintf("pak: authentication error: %s", e.Message)
}

func (e *AuthenticationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error wrapping sentinel.
func NewValidationError(field string, value any, message string, sentinel error) error {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Message: message,
		Err:     sentinel,
	}
}

// NewIOError creates a new I/O error.
func NewIOError(operation string, err error) error {
	return &IOError{
		Operation: operation,
		Message:   err.Error(),
		Err:       err,
	}
}

// IsValidationError reports whether err is, or wraps, a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsIOError reports whether err is, or wraps, an *IOError.
func IsIOError(err error) bool {
	var ie *IOError
	return errors.As(err, &ie)
}

// NewCorruptionError creates a new corruption error.
func NewCorruptionError(path, message string) error {
	return &CorruptionError{Path: path, Message: message}
}

// IsCorruptionError reports whether err is, or wraps, a *CorruptionError.
func IsCorruptionError(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}

// IsAuthenticationError reports whether err is, or wraps, an
// *AuthenticationError.
func IsAuthenticationError(err error) bool {
	var ae *AuthenticationError
	return errors.As(err, &ae)
}
