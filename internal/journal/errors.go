package journal

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation   = errors.New("validation error")
	ErrImportFormat = errors.New("import format error")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// Error is a recoverable journal error. Err is one of the sentinels above
// so callers can match with errors.Is.
type Error struct {
	Err     error
	Message string
	Field   string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ValidationFailed reports a rejected write.
func ValidationFailed(field, message string) *Error {
	return &Error{Err: ErrValidation, Message: message, Field: field}
}

// MissingFields reports required fields left empty.
func MissingFields(fields ...string) *Error {
	return &Error{
		Err:     ErrValidation,
		Message: fmt.Sprintf("missing required field(s): %s", strings.Join(fields, ", ")),
		Field:   strings.Join(fields, ","),
	}
}

// Duplicate reports a deck name that already exists.
func Duplicate(resource, id string) *Error {
	return &Error{
		Err:     errors.Join(ErrValidation, ErrConflict),
		Message: fmt.Sprintf("a %s named %q already exists", resource, id),
		Field:   "name",
	}
}

// NotFound reports a delete of something that is not in the journal.
func NotFound(resource, id string) *Error {
	return &Error{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %s not found", resource, id),
	}
}

// ImportFailed reports an unusable import payload.
func ImportFailed(message string, cause error) *Error {
	err := ErrImportFormat
	if cause != nil {
		err = errors.Join(ErrImportFormat, cause)
		message = fmt.Sprintf("%s: %v", message, cause)
	}
	return &Error{Err: err, Message: message}
}
