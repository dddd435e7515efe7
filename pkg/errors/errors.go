package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents the different failure classes of a dedup run
type ErrorType string

const (
	ErrorTypeDecode  ErrorType = "decode"
	ErrorTypeRemove  ErrorType = "remove"
	ErrorTypeScan    ErrorType = "scan"
	ErrorTypeConfig  ErrorType = "config"
	ErrorTypeLock    ErrorType = "lock"
	ErrorTypeUnknown ErrorType = "unknown"
)

// Sentinel values for errors.Is checks against a typed *Error.
var (
	ErrDecode = &Error{Type: ErrorTypeDecode}
	ErrRemove = &Error{Type: ErrorTypeRemove}
	ErrScan   = &Error{Type: ErrorTypeScan}
	ErrConfig = &Error{Type: ErrorTypeConfig}
	ErrLock   = &Error{Type: ErrorTypeLock}
)

// Error is a failure tied to a file system path
type Error struct {
	Type ErrorType
	Path string
	Err  error
}

// New wraps err with a type and the path it concerns
func New(errorType ErrorType, path string, err error) *Error {
	return &Error{Type: errorType, Path: path, Err: err}
}

func (e *Error) Error() string {
	switch {
	case e.Path != "" && e.Err != nil:
		return fmt.Sprintf("%s error for `%s`: %v", e.Type, e.Path, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s error: %v", e.Type, e.Err)
	case e.Path != "":
		return fmt.Sprintf("%s error for `%s`", e.Type, e.Path)
	default:
		return fmt.Sprintf("%s error", e.Type)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same type, so callers can test against the
// sentinels above without caring about the path.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// TypeOf returns the ErrorType carried by err, or ErrorTypeUnknown
func TypeOf(err error) ErrorType {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ErrorTypeUnknown
}

// IsRetryable checks if an error type should be retried
func IsRetryable(errorType ErrorType) bool {
	switch errorType {
	case ErrorTypeRemove:
		return true
	case ErrorTypeDecode, ErrorTypeScan, ErrorTypeConfig, ErrorTypeLock:
		return false
	default:
		return false
	}
}
