package models

import (
	"errors"
	"fmt"
)

// Error codes used in API responses and internal error handling.
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeTimeout      = "FETCH_TIMEOUT"
	ErrCodeFetch        = "FETCH_FAILED"
	ErrCodeBrowserCrash = "BROWSER_CRASH"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// LookupError is the internal error type carrying an error code.
// It implements the error interface and supports error wrapping via Unwrap.
type LookupError struct {
	Code    string
	Message string
	Err     error // wrapped original error
}

func (e *LookupError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// NewLookupError creates a new LookupError.
func NewLookupError(code, message string, err error) *LookupError {
	return &LookupError{Code: code, Message: message, Err: err}
}

// NotFound is shorthand for a NOT_FOUND error without a cause.
func NotFound(message string) *LookupError {
	return &LookupError{Code: ErrCodeNotFound, Message: message}
}

// InvalidInput is shorthand for an INVALID_INPUT error without a cause.
func InvalidInput(message string) *LookupError {
	return &LookupError{Code: ErrCodeInvalidInput, Message: message}
}

// CodeOf returns the code of the first LookupError in err's chain,
// or ErrCodeInternal when there is none.
func CodeOf(err error) string {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Code
	}
	return ErrCodeInternal
}

// IsNotFound reports whether err carries the NOT_FOUND code.
func IsNotFound(err error) bool {
	return CodeOf(err) == ErrCodeNotFound
}

// ToResponse converts an internal error to the API-facing error body.
func (e *LookupError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: e.Message, Code: e.Code}
}
