package nws

import (
	"errors"
	"fmt"
)

// ErrorKind discriminates the failure classes a Client operation can surface.
type ErrorKind string

const (
	// ErrorNotFound covers HTTP 404 and composite lookups whose prerequisite
	// metadata lacked an expected URL.
	ErrorNotFound ErrorKind = "not_found"
	// ErrorRateLimited covers HTTP 429.
	ErrorRateLimited ErrorKind = "rate_limited"
	// ErrorTimeout covers transport-level timeouts.
	ErrorTimeout ErrorKind = "timeout"
	// ErrorValidation covers caller argument preconditions, raised before any
	// network call is attempted.
	ErrorValidation ErrorKind = "validation"
	// ErrorAPI covers every other non-2xx status, undecodable body, or
	// transport failure.
	ErrorAPI ErrorKind = "api"
)

// APIError is the single error type returned by Client operations. StatusCode
// is zero when no HTTP response was received; Cause carries the underlying
// transport or decode error when there is one.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Message    string
	Cause      error
}

func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("nws: %s (status %d)", e.Message, e.StatusCode)
	}
	return "nws: " + e.Message
}

func (e *APIError) Unwrap() error { return e.Cause }

// IsNotFound reports whether err is an APIError of kind ErrorNotFound.
func IsNotFound(err error) bool { return hasKind(err, ErrorNotFound) }

// IsRateLimited reports whether err is an APIError of kind ErrorRateLimited.
func IsRateLimited(err error) bool { return hasKind(err, ErrorRateLimited) }

// IsTimeout reports whether err is an APIError of kind ErrorTimeout.
func IsTimeout(err error) bool { return hasKind(err, ErrorTimeout) }

// IsValidation reports whether err is an APIError of kind ErrorValidation.
func IsValidation(err error) bool { return hasKind(err, ErrorValidation) }

func hasKind(err error, kind ErrorKind) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

func validationError(format string, args ...any) *APIError {
	return &APIError{Kind: ErrorValidation, Message: fmt.Sprintf(format, args...)}
}
