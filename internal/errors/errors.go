package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for translation into an HTTP response.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindDuplicateEmail  Kind = "DUPLICATE_EMAIL"
	KindConflict        Kind = "CONFLICT"
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindForbidden       Kind = "FORBIDDEN"
	KindNotFound        Kind = "NOT_FOUND"
	KindInternal        Kind = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Msg     string `json:"msg"`
}

// Error is a typed business failure raised where it is detected.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error of the same kind, so callers can compare against
// a bare kind value such as &Error{Kind: KindForbidden}.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && (t.Message == "" || t.Message == e.Message)
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Validation reports malformed or missing input.
func Validation(format string, args ...any) *Error {
	return newError(KindValidation, format, args...)
}

// DuplicateEmail reports an email address already held by another account.
func DuplicateEmail() *Error {
	return newError(KindDuplicateEmail, "Email already in use")
}

// Conflict reports a uniqueness or referential-guard violation.
func Conflict(format string, args ...any) *Error {
	return newError(KindConflict, format, args...)
}

// Unauthenticated reports a missing or bad credential.
func Unauthenticated(format string, args ...any) *Error {
	return newError(KindUnauthenticated, format, args...)
}

// Forbidden reports an authenticated principal failing a role or ownership check.
func Forbidden(format string, args ...any) *Error {
	return newError(KindForbidden, format, args...)
}

// NotFound reports a referenced entity that does not exist.
func NotFound(format string, args ...any) *Error {
	return newError(KindNotFound, format, args...)
}

// Internal wraps an unexpected failure. The message is never shown to callers.
func Internal(err error, format string, args ...any) *Error {
	e := newError(KindInternal, format, args...)
	e.Err = err
	return e
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// HTTPStatus maps a kind to its response status code.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation, KindDuplicateEmail:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Success: false,
		Msg:     e.Message,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Anything that is not a
// typed business failure becomes a generic internal error.
func MapErrorToHTTP(err error) *HTTPError {
	var e *Error
	if !errors.As(err, &e) || e.Kind == KindInternal {
		return NewHTTPError(http.StatusInternalServerError, "Something went wrong, please try again later", string(KindInternal))
	}
	return NewHTTPError(HTTPStatus(e.Kind), e.Message, string(e.Kind))
}
