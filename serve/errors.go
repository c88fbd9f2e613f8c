package serve

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType is the machine-readable discriminator in an error envelope's
// body, per spec.md §7.
type ErrorType string

const (
	ValidationErrorType ErrorType = "VALIDATION_ERROR"
	UnauthorizedType    ErrorType = "UNAUTHORIZED"
	ForbiddenType       ErrorType = "FORBIDDEN"
	NotFoundType        ErrorType = "NOT_FOUND"
	InternalErrorType   ErrorType = "INTERNAL_ERROR"
)

// HTTPError is the error type middleware and handlers return to have the
// pipeline translate it into a status code and envelope body. Wrap an
// arbitrary error with NewInternalError to preserve it for onError hooks
// while still producing a clean 500 envelope.
type HTTPError struct {
	Status  int
	Type    ErrorType
	Message string
	Details map[string]any
	wrapped error
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("serve: %s: %s", e.Type, e.Message)
}

func (e *HTTPError) Unwrap() error { return e.wrapped }

// NewValidationError reports an input-schema or value-coercion failure.
func NewValidationError(message string, details map[string]any) *HTTPError {
	return &HTTPError{Status: http.StatusBadRequest, Type: ValidationErrorType, Message: message, Details: details}
}

// NewUnauthorized reports that no auth strategy produced a context for a
// non-public endpoint.
func NewUnauthorized(message string) *HTTPError {
	return &HTTPError{Status: http.StatusUnauthorized, Type: UnauthorizedType, Message: message}
}

// NewForbidden reports a role/scope/tenant guard failure. details carries
// reason/required/actual, surfaced only when Security.VerboseAuthErrors.
func NewForbidden(message string, details map[string]any) *HTTPError {
	return &HTTPError{Status: http.StatusForbidden, Type: ForbiddenType, Message: message, Details: details}
}

// NewNotFound reports that no route matched the request.
func NewNotFound(message string) *HTTPError {
	return &HTTPError{Status: http.StatusNotFound, Type: NotFoundType, Message: message}
}

// NewInternalError wraps an opaque failure (an adapter error, a panic
// recovery) as a 500. The original err is preserved for onError hooks and
// logging but never placed in the response body.
func NewInternalError(err error) *HTTPError {
	return &HTTPError{Status: http.StatusInternalServerError, Type: InternalErrorType, Message: "internal error", wrapped: err}
}

// asHTTPError classifies an arbitrary error returned by a handler or
// middleware into an *HTTPError, defaulting to 500.
func asHTTPError(err error) *HTTPError {
	var he *HTTPError
	if errors.As(err, &he) {
		return he
	}
	return NewInternalError(err)
}

// envelope is the wire shape of an error response body.
type envelope struct {
	Error envelopeBody `json:"error"`
}

type envelopeBody struct {
	Type    ErrorType      `json:"type"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

func writeError(w http.ResponseWriter, he *HTTPError, verbose bool) {
	body := envelopeBody{Type: he.Type, Message: he.Message}
	if verbose {
		body.Details = he.Details
	} else if he.Type == UnauthorizedType {
		body.Message = "Access denied"
	} else if he.Type == ForbiddenType {
		body.Message = "Insufficient permissions"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.Status)
	_ = json.NewEncoder(w).Encode(envelope{Error: body})
}
