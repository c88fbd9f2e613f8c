package filter

import (
	"errors"
	"fmt"
)

// ValidationError reports a schema-typed filter condition that cannot be
// applied: an operator/value mismatch, an unorderable column used with an
// ordering operator, or a malformed between/tuple value.
type ValidationError struct {
	Column  string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("filter: %s: %s", e.Column, e.Message)
	}
	return fmt.Sprintf("filter: %s", e.Message)
}

// ErrValidation is the sentinel all [ValidationError] values are "Is" to,
// so callers that only care about the error category can use
// errors.Is(err, filter.ErrValidation) without errors.As boilerplate.
var ErrValidation = errors.New("filter: validation error")

// Is reports whether target is [ErrValidation].
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UnknownRangeError is returned by [Tree.AddDateRange] for a range name
// spec.md §4.2 does not define.
type UnknownRangeError struct{ Name string }

func (e *UnknownRangeError) Error() string {
	return fmt.Sprintf("filter: unknown date range %q", e.Name)
}

// IsValidationError reports whether err is (or wraps) a [ValidationError].
func IsValidationError(err error) bool {
	if err == nil {
		return false
	}
	var e *ValidationError
	return errors.As(err, &e) || errors.Is(err, ErrValidation)
}
