package query

import (
	"errors"
	"fmt"
)

// ValidationError reports a builder call that cannot produce valid SQL: a
// between arity mismatch or nil bound, a set/tuple operator given a
// non-sequence value, inTable without a table name, an unknown
// groupByTimeInterval interval, an unresolvable CTE subquery, an
// unsupported operator, or Execute/Stream/Paginate without an executor or
// paginator. An unknown relation name is reported separately as
// [UnknownRelationError]. Per spec.md §4.4, invalid
// operator/value combinations fail synchronously, before any SQL is
// produced.
type ValidationError struct {
	Op      string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("query: %s: %s", e.Op, e.Message)
}

// ErrValidation is the sentinel all [ValidationError] values are Is to.
var ErrValidation = errors.New("query: validation error")

// Is reports whether target is [ErrValidation].
func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// UnknownRelationError is returned by [Builder.WithRelation] for a
// relation name the builder was not configured with via [WithRelations].
type UnknownRelationError struct{ Name string }

func (e *UnknownRelationError) Error() string {
	return fmt.Sprintf("query: unknown relation %q", e.Name)
}
