package adapter

import (
	"errors"
	"fmt"
	"strings"
)

// QueryError wraps a failure from a concrete adapter with the adapter name
// and the SQL text that failed, so the executor's error-event log and the
// serve layer's error envelope can report both, per spec.md §4.5 ("on
// failure: emit error event with duration and error; re-throw").
type QueryError struct {
	Adapter string
	SQL     string
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("adapter %s: query failed: %v", e.Adapter, e.Err)
}

func (e *QueryError) Unwrap() error { return e.Err }

// errorCoder, errorNumberer and sqlStateError match any driver error type
// that exposes its code through a Code, Number or SQLState method.
type errorCoder interface{ Code() string }
type errorNumberer interface{ Number() uint16 }
type sqlStateError interface{ SQLState() string }

const (
	pgUniqueViolation = "23505"
	mysqlDuplicateKey = 1062
)

// IsConstraintError reports whether err (or an error it wraps) is a
// constraint violation it recognizes: SQLSTATE 23505 (unique violation)
// from SQLState() or Code(), error number 1062 (duplicate key) from
// Number(), or a message containing "UNIQUE constraint failed",
// "FOREIGN KEY constraint failed" or "Duplicate entry". Other structured
// codes, such as foreign-key or check-violation SQLSTATEs, are not
// checked.
func IsConstraintError(err error) bool {
	if err == nil {
		return false
	}
	if e, ok := asError[sqlStateError](err); ok && e.SQLState() == pgUniqueViolation {
		return true
	}
	if e, ok := asError[errorCoder](err); ok && e.Code() == pgUniqueViolation {
		return true
	}
	if e, ok := asError[errorNumberer](err); ok && e.Number() == mysqlDuplicateKey {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "FOREIGN KEY constraint failed") ||
		strings.Contains(msg, "Duplicate entry")
}

func asError[T any](err error) (T, bool) {
	var zero T
	for err != nil {
		if t, ok := err.(T); ok {
			return t, true
		}
		err = errors.Unwrap(err)
	}
	return zero, false
}
