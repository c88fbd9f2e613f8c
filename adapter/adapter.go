// Package adapter defines the database adapter contract the executor and
// query builder are driven through: query/stream/render/name, per
// spec.md §4.5 and §6. Concrete adapters live in subpackages
// (adapter/clickhouse, adapter/sqladapter).
package adapter

import (
	"context"

	"github.com/syssam/analytiq/query"
)

// Adapter is the external interface a concrete backend implements. T is
// the row type a given Adapter materializes.
type Adapter[T any] interface {
	// Query runs sqlText with params and returns the full materialized
	// row set.
	Query(ctx context.Context, sqlText string, params []any) ([]T, error)
	// Stream runs sqlText with params and returns a lazy batch sequence.
	Stream(ctx context.Context, sqlText string, params []any) (query.RowStream[T], error)
	// Name identifies the adapter in error messages and query-log events.
	Name() string
}

// Renderer is optionally implemented by an Adapter whose engine needs a
// final, engine-specific substitution pass before sqlText is sent.
type Renderer interface {
	Render(ctx context.Context, sqlText string, params []any) (string, error)
}

// AsExecutor adapts a into a [query.Executor], so a Builder[T] can be
// constructed with query.WithExecutor(adapter.AsExecutor(a)).
func AsExecutor[T any](a Adapter[T]) query.Executor[T] {
	return executorShim[T]{a: a}
}

type executorShim[T any] struct{ a Adapter[T] }

func (s executorShim[T]) Execute(ctx context.Context, sqlText string, params []any) ([]T, error) {
	return s.a.Query(ctx, sqlText, params)
}

func (s executorShim[T]) Stream(ctx context.Context, sqlText string, params []any) (query.RowStream[T], error) {
	return s.a.Stream(ctx, sqlText, params)
}
