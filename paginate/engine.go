package paginate

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/analytiq/query"
)

// RowKeyFunc extracts the ORDER BY tuple from a materialized row, for
// encoding as that row's cursor.
type RowKeyFunc[T any] func(row T) []any

// CountFunc runs a COUNT(*)-shaped query and returns the scalar result,
// used to populate PageInfo.TotalCount/TotalPages.
type CountFunc func(ctx context.Context, sqlText string, params []any) (int, error)

// Engine implements [query.Paginator].
type Engine[T any] struct {
	exec    query.Executor[T]
	rowKey  RowKeyFunc[T]
	countFn CountFunc
}

// Option configures an Engine at construction time.
type Option[T any] func(*Engine[T])

// WithCounter attaches a CountFunc so pages report TotalCount/TotalPages.
// Without one, both fields are zero.
func WithCounter[T any](c CountFunc) Option[T] {
	return func(e *Engine[T]) { e.countFn = c }
}

// New creates an Engine driving exec, deriving each row's cursor via
// rowKey.
func New[T any](exec query.Executor[T], rowKey RowKeyFunc[T], opts ...Option[T]) *Engine[T] {
	e := &Engine[T]{exec: exec, rowKey: rowKey}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Paginate implements [query.Paginator].
func (e *Engine[T]) Paginate(ctx context.Context, cfg *query.QueryConfig, opts query.PageOptions) (*query.Page[T], error) {
	if opts.PageSize <= 0 {
		return nil, errors.New("paginate: pageSize must be positive")
	}

	order := opts.OrderBy
	if len(order) == 0 {
		order = cfg.OrderBy
	}
	if len(order) == 0 {
		return nil, errors.New("paginate: orderBy is required for cursor pagination")
	}

	backward := opts.Before != ""
	effectiveOrder := order
	if backward {
		effectiveOrder = query.ReverseOrder(order)
	}

	working := cfg.Clone()
	working.OrderBy = effectiveOrder
	limit := opts.PageSize + 1
	working.Limit = &limit
	working.Offset = nil

	cursorStr := opts.After
	if backward {
		cursorStr = opts.Before
	}
	if cursorStr != "" {
		values, err := Decode(cursorStr)
		if err != nil {
			return nil, err
		}
		working.AddKeysetPredicate(effectiveOrder, values)
	}

	sqlText, params, err := query.Render(working)
	if err != nil {
		return nil, err
	}
	rows, err := e.exec.Execute(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}

	hasMore := len(rows) > opts.PageSize
	if hasMore {
		rows = rows[:opts.PageSize]
	}
	if backward {
		reverseInPlace(rows)
	}

	info := query.PageInfo{PageSize: opts.PageSize}
	if len(rows) == 0 {
		return &query.Page[T]{Data: rows, PageInfo: info}, nil
	}

	if info.StartCursor, err = Encode(e.rowKey(rows[0])); err != nil {
		return nil, err
	}
	if info.EndCursor, err = Encode(e.rowKey(rows[len(rows)-1])); err != nil {
		return nil, err
	}
	if backward {
		info.HasPreviousPage = hasMore
		info.HasNextPage = opts.Before != ""
	} else {
		info.HasNextPage = hasMore
		info.HasPreviousPage = opts.After != ""
	}

	if e.countFn != nil {
		countSQL, countParams, err := buildCountQuery(cfg)
		if err == nil {
			if total, err := e.countFn(ctx, countSQL, countParams); err == nil {
				info.TotalCount = total
				info.TotalPages = (total + opts.PageSize - 1) / opts.PageSize
			}
		}
	}

	return &query.Page[T]{Data: rows, PageInfo: info}, nil
}

func buildCountQuery(cfg *query.QueryConfig) (string, []any, error) {
	counted := cfg.Clone()
	counted.Select = []query.SelectColumn{{Expr: "COUNT(*) AS total"}}
	counted.Distinct = false
	counted.GroupBy = nil
	counted.OrderBy = nil
	counted.Limit = nil
	counted.Offset = nil
	sqlText, params, err := query.Render(counted)
	if err != nil {
		return "", nil, fmt.Errorf("paginate: build count query: %w", err)
	}
	return sqlText, params, nil
}

func reverseInPlace[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
