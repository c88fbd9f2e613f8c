// Package query implements the query builder and SQL formatter: a
// chainable Builder composes an immutable QueryConfig snapshot, and the
// formatter renders that snapshot to parameterized SQL text.
//
// The builder accepts a [filter.Tree] via ApplyCrossFilters and implements
// [filter.WhereSink] directly, so a cross-filter tree is rewritten into the
// same WHERE stream that where/orWhere/whereGroup populate. Execution,
// streaming, and pagination are injected dependencies (an [Executor] and a
// [Paginator]) rather than imports, so this package never depends on
// adapter, executor, or paginate and no import cycle can form.
package query
