package query

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/syssam/analytiq/filter"
	"github.com/syssam/analytiq/sqlexpr"
	"github.com/syssam/analytiq/sqlop"
)

// Executor drives a rendered query against a concrete backend and
// materializes rows of type T. Implemented by
// [github.com/syssam/analytiq/executor]; defined here, not imported from
// there, so query never depends on executor.
type Executor[T any] interface {
	Execute(ctx context.Context, sqlText string, params []any) ([]T, error)
	Stream(ctx context.Context, sqlText string, params []any) (RowStream[T], error)
}

// RowStream yields successive batches of decoded rows.
type RowStream[T any] interface {
	Next(ctx context.Context) (batch []T, more bool, err error)
	Close() error
}

// Paginator computes a cursor-stable page over a rendered query.
// Implemented by [github.com/syssam/analytiq/paginate].
type Paginator[T any] interface {
	Paginate(ctx context.Context, cfg *QueryConfig, opts PageOptions) (*Page[T], error)
}

// SQLRenderer is satisfied by any *Builder[T] regardless of T, letting
// [Builder.WithCTE] and subquery-accepting operators take a builder of a
// different row type as their subquery argument.
type SQLRenderer interface {
	ToSQLWithParams() (string, []any, error)
}

// Builder composes a [QueryConfig] through chained calls. Each mutating
// call validates eagerly and records the first validation error it sees;
// subsequent calls become no-ops once an error is recorded, and ToSQL,
// ToSQLWithParams, Execute, Stream, and Paginate all surface it, per
// spec.md §4.4 ("invalid operator/value combinations fail synchronously
// ... before SQL is produced").
type Builder[T any] struct {
	cfg       *QueryConfig
	relations map[string]Relation
	exec      Executor[T]
	paginator Paginator[T]
	err       error
}

// Option configures a Builder at construction time.
type Option[T any] func(*Builder[T])

// WithExecutor injects the executor used by Execute and Stream.
func WithExecutor[T any](e Executor[T]) Option[T] {
	return func(b *Builder[T]) { b.exec = e }
}

// WithPaginator injects the paginator used by Paginate, FirstPage, and
// IteratePages.
func WithPaginator[T any](p Paginator[T]) Option[T] {
	return func(b *Builder[T]) { b.paginator = p }
}

// WithRelations registers the named join paths WithRelation may reference.
func WithRelations[T any](relations map[string]Relation) Option[T] {
	return func(b *Builder[T]) {
		b.relations = make(map[string]Relation, len(relations))
		for name, r := range relations {
			b.relations[name] = r
		}
	}
}

// New creates a Builder reading from table.
func New[T any](table string, opts ...Option[T]) *Builder[T] {
	b := &Builder[T]{cfg: &QueryConfig{Table: table}}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder[T]) fail(op, message string) {
	if b.err == nil {
		b.err = &ValidationError{Op: op, Message: message}
	}
}

// Clone returns an independent copy of b: mutating the copy never affects
// the original, per spec.md §4.4's clone() contract.
func (b *Builder[T]) Clone() *Builder[T] {
	out := &Builder[T]{cfg: b.cfg.clone(), exec: b.exec, paginator: b.paginator, err: b.err}
	if b.relations != nil {
		out.relations = make(map[string]Relation, len(b.relations))
		for k, v := range b.relations {
			out.relations[k] = v
		}
	}
	return out
}

// Err returns the first validation error recorded on the builder, if any.
func (b *Builder[T]) Err() error { return b.err }

// Config returns the builder's current immutable snapshot.
func (b *Builder[T]) Config() *QueryConfig { return b.cfg.clone() }

// Select sets the SELECT list to the given columns. An empty call selects
// "*".
func (b *Builder[T]) Select(columns ...string) *Builder[T] {
	if b.err != nil {
		return b
	}
	cols := make([]SelectColumn, 0, len(columns))
	for _, c := range columns {
		cols = append(cols, SelectColumn{Expr: c, Groupable: true})
	}
	b.cfg.Select = cols
	return b
}

// AddSelectExpr appends an expression value to the SELECT list, per
// spec.md §4.1's "column names, qualified names, and expression values".
// Use sqlexpr.Raw, sqlexpr.Func, sqlexpr.Cast, sqlexpr.FormatDate, or
// sqlexpr.BucketTime to build expr; wrap it in .As(alias) to alias it.
// The appended column is not eligible for select-list auto GROUP BY;
// pass it to GroupByExpr explicitly if the query needs to group by it.
func (b *Builder[T]) AddSelectExpr(expr sqlexpr.Expr) *Builder[T] {
	if b.err != nil {
		return b
	}
	b.cfg.Select = append(b.cfg.Select, SelectColumn{Expr: expr.SQL()})
	return b
}

// Distinct marks the SELECT list DISTINCT.
func (b *Builder[T]) Distinct() *Builder[T] {
	if b.err != nil {
		return b
	}
	b.cfg.Distinct = true
	return b
}

// Where appends a condition conjoined with AND to the flat WHERE stream.
func (b *Builder[T]) Where(column string, op sqlop.Operator, value any) *Builder[T] {
	return b.where(column, op, value, sqlop.AND)
}

// OrWhere appends a condition conjoined with OR.
func (b *Builder[T]) OrWhere(column string, op sqlop.Operator, value any) *Builder[T] {
	return b.where(column, op, value, sqlop.OR)
}

func (b *Builder[T]) where(column string, op sqlop.Operator, value any, conj sqlop.Conjunction) *Builder[T] {
	if b.err != nil {
		return b
	}
	if err := validateValue(column, op, value); err != nil {
		b.err = err
		return b
	}
	b.AddCondition(column, op, value, conj)
	return b
}

// WhereBetween appends a BETWEEN condition conjoined with AND.
func (b *Builder[T]) WhereBetween(column string, low, high any) *Builder[T] {
	return b.Where(column, sqlop.Between, [2]any{low, high})
}

// GroupBuilder is the restricted view [Builder.WhereGroup] and
// [Builder.OrWhereGroup] pass to their callback: only condition-appending
// calls are exposed, since the group's own conjunction is fixed by which
// method opened it.
type GroupBuilder[T any] struct {
	b *Builder[T]
}

// Where appends a condition conjoined with AND inside the group.
func (g *GroupBuilder[T]) Where(column string, op sqlop.Operator, value any) *GroupBuilder[T] {
	g.b.where(column, op, value, sqlop.AND)
	return g
}

// OrWhere appends a condition conjoined with OR inside the group.
func (g *GroupBuilder[T]) OrWhere(column string, op sqlop.Operator, value any) *GroupBuilder[T] {
	g.b.where(column, op, value, sqlop.OR)
	return g
}

// WhereGroup opens a parenthesized AND-joined group, populated by fn.
func (b *Builder[T]) WhereGroup(fn func(*GroupBuilder[T])) *Builder[T] {
	if b.err != nil {
		return b
	}
	b.BeginGroup(sqlop.AND)
	fn(&GroupBuilder[T]{b: b})
	b.EndGroup()
	return b
}

// OrWhereGroup opens a parenthesized OR-joined group, populated by fn.
func (b *Builder[T]) OrWhereGroup(fn func(*GroupBuilder[T])) *Builder[T] {
	if b.err != nil {
		return b
	}
	b.BeginGroup(sqlop.OR)
	fn(&GroupBuilder[T]{b: b})
	b.EndGroup()
	return b
}

// AddCondition implements [filter.WhereSink], letting ApplyCrossFilters
// rewrite a filter.Tree directly into the builder's WHERE stream.
func (b *Builder[T]) AddCondition(column string, op sqlop.Operator, value any, conj sqlop.Conjunction) {
	item := whereItem{kind: whereCondition, conj: conj, column: column, op: op, value: value}
	if op == sqlop.InSubquery || op == sqlop.GlobalInSubquery {
		sub, params, err := resolveSub(value)
		if err != nil {
			b.err = &ValidationError{Op: string(op), Message: err.Error()}
			return
		}
		item.subSQL = sub
		item.value = params
	}
	if op == sqlop.InTable || op == sqlop.GlobalInTable {
		table, ok := value.(string)
		if !ok {
			b.err = &ValidationError{Op: string(op), Message: "inTable requires a table name"}
			return
		}
		item.table = table
	}
	b.cfg.Where = append(b.cfg.Where, item)
}

// BeginGroup implements [filter.WhereSink].
func (b *Builder[T]) BeginGroup(conj sqlop.Conjunction) {
	b.cfg.Where = append(b.cfg.Where, whereItem{kind: whereGroupStart, conj: conj})
}

// EndGroup implements [filter.WhereSink].
func (b *Builder[T]) EndGroup() {
	b.cfg.Where = append(b.cfg.Where, whereItem{kind: whereGroupEnd})
}

// ApplyCrossFilters rewrites t into the builder's WHERE stream via
// [filter.Apply].
func (b *Builder[T]) ApplyCrossFilters(t *filter.Tree) *Builder[T] {
	if b.err != nil || t == nil {
		return b
	}
	filter.Apply(t, b)
	return b
}

func (b *Builder[T]) addAggregate(fn, column, alias string) *Builder[T] {
	if b.err != nil {
		return b
	}
	if alias == "" {
		alias = strings.ToLower(fn) + "_" + column
	}
	expr := fmt.Sprintf("%s(%s) AS %s", fn, column, alias)
	b.cfg.Select = append(b.cfg.Select, SelectColumn{Expr: expr})
	if len(b.cfg.GroupBy) == 0 {
		for _, c := range b.cfg.Select {
			if c.Groupable {
				b.cfg.GroupBy = append(b.cfg.GroupBy, c.Expr)
			}
		}
	}
	return b
}

// Sum adds SUM(column) to the SELECT list, auto-grouping by the current
// plain select columns per spec.md §4.4.
func (b *Builder[T]) Sum(column string, alias ...string) *Builder[T] {
	return b.addAggregate("SUM", column, firstOrEmpty(alias))
}

// Count adds COUNT(column).
func (b *Builder[T]) Count(column string, alias ...string) *Builder[T] {
	return b.addAggregate("COUNT", column, firstOrEmpty(alias))
}

// Avg adds AVG(column).
func (b *Builder[T]) Avg(column string, alias ...string) *Builder[T] {
	return b.addAggregate("AVG", column, firstOrEmpty(alias))
}

// Min adds MIN(column).
func (b *Builder[T]) Min(column string, alias ...string) *Builder[T] {
	return b.addAggregate("MIN", column, firstOrEmpty(alias))
}

// Max adds MAX(column).
func (b *Builder[T]) Max(column string, alias ...string) *Builder[T] {
	return b.addAggregate("MAX", column, firstOrEmpty(alias))
}

func firstOrEmpty(s []string) string {
	if len(s) == 0 {
		return ""
	}
	return s[0]
}

func (b *Builder[T]) join(t JoinType, table, leftCol, rightCol string, alias ...string) *Builder[T] {
	if b.err != nil {
		return b
	}
	b.cfg.Joins = append(b.cfg.Joins, Join{Type: t, Table: table, Alias: firstOrEmpty(alias), LeftCol: leftCol, RightCol: rightCol})
	return b
}

// InnerJoin registers an INNER JOIN.
func (b *Builder[T]) InnerJoin(table, leftCol, rightCol string, alias ...string) *Builder[T] {
	return b.join(InnerJoin, table, leftCol, rightCol, alias...)
}

// LeftJoin registers a LEFT JOIN.
func (b *Builder[T]) LeftJoin(table, leftCol, rightCol string, alias ...string) *Builder[T] {
	return b.join(LeftJoin, table, leftCol, rightCol, alias...)
}

// RightJoin registers a RIGHT JOIN.
func (b *Builder[T]) RightJoin(table, leftCol, rightCol string, alias ...string) *Builder[T] {
	return b.join(RightJoin, table, leftCol, rightCol, alias...)
}

// FullJoin registers a FULL JOIN.
func (b *Builder[T]) FullJoin(table, leftCol, rightCol string, alias ...string) *Builder[T] {
	return b.join(FullJoin, table, leftCol, rightCol, alias...)
}

// WithRelation joins via a relation registered with [WithRelations],
// optionally overriding its type or alias for this call.
func (b *Builder[T]) WithRelation(name string, opts ...RelationOption) *Builder[T] {
	if b.err != nil {
		return b
	}
	r, ok := b.relations[name]
	if !ok {
		b.err = &UnknownRelationError{Name: name}
		return b
	}
	for _, opt := range opts {
		opt(&r)
	}
	return b.join(r.Type, r.Table, r.LeftCol, r.RightCol, r.Alias)
}

// GroupBy sets the GROUP BY list explicitly, overriding any auto-grouping
// from aggregate calls.
func (b *Builder[T]) GroupBy(columns ...string) *Builder[T] {
	if b.err != nil {
		return b
	}
	b.cfg.GroupBy = append([]string(nil), columns...)
	return b
}

// GroupByExpr appends expression values to the GROUP BY list, for bucketed
// or computed grouping keys that aren't plain column names.
func (b *Builder[T]) GroupByExpr(exprs ...sqlexpr.Expr) *Builder[T] {
	if b.err != nil {
		return b
	}
	for _, e := range exprs {
		b.cfg.GroupBy = append(b.cfg.GroupBy, e.SQL())
	}
	return b
}

// GroupByTimeInterval adds a time-bucketing GROUP BY expression. With no
// explicit function it delegates to sqlexpr.BucketTime, which recognizes
// the sqlexpr.IntervalX names (minute, hour, day, week, month, quarter,
// year) and renders ClickHouse's toStartOf* family. function overrides
// that with an arbitrary "fn(column, INTERVAL interval)" call instead,
// e.g. toStartOfInterval for multi-unit buckets BucketTime doesn't cover.
func (b *Builder[T]) GroupByTimeInterval(column, interval string, function ...string) *Builder[T] {
	if b.err != nil {
		return b
	}
	if len(function) > 0 && function[0] != "" {
		expr := fmt.Sprintf("%s(%s, INTERVAL %s)", function[0], column, interval)
		b.cfg.GroupBy = append(b.cfg.GroupBy, expr)
		return b
	}
	bucket, err := sqlexpr.BucketTime(column, interval)
	if err != nil {
		b.err = &ValidationError{Op: "groupByTimeInterval", Message: err.Error()}
		return b
	}
	b.cfg.GroupBy = append(b.cfg.GroupBy, bucket.SQL())
	return b
}

// OrderBy appends an ORDER BY term.
func (b *Builder[T]) OrderBy(column string, direction OrderDirection) *Builder[T] {
	if b.err != nil {
		return b
	}
	b.cfg.OrderBy = append(b.cfg.OrderBy, OrderTerm{Column: column, Direction: direction})
	return b
}

// Having appends a raw HAVING predicate with its positional parameters.
func (b *Builder[T]) Having(text string, params ...any) *Builder[T] {
	if b.err != nil {
		return b
	}
	b.cfg.Having = append(b.cfg.Having, HavingClause{Text: text, Params: params})
	return b
}

// HavingExpr appends a HAVING predicate whose left-hand side is an
// expression value (e.g. sqlexpr.Func("sum", "amount")) rather than a
// plain column, with its positional parameters.
func (b *Builder[T]) HavingExpr(expr sqlexpr.Expr, params ...any) *Builder[T] {
	if b.err != nil {
		return b
	}
	b.cfg.Having = append(b.cfg.Having, HavingClause{Text: expr.SQL(), Params: params})
	return b
}

// Limit sets LIMIT.
func (b *Builder[T]) Limit(n int) *Builder[T] {
	if b.err != nil {
		return b
	}
	b.cfg.Limit = &n
	return b
}

// Offset sets OFFSET.
func (b *Builder[T]) Offset(n int) *Builder[T] {
	if b.err != nil {
		return b
	}
	b.cfg.Offset = &n
	return b
}

// WithCTE adds a WITH alias AS (subquery) clause. subquery is a raw SQL
// string or any *Builder[U] (any row type).
func (b *Builder[T]) WithCTE(alias string, subquery any) *Builder[T] {
	if b.err != nil {
		return b
	}
	sql, params, err := resolveSub(subquery)
	if err != nil {
		b.err = &ValidationError{Op: "withCTE", Message: err.Error()}
		return b
	}
	b.cfg.CTEs = append(b.cfg.CTEs, CTE{Alias: alias, SQL: sql, Params: params})
	return b
}

// Raw appends a raw SQL fragment, rendered verbatim after ORDER BY/LIMIT.
func (b *Builder[T]) Raw(sqlText string) *Builder[T] {
	if b.err != nil {
		return b
	}
	b.cfg.Raw = append(b.cfg.Raw, sqlText)
	return b
}

// Settings merges ClickHouse SETTINGS key/value pairs, rendered as a
// trailing SETTINGS clause.
func (b *Builder[T]) Settings(opts map[string]any) *Builder[T] {
	if b.err != nil {
		return b
	}
	if b.cfg.Settings == nil {
		b.cfg.Settings = make(map[string]any, len(opts))
	}
	for k, v := range opts {
		b.cfg.Settings[k] = v
	}
	return b
}

func resolveSub(v any) (string, []any, error) {
	switch s := v.(type) {
	case string:
		return s, nil, nil
	case SQLRenderer:
		return s.ToSQLWithParams()
	default:
		return "", nil, fmt.Errorf("unsupported subquery value %T", v)
	}
}

func validateValue(column string, op sqlop.Operator, value any) error {
	if op == sqlop.Between {
		pair, ok := value.([2]any)
		if !ok {
			return &ValidationError{Op: "where", Message: fmt.Sprintf("%s: between requires exactly two values", column)}
		}
		if pair[0] == nil || pair[1] == nil {
			return &ValidationError{Op: "where", Message: fmt.Sprintf("%s: between value must not be nil", column)}
		}
	}
	return nil
}

// ToSQL renders the query with every parameter substituted as a quoted
// literal, for engines that don't accept positional placeholders.
func (b *Builder[T]) ToSQL() (string, error) {
	if b.err != nil {
		return "", b.err
	}
	sqlText, params, err := Render(b.cfg)
	if err != nil {
		return "", err
	}
	return SubstituteParams(sqlText, params)
}

// ToSQLWithParams renders the query with positional "?" placeholders and
// returns its parameters in order. It is pure: repeated calls on the same
// builder state yield identical output, per spec.md §8.
func (b *Builder[T]) ToSQLWithParams() (string, []any, error) {
	if b.err != nil {
		return "", nil, b.err
	}
	return Render(b.cfg)
}

// Execute renders the query and drives it through the injected Executor.
func (b *Builder[T]) Execute(ctx context.Context) ([]T, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.exec == nil {
		return nil, &ValidationError{Op: "execute", Message: "no executor configured"}
	}
	sqlText, params, err := Render(b.cfg)
	if err != nil {
		return nil, err
	}
	return b.exec.Execute(ctx, sqlText, params)
}

// Stream renders the query and returns a lazy batch stream from the
// injected Executor.
func (b *Builder[T]) Stream(ctx context.Context) (RowStream[T], error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.exec == nil {
		return nil, &ValidationError{Op: "stream", Message: "no executor configured"}
	}
	sqlText, params, err := Render(b.cfg)
	if err != nil {
		return nil, err
	}
	return b.exec.Stream(ctx, sqlText, params)
}

// StreamForEach streams the query and invokes fn once per row, stopping
// and returning early if fn returns an error.
func (b *Builder[T]) StreamForEach(ctx context.Context, fn func(T) error) error {
	s, err := b.Stream(ctx)
	if err != nil {
		return err
	}
	defer s.Close()
	for {
		batch, more, err := s.Next(ctx)
		if err != nil {
			return err
		}
		for _, row := range batch {
			if err := fn(row); err != nil {
				return err
			}
		}
		if !more {
			return nil
		}
	}
}

// PageOptions configures [Builder.Paginate].
type PageOptions struct {
	PageSize int
	After    string
	Before   string
	OrderBy  []OrderTerm
}

// PageInfo describes a page's position in a cursor-paginated result set.
type PageInfo struct {
	StartCursor     string
	EndCursor       string
	HasNextPage     bool
	HasPreviousPage bool
	TotalCount      int
	TotalPages      int
	PageSize        int
}

// Page is one page of cursor-paginated results.
type Page[T any] struct {
	Data     []T
	PageInfo PageInfo
}

// Paginate returns one cursor-stable page via the injected Paginator.
func (b *Builder[T]) Paginate(ctx context.Context, opts PageOptions) (*Page[T], error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.paginator == nil {
		return nil, &ValidationError{Op: "paginate", Message: "no paginator configured"}
	}
	return b.paginator.Paginate(ctx, b.cfg, opts)
}

// FirstPage is shorthand for Paginate with only a page size.
func (b *Builder[T]) FirstPage(ctx context.Context, n int) (*Page[T], error) {
	return b.Paginate(ctx, PageOptions{PageSize: n})
}

// IteratePages returns a range-over-func iterator yielding successive
// pages of size n until hasNextPage is false.
func (b *Builder[T]) IteratePages(ctx context.Context, n int) iter.Seq2[*Page[T], error] {
	return func(yield func(*Page[T], error) bool) {
		after := ""
		for {
			page, err := b.Paginate(ctx, PageOptions{PageSize: n, After: after})
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(page, nil) {
				return
			}
			if !page.PageInfo.HasNextPage {
				return
			}
			after = page.PageInfo.EndCursor
		}
	}
}
