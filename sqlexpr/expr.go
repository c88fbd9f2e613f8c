package sqlexpr

import (
	"fmt"
	"strings"
)

// Expr is the common interface implemented by [Expression] and
// [AliasedExpression]; anything that can render itself as a SQL fragment
// for a SELECT/WHERE/GROUP BY/ORDER BY position.
type Expr interface {
	SQL() string
}

// Expression is an opaque, already-rendered SQL fragment.
type Expression struct {
	sql string
}

// SQL returns the fragment's text.
func (e Expression) SQL() string { return e.sql }

// As wraps the expression with an alias, producing an AliasedExpression.
func (e Expression) As(alias string) AliasedExpression {
	return AliasedExpression{sql: e.sql, alias: alias}
}

// AliasedExpression is a SQL fragment paired with a SELECT-list alias.
// The formatter renders it as "sql AS alias".
type AliasedExpression struct {
	sql   string
	alias string
}

// SQL returns the fragment's text, including its alias.
func (a AliasedExpression) SQL() string {
	return fmt.Sprintf("%s AS %s", a.sql, a.alias)
}

// Alias returns the expression's alias.
func (a AliasedExpression) Alias() string { return a.alias }

// Inner returns the fragment's text without its alias.
func (a AliasedExpression) Inner() string { return a.sql }

// Raw wraps arbitrary SQL text as an opaque Expression. Callers are
// responsible for the text's safety; Raw performs no escaping.
func Raw(sql string) Expression { return Expression{sql: sql} }

// Aliased wraps arbitrary SQL text with an alias directly.
func Aliased(sql, alias string) AliasedExpression {
	return AliasedExpression{sql: sql, alias: alias}
}

// Func renders a function application "name(args...)".
func Func(name string, args ...string) Expression {
	return Expression{sql: fmt.Sprintf("%s(%s)", name, strings.Join(args, ", "))}
}

// Cast renders "CAST(column AS type)".
func Cast(column, sqlType string) Expression {
	return Expression{sql: fmt.Sprintf("CAST(%s AS %s)", column, sqlType)}
}

// DateCast renders "CAST(column AS Date)".
func DateCast(column string) Expression { return Cast(column, "Date") }

// FormatDate renders a ClickHouse formatDateTime() call, with an optional
// explicit timezone argument.
func FormatDate(column, format string, timezone ...string) Expression {
	if len(timezone) > 0 && timezone[0] != "" {
		return Expression{sql: fmt.Sprintf("formatDateTime(%s, '%s', '%s')", column, format, timezone[0])}
	}
	return Expression{sql: fmt.Sprintf("formatDateTime(%s, '%s')", column, format)}
}

// Interval names accepted by BucketTime, mapped to ClickHouse's
// toStartOf* family of functions.
const (
	IntervalMinute  = "minute"
	IntervalHour    = "hour"
	IntervalDay     = "day"
	IntervalWeek    = "week"
	IntervalMonth   = "month"
	IntervalQuarter = "quarter"
	IntervalYear    = "year"
)

var bucketFuncs = map[string]string{
	IntervalMinute:  "toStartOfMinute",
	IntervalHour:    "toStartOfHour",
	IntervalDay:     "toStartOfDay",
	IntervalWeek:    "toStartOfWeek",
	IntervalMonth:   "toStartOfMonth",
	IntervalQuarter: "toStartOfQuarter",
	IntervalYear:    "toStartOfYear",
}

// ErrUnknownInterval is returned by BucketTime and DatePart for an
// unrecognized interval/part name.
type ErrUnknownInterval struct{ Name string }

func (e *ErrUnknownInterval) Error() string {
	return fmt.Sprintf("sqlexpr: unknown interval or date part %q", e.Name)
}

// BucketTime renders a time-bucketing expression for the given interval
// name (spec.md §4.1's "bucketing by interval"). An optional aggregation
// function (e.g. "count", "sum") may wrap the bucketed column when
// provided via [BucketTimeAgg].
func BucketTime(column, interval string) (Expression, error) {
	fn, ok := bucketFuncs[interval]
	if !ok {
		return Expression{}, &ErrUnknownInterval{Name: interval}
	}
	return Expression{sql: fmt.Sprintf("%s(%s)", fn, column)}, nil
}

// BucketTimeAgg renders a bucketed-and-aggregated expression, e.g.
// "sum(amount) ... GROUP BY toStartOfDay(created_at)" callers compose via
// the query builder; this helper only renders the SELECT-position piece
// when the caller wants the bucket expression itself wrapped by a scalar
// function (rare; most callers use BucketTime for GROUP BY and a separate
// aggregate for SELECT).
func BucketTimeAgg(fn, column, interval string) (Expression, error) {
	bucket, err := BucketTime(column, interval)
	if err != nil {
		return Expression{}, err
	}
	return Expression{sql: fmt.Sprintf("%s(%s)", fn, bucket.SQL())}, nil
}

var datePartFuncs = map[string]string{
	"year":         "toYear",
	"quarter":      "toQuarter",
	"month":        "toMonth",
	"week":         "toISOWeek",
	"day":          "toDayOfMonth",
	"day_of_week":  "toDayOfWeek",
	"day_of_year":  "toDayOfYear",
	"hour":         "toHour",
	"minute":       "toMinute",
	"second":       "toSecond",
}

// DatePart renders a date-part extraction expression, e.g.
// DatePart("month", "created_at") -> "toMonth(created_at)".
func DatePart(part, column string) (Expression, error) {
	fn, ok := datePartFuncs[part]
	if !ok {
		return Expression{}, &ErrUnknownInterval{Name: part}
	}
	return Expression{sql: fmt.Sprintf("%s(%s)", fn, column)}, nil
}
