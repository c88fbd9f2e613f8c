package filter

import (
	"time"

	"github.com/syssam/analytiq/sqlop"
)

// Now is the clock the date-range helpers consult; tests may reassign it
// to make "today"/"this_month" deterministic.
var Now = time.Now

// Named date ranges recognized by [Tree.AddDateRange].
const (
	RangeToday        = "today"
	RangeYesterday    = "yesterday"
	RangeLast7Days    = "last_7_days"
	RangeLast30Days   = "last_30_days"
	RangeThisMonth    = "this_month"
	RangeLastMonth    = "last_month"
	RangeThisQuarter  = "this_quarter"
	RangeYearToDate   = "year_to_date"
)

// resolveRange computes the [start, end) window for a named range,
// relative to Now(), in Now()'s location.
func resolveRange(name string) (start, end time.Time, err error) {
	now := Now()
	loc := now.Location()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	switch name {
	case RangeToday:
		return midnight, midnight.AddDate(0, 0, 1), nil
	case RangeYesterday:
		return midnight.AddDate(0, 0, -1), midnight, nil
	case RangeLast7Days:
		return midnight.AddDate(0, 0, -7), midnight.AddDate(0, 0, 1), nil
	case RangeLast30Days:
		return midnight.AddDate(0, 0, -30), midnight.AddDate(0, 0, 1), nil
	case RangeThisMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		return first, first.AddDate(0, 1, 0), nil
	case RangeLastMonth:
		first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)
		prevFirst := first.AddDate(0, -1, 0)
		return prevFirst, first, nil
	case RangeThisQuarter:
		q := (int(now.Month()) - 1) / 3
		firstMonth := time.Month(q*3 + 1)
		first := time.Date(now.Year(), firstMonth, 1, 0, 0, 0, 0, loc)
		return first, first.AddDate(0, 3, 0), nil
	case RangeYearToDate:
		first := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, loc)
		return first, midnight.AddDate(0, 0, 1), nil
	default:
		return time.Time{}, time.Time{}, &UnknownRangeError{Name: name}
	}
}

// AddDateRange adds a between condition over column covering the named
// range. The window's end is rendered as exclusive-minus-one-millisecond
// per spec.md §4.2: "ends at midnight on the first of the next month
// minus one millisecond".
func (t *Tree) AddDateRange(column string, rangeName string) error {
	start, end, err := resolveRange(rangeName)
	if err != nil {
		return err
	}
	return t.AddConjoined(column, sqlop.Between, [2]any{start, end.Add(-time.Millisecond)}, sqlop.AND)
}

// LastNDays adds a between condition covering the last n days up to and
// including today.
func (t *Tree) LastNDays(column string, n int) error {
	now := Now()
	loc := now.Location()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	start := midnight.AddDate(0, 0, -n)
	end := midnight.AddDate(0, 0, 1).Add(-time.Millisecond)
	return t.AddConjoined(column, sqlop.Between, [2]any{start, end}, sqlop.AND)
}

// AddComparisonPeriod adds a between condition over an explicit
// [start, end] period, useful for period-over-period comparisons where
// the caller has already computed the comparison window.
func (t *Tree) AddComparisonPeriod(column string, period [2]time.Time) error {
	return t.AddConjoined(column, sqlop.Between, [2]any{period[0], period[1]}, sqlop.AND)
}

// AddYearOverYear adds a between condition over the period exactly one
// year before the given [start, end] period. Leap-year Feb 29 is handled
// by time.Time.AddDate's natural day-overflow: Feb 29 2024 shifted back a
// year lands on Mar 1 2023, matching spec.md §8's worked example.
func (t *Tree) AddYearOverYear(column string, period [2]time.Time) error {
	prior := [2]time.Time{period[0].AddDate(-1, 0, 0), period[1].AddDate(-1, 0, 0)}
	return t.AddComparisonPeriod(column, prior)
}
