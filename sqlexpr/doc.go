// Package sqlexpr provides opaque SQL fragment values that flow into
// SELECT, WHERE, GROUP BY, and ORDER BY positions of a query: raw text,
// aliased text, function application, and date/time helpers (cast,
// formatted date, interval bucketing, date-part extraction).
package sqlexpr
