// Package filter implements the algebraic predicate model described in
// spec.md §4.2: leaf [Condition]s and AND/OR [Group]s composed into a
// [Tree], optionally validated against a [github.com/syssam/analytiq/schema.Schema],
// plus named date-range and comparison-period helpers.
//
// A Tree is reusable across multiple query builders (a "cross-filter" in
// spec.md's terminology); [Apply] rewrites it into a target's WHERE
// stream.
package filter
