// Package paginate implements cursor-stable pagination (spec.md §4.6): a
// cursor encodes the ORDER BY tuple of the last row seen, forward paging
// applies a keyset predicate to continue past it, and backward paging
// reverses the ORDER BY internally then reverses the returned rows.
package paginate
