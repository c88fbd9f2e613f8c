// Package cache implements the read-through cache manager (spec.md §4.7):
// key derivation, the bypass/cache-first/stale-while-revalidate/
// network-first modes, singleflight dedupe, tag-based invalidation, and
// hit/miss/stale statistics, in front of a pluggable Provider.
package cache
