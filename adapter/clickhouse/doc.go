// Package clickhouse implements [adapter.Adapter] over ClickHouse's HTTP
// interface, posting rendered SQL with a FORMAT JSONEachRow suffix and
// decoding the response body with the streaming package. This is the
// production adapter spec.md §1 names as out-of-tree in the source system
// but in-tree here as the concrete binding for the adapter contract (§6).
package clickhouse
