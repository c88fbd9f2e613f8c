// Package streaming decodes a ClickHouse JSONEachRow response body into
// batches of typed rows, for adapters backing [query.RowStream].
package streaming
