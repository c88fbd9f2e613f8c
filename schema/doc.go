// Package schema describes the column-oriented type vocabulary the query
// builder, filter tree, and SQL formatter pivot on: [ColumnType], the
// [Schema] a table and its columns resolve against, and the host
// representation each ColumnType maps to via [HostType].
//
// A Schema is an immutable value created once at process start — typically
// from a generated artifact produced by an external introspection tool,
// see the [github.com/syssam/analytiq/schema/codegen] subpackage — and
// shared by every query builder and filter tree in the process.
package schema
