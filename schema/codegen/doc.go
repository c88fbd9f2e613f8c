// Package codegen turns a [schema.Schema] into generated Go struct
// bindings, one struct per table, with fields named and typed from each
// column's [schema.ColumnType].
//
// This is the in-tree half of spec.md §9's design note (a): the live
// introspection CLI that produces a [schema.Schema] from a running
// database is an external collaborator (spec.md §1); this package is the
// schema-to-Go-types half such a CLI would call, and is equally usable by
// hand-maintained schema values.
package codegen
