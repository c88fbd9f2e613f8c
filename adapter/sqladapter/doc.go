// Package sqladapter implements [adapter.Adapter] over a database/sql
// connection, for testing the query builder and executor against a real
// relational engine (MySQL, PostgreSQL, SQLite) instead of ClickHouse.
// Grounded on the teacher's dialect/sql driver: a thin Conn wrapper over
// database/sql's ExecContext/QueryContext pair.
package sqladapter
