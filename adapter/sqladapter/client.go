package sqladapter

import (
	"context"
	"database/sql"
	"strconv"
	"strings"

	"github.com/syssam/analytiq/adapter"
	"github.com/syssam/analytiq/query"
)

// Dialect names match the driver names registered by the corresponding
// database/sql driver package.
const (
	Postgres = "postgres"
	MySQL    = "mysql"
	SQLite   = "sqlite"
)

// ScanFunc materializes one row from the current cursor position.
type ScanFunc[T any] func(*sql.Rows) (T, error)

// Client adapts a *sql.DB to [adapter.Adapter].
type Client[T any] struct {
	db        *sql.DB
	dialect   string
	scan      ScanFunc[T]
	batchSize int
}

// New wraps db. batchSize controls how many rows Stream batches per call
// to RowStream.Next; 0 selects a default of 1000.
func New[T any](db *sql.DB, dialect string, scan ScanFunc[T], batchSize int) *Client[T] {
	if batchSize <= 0 {
		batchSize = 1000
	}
	return &Client[T]{db: db, dialect: dialect, scan: scan, batchSize: batchSize}
}

// Name implements [adapter.Adapter].
func (c *Client[T]) Name() string { return c.dialect }

// Render implements [adapter.Renderer]: rebinds the builder's positional
// "?" placeholders to the dialect's native placeholder syntax.
func (c *Client[T]) Render(_ context.Context, sqlText string, _ []any) (string, error) {
	return rebind(c.dialect, sqlText), nil
}

// Query implements [adapter.Adapter].
func (c *Client[T]) Query(ctx context.Context, sqlText string, params []any) ([]T, error) {
	rows, err := c.db.QueryContext(ctx, rebind(c.dialect, sqlText), params...)
	if err != nil {
		return nil, &adapter.QueryError{Adapter: c.dialect, SQL: sqlText, Err: err}
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		row, err := c.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &adapter.QueryError{Adapter: c.dialect, SQL: sqlText, Err: err}
	}
	return out, nil
}

// Stream implements [adapter.Adapter].
func (c *Client[T]) Stream(ctx context.Context, sqlText string, params []any) (query.RowStream[T], error) {
	rows, err := c.db.QueryContext(ctx, rebind(c.dialect, sqlText), params...)
	if err != nil {
		return nil, &adapter.QueryError{Adapter: c.dialect, SQL: sqlText, Err: err}
	}
	return &rowStream[T]{rows: rows, scan: c.scan, batchSize: c.batchSize}, nil
}

type rowStream[T any] struct {
	rows      *sql.Rows
	scan      ScanFunc[T]
	batchSize int
	done      bool
}

func (s *rowStream[T]) Next(_ context.Context) ([]T, bool, error) {
	if s.done {
		return nil, false, nil
	}
	batch := make([]T, 0, s.batchSize)
	for len(batch) < s.batchSize {
		if !s.rows.Next() {
			s.done = true
			break
		}
		row, err := s.scan(s.rows)
		if err != nil {
			return nil, false, err
		}
		batch = append(batch, row)
	}
	if err := s.rows.Err(); err != nil {
		return batch, false, err
	}
	return batch, !s.done, nil
}

func (s *rowStream[T]) Close() error { return s.rows.Close() }

// rebind rewrites sequential "?" placeholders into dialect's native
// syntax: PostgreSQL's $1, $2, ...; MySQL and SQLite already use "?".
func rebind(dialect, sqlText string) string {
	if dialect != Postgres {
		return sqlText
	}
	var sb strings.Builder
	n := 0
	for _, r := range sqlText {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
