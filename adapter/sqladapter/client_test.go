package sqladapter_test

import (
	"context"
	"database/sql"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/analytiq/adapter/sqladapter"
)

type order struct {
	ID    int
	Total float64
}

func scanOrder(rows *sql.Rows) (order, error) {
	var o order
	err := rows.Scan(&o.ID, &o.Total)
	return o, err
}

func TestClientQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, total FROM orders WHERE id > ?").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "total"}).
			AddRow(2, 19.99).
			AddRow(3, 4.5))

	c := sqladapter.New(db, sqladapter.MySQL, scanOrder, 0)
	rows, err := c.Query(context.Background(), "SELECT id, total FROM orders WHERE id > ?", []any{1})
	require.NoError(t, err)
	assert.Equal(t, []order{{2, 19.99}, {3, 4.5}}, rows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestClientStreamBatches(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT id, total FROM orders").
		WillReturnRows(sqlmock.NewRows([]string{"id", "total"}).
			AddRow(1, 1.0).
			AddRow(2, 2.0).
			AddRow(3, 3.0))

	c := sqladapter.New(db, sqladapter.SQLite, scanOrder, 2)
	stream, err := c.Stream(context.Background(), "SELECT id, total FROM orders", nil)
	require.NoError(t, err)
	defer stream.Close()

	batch1, more1, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, batch1, 2)
	assert.True(t, more1)

	batch2, more2, err := stream.Next(context.Background())
	require.NoError(t, err)
	assert.Len(t, batch2, 1)
	assert.False(t, more2)
}

func TestPostgresRebindsPlaceholders(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT id, total FROM orders WHERE id > \$1 AND total < \$2`).
		WithArgs(1, 100).
		WillReturnRows(sqlmock.NewRows([]string{"id", "total"}).AddRow(2, 19.99))

	c := sqladapter.New(db, sqladapter.Postgres, scanOrder, 0)
	rows, err := c.Query(context.Background(), "SELECT id, total FROM orders WHERE id > ? AND total < ?", []any{1, 100})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	require.NoError(t, mock.ExpectationsWereMet())
}
