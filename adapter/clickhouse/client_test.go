package clickhouse_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/analytiq/adapter/clickhouse"
	"github.com/syssam/analytiq/schema"
)

type event struct {
	ID        string
	CreatedAt string
}

func TestClientQueryDecodesTypes(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.Write([]byte(`{"id":"e1","created_at":"2024-02-29 10:00:00"}` + "\n"))
	}))
	defer srv.Close()

	s := schema.New(map[string]map[string]schema.ColumnType{
		"events": {"id": schema.UUID, "created_at": schema.DateTime()},
	})

	c := clickhouse.New(clickhouse.Config{BaseURL: srv.URL}, "events", s, func(row map[string]any) (event, error) {
		return event{ID: row["id"].(string), CreatedAt: row["created_at"].(time.Time).Format(time.DateTime)}, nil
	})

	rows, err := c.Query(context.Background(), "SELECT id, created_at FROM events WHERE id = ?", []any{"e1"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "e1", rows[0].ID)
	assert.Contains(t, gotBody, "id = 'e1'")
	assert.Contains(t, gotBody, "FORMAT JSONEachRow")
}

func TestClientQueryPropagatesHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Code: 62. DB::Exception: Syntax error"))
	}))
	defer srv.Close()

	c := clickhouse.New[event](clickhouse.Config{BaseURL: srv.URL}, "", nil, nil)
	_, err := c.Query(context.Background(), "SELECT 1", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clickhouse")
}
