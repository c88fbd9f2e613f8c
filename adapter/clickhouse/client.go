package clickhouse

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/syssam/analytiq/adapter"
	"github.com/syssam/analytiq/query"
	chschema "github.com/syssam/analytiq/schema"
	"github.com/syssam/analytiq/streaming"
)

// Config holds the HTTP connection details for a ClickHouse server.
type Config struct {
	BaseURL    string
	Database   string
	Username   string
	Password   string
	HTTPClient *http.Client
}

// RowMapper converts a type-decoded row (column name to host Go value, per
// schema.Decode) into T.
type RowMapper[T any] func(row map[string]any) (T, error)

// Client adapts ClickHouse's HTTP interface to [adapter.Adapter]. When s is
// non-nil, every column in table is passed through [chschema.Decode] before
// mapRow runs, so mapRow always sees host-typed values (time.Time, string,
// float64, ...) rather than raw JSON numbers/strings.
type Client[T any] struct {
	cfg    Config
	table  string
	s      *chschema.Schema
	mapRow RowMapper[T]
}

// New creates a Client. table and s may be zero/nil to skip type decoding.
func New[T any](cfg Config, table string, s *chschema.Schema, mapRow RowMapper[T]) *Client[T] {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	return &Client[T]{cfg: cfg, table: table, s: s, mapRow: mapRow}
}

// Name implements [adapter.Adapter].
func (c *Client[T]) Name() string { return "clickhouse" }

func (c *Client[T]) post(ctx context.Context, sqlText string, params []any) (io.ReadCloser, error) {
	finalSQL, err := query.SubstituteParams(sqlText, params)
	if err != nil {
		return nil, err
	}
	body := finalSQL + " FORMAT JSONEachRow"

	endpoint := strings.TrimRight(c.cfg.BaseURL, "/") + "/"
	if c.cfg.Database != "" {
		endpoint += "?database=" + url.QueryEscape(c.cfg.Database)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	if c.cfg.Username != "" {
		req.SetBasicAuth(c.cfg.Username, c.cfg.Password)
	}

	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, &adapter.QueryError{Adapter: "clickhouse", SQL: sqlText, Err: err}
	}
	if resp.StatusCode >= http.StatusBadRequest {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(resp.Body)
		return nil, &adapter.QueryError{
			Adapter: "clickhouse",
			SQL:     sqlText,
			Err:     fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(msg))),
		}
	}
	return resp.Body, nil
}

func (c *Client[T]) decodeRow(raw map[string]any) (map[string]any, error) {
	if c.s == nil {
		return raw, nil
	}
	cols := c.s.Columns(c.table)
	if cols == nil {
		return raw, nil
	}
	out := make(map[string]any, len(raw))
	for k, v := range raw {
		ct, ok := cols[k]
		if !ok {
			out[k] = v
			continue
		}
		decoded, err := chschema.Decode(ct, v)
		if err != nil {
			return nil, fmt.Errorf("clickhouse: decode column %q: %w", k, err)
		}
		out[k] = decoded
	}
	return out, nil
}

// Query implements [adapter.Adapter].
func (c *Client[T]) Query(ctx context.Context, sqlText string, params []any) ([]T, error) {
	body, err := c.post(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	dec := streaming.NewDecoder(body, 0)
	var out []T
	for {
		raw, ok, err := dec.Next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		decoded, err := c.decodeRow(raw)
		if err != nil {
			return nil, err
		}
		row, err := c.mapRow(decoded)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
}

// Stream implements [adapter.Adapter].
func (c *Client[T]) Stream(ctx context.Context, sqlText string, params []any) (query.RowStream[T], error) {
	body, err := c.post(ctx, sqlText, params)
	if err != nil {
		return nil, err
	}
	return streaming.NewRowDecoder(body, 1000, func(raw map[string]any) (T, error) {
		decoded, err := c.decodeRow(raw)
		if err != nil {
			var zero T
			return zero, err
		}
		return c.mapRow(decoded)
	}), nil
}
