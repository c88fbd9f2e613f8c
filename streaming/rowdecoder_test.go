package streaming_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/analytiq/streaming"
)

type nopCloser struct{ io.Reader }

func (nopCloser) Close() error { return nil }

func TestRowDecoderBatchesAndFlushesTrailingLine(t *testing.T) {
	body := `{"id":1}
{"id":2}
{"id":3}` // no trailing newline: exercises the partial-line flush

	dec := streaming.NewRowDecoder(nopCloser{strings.NewReader(body)}, 2, func(row map[string]any) (int, error) {
		return int(row["id"].(float64)), nil
	})
	defer dec.Close()

	batch1, more1, err := dec.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, batch1)
	assert.True(t, more1)

	batch2, more2, err := dec.Next(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{3}, batch2)
	assert.False(t, more2)
}

func TestRowDecoderEmptyInput(t *testing.T) {
	dec := streaming.NewRowDecoder(nopCloser{strings.NewReader("")}, 10, func(row map[string]any) (int, error) {
		return 0, nil
	})
	batch, more, err := dec.Next(context.Background())
	require.NoError(t, err)
	assert.Empty(t, batch)
	assert.False(t, more)
}
