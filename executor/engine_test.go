package executor_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/analytiq/executor"
	"github.com/syssam/analytiq/query"
	"github.com/syssam/analytiq/queryevent"
)

type fakeAdapter struct {
	rows []int
	err  error
}

func (f *fakeAdapter) Name() string { return "fake" }
func (f *fakeAdapter) Query(_ context.Context, _ string, _ []any) ([]int, error) {
	return f.rows, f.err
}
func (f *fakeAdapter) Stream(_ context.Context, _ string, _ []any) (query.RowStream[int], error) {
	return nil, errors.New("not implemented")
}

func TestEngineExecuteEmitsLifecycleEvents(t *testing.T) {
	a := &fakeAdapter{rows: []int{1, 2, 3}}
	eng := executor.New[int](a)

	var kinds []queryevent.Kind
	eng.Bus().Subscribe(func(e queryevent.Event) { kinds = append(kinds, e.Kind) })

	rows, err := eng.Execute(context.Background(), "SELECT 1", nil)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, rows)
	assert.Equal(t, []queryevent.Kind{queryevent.Started, queryevent.Completed}, kinds)

	stats := eng.Stats()
	assert.Equal(t, int64(1), stats.TotalQueries)
	assert.Equal(t, int64(0), stats.Errors)
}

func TestEngineExecutePropagatesAndEmitsError(t *testing.T) {
	a := &fakeAdapter{err: errors.New("boom")}
	eng := executor.New[int](a)

	var kinds []queryevent.Kind
	eng.Bus().Subscribe(func(e queryevent.Event) { kinds = append(kinds, e.Kind) })

	_, err := eng.Execute(context.Background(), "SELECT 1", nil)
	require.Error(t, err)
	assert.Equal(t, []queryevent.Kind{queryevent.Started, queryevent.Failed}, kinds)
	assert.Equal(t, int64(1), eng.Stats().Errors)
}
