package executor

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/analytiq/adapter"
	"github.com/syssam/analytiq/query"
	"github.com/syssam/analytiq/queryevent"
)

// Engine wraps an [adapter.Adapter] to implement [query.Executor],
// emitting the execution lifecycle spec.md §4.5 describes: a started
// event, then either a completed event (with duration and row count) or
// an error event (with duration and the error), and re-throwing on
// failure.
type Engine[T any] struct {
	adapter       adapter.Adapter[T]
	bus           *queryevent.Bus
	stats         *Stats
	slowThreshold time.Duration
	newID         func() string
}

// Option configures an Engine at construction time.
type Option[T any] func(*Engine[T])

// WithBus attaches an existing event bus instead of the Engine's own.
func WithBus[T any](b *queryevent.Bus) Option[T] {
	return func(e *Engine[T]) { e.bus = b }
}

// WithSlowThreshold sets the duration above which a query counts as slow.
// Default 100ms.
func WithSlowThreshold[T any](d time.Duration) Option[T] {
	return func(e *Engine[T]) { e.slowThreshold = d }
}

// New wraps a as the Engine's adapter.
func New[T any](a adapter.Adapter[T], opts ...Option[T]) *Engine[T] {
	e := &Engine[T]{
		adapter:       a,
		bus:           &queryevent.Bus{},
		stats:         &Stats{},
		slowThreshold: 100 * time.Millisecond,
		newID:         uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Bus returns the event bus subscribers can attach to.
func (e *Engine[T]) Bus() *queryevent.Bus { return e.bus }

// Stats returns a snapshot of the engine's execution statistics.
func (e *Engine[T]) Stats() StatsSnapshot { return e.stats.Snapshot() }

// Execute implements [query.Executor].
func (e *Engine[T]) Execute(ctx context.Context, sqlText string, params []any) ([]T, error) {
	id := e.newID()
	start := time.Now()
	e.bus.Publish(queryevent.Event{Kind: queryevent.Started, QueryID: id, Adapter: e.adapter.Name(), SQL: sqlText, Params: params, StartedAt: start})

	rows, err := e.adapter.Query(ctx, sqlText, params)
	duration := time.Since(start)
	e.stats.record(duration, err != nil)
	if err != nil {
		e.bus.Publish(queryevent.Event{Kind: queryevent.Failed, QueryID: id, Adapter: e.adapter.Name(), SQL: sqlText, Params: params, StartedAt: start, Duration: duration, Err: err})
		return nil, err
	}
	if duration >= e.slowThreshold {
		e.stats.SlowQueries.Add(1)
	}
	e.bus.Publish(queryevent.Event{Kind: queryevent.Completed, QueryID: id, Adapter: e.adapter.Name(), SQL: sqlText, Params: params, StartedAt: start, Duration: duration, Rows: len(rows)})
	return rows, nil
}

// Stream implements [query.Executor].
func (e *Engine[T]) Stream(ctx context.Context, sqlText string, params []any) (query.RowStream[T], error) {
	id := e.newID()
	start := time.Now()
	e.bus.Publish(queryevent.Event{Kind: queryevent.Started, QueryID: id, Adapter: e.adapter.Name(), SQL: sqlText, Params: params, StartedAt: start})

	s, err := e.adapter.Stream(ctx, sqlText, params)
	if err != nil {
		duration := time.Since(start)
		e.stats.record(duration, true)
		e.bus.Publish(queryevent.Event{Kind: queryevent.Failed, QueryID: id, Adapter: e.adapter.Name(), SQL: sqlText, Params: params, StartedAt: start, Duration: duration, Err: err})
		return nil, err
	}
	return &instrumentedStream[T]{inner: s, id: id, adapterName: e.adapter.Name(), sqlText: sqlText, params: params, start: start, engine: e}, nil
}

type instrumentedStream[T any] struct {
	inner       query.RowStream[T]
	id          string
	adapterName string
	sqlText     string
	params      []any
	start       time.Time
	engine      *Engine[T]
	rows        int
}

func (s *instrumentedStream[T]) Next(ctx context.Context) ([]T, bool, error) {
	batch, more, err := s.inner.Next(ctx)
	s.rows += len(batch)
	duration := time.Since(s.start)
	if err != nil {
		s.engine.stats.record(duration, true)
		s.engine.bus.Publish(queryevent.Event{Kind: queryevent.Failed, QueryID: s.id, Adapter: s.adapterName, SQL: s.sqlText, Params: s.params, StartedAt: s.start, Duration: duration, Rows: s.rows, Err: err})
		return batch, more, err
	}
	if !more {
		s.engine.stats.record(duration, false)
		if duration >= s.engine.slowThreshold {
			s.engine.stats.SlowQueries.Add(1)
		}
		s.engine.bus.Publish(queryevent.Event{Kind: queryevent.Completed, QueryID: s.id, Adapter: s.adapterName, SQL: s.sqlText, Params: s.params, StartedAt: s.start, Duration: duration, Rows: s.rows})
	}
	return batch, more, nil
}

func (s *instrumentedStream[T]) Close() error { return s.inner.Close() }
