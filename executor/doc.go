// Package executor drives a rendered query through an [adapter.Adapter],
// emitting started/completed/error [queryevent.Event]s and tracking
// slow-query statistics. It implements [query.Executor], so a
// query.Builder constructed with query.WithExecutor(engine) gets this
// instrumentation for free. Grounded on the teacher's dialect/sql
// StatsDriver (stats.go): same atomic-counter, slow-threshold design,
// generalized from a single slow-query hook to the typed event bus in
// queryevent.
package executor
