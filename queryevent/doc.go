// Package queryevent is the structured query-log event bus: started,
// completed, and error events fan out to subscribers (a console sink, a
// metrics sink, a test spy), decoupling the executor from how those events
// are recorded. Grounded on the teacher's stats.go hook/option pattern
// (SlowQueryHook, StatsOption), generalized from a single slow-query
// callback to a typed multi-subscriber bus.
package queryevent
