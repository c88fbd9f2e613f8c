package queryevent

import "time"

// Kind identifies which point in the execution lifecycle an Event
// represents, per spec.md §4.5.
type Kind string

const (
	Started   Kind = "started"
	Completed Kind = "completed"
	Failed    Kind = "error"
)

// CacheStatus classifies how a cache-fronted execution was served.
type CacheStatus string

const (
	CacheBypass CacheStatus = "bypass"
	CacheHit    CacheStatus = "hit"
	CacheStale  CacheStatus = "stale"
	CacheMiss   CacheStatus = "miss"
)

// Event is one query-log entry. Fields not relevant to Kind are left zero
// (Rows/Duration are unset on Started; Err is unset except on Failed).
// CacheStatus/CacheKey are set only for executions routed through the
// cache manager.
type Event struct {
	Kind        Kind
	QueryID     string
	Adapter     string
	SQL         string
	Params      []any
	StartedAt   time.Time
	Duration    time.Duration
	Rows        int
	Err         error
	CacheStatus CacheStatus
	CacheKey    string
}
