package executor

import (
	"fmt"
	"sync/atomic"
	"time"
)

// Stats holds atomic execution counters, safe for concurrent use across
// goroutines driving the same Engine.
type Stats struct {
	TotalQueries  atomic.Int64
	TotalDuration atomic.Int64 // nanoseconds
	SlowQueries   atomic.Int64
	Errors        atomic.Int64
}

func (s *Stats) record(d time.Duration, failed bool) {
	s.TotalQueries.Add(1)
	s.TotalDuration.Add(int64(d))
	if failed {
		s.Errors.Add(1)
	}
}

// Snapshot returns a point-in-time copy of the counters.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset zeroes every counter.
func (s *Stats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is an immutable copy of [Stats] at one instant.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgDuration returns the mean query duration, or zero if no queries ran.
func (s StatsSnapshot) AvgDuration() time.Duration {
	if s.TotalQueries == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(s.TotalQueries)
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf("queries=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalDuration, s.AvgDuration(), s.SlowQueries, s.Errors)
}
