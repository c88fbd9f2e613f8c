package cache

import "sync/atomic"

// Stats holds running counters for a Manager, in the same atomic-counter
// style as the executor's query statistics.
type Stats struct {
	Hits      atomic.Int64
	StaleHits atomic.Int64
	Misses    atomic.Int64
}

// StatsSnapshot is a point-in-time, race-free read of Stats.
type StatsSnapshot struct {
	Hits      int64
	StaleHits int64
	Misses    int64
}

// HitRate returns (hits+staleHits)/(hits+staleHits+misses), or 0 when no
// lookups have been recorded.
func (s StatsSnapshot) HitRate() float64 {
	total := s.Hits + s.StaleHits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits+s.StaleHits) / float64(total)
}

func (s *Stats) snapshot() StatsSnapshot {
	return StatsSnapshot{
		Hits:      s.Hits.Load(),
		StaleHits: s.StaleHits.Load(),
		Misses:    s.Misses.Load(),
	}
}
