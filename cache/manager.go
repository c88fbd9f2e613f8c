package cache

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"

	"github.com/syssam/analytiq/queryevent"
)

// Mode selects a Manager's read-through behavior for a given execution.
type Mode int

const (
	// Bypass never consults or populates the cache.
	Bypass Mode = iota
	// CacheFirst (read-through) returns a fresh hit immediately;
	// otherwise fetches, stores, and returns.
	CacheFirst
	// StaleWhileRevalidate returns a stale hit immediately and
	// refreshes in the background; behaves like CacheFirst otherwise.
	StaleWhileRevalidate
	// NetworkFirst always fetches, falling back to a cached entry
	// (of any freshness) only on fetch failure.
	NetworkFirst
)

// FetchFunc executes the underlying query and returns its row payload as
// an opaque, already-encoded byte slice (the caller owns encoding, so the
// Manager never needs a generic row type).
type FetchFunc func(ctx context.Context) ([]byte, error)

// Options configures a single Execute call.
type Options struct {
	Mode     Mode
	TTL      time.Duration
	StaleTTL time.Duration
	Tags     []string
	NoDedupe bool // disables singleflight sharing for this call
}

// Manager fronts a Provider with the modes, dedupe, and statistics
// spec.md §4.7 describes.
type Manager struct {
	provider Provider
	group    singleflight.Group
	stats    Stats
	bus      *queryevent.Bus
	metrics  *promMetrics
	now      func() time.Time
}

// ManagerOption configures a Manager at construction time.
type ManagerOption func(*Manager)

// WithBus attaches an event bus so each Execute emits a Completed or
// Failed event carrying CacheStatus/CacheKey.
func WithBus(bus *queryevent.Bus) ManagerOption {
	return func(m *Manager) { m.bus = bus }
}

// WithPrometheusRegisterer additionally exports hit/miss/stale counters
// as Prometheus metrics under namespace.
func WithPrometheusRegisterer(reg prometheus.Registerer, namespace string) ManagerOption {
	return func(m *Manager) { m.metrics = newPromMetrics(reg, namespace) }
}

// New creates a Manager backed by provider.
func New(provider Provider, opts ...ManagerOption) *Manager {
	m := &Manager{provider: provider, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Execute runs fetch under the cache policy described by opts, returning
// the served payload and the CacheStatus it was served under.
func (m *Manager) Execute(ctx context.Context, key string, fetch FetchFunc, opts Options) ([]byte, queryevent.CacheStatus, error) {
	if opts.Mode == Bypass {
		payload, err := fetch(ctx)
		m.emit(key, queryevent.CacheBypass, err)
		return payload, queryevent.CacheBypass, err
	}

	dedupe := !opts.NoDedupe
	entry, found, getErr := m.provider.Get(ctx, key)
	if getErr != nil {
		found = false
	}

	switch opts.Mode {
	case NetworkFirst:
		payload, shared, err := m.fetchAndStore(ctx, key, fetch, opts, dedupe)
		if err == nil {
			return payload, m.recordFetchOutcome(key, shared), nil
		}
		if found {
			m.recordHit()
			m.emit(key, queryevent.CacheHit, nil)
			return entry.Payload, queryevent.CacheHit, nil
		}
		m.emit(key, queryevent.CacheMiss, err)
		return nil, queryevent.CacheMiss, err

	case StaleWhileRevalidate:
		if found {
			switch entry.freshness(m.now()) {
			case Fresh:
				m.recordHit()
				m.emit(key, queryevent.CacheHit, nil)
				return entry.Payload, queryevent.CacheHit, nil
			case Stale:
				go func() {
					bg := context.WithoutCancel(ctx)
					_, _, _ = m.fetchAndStore(bg, key, fetch, opts, dedupe)
				}()
				m.recordStale()
				m.emit(key, queryevent.CacheStale, nil)
				return entry.Payload, queryevent.CacheStale, nil
			}
		}
		payload, shared, err := m.fetchAndStore(ctx, key, fetch, opts, dedupe)
		if err != nil {
			m.emit(key, queryevent.CacheMiss, err)
			return nil, queryevent.CacheMiss, err
		}
		return payload, m.recordFetchOutcome(key, shared), nil

	default: // CacheFirst
		if found && entry.freshness(m.now()) == Fresh {
			m.recordHit()
			m.emit(key, queryevent.CacheHit, nil)
			return entry.Payload, queryevent.CacheHit, nil
		}
		payload, shared, err := m.fetchAndStore(ctx, key, fetch, opts, dedupe)
		if err != nil {
			m.emit(key, queryevent.CacheMiss, err)
			return nil, queryevent.CacheMiss, err
		}
		return payload, m.recordFetchOutcome(key, shared), nil
	}
}

// recordFetchOutcome records and emits the right status for a completed
// fetchAndStore call: the singleflight leader is a miss, but a follower
// that only rode the leader's in-flight fetch (shared == true) observed
// the cache the way a hit would have, per spec.md §8 Scenario 4.
func (m *Manager) recordFetchOutcome(key string, shared bool) queryevent.CacheStatus {
	if shared {
		m.recordHit()
		m.emit(key, queryevent.CacheHit, nil)
		return queryevent.CacheHit
	}
	m.recordMiss()
	m.emit(key, queryevent.CacheMiss, nil)
	return queryevent.CacheMiss
}

func (m *Manager) fetchAndStore(ctx context.Context, key string, fetch FetchFunc, opts Options, dedupe bool) ([]byte, bool, error) {
	do := func() (any, error) { return fetch(ctx) }
	var (
		v      any
		err    error
		shared bool
	)
	if dedupe {
		v, err, shared = m.group.Do(key, do)
	} else {
		v, err = do()
	}
	if err != nil {
		return nil, false, err
	}
	payload := v.([]byte)
	if err := m.provider.Set(ctx, key, Entry{
		Payload:   payload,
		CreatedAt: m.now(),
		TTL:       opts.TTL,
		StaleTTL:  opts.StaleTTL,
		Tags:      opts.Tags,
	}); err != nil {
		// serve the freshly fetched result even if the write-back failed
		return payload, shared, nil
	}
	return payload, shared, nil
}

func (m *Manager) recordHit() {
	m.stats.Hits.Add(1)
	if m.metrics != nil {
		m.metrics.hits.Inc()
	}
}

func (m *Manager) recordStale() {
	m.stats.StaleHits.Add(1)
	if m.metrics != nil {
		m.metrics.staleHits.Inc()
	}
}

func (m *Manager) recordMiss() {
	m.stats.Misses.Add(1)
	if m.metrics != nil {
		m.metrics.misses.Inc()
	}
}

func (m *Manager) emit(key string, status queryevent.CacheStatus, err error) {
	if m.bus == nil {
		return
	}
	kind := queryevent.Completed
	if err != nil {
		kind = queryevent.Failed
	}
	m.bus.Publish(queryevent.Event{Kind: kind, CacheStatus: status, CacheKey: key, Err: err, StartedAt: m.now()})
}

// InvalidateTags removes every entry that declared any of the given tags.
func (m *Manager) InvalidateTags(ctx context.Context, tags ...string) error {
	for _, tag := range tags {
		if err := m.provider.DeleteByTag(ctx, tag); err != nil {
			return err
		}
	}
	return nil
}

// Warm executes each factory sequentially and stores its result under its
// map key, so a cold cache can be pre-populated before serving traffic.
func (m *Manager) Warm(ctx context.Context, entries map[string]FetchFunc, ttl time.Duration) error {
	for key, fetch := range entries {
		payload, err := fetch(ctx)
		if err != nil {
			return err
		}
		if err := m.provider.Set(ctx, key, Entry{Payload: payload, CreatedAt: m.now(), TTL: ttl}); err != nil {
			return err
		}
	}
	return nil
}

// Stats returns a snapshot of hit/miss/stale counters.
func (m *Manager) Stats() StatsSnapshot { return m.stats.snapshot() }
