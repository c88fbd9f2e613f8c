package cache_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/analytiq/cache"
	"github.com/syssam/analytiq/queryevent"
)

func TestManagerCacheFirstHitAndMiss(t *testing.T) {
	provider := cache.NewLRUProvider(10)
	mgr := cache.New(provider)
	ctx := context.Background()

	var calls atomic.Int32
	fetch := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("rows"), nil
	}

	payload, status, err := mgr.Execute(ctx, "k1", fetch, cache.Options{Mode: cache.CacheFirst, TTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, []byte("rows"), payload)
	assert.Equal(t, queryevent.CacheMiss, status)

	payload, status, err = mgr.Execute(ctx, "k1", fetch, cache.Options{Mode: cache.CacheFirst, TTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, []byte("rows"), payload)
	assert.Equal(t, queryevent.CacheHit, status)
	assert.Equal(t, int32(1), calls.Load())

	snap := mgr.Stats()
	assert.Equal(t, int64(1), snap.Hits)
	assert.Equal(t, int64(1), snap.Misses)
}

// TestManagerCacheFirstSharesConcurrentFetch drives spec.md §8 Scenario
// 4: two concurrent executions against an empty cache under cache-first
// must dedupe into a single underlying fetch, with the leader counted as
// a miss and the follower that rode the shared result counted as a hit.
func TestManagerCacheFirstSharesConcurrentFetch(t *testing.T) {
	provider := cache.NewLRUProvider(10)
	mgr := cache.New(provider)
	ctx := context.Background()

	var calls atomic.Int32
	started := make(chan struct{})
	gate := make(chan struct{})
	fetch := func(context.Context) ([]byte, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-gate
		return []byte("rows"), nil
	}

	statuses := make([]queryevent.CacheStatus, 2)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, status, err := mgr.Execute(ctx, "k1", fetch, cache.Options{Mode: cache.CacheFirst, TTL: time.Minute})
		require.NoError(t, err)
		statuses[0] = status
	}()

	<-started // leader is now blocked inside fetch, in flight under singleflight

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, status, err := mgr.Execute(ctx, "k1", fetch, cache.Options{Mode: cache.CacheFirst, TTL: time.Minute})
		require.NoError(t, err)
		statuses[1] = status
	}()

	close(gate)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	assert.ElementsMatch(t, []queryevent.CacheStatus{queryevent.CacheMiss, queryevent.CacheHit}, statuses)

	snap := mgr.Stats()
	assert.Equal(t, int64(1), snap.Hits)
	assert.Equal(t, int64(1), snap.Misses)
	assert.Equal(t, int64(0), snap.StaleHits)
}

func TestManagerBypassNeverCaches(t *testing.T) {
	provider := cache.NewLRUProvider(10)
	mgr := cache.New(provider)
	ctx := context.Background()

	var calls atomic.Int32
	fetch := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("x"), nil
	}

	_, status, err := mgr.Execute(ctx, "k1", fetch, cache.Options{Mode: cache.Bypass})
	require.NoError(t, err)
	assert.Equal(t, queryevent.CacheBypass, status)

	_, status, err = mgr.Execute(ctx, "k1", fetch, cache.Options{Mode: cache.Bypass})
	require.NoError(t, err)
	assert.Equal(t, queryevent.CacheBypass, status)
	assert.Equal(t, int32(2), calls.Load())
}

func TestManagerStaleWhileRevalidateServesStaleImmediately(t *testing.T) {
	provider := cache.NewLRUProvider(10)
	mgr := cache.New(provider)
	ctx := context.Background()

	fetch := func(context.Context) ([]byte, error) { return []byte("v1"), nil }
	_, _, err := mgr.Execute(ctx, "k1", fetch, cache.Options{Mode: cache.StaleWhileRevalidate, TTL: -time.Second, StaleTTL: time.Minute})
	require.NoError(t, err)

	payload, status, err := mgr.Execute(ctx, "k1", fetch, cache.Options{Mode: cache.StaleWhileRevalidate, TTL: -time.Second, StaleTTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, queryevent.CacheStale, status)
	assert.Equal(t, []byte("v1"), payload)
}

func TestManagerNetworkFirstFallsBackOnFetchFailure(t *testing.T) {
	provider := cache.NewLRUProvider(10)
	mgr := cache.New(provider)
	ctx := context.Background()

	ok := func(context.Context) ([]byte, error) { return []byte("good"), nil }
	_, _, err := mgr.Execute(ctx, "k1", ok, cache.Options{Mode: cache.NetworkFirst, TTL: time.Minute})
	require.NoError(t, err)

	failing := func(context.Context) ([]byte, error) { return nil, assertErr }
	payload, status, err := mgr.Execute(ctx, "k1", failing, cache.Options{Mode: cache.NetworkFirst, TTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, []byte("good"), payload)
	assert.Equal(t, queryevent.CacheHit, status)
}

var assertErr = assertError("boom")

type assertError string

func (e assertError) Error() string { return string(e) }

func TestManagerInvalidateTags(t *testing.T) {
	provider := cache.NewLRUProvider(10)
	mgr := cache.New(provider)
	ctx := context.Background()

	fetch := func(context.Context) ([]byte, error) { return []byte("x"), nil }
	_, _, err := mgr.Execute(ctx, "k1", fetch, cache.Options{Mode: cache.CacheFirst, TTL: time.Minute, Tags: []string{"region:north"}})
	require.NoError(t, err)

	require.NoError(t, mgr.InvalidateTags(ctx, "region:north"))

	var calls atomic.Int32
	counted := func(context.Context) ([]byte, error) {
		calls.Add(1)
		return []byte("x"), nil
	}
	_, status, err := mgr.Execute(ctx, "k1", counted, cache.Options{Mode: cache.CacheFirst, TTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, queryevent.CacheMiss, status)
	assert.Equal(t, int32(1), calls.Load())
}

func TestManagerWarm(t *testing.T) {
	provider := cache.NewLRUProvider(10)
	mgr := cache.New(provider)
	ctx := context.Background()

	err := mgr.Warm(ctx, map[string]cache.FetchFunc{
		"k1": func(context.Context) ([]byte, error) { return []byte("a"), nil },
	}, time.Minute)
	require.NoError(t, err)

	var called bool
	_, status, err := mgr.Execute(ctx, "k1", func(context.Context) ([]byte, error) {
		called = true
		return []byte("b"), nil
	}, cache.Options{Mode: cache.CacheFirst, TTL: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, queryevent.CacheHit, status)
	assert.False(t, called)
}

func TestDeriveKeyIsDeterministic(t *testing.T) {
	k1 := cache.DeriveKey("clickhouse", "SELECT 1", []any{1, "a"}, "tenant-1")
	k2 := cache.DeriveKey("clickhouse", "SELECT 1", []any{1, "a"}, "tenant-1")
	k3 := cache.DeriveKey("clickhouse", "SELECT 1", []any{1, "a"}, "tenant-2")
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}
