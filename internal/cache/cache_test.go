package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/ocean-series-service/internal/domain"
	"github.com/couchcryptid/ocean-series-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func key(seed uint64) Key {
	return Key{Range: domain.YearRange{Start: 2000, End: 2005}, Scenario: domain.Baseline, Seed: seed}
}

func dataset(v float64) domain.NamedSeries {
	return domain.NamedSeries{
		"x": {Label: "x", Kind: domain.KindIndex, Points: []domain.Point{{Year: 2000, Value: v}}},
	}
}

// countingLoader returns dataset(v) and records how often it ran.
type countingLoader struct {
	calls atomic.Int32
	v     float64
}

func (l *countingLoader) load() (domain.NamedSeries, error) {
	l.calls.Add(1)
	return dataset(l.v), nil
}

func newTestCache(maxEntries int, ttl time.Duration, clock clockwork.Clock) (*Cache, *observability.Metrics) {
	m := observability.NewMetricsForTesting()
	return New(maxEntries, ttl, clock, m), m
}

func TestCache_HitAfterMiss(t *testing.T) {
	c, m := newTestCache(4, 0, clockwork.NewFakeClock())
	l := &countingLoader{v: 1}

	for range 3 {
		got, err := c.Get(context.Background(), key(1), l.load)
		require.NoError(t, err)
		assert.Equal(t, 1.0, got["x"].Points[0].Value)
	}

	assert.Equal(t, int32(1), l.calls.Load())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheEntries))
}

func TestCache_DistinctKeysMiss(t *testing.T) {
	c, _ := newTestCache(4, 0, nil)
	l := &countingLoader{}

	_, _ = c.Get(context.Background(), key(1), l.load)
	_, _ = c.Get(context.Background(), key(2), l.load)
	other := key(1)
	other.Scenario = domain.Worsening
	_, _ = c.Get(context.Background(), other, l.load)

	assert.Equal(t, int32(3), l.calls.Load())
	assert.Equal(t, 3, c.Len())
}

func TestCache_ReturnsCopies(t *testing.T) {
	c, _ := newTestCache(4, 0, nil)
	l := &countingLoader{v: 7}

	first, err := c.Get(context.Background(), key(1), l.load)
	require.NoError(t, err)
	first["x"].Points[0].Value = -100
	delete(first, "x")

	second, err := c.Get(context.Background(), key(1), l.load)
	require.NoError(t, err)
	assert.Equal(t, 7.0, second["x"].Points[0].Value)
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, 0, nil)
	l := &countingLoader{}
	ctx := context.Background()

	_, _ = c.Get(ctx, key(1), l.load)
	_, _ = c.Get(ctx, key(2), l.load)
	_, _ = c.Get(ctx, key(1), l.load) // 1 becomes most recent
	_, _ = c.Get(ctx, key(3), l.load) // evicts 2
	assert.Equal(t, int32(3), l.calls.Load())
	assert.Equal(t, 2, c.Len())

	_, _ = c.Get(ctx, key(1), l.load)
	assert.Equal(t, int32(3), l.calls.Load(), "key 1 should still be cached")

	_, _ = c.Get(ctx, key(2), l.load)
	assert.Equal(t, int32(4), l.calls.Load(), "key 2 should have been evicted")
}

func TestCache_TTL(t *testing.T) {
	clock := clockwork.NewFakeClock()
	c, _ := newTestCache(4, time.Minute, clock)
	l := &countingLoader{}
	ctx := context.Background()

	_, _ = c.Get(ctx, key(1), l.load)
	clock.Advance(59 * time.Second)
	_, _ = c.Get(ctx, key(1), l.load)
	assert.Equal(t, int32(1), l.calls.Load())

	clock.Advance(time.Second)
	_, _ = c.Get(ctx, key(1), l.load)
	assert.Equal(t, int32(2), l.calls.Load(), "entry should expire at ttl")
}

func TestCache_ErrorsNotCached(t *testing.T) {
	c, _ := newTestCache(4, 0, nil)
	boom := errors.New("boom")
	var calls int

	for range 2 {
		_, err := c.Get(context.Background(), key(1), func() (domain.NamedSeries, error) {
			calls++
			return nil, boom
		})
		require.ErrorIs(t, err, boom)
	}
	assert.Equal(t, 2, calls)
	assert.Zero(t, c.Len())
}

func TestCache_LoadPanicBecomesError(t *testing.T) {
	c, _ := newTestCache(4, 0, clockwork.NewFakeClock())

	_, err := c.Get(context.Background(), key(1), func() (domain.NamedSeries, error) {
		panic("makeslice: len out of range")
	})
	require.ErrorIs(t, err, ErrLoadPanicked)
	assert.Contains(t, err.Error(), "makeslice")
	assert.Zero(t, c.Len())

	l := &countingLoader{v: 2}
	got, err := c.Get(context.Background(), key(1), l.load)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got["x"].Points[0].Value)
}

func TestCache_ConcurrentMissesLoadOnce(t *testing.T) {
	c, _ := newTestCache(4, 0, nil)
	release := make(chan struct{})
	var calls atomic.Int32
	load := func() (domain.NamedSeries, error) {
		calls.Add(1)
		<-release
		return dataset(3), nil
	}

	var wg sync.WaitGroup
	results := make([]domain.NamedSeries, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Get(context.Background(), key(1), load)
			assert.NoError(t, err)
			results[i] = v
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, 3.0, r["x"].Points[0].Value)
	}
}

func TestCache_InvalidateDuringLoad(t *testing.T) {
	c, _ := newTestCache(4, 0, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	load := func() (domain.NamedSeries, error) {
		close(started)
		<-release
		return dataset(1), nil
	}

	done := make(chan domain.NamedSeries)
	go func() {
		v, _ := c.Get(context.Background(), key(1), load)
		done <- v
	}()

	<-started
	c.Invalidate(key(1))
	close(release)

	v := <-done
	assert.Equal(t, 1.0, v["x"].Points[0].Value, "caller still receives its result")
	assert.Zero(t, c.Len(), "stale load must not be stored")

	l := &countingLoader{v: 2}
	v, err := c.Get(context.Background(), key(1), l.load)
	require.NoError(t, err)
	assert.Equal(t, 2.0, v["x"].Points[0].Value)
	assert.Equal(t, int32(1), l.calls.Load())
}

func TestCache_Purge(t *testing.T) {
	c, m := newTestCache(4, 0, nil)
	l := &countingLoader{}
	ctx := context.Background()

	_, _ = c.Get(ctx, key(1), l.load)
	_, _ = c.Get(ctx, key(2), l.load)
	c.Purge()

	assert.Zero(t, c.Len())
	assert.Zero(t, testutil.ToFloat64(m.CacheEntries))

	_, _ = c.Get(ctx, key(1), l.load)
	assert.Equal(t, int32(3), l.calls.Load())
}

func TestCache_ContextCancelled(t *testing.T) {
	c, _ := newTestCache(4, 0, nil)
	release := make(chan struct{})
	finished := make(chan struct{})
	load := func() (domain.NamedSeries, error) {
		defer close(finished)
		<-release
		return dataset(1), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Get(ctx, key(1), load)
	require.ErrorIs(t, err, context.Canceled)

	close(release)
	<-finished
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "2000-2005|baseline|9", key(9).String())
}
