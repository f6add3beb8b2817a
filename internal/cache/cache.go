// Package cache memoizes generated datasets keyed by range, scenario and seed.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/couchcryptid/ocean-series-service/internal/domain"
	"github.com/couchcryptid/ocean-series-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// Key identifies one generation result.
type Key struct {
	Range    domain.YearRange
	Scenario domain.Scenario
	Seed     uint64
}

func (k Key) String() string {
	return fmt.Sprintf("%s|%s|%d", k.Range, k.Scenario, k.Seed)
}

// ErrLoadPanicked wraps a panic raised by a LoadFunc. Loads run on a
// singleflight goroutine, where an unrecovered panic would end the process.
var ErrLoadPanicked = errors.New("cache load panicked")

// LoadFunc computes the dataset for a key on a miss.
type LoadFunc func() (domain.NamedSeries, error)

// Cache is a thread-safe LRU of generated datasets with optional TTL.
// Concurrent misses on the same key share a single load.
type Cache struct {
	maxEntries int
	ttl        time.Duration
	clock      clockwork.Clock
	metrics    *observability.Metrics
	group      singleflight.Group

	mu      sync.Mutex
	entries map[Key]*entry
	head    *entry // most recently used
	tail    *entry // least recently used
	// generation advances on every invalidation; loads started under an
	// older generation are returned to their callers but not stored.
	generation uint64
}

type entry struct {
	key      Key
	value    domain.NamedSeries
	storedAt time.Time
	prev     *entry
	next     *entry
}

// New creates a cache holding at most maxEntries datasets. A ttl of zero keeps
// entries until they are evicted or invalidated.
func New(maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *Cache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache{
		maxEntries: maxEntries,
		ttl:        ttl,
		clock:      clock,
		metrics:    metrics,
		entries:    make(map[Key]*entry),
	}
}

// Get returns the dataset for key, calling load on a miss. The returned value
// is a deep copy the caller owns. Load errors are returned and not cached.
func (c *Cache) Get(ctx context.Context, key Key, load LoadFunc) (domain.NamedSeries, error) {
	if v, ok := c.lookup(key); ok {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
		return v.Clone(), nil
	}
	c.metrics.CacheLookups.WithLabelValues("miss").Inc()

	gen := c.currentGeneration()
	ch := c.group.DoChan(key.String(), func() (any, error) {
		v, err := safeLoad(load)
		if err != nil {
			return nil, err
		}
		c.store(key, v, gen)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(domain.NamedSeries).Clone(), nil
	}
}

func safeLoad(load LoadFunc) (v domain.NamedSeries, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrLoadPanicked, r)
		}
	}()
	return load()
}

// Invalidate drops key and prevents any in-flight load from storing a result.
func (c *Cache) Invalidate(key Key) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.group.Forget(key.String())
	if e, ok := c.entries[key]; ok {
		c.unlink(e)
	}
	c.metrics.CacheEntries.Set(float64(len(c.entries)))
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	for k := range c.entries {
		c.group.Forget(k.String())
	}
	clear(c.entries)
	c.head, c.tail = nil, nil
	c.metrics.CacheEntries.Set(0)
}

// Len returns the number of stored datasets, including expired ones not yet
// looked up.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

func (c *Cache) lookup(key Key) (domain.NamedSeries, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.clock.Since(e.storedAt) >= c.ttl {
		c.unlink(e)
		c.metrics.CacheEntries.Set(float64(len(c.entries)))
		return nil, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *Cache) store(key Key, value domain.NamedSeries, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		return
	}
	if e, ok := c.entries[key]; ok {
		e.value = value
		e.storedAt = c.clock.Now()
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: value, storedAt: c.clock.Now()}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.unlink(c.tail)
	}
	c.metrics.CacheEntries.Set(float64(len(c.entries)))
}

func (c *Cache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *Cache) addToFront(e *entry) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *Cache) remove(e *entry) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

// unlink removes e from both the list and the index.
func (c *Cache) unlink(e *entry) {
	if e == nil {
		return
	}
	delete(c.entries, e.key)
	c.remove(e)
}
