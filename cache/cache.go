package cache

import (
	"os"
	"time"

	"github.com/dlshle/timedcache/async"
	"github.com/dlshle/timedcache/lock"
	"github.com/dlshle/timedcache/logger"
)

// DefaultTTL is used when New is given a non-positive duration.
const DefaultTTL = 5 * time.Second

// Fetch produces the value for a key on a cache miss. It may be slow and must
// be safe for concurrent invocation.
type Fetch func(key string) (any, error)

// TimedCache is a read-through cache over a single flat keyspace with one
// sliding TTL for all entries. See the package doc for the keyspace collision
// hazard and the two fetch modes.
type TimedCache struct {
	entries map[string]*entry
	ttl     time.Duration
	lock    *lock.UpgradableRWMutex
	flights *async.FlightGroup[any] // nil unless coalesced fetch is enabled
	logger  logger.Logger

	hitCount     uint32
	missCount    uint32
	expiredCount uint32
}

func New(ttl time.Duration, opts ...Option) *TimedCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &TimedCache{
		entries: make(map[string]*entry),
		ttl:     ttl,
		lock:    lock.NewUpgradableRWMutex(),
		logger:  logger.StdOutLevelLogger("[TimedCache]").WithWriter(logger.NewNoopWriter()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value cached under key, consulting fetch when the key is
// absent or its entry has aged past the TTL. A fresh hit resets the entry's
// age (sliding expiry); an expired entry is evicted before the refetch. On
// fetch failure the error is returned as-is and the table is left untouched.
//
// When several callers populate the same key concurrently, the first
// insertion wins the slot and is never overwritten; the later callers still
// return their own fetched values.
func (c *TimedCache) Get(key string, fetch Fetch) (any, error) {
	c.lock.RLock()
	if e, ok := c.fresh(key); ok {
		e.touch()
		v := e.value
		c.lock.RUnlock()
		c.hit(key)
		return v, nil
	}
	if c.flights != nil {
		return c.coalescedPopulate(key, fetch)
	}
	return c.lockedPopulate(key, fetch)
}

// lockedPopulate runs the fetch while still holding the shared intent, the
// default mode: reads of other keys proceed, but eviction and insertion
// anywhere in the table wait for the fetch to finish. Entered holding the
// shared intent, returns holding nothing.
func (c *TimedCache) lockedPopulate(key string, fetch Fetch) (any, error) {
	if v, ok := c.evictExpired(key); ok {
		c.lock.RUnlock()
		c.hit(key)
		return v, nil
	}
	c.miss(key)
	v, err := fetch(key)
	if err != nil {
		c.lock.RUnlock()
		return nil, err
	}
	c.insert(key, v)
	c.lock.RUnlock()
	return v, nil
}

// coalescedPopulate drops every lock before fetching, so a slow source only
// blocks callers of its own key, and concurrent fetches of the key are
// deduplicated through the flight group. The key is absent from the table
// while the fetch is in flight. Entered holding the shared intent, returns
// holding nothing.
func (c *TimedCache) coalescedPopulate(key string, fetch Fetch) (any, error) {
	if v, ok := c.evictExpired(key); ok {
		c.lock.RUnlock()
		c.hit(key)
		return v, nil
	}
	c.lock.RUnlock()
	c.miss(key)
	v, err := c.flights.Do(key, func() (any, error) {
		return fetch(key)
	})
	if err != nil {
		return nil, err
	}
	c.lock.Lock()
	if _, exists := c.entries[key]; !exists {
		c.entries[key] = newEntry(key, v)
	}
	c.lock.Unlock()
	return v, nil
}

// evictExpired escalates to exclusive, removes the entry under key if it is
// still there and still expired, and downgrades back to the shared intent.
// The escalation may not be gap-free, so the slot is re-validated under the
// exclusive hold: if another caller refreshed it in the meantime the fresh
// value is reported instead of evicted. Entered and left holding the shared
// intent.
func (c *TimedCache) evictExpired(key string) (any, bool) {
	c.lock.Upgrade()
	if e, exists := c.entries[key]; exists {
		if !c.expired(e) {
			e.touch()
			v := e.value
			c.lock.Downgrade()
			return v, true
		}
		delete(c.entries, key)
		c.expire(key)
	}
	c.lock.Downgrade()
	return nil, false
}

// insert escalates to exclusive and claims the slot only if no entry exists,
// never overwriting a concurrent populate. Entered and left holding the
// shared intent.
func (c *TimedCache) insert(key string, v any) {
	c.lock.Upgrade()
	if _, exists := c.entries[key]; !exists {
		c.entries[key] = newEntry(key, v)
	}
	c.lock.Downgrade()
}

func (c *TimedCache) fresh(key string) (*entry, bool) {
	e, exists := c.entries[key]
	if !exists || c.expired(e) {
		return nil, false
	}
	return e, true
}

func (c *TimedCache) expired(e *entry) bool {
	return time.Now().UnixNano()-e.lastRefreshed() >= int64(c.ttl)
}

// TTL returns the time-to-live shared by every entry, fixed at construction.
func (c *TimedCache) TTL() time.Duration {
	return c.ttl
}

// Has reports whether a still-fresh entry exists for key, without refreshing
// its age.
func (c *TimedCache) Has(key string) bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	_, ok := c.fresh(key)
	return ok
}

// Len returns the number of entries currently in the table, including ones
// that have aged out but have not yet been observed and evicted.
func (c *TimedCache) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.entries)
}

// Keys returns the keys currently in the table.
func (c *TimedCache) Keys() []string {
	c.lock.RLock()
	defer c.lock.RUnlock()
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	return keys
}

// Evict removes the entry under key regardless of freshness and reports
// whether one was present.
func (c *TimedCache) Evict(key string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()
	if _, exists := c.entries[key]; !exists {
		return false
	}
	delete(c.entries, key)
	return true
}

// Clear removes every entry.
func (c *TimedCache) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.entries = make(map[string]*entry)
}

// Verbose toggles hit/miss/eviction logging to stdout.
func (c *TimedCache) Verbose(use bool) {
	if use {
		c.logger.Writer(logger.NewConsoleLogWriter(os.Stdout))
	} else {
		c.logger.Writer(logger.NewNoopWriter())
	}
}
