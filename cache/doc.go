// Package cache provides a concurrency-safe, read-through cache with a single
// sliding TTL shared by every entry: a value read while still fresh has its
// age reset, a value found older than the TTL is evicted and refetched from
// its source. The table is guarded by an upgradable reader/writer lock so any
// number of fresh reads proceed in parallel while eviction and insertion are
// serialized.
//
// Example usage:
//
//	c := cache.New(5 * time.Second)
//
//	// raw, untyped access against the flat keyspace
//	v, err := c.Get("user1", func(key string) (any, error) {
//		return lookupUser(key)
//	})
//
//	// typed access, one namespaced view per source kind
//	users := cache.NewView[User](c, "user", cache.FetchFunc[User](lookupUser))
//	u, err := users.Get("user1")
//
// KEY COLLISIONS: the raw Get/GetAs surface operates on one flat keyspace
// shared across every value type the cache fronts. If two different sources
// are queried with the same string key, whichever populates first owns the
// slot; the later caller still receives its own freshly fetched value, but
// that value is not retained and every subsequent hit on the key yields the
// first source's payload. Callers using the raw surface must guarantee key
// uniqueness across sources themselves. View does this for you by prefixing
// every key with its kind, and is the recommended surface.
//
// By default a miss runs its fetch while still holding the shared table
// intent: reads of other keys proceed, but every eviction and insertion in
// the table waits for the fetch to finish, so one slow source call stalls
// writers cache-wide. Constructing the cache with WithCoalescedFetch instead
// releases all locks around the fetch and deduplicates concurrent fetches of
// the same key, at the cost of a key being briefly absent from the table
// while its refetch is in flight.
package cache
