package cache

// Source is the slow collaborator a cache fronts: given a key it produces a
// value or fails. Implementations must be safe for concurrent use; the cache
// makes no serialization guarantee across fetches.
type Source[T any] interface {
	Fetch(key string) (T, error)
}

// FetchFunc adapts a plain function to a Source.
type FetchFunc[T any] func(key string) (T, error)

func (f FetchFunc[T]) Fetch(key string) (T, error) {
	return f(key)
}

// GetAs is the typed front of TimedCache.Get. A hit whose stored payload is
// not a T means the key collided with a different source kind on the flat
// keyspace; it degrades to a miss: the source is consulted and the caller
// gets its own freshly fetched value while the table keeps the slot's first
// occupant (see the package doc).
func GetAs[T any](c *TimedCache, key string, source Source[T]) (T, error) {
	var zero T
	v, err := c.Get(key, func(k string) (any, error) {
		return source.Fetch(k)
	})
	if err != nil {
		return zero, err
	}
	typed, ok := v.(T)
	if !ok {
		return source.Fetch(key)
	}
	return typed, nil
}

// View is a typed, namespaced window onto a shared TimedCache. Every view on
// one cache shares its TTL, its table and its locks; keys are prefixed with
// the view's kind so distinct kinds can never collide.
type View[T any] struct {
	cache  *TimedCache
	kind   string
	source Source[T]
}

func NewView[T any](c *TimedCache, kind string, source Source[T]) *View[T] {
	return &View[T]{
		cache:  c,
		kind:   kind,
		source: source,
	}
}

func (v *View[T]) Get(key string) (T, error) {
	// the source sees the caller's key, the table sees the namespaced one
	return GetAs[T](v.cache, v.compositeKey(key), FetchFunc[T](func(string) (T, error) {
		return v.source.Fetch(key)
	}))
}

func (v *View[T]) Has(key string) bool {
	return v.cache.Has(v.compositeKey(key))
}

func (v *View[T]) Evict(key string) bool {
	return v.cache.Evict(v.compositeKey(key))
}

func (v *View[T]) Kind() string {
	return v.kind
}

func (v *View[T]) compositeKey(key string) string {
	return v.kind + "/" + key
}
