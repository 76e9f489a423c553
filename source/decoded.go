package source

import (
	"encoding/json"

	"github.com/dlshle/timedcache/cache"
	"github.com/dlshle/timedcache/errors"
)

// Decoded wraps a raw []byte source with a decode step, producing the typed
// source a cache.View expects.
func Decoded[T any](src cache.Source[[]byte], decode func([]byte) (T, error)) cache.Source[T] {
	return cache.FetchFunc[T](func(key string) (T, error) {
		var zero T
		raw, err := src.Fetch(key)
		if err != nil {
			return zero, err
		}
		v, err := decode(raw)
		if err != nil {
			return zero, errors.WrapWithStackTrace(err)
		}
		return v, nil
	})
}

// JSON is Decoded with a JSON unmarshalling step.
func JSON[T any](src cache.Source[[]byte]) cache.Source[T] {
	return Decoded(src, func(raw []byte) (T, error) {
		var holder T
		err := json.Unmarshal(raw, &holder)
		return holder, err
	})
}
