// Package source provides implementations of the cache.Source contract: the
// slow backends a TimedCache fronts.
package source

import (
	"sync"
	"time"

	"github.com/dlshle/timedcache/errors"
)

// Static serves from a fixed in-memory table, standing in for a slow backend
// in demos and tests. An optional artificial delay simulates fetch latency.
type Static[T any] struct {
	mu     sync.RWMutex
	values map[string]T
	delay  time.Duration
}

func NewStatic[T any](values map[string]T) *Static[T] {
	if values == nil {
		values = make(map[string]T)
	}
	return &Static[T]{values: values}
}

func (s *Static[T]) WithDelay(delay time.Duration) *Static[T] {
	s.delay = delay
	return s
}

func (s *Static[T]) Fetch(key string) (T, error) {
	if s.delay > 0 {
		time.Sleep(s.delay)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, exists := s.values[key]
	if !exists {
		var zero T
		return zero, errors.Errorf("static source: no value for key %s", key)
	}
	return v, nil
}

func (s *Static[T]) Put(key string, value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

func (s *Static[T]) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}
