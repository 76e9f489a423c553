package cache

import (
	"github.com/dlshle/timedcache/async"
	"github.com/dlshle/timedcache/logger"
)

type Option func(*TimedCache)

// WithCoalescedFetch makes misses fetch outside the table locks with
// concurrent fetches of the same key deduplicated, instead of the default
// fetch-under-shared-intent. See the package doc for the trade-off.
func WithCoalescedFetch() Option {
	return func(c *TimedCache) {
		c.flights = async.NewFlightGroup[any]()
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *TimedCache) {
		c.logger = l
	}
}
