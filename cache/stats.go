package cache

import "sync/atomic"

// Stats is a point-in-time snapshot of the cache's counters.
type Stats struct {
	Hits    uint32
	Misses  uint32
	Expired uint32
}

func (c *TimedCache) Stats() Stats {
	return Stats{
		Hits:    atomic.LoadUint32(&c.hitCount),
		Misses:  atomic.LoadUint32(&c.missCount),
		Expired: atomic.LoadUint32(&c.expiredCount),
	}
}

func (c *TimedCache) hit(key string) {
	atomic.AddUint32(&c.hitCount, 1)
	c.logger.Debugf("fetch %s hit", key)
}

func (c *TimedCache) miss(key string) {
	atomic.AddUint32(&c.missCount, 1)
	c.logger.Debugf("fetch %s miss", key)
}

func (c *TimedCache) expire(key string) {
	atomic.AddUint32(&c.expiredCount, 1)
	c.logger.Debugf("entry %s expired, evicting", key)
}
