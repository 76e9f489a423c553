package cache

import (
	"sync/atomic"
	"time"
)

// entry timestamps are touched by readers holding only the shared table
// intent, so refreshedAt goes through sync/atomic rather than the table lock.
type entry struct {
	key         string
	value       any
	refreshedAt int64 // unix nanos of the last access that found the entry valid
}

func newEntry(key string, value any) *entry {
	return &entry{
		key:         key,
		value:       value,
		refreshedAt: time.Now().UnixNano(),
	}
}

func (e *entry) touch() {
	atomic.StoreInt64(&e.refreshedAt, time.Now().UnixNano())
}

func (e *entry) lastRefreshed() int64 {
	return atomic.LoadInt64(&e.refreshedAt)
}
