package cache

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	test_utils "github.com/dlshle/timedcache/test_utils"
)

func concurrentGets(c *TimedCache, key string, callers int, fetch Fetch) []any {
	results := make([]any, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := c.Get(key, fetch)
			test_utils.AssertNoError(err)
			results[i] = v
		}(i)
	}
	wg.Wait()
	return results
}

func TestTimedCacheConcurrentMiss(t *testing.T) {
	test_utils.NewGroup("concurrent miss", "cold key hammered by many callers").Cases(
		test_utils.NewWithDescription("locked fetch", "at most one entry, source may fetch more than once", func() {
			c := New(time.Second)
			var fetches int32
			slow := func(key string) (any, error) {
				time.Sleep(20 * time.Millisecond)
				return int(atomic.AddInt32(&fetches, 1)), nil
			}
			results := concurrentGets(c, "cold", 50, slow)
			for _, v := range results {
				_, ok := v.(int)
				test_utils.AssertTrue(ok)
			}
			test_utils.AssertEquals(c.Len(), 1)
			test_utils.AssertTrue(atomic.LoadInt32(&fetches) >= 1)
		}),
		test_utils.NewWithDescription("coalesced fetch", "exactly one in-flight fetch shared by all callers", func() {
			c := New(time.Second, WithCoalescedFetch())
			var fetches int32
			slow := func(key string) (any, error) {
				time.Sleep(50 * time.Millisecond)
				return int(atomic.AddInt32(&fetches, 1)), nil
			}
			results := concurrentGets(c, "cold", 50, slow)
			for _, v := range results {
				test_utils.AssertEquals(v.(int), 1)
			}
			test_utils.AssertEquals(c.Len(), 1)
			test_utils.AssertEquals(int(atomic.LoadInt32(&fetches)), 1)
		}),
	).Do(t)
}

func TestTimedCacheConcurrentReadersAndExpiry(t *testing.T) {
	c := New(50 * time.Millisecond)
	var fetches int32
	fetch := func(key string) (any, error) {
		return key + "-" + string(rune('a'+atomic.AddInt32(&fetches, 1)%26)), nil
	}
	keys := []string{"k1", "k2", "k3", "k4"}

	readerFor := func(key string) func() {
		return func() {
			deadline := time.Now().Add(300 * time.Millisecond)
			for time.Now().Before(deadline) {
				v, err := c.Get(key, fetch)
				test_utils.AssertNoError(err)
				// a returned value always corresponds to the requested key
				test_utils.AssertEquals(v.(string)[:2], key)
			}
		}
	}
	test_utils.NewGroup("reader storm", "expiring entries under constant concurrent access").
		Concurrently("hammer all keys", "",
			readerFor(keys[0]), readerFor(keys[0]), readerFor(keys[1]), readerFor(keys[1]),
			readerFor(keys[2]), readerFor(keys[2]), readerFor(keys[3]), readerFor(keys[3]),
		).
		Then("table holds at most one entry per key", func() {
			test_utils.AssertTrue(c.Len() <= len(keys))
		}).
		Do(t)
}

func TestTimedCacheConcurrentMixedTypes(t *testing.T) {
	c := New(time.Second)
	userView := NewView[int](c, "user", FetchFunc[int](func(key string) (int, error) {
		time.Sleep(5 * time.Millisecond)
		return len(key), nil
	}))
	productView := NewView[string](c, "product", FetchFunc[string](func(key string) (string, error) {
		time.Sleep(5 * time.Millisecond)
		return key + "!", nil
	}))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := userView.Get("42")
			test_utils.AssertNoError(err)
			test_utils.AssertEquals(v, 2)
		}()
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := productView.Get("42")
			test_utils.AssertNoError(err)
			test_utils.AssertEquals(v, "42!")
		}()
	}
	wg.Wait()
	// same raw key, two kinds, two independent slots
	if c.Len() != 2 {
		t.Errorf("expected one entry per kind, got %d", c.Len())
	}
}
