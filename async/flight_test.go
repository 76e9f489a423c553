package async

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	test_utils "github.com/dlshle/timedcache/test_utils"
)

func TestFlightGroup(t *testing.T) {
	group := NewFlightGroup[int]()
	test_utils.NewGroup("flight group", "deduplicates concurrent keyed tasks").Cases(
		test_utils.NewWithDescription("concurrent callers share one execution", "", func() {
			var counter int32
			incr := func() (int, error) {
				time.Sleep(100 * time.Millisecond)
				return int(atomic.AddInt32(&counter, 1)), nil
			}
			var wg sync.WaitGroup
			for i := 0; i < 100; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					group.Do("incr", incr)
				}()
			}
			result, _ := group.Do("incr", incr)
			wg.Wait()
			test_utils.AssertEquals(result, int(counter))
			test_utils.AssertEquals(int(counter), 1)
		}),
		test_utils.NewWithDescription("sequential calls run again", "", func() {
			var counter int32
			incr := func() (int, error) {
				return int(atomic.AddInt32(&counter, 1)), nil
			}
			first, _ := group.Do("seq", incr)
			second, _ := group.Do("seq", incr)
			test_utils.AssertEquals(first, 1)
			test_utils.AssertEquals(second, 2)
		}),
		test_utils.NewWithDescription("distinct keys do not share flights", "", func() {
			var counterA, counterB int32
			incrA := func() (int, error) {
				time.Sleep(50 * time.Millisecond)
				return int(atomic.AddInt32(&counterA, 1)), nil
			}
			incrB := func() (int, error) {
				time.Sleep(50 * time.Millisecond)
				return int(atomic.AddInt32(&counterB, 1)), nil
			}
			var wg sync.WaitGroup
			for i := 0; i < 50; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					group.Do("a", incrA)
				}()
				wg.Add(1)
				go func() {
					defer wg.Done()
					group.Do("b", incrB)
				}()
			}
			wg.Wait()
			test_utils.AssertEquals(counterA, counterB)
			test_utils.AssertEquals(int(counterA), 1)
		}),
	).Do(t)
}
