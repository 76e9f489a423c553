package lock

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestUpgradableRWMutexSharedReaders(t *testing.T) {
	m := NewUpgradableRWMutex()
	var concurrent int32
	var peak int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RLock()
			n := atomic.AddInt32(&concurrent, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if n <= old || atomic.CompareAndSwapInt32(&peak, old, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&concurrent, -1)
			m.RUnlock()
		}()
	}
	wg.Wait()
	if peak < 2 {
		t.Errorf("expected readers to overlap, peak concurrency was %d", peak)
	}
}

func TestUpgradableRWMutexWriterExcludesReaders(t *testing.T) {
	m := NewUpgradableRWMutex()
	var inCritical int32
	var wg sync.WaitGroup
	check := func() {
		if n := atomic.AddInt32(&inCritical, 1); n != 1 {
			t.Errorf("expected exclusive access, %d holders in critical section", n)
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&inCritical, -1)
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Lock()
			check()
			m.Unlock()
		}()
	}
	wg.Wait()
}

func TestUpgradableRWMutexReentrantRead(t *testing.T) {
	m := NewUpgradableRWMutex()
	m.RLock()
	m.RLock()
	m.RUnlock()
	m.RUnlock()
	// lock must be fully released now
	done := make(chan struct{})
	go func() {
		m.Lock()
		m.Unlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nested RLock/RUnlock did not release the lock")
	}
}

func TestUpgradableRWMutexReentrantWrite(t *testing.T) {
	m := NewUpgradableRWMutex()
	m.Lock()
	m.Lock()
	m.RLock() // shared re-entry of the exclusive holder
	m.RUnlock()
	m.Unlock()
	m.Unlock()
	done := make(chan struct{})
	go func() {
		m.RLock()
		m.RUnlock()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("nested Lock/Unlock did not release the lock")
	}
}

func TestUpgradableRWMutexUpgradeDowngrade(t *testing.T) {
	m := NewUpgradableRWMutex()
	m.RLock()
	if !m.Upgrade() {
		t.Error("sole reader expected a gap-free upgrade")
	}
	m.Downgrade()
	m.RUnlock()

	// a reader requesting exclusive through Lock must not self-deadlock
	m.RLock()
	m.Lock()
	m.Unlock()
}

func TestUpgradableRWMutexUpgradeWaitsForReaders(t *testing.T) {
	m := NewUpgradableRWMutex()
	readerInside := make(chan struct{})
	releaseReader := make(chan struct{})
	var order []string
	var orderMu sync.Mutex
	record := func(step string) {
		orderMu.Lock()
		order = append(order, step)
		orderMu.Unlock()
	}

	go func() {
		m.RLock()
		close(readerInside)
		<-releaseReader
		record("reader release")
		m.RUnlock()
	}()
	<-readerInside

	upgraded := make(chan struct{})
	go func() {
		m.RLock()
		m.Upgrade()
		record("upgraded")
		m.Unlock()
		close(upgraded)
	}()

	// upgrade must block while the other reader is still inside
	select {
	case <-upgraded:
		t.Fatal("upgrade completed while another reader held the lock")
	case <-time.After(50 * time.Millisecond):
	}
	close(releaseReader)
	select {
	case <-upgraded:
	case <-time.After(time.Second):
		t.Fatal("upgrade never completed after readers drained")
	}
	orderMu.Lock()
	defer orderMu.Unlock()
	if len(order) != 2 || order[0] != "reader release" || order[1] != "upgraded" {
		t.Errorf("unexpected ordering: %v", order)
	}
}

func TestUpgradableRWMutexConcurrentUpgraders(t *testing.T) {
	m := NewUpgradableRWMutex()
	const upgraders = 8
	var atomicUpgrades int32
	var inCritical int32
	var wg sync.WaitGroup
	for i := 0; i < upgraders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RLock()
			if m.Upgrade() {
				atomic.AddInt32(&atomicUpgrades, 1)
			}
			// every upgrader must end up exclusive regardless of atomicity
			if n := atomic.AddInt32(&inCritical, 1); n != 1 {
				t.Errorf("%d goroutines inside the exclusive section", n)
			}
			atomic.AddInt32(&inCritical, -1)
			m.Unlock()
		}()
	}
	wg.Wait()
	if atomicUpgrades < 1 {
		t.Error("at least one upgrader should have escalated gap-free")
	}
}

func TestUpgradableRWMutexDowngradeHoldsOffWriters(t *testing.T) {
	m := NewUpgradableRWMutex()
	m.Lock()
	m.Downgrade()

	writerDone := make(chan struct{})
	go func() {
		m.Lock()
		m.Unlock()
		close(writerDone)
	}()
	select {
	case <-writerDone:
		t.Fatal("writer acquired the lock while a downgraded shared hold was live")
	case <-time.After(50 * time.Millisecond):
	}
	m.RUnlock()
	select {
	case <-writerDone:
	case <-time.After(time.Second):
		t.Fatal("writer never acquired the lock after the shared hold was released")
	}
}
