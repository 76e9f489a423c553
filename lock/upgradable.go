package lock

import (
	"sync"

	"github.com/petermattis/goid"
)

// UpgradableRWMutex is a reader/writer lock whose holder can escalate a shared
// hold to an exclusive one without fully releasing it, closing the gap between
// "decide to mutate" and "mutate" that a plain sync.RWMutex forces.
//
// Rules:
//   - any number of goroutines may hold the lock in shared mode
//   - one goroutine holds it exclusive, excluding every shared holder
//   - at most one shared holder upgrades at a time; a second concurrent
//     upgrader surrenders its shared hold, queues as a plain writer, and its
//     Upgrade reports atomic=false so the caller knows to re-validate what it
//     observed under the shared hold
//   - acquisitions are reentrant for the owning goroutine
//
// Goroutine identity comes from goid, so hold ownership survives nested calls
// on the same goroutine but never crosses goroutines.
type UpgradableRWMutex struct {
	mu          sync.Mutex
	cond        *sync.Cond
	readers     map[int64]int
	writer      int64
	writerHolds int
	upgrader    int64
}

func NewUpgradableRWMutex() *UpgradableRWMutex {
	m := &UpgradableRWMutex{
		readers: make(map[int64]int),
	}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// RLock acquires the lock in shared mode. A goroutine that already holds the
// lock, in either mode, re-enters without blocking.
func (m *UpgradableRWMutex) RLock() {
	gid := goid.Get()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writer == gid {
		m.writerHolds++
		return
	}
	if m.readers[gid] > 0 {
		m.readers[gid]++
		return
	}
	for m.writer != 0 || m.upgrader != 0 {
		m.cond.Wait()
	}
	m.readers[gid] = 1
}

func (m *UpgradableRWMutex) RUnlock() {
	gid := goid.Get()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writer == gid && m.readers[gid] == 0 {
		// shared re-entry of the exclusive holder
		m.releaseWriterHold()
		return
	}
	holds := m.readers[gid]
	if holds == 0 {
		panic("lock: RUnlock without a matching RLock")
	}
	if holds == 1 {
		delete(m.readers, gid)
		m.cond.Broadcast()
		return
	}
	m.readers[gid] = holds - 1
}

// Lock acquires the lock exclusively. A goroutine holding a shared hold
// escalates in place instead of deadlocking against itself; use Upgrade when
// the caller needs to know whether the escalation was gap-free.
func (m *UpgradableRWMutex) Lock() {
	gid := goid.Get()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writer == gid {
		m.writerHolds++
		return
	}
	if m.readers[gid] > 0 {
		m.upgradeLocked(gid)
		return
	}
	m.lockSlow(gid)
}

func (m *UpgradableRWMutex) Unlock() {
	gid := goid.Get()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writer != gid {
		panic("lock: Unlock by a goroutine not holding the exclusive lock")
	}
	m.releaseWriterHold()
}

// Upgrade escalates the calling goroutine's shared hold to exclusive and
// always returns holding the lock exclusively. The result reports whether the
// escalation was gap-free: false means another upgrade was already in flight,
// this caller's shared hold was surrendered while it waited its turn as a
// writer, and anything observed before Upgrade must be re-checked.
//
// All nested shared holds of the caller collapse into the single exclusive
// hold; Downgrade later restores exactly one shared hold.
func (m *UpgradableRWMutex) Upgrade() bool {
	gid := goid.Get()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writer == gid {
		m.writerHolds++
		return true
	}
	if m.readers[gid] == 0 {
		panic("lock: Upgrade without a shared hold")
	}
	return m.upgradeLocked(gid)
}

// Downgrade converts the caller's exclusive hold back to a single shared hold
// with no window in which a writer could slip in.
func (m *UpgradableRWMutex) Downgrade() {
	gid := goid.Get()
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writer != gid {
		panic("lock: Downgrade by a goroutine not holding the exclusive lock")
	}
	m.writer = 0
	m.writerHolds = 0
	m.readers[gid] = 1
	m.cond.Broadcast()
}

func (m *UpgradableRWMutex) upgradeLocked(gid int64) bool {
	if m.upgrader != 0 {
		// someone else is mid-upgrade and waits for readers to drain; holding
		// on to our shared hold would deadlock both of us
		delete(m.readers, gid)
		m.cond.Broadcast()
		m.lockSlow(gid)
		return false
	}
	m.upgrader = gid
	delete(m.readers, gid)
	for m.writer != 0 || len(m.readers) > 0 {
		m.cond.Wait()
	}
	m.upgrader = 0
	m.writer = gid
	m.writerHolds = 1
	return true
}

func (m *UpgradableRWMutex) lockSlow(gid int64) {
	for m.writer != 0 || m.upgrader != 0 || len(m.readers) > 0 {
		m.cond.Wait()
	}
	m.writer = gid
	m.writerHolds = 1
}

func (m *UpgradableRWMutex) releaseWriterHold() {
	m.writerHolds--
	if m.writerHolds == 0 {
		m.writer = 0
		m.cond.Broadcast()
	}
}
