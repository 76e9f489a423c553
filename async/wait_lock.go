package async

import "sync"

// Waitable blocks callers until it is opened.
type Waitable interface {
	Wait()
	IsOpen() bool
}

// WaitLock is a one-shot barrier: it starts closed, parks every Wait caller,
// and releases them all once opened. Opening an open lock is a no-op.
type WaitLock struct {
	once sync.Once
	ch   chan struct{}
}

func NewWaitLock() *WaitLock {
	return &WaitLock{ch: make(chan struct{})}
}

func NewOpenWaitLock() *WaitLock {
	w := NewWaitLock()
	w.Open()
	return w
}

func (w *WaitLock) Open() {
	w.once.Do(func() {
		close(w.ch)
	})
}

func (w *WaitLock) Wait() {
	<-w.ch
}

func (w *WaitLock) IsOpen() bool {
	select {
	case <-w.ch:
		return true
	default:
		return false
	}
}
