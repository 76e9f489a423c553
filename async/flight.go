package async

import "sync"

type flightCall[T any] struct {
	res      T
	err      error
	waitable Waitable
}

func (c *flightCall[T]) waitAndGet() (T, error) {
	c.waitable.Wait()
	return c.res, c.err
}

// FlightGroup deduplicates concurrent executions of the same keyed task:
// while one execution is in flight, every other Do call with the same key
// waits for it and shares its result instead of running the task again. Keys
// are independent of each other.
type FlightGroup[T any] struct {
	calls  map[string]*flightCall[T]
	rwLock sync.RWMutex
}

func NewFlightGroup[T any]() *FlightGroup[T] {
	return &FlightGroup[T]{
		calls: make(map[string]*flightCall[T]),
	}
}

func (g *FlightGroup[T]) Do(key string, fn func() (T, error)) (T, error) {
	call := g.get(key)
	if call == nil {
		call = g.create(key, fn)
	}
	return call.waitAndGet()
}

func (g *FlightGroup[T]) create(key string, fn func() (T, error)) (call *flightCall[T]) {
	var (
		callExists bool
		waitLock   *WaitLock
	)
	g.withWrite(func() {
		existing := g.calls[key]
		if existing != nil && !existing.waitable.IsOpen() {
			// lost the race against another creator; join its flight
			call = existing
			callExists = true
			return
		}
		waitLock = NewWaitLock()
		call = &flightCall[T]{waitable: waitLock}
		g.calls[key] = call
	})
	if callExists {
		return
	}
	call.res, call.err = fn()
	g.withWrite(func() {
		waitLock.Open()
		delete(g.calls, key)
	})
	return
}

func (g *FlightGroup[T]) get(key string) (call *flightCall[T]) {
	g.withRead(func() {
		call = g.calls[key]
	})
	return
}

func (g *FlightGroup[T]) withRead(cb func()) {
	g.rwLock.RLock()
	defer g.rwLock.RUnlock()
	cb()
}

func (g *FlightGroup[T]) withWrite(cb func()) {
	g.rwLock.Lock()
	defer g.rwLock.Unlock()
	cb()
}
