package session

import "sync"

// Disposable unregisters an observer. Dispose is idempotent.
type Disposable interface {
	Dispose()
}

type DisposeFunc func()

func (f DisposeFunc) Dispose() { f() }

// emitter fans events out to registered handlers. Handlers run on the
// emitting goroutine, outside the emitter's lock.
type emitter[T any] struct {
	mu       sync.Mutex
	next     int
	handlers map[int]func(T)
}

func (e *emitter[T]) On(fn func(T)) Disposable {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.handlers == nil {
		e.handlers = make(map[int]func(T))
	}
	id := e.next
	e.next++
	e.handlers[id] = fn

	var once sync.Once
	return DisposeFunc(func() {
		once.Do(func() {
			e.mu.Lock()
			defer e.mu.Unlock()
			delete(e.handlers, id)
		})
	})
}

func (e *emitter[T]) Emit(v T) {
	e.mu.Lock()
	fns := make([]func(T), 0, len(e.handlers))
	for id := 0; id < e.next; id++ {
		if fn, ok := e.handlers[id]; ok {
			fns = append(fns, fn)
		}
	}
	e.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

func (e *emitter[T]) Clear() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers = nil
}
