package lifecycle

import (
	"sync"
	"sync/atomic"

	"github.com/lzjever/mbos-wsdesk/internal/observability"
)

// createGuard is the single in-flight flag behind the create trigger.
type createGuard struct {
	busy atomic.Bool

	mu        sync.Mutex
	nextID    int
	observers map[int]func(enabled bool)
}

func (g *createGuard) acquire() bool {
	if !g.busy.CompareAndSwap(false, true) {
		return false
	}
	observability.CreateInFlight.Set(1)
	g.publish(false)
	return true
}

func (g *createGuard) release() {
	g.busy.Store(false)
	observability.CreateInFlight.Set(0)
	g.publish(true)
}

func (g *createGuard) enabled() bool {
	return !g.busy.Load()
}

func (g *createGuard) watch(fn func(enabled bool)) func() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.observers == nil {
		g.observers = make(map[int]func(bool))
	}
	g.nextID++
	id := g.nextID
	g.observers[id] = fn
	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		delete(g.observers, id)
	}
}

func (g *createGuard) publish(enabled bool) {
	g.mu.Lock()
	fns := make([]func(bool), 0, len(g.observers))
	for _, fn := range g.observers {
		fns = append(fns, fn)
	}
	g.mu.Unlock()
	for _, fn := range fns {
		fn(enabled)
	}
}
