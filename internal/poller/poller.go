// Package poller re-fetches one workspace's status on a fixed interval.
package poller

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/observability"
)

const DefaultInterval = 5 * time.Second

type State string

const (
	StateIdle    State = "idle"
	StatePolling State = "polling"
	StateError   State = "error"
)

type Fetcher interface {
	Get(ctx context.Context, name string) (core.Workspace, error)
}

// Poller fetches on every tick for as long as it runs. A failed fetch is
// logged and the next tick is attempted as scheduled: there is no backoff
// and no user-facing report.
type Poller struct {
	name     string
	fetcher  Fetcher
	clock    clock.WithTicker
	interval time.Duration
	log      *zap.Logger
	onChange func(core.Workspace)

	mu      sync.Mutex
	state   State
	last    *core.Workspace
	lastErr error
	cancel  context.CancelFunc
	done    chan struct{}
}

func New(name string, fetcher Fetcher, clk clock.WithTicker, interval time.Duration, log *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		name:     name,
		fetcher:  fetcher,
		clock:    clk,
		interval: interval,
		log:      observability.WorkspaceLogger(log, name, "poller"),
		onChange: func(core.Workspace) {},
		state:    StateIdle,
	}
}

// OnChange sets the observer told about status changes. It runs on the
// poller goroutine. Set it before Start.
func (p *Poller) OnChange(fn func(core.Workspace)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

// Seed records an already-known workspace so the first tick reports only
// real changes.
func (p *Poller) Seed(ws core.Workspace) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.last = &ws
}

func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

// Stop cancels further ticks and waits for the loop to exit. It is safe
// to call more than once.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (p *Poller) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Last returns the most recent successfully fetched workspace.
func (p *Poller) Last() (core.Workspace, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.last == nil {
		return core.Workspace{}, false
	}
	return *p.last, true
}

// LastError returns the error of the most recent tick, nil after a
// successful one.
func (p *Poller) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	p.log.Debug("poller started", zap.Duration("interval", p.interval))
	for {
		select {
		case <-ctx.Done():
			p.setState(StateIdle)
			p.log.Debug("poller stopped")
			return
		case <-ticker.C():
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	p.setState(StatePolling)
	ws, err := p.fetcher.Get(ctx, p.name)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		observability.PollTicksTotal.WithLabelValues("error").Inc()
		p.log.Warn("status poll failed", zap.Error(err))
		p.mu.Lock()
		p.state = StateError
		p.lastErr = err
		p.mu.Unlock()
		return
	}
	observability.PollTicksTotal.WithLabelValues("ok").Inc()

	p.mu.Lock()
	changed := p.last == nil || p.last.CurrentStatus != ws.CurrentStatus
	if changed && p.last != nil {
		p.log.Info("workspace status changed",
			zap.String("from", string(p.last.CurrentStatus)),
			zap.String("to", string(ws.CurrentStatus)),
		)
	}
	p.last = &ws
	p.lastErr = nil
	p.state = StateIdle
	onChange := p.onChange
	p.mu.Unlock()

	if changed {
		onChange(ws)
	}
}

func (p *Poller) setState(s State) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = s
}
