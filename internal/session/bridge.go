// Package session attaches a remote-display transport to a running
// workspace and tracks its connection state.
package session

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"

	"go.uber.org/zap"

	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/observability"
)

// Transport is an opaque remote-display stream. Observers registered
// before Start see every event.
type Transport interface {
	OnConnect(func()) Disposable
	OnDisconnect(func()) Disposable
	OnError(func(error)) Disposable
	Start()
	Close() error
}

// Dialer opens a transport to endpoint. It returns once the handshake
// has completed or failed.
type Dialer interface {
	Dial(ctx context.Context, endpoint string) (Transport, error)
}

type DialerFunc func(ctx context.Context, endpoint string) (Transport, error)

func (f DialerFunc) Dial(ctx context.Context, endpoint string) (Transport, error) {
	return f(ctx, endpoint)
}

// Endpoint builds the secure websocket address of a workspace's display.
func Endpoint(host string, port int) (string, error) {
	if host == "" {
		return "", core.NewAppError(core.ErrSessionTransport, "session host is empty")
	}
	if port <= 0 || port > 65535 {
		return "", core.NewAppError(core.ErrSessionTransport, fmt.Sprintf("invalid session port %d", port))
	}
	return "wss://" + net.JoinHostPort(host, strconv.Itoa(port)), nil
}

// Bridge owns at most one transport for one workspace. There is no
// automatic reconnect; leaving disconnected or error needs Reconnect.
type Bridge struct {
	target string
	host   string
	dialer Dialer
	log    *zap.Logger

	mu        sync.Mutex
	state     State
	port      int
	gen       uint64
	transport Transport
	subs      []Disposable
	lastErr   error
	closed    bool

	changes emitter[Change]
}

func New(target, host string, dialer Dialer, log *zap.Logger) *Bridge {
	observability.ActiveSessions.Inc()
	return &Bridge{
		target: target,
		host:   host,
		dialer: dialer,
		log:    observability.WorkspaceLogger(log, target, "session"),
		state:  StateDisconnected,
	}
}

func (b *Bridge) Target() string { return b.target }

func (b *Bridge) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Port is the display port of the last connect attempt, 0 if none.
func (b *Bridge) Port() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.port
}

func (b *Bridge) Indicator() Indicator {
	return b.State().Indicator()
}

// Err returns the error that put the bridge into the error state, if any.
func (b *Bridge) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

// OnStateChange registers fn for every transition. fn runs on whichever
// goroutine caused the transition.
func (b *Bridge) OnStateChange(fn func(Change)) Disposable {
	return b.changes.On(fn)
}

// Connect dials the display on port and starts the transport. It is valid
// only while the bridge is disconnected or in error.
func (b *Bridge) Connect(ctx context.Context, port int) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return core.NewAppError(core.ErrSessionTransport, "session is closed")
	}
	if !b.state.CanTransition(StateConnecting) {
		state := b.state
		b.mu.Unlock()
		return core.NewAppError(core.ErrBusy, fmt.Sprintf("session is %s", state))
	}
	old, oldSubs := b.detachLocked()
	b.port = port
	b.gen++
	gen := b.gen
	change := b.setLocked(StateConnecting, nil)
	b.mu.Unlock()

	release(old, oldSubs)
	b.changes.Emit(change)

	endpoint, err := Endpoint(b.host, port)
	if err != nil {
		b.transition(gen, StateError, err)
		return err
	}
	b.log.Info("connecting session", zap.String("endpoint", endpoint))

	t, err := b.dialer.Dial(ctx, endpoint)
	if err != nil {
		err = core.WrapAppError(core.ErrSessionTransport, "Connection failed", err)
		b.log.Warn("session dial failed", zap.Error(err))
		b.transition(gen, StateError, err)
		return err
	}

	b.mu.Lock()
	if b.closed || gen != b.gen {
		b.mu.Unlock()
		_ = t.Close()
		return nil
	}
	b.transport = t
	b.subs = []Disposable{
		t.OnConnect(func() { b.transition(gen, StateConnected, nil) }),
		t.OnDisconnect(func() { b.transition(gen, StateDisconnected, nil) }),
		t.OnError(func(err error) {
			b.transition(gen, StateError, core.WrapAppError(core.ErrSessionTransport, "Connection error", err))
		}),
	}
	b.mu.Unlock()

	t.Start()
	return nil
}

// Reconnect connects again to the last port. It is only allowed after
// the session was disconnected or failed.
func (b *Bridge) Reconnect(ctx context.Context) error {
	b.mu.Lock()
	port, state := b.port, b.state
	b.mu.Unlock()

	if state != StateDisconnected && state != StateError {
		return core.NewAppError(core.ErrBusy, fmt.Sprintf("session is %s", state))
	}
	if port == 0 {
		return core.NewAppError(core.ErrSessionTransport, "no previous connection to retry")
	}
	b.log.Info("reconnecting session", zap.Int("port", port))
	return b.Connect(ctx, port)
}

// Close disposes observers and closes the transport. Events arriving
// afterwards are ignored.
func (b *Bridge) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	t, subs := b.detachLocked()
	b.mu.Unlock()

	b.changes.Clear()
	observability.ActiveSessions.Dec()
	b.log.Debug("session closed")
	return release(t, subs)
}

func (b *Bridge) transition(gen uint64, to State, err error) {
	b.mu.Lock()
	if b.closed || gen != b.gen {
		b.mu.Unlock()
		return
	}
	if !b.state.CanTransition(to) {
		b.log.Debug("ignoring session event",
			zap.String("state", string(b.state)),
			zap.String("event", string(to)),
		)
		b.mu.Unlock()
		return
	}
	change := b.setLocked(to, err)
	b.mu.Unlock()

	b.log.Info("session state changed",
		zap.String("from", string(change.From)),
		zap.String("to", string(change.To)),
	)
	b.changes.Emit(change)
}

func (b *Bridge) setLocked(to State, err error) Change {
	from := b.state
	b.state = to
	if to == StateError {
		b.lastErr = err
	} else if to == StateConnecting || to == StateConnected {
		b.lastErr = nil
	}
	observability.SessionTransitions.WithLabelValues(string(from), string(to)).Inc()
	return Change{From: from, To: to, Err: err}
}

func (b *Bridge) detachLocked() (Transport, []Disposable) {
	t, subs := b.transport, b.subs
	b.transport, b.subs = nil, nil
	return t, subs
}

func release(t Transport, subs []Disposable) error {
	for _, s := range subs {
		s.Dispose()
	}
	if t == nil {
		return nil
	}
	return t.Close()
}
