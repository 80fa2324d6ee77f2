package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lzjever/mbos-wsdesk/internal/core"
)

type fakeTransport struct {
	connect    emitter[struct{}]
	disconnect emitter[struct{}]
	errs       emitter[error]

	mu      sync.Mutex
	started int
	closed  int
}

func (t *fakeTransport) OnConnect(fn func()) Disposable {
	return t.connect.On(func(struct{}) { fn() })
}

func (t *fakeTransport) OnDisconnect(fn func()) Disposable {
	return t.disconnect.On(func(struct{}) { fn() })
}

func (t *fakeTransport) OnError(fn func(error)) Disposable { return t.errs.On(fn) }

func (t *fakeTransport) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started++
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed++
	return nil
}

func (t *fakeTransport) closeCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *fakeTransport) fireConnect()        { t.connect.Emit(struct{}{}) }
func (t *fakeTransport) fireDisconnect()     { t.disconnect.Emit(struct{}{}) }
func (t *fakeTransport) fireError(err error) { t.errs.Emit(err) }

type fakeDialer struct {
	mu         sync.Mutex
	endpoints  []string
	transports []*fakeTransport
	err        error
}

func (d *fakeDialer) Dial(ctx context.Context, endpoint string) (Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.endpoints = append(d.endpoints, endpoint)
	if d.err != nil {
		return nil, d.err
	}
	t := &fakeTransport{}
	d.transports = append(d.transports, t)
	return t, nil
}

func (d *fakeDialer) last() *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.transports[len(d.transports)-1]
}

func recordChanges(b *Bridge) (func() []Change, Disposable) {
	var mu sync.Mutex
	var changes []Change
	h := b.OnStateChange(func(c Change) {
		mu.Lock()
		defer mu.Unlock()
		changes = append(changes, c)
	})
	return func() []Change {
		mu.Lock()
		defer mu.Unlock()
		return append([]Change(nil), changes...)
	}, h
}

func states(changes []Change) []State {
	out := make([]State, 0, len(changes))
	for _, c := range changes {
		out = append(out, c.To)
	}
	return out
}

func TestEndpoint(t *testing.T) {
	ep, err := Endpoint("ws.example", 6080)
	require.NoError(t, err)
	assert.Equal(t, "wss://ws.example:6080", ep)

	ep, err = Endpoint("::1", 3000)
	require.NoError(t, err)
	assert.Equal(t, "wss://[::1]:3000", ep)

	_, err = Endpoint("", 3000)
	assert.True(t, core.IsCode(err, core.ErrSessionTransport))
	_, err = Endpoint("ws.example", 0)
	assert.True(t, core.IsCode(err, core.ErrSessionTransport))
	_, err = Endpoint("ws.example", 70000)
	assert.True(t, core.IsCode(err, core.ErrSessionTransport))
}

func TestStateIndicator(t *testing.T) {
	assert.Equal(t, Indicator{}, StateConnected.Indicator())
	assert.Equal(t, Indicator{Visible: true, Text: "Connecting..."}, StateConnecting.Indicator())
	assert.Equal(t, Indicator{Visible: true, Text: "Disconnected"}, StateDisconnected.Indicator())
	assert.Equal(t, Indicator{Visible: true, Text: "Connection Error"}, StateError.Indicator())
}

func TestStateTransitions(t *testing.T) {
	allowed := [][2]State{
		{StateConnecting, StateConnected},
		{StateConnecting, StateError},
		{StateConnected, StateDisconnected},
		{StateConnected, StateError},
		{StateError, StateDisconnected},
		{StateDisconnected, StateConnecting},
		{StateError, StateConnecting},
	}
	for _, tr := range allowed {
		assert.True(t, tr[0].CanTransition(tr[1]), "%s -> %s", tr[0], tr[1])
	}

	denied := [][2]State{
		{StateDisconnected, StateConnected},
		{StateConnected, StateConnecting},
		{StateConnecting, StateDisconnected},
		{StateDisconnected, StateError},
	}
	for _, tr := range denied {
		assert.False(t, tr[0].CanTransition(tr[1]), "%s -> %s", tr[0], tr[1])
	}
}

func TestBridge_ConnectSuccess(t *testing.T) {
	d := &fakeDialer{}
	b := New("demo1", "ws.example", d, zap.NewNop())
	defer b.Close()
	changes, _ := recordChanges(b)

	require.NoError(t, b.Connect(context.Background(), 6080))
	assert.Equal(t, StateConnecting, b.State())
	assert.Equal(t, "Connecting...", b.Indicator().Text)
	assert.Equal(t, []string{"wss://ws.example:6080"}, d.endpoints)
	assert.Equal(t, 1, d.last().started)

	d.last().fireConnect()
	assert.Equal(t, StateConnected, b.State())
	assert.False(t, b.Indicator().Visible)
	assert.Equal(t, []State{StateConnecting, StateConnected}, states(changes()))
}

func TestBridge_DialFailure(t *testing.T) {
	d := &fakeDialer{err: errors.New("tls: handshake failure")}
	b := New("demo1", "ws.example", d, zap.NewNop())
	defer b.Close()

	err := b.Connect(context.Background(), 6080)
	require.Error(t, err)
	assert.True(t, core.IsCode(err, core.ErrSessionTransport))
	assert.Equal(t, StateError, b.State())
	assert.Equal(t, Indicator{Visible: true, Text: "Connection Error"}, b.Indicator())
	assert.Equal(t, err, b.Err())
}

func TestBridge_InvalidPortNeverDials(t *testing.T) {
	d := &fakeDialer{}
	b := New("demo1", "ws.example", d, zap.NewNop())
	defer b.Close()

	err := b.Connect(context.Background(), 0)
	assert.True(t, core.IsCode(err, core.ErrSessionTransport))
	assert.Equal(t, StateError, b.State())
	assert.Empty(t, d.endpoints)
}

func TestBridge_DisconnectDoesNotReconnect(t *testing.T) {
	d := &fakeDialer{}
	b := New("demo1", "ws.example", d, zap.NewNop())
	defer b.Close()

	require.NoError(t, b.Connect(context.Background(), 6080))
	d.last().fireConnect()
	d.last().fireDisconnect()

	assert.Equal(t, StateDisconnected, b.State())
	assert.Equal(t, "Disconnected", b.Indicator().Text)
	assert.Len(t, d.endpoints, 1)
}

func TestBridge_ErrorThenClose(t *testing.T) {
	d := &fakeDialer{}
	b := New("demo1", "ws.example", d, zap.NewNop())
	defer b.Close()
	changes, _ := recordChanges(b)

	require.NoError(t, b.Connect(context.Background(), 6080))
	tr := d.last()
	tr.fireConnect()
	tr.fireError(errors.New("connection reset by peer"))
	assert.Equal(t, StateError, b.State())
	assert.True(t, core.IsCode(b.Err(), core.ErrSessionTransport))

	tr.fireDisconnect()
	assert.Equal(t, StateDisconnected, b.State())
	assert.Equal(t,
		[]State{StateConnecting, StateConnected, StateError, StateDisconnected},
		states(changes()))
}

func TestBridge_ReconnectOnlyAfterDisconnectOrError(t *testing.T) {
	d := &fakeDialer{}
	b := New("demo1", "ws.example", d, zap.NewNop())
	defer b.Close()

	err := b.Reconnect(context.Background())
	assert.True(t, core.IsCode(err, core.ErrSessionTransport), "no previous port")

	require.NoError(t, b.Connect(context.Background(), 6080))
	first := d.last()
	first.fireConnect()

	err = b.Reconnect(context.Background())
	assert.True(t, core.IsCode(err, core.ErrBusy))
	err = b.Connect(context.Background(), 6081)
	assert.True(t, core.IsCode(err, core.ErrBusy))

	first.fireDisconnect()
	require.NoError(t, b.Reconnect(context.Background()))
	assert.Equal(t, []string{"wss://ws.example:6080", "wss://ws.example:6080"}, d.endpoints)
	assert.Equal(t, 1, first.closeCount())

	second := d.last()
	second.fireConnect()
	assert.Equal(t, StateConnected, b.State())

	// Events from the replaced transport no longer reach the bridge.
	first.fireError(errors.New("late"))
	first.fireDisconnect()
	assert.Equal(t, StateConnected, b.State())
}

func TestBridge_ReconnectFromError(t *testing.T) {
	d := &fakeDialer{err: errors.New("refused")}
	b := New("demo1", "ws.example", d, zap.NewNop())
	defer b.Close()

	require.Error(t, b.Connect(context.Background(), 6080))
	assert.Equal(t, StateError, b.State())

	d.mu.Lock()
	d.err = nil
	d.mu.Unlock()
	require.NoError(t, b.Reconnect(context.Background()))
	d.last().fireConnect()
	assert.Equal(t, StateConnected, b.State())
	assert.NoError(t, b.Err())
}

func TestBridge_CloseIgnoresLaterEvents(t *testing.T) {
	d := &fakeDialer{}
	b := New("demo1", "ws.example", d, zap.NewNop())
	changes, _ := recordChanges(b)

	require.NoError(t, b.Connect(context.Background(), 6080))
	tr := d.last()
	tr.fireConnect()

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())
	assert.Equal(t, 1, tr.closeCount())

	tr.fireError(errors.New("late"))
	tr.fireDisconnect()
	assert.Equal(t, StateConnected, b.State())
	assert.Len(t, changes(), 2)

	err := b.Connect(context.Background(), 6080)
	assert.True(t, core.IsCode(err, core.ErrSessionTransport))
}

func TestBridge_DisposedObserverStopsReceiving(t *testing.T) {
	d := &fakeDialer{}
	b := New("demo1", "ws.example", d, zap.NewNop())
	defer b.Close()
	changes, handle := recordChanges(b)

	require.NoError(t, b.Connect(context.Background(), 6080))
	handle.Dispose()
	handle.Dispose()
	d.last().fireConnect()

	assert.Equal(t, []State{StateConnecting}, states(changes()))
}
