package view

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/lzjever/mbos-wsdesk/internal/backend"
	"github.com/lzjever/mbos-wsdesk/internal/catalog"
	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/notify"
	"github.com/lzjever/mbos-wsdesk/internal/registry"
	"github.com/lzjever/mbos-wsdesk/internal/session"
	"github.com/lzjever/mbos-wsdesk/internal/stubapi"
)

type note struct {
	msg string
	sev notify.Severity
}

type recordingSink struct {
	mu    sync.Mutex
	notes []note
}

func (s *recordingSink) Notify(msg string, sev notify.Severity, _ time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notes = append(s.notes, note{msg, sev})
}

func (s *recordingSink) all() []note {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]note(nil), s.notes...)
}

type fakeTransport struct {
	mu         sync.Mutex
	connect    map[int]func()
	disconnect map[int]func()
	errs       map[int]func(error)
	next       int
	started    bool
	closed     bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		connect:    map[int]func(){},
		disconnect: map[int]func(){},
		errs:       map[int]func(error){},
	}
}

func (t *fakeTransport) register(add func(id int)) session.Disposable {
	t.mu.Lock()
	id := t.next
	t.next++
	add(id)
	t.mu.Unlock()
	return session.DisposeFunc(func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		delete(t.connect, id)
		delete(t.disconnect, id)
		delete(t.errs, id)
	})
}

func (t *fakeTransport) OnConnect(fn func()) session.Disposable {
	return t.register(func(id int) { t.connect[id] = fn })
}

func (t *fakeTransport) OnDisconnect(fn func()) session.Disposable {
	return t.register(func(id int) { t.disconnect[id] = fn })
}

func (t *fakeTransport) OnError(fn func(error)) session.Disposable {
	return t.register(func(id int) { t.errs[id] = fn })
}

func (t *fakeTransport) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.started = true
}

func (t *fakeTransport) isStarted() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

func (t *fakeTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.closed = true
	return nil
}

func (t *fakeTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *fakeTransport) fireConnect() {
	t.mu.Lock()
	fns := make([]func(), 0, len(t.connect))
	for _, fn := range t.connect {
		fns = append(fns, fn)
	}
	t.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

func (t *fakeTransport) fireDisconnect() {
	t.mu.Lock()
	fns := make([]func(), 0, len(t.disconnect))
	for _, fn := range t.disconnect {
		fns = append(fns, fn)
	}
	t.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

type fakeDialer struct {
	mu         sync.Mutex
	endpoints  []string
	transports []*fakeTransport
}

func (d *fakeDialer) Dial(_ context.Context, endpoint string) (session.Transport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.endpoints = append(d.endpoints, endpoint)
	t := newFakeTransport()
	d.transports = append(d.transports, t)
	return t, nil
}

func (d *fakeDialer) dialed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.endpoints...)
}

func (d *fakeDialer) last() *fakeTransport {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.transports) == 0 {
		return nil
	}
	return d.transports[len(d.transports)-1]
}

// await waits for the n-th dialed transport to be started, which is when
// its observers are in place. Detail views connect in the background.
func (d *fakeDialer) await(t *testing.T, n int) *fakeTransport {
	t.Helper()
	var tr *fakeTransport
	require.Eventually(t, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		if len(d.transports) < n {
			return false
		}
		tr = d.transports[n-1]
		return tr.isStarted()
	}, 2*time.Second, time.Millisecond)
	return tr
}

// stubEnv is a stub backend behind a real HTTP client, with a request
// counter in front of it.
type stubEnv struct {
	api      *stubapi.API
	client   *backend.Client
	requests atomic.Int64
	registry *registry.Registry
	catalog  *catalog.Catalog
}

func newStubEnv(t *testing.T, startPort int) *stubEnv {
	t.Helper()
	services, err := stubapi.ParseCompose(strings.NewReader(stubapi.DefaultCompose))
	if err != nil {
		t.Fatalf("parse compose: %s", err)
	}
	env := &stubEnv{
		api: stubapi.NewAPI(stubapi.NewStore(services, startPort, core.WorkspaceRunning, nil), zap.NewNop()),
	}
	router := env.api.Router()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.requests.Add(1)
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	env.client = backend.NewClient(srv.URL, zap.NewNop())
	env.registry = registry.New(env.client)
	env.catalog = catalog.New(env.client)
	return env
}

func newFakeClock() *testingclock.FakeClock {
	return testingclock.NewFakeClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
}
