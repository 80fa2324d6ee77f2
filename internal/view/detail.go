package view

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/observability"
	"github.com/lzjever/mbos-wsdesk/internal/poller"
	"github.com/lzjever/mbos-wsdesk/internal/session"
)

const (
	NoLogsText    = "No logs available"
	LogsErrorText = "Error loading logs"
)

// WorkspaceReader is the part of the registry a detail view reads from.
type WorkspaceReader interface {
	Get(ctx context.Context, name string) (core.Workspace, error)
	Logs(ctx context.Context, name string) (string, error)
}

type DetailDeps struct {
	Workspaces WorkspaceReader
	Dialer     session.Dialer
	Clock      clock.WithTicker
	// Host is where remote displays are dialed.
	Host   string
	Config Config
	Log    *zap.Logger
}

// LogsPane is the collapsible container-log section of a detail view.
type LogsPane struct {
	Visible bool
	Text    string
}

// Detail is one open workspace. It owns a status poller and a session
// bridge from Open until Close; the two run independently, so a stalled
// session never holds back status updates.
type Detail struct {
	name string
	deps DetailDeps
	log  *zap.Logger

	mu        sync.Mutex
	workspace core.Workspace
	logs      LogsPane
	observers map[int]func(core.Workspace)
	nextObs   int
	poller    *poller.Poller
	bridge    *session.Bridge
	closed    bool

	// cancel ends the initial session connect; wg tracks it.
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewDetail(name string, deps DetailDeps) *Detail {
	if deps.Clock == nil {
		deps.Clock = clock.RealClock{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Detail{
		name:      name,
		deps:      deps,
		log:       observability.WorkspaceLogger(deps.Log, name, "detail"),
		observers: make(map[int]func(core.Workspace)),
	}
}

func (d *Detail) Name() string { return d.name }

// Open loads the workspace, starts status polling and, when the workspace
// is running with a port, starts connecting its session in the background.
// Open returns once status is available; the connect outcome is reported
// through the session state, never returned.
func (d *Detail) Open(ctx context.Context) error {
	ws, err := d.deps.Workspaces.Get(ctx, d.name)
	if err != nil {
		return err
	}

	p := poller.New(d.name, d.deps.Workspaces, d.deps.Clock, d.deps.Config.PollInterval, d.deps.Log)
	p.Seed(ws)
	p.OnChange(d.setWorkspace)
	b := session.New(d.name, d.deps.Host, d.deps.Dialer, d.deps.Log)
	connCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		cancel()
		_ = b.Close()
		return core.NewAppError(core.ErrInternal, "detail view is closed")
	}
	d.workspace = ws
	d.poller = p
	d.bridge = b
	d.cancel = cancel
	// Started under the lock so a concurrent Close always sees it running.
	p.Start(context.WithoutCancel(ctx))
	port, live := ws.LivePort()
	if live {
		d.wg.Add(1)
	}
	d.mu.Unlock()

	if !live {
		d.log.Info("workspace not running, no session", zap.String("status", string(ws.CurrentStatus)))
		return nil
	}
	go func() {
		defer d.wg.Done()
		if err := b.Connect(connCtx, port); err != nil && connCtx.Err() == nil {
			d.log.Warn("session connect failed", zap.Error(err))
		}
	}()
	return nil
}

func (d *Detail) Workspace() core.Workspace {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.workspace
}

func (d *Detail) Status() core.WorkspaceStatus {
	return d.Workspace().CurrentStatus
}

func (d *Detail) Session() *session.Bridge {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bridge
}

func (d *Detail) SessionState() session.State {
	if b := d.Session(); b != nil {
		return b.State()
	}
	return session.StateDisconnected
}

func (d *Detail) Indicator() session.Indicator {
	return d.SessionState().Indicator()
}

// OnStatusChange registers fn for polled status changes. The returned
// func unregisters it.
func (d *Detail) OnStatusChange(fn func(core.Workspace)) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextObs
	d.nextObs++
	d.observers[id] = fn
	return func() {
		d.mu.Lock()
		defer d.mu.Unlock()
		delete(d.observers, id)
	}
}

// OnSessionChange registers fn for session transitions.
func (d *Detail) OnSessionChange(fn func(session.Change)) session.Disposable {
	b := d.Session()
	if b == nil {
		return session.DisposeFunc(func() {})
	}
	return b.OnStateChange(fn)
}

// Reconnect retries the session against the most recently polled
// workspace: it must be running, and its current port is dialed even if
// the previous session used another one.
func (d *Detail) Reconnect(ctx context.Context) error {
	b := d.Session()
	if b == nil {
		return core.NewAppError(core.ErrSessionTransport, "detail view is not open")
	}
	port, ok := d.latest().LivePort()
	if !ok {
		return core.NewAppError(core.ErrSessionTransport, "workspace is not running")
	}
	return b.Connect(ctx, port)
}

// latest is the last fetched workspace. The poller keeps every fetch,
// not only status changes, so a port change is seen too.
func (d *Detail) latest() core.Workspace {
	d.mu.Lock()
	p, ws := d.poller, d.workspace
	d.mu.Unlock()
	if p != nil {
		if last, ok := p.Last(); ok {
			return last
		}
	}
	return ws
}

// ToggleLogs hides a visible log pane, or fetches the logs and shows it.
func (d *Detail) ToggleLogs(ctx context.Context) LogsPane {
	d.mu.Lock()
	if d.logs.Visible {
		d.logs.Visible = false
		pane := d.logs
		d.mu.Unlock()
		return pane
	}
	d.mu.Unlock()

	text, err := d.deps.Workspaces.Logs(ctx, d.name)
	switch {
	case err != nil:
		d.log.Warn("load logs failed", zap.Error(err))
		text = LogsErrorText
	case text == "":
		text = NoLogsText
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.logs = LogsPane{Visible: true, Text: text}
	return d.logs
}

func (d *Detail) Logs() LogsPane {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.logs
}

// Close stops polling and releases the session. It is idempotent.
func (d *Detail) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	p, b, cancel := d.poller, d.bridge, d.cancel
	d.observers = map[int]func(core.Workspace){}
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if p != nil {
		p.Stop()
	}
	if b != nil {
		_ = b.Close()
	}
	d.wg.Wait()
}

func (d *Detail) setWorkspace(ws core.Workspace) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.workspace = ws
	fns := make([]func(core.Workspace), 0, len(d.observers))
	for _, fn := range d.observers {
		fns = append(fns, fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(ws)
	}
}
