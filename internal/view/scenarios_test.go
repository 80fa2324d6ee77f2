package view

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/lifecycle"
	"github.com/lzjever/mbos-wsdesk/internal/notify"
	"github.com/lzjever/mbos-wsdesk/internal/session"
)

type scenario struct {
	env        *stubEnv
	clock      *testingclock.FakeClock
	sink       *recordingSink
	dialer     *fakeDialer
	dashboard  *Dashboard
	controller *lifecycle.Controller
	confirm    bool
	alerts     []string
}

func newScenario(t *testing.T, startPort int) *scenario {
	t.Helper()
	s := &scenario{
		env:    newStubEnv(t, startPort),
		clock:  newFakeClock(),
		sink:   &recordingSink{},
		dialer: &fakeDialer{},
	}
	s.dashboard = NewDashboard(DashboardDeps{
		Registry: s.env.registry,
		Catalog:  s.env.catalog,
		Notifier: s.sink,
		Detail: DetailDeps{
			Dialer: s.dialer,
			Clock:  s.clock,
			Host:   "ws.example",
			Config: Config{PollInterval: 5 * time.Second},
		},
		Log: zap.NewNop(),
	})
	t.Cleanup(s.dashboard.CloseDetail)

	s.controller = lifecycle.New(lifecycle.Deps{
		Backend:  s.env.client,
		Notifier: s.sink,
		Confirmer: lifecycle.ConfirmFunc(func(context.Context, string) bool {
			return s.confirm
		}),
		Alerter: alertFunc(func(msg string) { s.alerts = append(s.alerts, msg) }),
		Clock:   s.clock,
	}, lifecycle.Config{SettleDelay: 2 * time.Second}, zap.NewNop())
	s.controller.SetPresenter(s.dashboard)
	return s
}

type alertFunc func(string)

func (f alertFunc) Alert(_ context.Context, msg string) { f(msg) }

func names(workspaces []core.Workspace) []string {
	out := make([]string, 0, len(workspaces))
	for _, ws := range workspaces {
		out = append(out, ws.Name)
	}
	return out
}

func TestScenario_CreateAppearsAfterSettleDelay(t *testing.T) {
	s := newScenario(t, 3000)
	require.NoError(t, s.dashboard.SwitchTab(context.Background(), TabServices))

	type result struct {
		msg string
		err error
	}
	done := make(chan result, 1)
	go func() {
		msg, err := s.controller.Create(context.Background(), "ubuntu-desktop", "demo1")
		done <- result{msg, err}
	}()

	require.Eventually(t, s.clock.HasWaiters, 2*time.Second, time.Millisecond)
	assert.Empty(t, s.dashboard.Workspaces(), "not refreshed before the settle delay")
	assert.Equal(t, TabServices, s.dashboard.Tab())

	s.clock.Step(2 * time.Second)
	var res result
	select {
	case res = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("create did not finish after the settle delay")
	}
	require.NoError(t, res.err)
	assert.Equal(t, "Workspace 'demo1' created successfully. Access at: http://localhost:3000", res.msg)

	assert.Equal(t, TabActive, s.dashboard.Tab())
	assert.Equal(t, []string{"demo1"}, names(s.dashboard.Workspaces()))
	assert.Equal(t, []note{{res.msg, notify.SeveritySuccess}}, s.sink.all())
	assert.True(t, s.controller.CreateEnabled())
}

func TestScenario_InvalidNameMakesNoRequest(t *testing.T) {
	s := newScenario(t, 3000)

	_, err := s.controller.Create(context.Background(), "ubuntu-desktop", "bad name!")
	assert.True(t, core.IsCode(err, core.ErrValidation))
	assert.Zero(t, s.env.requests.Load())
	assert.Equal(t, []note{{
		"Workspace name can only contain letters, numbers, dashes, and underscores",
		notify.SeverityError,
	}}, s.sink.all())
}

func TestScenario_DeleteNeedsConfirmation(t *testing.T) {
	s := newScenario(t, 3000)
	_, _, err := s.env.api.Store().Create("ubuntu-desktop", "demo1")
	require.NoError(t, err)
	require.NoError(t, s.dashboard.LoadWorkspaces(context.Background()))
	before := s.env.requests.Load()

	_, err = s.controller.Delete(context.Background(), "demo1", lifecycle.FromList)
	assert.True(t, core.IsCode(err, core.ErrDeclined))
	assert.Equal(t, before, s.env.requests.Load())
	assert.Empty(t, s.sink.all())

	s.confirm = true
	msg, err := s.controller.Delete(context.Background(), "demo1", lifecycle.FromList)
	require.NoError(t, err)
	assert.Equal(t, "Workspace 'demo1' deleted", msg)
	assert.Empty(t, s.dashboard.Workspaces())

	listed, err := s.env.registry.List(context.Background())
	require.NoError(t, err)
	assert.NotContains(t, names(listed), "demo1")
}

func TestScenario_DeleteFromDetailReturnsToList(t *testing.T) {
	s := newScenario(t, 5901)
	_, _, err := s.env.api.Store().Create("ubuntu-desktop", "demo1")
	require.NoError(t, err)
	_, err = s.dashboard.OpenDetail(context.Background(), "demo1")
	require.NoError(t, err)
	tr := s.dialer.await(t, 1)

	s.confirm = true
	_, err = s.controller.Delete(context.Background(), "demo1", lifecycle.FromDetail)
	require.NoError(t, err)
	assert.Nil(t, s.dashboard.Detail())
	assert.True(t, tr.isClosed())
	assert.Empty(t, s.dashboard.Workspaces())

	_, err = s.controller.Delete(context.Background(), "demo1", lifecycle.FromDetail)
	assert.True(t, core.IsCode(err, core.ErrNotFound))
	assert.Equal(t, []string{"Error: Workspace not found"}, s.alerts)
}

func TestScenario_DetailConnectsToRunningWorkspace(t *testing.T) {
	s := newScenario(t, 5901)
	_, _, err := s.env.api.Store().Create("ubuntu-desktop", "demo1")
	require.NoError(t, err)

	detail, err := s.dashboard.OpenDetail(context.Background(), "demo1")
	require.NoError(t, err)
	tr := s.dialer.await(t, 1)
	assert.Equal(t, []string{"wss://ws.example:5901"}, s.dialer.dialed())
	assert.Equal(t, "Connecting...", detail.Indicator().Text)

	tr.fireConnect()
	assert.False(t, detail.Indicator().Visible)

	tr.fireDisconnect()
	assert.Equal(t, session.Indicator{Visible: true, Text: "Disconnected"}, detail.Indicator())
}
