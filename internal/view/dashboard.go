// Package view holds the presentation state of the dashboard and of a
// workspace detail view: what is shown, and when it is (re)fetched.
package view

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/notify"
)

type Tab string

const (
	TabActive   Tab = "active"
	TabServices Tab = "services"
)

func ParseTab(s string) (Tab, error) {
	switch Tab(s) {
	case TabActive, TabServices:
		return Tab(s), nil
	}
	return "", core.NewAppError(core.ErrValidation, fmt.Sprintf("unknown tab %q", s))
}

const EmptyWorkspacesText = `No active workspaces. Create one from the "Available Services" tab.`

type Registry interface {
	WorkspaceReader
	List(ctx context.Context) ([]core.Workspace, error)
}

type Catalog interface {
	List(ctx context.Context) ([]core.Service, error)
}

// Card is one workspace in the active-workspaces grid.
type Card struct {
	Name         string
	Service      string
	Status       core.WorkspaceStatus
	Created      time.Time
	LastAccessed time.Time
	WebPort      int
	// Connectable is true only for running workspaces with a port. A
	// stopped workspace keeps showing its stale port but is not offered.
	Connectable bool
	ConnectURL  string
}

func (c Card) Action() string {
	if c.Connectable {
		return "Connect"
	}
	return "Stopped"
}

type ServiceCard struct {
	Name        string
	Image       string
	Icon        string
	Description string
}

type DashboardDeps struct {
	Registry Registry
	Catalog  Catalog
	Notifier notify.Sink
	// Detail carries what each opened detail view is built with. Its
	// Workspaces field defaults to Registry.
	Detail DetailDeps
	Log    *zap.Logger
}

// Dashboard is the two-tab list view. It satisfies lifecycle.Presenter.
type Dashboard struct {
	deps DashboardDeps
	log  *zap.Logger

	mu         sync.Mutex
	tab        Tab
	workspaces []core.Workspace
	loaded     bool
	services   []core.Service
	detail     *Detail
}

func NewDashboard(deps DashboardDeps) *Dashboard {
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	if deps.Detail.Workspaces == nil {
		deps.Detail.Workspaces = deps.Registry
	}
	if deps.Detail.Log == nil {
		deps.Detail.Log = deps.Log
	}
	return &Dashboard{
		deps: deps,
		log:  deps.Log.With(zap.String("component", "dashboard")),
		tab:  TabActive,
	}
}

func (d *Dashboard) Tab() Tab {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.tab
}

// SwitchTab selects tab and loads its content.
func (d *Dashboard) SwitchTab(ctx context.Context, tab Tab) error {
	if _, err := ParseTab(string(tab)); err != nil {
		return err
	}
	d.mu.Lock()
	d.tab = tab
	d.mu.Unlock()

	if tab == TabActive {
		return d.LoadWorkspaces(ctx)
	}
	return d.LoadServices(ctx)
}

// LoadWorkspaces re-reads the registry. On failure the previous list is
// kept and the error is logged and returned.
func (d *Dashboard) LoadWorkspaces(ctx context.Context) error {
	workspaces, err := d.deps.Registry.List(ctx)
	if err != nil {
		d.log.Warn("load workspaces failed", zap.Error(err))
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.workspaces = workspaces
	d.loaded = true
	return nil
}

func (d *Dashboard) LoadServices(ctx context.Context) error {
	services, err := d.deps.Catalog.List(ctx)
	if err != nil {
		d.log.Warn("load services failed", zap.Error(err))
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.services = services
	return nil
}

func (d *Dashboard) ShowActive(ctx context.Context) error {
	return d.SwitchTab(ctx, TabActive)
}

// BackToList closes any open detail view and shows the refreshed list.
func (d *Dashboard) BackToList(ctx context.Context) error {
	d.CloseDetail()
	return d.ShowActive(ctx)
}

// RefreshWorkspaces is the user-triggered reload.
func (d *Dashboard) RefreshWorkspaces(ctx context.Context) error {
	if err := d.LoadWorkspaces(ctx); err != nil {
		d.notify("Error loading workspaces: "+core.Message(err), notify.SeverityError)
		return err
	}
	d.notify("Workspaces refreshed", notify.SeveritySuccess)
	return nil
}

func (d *Dashboard) Workspaces() []core.Workspace {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]core.Workspace(nil), d.workspaces...)
}

// EmptyText returns the placeholder for a loaded but empty list.
func (d *Dashboard) EmptyText() (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.loaded && len(d.workspaces) == 0 {
		return EmptyWorkspacesText, true
	}
	return "", false
}

func (d *Dashboard) Cards() []Card {
	host := d.deps.Detail.Host
	if host == "" {
		host = "localhost"
	}
	workspaces := d.Workspaces()
	cards := make([]Card, 0, len(workspaces))
	for _, ws := range workspaces {
		cards = append(cards, NewCard(ws, host))
	}
	return cards
}

func NewCard(ws core.Workspace, host string) Card {
	c := Card{
		Name:         ws.Name,
		Service:      ws.Service,
		Status:       ws.CurrentStatus,
		Created:      ws.Created.Time,
		LastAccessed: ws.LastAccessed.Time,
	}
	if ws.WebPort != nil {
		c.WebPort = *ws.WebPort
	}
	if port, ok := ws.LivePort(); ok {
		c.Connectable = true
		c.ConnectURL = "http://" + host + ":" + strconv.Itoa(port)
	}
	return c
}

func (d *Dashboard) ServiceCards() []ServiceCard {
	d.mu.Lock()
	defer d.mu.Unlock()
	cards := make([]ServiceCard, 0, len(d.services))
	for _, s := range d.services {
		cards = append(cards, ServiceCard{
			Name:        s.Name,
			Image:       s.Image,
			Icon:        s.DisplayIcon(),
			Description: s.Description,
		})
	}
	return cards
}

// OpenDetail replaces any open detail view with one for name. A failed
// load is reported to the user and leaves no detail view open.
func (d *Dashboard) OpenDetail(ctx context.Context, name string) (*Detail, error) {
	d.CloseDetail()

	detail := NewDetail(name, d.deps.Detail)
	if err := detail.Open(ctx); err != nil {
		detail.Close()
		d.notify("Error loading details", notify.SeverityError)
		return nil, err
	}

	// Another OpenDetail may have installed its view meanwhile; the
	// displaced one is closed so its poller and session stop.
	d.mu.Lock()
	prev := d.detail
	d.detail = detail
	d.mu.Unlock()
	if prev != nil {
		prev.Close()
	}
	return detail, nil
}

func (d *Dashboard) Detail() *Detail {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.detail
}

func (d *Dashboard) CloseDetail() {
	d.mu.Lock()
	detail := d.detail
	d.detail = nil
	d.mu.Unlock()
	if detail != nil {
		detail.Close()
	}
}

func (d *Dashboard) notify(msg string, sev notify.Severity) {
	if d.deps.Notifier != nil {
		d.deps.Notifier.Notify(msg, sev, 0)
	}
}
