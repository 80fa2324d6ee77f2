// Package lifecycle issues workspace create and delete requests and
// reports their outcomes.
package lifecycle

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/notify"
	"github.com/lzjever/mbos-wsdesk/internal/observability"
)

type Backend interface {
	CreateWorkspace(ctx context.Context, service, name string) (string, error)
	DeleteWorkspace(ctx context.Context, name string) (string, error)
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

type ConfirmFunc func(ctx context.Context, prompt string) bool

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) bool { return f(ctx, prompt) }

// Alerter shows a blocking message the user must acknowledge.
type Alerter interface {
	Alert(ctx context.Context, message string)
}

// Presenter is the view side driven after a successful operation.
type Presenter interface {
	// LoadWorkspaces re-reads the registry view.
	LoadWorkspaces(ctx context.Context) error
	// ShowActive switches to the active-workspaces presentation, loading it.
	ShowActive(ctx context.Context) error
	// BackToList leaves a workspace detail view for the list.
	BackToList(ctx context.Context) error
}

// Origin is the view a delete was started from.
type Origin int

const (
	FromList Origin = iota
	FromDetail
)

func (o Origin) String() string {
	if o == FromDetail {
		return "detail"
	}
	return "list"
}

type Deps struct {
	Backend   Backend
	Notifier  notify.Sink
	Confirmer Confirmer
	Alerter   Alerter
	Presenter Presenter
	Clock     clock.Clock
}

type Controller struct {
	backend   Backend
	notifier  notify.Sink
	confirmer Confirmer
	alerter   Alerter
	presenter Presenter
	clock     clock.Clock
	cfg       Config
	log       *zap.Logger

	guard createGuard
}

func New(deps Deps, cfg Config, log *zap.Logger) *Controller {
	c := &Controller{
		backend:   deps.Backend,
		notifier:  deps.Notifier,
		confirmer: deps.Confirmer,
		alerter:   deps.Alerter,
		presenter: deps.Presenter,
		clock:     deps.Clock,
		cfg:       cfg,
		log:       log,
	}
	if c.clock == nil {
		c.clock = clock.RealClock{}
	}
	if c.confirmer == nil {
		// Nothing destructive happens without someone to ask.
		c.confirmer = ConfirmFunc(func(context.Context, string) bool { return false })
	}
	if c.alerter == nil {
		c.alerter = notifierAlerter{c.notifier}
	}
	if c.presenter == nil {
		c.presenter = nopPresenter{}
	}
	if c.cfg.SettleDelay <= 0 {
		c.cfg.SettleDelay = DefaultSettleDelay
	}
	return c
}

// SetPresenter attaches the view once it exists; views are usually built
// after the controller.
func (c *Controller) SetPresenter(p Presenter) {
	if p == nil {
		p = nopPresenter{}
	}
	c.presenter = p
}

// CreateEnabled reports whether the create trigger may be used.
func (c *Controller) CreateEnabled() bool {
	return c.guard.enabled()
}

// WatchCreateEnabled registers fn to be told when the create trigger is
// disabled or re-enabled. The returned func unregisters it.
func (c *Controller) WatchCreateEnabled(fn func(enabled bool)) func() {
	return c.guard.watch(fn)
}

// Create validates its inputs, submits the request and, on success, waits
// the settle delay before refreshing the active-workspaces view. An empty
// name lets the backend choose one. If ctx ends during the settle delay
// the refresh is skipped; the create itself has already succeeded.
func (c *Controller) Create(ctx context.Context, service, name string) (string, error) {
	log := c.log.With(zap.String("op", "create"), zap.String("service", service), zap.String("workspace", name))

	if err := core.ValidateServiceName(service); err != nil {
		return "", c.fail("create", err, "Failed to create workspace")
	}
	if err := core.ValidateWorkspaceName(name); err != nil {
		return "", c.fail("create", err, "Failed to create workspace")
	}

	if !c.guard.acquire() {
		observability.LifecycleOpsTotal.WithLabelValues("create", "busy").Inc()
		return "", core.NewAppError(core.ErrBusy, "A workspace is already being created")
	}
	defer c.guard.release()

	msg, err := c.backend.CreateWorkspace(ctx, service, name)
	if err != nil {
		log.Warn("create workspace failed", zap.Error(err))
		return "", c.fail("create", err, "Failed to create workspace")
	}
	observability.LifecycleOpsTotal.WithLabelValues("create", "ok").Inc()
	log.Info("workspace created", zap.String("message", msg))
	c.notifier.Notify(msg, notify.SeveritySuccess, 0)

	select {
	case <-ctx.Done():
		log.Debug("create settled after caller went away; skipping refresh")
		return msg, nil
	case <-c.clock.After(c.cfg.SettleDelay):
	}

	if err := c.presenter.ShowActive(ctx); err != nil {
		log.Warn("refresh after create failed", zap.Error(err))
	}
	return msg, nil
}

// Delete asks for confirmation and only then submits the delete. A
// declined confirmation returns an ErrDeclined error and sends nothing.
func (c *Controller) Delete(ctx context.Context, name string, origin Origin) (string, error) {
	log := c.log.With(zap.String("op", "delete"), zap.String("workspace", name), zap.Stringer("origin", origin))

	prompt := fmt.Sprintf("Delete workspace %q? This action cannot be undone.", name)
	if !c.confirmer.Confirm(ctx, prompt) {
		observability.LifecycleOpsTotal.WithLabelValues("delete", "declined").Inc()
		log.Debug("delete not confirmed")
		return "", core.NewAppError(core.ErrDeclined, "Delete not confirmed")
	}

	msg, err := c.backend.DeleteWorkspace(ctx, name)
	if err != nil {
		log.Warn("delete workspace failed", zap.Error(err))
		observability.LifecycleOpsTotal.WithLabelValues("delete", string(core.CodeOf(err))).Inc()
		text := failureText(err, "Failed to delete workspace")
		if origin == FromDetail {
			c.alerter.Alert(ctx, "Error: "+text)
		} else {
			c.notifier.Notify(text, notify.SeverityError, 0)
		}
		return "", err
	}
	observability.LifecycleOpsTotal.WithLabelValues("delete", "ok").Inc()
	log.Info("workspace deleted", zap.String("message", msg))

	// The detail view's subject is gone; leave it.
	if origin == FromDetail {
		if err := c.presenter.BackToList(ctx); err != nil {
			log.Warn("navigate back after delete failed", zap.Error(err))
		}
		return msg, nil
	}
	c.notifier.Notify(msg, notify.SeveritySuccess, 0)
	if err := c.presenter.LoadWorkspaces(ctx); err != nil {
		log.Warn("refresh after delete failed", zap.Error(err))
	}
	return msg, nil
}

func (c *Controller) fail(op string, err error, fallback string) error {
	observability.LifecycleOpsTotal.WithLabelValues(op, string(core.CodeOf(err))).Inc()
	c.notifier.Notify(failureText(err, fallback), notify.SeverityError, 0)
	return err
}

func failureText(err error, fallback string) string {
	if msg := core.Message(err); msg != "" {
		return msg
	}
	return fallback
}

type notifierAlerter struct {
	sink notify.Sink
}

func (a notifierAlerter) Alert(_ context.Context, message string) {
	a.sink.Notify(message, notify.SeverityError, 0)
}

type nopPresenter struct{}

func (nopPresenter) LoadWorkspaces(context.Context) error { return nil }
func (nopPresenter) ShowActive(context.Context) error     { return nil }
func (nopPresenter) BackToList(context.Context) error     { return nil }
