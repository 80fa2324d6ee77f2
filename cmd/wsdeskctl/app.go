package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/lzjever/mbos-wsdesk/internal/backend"
	"github.com/lzjever/mbos-wsdesk/internal/catalog"
	"github.com/lzjever/mbos-wsdesk/internal/lifecycle"
	"github.com/lzjever/mbos-wsdesk/internal/notify"
	"github.com/lzjever/mbos-wsdesk/internal/observability"
	"github.com/lzjever/mbos-wsdesk/internal/registry"
	"github.com/lzjever/mbos-wsdesk/internal/session"
	"github.com/lzjever/mbos-wsdesk/internal/view"
)

// app is everything one command invocation works with.
type app struct {
	log        *zap.Logger
	client     *backend.Client
	catalog    *catalog.Catalog
	registry   *registry.Registry
	notifier   *notify.Center
	controller *lifecycle.Controller
	dashboard  *view.Dashboard
}

type config struct {
	Backend   backend.Config
	Lifecycle lifecycle.Config
	View      view.Config
}

func newApp() (*app, error) {
	var cfg config
	for _, c := range []interface{}{&cfg.Backend, &cfg.Lifecycle, &cfg.View} {
		if err := envconfig.Process("", c); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	if apiURL != "" {
		cfg.Backend.APIURL = apiURL
	}

	log, err := observability.NewLogger(logLevel)
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	var opts []backend.Option
	if cfg.Backend.RequestTimeout > 0 {
		opts = append(opts, backend.WithTimeout(cfg.Backend.RequestTimeout))
	}
	client := backend.NewClient(cfg.Backend.APIURL, log, opts...)

	a := &app{
		log:      log,
		client:   client,
		catalog:  catalog.New(client),
		registry: registry.New(client),
		notifier: notify.NewCenter(clock.RealClock{}, log,
			notify.NewConsoleRenderer(os.Stderr),
			notify.NewLogRenderer(log),
		),
	}

	host := cfg.View.SessionHost
	if host == "" {
		host = client.Host()
	}
	a.dashboard = view.NewDashboard(view.DashboardDeps{
		Registry: a.registry,
		Catalog:  a.catalog,
		Notifier: a.notifier,
		Detail: view.DetailDeps{
			Dialer: &session.WebSocketDialer{
				InsecureSkipVerify: cfg.View.SessionInsecureTLS,
				Log:                log,
			},
			Host:   host,
			Config: cfg.View,
		},
		Log: log,
	})
	a.controller = lifecycle.New(lifecycle.Deps{
		Backend:   client,
		Notifier:  a.notifier,
		Confirmer: lifecycle.ConfirmFunc(confirm),
		Alerter:   consoleAlerter{},
		Presenter: a.dashboard,
	}, cfg.Lifecycle, log)
	return a, nil
}

func (a *app) close() {
	a.dashboard.CloseDetail()
	_ = a.log.Sync()
}

// run builds the app, runs fn and tears the app down again.
func run(ctx context.Context, fn func(ctx context.Context, a *app) error) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

type consoleAlerter struct{}

func (consoleAlerter) Alert(_ context.Context, message string) {
	fmt.Fprintln(os.Stderr, notify.Badge(notify.SeverityError)+" "+message)
}
