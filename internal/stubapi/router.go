// Package stubapi is an in-memory implementation of the workspace
// backend's REST surface, for local development and end-to-end tests.
package stubapi

import (
	"errors"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/stubapi/middleware"
)

type API struct {
	store *Store
	log   *zap.Logger
}

func NewAPI(store *Store, log *zap.Logger) *API {
	return &API{store: store, log: log}
}

func (a *API) Store() *Store { return a.store }

func (a *API) Router() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Metrics)
	r.Use(middleware.Recoverer(a.log))
	r.Use(middleware.Logger(a.log))
	r.Use(chiMiddleware.AllowContentType("application/json"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", a.Health)
		r.Get("/services", a.ListServices)
		r.Get("/workspaces", a.ListWorkspaces)
		r.Post("/workspace/create", a.CreateWorkspace)
		r.Get("/workspace/{name}", a.GetWorkspace)
		r.Post("/workspace/{name}/delete", a.DeleteWorkspace)
		r.Get("/workspace/{name}/logs", a.WorkspaceLogs)
	})

	return r
}

func asAppError(err error) *core.AppError {
	var appErr *core.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return core.WrapAppError(core.ErrInternal, "internal server error", err)
}
