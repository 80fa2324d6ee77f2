package stubapi

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/stubapi/middleware"
)

type CreateWorkspaceRequest struct {
	Service string `json:"service"`
	Name    string `json:"name"`
}

type CreateWorkspaceResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message"`
	Workspace core.Workspace `json:"workspace"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Health always reports healthy: there is no container runtime behind
// the stub to lose.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status": "healthy",
		"docker": true,
	})
}

func (a *API) ListServices(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"services": a.store.Services(),
	})
}

func (a *API) ListWorkspaces(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"workspaces": a.store.List(),
	})
}

func (a *API) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws, err := a.store.Get(chi.URLParam(r, "name"))
	if err != nil {
		WriteError(w, asAppError(err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{"workspace": ws})
}

func (a *API) CreateWorkspace(w http.ResponseWriter, r *http.Request) {
	var req CreateWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "invalid request body"))
		return
	}

	ws, msg, err := a.store.Create(req.Service, req.Name)
	if err != nil {
		a.log.Info("create workspace rejected",
			zap.String("service", req.Service),
			zap.String("workspace", req.Name),
			zap.String("request_id", middleware.GetRequestID(r)),
			zap.Error(err),
		)
		WriteError(w, asAppError(err))
		return
	}

	a.log.Info("workspace created",
		zap.String("workspace", ws.Name),
		zap.Int("web_port", *ws.WebPort),
		zap.String("request_id", middleware.GetRequestID(r)),
	)
	WriteJSON(w, http.StatusCreated, CreateWorkspaceResponse{Success: true, Message: msg, Workspace: ws})
}

func (a *API) DeleteWorkspace(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	msg, err := a.store.Delete(name)
	if err != nil {
		WriteError(w, asAppError(err))
		return
	}
	a.log.Info("workspace deleted",
		zap.String("workspace", name),
		zap.String("request_id", middleware.GetRequestID(r)),
	)
	WriteJSON(w, http.StatusOK, MessageResponse{Success: true, Message: msg})
}

func (a *API) WorkspaceLogs(w http.ResponseWriter, r *http.Request) {
	logs, err := a.store.Logs(chi.URLParam(r, "name"))
	if err != nil {
		WriteError(w, asAppError(err))
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"logs": logs})
}
