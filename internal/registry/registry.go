// Package registry is a pull-through view of the backend's workspaces.
package registry

import (
	"context"
	"fmt"

	"github.com/lzjever/mbos-wsdesk/internal/core"
)

type Source interface {
	ListWorkspaces(ctx context.Context) ([]core.Workspace, error)
	GetWorkspace(ctx context.Context, name string) (core.Workspace, error)
	WorkspaceLogs(ctx context.Context, name string) (string, error)
}

// Registry holds no state of its own; the backend is the only authority.
type Registry struct {
	src Source
}

func New(src Source) *Registry {
	return &Registry{src: src}
}

// List returns workspaces in backend order.
func (r *Registry) List(ctx context.Context) ([]core.Workspace, error) {
	workspaces, err := r.src.ListWorkspaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("list workspaces: %w", err)
	}
	return workspaces, nil
}

func (r *Registry) Get(ctx context.Context, name string) (core.Workspace, error) {
	ws, err := r.src.GetWorkspace(ctx, name)
	if err != nil {
		return core.Workspace{}, fmt.Errorf("get workspace %s: %w", name, err)
	}
	return ws, nil
}

func (r *Registry) Logs(ctx context.Context, name string) (string, error) {
	logs, err := r.src.WorkspaceLogs(ctx, name)
	if err != nil {
		return "", fmt.Errorf("workspace logs %s: %w", name, err)
	}
	return logs, nil
}
