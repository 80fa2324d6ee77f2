// Package catalog lists the service templates workspaces are launched from.
package catalog

import (
	"context"
	"fmt"

	"github.com/lzjever/mbos-wsdesk/internal/core"
)

type Source interface {
	ListServices(ctx context.Context) ([]core.Service, error)
}

// Catalog is stateless: every call goes to the backend.
type Catalog struct {
	src Source
}

func New(src Source) *Catalog {
	return &Catalog{src: src}
}

func (c *Catalog) List(ctx context.Context) ([]core.Service, error) {
	services, err := c.src.ListServices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// Names returns service names in catalog order, for a selection control.
func (c *Catalog) Names(ctx context.Context) ([]string, error) {
	services, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(services))
	for i, s := range services {
		names[i] = s.Name
	}
	return names, nil
}

func (c *Catalog) Lookup(ctx context.Context, name string) (core.Service, error) {
	services, err := c.List(ctx)
	if err != nil {
		return core.Service{}, err
	}
	for _, s := range services {
		if s.Name == name {
			return s, nil
		}
	}
	return core.Service{}, core.NewAppError(core.ErrNotFound, fmt.Sprintf("Service '%s' not found", name))
}
