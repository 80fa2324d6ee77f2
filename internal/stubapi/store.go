package stubapi

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"k8s.io/utils/clock"

	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/observability"
)

// Store is the stub backend's in-memory workspace bookkeeping. It runs no
// containers; status and logs change only through SetStatus and SetLogs.
type Store struct {
	clock         clock.PassiveClock
	services      []core.Service
	nextPort      int
	initialStatus core.WorkspaceStatus

	mu    sync.Mutex
	order []string
	items map[string]*core.Workspace
	logs  map[string]string
	inUse map[int]bool
}

func NewStore(services []core.Service, startPort int, initialStatus core.WorkspaceStatus, clk clock.PassiveClock) *Store {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if startPort <= 0 {
		startPort = 3000
	}
	if initialStatus == "" {
		initialStatus = core.WorkspaceRunning
	}
	return &Store{
		clock:         clk,
		services:      services,
		nextPort:      startPort,
		initialStatus: initialStatus,
		items:         make(map[string]*core.Workspace),
		logs:          make(map[string]string),
		inUse:         make(map[int]bool),
	}
}

func (s *Store) Services() []core.Service {
	return append([]core.Service(nil), s.services...)
}

func (s *Store) service(name string) (core.Service, bool) {
	for _, svc := range s.services {
		if svc.Name == name {
			return svc, true
		}
	}
	return core.Service{}, false
}

// Create records a new workspace and assigns it the next free web port.
// An empty name is replaced by {service}-{8 hex chars}.
func (s *Store) Create(service, name string) (core.Workspace, string, error) {
	if service == "" {
		return core.Workspace{}, "", core.NewAppError(core.ErrBadRequest, "Service name required")
	}
	if err := core.ValidateWorkspaceName(name); err != nil {
		return core.Workspace{}, "", err
	}
	svc, ok := s.service(service)
	if !ok {
		return core.Workspace{}, "", core.NewAppError(core.ErrBadRequest,
			fmt.Sprintf("Service '%s' not found in docker-compose.yml", service))
	}
	if name == "" {
		name = core.DefaultWorkspaceName(service)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.items[name]; exists {
		return core.Workspace{}, "", core.NewAppError(core.ErrConflict,
			fmt.Sprintf("Workspace '%s' already exists", name))
	}

	port := s.allocPortLocked()
	now := core.Timestamp{Time: s.clock.Now()}
	id := core.NewID()
	ws := &core.Workspace{
		ID:            id,
		Name:          name,
		Service:       service,
		CurrentStatus: s.initialStatus,
		Image:         svc.Image,
		ContainerID:   strings.ReplaceAll(id, "-", "")[:12],
		ContainerName: name,
		Created:       now,
		LastAccessed:  now,
		WebPort:       &port,
		WebURL:        "http://localhost:" + strconv.Itoa(port),
	}
	s.items[name] = ws
	s.order = append(s.order, name)
	s.logs[name] = fmt.Sprintf("[stub] %s started from %s\n", name, svc.Image)
	observability.StubWorkspaces.Set(float64(len(s.items)))

	msg := fmt.Sprintf("Workspace '%s' created successfully. Access at: %s", name, ws.WebURL)
	return copyWorkspace(ws), msg, nil
}

func (s *Store) allocPortLocked() int {
	for s.inUse[s.nextPort] {
		s.nextPort++
	}
	port := s.nextPort
	s.inUse[port] = true
	s.nextPort++
	return port
}

// List returns workspaces in creation order.
func (s *Store) List() []core.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Workspace, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, copyWorkspace(s.items[name]))
	}
	return out
}

// Get returns one workspace and marks it accessed.
func (s *Store) Get(name string) (core.Workspace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.items[name]
	if !ok {
		return core.Workspace{}, core.NewAppError(core.ErrNotFound, "Workspace not found")
	}
	ws.LastAccessed = core.Timestamp{Time: s.clock.Now()}
	return copyWorkspace(ws), nil
}

func (s *Store) Delete(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.items[name]
	if !ok {
		return "", core.NewAppError(core.ErrNotFound, "Workspace not found")
	}
	if ws.WebPort != nil {
		delete(s.inUse, *ws.WebPort)
	}
	delete(s.items, name)
	delete(s.logs, name)
	for i, n := range s.order {
		if n == name {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	observability.StubWorkspaces.Set(float64(len(s.items)))
	return fmt.Sprintf("Workspace '%s' deleted", name), nil
}

func (s *Store) Logs(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[name]; !ok {
		return "", core.NewAppError(core.ErrNotFound, "Container not found")
	}
	return s.logs[name], nil
}

// SetStatus overrides the reported status, standing in for a container
// that stopped or restarted.
func (s *Store) SetStatus(name string, status core.WorkspaceStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.items[name]
	if !ok {
		return core.NewAppError(core.ErrNotFound, "Workspace not found")
	}
	ws.CurrentStatus = status
	return nil
}

func (s *Store) SetLogs(name, logs string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[name]; !ok {
		return core.NewAppError(core.ErrNotFound, "Workspace not found")
	}
	s.logs[name] = logs
	return nil
}

func copyWorkspace(ws *core.Workspace) core.Workspace {
	out := *ws
	if ws.WebPort != nil {
		port := *ws.WebPort
		out.WebPort = &port
	}
	return out
}
