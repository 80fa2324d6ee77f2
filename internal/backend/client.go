// Package backend is the REST/JSON client for the workspace backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/observability"
)

const RequestIDHeader = "X-Request-ID"

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout bounds every request. Zero leaves requests unbounded.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func NewClient(baseURL string, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		log:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Host returns the hostname the client reaches the backend on. Remote
// display endpoints live on the same host.
func (c *Client) Host() string {
	u, err := url.Parse(c.baseURL)
	if err != nil || u.Hostname() == "" {
		return "localhost"
	}
	return u.Hostname()
}

type servicesResponse struct {
	Services []core.Service `json:"services"`
}

type workspacesResponse struct {
	Workspaces []core.Workspace `json:"workspaces"`
}

type workspaceResponse struct {
	Workspace core.Workspace `json:"workspace"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type logsResponse struct {
	Logs string `json:"logs"`
}

type CreateWorkspaceRequest struct {
	Service string `json:"service"`
	Name    string `json:"name,omitempty"`
}

type Health struct {
	Status string `json:"status"`
	Docker bool   `json:"docker"`
}

func (c *Client) ListServices(ctx context.Context) ([]core.Service, error) {
	var resp servicesResponse
	if err := c.do(ctx, "list_services", http.MethodGet, "/api/services", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Services, nil
}

func (c *Client) ListWorkspaces(ctx context.Context) ([]core.Workspace, error) {
	var resp workspacesResponse
	if err := c.do(ctx, "list_workspaces", http.MethodGet, "/api/workspaces", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Workspaces, nil
}

func (c *Client) GetWorkspace(ctx context.Context, name string) (core.Workspace, error) {
	var resp workspaceResponse
	if err := c.do(ctx, "get_workspace", http.MethodGet, "/api/workspace/"+url.PathEscape(name), nil, &resp); err != nil {
		return core.Workspace{}, err
	}
	return resp.Workspace, nil
}

// CreateWorkspace submits a create request and returns the backend's
// success message. An empty name lets the backend choose one.
func (c *Client) CreateWorkspace(ctx context.Context, service, name string) (string, error) {
	var resp messageResponse
	req := CreateWorkspaceRequest{Service: service, Name: name}
	if err := c.do(ctx, "create_workspace", http.MethodPost, "/api/workspace/create", req, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) DeleteWorkspace(ctx context.Context, name string) (string, error) {
	var resp messageResponse
	if err := c.do(ctx, "delete_workspace", http.MethodPost, "/api/workspace/"+url.PathEscape(name)+"/delete", nil, &resp); err != nil {
		return "", err
	}
	return resp.Message, nil
}

func (c *Client) WorkspaceLogs(ctx context.Context, name string) (string, error) {
	var resp logsResponse
	if err := c.do(ctx, "workspace_logs", http.MethodGet, "/api/workspace/"+url.PathEscape(name)+"/logs", nil, &resp); err != nil {
		return "", err
	}
	return resp.Logs, nil
}

func (c *Client) Health(ctx context.Context) (Health, error) {
	var resp Health
	err := c.do(ctx, "health", http.MethodGet, "/api/health", nil, &resp)
	return resp, err
}

func (c *Client) do(ctx context.Context, op, method, path string, body interface{}, out interface{}) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return core.WrapAppError(core.ErrTransport, "invalid backend URL", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	requestID := core.NewID()
	req.Header.Set(RequestIDHeader, requestID)

	log := c.log.With(zap.String("op", op), zap.String("request_id", requestID))
	start := time.Now()
	defer func() {
		observability.APIRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	resp, err := c.http.Do(req)
	if err != nil {
		observability.APIRequestsTotal.WithLabelValues(op, "error").Inc()
		log.Debug("backend request failed", zap.Error(err))
		return core.WrapAppError(core.ErrTransport, "Network error: backend unreachable", err)
	}
	defer resp.Body.Close()

	observability.APIRequestsTotal.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return core.WrapAppError(core.ErrTransport, "Network error: reading response", err)
	}
	log.Debug("backend response", zap.Int("status", resp.StatusCode), zap.Duration("duration", time.Since(start)))
	return parseResponse(resp.StatusCode, b, out)
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func parseResponse(status int, b []byte, out interface{}) error {
	if status >= 400 {
		var errResp errorResponse
		if err := json.Unmarshal(b, &errResp); err != nil {
			return core.WrapAppError(core.ErrTransport, fmt.Sprintf("backend returned non-JSON response (status %d)", status), err)
		}
		msg := errResp.Error
		if msg == "" {
			msg = errResp.Message
		}
		if msg == "" {
			msg = http.StatusText(status)
		}
		return core.NewAppError(classify(status, msg), msg)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(b, out); err != nil {
		return core.WrapAppError(core.ErrTransport, "backend returned non-JSON response", err)
	}
	return nil
}

// classify maps a backend failure onto the client's error taxonomy. Some
// backends report duplicate names as 400, so the message is consulted too.
func classify(status int, msg string) core.ErrorCode {
	switch {
	case status == http.StatusNotFound:
		return core.ErrNotFound
	case status == http.StatusConflict:
		return core.ErrConflict
	case status >= 500:
		return core.ErrTransport
	case strings.Contains(strings.ToLower(msg), "already exists"):
		return core.ErrConflict
	default:
		return core.ErrBadRequest
	}
}
