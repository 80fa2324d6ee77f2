package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lzjever/mbos-wsdesk/internal/core"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", zap.NewNop())
}

func TestClient_ListServices(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/services", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get(RequestIDHeader))
		w.Write([]byte(`{"services":[{"name":"firefox","image":"lscr.io/firefox"},{"name":"tor","image":"tor","icon":"🧅"}]}`))
	})

	services, err := c.ListServices(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "firefox", services[0].Name)
	assert.Equal(t, core.DefaultServiceIcon, services[0].DisplayIcon())
	assert.Equal(t, "🧅", services[1].DisplayIcon())
}

func TestClient_CreateWorkspace_SendsBody(t *testing.T) {
	var got CreateWorkspaceRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/workspace/create", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"message":"Workspace 'demo1' created successfully."}`))
	})

	msg, err := c.CreateWorkspace(context.Background(), "ubuntu-desktop", "demo1")
	require.NoError(t, err)
	assert.Equal(t, "Workspace 'demo1' created successfully.", msg)
	assert.Equal(t, CreateWorkspaceRequest{Service: "ubuntu-desktop", Name: "demo1"}, got)
}

func TestClient_CreateWorkspace_OmitsEmptyName(t *testing.T) {
	var raw map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		w.Write([]byte(`{"message":"ok"}`))
	})

	_, err := c.CreateWorkspace(context.Background(), "firefox", "")
	require.NoError(t, err)
	_, hasName := raw["name"]
	assert.False(t, hasName, "empty name must not be sent")
}

func TestClient_ErrorClassification(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		code   core.ErrorCode
		msg    string
	}{
		{"not found", 404, `{"error":"Workspace not found"}`, core.ErrNotFound, "Workspace not found"},
		{"conflict", 409, `{"error":"Workspace 'demo1' already exists"}`, core.ErrConflict, "Workspace 'demo1' already exists"},
		{"duplicate reported as 400", 400, `{"success":false,"error":"Workspace 'demo1' already exists"}`, core.ErrConflict, "Workspace 'demo1' already exists"},
		{"other 4xx verbatim", 400, `{"error":"Service 'x' not found in docker-compose.yml"}`, core.ErrBadRequest, "Service 'x' not found in docker-compose.yml"},
		{"5xx with json", 500, `{"error":"Docker not available"}`, core.ErrTransport, "Docker not available"},
		{"5xx html", 502, `<html>Bad Gateway</html>`, core.ErrTransport, "backend returned non-JSON response (status 502)"},
		{"4xx without message", 403, `{}`, core.ErrBadRequest, "Forbidden"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})
			_, err := c.GetWorkspace(context.Background(), "demo1")
			require.Error(t, err)
			assert.Equal(t, tc.code, core.CodeOf(err))
			assert.Equal(t, tc.msg, core.Message(err))
		})
	}
}

func TestClient_NonJSONSuccessIsTransportError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>login</html>`))
	})
	_, err := c.ListWorkspaces(context.Background())
	assert.True(t, core.IsCode(err, core.ErrTransport), "got %v", err)
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewClient(url, zap.NewNop())
	_, err := c.ListWorkspaces(context.Background())
	assert.True(t, core.IsCode(err, core.ErrTransport), "got %v", err)
}

func TestClient_PathEscaping(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/workspace/a%2Fb/logs", r.URL.EscapedPath())
		w.Write([]byte(`{"logs":"line1\nline2"}`))
	})
	logs, err := c.WorkspaceLogs(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "line1\nline2", logs)
}

func TestClient_Host(t *testing.T) {
	assert.Equal(t, "example.org", NewClient("https://example.org:5000/", zap.NewNop()).Host())
	assert.Equal(t, "localhost", NewClient("::bad", zap.NewNop()).Host())
}
