package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// WorkspaceStatus is the backend-reported run status. Anything other than
// running (exited, created, unknown, ...) is presented as stopped.
type WorkspaceStatus string

const (
	WorkspaceRunning WorkspaceStatus = "running"
	WorkspaceStopped WorkspaceStatus = "stopped"
)

type Workspace struct {
	ID            string          `json:"id,omitempty"`
	Name          string          `json:"name"`
	Service       string          `json:"service"`
	CurrentStatus WorkspaceStatus `json:"current_status"`
	Image         string          `json:"image,omitempty"`
	ContainerID   string          `json:"container_id,omitempty"`
	ContainerName string          `json:"container_name,omitempty"`
	Created       Timestamp       `json:"created"`
	LastAccessed  Timestamp       `json:"last_accessed"`
	WebPort       *int            `json:"web_port,omitempty"`
	WebURL        string          `json:"web_url,omitempty"`
}

func (w Workspace) IsRunning() bool {
	return w.CurrentStatus == WorkspaceRunning
}

// Phase folds the backend status into running/stopped for display.
func (w Workspace) Phase() WorkspaceStatus {
	if w.IsRunning() {
		return WorkspaceRunning
	}
	return WorkspaceStopped
}

// LivePort returns the web port only when the workspace is running. A
// stopped workspace may keep a stale port that must not be connected to.
func (w Workspace) LivePort() (int, bool) {
	if !w.IsRunning() || w.WebPort == nil {
		return 0, false
	}
	return *w.WebPort, true
}

// Timestamp accepts RFC 3339 and the zone-less ISO-8601 form some
// backends emit (2006-01-02T15:04:05.999999).
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp: %w", err)
	}
	if s == "" {
		t.Time = time.Time{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			t.Time = parsed
			return nil
		}
	}
	return fmt.Errorf("timestamp: unrecognized format %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}
