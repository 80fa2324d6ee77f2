package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6366f1")).Bold(true)
)

// ConsoleRenderer prints each notification once, styled by severity.
// Printed lines cannot be taken back, so Dismiss is a no-op.
type ConsoleRenderer struct {
	mu sync.Mutex
	w  io.Writer
}

func NewConsoleRenderer(w io.Writer) *ConsoleRenderer {
	return &ConsoleRenderer{w: w}
}

func (r *ConsoleRenderer) Show(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.w, Badge(n.Severity)+" "+n.Message)
}

func (r *ConsoleRenderer) Dismiss(Notification) {}

// Badge returns the styled severity marker.
func Badge(s Severity) string {
	switch s {
	case SeveritySuccess:
		return successStyle.Render("✔")
	case SeverityError:
		return errorStyle.Render("✖")
	default:
		return infoStyle.Render("ℹ")
	}
}

// LogRenderer mirrors notifications into the structured log.
type LogRenderer struct {
	log *zap.Logger
}

func NewLogRenderer(log *zap.Logger) *LogRenderer {
	return &LogRenderer{log: log}
}

func (r *LogRenderer) Show(n Notification) {
	fields := []zap.Field{
		zap.Uint64("notification_id", n.ID),
		zap.String("severity", string(n.Severity)),
		zap.Duration("duration", n.Duration),
	}
	if n.Severity == SeverityError {
		r.log.Warn(n.Message, fields...)
		return
	}
	r.log.Info(n.Message, fields...)
}

func (r *LogRenderer) Dismiss(n Notification) {
	r.log.Debug("notification dismissed", zap.Uint64("notification_id", n.ID))
}
