// Package notify surfaces asynchronous outcomes as transient notifications.
package notify

import (
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/lzjever/mbos-wsdesk/internal/observability"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

const DefaultDuration = 5 * time.Second

// Sink accepts notifications. Implementations must not block the caller
// and must not fail.
type Sink interface {
	Notify(message string, severity Severity, duration time.Duration)
}

type Notification struct {
	ID       uint64
	Message  string
	Severity Severity
	Duration time.Duration
	ShownAt  time.Time
}

// Renderer displays and removes notifications.
type Renderer interface {
	Show(n Notification)
	Dismiss(n Notification)
}

// Center tracks active notifications and dismisses each one after its
// duration. Any number may be active at once.
type Center struct {
	clock     clock.WithDelayedExecution
	renderers []Renderer
	log       *zap.Logger

	mu     sync.Mutex
	nextID uint64
	active map[uint64]Notification
}

func NewCenter(clk clock.WithDelayedExecution, log *zap.Logger, renderers ...Renderer) *Center {
	return &Center{
		clock:     clk,
		renderers: renderers,
		log:       log,
		active:    make(map[uint64]Notification),
	}
}

func (c *Center) Notify(message string, severity Severity, duration time.Duration) {
	if duration <= 0 {
		duration = DefaultDuration
	}

	c.mu.Lock()
	c.nextID++
	n := Notification{
		ID:       c.nextID,
		Message:  message,
		Severity: severity,
		Duration: duration,
		ShownAt:  c.clock.Now(),
	}
	c.active[n.ID] = n
	c.mu.Unlock()

	observability.NotificationsTotal.WithLabelValues(string(severity)).Inc()
	for _, r := range c.renderers {
		c.render(func() { r.Show(n) })
	}
	// Scheduled outside c.mu: fake clocks run callbacks under their own lock.
	c.clock.AfterFunc(duration, func() { c.dismiss(n.ID) })
}

func (c *Center) Info(message string)    { c.Notify(message, SeverityInfo, 0) }
func (c *Center) Success(message string) { c.Notify(message, SeveritySuccess, 0) }
func (c *Center) Error(message string)   { c.Notify(message, SeverityError, 0) }

// Active returns the notifications currently shown, oldest first.
func (c *Center) Active() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Notification, 0, len(c.active))
	for _, n := range c.active {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (c *Center) dismiss(id uint64) {
	c.mu.Lock()
	n, ok := c.active[id]
	delete(c.active, id)
	c.mu.Unlock()
	if !ok {
		return
	}
	for _, r := range c.renderers {
		c.render(func() { r.Dismiss(n) })
	}
}

func (c *Center) render(fn func()) {
	defer func() {
		if rvr := recover(); rvr != nil {
			c.log.Error("notification renderer panicked", zap.Any("panic", rvr))
		}
	}()
	fn()
}
