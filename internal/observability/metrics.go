package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	// backend client metrics
	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wsdesk_api_requests_total",
		Help: "Backend API calls issued by the client",
	}, []string{"op", "code"})

	APIRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wsdesk_api_request_duration_seconds",
		Help:    "Backend API call latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	// lifecycle metrics
	LifecycleOpsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wsdesk_lifecycle_ops_total",
		Help: "Create/delete outcomes",
	}, []string{"op", "result"})

	CreateInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wsdesk_create_in_flight",
		Help: "1 while a create request is in flight",
	})

	// poller metrics
	PollTicksTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wsdesk_poll_ticks_total",
		Help: "Status poll ticks by result",
	}, []string{"result"})

	// session metrics
	SessionTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wsdesk_session_transitions_total",
		Help: "Session transport state transitions",
	}, []string{"from", "to"})

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wsdesk_active_sessions",
		Help: "Open session bridges",
	})

	// notification metrics
	NotificationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wsdesk_notifications_total",
		Help: "Notifications shown by severity",
	}, []string{"severity"})

	// stub backend metrics
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "wsdesk_stub_http_requests_total",
		Help: "Total HTTP requests served by the stub backend",
	}, []string{"route", "method", "code"})

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wsdesk_stub_http_request_duration_seconds",
		Help:    "Stub backend HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	ActiveRequests = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wsdesk_stub_active_requests",
		Help: "Current in-flight stub backend requests",
	})

	StubWorkspaces = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "wsdesk_stub_workspaces",
		Help: "Workspaces tracked by the stub backend",
	})
)

func RegisterAll(reg prometheus.Registerer) {
	reg.MustRegister(
		APIRequestsTotal, APIRequestDuration,
		LifecycleOpsTotal, CreateInFlight,
		PollTicksTotal,
		SessionTransitions, ActiveSessions,
		NotificationsTotal,
		HTTPRequestsTotal, HTTPRequestDuration, ActiveRequests, StubWorkspaces,
	)
}
