package stubapi

import "time"

type Config struct {
	HTTPAddr        string        `envconfig:"WSDESK_STUB_HTTP_ADDR" default:"0.0.0.0:5000"`
	MetricsAddr     string        `envconfig:"WSDESK_STUB_METRICS_ADDR" default:"0.0.0.0:9090"`
	LogLevel        string        `envconfig:"WSDESK_STUB_LOG_LEVEL" default:"info"`
	ShutdownTimeout time.Duration `envconfig:"WSDESK_STUB_SHUTDOWN_TIMEOUT" default:"10s"`
	// ComposeFile is a compose-style YAML file listing the services. The
	// built-in catalog is used when empty.
	ComposeFile string `envconfig:"WSDESK_STUB_COMPOSE_FILE"`
	StartPort   int    `envconfig:"WSDESK_STUB_START_PORT" default:"3000"`
	// InitialStatus is the status new workspaces report.
	InitialStatus string `envconfig:"WSDESK_STUB_INITIAL_STATUS" default:"running"`
}
