package view

import "time"

type Config struct {
	PollInterval time.Duration `envconfig:"WSDESK_POLL_INTERVAL" default:"5s"`
	// SessionHost overrides the host remote displays are dialed on. Empty
	// means the backend's host.
	SessionHost        string `envconfig:"WSDESK_SESSION_HOST"`
	SessionInsecureTLS bool   `envconfig:"WSDESK_SESSION_INSECURE_TLS" default:"false"`
}
