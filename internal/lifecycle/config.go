package lifecycle

import "time"

type Config struct {
	// SettleDelay is waited after a successful create before the registry
	// is re-read. It narrows, but does not close, the window in which a
	// fresh workspace is not yet listed.
	SettleDelay time.Duration `envconfig:"WSDESK_SETTLE_DELAY" default:"2s"`
}

const DefaultSettleDelay = 2 * time.Second
