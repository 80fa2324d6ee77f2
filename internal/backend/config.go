package backend

import "time"

type Config struct {
	APIURL         string        `envconfig:"WSDESK_API_URL" default:"http://localhost:5000"`
	RequestTimeout time.Duration `envconfig:"WSDESK_REQUEST_TIMEOUT" default:"0s"`
}
