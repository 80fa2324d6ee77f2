package main

import (
	"context"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lzjever/mbos-wsdesk/internal/observability"
)

// startMetricsServer exposes the client-side collectors for the lifetime
// of the command. Nothing is served when addr is empty.
func startMetricsServer(ctx context.Context, addr string) error {
	if addr == "" {
		return nil
	}
	reg := prometheus.NewRegistry()
	observability.RegisterAll(reg)

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux}

	go func() { _ = srv.Serve(ln) }()
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()
	return nil
}
