package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"github.com/lzjever/mbos-wsdesk/internal/core"
	"github.com/lzjever/mbos-wsdesk/internal/observability"
	"github.com/lzjever/mbos-wsdesk/internal/stubapi"
)

func main() {
	var cfg stubapi.Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, _ := observability.NewLogger(cfg.LogLevel)
	defer log.Sync()

	zap.ReplaceGlobals(log)

	reg := prometheus.DefaultRegisterer
	observability.RegisterAll(reg)

	services, err := loadServices(cfg.ComposeFile)
	if err != nil {
		log.Fatal("load service catalog failed", zap.Error(err))
	}
	log.Info("service catalog loaded", zap.Int("services", len(services)), zap.String("compose_file", cfg.ComposeFile))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store := stubapi.NewStore(services, cfg.StartPort, core.WorkspaceStatus(cfg.InitialStatus), clock.RealClock{})
	apiHandler := stubapi.NewAPI(store, log)
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      apiHandler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: mux,
	}

	go func() {
		log.Info("metrics server starting", zap.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		log.Info("stub backend starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("stub backend failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down stub backend")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)

	log.Info("stub backend stopped")
}

func loadServices(path string) ([]core.Service, error) {
	if path == "" {
		return stubapi.ParseCompose(strings.NewReader(stubapi.DefaultCompose))
	}
	return stubapi.LoadCompose(path)
}
