package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/filmlog/auditor/internal/config"
	"github.com/filmlog/auditor/internal/database"
	"github.com/filmlog/auditor/internal/logger"
	"github.com/filmlog/auditor/internal/metrics"
	"github.com/filmlog/auditor/internal/services"
	"github.com/filmlog/auditor/internal/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Log to both stdout and a rotated file.
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "ensure log directory: %v\n", err)
		os.Exit(1)
	}
	rotator := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir, "auditord.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	logger.Init(cfg.Debug, io.MultiWriter(os.Stdout, rotator))
	logger.Log().Infof("starting %s version %s", version.Name, version.Full())

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		logger.Log().WithError(err).Fatal("Failed to open database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Log().WithError(err).Fatal("Failed to migrate database")
	}

	registry := prometheus.NewRegistry()
	metrics.Register(registry)

	// The surrounding application records events in-process through
	// services.AuditService; this daemon owns the shared store's schema,
	// the notification sweep and the metrics listener.
	alertService := services.NewAlertService(db, cfg.TrailPath)
	notifier := services.NewNotifierService(alertService, cfg.NotifyURLs, cfg.NotifyInterval)
	notifier.Start()
	defer notifier.Stop()

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	logger.Log().Infof("auditord started, metrics on :%d", cfg.MetricsPort)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logger.Log().WithError(err).Fatal("Metrics server failed")
		}
	case sig := <-stop:
		logger.Log().Infof("received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}
