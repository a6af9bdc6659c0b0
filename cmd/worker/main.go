package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/program-assistant/internal/bootstrap"
	"github.com/kirillkom/program-assistant/internal/config"
	"github.com/kirillkom/program-assistant/internal/infrastructure/queue/nats"
	"github.com/kirillkom/program-assistant/internal/observability/logging"
	"github.com/kirillkom/program-assistant/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("worker", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	workerMetrics := metrics.NewWorkerMetrics("worker")
	pipelineMetrics := metrics.NewPipelineMetrics(workerMetrics.Registry(), "worker")

	app, err := bootstrap.New(ctx, cfg, logger, pipelineMetrics)
	if err != nil {
		logger.Error("bootstrap_failed", slog.Any("error", err))
		os.Exit(1)
	}

	bus, err := nats.New(cfg.NATSURL, cfg.NATSSubject, cfg.NATSQueueGroup, nats.Options{
		ResilienceExecutor: app.Executor,
		Logger:             logger,
	})
	if err != nil {
		logger.Error("nats_connect_failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bus.Close()

	metricsServer := &http.Server{
		Addr:              ":" + cfg.WorkerMetricsPort,
		Handler:           workerMetrics.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("worker_metrics_server_failed", slog.Any("error", err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	err = bus.Serve(ctx, app.Pipeline, nats.ServeOptions{
		Concurrency: cfg.WorkerConcurrency,
		Timeout:     cfg.QuestionTimeout,
		Service:     "worker",
		Recorder:    workerMetrics,
	})
	if err != nil {
		logger.Error("worker_serve_failed", slog.Any("error", err))
		os.Exit(1)
	}
}
