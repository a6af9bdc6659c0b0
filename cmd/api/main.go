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

	httpadapter "github.com/kirillkom/program-assistant/internal/adapters/http"
	"github.com/kirillkom/program-assistant/internal/bootstrap"
	"github.com/kirillkom/program-assistant/internal/config"
	"github.com/kirillkom/program-assistant/internal/observability/logging"
	"github.com/kirillkom/program-assistant/internal/observability/metrics"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("api", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := metrics.NewHTTPServerMetrics("api", httpadapter.KnownPaths()...)
	pipelineMetrics := metrics.NewPipelineMetrics(httpMetrics.Registry(), "api")

	app, err := bootstrap.New(ctx, cfg, logger, pipelineMetrics)
	if err != nil {
		logger.Error("bootstrap_failed", slog.Any("error", err))
		os.Exit(1)
	}

	router := httpadapter.NewRouter(cfg, httpadapter.RouterDeps{
		Answerer:    app.Pipeline,
		Searcher:    app.Retriever,
		Classifier:  app.Classifier,
		Recommender: app.Recommender,
		Health:      app.Health,
		Metrics:     httpMetrics,
		Logger:      logger,
	}).Handler()
	server := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.QuestionTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("api_listening", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api_server_failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_failed", slog.Any("error", err))
	}
}
