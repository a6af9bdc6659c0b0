package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/kirillkom/program-assistant/internal/adapters/cli"
	"github.com/kirillkom/program-assistant/internal/bootstrap"
	"github.com/kirillkom/program-assistant/internal/config"
	"github.com/kirillkom/program-assistant/internal/core/ports"
	"github.com/kirillkom/program-assistant/internal/observability/logging"
)

// services loads the knowledge snapshot at most once, and only for the
// commands that query it.
type services struct {
	cfg    config.Config
	logger *slog.Logger

	once sync.Once
	app  *bootstrap.App
	err  error
}

func (s *services) Scraper() (ports.CorpusScraper, error) {
	return bootstrap.NewScrapeUseCase(s.cfg, s.logger)
}

func (s *services) IndexBuilder() (ports.IndexBuilder, error) {
	return bootstrap.NewIndexBuildUseCase(s.cfg, s.logger), nil
}

func (s *services) Searcher(ctx context.Context) (ports.ChunkSearcher, error) {
	app, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return app.Retriever, nil
}

func (s *services) Answerer(ctx context.Context) (ports.QuestionAnswerer, error) {
	app, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return app.Pipeline, nil
}

func (s *services) load(ctx context.Context) (*bootstrap.App, error) {
	s.once.Do(func() {
		s.app, s.err = bootstrap.New(ctx, s.cfg, s.logger, nil)
	})
	return s.app, s.err
}

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("indexer", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(&services{cfg: cfg, logger: logger}, cfg.ProgramURLs)
	if err := root.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
