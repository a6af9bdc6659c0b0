package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/program-assistant/internal/config"
	"github.com/kirillkom/program-assistant/internal/core/intent"
	"github.com/kirillkom/program-assistant/internal/core/ports"
	"github.com/kirillkom/program-assistant/internal/core/usecase"
	"github.com/kirillkom/program-assistant/internal/infrastructure/chunking"
	"github.com/kirillkom/program-assistant/internal/infrastructure/docstore"
	"github.com/kirillkom/program-assistant/internal/infrastructure/httpclient"
	"github.com/kirillkom/program-assistant/internal/infrastructure/lexical"
	"github.com/kirillkom/program-assistant/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/program-assistant/internal/infrastructure/llm/openai"
	"github.com/kirillkom/program-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/program-assistant/internal/infrastructure/scraper"
	"github.com/kirillkom/program-assistant/internal/infrastructure/storage/localfs"
)

// App holds the read-only knowledge snapshot and the use cases built on it.
// It is created once per process.
type App struct {
	Config config.Config
	Logger *slog.Logger

	Executor    *resilience.Executor
	Knowledge   *usecase.Knowledge
	Classifier  *intent.Classifier
	Retriever   *usecase.Retriever
	Gate        *usecase.RelevanceGate
	Recommender *usecase.Recommender
	// Generator is nil when generation is off.
	Generator ports.AnswerGenerator
	Pipeline  *usecase.Pipeline
}

// New loads the index bundle and the document store. A missing or corrupt
// snapshot is a startup error.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, observer ports.PipelineObserver) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	index, err := lexical.LoadFile(cfg.IndexPath)
	if err != nil {
		return nil, fmt.Errorf("load index bundle: %w", err)
	}
	docs, err := docstore.LoadSnapshot(ctx, cfg.DocumentsPath, logger)
	if err != nil {
		return nil, fmt.Errorf("load document store: %w", err)
	}
	knowledge := usecase.NewKnowledge(index, docs, logger)

	vocabulary, err := intent.LoadVocabulary(cfg.VocabularyPath)
	if err != nil {
		return nil, fmt.Errorf("load intent vocabulary: %w", err)
	}
	classifier, err := intent.New(vocabulary)
	if err != nil {
		return nil, fmt.Errorf("init intent classifier: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	generator, err := NewGenerator(cfg, executor, logger)
	if err != nil {
		return nil, err
	}

	retriever := usecase.NewRetriever(knowledge, cfg.RAGTopK, logger)
	gate := usecase.NewRelevanceGate(retriever, cfg.RelevanceThreshold)
	recommender := usecase.NewRecommender(knowledge, classifier.ElectiveKeywords(), cfg.RecommendTopK)
	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Gate:        gate,
		Classifier:  classifier,
		Searcher:    retriever,
		Recommender: recommender,
		Generator:   generator,
		Observer:    observer,
		Logger:      logger,
	}, usecase.PipelineOptions{
		SearchTopK:    cfg.RAGTopK,
		RecommendTopK: cfg.RecommendTopK,
	})

	generatorName := "off"
	if generator != nil {
		generatorName = generator.Name()
	}
	logger.Info("knowledge_loaded",
		slog.Int("chunks", docs.Len()),
		slog.Int("vocabulary", len(index.Vocabulary())),
		slog.String("generator", generatorName),
	)

	return &App{
		Config:      cfg,
		Logger:      logger,
		Executor:    executor,
		Knowledge:   knowledge,
		Classifier:  classifier,
		Retriever:   retriever,
		Gate:        gate,
		Recommender: recommender,
		Generator:   generator,
		Pipeline:    pipeline,
	}, nil
}

// NewGenerator picks the answer generator once, from GENERATION_MODE.
// It returns nil without error when generation is off.
func NewGenerator(cfg config.Config, executor *resilience.Executor, logger *slog.Logger) (ports.AnswerGenerator, error) {
	mode := cfg.ResolvedGenerationMode()
	if mode == config.GenerationOff {
		return nil, nil
	}

	client, err := httpclient.New(httpclient.Options{
		Timeouts: httpclient.Timeouts{
			Connect: cfg.HTTPConnectTimeout,
			Read:    cfg.HTTPReadTimeout,
			Write:   cfg.HTTPWriteTimeout,
			Total:   cfg.LLMRequestTimeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("init llm http client: %w", err)
	}

	if mode == config.GenerationHosted {
		return openai.NewGenerator(openai.Config{
			BaseURL:         cfg.OpenAIBaseURL,
			APIKey:          cfg.OpenAIAPIKey,
			Model:           cfg.OpenAIModel,
			MaxContextChars: cfg.ContextMaxCharsHosted,
		}, client, executor), nil
	}

	minFree := uint64(0)
	if cfg.OllamaMinFreeMemoryMB > 0 {
		minFree = uint64(cfg.OllamaMinFreeMemoryMB) << 20
	}
	return ollama.NewGenerator(
		ollama.New(cfg.OllamaURL, client),
		ollama.Config{
			Model:              cfg.OllamaModel,
			FallbackModels:     cfg.OllamaFallbackModels,
			MinFreeMemoryBytes: minFree,
			PullTimeout:        cfg.OllamaPullTimeout,
			PollInterval:       cfg.OllamaPollInterval,
			AnswerReserve:      cfg.OllamaAnswerReserve,
			MaxContextChars:    cfg.ContextMaxCharsLocal,
		},
		executor,
		nil,
		logger,
	), nil
}

// NewScrapeUseCase wires the offline scrape phase. Page fetches retry three
// times with a fixed 1.5s pause.
func NewScrapeUseCase(cfg config.Config, logger *slog.Logger) (*usecase.ScrapeUseCase, error) {
	client, err := httpclient.New(httpclient.Options{
		Timeouts: httpclient.Timeouts{
			Connect: cfg.HTTPConnectTimeout,
			Read:    cfg.HTTPReadTimeout,
			Write:   cfg.HTTPWriteTimeout,
		},
		Proxy: cfg.HTTPProxy,
	})
	if err != nil {
		return nil, fmt.Errorf("init scrape http client: %w", err)
	}

	fetchPolicy := resilience.DefaultConfig()
	fetchPolicy.RetryMaxAttempts = 3
	fetchPolicy.RetryInitialBackoff = 1500 * time.Millisecond
	fetchPolicy.RetryMaxBackoff = 1500 * time.Millisecond
	fetchPolicy.RetryMultiplier = 1
	fetchPolicy.BreakerEnabled = false

	raw, err := localfs.New(cfg.RawDir)
	if err != nil {
		return nil, fmt.Errorf("init raw storage: %w", err)
	}
	processed, err := localfs.New(cfg.ProcessedDir)
	if err != nil {
		return nil, fmt.Errorf("init processed storage: %w", err)
	}

	return usecase.NewScrapeUseCase(
		scraper.NewFetcher(client, resilience.NewExecutor(fetchPolicy)),
		scraper.NewExtractor(),
		chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		raw,
		processed,
		docstore.NewFileStore(cfg.DocumentsPath),
		logger,
	), nil
}

func NewIndexBuildUseCase(cfg config.Config, logger *slog.Logger) *usecase.IndexBuildUseCase {
	return usecase.NewIndexBuildUseCase(
		docstore.NewFileStore(cfg.DocumentsPath),
		lexical.NewFilePublisher(cfg.IndexPath, lexical.DefaultParams()),
		logger,
	)
}

// Health reports snapshot size, the active generator and breaker states.
func (a *App) Health() map[string]any {
	generator := "off"
	if a.Generator != nil {
		generator = a.Generator.Name()
	}
	return map[string]any{
		"chunks":    a.Knowledge.Docs.Len(),
		"generator": generator,
		"breakers":  a.Executor.BreakerStates(),
	}
}
