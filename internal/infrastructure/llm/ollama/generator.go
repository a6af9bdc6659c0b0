package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kirillkom/program-assistant/internal/core/domain"
	"github.com/kirillkom/program-assistant/internal/infrastructure/llm/prompt"
	"github.com/kirillkom/program-assistant/internal/infrastructure/resilience"
	"github.com/kirillkom/program-assistant/internal/infrastructure/sysres"
)

const temperature = 0.2

type Config struct {
	Model          string
	FallbackModels []string
	// MinFreeMemoryBytes of zero disables the memory check.
	MinFreeMemoryBytes uint64
	PullTimeout        time.Duration
	PollInterval       time.Duration
	// AnswerReserve is kept out of the pull wait when the caller has a
	// deadline, so a fallback model still has time to answer.
	AnswerReserve   time.Duration
	MaxContextChars int
}

func (c Config) normalize() Config {
	if c.PullTimeout <= 0 {
		c.PullTimeout = 300 * time.Second
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 2 * time.Second
	}
	if c.AnswerReserve <= 0 {
		c.AnswerReserve = 60 * time.Second
	}
	if c.MaxContextChars <= 0 {
		c.MaxContextChars = prompt.DefaultLocalContextChars
	}
	return c
}

// Generator answers with a local model. Before each answer it checks memory
// headroom, makes sure a model is available (pulling the primary one if
// needed, falling back to already present lighter models) and degrades from
// the chat endpoint to plain completion.
type Generator struct {
	client   *Client
	cfg      Config
	executor *resilience.Executor
	memory   sysres.MemoryProbe
	pulls    singleflight.Group
	logger   *slog.Logger
}

func NewGenerator(client *Client, cfg Config, executor *resilience.Executor, memory sysres.MemoryProbe, logger *slog.Logger) *Generator {
	if memory == nil {
		memory = sysres.AvailableMemory
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{
		client:   client,
		cfg:      cfg.normalize(),
		executor: executor,
		memory:   memory,
		logger:   logger,
	}
}

func (g *Generator) Name() string {
	return "ollama"
}

func (g *Generator) GenerateAnswer(ctx context.Context, question string, contextChunks []string) (string, error) {
	if err := g.checkMemory(); err != nil {
		return "", err
	}

	model, err := g.resolveModel(ctx)
	if err != nil {
		return "", err
	}

	formatted := prompt.FormatContext(contextChunks, g.cfg.MaxContextChars)
	messages := []message{
		{Role: "system", Content: prompt.SystemInstruction},
		{Role: "user", Content: prompt.UserMessage(question, formatted)},
	}
	answer, chatErr := resilience.Do(ctx, g.executor, "ollama_chat", func(ctx context.Context) (string, error) {
		return g.client.Chat(ctx, model, messages, temperature)
	}, resilience.ClassifyHTTP)
	if chatErr == nil {
		return answer, nil
	}
	g.logger.Warn("ollama_chat_failed",
		slog.String("model", model),
		slog.String("error", chatErr.Error()),
	)

	answer, genErr := resilience.Do(ctx, g.executor, "ollama_generate", func(ctx context.Context) (string, error) {
		return g.client.Generate(ctx, model, prompt.Completion(question, formatted), temperature)
	}, resilience.ClassifyHTTP)
	if genErr != nil {
		return "", domain.WrapError(domain.ErrGeneration, "ollama generate",
			fmt.Errorf("chat: %v; generate: %w", chatErr, genErr))
	}
	return answer, nil
}

func (g *Generator) checkMemory() error {
	if g.cfg.MinFreeMemoryBytes == 0 {
		return nil
	}
	available, err := g.memory()
	if err != nil {
		if !errors.Is(err, sysres.ErrUnsupported) {
			g.logger.Warn("memory_probe_failed", slog.String("error", err.Error()))
		}
		return nil
	}
	if available < g.cfg.MinFreeMemoryBytes {
		return domain.WrapError(domain.ErrResource, "ollama memory check",
			fmt.Errorf("available %d MiB, required %d MiB", available>>20, g.cfg.MinFreeMemoryBytes>>20))
	}
	return nil
}

// resolveModel returns the primary model when it is or becomes available,
// otherwise the first fallback that is already present.
func (g *Generator) resolveModel(ctx context.Context) (string, error) {
	models, err := g.client.ListModels(ctx)
	if err != nil {
		return "", domain.WrapError(domain.ErrModelUnavailable, "ollama list models", err)
	}
	if hasModel(models, g.cfg.Model) {
		return g.cfg.Model, nil
	}

	g.startPull(g.cfg.Model)
	if wait := g.pullWait(ctx); wait > 0 {
		err = resilience.Poll(ctx, g.cfg.PollInterval, wait, func(ctx context.Context) (bool, error) {
			current, listErr := g.client.ListModels(ctx)
			if listErr != nil {
				return false, nil
			}
			models = current
			return hasModel(current, g.cfg.Model), nil
		})
		if err == nil {
			return g.cfg.Model, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
	}

	for _, fallback := range g.cfg.FallbackModels {
		if hasModel(models, fallback) {
			g.logger.Warn("ollama_fallback_model",
				slog.String("primary", g.cfg.Model),
				slog.String("fallback", fallback),
			)
			return fallback, nil
		}
	}
	return "", domain.WrapError(domain.ErrModelUnavailable, "ollama resolve model",
		fmt.Errorf("model %q not available and no fallback present", g.cfg.Model))
}

// pullWait is how long to wait for the primary model: PullTimeout, cut so
// that AnswerReserve is left before the caller's deadline. Zero or less means
// go straight to the fallbacks.
func (g *Generator) pullWait(ctx context.Context) time.Duration {
	wait := g.cfg.PullTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if left := time.Until(deadline) - g.cfg.AnswerReserve; left < wait {
			wait = left
		}
	}
	return wait
}

// startPull requests the model in the background. Concurrent callers share
// one pull, and the pull outlives the request that triggered it.
func (g *Generator) startPull(model string) {
	g.pulls.DoChan(model, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.Background(), g.cfg.PullTimeout)
		defer cancel()

		g.logger.Info("ollama_model_pull_started", slog.String("model", model))
		if err := g.client.Pull(ctx, model); err != nil {
			g.logger.Warn("ollama_model_pull_failed",
				slog.String("model", model),
				slog.String("error", err.Error()),
			)
			return nil, err
		}
		g.logger.Info("ollama_model_pull_finished", slog.String("model", model))
		return nil, nil
	})
}

// hasModel treats an untagged name as the ":latest" tag.
func hasModel(available []string, want string) bool {
	want = strings.TrimSpace(want)
	if want == "" {
		return false
	}
	canonical := want
	if !strings.Contains(want, ":") {
		canonical = want + ":latest"
	}
	for _, name := range available {
		if name == want || name == canonical {
			return true
		}
	}
	return false
}
