// Package openai generates answers through an OpenAI-compatible
// chat-completions endpoint.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/kirillkom/program-assistant/internal/core/domain"
	"github.com/kirillkom/program-assistant/internal/infrastructure/llm/prompt"
	"github.com/kirillkom/program-assistant/internal/infrastructure/resilience"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"

	temperature = 0.2
	maxTokens   = 600
)

type Config struct {
	BaseURL         string
	APIKey          string
	Model           string
	MaxContextChars int
}

type Generator struct {
	cfg        Config
	httpClient *http.Client
	executor   *resilience.Executor
}

func NewGenerator(cfg Config, httpClient *http.Client, executor *resilience.Executor) *Generator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.MaxContextChars <= 0 {
		cfg.MaxContextChars = prompt.DefaultHostedContextChars
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Generator{cfg: cfg, httpClient: httpClient, executor: executor}
}

func (g *Generator) Name() string {
	return "openai"
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (g *Generator) GenerateAnswer(ctx context.Context, question string, contextChunks []string) (string, error) {
	req := chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: prompt.SystemInstruction},
			{Role: "user", Content: prompt.UserMessage(question, prompt.FormatContext(contextChunks, g.cfg.MaxContextChars))},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	answer, err := resilience.Do(ctx, g.executor, "openai_chat", func(ctx context.Context) (string, error) {
		return g.complete(ctx, req)
	}, resilience.ClassifyHTTP)
	if err != nil {
		return "", domain.WrapError(domain.ErrGeneration, "openai chat completion", err)
	}
	return answer, nil
}

func (g *Generator) complete(ctx context.Context, payload chatRequest) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return "", resilience.NewHTTPStatusError("openai", "chat", resp)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("chat response has no choices")
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
