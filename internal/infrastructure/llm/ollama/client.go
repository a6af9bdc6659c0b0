package ollama

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

// Client speaks the Ollama REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	// pullClient has no overall timeout; pulls are bounded by their context.
	pullClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	pull := *httpClient
	pull.Timeout = 0
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		pullClient: &pull,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type options struct {
	Temperature float64 `json:"temperature"`
}

// ListModels returns the names of locally available models.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	var response struct {
		Models []struct {
			Name  string `json:"name"`
			Model string `json:"model"`
		} `json:"models"`
	}
	if err := c.getJSON(ctx, "/api/tags", &response, "tags"); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(response.Models))
	for _, m := range response.Models {
		name := m.Name
		if name == "" {
			name = m.Model
		}
		names = append(names, name)
	}
	return names, nil
}

// Pull downloads a model and blocks until the service reports completion.
func (c *Client) Pull(ctx context.Context, model string) error {
	request := map[string]any{
		"model":  model,
		"stream": false,
	}
	var response struct {
		Status string `json:"status"`
	}
	return c.doJSON(ctx, c.pullClient, http.MethodPost, "/api/pull", request, &response, "pull")
}

func (c *Client) Chat(ctx context.Context, model string, messages []message, temperature float64) (string, error) {
	request := map[string]any{
		"model":    model,
		"messages": messages,
		"stream":   false,
		"options":  options{Temperature: temperature},
	}
	var response struct {
		Message *struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := c.postJSON(ctx, "/api/chat", request, &response, "chat"); err != nil {
		return "", err
	}
	if response.Message == nil {
		return "", errors.New("ollama chat response has no message")
	}
	content := strings.TrimSpace(response.Message.Content)
	if content == "" {
		return "", errors.New("ollama chat response is empty")
	}
	return content, nil
}

func (c *Client) Generate(ctx context.Context, model, prompt string, temperature float64) (string, error) {
	request := map[string]any{
		"model":   model,
		"prompt":  prompt,
		"stream":  false,
		"options": options{Temperature: temperature},
	}
	var response struct {
		Response *string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", request, &response, "generate"); err != nil {
		return "", err
	}
	if response.Response == nil {
		return "", errors.New("ollama generate response has no text")
	}
	text := strings.TrimSpace(*response.Response)
	if text == "" {
		return "", errors.New("ollama generate response is empty")
	}
	return text, nil
}
