package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/net/html/charset"

	"github.com/kirillkom/program-assistant/internal/infrastructure/resilience"
)

// DefaultUserAgent mimics a desktop browser; the program site rejects bare clients.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

const maxPageBytes = 16 << 20

// Fetcher downloads pages and returns their body decoded to UTF-8.
type Fetcher struct {
	client    *http.Client
	executor  *resilience.Executor
	userAgent string
}

func NewFetcher(client *http.Client, executor *resilience.Executor) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &Fetcher{client: client, executor: executor, userAgent: DefaultUserAgent}
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return resilience.Do(ctx, f.executor, "fetch_page", func(ctx context.Context) ([]byte, error) {
		return f.fetchOnce(ctx, url)
	}, resilience.ClassifyAny)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create page request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("page request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resilience.NewHTTPStatusError("page", "fetch", resp)
	}

	body, err := charset.NewReader(io.LimitReader(resp.Body, maxPageBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("detect page charset: %w", err)
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("read page body: %w", err)
	}
	return data, nil
}
