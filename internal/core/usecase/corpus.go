package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/program-assistant/internal/core/domain"
	"github.com/kirillkom/program-assistant/internal/core/ports"
)

// ScrapeUseCase downloads program pages and rewrites the document store.
type ScrapeUseCase struct {
	fetcher   ports.PageFetcher
	extractor ports.TextExtractor
	chunker   ports.Chunker
	raw       ports.ObjectStorage
	processed ports.ObjectStorage
	writer    ports.DocumentWriter
	logger    *slog.Logger
}

func NewScrapeUseCase(
	fetcher ports.PageFetcher,
	extractor ports.TextExtractor,
	chunker ports.Chunker,
	raw ports.ObjectStorage,
	processed ports.ObjectStorage,
	writer ports.DocumentWriter,
	logger *slog.Logger,
) *ScrapeUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &ScrapeUseCase{
		fetcher:   fetcher,
		extractor: extractor,
		chunker:   chunker,
		raw:       raw,
		processed: processed,
		writer:    writer,
		logger:    logger,
	}
}

// Run scrapes every url in order and returns the number of chunks written.
// Any failed page aborts the run and leaves the previous store untouched.
func (uc *ScrapeUseCase) Run(ctx context.Context, urls []string) (int, error) {
	if len(urls) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "scrape", errors.New("no program urls"))
	}

	var documents []domain.DocumentChunk
	for _, pageURL := range urls {
		chunks, err := uc.scrapePage(ctx, pageURL)
		if err != nil {
			return 0, err
		}
		documents = append(documents, chunks...)
	}
	if len(documents) == 0 {
		return 0, domain.WrapError(domain.ErrInvalidInput, "scrape", errors.New("pages produced zero chunks"))
	}

	if err := uc.writer.Write(ctx, documents); err != nil {
		return 0, fmt.Errorf("write document store: %w", err)
	}
	return len(documents), nil
}

func (uc *ScrapeUseCase) scrapePage(ctx context.Context, pageURL string) ([]domain.DocumentChunk, error) {
	slug := PageSlug(pageURL)
	if slug == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "scrape page", fmt.Errorf("cannot derive slug from %q", pageURL))
	}

	html, err := uc.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	if err := uc.raw.Save(ctx, slug+".html", bytes.NewReader(html)); err != nil {
		return nil, fmt.Errorf("save raw page %s: %w", slug, err)
	}

	text, err := uc.extractor.Extract(html)
	if err != nil {
		return nil, fmt.Errorf("extract text %s: %w", slug, err)
	}
	if err := uc.processed.Save(ctx, slug+".txt", strings.NewReader(text)); err != nil {
		return nil, fmt.Errorf("save processed text %s: %w", slug, err)
	}

	parts := uc.chunker.Split(text)
	if len(parts) == 0 {
		uc.logger.Warn("page_without_text", slog.String("url", pageURL))
	}
	chunks := make([]domain.DocumentChunk, 0, len(parts))
	for i, part := range parts {
		chunks = append(chunks, domain.DocumentChunk{
			ID:    domain.ChunkID(slug, i),
			URL:   pageURL,
			Title: slug,
			Text:  part,
		})
	}
	uc.logger.Info("page_scraped",
		slog.String("url", pageURL),
		slog.Int("html_bytes", len(html)),
		slog.Int("chunks", len(chunks)),
	)
	return chunks, nil
}

// PageSlug returns the last path segment of a page url.
func PageSlug(pageURL string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(pageURL), "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}

// IndexBuildUseCase refits the lexical index from the persisted document store.
type IndexBuildUseCase struct {
	loader    ports.DocumentLoader
	publisher ports.IndexPublisher
	logger    *slog.Logger
}

func NewIndexBuildUseCase(loader ports.DocumentLoader, publisher ports.IndexPublisher, logger *slog.Logger) *IndexBuildUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	return &IndexBuildUseCase{loader: loader, publisher: publisher, logger: logger}
}

func (uc *IndexBuildUseCase) Run(ctx context.Context) error {
	chunks, err := uc.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load document store: %w", err)
	}
	if err := uc.publisher.Publish(ctx, chunks); err != nil {
		return fmt.Errorf("publish index: %w", err)
	}
	uc.logger.Info("index_built", slog.Int("chunks", len(chunks)))
	return nil
}
