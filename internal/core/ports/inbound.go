package ports

import (
	"context"

	"github.com/kirillkom/program-assistant/internal/core/domain"
)

// QuestionAnswerer is the caller-facing contract used by chat adapters.
type QuestionAnswerer interface {
	AnswerQuestion(ctx context.Context, text string) (*domain.Reply, error)
}

// ChunkSearcher exposes ranked lexical search.
type ChunkSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error)
}

// ElectiveRecommender ranks program chunks for a stated background.
type ElectiveRecommender interface {
	Recommend(ctx context.Context, tags []domain.BackgroundTag, program domain.Program, topK int) []string
}

// CorpusScraper rebuilds the document store from program pages.
type CorpusScraper interface {
	Run(ctx context.Context, urls []string) (int, error)
}

// IndexBuilder rebuilds the lexical index from the document store.
type IndexBuilder interface {
	Run(ctx context.Context) error
}
