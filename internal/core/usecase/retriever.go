package usecase

import (
	"context"
	"log/slog"

	"github.com/kirillkom/program-assistant/internal/core/domain"
)

const defaultSearchTopK = 4

type Retriever struct {
	knowledge   *Knowledge
	defaultTopK int
	logger      *slog.Logger
}

func NewRetriever(knowledge *Knowledge, defaultTopK int, logger *slog.Logger) *Retriever {
	if defaultTopK <= 0 {
		defaultTopK = defaultSearchTopK
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Retriever{knowledge: knowledge, defaultTopK: defaultTopK, logger: logger}
}

// Search returns at most topK chunks ordered by descending cosine similarity.
// Chunks with no similarity are never returned. Index rows whose id is missing
// from the document store are logged and skipped.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]domain.RetrievedChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = r.defaultTopK
	}

	rows := r.knowledge.Index.Rank(query, topK)
	results := make([]domain.RetrievedChunk, 0, len(rows))
	for _, row := range rows {
		chunk, ok := r.knowledge.Docs.Get(row.ChunkID)
		if !ok {
			r.logger.Warn("inconsistent_snapshot",
				slog.String("chunk_id", row.ChunkID),
				slog.String("error", domain.ErrInconsistentSnapshot.Error()),
			)
			continue
		}
		results = append(results, domain.RetrievedChunk{DocumentChunk: chunk, Score: row.Score})
	}
	return results, nil
}
