package ports

import (
	"context"
	"io"

	"github.com/kirillkom/program-assistant/internal/core/domain"
)

// ChunkIndex ranks chunk ids against a query text.
type ChunkIndex interface {
	Rank(query string, limit int) []domain.ScoredRow
	Len() int
}

// DocumentStore is the read-only chunk snapshot.
type DocumentStore interface {
	Get(id string) (domain.DocumentChunk, bool)
	All() []domain.DocumentChunk
	Len() int
}

// DocumentWriter replaces the persisted document store wholesale.
type DocumentWriter interface {
	Write(ctx context.Context, chunks []domain.DocumentChunk) error
}

// DocumentLoader reads the persisted document store.
type DocumentLoader interface {
	Load(ctx context.Context) ([]domain.DocumentChunk, error)
}

// IndexPublisher fits and persists a lexical index over chunks.
type IndexPublisher interface {
	Publish(ctx context.Context, chunks []domain.DocumentChunk) error
}

// ObjectStorage stores raw and processed page snapshots.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// PageFetcher downloads a program page.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// TextExtractor turns page HTML into cleaned readable text.
type TextExtractor interface {
	Extract(html []byte) (string, error)
}

// Chunker splits text into overlapping chunks.
type Chunker interface {
	Split(text string) []string
}

// AnswerGenerator produces an answer from a question and ordered context chunks.
type AnswerGenerator interface {
	GenerateAnswer(ctx context.Context, question string, contextChunks []string) (string, error)
	Name() string
}

// IntentClassifier routes free text between the informational and the
// recommendation paths.
type IntentClassifier interface {
	IsRecommendation(text string) bool
	BackgroundTags(text string) []domain.BackgroundTag
	DetectProgram(text string) (domain.Program, bool)
}
