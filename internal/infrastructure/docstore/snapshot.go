package docstore

import (
	"context"
	"log/slog"

	"github.com/kirillkom/program-assistant/internal/core/domain"
)

// Snapshot is the in-memory, read-only view of the document store.
type Snapshot struct {
	chunks []domain.DocumentChunk
	byID   map[string]int
}

// NewSnapshot indexes chunks by id. When an id repeats, the first chunk wins.
func NewSnapshot(chunks []domain.DocumentChunk, logger *slog.Logger) *Snapshot {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Snapshot{
		chunks: append([]domain.DocumentChunk(nil), chunks...),
		byID:   make(map[string]int, len(chunks)),
	}
	for i, c := range s.chunks {
		if _, ok := s.byID[c.ID]; ok {
			logger.Warn("duplicate_chunk_id", slog.String("chunk_id", c.ID))
			continue
		}
		s.byID[c.ID] = i
	}
	return s
}

// LoadSnapshot reads the store at path into memory.
func LoadSnapshot(ctx context.Context, path string, logger *slog.Logger) (*Snapshot, error) {
	chunks, err := NewFileStore(path).Load(ctx)
	if err != nil {
		return nil, err
	}
	return NewSnapshot(chunks, logger), nil
}

func (s *Snapshot) Get(id string) (domain.DocumentChunk, bool) {
	i, ok := s.byID[id]
	if !ok {
		return domain.DocumentChunk{}, false
	}
	return s.chunks[i], true
}

// All returns chunks in store order. Callers must not modify the slice.
func (s *Snapshot) All() []domain.DocumentChunk {
	return s.chunks
}

func (s *Snapshot) Len() int {
	return len(s.chunks)
}
