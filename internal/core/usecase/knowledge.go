package usecase

import (
	"log/slog"

	"github.com/kirillkom/program-assistant/internal/core/ports"
)

// Knowledge is the process-wide snapshot of the index and its document store.
// It is built once at startup and only read afterwards.
type Knowledge struct {
	Index ports.ChunkIndex
	Docs  ports.DocumentStore
}

func NewKnowledge(index ports.ChunkIndex, docs ports.DocumentStore, logger *slog.Logger) *Knowledge {
	if logger == nil {
		logger = slog.Default()
	}
	if index.Len() != docs.Len() {
		logger.Warn("knowledge_snapshot_mismatch",
			slog.Int("index_rows", index.Len()),
			slog.Int("documents", docs.Len()),
		)
	}
	return &Knowledge{Index: index, Docs: docs}
}
