package lexical

import (
	"context"
	"fmt"

	"github.com/kirillkom/program-assistant/internal/core/domain"
)

// FilePublisher fits an index over chunks and writes it as a bundle file.
type FilePublisher struct {
	path   string
	params Params
}

func NewFilePublisher(path string, params Params) *FilePublisher {
	return &FilePublisher{path: path, params: params}
}

func (p *FilePublisher) Publish(ctx context.Context, chunks []domain.DocumentChunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	texts := make([]string, len(chunks))
	ids := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
		ids[i] = c.ID
	}

	ix, err := Build(texts, ids, p.params)
	if err != nil {
		return err
	}
	if err := ix.SaveFile(p.path); err != nil {
		return fmt.Errorf("save index bundle: %w", err)
	}
	return nil
}
