package docstore

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/kirillkom/program-assistant/internal/core/domain"
)

// FileStore persists the chunk list as one indented JSON array.
type FileStore struct {
	path string
}

func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Path() string {
	return s.path
}

func (s *FileStore) Load(_ context.Context) ([]domain.DocumentChunk, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	defer f.Close()

	var chunks []domain.DocumentChunk
	if err := json.NewDecoder(bufio.NewReader(f)).Decode(&chunks); err != nil {
		return nil, fmt.Errorf("decode document store: %w", err)
	}
	for i, c := range chunks {
		if c.ID == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "load document store", fmt.Errorf("chunk #%d has no id", i))
		}
	}
	return chunks, nil
}

// Write replaces the store wholesale through a temp file and rename.
func (s *FileStore) Write(_ context.Context, chunks []domain.DocumentChunk) error {
	if chunks == nil {
		return domain.WrapError(domain.ErrInvalidInput, "write document store", errors.New("nil chunk list"))
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create document store dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".documents-*")
	if err != nil {
		return fmt.Errorf("create temp document store: %w", err)
	}
	defer os.Remove(tmp.Name())

	w := bufio.NewWriter(tmp)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(chunks); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode document store: %w", err)
	}
	if err := w.Flush(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("flush document store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp document store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("rename document store: %w", err)
	}
	return nil
}
