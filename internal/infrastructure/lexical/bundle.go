package lexical

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"
)

const bundleVersion = 1

type bundle struct {
	Version    int
	Params     Params
	Vocabulary []string
	IDF        []float64
	Rows       []sparseVector
	IDs        []string
}

// Save writes the fitted model and its rows as a zstd-compressed gob stream.
func (ix *Index) Save(w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("create zstd writer: %w", err)
	}
	b := bundle{
		Version:    bundleVersion,
		Params:     ix.params,
		Vocabulary: ix.vocabulary,
		IDF:        ix.idf,
		Rows:       ix.rows,
		IDs:        ix.ids,
	}
	if err := gob.NewEncoder(zw).Encode(&b); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encode index bundle: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("flush zstd writer: %w", err)
	}
	return nil
}

// Load reads a bundle written by Save.
func Load(r io.Reader) (*Index, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("create zstd reader: %w", err)
	}
	defer zr.Close()

	var b bundle
	if err := gob.NewDecoder(zr).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode index bundle: %w", err)
	}
	if b.Version != bundleVersion {
		return nil, fmt.Errorf("unsupported index bundle version %d", b.Version)
	}
	if len(b.IDF) != len(b.Vocabulary) {
		return nil, fmt.Errorf("index bundle: idf has %d entries for %d terms", len(b.IDF), len(b.Vocabulary))
	}
	if len(b.Rows) != len(b.IDs) {
		return nil, fmt.Errorf("index bundle: %d rows for %d ids", len(b.Rows), len(b.IDs))
	}

	terms := make(map[string]int32, len(b.Vocabulary))
	for col, term := range b.Vocabulary {
		terms[term] = int32(col)
	}
	for i, row := range b.Rows {
		if len(row.Indices) != len(row.Values) {
			return nil, fmt.Errorf("index bundle: row %d is malformed", i)
		}
		for _, col := range row.Indices {
			if col < 0 || int(col) >= len(b.Vocabulary) {
				return nil, fmt.Errorf("index bundle: row %d references column %d out of range", i, col)
			}
		}
	}

	return &Index{
		params:     b.Params.normalize(),
		vocabulary: b.Vocabulary,
		terms:      terms,
		idf:        b.IDF,
		rows:       b.Rows,
		ids:        b.IDs,
	}, nil
}

// SaveFile writes the bundle atomically via a temp file in the target directory.
func (ix *Index) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".index-*")
	if err != nil {
		return fmt.Errorf("create temp index file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := ix.Save(tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp index file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename index file: %w", err)
	}
	return nil
}

func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index file: %w", err)
	}
	defer f.Close()
	return Load(f)
}
