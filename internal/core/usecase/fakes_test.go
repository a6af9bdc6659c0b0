package usecase

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/program-assistant/internal/core/domain"
)

type indexFake struct {
	rows      []domain.ScoredRow
	lastLimit int
}

func (f *indexFake) Rank(_ string, limit int) []domain.ScoredRow {
	f.lastLimit = limit
	if limit > 0 && len(f.rows) > limit {
		return f.rows[:limit]
	}
	return f.rows
}

func (f *indexFake) Len() int { return len(f.rows) }

type docsFake struct {
	chunks []domain.DocumentChunk
}

func (f *docsFake) Get(id string) (domain.DocumentChunk, bool) {
	for _, c := range f.chunks {
		if c.ID == id {
			return c, true
		}
	}
	return domain.DocumentChunk{}, false
}

func (f *docsFake) All() []domain.DocumentChunk { return f.chunks }
func (f *docsFake) Len() int { return len(f.chunks) }

type searcherFake struct {
	results [][]domain.RetrievedChunk
	err     error
	calls   int
	topKs   []int
}

func (f *searcherFake) Search(_ context.Context, _ string, topK int) ([]domain.RetrievedChunk, error) {
	f.topKs = append(f.topKs, topK)
	if f.err != nil {
		return nil, f.err
	}
	idx := f.calls
	f.calls++
	if idx >= len(f.results) {
		idx = len(f.results) - 1
	}
	if idx < 0 {
		return nil, nil
	}
	return f.results[idx], nil
}

type recommenderFake struct {
	out     []string
	program domain.Program
	tags    []domain.BackgroundTag
	topK    int
}

func (f *recommenderFake) Recommend(_ context.Context, tags []domain.BackgroundTag, program domain.Program, topK int) []string {
	f.tags = tags
	f.program = program
	f.topK = topK
	return f.out
}

type generatorFake struct {
	answer string
	err    error
	chunks []string
}

func (f *generatorFake) GenerateAnswer(_ context.Context, _ string, contextChunks []string) (string, error) {
	f.chunks = contextChunks
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func (f *generatorFake) Name() string { return "fake" }

type observerFake struct {
	kinds      []string
	relevance  []float64
	genErrors  []error
	generators []string
}

func (f *observerFake) ObserveReply(kind string, _ time.Duration) {
	f.kinds = append(f.kinds, kind)
}
func (f *observerFake) ObserveRelevance(score float64, _ bool) {
	f.relevance = append(f.relevance, score)
}
func (f *observerFake) ObserveGeneration(name string, _ time.Duration, err error) {
	f.generators = append(f.generators, name)
	f.genErrors = append(f.genErrors, err)
}

type fetcherFake struct {
	pages map[string]string
	err   error
}

func (f *fetcherFake) Fetch(_ context.Context, url string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.pages[url]), nil
}

type extractorFake struct{}

func (extractorFake) Extract(html []byte) (string, error) {
	return strings.TrimSpace(string(html)), nil
}

type chunkerFake struct {
	size int
}

func (f chunkerFake) Split(text string) []string {
	var out []string
	for len(text) > 0 {
		n := f.size
		if n > len(text) {
			n = len(text)
		}
		out = append(out, text[:n])
		text = text[n:]
	}
	return out
}

type storageFake struct {
	mu      sync.Mutex
	objects map[string]string
}

func newStorageFake() *storageFake { return &storageFake{objects: map[string]string{}} }

func (f *storageFake) Save(_ context.Context, key string, data io.Reader) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = string(b)
	return nil
}

func (f *storageFake) Open(_ context.Context, key string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return io.NopCloser(bytes.NewReader([]byte(f.objects[key]))), nil
}

type writerFake struct {
	written []domain.DocumentChunk
	calls   int
	err     error
}

func (f *writerFake) Write(_ context.Context, chunks []domain.DocumentChunk) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.written = chunks
	return nil
}

type loaderFake struct {
	chunks []domain.DocumentChunk
	err    error
}

func (f *loaderFake) Load(context.Context) ([]domain.DocumentChunk, error) {
	return f.chunks, f.err
}

type publisherFake struct {
	published []domain.DocumentChunk
	err       error
}

func (f *publisherFake) Publish(_ context.Context, chunks []domain.DocumentChunk) error {
	f.published = chunks
	return f.err
}
