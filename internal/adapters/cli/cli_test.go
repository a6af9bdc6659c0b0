package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kirillkom/program-assistant/internal/core/domain"
	"github.com/kirillkom/program-assistant/internal/core/ports"
)

type mockScraper struct {
	urls []string
	err  error
}

func (m *mockScraper) Run(_ context.Context, urls []string) (int, error) {
	m.urls = urls
	if m.err != nil {
		return 0, m.err
	}
	return 7, nil
}

type mockBuilder struct {
	runs int
}

func (m *mockBuilder) Run(context.Context) error {
	m.runs++
	return nil
}

type mockSearcher struct {
	topK int
}

func (m *mockSearcher) Search(_ context.Context, _ string, topK int) ([]domain.RetrievedChunk, error) {
	m.topK = topK
	return []domain.RetrievedChunk{{
		DocumentChunk: domain.DocumentChunk{ID: "ai-2", URL: "https://abit.itmo.ru/program/master/ai", Text: "Учебный план"},
		Score:         0.42,
	}}, nil
}

type mockAnswerer struct{}

func (mockAnswerer) AnswerQuestion(context.Context, string) (*domain.Reply, error) {
	return &domain.Reply{Kind: domain.ReplyNoResults, Text: domain.NoResultsMessage}, nil
}

type mockServices struct {
	scraper  *mockScraper
	builder  *mockBuilder
	searcher *mockSearcher
	indexErr error
}

func newMockServices() *mockServices {
	return &mockServices{scraper: &mockScraper{}, builder: &mockBuilder{}, searcher: &mockSearcher{}}
}

func (m *mockServices) Scraper() (ports.CorpusScraper, error) { return m.scraper, nil }

func (m *mockServices) IndexBuilder() (ports.IndexBuilder, error) { return m.builder, nil }

func (m *mockServices) Searcher(context.Context) (ports.ChunkSearcher, error) {
	if m.indexErr != nil {
		return nil, m.indexErr
	}
	return m.searcher, nil
}

func (m *mockServices) Answerer(context.Context) (ports.QuestionAnswerer, error) {
	if m.indexErr != nil {
		return nil, m.indexErr
	}
	return mockAnswerer{}, nil
}

func run(t *testing.T, services Services, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(services, []string{"https://abit.itmo.ru/program/master/ai"})
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func TestRootCmd_HasSubcommands(t *testing.T) {
	root := NewRootCmd(newMockServices(), nil)
	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"scrape", "build", "search", "ask"}, names)
}

func TestScrapeCmd_UsesDefaultURLs(t *testing.T) {
	services := newMockServices()
	out, err := run(t, services, "scrape")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://abit.itmo.ru/program/master/ai"}, services.scraper.urls)
	assert.Contains(t, out, "Scraped 1 pages into 7 chunks.")
}

func TestScrapeCmd_URLFlagOverrides(t *testing.T) {
	services := newMockServices()
	_, err := run(t, services, "scrape", "--url", "https://a.example/x", "-u", "https://a.example/y")

	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example/x", "https://a.example/y"}, services.scraper.urls)
}

func TestScrapeCmd_PropagatesFailure(t *testing.T) {
	services := newMockServices()
	services.scraper.err = errors.New("page 404")
	_, err := run(t, services, "scrape")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "scrape failed")
}

func TestBuildCmd(t *testing.T) {
	services := newMockServices()
	out, err := run(t, services, "build")

	require.NoError(t, err)
	assert.Equal(t, 1, services.builder.runs)
	assert.Contains(t, out, "Index built.")
}

func TestSearchCmd_RequiresExactlyOneArg(t *testing.T) {
	_, err := run(t, newMockServices(), "search")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestSearchCmd_PrintsResults(t *testing.T) {
	services := newMockServices()
	out, err := run(t, services, "search", "--limit", "2", "учебный план")

	require.NoError(t, err)
	assert.Equal(t, 2, services.searcher.topK)
	assert.Contains(t, out, "[1] ai-2 (0.420)")
}

func TestSearchCmd_JSON(t *testing.T) {
	out, err := run(t, newMockServices(), "search", "--json", "учебный план")

	require.NoError(t, err)
	assert.Contains(t, out, `"id": "ai-2"`)
}

func TestAskCmd(t *testing.T) {
	out, err := run(t, newMockServices(), "ask", "что-нибудь")

	require.NoError(t, err)
	assert.Contains(t, out, "[no-results]")
	assert.Contains(t, out, domain.NoResultsMessage)
}

func TestAskCmd_MissingIndex(t *testing.T) {
	services := newMockServices()
	services.indexErr = errors.New("load index bundle: no such file")
	_, err := run(t, services, "ask", "вопрос")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "load index bundle")
}

func TestPreviewTruncatesRunes(t *testing.T) {
	long := string(bytes.Repeat([]byte("я"), previewRunes+10))
	got := []rune(preview(long))
	assert.Len(t, got, previewRunes+1)
	assert.Equal(t, '…', got[len(got)-1])
}
