package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kirillkom/program-assistant/internal/core/domain"
	"github.com/kirillkom/program-assistant/internal/core/intent"
)

type pipelineFixture struct {
	searcher    *searcherFake
	recommender *recommenderFake
	observer    *observerFake
}

func newPipeline(t *testing.T, f *pipelineFixture, generator *generatorFake) *Pipeline {
	t.Helper()
	classifier, err := intent.NewDefault()
	if err != nil {
		t.Fatalf("intent.NewDefault() error = %v", err)
	}
	deps := PipelineDeps{
		Gate:        NewRelevanceGate(f.searcher, 0),
		Classifier:  classifier,
		Searcher:    f.searcher,
		Recommender: f.recommender,
		Observer:    f.observer,
	}
	if generator != nil {
		deps.Generator = generator
	}
	return NewPipeline(deps, PipelineOptions{})
}

var sampleResults = []domain.RetrievedChunk{
	{DocumentChunk: domain.DocumentChunk{ID: "ai-3", URL: "https://abit.itmo.ru/program/master/ai", Title: "ai", Text: "Стоимость обучения 599 000 рублей"}, Score: 0.4},
	{DocumentChunk: domain.DocumentChunk{ID: "ai-5", URL: "https://abit.itmo.ru/program/master/ai", Title: "ai", Text: "Бюджетных мест 51"}, Score: 0.2},
}

func relevantFixture() *pipelineFixture {
	return &pipelineFixture{
		searcher:    &searcherFake{results: [][]domain.RetrievedChunk{sampleResults[:1], sampleResults}},
		recommender: &recommenderFake{out: []string{"Модуль по выбору: NLP"}},
		observer:    &observerFake{},
	}
}

func TestPipelineRejectsBlankQuestion(t *testing.T) {
	p := newPipeline(t, relevantFixture(), nil)
	_, err := p.AnswerQuestion(context.Background(), "   \n")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPipelineOffTopic(t *testing.T) {
	f := &pipelineFixture{
		searcher:    &searcherFake{results: [][]domain.RetrievedChunk{nil}},
		recommender: &recommenderFake{},
		observer:    &observerFake{},
	}
	p := newPipeline(t, f, nil)

	reply, err := p.AnswerQuestion(context.Background(), "Сколько стоит обучение на Марсе?")
	if err != nil {
		t.Fatalf("AnswerQuestion() error = %v", err)
	}
	if reply.Kind != domain.ReplyOffTopic {
		t.Fatalf("expected off-topic, got %s", reply.Kind)
	}
	if f.searcher.calls != 1 {
		t.Fatalf("off-topic question must stop after the gate, searches=%d", f.searcher.calls)
	}
	if len(f.observer.kinds) != 1 || f.observer.kinds[0] != string(domain.ReplyOffTopic) {
		t.Fatalf("observer did not record reply kind: %v", f.observer.kinds)
	}
}

func TestPipelineRecommendation(t *testing.T) {
	f := relevantFixture()
	p := newPipeline(t, f, nil)

	reply, err := p.AnswerQuestion(context.Background(), "Какие выборные дисциплины взять на AI Product с опытом python?")
	if err != nil {
		t.Fatalf("AnswerQuestion() error = %v", err)
	}
	if reply.Kind != domain.ReplyRecommendation {
		t.Fatalf("expected recommendation-redirect, got %s", reply.Kind)
	}
	if reply.Program != domain.ProgramAIProduct || f.recommender.program != domain.ProgramAIProduct {
		t.Fatalf("expected ai_product program, got %q/%q", reply.Program, f.recommender.program)
	}
	if f.recommender.topK != 6 {
		t.Fatalf("expected default recommend top_k=6, got %d", f.recommender.topK)
	}
	if len(reply.Recommendations) != 1 || !strings.Contains(reply.Text, "Модуль по выбору: NLP") {
		t.Fatalf("unexpected recommendation reply: %+v", reply)
	}
	if !strings.Contains(reply.Text, "python") {
		t.Fatalf("expected tags in reply text: %q", reply.Text)
	}
}

func TestPipelineRecommendationWithoutProgram(t *testing.T) {
	f := relevantFixture()
	p := newPipeline(t, f, nil)

	reply, err := p.AnswerQuestion(context.Background(), "Что выбрать с бэкграундом в математике?")
	if err != nil {
		t.Fatalf("AnswerQuestion() error = %v", err)
	}
	if reply.Kind != domain.ReplyRecommendation || reply.Text != domain.AskProgramMessage {
		t.Fatalf("expected program clarification, got %+v", reply)
	}
	if f.recommender.program != "" {
		t.Fatalf("recommender must not run without a program")
	}
}

func TestPipelineRecommendationNothingFound(t *testing.T) {
	f := relevantFixture()
	f.recommender.out = nil
	p := newPipeline(t, f, nil)

	reply, err := p.AnswerQuestion(context.Background(), "Порекомендуй курсы на AI")
	if err != nil {
		t.Fatalf("AnswerQuestion() error = %v", err)
	}
	if !strings.Contains(reply.Text, "AI") || len(reply.Recommendations) != 0 {
		t.Fatalf("unexpected reply: %+v", reply)
	}
}

func TestPipelineSnippetsWithoutGenerator(t *testing.T) {
	f := relevantFixture()
	p := newPipeline(t, f, nil)

	reply, err := p.AnswerQuestion(context.Background(), "Сколько стоит обучение?")
	if err != nil {
		t.Fatalf("AnswerQuestion() error = %v", err)
	}
	if reply.Kind != domain.ReplySnippets {
		t.Fatalf("expected snippets, got %s", reply.Kind)
	}
	if !strings.Contains(reply.Text, "https://abit.itmo.ru/program/master/ai") {
		t.Fatalf("snippets must include chunk url: %q", reply.Text)
	}
	if f.searcher.topKs[1] != 4 {
		t.Fatalf("expected search top_k=4, got %d", f.searcher.topKs[1])
	}
}

func TestPipelineNoResults(t *testing.T) {
	f := relevantFixture()
	f.searcher.results = [][]domain.RetrievedChunk{sampleResults[:1], nil}
	p := newPipeline(t, f, nil)

	reply, err := p.AnswerQuestion(context.Background(), "Сколько стоит обучение?")
	if err != nil {
		t.Fatalf("AnswerQuestion() error = %v", err)
	}
	if reply.Kind != domain.ReplyNoResults || reply.Text != domain.NoResultsMessage {
		t.Fatalf("expected no-results, got %+v", reply)
	}
}

func TestPipelineGeneratedAnswer(t *testing.T) {
	f := relevantFixture()
	gen := &generatorFake{answer: "  599 000 рублей в год.  "}
	p := newPipeline(t, f, gen)

	reply, err := p.AnswerQuestion(context.Background(), "Сколько стоит обучение?")
	if err != nil {
		t.Fatalf("AnswerQuestion() error = %v", err)
	}
	if reply.Kind != domain.ReplyAnswer || reply.Text != "599 000 рублей в год." {
		t.Fatalf("unexpected reply: %+v", reply)
	}
	if reply.Generator != "fake" || len(reply.Sources) != 2 {
		t.Fatalf("expected sources and generator name, got %+v", reply)
	}
	if len(gen.chunks) != 2 || gen.chunks[0] != sampleResults[0].Text {
		t.Fatalf("generator got wrong context: %v", gen.chunks)
	}
	if len(f.observer.genErrors) != 1 || f.observer.genErrors[0] != nil {
		t.Fatalf("expected one successful generation observation, got %v", f.observer.genErrors)
	}
}

func TestPipelineGenerationFailureFallsBackToSnippets(t *testing.T) {
	tests := map[string]*generatorFake{
		"error":        {err: domain.WrapError(domain.ErrModelUnavailable, "ollama", errors.New("no models"))},
		"empty answer": {answer: "   "},
	}
	for name, gen := range tests {
		t.Run(name, func(t *testing.T) {
			f := relevantFixture()
			p := newPipeline(t, f, gen)

			reply, err := p.AnswerQuestion(context.Background(), "Сколько стоит обучение?")
			if err != nil {
				t.Fatalf("AnswerQuestion() error = %v", err)
			}
			if reply.Kind != domain.ReplySnippets {
				t.Fatalf("expected snippets fallback, got %s", reply.Kind)
			}
			if strings.Contains(reply.Text, "no models") {
				t.Fatalf("internal error leaked into reply: %q", reply.Text)
			}
		})
	}
}

func TestPipelineSearchErrorPropagates(t *testing.T) {
	f := relevantFixture()
	f.searcher.err = errors.New("index gone")
	p := newPipeline(t, f, nil)
	if _, err := p.AnswerQuestion(context.Background(), "Сколько стоит обучение?"); err == nil {
		t.Fatalf("expected error")
	}
}

func TestFormatSnippets(t *testing.T) {
	got := FormatSnippets([]domain.RetrievedChunk{
		{DocumentChunk: domain.DocumentChunk{Title: "ai", URL: "u1", Text: "текст"}},
		{DocumentChunk: domain.DocumentChunk{Title: "ai_product", URL: "u2", Text: strings.Repeat("я", 700)}},
	})
	blocks := strings.Split(got, "\n\n")
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks, got %d", len(blocks))
	}
	if blocks[0] != "• ai (u1)\nтекст…" {
		t.Fatalf("unexpected first block: %q", blocks[0])
	}
	if !strings.HasSuffix(blocks[1], strings.Repeat("я", 600)+"…") {
		t.Fatalf("expected 600-rune preview")
	}
}
