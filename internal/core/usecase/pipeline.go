package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/program-assistant/internal/core/domain"
	"github.com/kirillkom/program-assistant/internal/core/ports"
)

const snippetPreviewRunes = 600

type PipelineDeps struct {
	Gate        *RelevanceGate
	Classifier  ports.IntentClassifier
	Searcher    ports.ChunkSearcher
	Recommender ports.ElectiveRecommender
	// Generator is optional; without it answers are raw snippets.
	Generator ports.AnswerGenerator
	Observer  ports.PipelineObserver
	Logger    *slog.Logger
}

type PipelineOptions struct {
	SearchTopK    int
	RecommendTopK int
}

// Pipeline answers one question end to end: gate, intent, retrieval or
// recommendation, then optional generation.
type Pipeline struct {
	gate        *RelevanceGate
	classifier  ports.IntentClassifier
	searcher    ports.ChunkSearcher
	recommender ports.ElectiveRecommender
	generator   ports.AnswerGenerator
	observer    ports.PipelineObserver
	logger      *slog.Logger
	opts        PipelineOptions
}

func NewPipeline(deps PipelineDeps, opts PipelineOptions) *Pipeline {
	if deps.Observer == nil {
		deps.Observer = ports.NopObserver{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if opts.SearchTopK <= 0 {
		opts.SearchTopK = defaultSearchTopK
	}
	if opts.RecommendTopK <= 0 {
		opts.RecommendTopK = defaultRecommendTopK
	}
	return &Pipeline{
		gate:        deps.Gate,
		classifier:  deps.Classifier,
		searcher:    deps.Searcher,
		recommender: deps.Recommender,
		generator:   deps.Generator,
		observer:    deps.Observer,
		logger:      deps.Logger,
		opts:        opts,
	}
}

func (p *Pipeline) AnswerQuestion(ctx context.Context, text string) (*domain.Reply, error) {
	started := time.Now()
	question := strings.TrimSpace(text)
	if question == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "answer question", errors.New("empty question"))
	}

	reply, err := p.answer(ctx, question)
	if err != nil {
		return nil, err
	}
	p.observer.ObserveReply(string(reply.Kind), time.Since(started))
	return reply, nil
}

func (p *Pipeline) answer(ctx context.Context, question string) (*domain.Reply, error) {
	verdict, err := p.gate.Evaluate(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("relevance gate: %w", err)
	}
	p.observer.ObserveRelevance(verdict.Score, verdict.Relevant)
	if !verdict.Relevant {
		return &domain.Reply{Kind: domain.ReplyOffTopic, Text: domain.OffTopicMessage}, nil
	}

	if p.classifier.IsRecommendation(question) {
		return p.recommend(ctx, question), nil
	}

	results, err := p.searcher.Search(ctx, question, p.opts.SearchTopK)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}
	if len(results) == 0 {
		return &domain.Reply{Kind: domain.ReplyNoResults, Text: domain.NoResultsMessage}, nil
	}

	if p.generator == nil {
		return snippetsReply(results), nil
	}
	return p.generate(ctx, question, results), nil
}

func (p *Pipeline) recommend(ctx context.Context, question string) *domain.Reply {
	tags := p.classifier.BackgroundTags(question)
	program, ok := p.classifier.DetectProgram(question)
	if !ok {
		return &domain.Reply{Kind: domain.ReplyRecommendation, Text: domain.AskProgramMessage, Tags: tags}
	}

	recs := p.recommender.Recommend(ctx, tags, program, p.opts.RecommendTopK)
	return &domain.Reply{
		Kind:            domain.ReplyRecommendation,
		Text:            formatRecommendations(program, tags, recs),
		Recommendations: recs,
		Program:         program,
		Tags:            tags,
	}
}

func (p *Pipeline) generate(ctx context.Context, question string, results []domain.RetrievedChunk) *domain.Reply {
	contextChunks := make([]string, 0, len(results))
	for _, r := range results {
		contextChunks = append(contextChunks, r.Text)
	}

	name := p.generator.Name()
	started := time.Now()
	answer, err := p.generator.GenerateAnswer(ctx, question, contextChunks)
	p.observer.ObserveGeneration(name, time.Since(started), err)
	if err == nil && strings.TrimSpace(answer) == "" {
		err = domain.WrapError(domain.ErrGeneration, "generate answer", errors.New("empty answer"))
	}
	if err != nil {
		p.logger.Warn("generation_failed",
			slog.String("generator", name),
			slog.String("error", err.Error()),
		)
		return snippetsReply(results)
	}

	return &domain.Reply{
		Kind:      domain.ReplyAnswer,
		Text:      strings.TrimSpace(answer),
		Sources:   results,
		Generator: name,
	}
}

func snippetsReply(results []domain.RetrievedChunk) *domain.Reply {
	return &domain.Reply{
		Kind:    domain.ReplySnippets,
		Text:    FormatSnippets(results),
		Sources: results,
	}
}

// FormatSnippets renders retrieved chunks as a bulleted message.
func FormatSnippets(results []domain.RetrievedChunk) string {
	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("• %s (%s)\n%s…", r.Title, r.URL, truncateRunes(r.Text, snippetPreviewRunes)))
	}
	return strings.Join(blocks, "\n\n")
}

func formatRecommendations(program domain.Program, tags []domain.BackgroundTag, recs []string) string {
	if len(recs) == 0 {
		return fmt.Sprintf(domain.NoElectivesMessage, program.DisplayName())
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf(domain.ElectivesHeader, program.DisplayName()))
	if len(tags) > 0 {
		names := make([]string, 0, len(tags))
		for _, t := range tags {
			names = append(names, string(t))
		}
		b.WriteString(" (бэкграунд: " + strings.Join(names, ", ") + ")")
	}
	b.WriteString(":")
	for _, rec := range recs {
		b.WriteString("\n\n• ")
		b.WriteString(rec)
	}
	return b.String()
}
