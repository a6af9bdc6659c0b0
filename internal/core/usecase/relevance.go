package usecase

import (
	"context"
	"fmt"

	"github.com/kirillkom/program-assistant/internal/core/ports"
)

const DefaultRelevanceThreshold = 0.08

// Verdict carries the top-1 score next to the decision so callers can log it.
type Verdict struct {
	Relevant bool
	Score    float64
}

// RelevanceGate decides whether a question is about the indexed programs
// using the best retrieval score.
type RelevanceGate struct {
	searcher  ports.ChunkSearcher
	threshold float64
}

func NewRelevanceGate(searcher ports.ChunkSearcher, threshold float64) *RelevanceGate {
	if threshold <= 0 {
		threshold = DefaultRelevanceThreshold
	}
	return &RelevanceGate{searcher: searcher, threshold: threshold}
}

func (g *RelevanceGate) Threshold() float64 {
	return g.threshold
}

func (g *RelevanceGate) Evaluate(ctx context.Context, query string) (Verdict, error) {
	results, err := g.searcher.Search(ctx, query, 1)
	if err != nil {
		return Verdict{}, fmt.Errorf("relevance search: %w", err)
	}
	if len(results) == 0 {
		return Verdict{}, nil
	}
	score := results[0].Score
	return Verdict{Relevant: score >= g.threshold, Score: score}, nil
}

func (g *RelevanceGate) IsRelevant(ctx context.Context, query string) (bool, error) {
	v, err := g.Evaluate(ctx, query)
	if err != nil {
		return false, err
	}
	return v.Relevant, nil
}
