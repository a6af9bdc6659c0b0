package usecase

import (
	"context"
	"sort"
	"strings"

	"github.com/kirillkom/program-assistant/internal/core/domain"
)

const (
	defaultRecommendTopK = 6
	snippetRunes         = 400

	electiveWeight = 1.0
	tagWeight      = 0.5
)

// Recommender ranks program chunks by elective keywords and background tags.
type Recommender struct {
	knowledge   *Knowledge
	keywords    []string
	defaultTopK int
}

func NewRecommender(knowledge *Knowledge, electiveKeywords []string, defaultTopK int) *Recommender {
	if defaultTopK <= 0 {
		defaultTopK = defaultRecommendTopK
	}
	keywords := make([]string, 0, len(electiveKeywords))
	for _, kw := range electiveKeywords {
		if kw = strings.ToLower(strings.TrimSpace(kw)); kw != "" {
			keywords = append(keywords, kw)
		}
	}
	return &Recommender{knowledge: knowledge, keywords: keywords, defaultTopK: defaultTopK}
}

type scoredChunk struct {
	text  string
	score float64
}

// Recommend returns up to topK snippets from the program's chunks. An empty
// result means nothing in the program mentions electives or the tags.
func (r *Recommender) Recommend(ctx context.Context, tags []domain.BackgroundTag, program domain.Program, topK int) []string {
	if topK <= 0 {
		topK = r.defaultTopK
	}
	slug := string(program)
	if slug == "" {
		return nil
	}

	var ranked []scoredChunk
	for _, chunk := range r.knowledge.Docs.All() {
		if ctx.Err() != nil {
			return nil
		}
		if !belongsTo(chunk, slug) {
			continue
		}
		score := r.score(chunk.Text, tags)
		// Unmatched chunks are not used as filler for topK.
		if score <= 0 {
			continue
		}
		ranked = append(ranked, scoredChunk{text: chunk.Text, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if len(ranked) > topK {
		ranked = ranked[:topK]
	}

	out := make([]string, 0, len(ranked))
	for _, c := range ranked {
		out = append(out, truncateRunes(c.text, snippetRunes))
	}
	return out
}

func (r *Recommender) score(text string, tags []domain.BackgroundTag) float64 {
	lowered := strings.ToLower(text)
	var score float64
	for _, kw := range r.keywords {
		if strings.Contains(lowered, kw) {
			score += electiveWeight
		}
	}
	for _, tag := range tags {
		if tag != "" && strings.Contains(lowered, string(tag)) {
			score += tagWeight
		}
	}
	return score
}

// belongsTo matches the slug as a substring, so "ai" also selects ai_product chunks.
func belongsTo(chunk domain.DocumentChunk, slug string) bool {
	return strings.Contains(chunk.Title, slug) ||
		strings.Contains(chunk.ID, slug) ||
		strings.Contains(chunk.URL, slug)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
