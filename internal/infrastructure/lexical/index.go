package lexical

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/kirillkom/program-assistant/internal/core/domain"
)

// Params controls how texts are analysed and which terms survive fitting.
type Params struct {
	NgramMin      int
	NgramMax      int
	MinTokenRunes int
	// MaxDF is a fraction of the corpus size; terms in more documents are dropped.
	MaxDF float64
	// MinDF is an absolute document count.
	MinDF int
}

func DefaultParams() Params {
	return Params{
		NgramMin:      1,
		NgramMax:      2,
		MinTokenRunes: 2,
		MaxDF:         0.9,
		MinDF:         2,
	}
}

func (p Params) normalize() Params {
	d := DefaultParams()
	if p.NgramMin <= 0 {
		p.NgramMin = d.NgramMin
	}
	if p.NgramMax < p.NgramMin {
		p.NgramMax = p.NgramMin
	}
	if p.MinTokenRunes <= 0 {
		p.MinTokenRunes = d.MinTokenRunes
	}
	if p.MaxDF <= 0 || p.MaxDF > 1 {
		p.MaxDF = d.MaxDF
	}
	if p.MinDF <= 0 {
		p.MinDF = 1
	}
	return p
}

// Index is a fitted tf-idf model together with the weighted rows of the corpus
// it was fitted on. It is immutable after Build or Load and safe for concurrent use.
type Index struct {
	params     Params
	vocabulary []string
	terms      map[string]int32
	idf        []float64
	rows       []sparseVector
	ids        []string
}

// Build fits the vectorizer on texts and weighs every text as a row. ids[i]
// names the chunk behind texts[i].
func Build(texts []string, ids []string, params Params) (*Index, error) {
	if len(texts) == 0 {
		return nil, domain.WrapError(domain.ErrBuild, "lexical build", errors.New("empty corpus"))
	}
	if len(texts) != len(ids) {
		return nil, domain.WrapError(domain.ErrBuild, "lexical build",
			fmt.Errorf("texts and ids length mismatch: %d != %d", len(texts), len(ids)))
	}
	params = params.normalize()

	n := len(texts)
	docTerms := make([]map[string]int, n)
	df := make(map[string]int)
	for i, text := range texts {
		counts := make(map[string]int)
		for _, term := range analyze(text, params) {
			counts[term]++
		}
		for term := range counts {
			df[term]++
		}
		docTerms[i] = counts
	}
	if len(df) == 0 {
		return nil, domain.WrapError(domain.ErrBuild, "lexical build", errors.New("empty vocabulary"))
	}

	maxDocCount := params.MaxDF * float64(n)
	if maxDocCount < float64(params.MinDF) {
		return nil, domain.WrapError(domain.ErrBuild, "lexical build",
			fmt.Errorf("max_df corresponds to %.2f documents, fewer than min_df %d", maxDocCount, params.MinDF))
	}

	vocabulary := make([]string, 0, len(df))
	for term, count := range df {
		if count >= params.MinDF && float64(count) <= maxDocCount {
			vocabulary = append(vocabulary, term)
		}
	}
	if len(vocabulary) == 0 {
		return nil, domain.WrapError(domain.ErrBuild, "lexical build",
			errors.New("no terms remain after document frequency pruning"))
	}
	sort.Strings(vocabulary)

	terms := make(map[string]int32, len(vocabulary))
	idf := make([]float64, len(vocabulary))
	for col, term := range vocabulary {
		terms[term] = int32(col)
		idf[col] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	rows := make([]sparseVector, n)
	for i, counts := range docTerms {
		rows[i] = weigh(project(counts, terms), idf)
	}

	return &Index{
		params:     params,
		vocabulary: vocabulary,
		terms:      terms,
		idf:        idf,
		rows:       rows,
		ids:        append([]string(nil), ids...),
	}, nil
}

func project(counts map[string]int, terms map[string]int32) map[int32]float64 {
	out := make(map[int32]float64, len(counts))
	for term, count := range counts {
		if col, ok := terms[term]; ok {
			out[col] += float64(count)
		}
	}
	return out
}

// Transform projects text into the fitted vector space. Unknown terms are
// dropped; text without known terms yields the zero vector.
func (ix *Index) Transform(text string) sparseVector {
	counts := make(map[string]int)
	for _, term := range analyze(text, ix.params) {
		counts[term]++
	}
	return weigh(project(counts, ix.terms), ix.idf)
}

// Rank scores every row against the query by cosine similarity and returns
// rows with a positive score, best first. Equal scores keep row order.
// limit <= 0 returns all positive rows.
func (ix *Index) Rank(query string, limit int) []domain.ScoredRow {
	if ix == nil || len(ix.rows) == 0 {
		return nil
	}
	q := ix.Transform(query)
	if q.empty() {
		return nil
	}

	scored := make([]domain.ScoredRow, 0, len(ix.rows))
	for i, row := range ix.rows {
		score := dot(q, row)
		if score <= 0 {
			continue
		}
		scored = append(scored, domain.ScoredRow{ChunkID: ix.ids[i], Score: score})
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if limit > 0 && len(scored) > limit {
		scored = scored[:limit]
	}
	return scored
}

func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.rows)
}

// IDs returns the chunk ids in row order.
func (ix *Index) IDs() []string {
	return append([]string(nil), ix.ids...)
}

func (ix *Index) Vocabulary() []string {
	return append([]string(nil), ix.vocabulary...)
}

func (ix *Index) IDF(term string) (float64, bool) {
	col, ok := ix.terms[term]
	if !ok {
		return 0, false
	}
	return ix.idf[col], true
}

func (ix *Index) Params() Params {
	return ix.params
}
