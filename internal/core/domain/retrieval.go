package domain

// RetrievedChunk is a chunk scored against one query.
type RetrievedChunk struct {
	DocumentChunk
	Score float64 `json:"score"`
}

// ScoredRow is a raw index hit before metadata resolution.
type ScoredRow struct {
	ChunkID string
	Score   float64
}
