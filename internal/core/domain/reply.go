package domain

type ReplyKind string

const (
	ReplyRecommendation ReplyKind = "recommendation-redirect"
	ReplyOffTopic       ReplyKind = "off-topic"
	ReplyAnswer         ReplyKind = "answer"
	ReplySnippets       ReplyKind = "snippets"
	ReplyNoResults      ReplyKind = "no-results"
)

// Reply is the caller-facing result of answering one question.
// Text is ready to be sent to the user as is.
type Reply struct {
	Kind            ReplyKind        `json:"kind"`
	Text            string           `json:"text"`
	Sources         []RetrievedChunk `json:"sources,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
	Program         Program          `json:"program,omitempty"`
	Tags            []BackgroundTag  `json:"tags,omitempty"`
	Generator       string           `json:"generator,omitempty"`
}
