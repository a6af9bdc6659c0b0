package domain

// Program is one of the graduate program tracks. Its value doubles as the
// slug used in chunk ids and page URLs.
type Program string

const (
	ProgramAI        Program = "ai"
	ProgramAIProduct Program = "ai_product"
)

// Programs lists the supported programs in their canonical order.
func Programs() []Program {
	return []Program{ProgramAI, ProgramAIProduct}
}

func (p Program) Valid() bool {
	return p == ProgramAI || p == ProgramAIProduct
}

// DisplayName returns the human label used in replies.
func (p Program) DisplayName() string {
	switch p {
	case ProgramAI:
		return "AI"
	case ProgramAIProduct:
		return "AI Product"
	default:
		return string(p)
	}
}

// BackgroundTag is a coarse label of a user's prior experience.
type BackgroundTag string

const (
	TagPython      BackgroundTag = "python"
	TagML          BackgroundTag = "ml"
	TagDataScience BackgroundTag = "data_science"
	TagCV          BackgroundTag = "cv"
	TagNLP         BackgroundTag = "nlp"
	TagProduct     BackgroundTag = "product"
	TagBackend     BackgroundTag = "backend"
	TagFrontend    BackgroundTag = "frontend"
	TagMath        BackgroundTag = "math"
	TagDevOps      BackgroundTag = "devops"
)
