package chunking

const (
	DefaultChunkSize = 1000
	DefaultOverlap   = 120
)

// Splitter cuts text into windows of ChunkSize runes where consecutive windows
// share Overlap runes. Chunks are not trimmed, so offsets map back onto the text.
type Splitter struct {
	ChunkSize int
	Overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = 0
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
	}
}

func (s *Splitter) Split(text string) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil
	}

	out := make([]string, 0, len(runes)/s.ChunkSize+1)
	start := 0
	for start < len(runes) {
		end := start + s.ChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
		if end == len(runes) {
			break
		}
		// Always advance, even when the overlap swallows the whole window.
		start = max(end-s.Overlap, start+1)
	}
	return out
}
