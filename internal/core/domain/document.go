package domain

import "strconv"

// DocumentChunk is a fragment of scraped program page text.
// Chunks of one page share URL and Title and keep insertion order.
type DocumentChunk struct {
	ID    string `json:"id"`
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ChunkID builds the stable `{slug}-{index}` identifier.
func ChunkID(slug string, index int) string {
	return slug + "-" + strconv.Itoa(index)
}
