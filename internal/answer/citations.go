package answer

import (
	"regexp"
	"strconv"

	"github.com/Jackiech6/voice-rag/internal/retrieval"
)

// Citation links a bracketed marker in a generated answer back to the
// retrieved chunk it references, carrying the chunk text and its similarity
// score so callers can render sources without another lookup.
type Citation struct {
	Number  int     `json:"number"`
	ChunkID string  `json:"chunk_id"`
	Title   string  `json:"title"`
	Page    int     `json:"page"`
	Text    string  `json:"text"`
	Score   float32 `json:"similarity_score"`
}

var citationMarker = regexp.MustCompile(`\[(\d+)\]`)

// Reconcile extracts "[n]" markers from text and resolves them against the
// chunks that were given to the generator. Markers are 1-based indices into
// chunks; out-of-range markers are ignored, and repeated references to the
// same chunk keep only the first appearance.
func Reconcile(text string, chunks []retrieval.ScoredRecord) []Citation {
	matches := citationMarker.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(chunks))
	var citations []Citation
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 || n > len(chunks) {
			continue
		}
		chunk := chunks[n-1]
		if seen[chunk.ID] {
			continue
		}
		seen[chunk.ID] = true
		citations = append(citations, Citation{
			Number:  n,
			ChunkID: chunk.ID,
			Title:   chunk.Title,
			Page:    chunk.Page,
			Text:    chunk.Text,
			Score:   chunk.Score,
		})
	}
	return citations
}
