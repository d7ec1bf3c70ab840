package document

import (
	"path/filepath"
	"strings"
)

// metadataPatterns mark lines that look like boilerplate rather than a title.
var metadataPatterns = []string{"page", "date:", "copyright", "©"}

// ExtractTitle derives a title from the text of a document's first page.
// It is a pure function: no I/O, same input always yields the same output.
// Returns "" when no suitable title is found, leaving the caller to fall
// back to the filename stem.
func ExtractTitle(firstPageText string) string {
	text := strings.TrimSpace(firstPageText)
	if text == "" {
		return ""
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
		if len(lines) == 5 {
			break
		}
	}

	for i, line := range lines {
		if len(line) < 5 || len(line) > 200 {
			continue
		}
		if looksLikeMetadata(line) {
			continue
		}

		// A line ending in terminal punctuation reads like a title.
		if strings.ContainsAny(line[len(line)-1:], ".!?") && len(line) < 150 {
			return line
		}

		// A short line near the top is likely the heading.
		if len(line) < 100 && i < 2 {
			return line
		}
	}

	// Fallback: the first sentence, if it is title-sized.
	firstSentence := strings.TrimSpace(strings.SplitN(text, ".", 2)[0])
	if len(firstSentence) >= 10 && len(firstSentence) <= 100 {
		return firstSentence
	}

	return ""
}

func looksLikeMetadata(line string) bool {
	lower := strings.ToLower(line)
	for _, pattern := range metadataPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}

// FilenameStem returns the base name of path with its extension removed.
// Used as the last-resort document title.
func FilenameStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
