// Package extract turns supported files into a normalized sequence of pages.
// Anything beyond the {page_number, text} abstraction stays inside this
// package; the ingestion pipeline never sees format-specific detail.
package extract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Jackiech6/voice-rag/internal/document"
)

// supportedExtensions is the set of file types the pipeline accepts.
var supportedExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
	".md":  true,
}

// Supported reports whether the file's extension is in the supported set.
// Matching is case-insensitive.
func Supported(path string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(path))]
}

// SupportedList returns the supported extensions for error messages.
func SupportedList() []string {
	return []string{".pdf", ".txt", ".md"}
}

// Pages extracts the ordered page sequence from the file at path.
// PDF files yield one entry per page; plain-text formats yield a single page.
func Pages(path string) ([]document.Page, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return pdfPages(path)
	case ".txt", ".md":
		return textPages(path)
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(path))
	}
}

// textPages reads the whole file as a single page.
func textPages(path string) ([]document.Page, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return []document.Page{{Number: 1, Text: string(data)}}, nil
}
