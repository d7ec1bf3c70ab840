package extract

import (
	"fmt"

	"github.com/ledongthuc/pdf"

	"github.com/Jackiech6/voice-rag/internal/document"
)

// pdfPages extracts plain text from every page of a PDF.
// A PDF with no extractable text is treated as a processing failure rather
// than producing an empty document.
func pdfPages(path string) (pages []document.Page, err error) {
	// The pdf library panics on some malformed files; convert that into an
	// extraction error so callers see a ProcessingError, not a crash.
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = fmt.Errorf("parsing PDF %s: %v", path, r)
		}
	}()

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	hasText := false
	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, document.Page{Number: i})
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting text from page %d of %s: %w", i, path, err)
		}
		if text != "" {
			hasText = true
		}
		pages = append(pages, document.Page{Number: i, Text: text})
	}

	if len(pages) == 0 || !hasText {
		return nil, fmt.Errorf("PDF %s has no extractable text", path)
	}
	return pages, nil
}
