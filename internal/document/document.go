// Package document holds the pure building blocks of the ingestion pipeline:
// content hashing, token-window chunking, and title extraction. Nothing here
// touches the stores or any external service.
package document

// Page is one page of normalized extracted text. Page numbers are 1-based.
type Page struct {
	Number int
	Text   string
}

// ChunkText is one chunk produced from a document's pages. Index is the
// global 0-based chunk index across the whole document; Page is the page the
// chunk was cut from.
type ChunkText struct {
	Index int
	Page  int
	Text  string
}
