package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateHash is returned when inserting a document whose content hash
// is already present. The unique index on file_hash is the only guard against
// concurrent double-ingestion; callers resolve the race by re-reading the
// existing document.
var ErrDuplicateHash = errors.New("document with this content hash already exists")

// Document is the authoritative metadata record for an ingested file.
type Document struct {
	ID        int64
	Title     string
	FilePath  string
	FileHash  string
	CreatedAt time.Time
}

// Chunk is the metadata row for one chunk of a document. The chunk text and
// embedding live in the vector index; this row plus the deterministic id
// scheme ("doc_{document_id}_chunk_{chunk_index}") is what ties them together.
type Chunk struct {
	ID         int64
	DocumentID int64
	ChunkIndex int
	Metadata   ChunkMetadata
}

// ChunkMetadata is the denormalized blob stored with both the chunk row and
// its vector record.
type ChunkMetadata struct {
	DocumentID    string `json:"document_id"`
	DocumentTitle string `json:"document_title"`
	Page          int    `json:"page"`
	ChunkIndex    int    `json:"chunk_index"`
}

// DocumentInfo is a Document together with its chunk count, for listings.
type DocumentInfo struct {
	Document
	ChunkCount int
}
