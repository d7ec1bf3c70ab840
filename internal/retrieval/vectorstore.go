package retrieval

import (
	"fmt"
	"time"
)

// VectorID derives the vector record id for a chunk. The id is the join key
// between the metadata store and the vector index, computed from
// (document_id, chunk_index) alone; there is no mapping table.
func VectorID(documentID int64, chunkIndex int) string {
	return fmt.Sprintf("doc_%d_chunk_%d", documentID, chunkIndex)
}

// Record is one chunk's entry in the vector index: embedding, raw text, and
// the denormalized metadata needed to render results without a metadata-store
// lookup.
type Record struct {
	ID         string
	DocumentID int64
	ChunkIndex int
	Title      string
	Page       int
	Text       string
	Embedding  []float32
	CreatedAt  time.Time
}

// ScoredRecord is a Record with a similarity score attached. Scores are
// cosine similarity (equivalently 1 - cosine distance); for normalized
// vectors they fall in [0, 1], but callers must not assume a fixed range.
type ScoredRecord struct {
	Record
	Score float32
}

// VectorIndex is the interface for vector storage and similarity search
// backends. The index is derived state: the metadata store is authoritative
// over chunk existence, and the index can lag or be rebuilt from it.
type VectorIndex interface {
	// Add bulk-upserts records. A no-op on empty input.
	Add(records []Record) error

	// Search returns up to topK records nearest to vector in cosine space,
	// best first.
	Search(vector []float32, topK int) ([]ScoredRecord, error)

	// DeleteByDocument removes every record belonging to a document and
	// returns the number deleted.
	DeleteByDocument(documentID int64) (int, error)

	// Count returns the number of records in the index.
	Count() (int, error)
}
