// Package ingest orchestrates the document ingestion pipeline: hash the
// file, deduplicate by content, extract pages, chunk, embed, and write to
// the metadata store and the vector index. It also owns document deletion.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/Jackiech6/voice-rag/internal/document"
	"github.com/Jackiech6/voice-rag/internal/extract"
	"github.com/Jackiech6/voice-rag/internal/retrieval"
	"github.com/Jackiech6/voice-rag/internal/storage"
)

// BatchEmbedder produces embeddings for chunk texts.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Options carry per-ingestion overrides.
type Options struct {
	// CustomTitle overrides title resolution entirely when non-empty.
	CustomTitle string
	// OriginalName is the filename as the caller saw it (e.g. the upload
	// filename when path points at a temp file). Its stem outranks the
	// content heuristic during title resolution.
	OriginalName string
}

// Result describes a completed ingestion. ChunkCount is the number of chunks
// created by this call; it is 0 when the content was already ingested.
type Result struct {
	DocumentID    int64  `json:"document_id"`
	Title         string `json:"title"`
	ChunkCount    int    `json:"chunk_count"`
	AlreadyExists bool   `json:"already_exists"`
	// Warning is set when metadata was committed but the vector index
	// write failed. The document is queryable once vectors are re-added.
	Warning string `json:"warning,omitempty"`
}

// DeleteResult describes a completed deletion.
type DeleteResult struct {
	DocumentID     int64  `json:"document_id"`
	ChunksDeleted  int    `json:"chunks_deleted"`
	VectorsDeleted int    `json:"vectors_deleted"`
	Warning        string `json:"warning,omitempty"`
}

// Pipeline wires the ingestion collaborators together.
type Pipeline struct {
	store    *storage.Store
	index    retrieval.VectorIndex
	embedder BatchEmbedder
	chunker  *document.Chunker
	logger   *slog.Logger
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(store *storage.Store, index retrieval.VectorIndex, embedder BatchEmbedder, chunker *document.Chunker, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{store: store, index: index, embedder: embedder, chunker: chunker, logger: logger}
}

// Ingest runs the full pipeline for one file. Deduplication by content hash
// happens before any other validation, so re-presenting known bytes always
// resolves to the existing document regardless of the new path; the unique
// hash index resolves the race where two callers ingest the same content
// concurrently (the loser re-reads the winner's row). Embedding runs before
// any metadata is committed, so a provider failure aborts the ingest and a
// retry starts clean. Only the vector index write after the metadata commit
// degrades to success with a Warning.
func (p *Pipeline) Ingest(ctx context.Context, path string, opts Options) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &Error{Code: CodeFileNotFound, Message: fmt.Sprintf("file not found: %s", path), Err: err}
		}
		return nil, &Error{Code: CodeFileNotReadable, Message: fmt.Sprintf("cannot access file: %s", path), Err: err}
	}
	if info.IsDir() {
		return nil, &Error{Code: CodeFileNotReadable, Message: fmt.Sprintf("path is a directory: %s", path)}
	}

	hash, err := document.HashFile(path)
	if err != nil {
		return nil, &Error{Code: CodeFileNotReadable, Message: fmt.Sprintf("cannot read file: %s", path), Err: err}
	}

	if existing, err := p.store.GetDocumentByHash(hash); err == nil {
		p.logger.Info("document already ingested", "document_id", existing.ID, "hash", hash)
		return &Result{DocumentID: existing.ID, Title: existing.Title, AlreadyExists: true}, nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("looking up document by hash: %w", err)
	}

	if !extract.Supported(path) {
		return nil, &Error{
			Code:    CodeUnsupportedFileType,
			Message: fmt.Sprintf("unsupported file type: %s (supported: %v)", path, extract.SupportedList()),
		}
	}

	pages, err := extract.Pages(path)
	if err != nil {
		return nil, &Error{Code: CodeProcessingError, Message: fmt.Sprintf("extracting text from %s", path), Err: err}
	}

	title := p.resolveTitle(path, pages, opts)
	chunks := p.chunker.ChunkPages(pages)
	if len(chunks) == 0 {
		return nil, &Error{Code: CodeProcessingError, Message: fmt.Sprintf("no text chunks produced from %s", path)}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding chunks: %w", err)
	}

	docID, err := p.store.InsertDocument(storage.Document{Title: title, FilePath: path, FileHash: hash})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateHash) {
			existing, lookupErr := p.store.GetDocumentByHash(hash)
			if lookupErr != nil {
				return nil, fmt.Errorf("re-reading document after duplicate hash: %w", lookupErr)
			}
			return &Result{DocumentID: existing.ID, Title: existing.Title, AlreadyExists: true}, nil
		}
		return nil, fmt.Errorf("inserting document: %w", err)
	}

	rows := make([]storage.Chunk, len(chunks))
	for i, c := range chunks {
		rows[i] = storage.Chunk{
			DocumentID: docID,
			ChunkIndex: c.Index,
			Metadata: storage.ChunkMetadata{
				DocumentID:    strconv.FormatInt(docID, 10),
				DocumentTitle: title,
				Page:          c.Page,
				ChunkIndex:    c.Index,
			},
		}
	}
	if err := p.store.InsertChunks(rows); err != nil {
		return nil, fmt.Errorf("inserting chunks: %w", err)
	}

	result := &Result{DocumentID: docID, Title: title, ChunkCount: len(chunks)}

	if warning := p.addToIndex(docID, title, chunks, vectors); warning != "" {
		result.Warning = warning
	}

	p.logger.Info("document ingested",
		"document_id", docID, "title", title, "chunks", len(chunks), "warning", result.Warning != "")
	return result, nil
}

// addToIndex writes embedded chunks to the vector index. A failure here
// leaves committed metadata without vectors; the returned warning surfaces
// that inconsistency to the caller.
func (p *Pipeline) addToIndex(docID int64, title string, chunks []document.ChunkText, vectors [][]float32) string {
	records := make([]retrieval.Record, len(chunks))
	now := time.Now().UTC()
	for i, c := range chunks {
		records[i] = retrieval.Record{
			ID:         retrieval.VectorID(docID, c.Index),
			DocumentID: docID,
			ChunkIndex: c.Index,
			Title:      title,
			Page:       c.Page,
			Text:       c.Text,
			Embedding:  vectors[i],
			CreatedAt:  now,
		}
	}
	if err := p.index.Add(records); err != nil {
		p.logger.Warn("vector index write failed, document stored without vectors",
			"document_id", docID, "error", err)
		return fmt.Sprintf("document stored but not searchable: indexing failed: %v", err)
	}
	return ""
}

// resolveTitle picks a document title: custom override, then the original
// filename's stem, then the first-page heuristic, then the path's stem.
func (p *Pipeline) resolveTitle(path string, pages []document.Page, opts Options) string {
	if opts.CustomTitle != "" {
		return opts.CustomTitle
	}
	if opts.OriginalName != "" {
		if stem := document.FilenameStem(opts.OriginalName); stem != "" {
			return stem
		}
	}
	if len(pages) > 0 {
		if title := document.ExtractTitle(pages[0].Text); title != "" {
			return title
		}
	}
	return document.FilenameStem(path)
}

// Delete removes a document from both stores. The vector index is cleared
// first and best-effort: an index failure degrades to a warning so metadata
// deletion still proceeds, leaving at worst orphaned vectors that no chunk
// row references.
func (p *Pipeline) Delete(ctx context.Context, documentID int64) (*DeleteResult, error) {
	if _, err := p.store.GetDocument(documentID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &Error{Code: CodeDocumentNotFound, Message: fmt.Sprintf("document %d not found", documentID), Err: err}
		}
		return nil, fmt.Errorf("looking up document %d: %w", documentID, err)
	}

	result := &DeleteResult{DocumentID: documentID}

	vectorsDeleted, err := p.index.DeleteByDocument(documentID)
	if err != nil {
		p.logger.Warn("vector deletion failed, continuing with metadata deletion",
			"document_id", documentID, "error", err)
		result.Warning = fmt.Sprintf("vector deletion failed: %v", err)
	} else {
		result.VectorsDeleted = vectorsDeleted
	}

	chunksDeleted, err := p.store.DeleteDocument(documentID)
	if err != nil {
		return nil, fmt.Errorf("deleting document %d: %w", documentID, err)
	}
	result.ChunksDeleted = chunksDeleted

	p.logger.Info("document deleted",
		"document_id", documentID, "chunks", chunksDeleted, "vectors", result.VectorsDeleted)
	return result, nil
}
