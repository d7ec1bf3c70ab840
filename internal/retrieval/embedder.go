package retrieval

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/Jackiech6/voice-rag/internal/cache"
)

// maxEmbedBatchSize caps how many texts go into a single embeddings request,
// respecting provider input limits.
const maxEmbedBatchSize = 256

// EmbeddingClient generates embeddings via the model provider.
type EmbeddingClient interface {
	Embeddings(ctx context.Context, model string, inputs []string) ([][]float32, error)
}

// Embedder wraps an EmbeddingClient with a model name and an optional
// query cache.
type Embedder struct {
	client EmbeddingClient
	model  string
	cache  *cache.EmbeddingCache
}

// NewEmbedder creates an Embedder. queryCache may be nil to disable caching.
func NewEmbedder(client EmbeddingClient, model string, queryCache *cache.EmbeddingCache) *Embedder {
	return &Embedder{client: client, model: model, cache: queryCache}
}

// EmbedQuery returns the embedding for a single query text, consulting the
// cache first.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.cache != nil {
		if vec := e.cache.Get(text); vec != nil {
			return vec, nil
		}
	}

	vectors, err := e.client.Embeddings(ctx, e.model, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding query: got %d vectors, want 1", len(vectors))
	}

	if e.cache != nil {
		e.cache.Set(text, vectors[0])
	}
	return vectors[0], nil
}

// EmbedBatch returns embedding vectors for multiple texts, in input order.
// Texts are sent in provider-sized batches; batches run concurrently with
// bounded parallelism. Returns nil (not error) for empty input. Document
// chunk texts bypass the query cache.
func (e *Embedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for start := 0; start < len(texts); start += maxEmbedBatchSize {
		end := start + maxEmbedBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		g.Go(func() error {
			vectors, err := e.client.Embeddings(gCtx, e.model, texts[start:end])
			if err != nil {
				return fmt.Errorf("embedding texts %d..%d: %w", start, end-1, err)
			}
			if len(vectors) != end-start {
				return fmt.Errorf("embedding texts %d..%d: got %d vectors, want %d", start, end-1, len(vectors), end-start)
			}
			copy(results[start:end], vectors)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
