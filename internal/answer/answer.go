// Package answer orchestrates retrieval-grounded question answering:
// embed the query, search the vector index, filter by similarity, and
// generate an answer with reconciled citations.
package answer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Jackiech6/voice-rag/internal/llm"
	"github.com/Jackiech6/voice-rag/internal/retrieval"
)

// State classifies the outcome of a query.
type State string

const (
	// StateAnswered means relevant chunks were found and an answer was
	// generated from them.
	StateAnswered State = "answered"
	// StateNoInformation means the index returned no chunks at all.
	StateNoInformation State = "no_information"
	// StateLowRelevance means chunks were found but none met the
	// similarity threshold.
	StateLowRelevance State = "low_relevance"
)

const (
	noInformationAnswer = "I don't have any information about that in my knowledge base."
	lowRelevanceAnswer  = "I found some potentially related information, but it doesn't seem directly relevant to your question. Could you rephrase or ask about something else?"
)

// Result is the outcome of a single query.
type Result struct {
	State     State
	Answer    string
	Chunks    []retrieval.ScoredRecord
	Citations []Citation
}

// ChatClient generates chat completions via the model provider.
type ChatClient interface {
	ChatCompletion(ctx context.Context, model string, messages []llm.Message, temperature float64, maxTokens int) (string, error)
}

// QueryEmbedder produces an embedding for a query string.
type QueryEmbedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Service answers questions grounded on the vector index.
type Service struct {
	embedder  QueryEmbedder
	index     retrieval.VectorIndex
	chat      ChatClient
	chatModel string
	topK      int
	threshold float32
	logger    *slog.Logger
}

// NewService wires a query answering service. threshold is the minimum
// cosine similarity a chunk must reach to ground an answer.
func NewService(embedder QueryEmbedder, index retrieval.VectorIndex, chat ChatClient, chatModel string, topK int, threshold float32, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		embedder:  embedder,
		index:     index,
		chat:      chat,
		chatModel: chatModel,
		topK:      topK,
		threshold: threshold,
		logger:    logger,
	}
}

// Query embeds the question, retrieves the top-K chunks and resolves one of
// three outcomes: no information (empty index or no matches), low relevance
// (matches exist but all score below the threshold), or an answer generated
// from only the chunks that passed the threshold, with citations reconciled
// against that grounding set. In every outcome Chunks carries the full
// retrieved set, unfiltered, so callers can inspect what was considered.
func (s *Service) Query(ctx context.Context, question string) (*Result, error) {
	vector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	matches, err := s.index.Search(vector, s.topK)
	if err != nil {
		return nil, fmt.Errorf("searching index: %w", err)
	}

	if len(matches) == 0 {
		s.logger.Info("query found no chunks")
		return &Result{State: StateNoInformation, Answer: noInformationAnswer}, nil
	}

	relevant := matches[:0:0]
	for _, m := range matches {
		if m.Score >= s.threshold {
			relevant = append(relevant, m)
		}
	}

	if len(relevant) == 0 {
		s.logger.Info("query matches all below threshold",
			"matches", len(matches), "threshold", s.threshold, "best_score", matches[0].Score)
		return &Result{State: StateLowRelevance, Answer: lowRelevanceAnswer, Chunks: matches}, nil
	}

	text, err := s.generate(ctx, question, relevant)
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	citations := Reconcile(text, relevant)
	s.logger.Info("query answered",
		"chunks", len(relevant), "citations", len(citations))

	return &Result{
		State:     StateAnswered,
		Answer:    text,
		Chunks:    matches,
		Citations: citations,
	}, nil
}

const systemPrompt = `You are a helpful assistant that answers questions based on the provided context.

Rules:
- Answer using ONLY the information in the context below.
- Cite your sources using the bracketed numbers, e.g. [1] or [2][3].
- If the context does not contain the answer, say so instead of guessing.
- Keep answers concise and factual.`

func (s *Service) generate(ctx context.Context, question string, chunks []retrieval.ScoredRecord) (string, error) {
	var b strings.Builder
	b.WriteString("Context:\n\n")
	for i, c := range chunks {
		fmt.Fprintf(&b, "[%d] (ID: %s, Source: %s, Page: %d)\n%s\n\n", i+1, c.ID, c.Title, c.Page, c.Text)
	}
	b.WriteString("Question: ")
	b.WriteString(question)

	messages := []llm.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: b.String()},
	}
	return s.chat.ChatCompletion(ctx, s.chatModel, messages, 0.2, 1024)
}
