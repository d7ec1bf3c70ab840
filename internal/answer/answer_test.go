package answer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Jackiech6/voice-rag/internal/llm"
	"github.com/Jackiech6/voice-rag/internal/retrieval"
)

type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	return f.vector, f.err
}

type fakeIndex struct {
	results []retrieval.ScoredRecord
	err     error
}

func (f *fakeIndex) Add([]retrieval.Record) error { return nil }

func (f *fakeIndex) Search([]float32, int) ([]retrieval.ScoredRecord, error) {
	return f.results, f.err
}

func (f *fakeIndex) DeleteByDocument(int64) (int, error) { return 0, nil }

func (f *fakeIndex) Count() (int, error) { return len(f.results), nil }

type fakeChat struct {
	response string
	err      error
	prompt   string
}

func (f *fakeChat) ChatCompletion(_ context.Context, _ string, messages []llm.Message, _ float64, _ int) (string, error) {
	if len(messages) > 0 {
		f.prompt = messages[len(messages)-1].Content
	}
	return f.response, f.err
}

func scored(documentID int64, chunkIndex int, score float32, text string) retrieval.ScoredRecord {
	return retrieval.ScoredRecord{
		Record: retrieval.Record{
			ID:         retrieval.VectorID(documentID, chunkIndex),
			DocumentID: documentID,
			ChunkIndex: chunkIndex,
			Title:      "Doc",
			Page:       1,
			Text:       text,
		},
		Score: score,
	}
}

func testService(index retrieval.VectorIndex, chat ChatClient) *Service {
	return NewService(&fakeEmbedder{vector: []float32{1, 0}}, index, chat, "test-model", 5, 0.5, nil)
}

func TestQuery_NoInformation(t *testing.T) {
	chat := &fakeChat{response: "should not be called"}
	svc := testService(&fakeIndex{}, chat)

	result, err := svc.Query(context.Background(), "what is in the docs")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if result.State != StateNoInformation {
		t.Errorf("state = %s, want %s", result.State, StateNoInformation)
	}
	if len(result.Chunks) != 0 {
		t.Errorf("got %d chunks, want 0", len(result.Chunks))
	}
	if chat.prompt != "" {
		t.Error("chat client was called for an empty index")
	}
}

func TestQuery_LowRelevanceReturnsUnfilteredChunks(t *testing.T) {
	matches := []retrieval.ScoredRecord{
		scored(1, 0, 0.4, "first"),
		scored(1, 1, 0.3, "second"),
	}
	chat := &fakeChat{response: "should not be called"}
	svc := testService(&fakeIndex{results: matches}, chat)

	result, err := svc.Query(context.Background(), "anything")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if result.State != StateLowRelevance {
		t.Errorf("state = %s, want %s", result.State, StateLowRelevance)
	}
	if len(result.Chunks) != 2 {
		t.Errorf("got %d chunks, want all 2 unfiltered matches", len(result.Chunks))
	}
	if chat.prompt != "" {
		t.Error("chat client was called for low-relevance matches")
	}
	if len(result.Citations) != 0 {
		t.Errorf("got %d citations, want 0", len(result.Citations))
	}
}

func TestQuery_AnsweredGroundsOnChunksAboveThreshold(t *testing.T) {
	matches := []retrieval.ScoredRecord{
		scored(1, 0, 0.9, "relevant chunk"),
		scored(1, 1, 0.4, "irrelevant chunk"),
	}
	chat := &fakeChat{response: "The answer [1]."}
	svc := testService(&fakeIndex{results: matches}, chat)

	result, err := svc.Query(context.Background(), "question")
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if result.State != StateAnswered {
		t.Errorf("state = %s, want %s", result.State, StateAnswered)
	}
	if len(result.Chunks) != 2 {
		t.Fatalf("got %d chunks, want the full retrieved set of 2", len(result.Chunks))
	}
	if !strings.Contains(chat.prompt, "relevant chunk") {
		t.Error("prompt missing the above-threshold chunk")
	}
	if strings.Contains(chat.prompt, "irrelevant chunk") {
		t.Error("below-threshold chunk leaked into the prompt")
	}
	if result.Answer != "The answer [1]." {
		t.Errorf("answer = %q", result.Answer)
	}
	if len(result.Citations) != 1 || result.Citations[0].ChunkID != "doc_1_chunk_0" {
		t.Errorf("citations = %+v, want one for doc_1_chunk_0", result.Citations)
	}
}

func TestQuery_PromptContainsNumberedContext(t *testing.T) {
	matches := []retrieval.ScoredRecord{
		scored(1, 0, 0.9, "alpha text"),
		scored(2, 3, 0.8, "beta text"),
	}
	chat := &fakeChat{response: "ok"}
	svc := testService(&fakeIndex{results: matches}, chat)

	if _, err := svc.Query(context.Background(), "the question"); err != nil {
		t.Fatalf("query: %v", err)
	}

	for _, want := range []string{
		"[1] (ID: doc_1_chunk_0",
		"[2] (ID: doc_2_chunk_3",
		"alpha text",
		"beta text",
		"Question: the question",
	} {
		if !strings.Contains(chat.prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, chat.prompt)
		}
	}
}

func TestQuery_EmbedError(t *testing.T) {
	wantErr := errors.New("embed failed")
	svc := NewService(&fakeEmbedder{err: wantErr}, &fakeIndex{}, &fakeChat{}, "m", 5, 0.5, nil)

	if _, err := svc.Query(context.Background(), "q"); !errors.Is(err, wantErr) {
		t.Errorf("got %v, want wrapped %v", err, wantErr)
	}
}

func TestQuery_ChatError(t *testing.T) {
	wantErr := errors.New("chat failed")
	matches := []retrieval.ScoredRecord{scored(1, 0, 0.9, "text")}
	svc := testService(&fakeIndex{results: matches}, &fakeChat{err: wantErr})

	if _, err := svc.Query(context.Background(), "q"); !errors.Is(err, wantErr) {
		t.Errorf("got %v, want wrapped %v", err, wantErr)
	}
}
