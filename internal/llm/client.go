// Package llm is a hand-rolled client for an OpenAI-compatible API surface:
// embeddings, chat completions, and audio transcription. External calls are
// the only latency-bound steps of the system, so every method takes a context
// and failed calls are retried a bounded number of times with backoff before
// surfacing a classified APIError.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"
)

const (
	defaultMaxAttempts = 3
	initialBackoff     = 500 * time.Millisecond
)

// Client communicates with an OpenAI-compatible HTTP API.
type Client struct {
	baseURL     string
	apiKey      string
	httpClient  *http.Client
	maxAttempts int
}

// NewClient creates a Client for the given base URL (e.g.
// "https://api.openai.com/v1") and API key.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		maxAttempts: defaultMaxAttempts,
	}
}

// Message is a chat message in the OpenAI API format.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// --- Embeddings ---

type embeddingsRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingsResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// Embeddings returns one vector per input text, in input order. All inputs go
// out in a single request so a document's chunks cost one round-trip.
func (c *Client) Embeddings(ctx context.Context, model string, inputs []string) ([][]float32, error) {
	if len(inputs) == 0 {
		return nil, nil
	}

	var resp embeddingsResponse
	err := c.postJSON(ctx, "/embeddings", embeddingsRequest{Model: model, Input: inputs}, &resp)
	if err != nil {
		return nil, err
	}

	if len(resp.Data) != len(inputs) {
		return nil, &APIError{
			Kind:    KindOther,
			Message: fmt.Sprintf("embeddings response has %d vectors for %d inputs", len(resp.Data), len(inputs)),
		}
	}

	vectors := make([][]float32, len(inputs))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, &APIError{
				Kind:    KindOther,
				Message: fmt.Sprintf("embeddings response index %d out of range", item.Index),
			}
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

// --- Chat completions ---

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message Message `json:"message"`
	} `json:"choices"`
}

// ChatCompletion sends messages to the model and returns the assistant's reply.
func (c *Client) ChatCompletion(ctx context.Context, model string, messages []Message, temperature float64, maxTokens int) (string, error) {
	var resp chatResponse
	err := c.postJSON(ctx, "/chat/completions", chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}, &resp)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", &APIError{Kind: KindOther, Message: "chat completion returned no choices"}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// --- Audio transcription ---

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe sends audio bytes to the transcription endpoint and returns the
// transcript text. filename is required by the multipart form and hints the
// container format ("audio.webm", "audio.wav", ...).
func (c *Client) Transcribe(ctx context.Context, model, filename string, audio []byte, language string) (string, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("building multipart form: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return "", fmt.Errorf("writing audio payload: %w", err)
	}
	if err := mw.WriteField("model", model); err != nil {
		return "", fmt.Errorf("writing model field: %w", err)
	}
	if language != "" {
		if err := mw.WriteField("language", language); err != nil {
			return "", fmt.Errorf("writing language field: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing multipart form: %w", err)
	}

	var resp transcriptionResponse
	if err := c.do(ctx, "/audio/transcriptions", body.Bytes(), mw.FormDataContentType(), &resp); err != nil {
		return "", err
	}
	return resp.Text, nil
}

// --- transport ---

func (c *Client) postJSON(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling request: %w", err)
	}
	return c.do(ctx, path, body, "application/json", out)
}

// do executes one POST with bounded retries. Only transient failures
// (connectivity, throttling, 5xx) are retried; auth and validation failures
// surface immediately.
func (c *Client) do(ctx context.Context, path string, body []byte, contentType string, out any) error {
	backoff := initialBackoff
	var lastErr *APIError

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return &APIError{Kind: KindConnectivity, Message: ctx.Err().Error()}
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		apiErr := c.doOnce(ctx, path, body, contentType, out)
		if apiErr == nil {
			return nil
		}
		lastErr = apiErr
		if !retryable(apiErr) {
			return apiErr
		}
	}
	return lastErr
}

func (c *Client) doOnce(ctx context.Context, path string, body []byte, contentType string, out any) *APIError {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return &APIError{Kind: KindOther, Message: err.Error()}
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Kind: KindConnectivity, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &APIError{
			Kind:       kindForStatus(resp.StatusCode),
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &APIError{Kind: KindOther, Message: fmt.Sprintf("decoding response: %v", err)}
	}
	return nil
}

// readErrorMessage extracts the provider's error message from a failure body,
// falling back to the raw body text.
func readErrorMessage(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no error detail"
	}

	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &envelope) == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return strings.TrimSpace(string(data))
}
