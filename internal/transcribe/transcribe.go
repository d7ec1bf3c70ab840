// Package transcribe converts spoken audio to text through the model
// provider's speech-to-text endpoint.
package transcribe

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrEmptyAudio is returned when a transcription request carries no audio
// bytes.
var ErrEmptyAudio = errors.New("audio data is empty")

// TranscriptionClient sends audio to the provider's transcription endpoint.
type TranscriptionClient interface {
	Transcribe(ctx context.Context, model, filename string, audio []byte, language string) (string, error)
}

// Service wraps a TranscriptionClient with the configured model.
type Service struct {
	client TranscriptionClient
	model  string
}

// NewService creates a transcription service.
func NewService(client TranscriptionClient, model string) *Service {
	return &Service{client: client, model: model}
}

// Transcribe converts audio bytes to text. filename carries the container
// format hint (e.g. "voice.wav"); language is an optional ISO-639-1 code
// and may be empty for auto-detection.
func (s *Service) Transcribe(ctx context.Context, filename string, audio []byte, language string) (string, error) {
	if len(audio) == 0 {
		return "", ErrEmptyAudio
	}
	text, err := s.client.Transcribe(ctx, s.model, filename, audio, language)
	if err != nil {
		return "", fmt.Errorf("transcribing %s: %w", filename, err)
	}
	return strings.TrimSpace(text), nil
}
