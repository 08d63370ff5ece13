package transcription

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIService transcribes with the OpenAI audio transcription API.
type OpenAIService struct {
	client oai.Client
	model  oai.AudioModel
}

// NewOpenAIService creates a whisper-1 transcriber. baseURL may point at an
// OpenAI-compatible server; empty uses the default endpoint.
func NewOpenAIService(apiKey, baseURL string) (*OpenAIService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: apiKey must not be empty")
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIService{client: oai.NewClient(opts...), model: oai.AudioModelWhisper1}, nil
}

// Transcribe uploads the WAV and returns the recognised text.
func (s *OpenAIService) Transcribe(ctx context.Context, audio []byte, opts Options) (string, error) {
	resp, err := s.client.Audio.Transcriptions.New(ctx, oai.AudioTranscriptionNewParams{
		File:     oai.File(bytes.NewReader(audio), "attempt.wav", "audio/wav"),
		Model:    s.model,
		Language: oai.String(language(opts)),
	})
	if err != nil {
		return "", fmt.Errorf("openai: audio transcription: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}
