// Package pronunciation serves reference audio for practice words.
package pronunciation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

//go:generate mockgen -destination=mocks/mock_synthesizer.go -package=mocks phonics-coach/internal/pronunciation Synthesizer

const (
	DefaultModel = "tts-1"
	DefaultVoice = "alloy"

	// Speed slows speech down for young listeners.
	Speed = 0.85

	// maxAudioBytes bounds a synthesized clip. A single word is far smaller.
	maxAudioBytes = 4 << 20
)

// Synthesizer turns text into WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
	// Voice identifies the voice, so cached audio is keyed by it.
	Voice() string
}

// OpenAITTS synthesizes speech with the OpenAI audio speech endpoint.
type OpenAITTS struct {
	client oai.Client
	model  string
	voice  string
}

// TTSOption configures OpenAITTS.
type TTSOption func(*ttsConfig)

type ttsConfig struct {
	baseURL string
	timeout time.Duration
}

// WithBaseURL points the client at an OpenAI-compatible server.
func WithBaseURL(url string) TTSOption {
	return func(c *ttsConfig) {
		c.baseURL = url
	}
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) TTSOption {
	return func(c *ttsConfig) {
		c.timeout = d
	}
}

// NewOpenAITTS creates a speech synthesizer. Empty model and voice pick the
// defaults.
func NewOpenAITTS(apiKey, model, voice string, opts ...TTSOption) (*OpenAITTS, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("pronunciation: apiKey must not be empty")
	}
	if model == "" {
		model = DefaultModel
	}
	if voice == "" {
		voice = DefaultVoice
	}

	cfg := &ttsConfig{timeout: 30 * time.Second}
	for _, o := range opts {
		o(cfg)
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}),
	}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}

	return &OpenAITTS{client: oai.NewClient(reqOpts...), model: model, voice: voice}, nil
}

// Voice returns the configured voice.
func (t *OpenAITTS) Voice() string {
	return t.voice
}

// Synthesize returns WAV audio of text spoken slowly.
func (t *OpenAITTS) Synthesize(ctx context.Context, text string) ([]byte, error) {
	resp, err := t.client.Audio.Speech.New(ctx, oai.AudioSpeechNewParams{
		Input:          text,
		Model:          oai.SpeechModel(t.model),
		Voice:          oai.AudioSpeechNewParamsVoice(t.voice),
		ResponseFormat: oai.AudioSpeechNewParamsResponseFormatWAV,
		Speed:          oai.Float(Speed),
	})
	if err != nil {
		return nil, fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxAudioBytes))
	if err != nil {
		return nil, fmt.Errorf("read speech audio: %w", err)
	}
	return data, nil
}

var _ Synthesizer = (*OpenAITTS)(nil)
