// Package transcription turns recorded speech into text. It holds the
// transcription capability implementations and the Gateway that drives a
// single recording through Idle, Recording and Transcribing.
package transcription

import (
	"context"
	"strings"
)

//go:generate mockgen -destination=mocks/mock_service.go -package=mocks phonics-coach/internal/transcription Service

// DefaultLanguage is the only language practised.
const DefaultLanguage = "en"

// Options tune a single transcription request.
type Options struct {
	Language string
}

// Service defines the interface for audio transcription.
type Service interface {
	// Transcribe converts WAV audio to text.
	Transcribe(ctx context.Context, audio []byte, opts Options) (string, error)
}

// Normalize lower-cases and trims a transcription.
func Normalize(text string) string {
	return strings.ToLower(strings.TrimSpace(text))
}

func language(opts Options) string {
	if opts.Language == "" {
		return DefaultLanguage
	}
	return opts.Language
}

// Ensure implementations satisfy Service
var (
	_ Service = (*WhisperService)(nil)
	_ Service = (*OpenAIService)(nil)
	_ Service = (*MockService)(nil)
)
