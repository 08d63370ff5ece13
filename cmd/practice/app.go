package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"phonics-coach/internal/analysis"
	"phonics-coach/internal/audio"
	"phonics-coach/internal/llm"
	"phonics-coach/internal/pronunciation"
	"phonics-coach/internal/transcription"
)

const ttsModel = "tts-1"

// app holds the capabilities one command needs. Everything is built lazily
// so that `practice words` never touches the network or the sound card.
type app struct {
	opts options
	lock *audio.ModeLock
}

func newApp(o options) *app {
	return &app{opts: o, lock: audio.NewModeLock()}
}

func (a *app) aiEnabled() bool {
	return !a.opts.offline && a.opts.openAIKey != ""
}

func (a *app) transcriber() (transcription.Service, error) {
	switch a.opts.transcription {
	case providerWhisper:
		return transcription.NewWhisperService(a.opts.whisperURL)
	case providerOpenAI:
		return transcription.NewOpenAIService(a.opts.openAIKey, a.opts.openAIBaseURL)
	default:
		return transcription.NewMockService(), nil
	}
}

// generator returns nil when AI feedback is off; the orchestrator then
// falls back to the rule-based tiers.
func (a *app) generator() (llm.Generator, error) {
	if !a.aiEnabled() {
		return nil, nil
	}
	return llm.NewOpenAI(a.opts.openAIKey, a.opts.model, llm.WithBaseURL(a.opts.openAIBaseURL))
}

func (a *app) gateway() (*transcription.Gateway, error) {
	svc, err := a.transcriber()
	if err != nil {
		return nil, fmt.Errorf("failed to create transcriber: %w", err)
	}
	return transcription.NewGateway(svc, transcription.GatewayConfig{
		MinAudioBytes: a.opts.minAudioBytes,
		Language:      transcription.DefaultLanguage,
		ModeLock:      a.lock,
	}), nil
}

func (a *app) orchestrator(recorder analysis.Recorder) (*analysis.Orchestrator, error) {
	gen, err := a.generator()
	if err != nil {
		return nil, fmt.Errorf("failed to create feedback generator: %w", err)
	}
	return analysis.NewOrchestrator(recorder, gen, analysis.Config{
		RecordingWindow: a.opts.window,
	}), nil
}

// pronouncer is uncached: the CLI plays each word once per prompt.
func (a *app) pronouncer() (*pronunciation.Service, error) {
	if !a.aiEnabled() {
		return pronunciation.NewService(nil, nil, 0), nil
	}
	tts, err := pronunciation.NewOpenAITTS(a.opts.openAIKey, ttsModel, a.opts.voice,
		pronunciation.WithBaseURL(a.opts.openAIBaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create speech synthesizer: %w", err)
	}
	return pronunciation.NewService(tts, nil, 0), nil
}

// interruptible returns a context cancelled by Ctrl-C. Calling stop restores
// the default signal behaviour.
func interruptible(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
