package transcription

import (
	"context"
	"errors"
	"sync"
	"time"

	"phonics-coach/internal/audio"
	apperrors "phonics-coach/internal/errors"
)

// DefaultMinAudioBytes is the smallest recording worth transcribing.
const DefaultMinAudioBytes = 1024

// State is where the Gateway is in a recording's lifecycle.
type State int

const (
	StateIdle State = iota
	StateRecording
	StateTranscribing
)

func (s State) String() string {
	switch s {
	case StateRecording:
		return "recording"
	case StateTranscribing:
		return "transcribing"
	default:
		return "idle"
	}
}

// PermissionFunc reports whether recording is allowed right now.
type PermissionFunc func(ctx context.Context) bool

// GatewayConfig tunes a Gateway. Zero values pick the defaults.
type GatewayConfig struct {
	MinAudioBytes int
	Language      string
	// Permission gates StartRecording. Nil always allows.
	Permission PermissionFunc
	// ModeLock is shared with playback when both run on one device.
	ModeLock *audio.ModeLock
}

// Recording is the outcome of one completed recording.
type Recording struct {
	Text  string
	Audio []byte
}

// Gateway owns at most one recording at a time and turns it into text.
type Gateway struct {
	svc        Service
	minBytes   int
	language   string
	permission PermissionFunc
	modes      *audio.ModeLock

	mu        sync.Mutex
	state     State
	capture   Capture
	release   func()
	cancelled chan struct{}
}

// NewGateway creates an idle gateway over svc.
func NewGateway(svc Service, cfg GatewayConfig) *Gateway {
	if cfg.MinAudioBytes <= 0 {
		cfg.MinAudioBytes = DefaultMinAudioBytes
	}
	if cfg.Language == "" {
		cfg.Language = DefaultLanguage
	}
	if cfg.ModeLock == nil {
		cfg.ModeLock = audio.NewModeLock()
	}
	return &Gateway{
		svc:        svc,
		minBytes:   cfg.MinAudioBytes,
		language:   cfg.Language,
		permission: cfg.Permission,
		modes:      cfg.ModeLock,
	}
}

// State reports the current lifecycle state.
func (g *Gateway) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// StartRecording moves Idle to Recording. It fails fast while another
// recording or transcription is in flight.
func (g *Gateway) StartRecording(ctx context.Context, capture Capture) error {
	_, err := g.start(ctx, capture)
	return err
}

// start returns the channel closed by Cancel for this recording.
func (g *Gateway) start(ctx context.Context, capture Capture) (<-chan struct{}, error) {
	if g.permission != nil && !g.permission(ctx) {
		return nil, apperrors.ErrPermissionDenied
	}

	g.mu.Lock()
	if g.state != StateIdle {
		g.mu.Unlock()
		return nil, apperrors.ErrAlreadyRecording
	}
	g.state = StateRecording
	g.mu.Unlock()

	// Waits out any playback holding the device.
	release, err := g.modes.Acquire(ctx, audio.ModeCapture)
	if err != nil {
		g.setState(StateIdle)
		return nil, err
	}

	if err := capture.Start(ctx); err != nil {
		release()
		g.setState(StateIdle)
		return nil, apperrors.NewTranscriptionError(err)
	}

	cancelled := make(chan struct{})
	g.mu.Lock()
	g.capture = capture
	g.release = release
	g.cancelled = cancelled
	g.mu.Unlock()
	return cancelled, nil
}

// StopAndTranscribe ends the recording and returns its normalized text.
func (g *Gateway) StopAndTranscribe(ctx context.Context) (string, error) {
	rec, err := g.stop(ctx)
	return rec.Text, err
}

// Stop ends the recording and returns its text along with the audio.
func (g *Gateway) Stop(ctx context.Context) (Recording, error) {
	return g.stop(ctx)
}

func (g *Gateway) stop(ctx context.Context) (Recording, error) {
	g.mu.Lock()
	if g.state != StateRecording || g.capture == nil {
		g.mu.Unlock()
		return Recording{}, apperrors.ErrNoActiveRecording
	}
	capture, release := g.capture, g.release
	g.capture, g.release, g.cancelled = nil, nil, nil
	g.state = StateTranscribing
	g.mu.Unlock()

	defer g.setState(StateIdle)

	data, err := capture.Stop()
	release()
	if errors.Is(err, apperrors.ErrRecordingTooLarge) {
		return Recording{}, err
	}
	if err != nil {
		return Recording{}, apperrors.NewTranscriptionError(err)
	}
	if len(data) < g.minBytes {
		return Recording{}, apperrors.ErrEmptyRecording
	}

	text, err := g.svc.Transcribe(ctx, data, Options{Language: g.language})
	if err != nil {
		return Recording{Audio: data}, apperrors.NewTranscriptionError(err)
	}
	text = Normalize(text)
	if text == "" {
		return Recording{Audio: data}, apperrors.NewTranscriptionError(errors.New("empty transcription"))
	}
	return Recording{Text: text, Audio: data}, nil
}

// Cancel drops the recording in progress without transcribing it.
func (g *Gateway) Cancel() error {
	g.mu.Lock()
	if g.state != StateRecording || g.capture == nil {
		g.mu.Unlock()
		return apperrors.ErrNoActiveRecording
	}
	capture, release, cancelled := g.capture, g.release, g.cancelled
	g.capture, g.release, g.cancelled = nil, nil, nil
	g.state = StateIdle
	g.mu.Unlock()

	capture.Discard()
	release()
	close(cancelled)
	return nil
}

// RecordAndTranscribe records for window, or until the capture finishes on
// its own, then transcribes.
func (g *Gateway) RecordAndTranscribe(ctx context.Context, capture Capture, window time.Duration) (string, error) {
	rec, err := g.Record(ctx, capture, window)
	return rec.Text, err
}

// Record is RecordAndTranscribe that also hands back the audio.
func (g *Gateway) Record(ctx context.Context, capture Capture, window time.Duration) (Recording, error) {
	cancelled, err := g.start(ctx, capture)
	if err != nil {
		return Recording{}, err
	}

	timer := time.NewTimer(window)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-capture.Done():
	case <-cancelled:
		return Recording{}, apperrors.ErrRecordingCancelled
	case <-ctx.Done():
		if err := g.Cancel(); errors.Is(err, apperrors.ErrNoActiveRecording) {
			return Recording{}, apperrors.ErrRecordingCancelled
		}
		return Recording{}, ctx.Err()
	}

	rec, err := g.stop(ctx)
	if errors.Is(err, apperrors.ErrNoActiveRecording) {
		// Cancel won the race after the wait ended.
		return Recording{}, apperrors.ErrRecordingCancelled
	}
	return rec, err
}

func (g *Gateway) setState(s State) {
	g.mu.Lock()
	g.state = s
	g.mu.Unlock()
}
