// Package analysis runs one pronunciation attempt end to end: record,
// transcribe, score, and write feedback, degrading instead of failing when
// the transcription capability is down.
package analysis

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	apperrors "phonics-coach/internal/errors"
	"phonics-coach/internal/feedback"
	"phonics-coach/internal/llm"
	"phonics-coach/internal/metrics"
	"phonics-coach/internal/models"
	"phonics-coach/internal/scoring"
	"phonics-coach/internal/transcription"
	"phonics-coach/pkg/logger"

	"github.com/google/uuid"
)

const (
	DefaultRecordingWindow = 3 * time.Second
	DefaultFeedbackTimeout = 8 * time.Second

	// Degraded attempts draw their accuracy from [DegradedMin, DegradedMax].
	DegradedMin = 60
	DegradedMax = 100
)

// Recorder records one utterance and transcribes it. *transcription.Gateway
// implements it.
type Recorder interface {
	Record(ctx context.Context, capture transcription.Capture, window time.Duration) (transcription.Recording, error)
}

// Config tunes the orchestrator. Zero values pick the defaults.
type Config struct {
	RecordingWindow time.Duration
	FeedbackTimeout time.Duration
}

// Orchestrator analyses attempts. It holds no per-attempt state.
type Orchestrator struct {
	recorder  Recorder
	generator llm.Generator
	cfg       Config

	randIntN func(n int) int
	now      func() time.Time
}

// NewOrchestrator creates an orchestrator. generator may be nil, in which
// case feedback always comes from the rule-based tiers.
func NewOrchestrator(recorder Recorder, generator llm.Generator, cfg Config) *Orchestrator {
	if cfg.RecordingWindow <= 0 {
		cfg.RecordingWindow = DefaultRecordingWindow
	}
	if cfg.FeedbackTimeout <= 0 {
		cfg.FeedbackTimeout = DefaultFeedbackTimeout
	}
	return &Orchestrator{
		recorder:  recorder,
		generator: generator,
		cfg:       cfg,
		randIntN:  rand.IntN,
		now:       time.Now,
	}
}

// WithRecorder returns a copy bound to r. The server keeps one recorder per
// practice session and shares everything else.
func (o *Orchestrator) WithRecorder(r Recorder) *Orchestrator {
	cp := *o
	cp.recorder = r
	return &cp
}

// AnalyzeAttempt records from capture and analyses what was said.
// Permission, busy, empty and cancelled recordings are returned as errors;
// a failed transcription yields a degraded attempt instead.
func (o *Orchestrator) AnalyzeAttempt(ctx context.Context, capture transcription.Capture, expectedWord string, phonemes []string) (*models.Attempt, error) {
	if o.recorder == nil {
		return nil, errors.New("analysis: no recorder configured")
	}

	start := o.now()
	rec, err := o.recorder.Record(ctx, capture, o.cfg.RecordingWindow)
	metrics.RecordTranscriptionDuration(o.now().Sub(start))

	if err != nil {
		var te *apperrors.TranscriptionError
		if !errors.As(err, &te) {
			metrics.RecordTranscriptionError(errorKind(err))
			return nil, err
		}

		metrics.RecordTranscriptionError("capability")
		logger.L().Warn("transcription_failed", "expected", expectedWord, "error", err)

		attempt := o.degraded(expectedWord, phonemes)
		attempt.Audio = rec.Audio
		metrics.RecordAttempt(attempt.Accuracy, true)
		return attempt, nil
	}

	attempt := o.AnalyzeTranscription(ctx, rec.Text, expectedWord, phonemes)
	attempt.Audio = rec.Audio
	return attempt, nil
}

// AnalyzeTranscription scores text already transcribed by the client.
func (o *Orchestrator) AnalyzeTranscription(ctx context.Context, text, expectedWord string, phonemes []string) *models.Attempt {
	observed := transcription.Normalize(text)
	accuracy := scoring.Score(observed, expectedWord)

	message := feedback.Synthesize(accuracy, observed, expectedWord)
	source := models.FeedbackFromRules

	prompt := feedback.AttemptPrompt(expectedWord, observed, phonemes)
	res := llm.Call(ctx, o.generator, prompt, feedback.AttemptOptions, o.cfg.FeedbackTimeout)
	metrics.RecordFeedback("attempt", resultLabel(res))

	if res.OK() {
		message = res.Text
		source = models.FeedbackFromModel
		if pct, ok := ExtractAccuracy(res.Text); ok {
			accuracy = pct
		}
	} else if !errors.Is(res.Err, llm.ErrDisabled) {
		logger.L().Warn("ai_feedback_failed",
			"expected", expectedWord,
			"duration_ms", res.Duration.Milliseconds(),
			"error", res.Err,
		)
	}

	attempt := &models.Attempt{
		ID:             uuid.NewString(),
		Transcription:  observed,
		ExpectedWord:   expectedWord,
		TargetPhonemes: phonemes,
		Accuracy:       accuracy,
		Feedback:       message,
		FeedbackSource: source,
		Tier:           string(feedback.TierFor(accuracy)),
		SoundsLike:     scoring.Phonetic(observed, expectedWord).SoundsAlike,
		Timestamp:      o.now().UTC(),
	}
	metrics.RecordAttempt(attempt.Accuracy, false)
	return attempt
}

func (o *Orchestrator) degraded(expectedWord string, phonemes []string) *models.Attempt {
	accuracy := DegradedMin + o.randIntN(DegradedMax-DegradedMin+1)
	return &models.Attempt{
		ID:             uuid.NewString(),
		Transcription:  models.DegradedTranscription,
		ExpectedWord:   expectedWord,
		TargetPhonemes: phonemes,
		Accuracy:       accuracy,
		Feedback:       feedback.RecordingFailed,
		FeedbackSource: models.FeedbackFromFallback,
		Tier:           string(feedback.TierFor(accuracy)),
		Degraded:       true,
		Timestamp:      o.now().UTC(),
	}
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrPermissionDenied):
		return "permission"
	case errors.Is(err, apperrors.ErrAlreadyRecording):
		return "busy"
	case errors.Is(err, apperrors.ErrEmptyRecording):
		return "empty"
	case errors.Is(err, apperrors.ErrRecordingTooLarge):
		return "too_large"
	case errors.Is(err, apperrors.ErrRecordingCancelled), errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "other"
	}
}

func resultLabel(res llm.Result) string {
	switch {
	case res.OK():
		return "ok"
	case errors.Is(res.Err, llm.ErrDisabled):
		return "disabled"
	case errors.Is(res.Err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(res.Err, llm.ErrEmptyResponse):
		return "empty"
	default:
		return "error"
	}
}
