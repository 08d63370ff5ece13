// Package llm provides the generative text capability used for AI feedback
// and remedies. Callers treat every call as best-effort.
package llm

import (
	"context"
	"errors"
	"strings"
	"time"
)

//go:generate mockgen -destination=mocks/mock_generator.go -package=mocks phonics-coach/internal/llm Generator

var (
	// ErrDisabled is reported when no generator is configured.
	ErrDisabled = errors.New("llm: generator not configured")
	// ErrEmptyResponse is reported when the model returns only whitespace.
	ErrEmptyResponse = errors.New("llm: empty response")
)

// Options tune a single generation request.
type Options struct {
	MaxTokens   int
	Temperature float64
}

// Generator turns a prompt into free text.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (string, error)
}

// Result is the outcome of a best-effort generation.
type Result struct {
	Text     string
	Err      error
	Duration time.Duration
}

// OK reports whether the generation produced usable text.
func (r Result) OK() bool {
	return r.Err == nil && r.Text != ""
}

// Call runs g with a deadline and folds every failure into the Result.
// A nil generator yields ErrDisabled without blocking.
func Call(ctx context.Context, g Generator, prompt string, opts Options, timeout time.Duration) Result {
	if g == nil {
		return Result{Err: ErrDisabled}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	start := time.Now()
	text, err := g.Generate(ctx, prompt, opts)
	elapsed := time.Since(start)
	if err != nil {
		return Result{Err: err, Duration: elapsed}
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return Result{Err: ErrEmptyResponse, Duration: elapsed}
	}
	return Result{Text: text, Duration: elapsed}
}
