package analysis

import (
	"context"
	"errors"

	"phonics-coach/internal/feedback"
	"phonics-coach/internal/llm"
	"phonics-coach/internal/metrics"
	"phonics-coach/internal/models"
	"phonics-coach/pkg/logger"
)

// Remedy asks for practice tips given the session average and its latest
// accuracies, falling back to canned tips by band.
func (o *Orchestrator) Remedy(ctx context.Context, phonemes []string, average float64, accuracies []int) (string, models.FeedbackSource) {
	prompt := feedback.RemedyPrompt(phonemes, average, feedback.Recent(accuracies))
	res := llm.Call(ctx, o.generator, prompt, feedback.RemedyOptions, o.cfg.FeedbackTimeout)
	metrics.RecordFeedback("remedy", resultLabel(res))

	if res.OK() {
		return res.Text, models.FeedbackFromModel
	}
	if !errors.Is(res.Err, llm.ErrDisabled) {
		logger.L().Warn("ai_remedy_failed", "average", average, "error", res.Err)
	}
	return feedback.FallbackRemedy(average), models.FeedbackFromFallback
}
