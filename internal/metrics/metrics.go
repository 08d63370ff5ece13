// Package metrics holds the Prometheus collectors for the practice pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AttemptsTotal counts analysed attempts.
	// Labels: outcome (scored/degraded)
	AttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonics_attempts_total",
			Help: "Total number of analysed pronunciation attempts by outcome",
		},
		[]string{"outcome"},
	)

	// AttemptAccuracy is the distribution of attempt accuracies.
	AttemptAccuracy = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "phonics_attempt_accuracy",
			Help:    "Accuracy of scored attempts (0-100)",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	// FeedbackTotal counts AI feedback requests.
	// Labels: kind (attempt/remedy), result (ok/error/timeout/disabled)
	FeedbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonics_ai_feedback_total",
			Help: "Total number of AI feedback requests by result",
		},
		[]string{"kind", "result"},
	)

	// TranscriptionErrorsTotal counts recording and transcription failures.
	// Labels: kind (permission/busy/empty/capability/cancelled)
	TranscriptionErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonics_transcription_errors_total",
			Help: "Total number of recording or transcription failures by kind",
		},
		[]string{"kind"},
	)

	// TranscriptionDuration is the time spent recording and transcribing.
	TranscriptionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "phonics_transcription_duration_seconds",
			Help:    "Recording plus transcription duration in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 3, 5, 8, 13},
		},
	)

	// ArchiveJobsTotal counts attempt archive jobs.
	// Labels: status (enqueued/completed/retried/failed/dropped)
	ArchiveJobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonics_archive_jobs_total",
			Help: "Total number of attempt archive jobs by status",
		},
		[]string{"status"},
	)

	// PronunciationRequestsTotal counts reference audio lookups.
	// Labels: source (cache/synthesized/error)
	PronunciationRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "phonics_pronunciation_requests_total",
			Help: "Total number of pronunciation audio requests by source",
		},
		[]string{"source"},
	)
)

// RecordAttempt records one analysed attempt.
func RecordAttempt(accuracy int, degraded bool) {
	if degraded {
		AttemptsTotal.WithLabelValues("degraded").Inc()
		return
	}
	AttemptsTotal.WithLabelValues("scored").Inc()
	AttemptAccuracy.Observe(float64(accuracy))
}

// RecordFeedback records an AI request outcome. kind is attempt or remedy.
func RecordFeedback(kind, result string) {
	FeedbackTotal.WithLabelValues(kind, result).Inc()
}

// RecordTranscriptionError records a failed recording.
func RecordTranscriptionError(kind string) {
	TranscriptionErrorsTotal.WithLabelValues(kind).Inc()
}

// RecordTranscriptionDuration observes how long a recording took end to end.
func RecordTranscriptionDuration(d time.Duration) {
	TranscriptionDuration.Observe(d.Seconds())
}

// RecordArchiveJob records an archive job state change.
func RecordArchiveJob(status string) {
	ArchiveJobsTotal.WithLabelValues(status).Inc()
}

// RecordPronunciation records where reference audio came from.
func RecordPronunciation(source string) {
	PronunciationRequestsTotal.WithLabelValues(source).Inc()
}
