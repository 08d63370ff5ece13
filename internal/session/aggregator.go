// Package session aggregates the attempts of one practice session and keeps
// live sessions in Redis.
package session

import (
	"math"
	"time"

	"phonics-coach/internal/models"
)

// New starts an empty session for target.
func New(id, userID, target string, now time.Time) models.Session {
	return models.Session{
		ID:        id,
		UserID:    userID,
		Target:    target,
		Attempts:  []models.Attempt{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RecordAttempt returns s with a appended and the average recomputed.
// Degraded attempts count toward the average.
func RecordAttempt(s models.Session, a models.Attempt) models.Session {
	a.Audio = nil

	attempts := make([]models.Attempt, len(s.Attempts), len(s.Attempts)+1)
	copy(attempts, s.Attempts)
	s.Attempts = append(attempts, a)
	s.AverageAccuracy = Average(s)
	if a.Timestamp.After(s.UpdatedAt) {
		s.UpdatedAt = a.Timestamp
	}
	return s
}

// Average is the mean accuracy rounded to two decimals, 0 when empty.
func Average(s models.Session) float64 {
	return mean(s.Attempts, func(models.Attempt) bool { return true })
}

// GenuineAverage is Average over attempts that were really transcribed.
func GenuineAverage(s models.Session) float64 {
	return mean(s.Attempts, func(a models.Attempt) bool { return !a.Degraded })
}

// Reset clears the attempts, switches to target and starts a new generation.
func Reset(s models.Session, target string, now time.Time) models.Session {
	s.Target = target
	s.Generation++
	s.Attempts = []models.Attempt{}
	s.AverageAccuracy = 0
	s.UpdatedAt = now
	return s
}

// Accuracies lists the attempt accuracies in order.
func Accuracies(s models.Session) []int {
	out := make([]int, len(s.Attempts))
	for i, a := range s.Attempts {
		out[i] = a.Accuracy
	}
	return out
}

func mean(attempts []models.Attempt, keep func(models.Attempt) bool) float64 {
	var sum, n int
	for _, a := range attempts {
		if keep(a) {
			sum += a.Accuracy
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return round2(float64(sum) / float64(n))
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
