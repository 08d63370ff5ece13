// Package feedback turns accuracy scores into child-friendly feedback and
// builds the prompts for model-written feedback and remedies.
package feedback

import "fmt"

// Tier is one of four feedback buckets keyed by accuracy.
type Tier string

const (
	TierExcellent        Tier = "excellent"
	TierGood             Tier = "good"
	TierNeedsWork        Tier = "needs_work"
	TierPracticeTogether Tier = "practice_together"
)

// Lower bounds of each tier, inclusive.
const (
	ExcellentThreshold = 90
	GoodThreshold      = 70
	NeedsWorkThreshold = 50
)

// TierFor maps an accuracy to its tier.
func TierFor(accuracy int) Tier {
	switch {
	case accuracy >= ExcellentThreshold:
		return TierExcellent
	case accuracy >= GoodThreshold:
		return TierGood
	case accuracy >= NeedsWorkThreshold:
		return TierNeedsWork
	default:
		return TierPracticeTogether
	}
}

// Synthesize returns the rule-based feedback for an attempt.
func Synthesize(accuracy int, observed, expected string) string {
	switch TierFor(accuracy) {
	case TierExcellent:
		return fmt.Sprintf("🎉 Excellent! You said %q which matches %q perfectly! Your pronunciation is clear and accurate. Keep up the great work!", observed, expected)
	case TierGood:
		return fmt.Sprintf("👍 Good try! You said %q which is close to %q. Practice focusing on each syllable slowly. You're making progress!", observed, expected)
	case TierNeedsWork:
		return fmt.Sprintf("💪 You're getting there! Your attempt %q needs work on %q. Try breaking it into parts: Say each syllable separately, then combine them.", observed, expected)
	default:
		return fmt.Sprintf("🎯 Let's practice %q together! Listen to the example carefully, watch the mouth movements, and repeat slowly. Take your time!", expected)
	}
}

// RecordingFailed is shown when an attempt could not be transcribed.
const RecordingFailed = "Recording failed. Please try again."
