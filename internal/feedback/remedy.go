package feedback

// RecentWindow is how many trailing attempts a remedy prompt quotes.
const RecentWindow = 3

const (
	lowRemedy = "Great effort! Here's how to improve:\n" +
		"1. Practice saying the sounds slowly, one at a time\n" +
		"2. Watch your mouth in a mirror while speaking\n" +
		"3. Listen to the correct pronunciation and repeat 3 times\n" +
		"Keep practicing - you're doing great! 🌟"

	mediumRemedy = "You're doing well! To get even better:\n" +
		"1. Focus on the difference between the two sounds\n" +
		"2. Practice with fun tongue twisters\n" +
		"3. Record yourself and listen back\n" +
		"You're on the right track! 💪"

	highRemedy = "Excellent work! To maintain this:\n" +
		"1. Keep practicing daily for 5 minutes\n" +
		"2. Try harder words with these sounds\n" +
		"3. Help others learn these phonemes\n" +
		"Keep up the amazing work! 🎉"
)

// FallbackRemedy returns canned tips used when no model answer is available.
func FallbackRemedy(average float64) string {
	switch {
	case average < 60:
		return lowRemedy
	case average < 80:
		return mediumRemedy
	default:
		return highRemedy
	}
}

// Recent returns at most the last RecentWindow accuracies.
func Recent(accuracies []int) []int {
	if len(accuracies) <= RecentWindow {
		return accuracies
	}
	return accuracies[len(accuracies)-RecentWindow:]
}
