package feedback

import (
	"fmt"
	"strconv"
	"strings"

	"phonics-coach/internal/llm"
)

var (
	// AttemptOptions tunes the per-attempt analysis request.
	AttemptOptions = llm.Options{MaxTokens: 150, Temperature: 0.3}
	// RemedyOptions tunes the end-of-session remedy request.
	RemedyOptions = llm.Options{MaxTokens: 200, Temperature: 0.7}
)

// AttemptPrompt asks the model to grade one attempt.
func AttemptPrompt(expected, observed string, phonemes []string) string {
	var b strings.Builder
	b.WriteString("You are a speech therapist analyzing a child's pronunciation.\n\n")
	fmt.Fprintf(&b, "Expected word: \"%s\"\n", expected)
	fmt.Fprintf(&b, "What they said: \"%s\"\n", observed)
	fmt.Fprintf(&b, "Target phonemes to evaluate: %s\n\n", strings.Join(phonemes, ", "))
	b.WriteString("Provide:\n")
	b.WriteString("1. Accuracy percentage (0-100)\n")
	b.WriteString("2. Specific phoneme errors detected\n")
	b.WriteString("3. One simple tip for improvement\n\n")
	b.WriteString("Keep response under 50 words, child-friendly.")
	return b.String()
}

// RemedyPrompt asks the model for practice tips given the session so far.
// recent holds the latest accuracies, oldest first.
func RemedyPrompt(phonemes []string, average float64, recent []int) string {
	var b strings.Builder

	switch len(phonemes) {
	case 0:
		b.WriteString("You are a speech therapist helping a child practice pronunciation.\n")
	case 1:
		fmt.Fprintf(&b, "You are a speech therapist helping a child practice the phoneme \"%s\".\n", phonemes[0])
	default:
		quoted := make([]string, len(phonemes))
		for i, p := range phonemes {
			quoted[i] = strconv.Quote(p)
		}
		fmt.Fprintf(&b, "You are a speech therapist helping a child practice phonemes %s and %s.\n",
			strings.Join(quoted[:len(quoted)-1], ", "), quoted[len(quoted)-1])
	}

	fmt.Fprintf(&b, "Their average accuracy is %.2f%%.\n", average)

	if len(recent) == 0 {
		b.WriteString("Recent attempts: none yet\n\n")
	} else {
		parts := make([]string, len(recent))
		for i, r := range recent {
			parts[i] = strconv.Itoa(r) + "%"
		}
		fmt.Fprintf(&b, "Recent attempts: %s\n\n", strings.Join(parts, ", "))
	}

	b.WriteString("Provide 3 simple, encouraging tips to improve their pronunciation. Keep it child-friendly and under 100 words.")
	return b.String()
}
