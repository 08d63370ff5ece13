package analysis

import (
	"regexp"
	"strconv"

	"phonics-coach/internal/scoring"
)

var percentPattern = regexp.MustCompile(`(\d+)%`)

// ExtractAccuracy returns the first "NN%" in text, clamped to 0..100.
func ExtractAccuracy(text string) (int, bool) {
	m := percentPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		// only digits matched, so the value overflowed int
		return scoring.MaxScore, true
	}
	return min(n, scoring.MaxScore), true
}
