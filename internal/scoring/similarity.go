// Package scoring computes pronunciation accuracy between what a child said
// and the word they were asked to say.
package scoring

import (
	"math"
	"strings"
)

// MaxScore is awarded for an exact match.
const MaxScore = 100

// Normalize lower-cases and trims a transcription or expected word.
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Score returns an accuracy in [0, 100] for observed against expected.
//
// Both inputs are normalized first. An empty input on either side scores 0,
// since no attempt was made. An exact match scores 100. Otherwise the score is
// the Levenshtein distance d scaled by the longer input:
//
//	round(max(0, (maxLen-d)/maxLen*100))
func Score(observed, expected string) int {
	obs := []rune(Normalize(observed))
	exp := []rune(Normalize(expected))

	if len(obs) == 0 || len(exp) == 0 {
		return 0
	}
	if string(obs) == string(exp) {
		return MaxScore
	}

	maxLen := max(len(obs), len(exp))
	d := distance(exp, obs)

	ratio := float64(maxLen-d) / float64(maxLen) * MaxScore
	return int(math.Round(math.Max(0, ratio)))
}

// Distance returns the Levenshtein edit distance between the normalized forms
// of a and b. Insertions, deletions and substitutions each cost 1.
func Distance(a, b string) int {
	return distance([]rune(Normalize(a)), []rune(Normalize(b)))
}

// distance fills a (len(expected)+1) x (len(observed)+1) matrix where
// m[i][j] is the distance between expected[:i] and observed[:j].
func distance(expected, observed []rune) int {
	m := make([][]int, len(expected)+1)
	for i := range m {
		m[i] = make([]int, len(observed)+1)
		m[i][0] = i
	}
	for j := range m[0] {
		m[0][j] = j
	}

	for i := 1; i <= len(expected); i++ {
		for j := 1; j <= len(observed); j++ {
			cost := 1
			if expected[i-1] == observed[j-1] {
				cost = 0
			}
			m[i][j] = min(
				m[i-1][j]+1,      // deletion
				m[i][j-1]+1,      // insertion
				m[i-1][j-1]+cost, // substitution
			)
		}
	}

	return m[len(expected)][len(observed)]
}
