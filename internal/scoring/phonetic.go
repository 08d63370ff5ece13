package scoring

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// DefaultSoundsAlikeThreshold is the Jaro-Winkler similarity above which two
// words are treated as sounding alike even without a shared phonetic code.
const DefaultSoundsAlikeThreshold = 0.88

// PhoneticMatch describes how close an attempt sounds to the expected word.
// It is informational and never changes an accuracy score.
type PhoneticMatch struct {
	// SoundsAlike is true when the words share a Double Metaphone code or
	// their Jaro-Winkler similarity reaches the threshold.
	SoundsAlike bool
	// SharedCode is true when at least one Double Metaphone code matches.
	SharedCode bool
	// Similarity is the Jaro-Winkler similarity in [0, 1].
	Similarity float64
}

// Phonetic compares observed and expected by sound rather than spelling.
// "bal" and "ball" share the code "PL"; "wiolin" and "violin" are close by Jaro-Winkler.
func Phonetic(observed, expected string) PhoneticMatch {
	obs := Normalize(observed)
	exp := Normalize(expected)
	if obs == "" || exp == "" {
		return PhoneticMatch{}
	}

	shared := codesOverlap(codesFor(obs), codesFor(exp))
	similarity := matchr.JaroWinkler(obs, exp, false)

	return PhoneticMatch{
		SoundsAlike: shared || similarity >= DefaultSoundsAlikeThreshold,
		SharedCode:  shared,
		Similarity:  similarity,
	}
}

// codesFor returns the non-empty Double Metaphone codes of every token in s.
func codesFor(s string) map[string]struct{} {
	tokens := strings.Fields(s)
	codes := make(map[string]struct{}, len(tokens)*2)
	for _, t := range tokens {
		primary, secondary := matchr.DoubleMetaphone(t)
		if primary != "" {
			codes[primary] = struct{}{}
		}
		if secondary != "" {
			codes[secondary] = struct{}{}
		}
	}
	return codes
}

func codesOverlap(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for code := range a {
		if _, ok := b[code]; ok {
			return true
		}
	}
	return false
}
