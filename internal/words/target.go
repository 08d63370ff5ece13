package words

import (
	"strings"

	"phonics-coach/internal/models"
)

// Target is what a practice session drills: a single letter or a course.
// Phonemes are the sounds of its words in slash notation ("/v/").
type Target struct {
	ID       string
	Phonemes []string
	Words    []models.WordEntry
}

// Resolve turns a letter ("b") or course id ("V-B") into a Target.
// Only letters in the cycle and known courses resolve.
func Resolve(target string) (Target, bool) {
	k := key(target)
	if _, ok := defaultBank.index[k]; ok {
		e := defaultBank.entries[k]
		return Target{
			ID:       k,
			Phonemes: []string{e.Phoneme},
			Words:    []models.WordEntry{e},
		}, true
	}

	c, ok := CourseByID(target)
	if !ok {
		return Target{}, false
	}
	entries := make([]models.WordEntry, len(c.Words))
	phonemes := make([]string, len(c.Words))
	for i, w := range c.Words {
		entries[i] = defaultBank.entries[w]
		phonemes[i] = entries[i].Phoneme
	}
	return Target{
		ID:       c.ID,
		Phonemes: phonemes,
		Words:    entries,
	}, true
}

// IsValidTarget reports whether target resolves.
func IsValidTarget(target string) bool {
	_, ok := Resolve(target)
	return ok
}

// WordFor returns the word expected for the n-th attempt (zero-based).
// Course targets alternate between their words.
func (t Target) WordFor(n int) models.WordEntry {
	if len(t.Words) == 0 {
		return Lookup(DefaultLetter)
	}
	if n < 0 {
		n = 0
	}
	return t.Words[n%len(t.Words)]
}

// IsCourse reports whether the target is a phoneme-pair course.
func (t Target) IsCourse() bool {
	return strings.Contains(t.ID, "-")
}
