// Package words holds the reference word bank: one word per practised letter,
// a couple of digraph words, and the phoneme-pair courses built from them.
package words

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"

	"phonics-coach/internal/models"

	"gopkg.in/yaml.v3"
)

// DefaultLetter is returned for any letter missing from the bank.
const DefaultLetter = "A"

//go:embed words.yaml
var bankYAML []byte

type bankFile struct {
	Letters  []models.WordEntry `yaml:"letters"`
	Digraphs []models.WordEntry `yaml:"digraphs"`
	Courses  []models.Course    `yaml:"courses"`
}

type bank struct {
	order   []models.WordEntry
	entries map[string]models.WordEntry
	index   map[string]int
	courses []models.Course
	byID    map[string]models.Course
}

var defaultBank = mustLoad(bytes.NewReader(bankYAML))

func mustLoad(r io.Reader) *bank {
	b, err := load(r)
	if err != nil {
		panic(err)
	}
	return b
}

func load(r io.Reader) (*bank, error) {
	var f bankFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("words: decode bank: %w", err)
	}
	if len(f.Letters) == 0 {
		return nil, fmt.Errorf("words: bank has no letters")
	}

	b := &bank{
		order:   f.Letters,
		entries: make(map[string]models.WordEntry, len(f.Letters)+len(f.Digraphs)),
		index:   make(map[string]int, len(f.Letters)),
		courses: f.Courses,
		byID:    make(map[string]models.Course, len(f.Courses)),
	}
	for i, e := range f.Letters {
		b.entries[e.Letter] = e
		b.index[e.Letter] = i
	}
	for _, e := range f.Digraphs {
		b.entries[e.Letter] = e
	}
	for _, e := range b.entries {
		if e.Phoneme == "" {
			return nil, fmt.Errorf("words: %q has no phoneme", e.Letter)
		}
	}
	if _, ok := b.entries[DefaultLetter]; !ok {
		return nil, fmt.Errorf("words: default letter %q missing", DefaultLetter)
	}
	for _, c := range f.Courses {
		for _, w := range c.Words {
			if _, ok := b.entries[w]; !ok {
				return nil, fmt.Errorf("words: course %q references unknown word %q", c.ID, w)
			}
		}
		b.byID[c.ID] = c
	}
	return b, nil
}

func key(letter string) string {
	return strings.ToUpper(strings.TrimSpace(letter))
}

// Lookup returns the word for letter, case-insensitively. Unknown letters
// fall back to DefaultLetter.
func Lookup(letter string) models.WordEntry {
	if e, ok := defaultBank.entries[key(letter)]; ok {
		return e
	}
	return defaultBank.entries[DefaultLetter]
}

// Has reports whether letter is in the bank.
func Has(letter string) bool {
	_, ok := defaultBank.entries[key(letter)]
	return ok
}

// All returns the letter cycle in order.
func All() []models.WordEntry {
	out := make([]models.WordEntry, len(defaultBank.order))
	copy(out, defaultBank.order)
	return out
}

// Next returns the letter after letter in the cycle, wrapping at the end.
// Letters outside the cycle start it from the beginning.
func Next(letter string) string {
	i, ok := defaultBank.index[key(letter)]
	if !ok {
		return defaultBank.order[0].Letter
	}
	return defaultBank.order[(i+1)%len(defaultBank.order)].Letter
}

// Previous returns the letter before letter in the cycle, wrapping at the start.
func Previous(letter string) string {
	n := len(defaultBank.order)
	i, ok := defaultBank.index[key(letter)]
	if !ok {
		return defaultBank.order[n-1].Letter
	}
	return defaultBank.order[(i-1+n)%n].Letter
}

// Courses returns the phoneme-pair courses.
func Courses() []models.Course {
	out := make([]models.Course, len(defaultBank.courses))
	copy(out, defaultBank.courses)
	return out
}

// CourseByID looks a course up by its id, case-insensitively.
func CourseByID(id string) (models.Course, bool) {
	c, ok := defaultBank.byID[strings.ToLower(strings.TrimSpace(id))]
	return c, ok
}
