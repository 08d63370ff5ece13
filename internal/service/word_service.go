package service

import (
	"context"

	apperrors "phonics-coach/internal/errors"
	"phonics-coach/internal/models"
	"phonics-coach/internal/words"
)

// Pronouncer produces reference audio for a word.
// *pronunciation.Service implements it.
type Pronouncer interface {
	Pronounce(ctx context.Context, word string) ([]byte, error)
}

// WordService exposes the word bank and its reference audio.
type WordService struct {
	pronouncer Pronouncer
}

// NewWordService creates a WordService. pronouncer may be nil, in which case
// pronunciation requests fail with ErrPronunciationFailed.
func NewWordService(pronouncer Pronouncer) *WordService {
	return &WordService{pronouncer: pronouncer}
}

// ListWords returns the letter cycle in order.
func (s *WordService) ListWords() []models.WordEntry {
	return words.All()
}

// GetWord returns the word practised for letter.
func (s *WordService) GetWord(letter string) (*models.WordEntry, error) {
	if !words.Has(letter) {
		return nil, apperrors.ErrUnknownLetter
	}
	entry := words.Lookup(letter)
	return &entry, nil
}

// ListCourses returns the phoneme-pair courses.
func (s *WordService) ListCourses() []models.Course {
	return words.Courses()
}

// Pronunciation returns WAV audio of the word for letter.
func (s *WordService) Pronunciation(ctx context.Context, letter string) ([]byte, error) {
	entry, err := s.GetWord(letter)
	if err != nil {
		return nil, err
	}
	if s.pronouncer == nil {
		return nil, apperrors.ErrPronunciationFailed
	}
	return s.pronouncer.Pronounce(ctx, entry.Word)
}
