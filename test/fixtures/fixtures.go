// Package fixtures provides test data builders for unit and integration tests.
package fixtures

import (
	"fmt"
	"time"

	"phonics-coach/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ===== User Fixtures =====

// UserBuilder provides fluent API for building test parent accounts.
type UserBuilder struct {
	user models.User
}

// NewUser creates a new UserBuilder with sensible defaults.
func NewUser() *UserBuilder {
	return &UserBuilder{
		user: models.User{
			ID:               primitive.NewObjectID(),
			Name:             "Test Parent",
			Email:            fmt.Sprintf("test-%s@example.com", primitive.NewObjectID().Hex()[:8]),
			Password:         "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy", // "password123" hashed
			ChildAge:         6,
			Region:           "US",
			RecordingConsent: true,
			ProfileCompleted: true,
			CreatedAt:        time.Now(),
			UpdatedAt:        time.Now(),
		},
	}
}

func (b *UserBuilder) WithID(id primitive.ObjectID) *UserBuilder {
	b.user.ID = id
	return b
}

func (b *UserBuilder) WithName(name string) *UserBuilder {
	b.user.Name = name
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

func (b *UserBuilder) WithPassword(password string) *UserBuilder {
	b.user.Password = password
	return b
}

func (b *UserBuilder) WithChild(age int, problem string) *UserBuilder {
	b.user.ChildAge = age
	b.user.ProblemDescription = problem
	return b
}

// WithoutConsent builds a parent who has not allowed recordings.
func (b *UserBuilder) WithoutConsent() *UserBuilder {
	b.user.RecordingConsent = false
	return b
}

func (b *UserBuilder) Build() models.User {
	return b.user
}

func (b *UserBuilder) BuildPtr() *models.User {
	return &b.user
}

// ===== Attempt Fixtures =====

// AttemptBuilder builds scored attempts as the orchestrator returns them.
type AttemptBuilder struct {
	attempt models.Attempt
}

// NewAttempt creates a perfect attempt at "Ball".
func NewAttempt() *AttemptBuilder {
	return &AttemptBuilder{
		attempt: models.Attempt{
			ID:             uuid.NewString(),
			Transcription:  "ball",
			ExpectedWord:   "Ball",
			TargetPhonemes: []string{"/b/"},
			Accuracy:       100,
			Feedback:       "Excellent! You said it perfectly!",
			FeedbackSource: models.FeedbackFromRules,
			Tier:           "excellent",
			Timestamp:      time.Now().UTC(),
		},
	}
}

func (b *AttemptBuilder) WithWord(word string, phonemes ...string) *AttemptBuilder {
	b.attempt.ExpectedWord = word
	b.attempt.TargetPhonemes = phonemes
	return b
}

func (b *AttemptBuilder) WithTranscription(text string, accuracy int) *AttemptBuilder {
	b.attempt.Transcription = text
	b.attempt.Accuracy = accuracy
	return b
}

// Degraded marks the attempt as scored without a transcription.
func (b *AttemptBuilder) Degraded(accuracy int) *AttemptBuilder {
	b.attempt.Transcription = models.DegradedTranscription
	b.attempt.Accuracy = accuracy
	b.attempt.Degraded = true
	return b
}

func (b *AttemptBuilder) WithAudio(wav []byte) *AttemptBuilder {
	b.attempt.Audio = wav
	return b
}

func (b *AttemptBuilder) At(t time.Time) *AttemptBuilder {
	b.attempt.Timestamp = t
	return b
}

func (b *AttemptBuilder) Build() models.Attempt {
	return b.attempt
}

func (b *AttemptBuilder) BuildPtr() *models.Attempt {
	return &b.attempt
}

// ===== AttemptRecord Fixtures =====

// AttemptRecordBuilder builds archived attempts.
type AttemptRecordBuilder struct {
	record models.AttemptRecord
}

// NewAttemptRecord creates an archived attempt at "Ball" for a fresh user.
func NewAttemptRecord() *AttemptRecordBuilder {
	return &AttemptRecordBuilder{
		record: models.AttemptRecord{
			AttemptID:      uuid.NewString(),
			UserID:         primitive.NewObjectID(),
			SessionID:      uuid.NewString(),
			Target:         "B",
			Transcription:  "ball",
			ExpectedWord:   "Ball",
			TargetPhonemes: []string{"/b/"},
			Accuracy:       100,
			Feedback:       "Excellent! You said it perfectly!",
			CreatedAt:      time.Now().UTC(),
		},
	}
}

func (b *AttemptRecordBuilder) WithUserID(userID primitive.ObjectID) *AttemptRecordBuilder {
	b.record.UserID = userID
	return b
}

func (b *AttemptRecordBuilder) WithSessionID(id string) *AttemptRecordBuilder {
	b.record.SessionID = id
	return b
}

func (b *AttemptRecordBuilder) WithTarget(target, word string) *AttemptRecordBuilder {
	b.record.Target = target
	b.record.ExpectedWord = word
	return b
}

func (b *AttemptRecordBuilder) WithAccuracy(accuracy int) *AttemptRecordBuilder {
	b.record.Accuracy = accuracy
	return b
}

func (b *AttemptRecordBuilder) Degraded() *AttemptRecordBuilder {
	b.record.Transcription = models.DegradedTranscription
	b.record.Degraded = true
	return b
}

func (b *AttemptRecordBuilder) WithAudioKey(key string) *AttemptRecordBuilder {
	b.record.AudioKey = key
	return b
}

func (b *AttemptRecordBuilder) At(t time.Time) *AttemptRecordBuilder {
	b.record.CreatedAt = t
	return b
}

func (b *AttemptRecordBuilder) Build() models.AttemptRecord {
	return b.record
}

func (b *AttemptRecordBuilder) BuildPtr() *models.AttemptRecord {
	return &b.record
}
