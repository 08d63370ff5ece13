package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DegradedTranscription marks an attempt whose transcription failed.
const DegradedTranscription = "error"

// FeedbackSource tells where an attempt's feedback text came from.
type FeedbackSource string

const (
	FeedbackFromModel    FeedbackSource = "model"
	FeedbackFromRules    FeedbackSource = "rules"
	FeedbackFromFallback FeedbackSource = "fallback"
)

// Attempt is one recorded utterance and its scored outcome. It is immutable once built.
type Attempt struct {
	ID             string         `json:"id" example:"0b6f3c1e-8f0a-4a53-9d59-0d0a8c1f8d61"`
	Transcription  string         `json:"transcription" example:"bal"`
	ExpectedWord   string         `json:"expectedWord" example:"Ball"`
	TargetPhonemes []string       `json:"targetPhonemes" example:"/b/"`
	Accuracy       int            `json:"accuracy" example:"75"`
	Feedback       string         `json:"feedback"`
	FeedbackSource FeedbackSource `json:"feedbackSource" example:"rules"`
	Tier           string         `json:"tier" example:"good"`
	SoundsLike     bool           `json:"soundsLike"`
	Degraded       bool           `json:"degraded"`
	Timestamp      time.Time      `json:"timestamp" example:"2024-01-15T09:30:00Z"`

	// Audio is the recorded WAV, kept only until the attempt is archived.
	Audio []byte `json:"-"`
}

// Session accumulates attempts for one practice target (a letter or a course).
type Session struct {
	ID              string    `json:"id" example:"5e0c5b8e-1b7c-4f0e-9a8e-2d5a4c3b2a10"`
	UserID          string    `json:"userId" example:"507f1f77bcf86cd799439011"`
	Target          string    `json:"target" example:"B"`
	// Generation counts target changes. Attempts started under an older
	// generation are dropped.
	Generation      int       `json:"generation" example:"0"`
	Attempts        []Attempt `json:"attempts"`
	AverageAccuracy float64   `json:"averageAccuracy" example:"80"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// AttemptRecord is the archived form of an attempt kept for progress tracking.
type AttemptRecord struct {
	ID             primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	AttemptID      string             `json:"attemptId" bson:"attemptId"`
	UserID         primitive.ObjectID `json:"userId" bson:"userId"`
	SessionID      string             `json:"sessionId" bson:"sessionId"`
	Target         string             `json:"target" bson:"target"`
	Transcription  string             `json:"transcription" bson:"transcription"`
	ExpectedWord   string             `json:"expectedWord" bson:"expectedWord"`
	TargetPhonemes []string           `json:"targetPhonemes" bson:"targetPhonemes"`
	Accuracy       int                `json:"accuracy" bson:"accuracy"`
	Feedback       string             `json:"feedback" bson:"feedback"`
	Degraded       bool               `json:"degraded" bson:"degraded"`
	AudioKey       string             `json:"-" bson:"audioKey,omitempty"`
	AudioURL       string             `json:"audioUrl,omitempty" bson:"-"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
}

// AttemptListResponse is a page of archived attempts.
type AttemptListResponse struct {
	Attempts []AttemptRecord `json:"attempts"`
	Total    int64           `json:"total" example:"42"`
	Page     int             `json:"page" example:"1"`
	Limit    int             `json:"limit" example:"20"`
}

// TargetStats summarises archived attempts for one practice target.
// Degraded attempts are counted but excluded from the accuracy figures.
type TargetStats struct {
	Target           string  `json:"target" bson:"_id" example:"B"`
	Attempts         int     `json:"attempts" bson:"attempts" example:"12"`
	DegradedAttempts int     `json:"degradedAttempts" bson:"degradedAttempts" example:"1"`
	AverageAccuracy  float64 `json:"averageAccuracy" bson:"averageAccuracy" example:"78.5"`
	BestAccuracy     int     `json:"bestAccuracy" bson:"bestAccuracy" example:"100"`
}

// CreateSessionRequest starts a practice session.
type CreateSessionRequest struct {
	Target string `json:"target" binding:"required,target" example:"B"`
}

// ChangeTargetRequest switches a session to another letter or course.
type ChangeTargetRequest struct {
	Target string `json:"target" binding:"required,target" example:"v-b"`
}

// TranscriptionAttemptRequest submits text transcribed on the client.
type TranscriptionAttemptRequest struct {
	Transcription string `json:"transcription" binding:"required,max=200" example:"bal"`
}

// AttemptResponse is returned after an attempt has been folded into its session.
type AttemptResponse struct {
	Attempt Attempt `json:"attempt"`
	Session Session `json:"session"`
}

// RemedyResponse carries improvement tips for a session.
type RemedyResponse struct {
	Target          string         `json:"target" example:"v-b"`
	AverageAccuracy float64        `json:"averageAccuracy" example:"64.5"`
	Remedy          string         `json:"remedy"`
	Source          FeedbackSource `json:"source" example:"fallback"`
}
