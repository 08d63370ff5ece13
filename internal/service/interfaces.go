// Package service contains business logic for the application.
package service

import (
	"context"
	"io"

	"phonics-coach/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthServicer defines the interface for authentication operations.
type AuthServicer interface {
	Register(ctx context.Context, req *models.CreateUserRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	Refresh(ctx context.Context, req *models.RefreshRequest) (*models.RefreshResponse, error)
	Logout(ctx context.Context, req *models.LogoutRequest) error
	LogoutAll(ctx context.Context, userID primitive.ObjectID) error
}

// UserServicer defines the interface for profile operations.
type UserServicer interface {
	GetMe(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, req *models.UpdateUserRequest) (*models.User, error)
	DeleteAccount(ctx context.Context, id primitive.ObjectID) error
}

// WordServicer defines the interface for word bank operations.
type WordServicer interface {
	ListWords() []models.WordEntry
	GetWord(letter string) (*models.WordEntry, error)
	ListCourses() []models.Course
	Pronunciation(ctx context.Context, letter string) ([]byte, error)
}

// PracticeServicer defines the interface for practice session operations.
type PracticeServicer interface {
	CreateSession(ctx context.Context, userID primitive.ObjectID, req *models.CreateSessionRequest) (*models.Session, error)
	GetSession(ctx context.Context, userID primitive.ObjectID, sessionID string) (*models.Session, error)
	ChangeTarget(ctx context.Context, userID primitive.ObjectID, sessionID string, req *models.ChangeTargetRequest) (*models.Session, error)
	DeleteSession(ctx context.Context, userID primitive.ObjectID, sessionID string) error
	SubmitRecording(ctx context.Context, userID primitive.ObjectID, sessionID string, audio io.Reader) (*models.AttemptResponse, error)
	SubmitTranscription(ctx context.Context, userID primitive.ObjectID, sessionID string, req *models.TranscriptionAttemptRequest) (*models.AttemptResponse, error)
	CancelRecording(ctx context.Context, userID primitive.ObjectID, sessionID string) error
	Remedy(ctx context.Context, userID primitive.ObjectID, sessionID string) (*models.RemedyResponse, error)
	History(ctx context.Context, userID primitive.ObjectID, page, limit int) (*models.AttemptListResponse, error)
	Stats(ctx context.Context, userID primitive.ObjectID) ([]models.TargetStats, error)
}

// Ensure concrete types implement interfaces
var (
	_ AuthServicer     = (*AuthService)(nil)
	_ UserServicer     = (*UserService)(nil)
	_ WordServicer     = (*WordService)(nil)
	_ PracticeServicer = (*PracticeService)(nil)
	_ ConsentChecker   = (*UserService)(nil)
)
