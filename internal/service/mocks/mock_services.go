// Package mocks provides mock implementations of service interfaces for testing.
package mocks

import (
	"context"
	"io"

	"phonics-coach/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MockAuthService is a mock implementation of AuthServicer.
type MockAuthService struct {
	RegisterFunc  func(ctx context.Context, req *models.CreateUserRequest) (*models.AuthResponse, error)
	LoginFunc     func(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error)
	RefreshFunc   func(ctx context.Context, req *models.RefreshRequest) (*models.RefreshResponse, error)
	LogoutFunc    func(ctx context.Context, req *models.LogoutRequest) error
	LogoutAllFunc func(ctx context.Context, userID primitive.ObjectID) error
}

func (m *MockAuthService) Register(ctx context.Context, req *models.CreateUserRequest) (*models.AuthResponse, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAuthService) Refresh(ctx context.Context, req *models.RefreshRequest) (*models.RefreshResponse, error) {
	if m.RefreshFunc != nil {
		return m.RefreshFunc(ctx, req)
	}
	return nil, nil
}

func (m *MockAuthService) Logout(ctx context.Context, req *models.LogoutRequest) error {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, req)
	}
	return nil
}

func (m *MockAuthService) LogoutAll(ctx context.Context, userID primitive.ObjectID) error {
	if m.LogoutAllFunc != nil {
		return m.LogoutAllFunc(ctx, userID)
	}
	return nil
}

// MockUserService is a mock implementation of UserServicer.
type MockUserService struct {
	GetMeFunc         func(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfileFunc func(ctx context.Context, id primitive.ObjectID, req *models.UpdateUserRequest) (*models.User, error)
	DeleteAccountFunc func(ctx context.Context, id primitive.ObjectID) error
}

func (m *MockUserService) GetMe(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if m.GetMeFunc != nil {
		return m.GetMeFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, req *models.UpdateUserRequest) (*models.User, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, id, req)
	}
	return nil, nil
}

func (m *MockUserService) DeleteAccount(ctx context.Context, id primitive.ObjectID) error {
	if m.DeleteAccountFunc != nil {
		return m.DeleteAccountFunc(ctx, id)
	}
	return nil
}

// MockWordService is a mock implementation of WordServicer.
type MockWordService struct {
	ListWordsFunc     func() []models.WordEntry
	GetWordFunc       func(letter string) (*models.WordEntry, error)
	ListCoursesFunc   func() []models.Course
	PronunciationFunc func(ctx context.Context, letter string) ([]byte, error)
}

func (m *MockWordService) ListWords() []models.WordEntry {
	if m.ListWordsFunc != nil {
		return m.ListWordsFunc()
	}
	return nil
}

func (m *MockWordService) GetWord(letter string) (*models.WordEntry, error) {
	if m.GetWordFunc != nil {
		return m.GetWordFunc(letter)
	}
	return nil, nil
}

func (m *MockWordService) ListCourses() []models.Course {
	if m.ListCoursesFunc != nil {
		return m.ListCoursesFunc()
	}
	return nil
}

func (m *MockWordService) Pronunciation(ctx context.Context, letter string) ([]byte, error) {
	if m.PronunciationFunc != nil {
		return m.PronunciationFunc(ctx, letter)
	}
	return nil, nil
}

// MockPracticeService is a mock implementation of PracticeServicer.
type MockPracticeService struct {
	CreateSessionFunc       func(ctx context.Context, userID primitive.ObjectID, req *models.CreateSessionRequest) (*models.Session, error)
	GetSessionFunc          func(ctx context.Context, userID primitive.ObjectID, sessionID string) (*models.Session, error)
	ChangeTargetFunc        func(ctx context.Context, userID primitive.ObjectID, sessionID string, req *models.ChangeTargetRequest) (*models.Session, error)
	DeleteSessionFunc       func(ctx context.Context, userID primitive.ObjectID, sessionID string) error
	SubmitRecordingFunc     func(ctx context.Context, userID primitive.ObjectID, sessionID string, audio io.Reader) (*models.AttemptResponse, error)
	SubmitTranscriptionFunc func(ctx context.Context, userID primitive.ObjectID, sessionID string, req *models.TranscriptionAttemptRequest) (*models.AttemptResponse, error)
	CancelRecordingFunc     func(ctx context.Context, userID primitive.ObjectID, sessionID string) error
	RemedyFunc              func(ctx context.Context, userID primitive.ObjectID, sessionID string) (*models.RemedyResponse, error)
	HistoryFunc             func(ctx context.Context, userID primitive.ObjectID, page, limit int) (*models.AttemptListResponse, error)
	StatsFunc               func(ctx context.Context, userID primitive.ObjectID) ([]models.TargetStats, error)
}

func (m *MockPracticeService) CreateSession(ctx context.Context, userID primitive.ObjectID, req *models.CreateSessionRequest) (*models.Session, error) {
	if m.CreateSessionFunc != nil {
		return m.CreateSessionFunc(ctx, userID, req)
	}
	return nil, nil
}

func (m *MockPracticeService) GetSession(ctx context.Context, userID primitive.ObjectID, sessionID string) (*models.Session, error) {
	if m.GetSessionFunc != nil {
		return m.GetSessionFunc(ctx, userID, sessionID)
	}
	return nil, nil
}

func (m *MockPracticeService) ChangeTarget(ctx context.Context, userID primitive.ObjectID, sessionID string, req *models.ChangeTargetRequest) (*models.Session, error) {
	if m.ChangeTargetFunc != nil {
		return m.ChangeTargetFunc(ctx, userID, sessionID, req)
	}
	return nil, nil
}

func (m *MockPracticeService) DeleteSession(ctx context.Context, userID primitive.ObjectID, sessionID string) error {
	if m.DeleteSessionFunc != nil {
		return m.DeleteSessionFunc(ctx, userID, sessionID)
	}
	return nil
}

func (m *MockPracticeService) SubmitRecording(ctx context.Context, userID primitive.ObjectID, sessionID string, audio io.Reader) (*models.AttemptResponse, error) {
	if m.SubmitRecordingFunc != nil {
		return m.SubmitRecordingFunc(ctx, userID, sessionID, audio)
	}
	return nil, nil
}

func (m *MockPracticeService) SubmitTranscription(ctx context.Context, userID primitive.ObjectID, sessionID string, req *models.TranscriptionAttemptRequest) (*models.AttemptResponse, error) {
	if m.SubmitTranscriptionFunc != nil {
		return m.SubmitTranscriptionFunc(ctx, userID, sessionID, req)
	}
	return nil, nil
}

func (m *MockPracticeService) CancelRecording(ctx context.Context, userID primitive.ObjectID, sessionID string) error {
	if m.CancelRecordingFunc != nil {
		return m.CancelRecordingFunc(ctx, userID, sessionID)
	}
	return nil
}

func (m *MockPracticeService) Remedy(ctx context.Context, userID primitive.ObjectID, sessionID string) (*models.RemedyResponse, error) {
	if m.RemedyFunc != nil {
		return m.RemedyFunc(ctx, userID, sessionID)
	}
	return nil, nil
}

func (m *MockPracticeService) History(ctx context.Context, userID primitive.ObjectID, page, limit int) (*models.AttemptListResponse, error) {
	if m.HistoryFunc != nil {
		return m.HistoryFunc(ctx, userID, page, limit)
	}
	return nil, nil
}

func (m *MockPracticeService) Stats(ctx context.Context, userID primitive.ObjectID) ([]models.TargetStats, error) {
	if m.StatsFunc != nil {
		return m.StatsFunc(ctx, userID)
	}
	return nil, nil
}
