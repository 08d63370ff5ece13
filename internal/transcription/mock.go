package transcription

import (
	"context"
	"errors"
	"time"
)

// MockService is a mock implementation of Service for development/testing.
type MockService struct {
	// Text is returned for every request.
	Text string
	// SimulatedDelay is the time to simulate transcription processing.
	SimulatedDelay time.Duration
	// Err, when set, fails every request.
	Err error
}

// NewMockService creates a MockService that always hears "ball".
func NewMockService() *MockService {
	return &MockService{
		Text:           "ball",
		SimulatedDelay: 200 * time.Millisecond,
	}
}

// Transcribe simulates audio transcription.
func (s *MockService) Transcribe(ctx context.Context, audio []byte, _ Options) (string, error) {
	if s.SimulatedDelay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(s.SimulatedDelay):
		}
	}
	if s.Err != nil {
		return "", s.Err
	}
	if len(audio) == 0 {
		return "", errors.New("mock: no audio")
	}
	return s.Text, nil
}
