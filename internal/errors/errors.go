// Package errors provides custom error types for the application.
package errors

import (
	"errors"
	"fmt"
)

// User errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
)

// Auth errors
var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidToken         = errors.New("invalid token")
	ErrTokenExpired         = errors.New("token expired")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrRefreshTokenExpired  = errors.New("refresh token expired")
	ErrRefreshTokenReused   = errors.New("refresh token reuse detected, please log in again")
	ErrRefreshFamilyMissing = errors.New("refresh token family not found")
)

// Practice session errors
var (
	ErrSessionNotFound        = errors.New("practice session not found")
	ErrSessionForbidden       = errors.New("practice session belongs to another account")
	ErrInvalidTarget          = errors.New("practice target must be a letter or a known course")
	ErrArchiveQueueFull       = errors.New("attempt archive queue is full")
	ErrAttemptAlreadyArchived = errors.New("attempt is already archived")
	ErrPronunciationFailed    = errors.New("pronunciation audio is unavailable")
	ErrUnknownLetter          = errors.New("letter is not in the word bank")
)

// Recording and transcription errors
var (
	ErrPermissionDenied    = errors.New("recording permission has not been granted")
	ErrAlreadyRecording    = errors.New("a recording is already in progress")
	ErrNoActiveRecording   = errors.New("no recording in progress")
	ErrEmptyRecording      = errors.New("recording is too short, please try again")
	ErrRecordingTooLarge   = errors.New("recording is too large")
	ErrRecordingCancelled  = errors.New("recording was cancelled")
	ErrTranscriptionFailed = errors.New("transcription failed")
)

// TranscriptionError reports a failure of the external transcription capability.
// It matches ErrTranscriptionFailed with errors.Is and unwraps to the cause.
type TranscriptionError struct {
	Cause error
}

// NewTranscriptionError wraps cause as a TranscriptionError.
func NewTranscriptionError(cause error) *TranscriptionError {
	return &TranscriptionError{Cause: cause}
}

func (e *TranscriptionError) Error() string {
	if e.Cause == nil {
		return ErrTranscriptionFailed.Error()
	}
	return fmt.Sprintf("%s: %v", ErrTranscriptionFailed, e.Cause)
}

func (e *TranscriptionError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is ErrTranscriptionFailed.
func (e *TranscriptionError) Is(target error) bool {
	return target == ErrTranscriptionFailed
}
