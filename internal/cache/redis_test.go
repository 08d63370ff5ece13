package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserCacheKey(t *testing.T) {
	assert.Equal(t, "user:507f1f77bcf86cd799439011", UserCacheKey("507f1f77bcf86cd799439011"))
}

func TestSessionCacheKey(t *testing.T) {
	tests := []struct {
		name      string
		sessionID string
		expected  string
	}{
		{"uuid format", "550e8400-e29b-41d4-a716-446655440000", "practice_session:550e8400-e29b-41d4-a716-446655440000"},
		{"simple id", "abc", "practice_session:abc"},
		{"empty string", "", "practice_session:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SessionCacheKey(tt.sessionID))
		})
	}
}

func TestPronunciationCacheKey(t *testing.T) {
	tests := []struct {
		name     string
		word     string
		voice    string
		expected string
	}{
		{"ball", "Ball", "alloy", "pronunciation:alloy:Ball"},
		{"different voice", "Ball", "nova", "pronunciation:nova:Ball"},
		{"empty word", "", "alloy", "pronunciation:alloy:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PronunciationCacheKey(tt.word, tt.voice))
		})
	}
}

func TestRefreshFamilyKey(t *testing.T) {
	assert.Equal(t, "auth:refresh_family:fam-1", refreshFamilyKey("fam-1"))
}
