//go:build api

package testserver

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"testing"

	"phonics-coach/internal/audio"
	"phonics-coach/internal/models"
	"phonics-coach/pkg/response"
	"phonics-coach/test/testutil"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthHelper provides authentication helpers for API tests.
type AuthHelper struct {
	server *TestServer
}

// NewAuthHelper creates a new auth helper.
func NewAuthHelper(server *TestServer) *AuthHelper {
	return &AuthHelper{server: server}
}

// RegisterUser registers a parent who allowed recordings and returns the
// auth response data.
func (ah *AuthHelper) RegisterUser(t *testing.T, name, email, password string) map[string]interface{} {
	t.Helper()

	return ah.Register(t, models.CreateUserRequest{
		Name:             name,
		Email:            email,
		Password:         password,
		ChildAge:         6,
		RecordingConsent: true,
	})
}

// Register posts req to the register endpoint and requires a 201.
func (ah *AuthHelper) Register(t *testing.T, req models.CreateUserRequest) map[string]interface{} {
	t.Helper()

	w := testutil.MakeRequest(t, ah.server.Router, http.MethodPost, "/api/v1/auth/register", req)
	require.Equal(t, http.StatusCreated, w.Code, "register should return 201, got: %s", w.Body.String())

	var resp response.Response
	testutil.ParseResponse(t, w, &resp)
	require.True(t, resp.Success, "register response should be successful")

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "response data should be a map")
	return data
}

// Login logs in a user and returns the auth response containing tokens.
func (ah *AuthHelper) Login(t *testing.T, email, password string) map[string]interface{} {
	t.Helper()

	req := models.LoginRequest{
		Email:    email,
		Password: password,
	}

	w := testutil.MakeRequest(t, ah.server.Router, http.MethodPost, "/api/v1/auth/login", req)
	require.Equal(t, http.StatusOK, w.Code, "login should return 200, got: %s", w.Body.String())

	var resp response.Response
	testutil.ParseResponse(t, w, &resp)
	require.True(t, resp.Success, "login response should be successful")

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok, "response data should be a map")
	return data
}

// GetAccessToken logs in and returns just the access token.
func (ah *AuthHelper) GetAccessToken(t *testing.T, email, password string) string {
	t.Helper()

	data := ah.Login(t, email, password)
	token, ok := data["accessToken"].(string)
	require.True(t, ok, "accessToken should be a string")

	return token
}

// CreateAuthenticatedUser creates a user and returns the user data and access token.
func (ah *AuthHelper) CreateAuthenticatedUser(t *testing.T, name, email, password string) (userData map[string]interface{}, accessToken string) {
	t.Helper()

	userData = ah.RegisterUser(t, name, email, password)
	authData := ah.Login(t, email, password)

	accessToken, ok := authData["accessToken"].(string)
	require.True(t, ok, "accessToken should be a string")

	return userData, accessToken
}

// CreateDefaultUser creates a user with default test credentials.
func (ah *AuthHelper) CreateDefaultUser(t *testing.T) (userData map[string]interface{}, accessToken string) {
	t.Helper()
	return ah.CreateAuthenticatedUser(t, "Test Parent", "test@example.com", "password123")
}

// SeedUser directly inserts a user into the database (bypasses API).
func (ah *AuthHelper) SeedUser(t *testing.T, user *models.User) *models.User {
	t.Helper()
	ctx := context.Background()

	err := ah.server.UserRepo.Create(ctx, user)
	require.NoError(t, err, "failed to seed user")

	return user
}

// PracticeHelper provides practice-session helpers for API tests.
type PracticeHelper struct {
	server *TestServer
}

// NewPracticeHelper creates a new practice helper.
func NewPracticeHelper(server *TestServer) *PracticeHelper {
	return &PracticeHelper{server: server}
}

// CreateSession starts a session for target and returns its data.
func (ph *PracticeHelper) CreateSession(t *testing.T, token, target string) map[string]interface{} {
	t.Helper()

	req := models.CreateSessionRequest{Target: target}
	w := testutil.MakeAuthRequest(t, ph.server.Router, http.MethodPost, "/api/v1/practice/sessions", token, req)
	require.Equal(t, http.StatusCreated, w.Code, "create session should return 201, got: %s", w.Body.String())

	resp := testutil.ParseAPIResponse(t, w)
	require.True(t, resp.Success, "create session response should be successful")
	return resp.Data
}

// SubmitTranscription posts a client-side transcription and returns the
// attempt response data.
func (ph *PracticeHelper) SubmitTranscription(t *testing.T, token, sessionID, text string) map[string]interface{} {
	t.Helper()

	req := models.TranscriptionAttemptRequest{Transcription: text}
	w := testutil.MakeAuthRequest(t, ph.server.Router, http.MethodPost,
		"/api/v1/practice/sessions/"+sessionID+"/transcriptions", token, req)
	require.Equal(t, http.StatusCreated, w.Code, "submit transcription should return 201, got: %s", w.Body.String())

	resp := testutil.ParseAPIResponse(t, w)
	require.True(t, resp.Success, "submit transcription response should be successful")
	return resp.Data
}

// SeedAttempt directly inserts an archived attempt (bypasses API).
func (ph *PracticeHelper) SeedAttempt(t *testing.T, record *models.AttemptRecord) *models.AttemptRecord {
	t.Helper()

	err := ph.server.AttemptRepo.Create(context.Background(), record)
	require.NoError(t, err, "failed to seed attempt")

	return record
}

// ToneWAV returns a short 440 Hz tone, long enough to pass the minimum
// recording size.
func ToneWAV(t *testing.T, seconds float64) []byte {
	t.Helper()

	n := int(seconds * audio.SampleRate)
	samples := make([]int, n)
	for i := range samples {
		samples[i] = int(8000 * math.Sin(2*math.Pi*440*float64(i)/audio.SampleRate))
	}
	data, err := audio.EncodePCM16(samples, audio.SampleRate, audio.Channels)
	require.NoError(t, err)
	return data
}

// ParseResponseData is a generic helper to parse response data into a specific type.
func ParseResponseData[T any](t *testing.T, data map[string]interface{}) T {
	t.Helper()

	jsonBytes, err := json.Marshal(data)
	require.NoError(t, err, "failed to marshal response data")

	var result T
	err = json.Unmarshal(jsonBytes, &result)
	require.NoError(t, err, "failed to unmarshal response data")

	return result
}

// GetIDFromResponse extracts the ID from response data.
// It handles both direct ID fields and nested user objects (for auth responses).
func GetIDFromResponse(t *testing.T, data map[string]interface{}) string {
	t.Helper()

	if id, ok := data["id"].(string); ok {
		return id
	}

	if user, ok := data["user"].(map[string]interface{}); ok {
		if id, ok := user["id"].(string); ok {
			return id
		}
	}

	t.Fatal("id should be a string in response data (checked: id, user.id)")
	return ""
}

// GetObjectIDFromResponse extracts and parses the ID as ObjectID.
func GetObjectIDFromResponse(t *testing.T, data map[string]interface{}) primitive.ObjectID {
	t.Helper()

	idStr := GetIDFromResponse(t, data)
	oid, err := primitive.ObjectIDFromHex(idStr)
	require.NoError(t, err, "failed to parse ObjectID")

	return oid
}
