package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "phonics-coach/internal/errors"
	"phonics-coach/internal/models"
	"phonics-coach/internal/service/mocks"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newPracticeRouter(m *mocks.MockPracticeService, userID string) *gin.Engine {
	handler := NewPracticeHandler(m)
	router := gin.New()
	g := router.Group("/practice")
	if userID != "" {
		g.Use(setUserID(userID))
	}
	g.POST("/sessions", handler.CreateSession)
	g.GET("/sessions/:id", handler.GetSession)
	g.PUT("/sessions/:id/target", handler.ChangeTarget)
	g.DELETE("/sessions/:id", handler.DeleteSession)
	g.POST("/sessions/:id/attempts", handler.SubmitAttempt)
	g.POST("/sessions/:id/transcriptions", handler.SubmitTranscription)
	g.DELETE("/sessions/:id/recording", handler.CancelRecording)
	g.GET("/sessions/:id/remedy", handler.GetRemedy)
	g.GET("/history", handler.ListHistory)
	g.GET("/stats", handler.GetStats)
	return router
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	if s, ok := v.(string); ok {
		return bytes.NewBufferString(s)
	}
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(b)
}

func TestNewPracticeHandler(t *testing.T) {
	mockService := &mocks.MockPracticeService{}
	handler := NewPracticeHandler(mockService)

	assert.NotNil(t, handler)
	assert.Equal(t, mockService, handler.service)
}

func TestPracticeHandler_CreateSession(t *testing.T) {
	userID := primitive.NewObjectID()

	tests := []struct {
		name           string
		userID         string
		body           interface{}
		mockSetup      func(*mocks.MockPracticeService)
		expectedStatus int
		checkResponse  func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:   "letter target",
			userID: userID.Hex(),
			body:   models.CreateSessionRequest{Target: "B"},
			mockSetup: func(m *mocks.MockPracticeService) {
				m.CreateSessionFunc = func(ctx context.Context, uid primitive.ObjectID, req *models.CreateSessionRequest) (*models.Session, error) {
					assert.Equal(t, userID, uid)
					return &models.Session{ID: "s1", UserID: uid.Hex(), Target: req.Target, Attempts: []models.Attempt{}}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				data := resp["data"].(map[string]interface{})
				assert.Equal(t, "s1", data["id"])
				assert.Equal(t, "B", data["target"])
				assert.Equal(t, float64(0), data["averageAccuracy"])
			},
		},
		{
			name:   "course target",
			userID: userID.Hex(),
			body:   models.CreateSessionRequest{Target: "v-b"},
			mockSetup: func(m *mocks.MockPracticeService) {
				m.CreateSessionFunc = func(ctx context.Context, uid primitive.ObjectID, req *models.CreateSessionRequest) (*models.Session, error) {
					return &models.Session{ID: "s2", Target: req.Target}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "unknown target rejected by validation",
			userID:         userID.Hex(),
			body:           models.CreateSessionRequest{Target: "Q"},
			mockSetup:      func(m *mocks.MockPracticeService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing target",
			userID:         userID.Hex(),
			body:           map[string]string{},
			mockSetup:      func(m *mocks.MockPracticeService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "not authenticated",
			body:           models.CreateSessionRequest{Target: "B"},
			mockSetup:      func(m *mocks.MockPracticeService) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:   "internal server error",
			userID: userID.Hex(),
			body:   models.CreateSessionRequest{Target: "B"},
			mockSetup: func(m *mocks.MockPracticeService) {
				m.CreateSessionFunc = func(ctx context.Context, uid primitive.ObjectID, req *models.CreateSessionRequest) (*models.Session, error) {
					return nil, errors.New("redis down")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mocks.MockPracticeService{}
			tt.mockSetup(mockService)

			req := httptest.NewRequest(http.MethodPost, "/practice/sessions", jsonBody(t, tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			newPracticeRouter(mockService, tt.userID).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestPracticeHandler_SessionErrors(t *testing.T) {
	userID := primitive.NewObjectID()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "not found", err: apperrors.ErrSessionNotFound, expectedStatus: http.StatusNotFound},
		{name: "another account", err: apperrors.ErrSessionForbidden, expectedStatus: http.StatusForbidden},
		{name: "invalid target", err: apperrors.ErrInvalidTarget, expectedStatus: http.StatusBadRequest},
		{name: "unexpected", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mocks.MockPracticeService{
				GetSessionFunc: func(ctx context.Context, uid primitive.ObjectID, id string) (*models.Session, error) {
					assert.Equal(t, "s1", id)
					return nil, tt.err
				},
			}

			req := httptest.NewRequest(http.MethodGet, "/practice/sessions/s1", nil)
			w := httptest.NewRecorder()

			newPracticeRouter(mockService, userID.Hex()).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestPracticeHandler_ChangeTarget(t *testing.T) {
	userID := primitive.NewObjectID()

	tests := []struct {
		name           string
		body           interface{}
		mockSetup      func(*mocks.MockPracticeService)
		expectedStatus int
	}{
		{
			name: "switches target",
			body: models.ChangeTargetRequest{Target: "p-f"},
			mockSetup: func(m *mocks.MockPracticeService) {
				m.ChangeTargetFunc = func(ctx context.Context, uid primitive.ObjectID, id string, req *models.ChangeTargetRequest) (*models.Session, error) {
					assert.Equal(t, "p-f", req.Target)
					return &models.Session{ID: id, Target: req.Target, Attempts: []models.Attempt{}}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid target",
			body:           models.ChangeTargetRequest{Target: "x-y"},
			mockSetup:      func(m *mocks.MockPracticeService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "session owned by someone else",
			body: models.ChangeTargetRequest{Target: "B"},
			mockSetup: func(m *mocks.MockPracticeService) {
				m.ChangeTargetFunc = func(ctx context.Context, uid primitive.ObjectID, id string, req *models.ChangeTargetRequest) (*models.Session, error) {
					return nil, apperrors.ErrSessionForbidden
				}
			},
			expectedStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mocks.MockPracticeService{}
			tt.mockSetup(mockService)

			req := httptest.NewRequest(http.MethodPut, "/practice/sessions/s1/target", jsonBody(t, tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			newPracticeRouter(mockService, userID.Hex()).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestPracticeHandler_DeleteSession(t *testing.T) {
	userID := primitive.NewObjectID()

	mockService := &mocks.MockPracticeService{
		DeleteSessionFunc: func(ctx context.Context, uid primitive.ObjectID, id string) error {
			assert.Equal(t, "s1", id)
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodDelete, "/practice/sessions/s1", nil)
	w := httptest.NewRecorder()

	newPracticeRouter(mockService, userID.Hex()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func multipartAudio(t *testing.T, field string, data []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, "attempt.wav")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	} else {
		require.NoError(t, mw.WriteField("note", "no audio"))
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestPracticeHandler_SubmitAttempt(t *testing.T) {
	userID := primitive.NewObjectID()
	audio := bytes.Repeat([]byte{1}, 2048)

	tests := []struct {
		name           string
		field          string
		mockSetup      func(*mocks.MockPracticeService)
		expectedStatus int
		checkResponse  func(*testing.T, *httptest.ResponseRecorder)
	}{
		{
			name:  "scores uploaded audio",
			field: "audio",
			mockSetup: func(m *mocks.MockPracticeService) {
				m.SubmitRecordingFunc = func(ctx context.Context, uid primitive.ObjectID, id string, r io.Reader) (*models.AttemptResponse, error) {
					got, err := io.ReadAll(r)
					assert.NoError(t, err)
					assert.Equal(t, audio, got)

					attempt := models.Attempt{
						ID:            "a1",
						Transcription: "bal",
						ExpectedWord:  "Ball",
						Accuracy:      75,
						Feedback:      "Good try!",
						Timestamp:     time.Now(),
					}
					return &models.AttemptResponse{
						Attempt: attempt,
						Session: models.Session{ID: id, Target: "B", Attempts: []models.Attempt{attempt}, AverageAccuracy: 75},
					}, nil
				}
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp struct {
					Data models.AttemptResponse `json:"data"`
				}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, 75, resp.Data.Attempt.Accuracy)
				assert.Equal(t, "bal", resp.Data.Attempt.Transcription)
				assert.Equal(t, 75.0, resp.Data.Session.AverageAccuracy)
			},
		},
		{
			name:           "missing audio field",
			field:          "",
			mockSetup:      func(m *mocks.MockPracticeService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:  "recording consent not given",
			field: "audio",
			mockSetup: func(m *mocks.MockPracticeService) {
				m.SubmitRecordingFunc = func(ctx context.Context, uid primitive.ObjectID, id string, r io.Reader) (*models.AttemptResponse, error) {
					return nil, apperrors.ErrPermissionDenied
				}
			},
			expectedStatus: http.StatusForbidden,
		},
		{
			name:  "already recording",
			field: "audio",
			mockSetup: func(m *mocks.MockPracticeService) {
				m.SubmitRecordingFunc = func(ctx context.Context, uid primitive.ObjectID, id string, r io.Reader) (*models.AttemptResponse, error) {
					return nil, apperrors.ErrAlreadyRecording
				}
			},
			expectedStatus: http.StatusConflict,
		},
		{
			name:  "recording too short",
			field: "audio",
			mockSetup: func(m *mocks.MockPracticeService) {
				m.SubmitRecordingFunc = func(ctx context.Context, uid primitive.ObjectID, id string, r io.Reader) (*models.AttemptResponse, error) {
					return nil, apperrors.ErrEmptyRecording
				}
			},
			expectedStatus: http.StatusUnprocessableEntity,
			checkResponse: func(t *testing.T, w *httptest.ResponseRecorder) {
				var resp map[string]interface{}
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
				assert.Equal(t, apperrors.ErrEmptyRecording.Error(), resp["error"])
			},
		},
		{
			name:  "recording too large",
			field: "audio",
			mockSetup: func(m *mocks.MockPracticeService) {
				m.SubmitRecordingFunc = func(ctx context.Context, uid primitive.ObjectID, id string, r io.Reader) (*models.AttemptResponse, error) {
					return nil, apperrors.ErrRecordingTooLarge
				}
			},
			expectedStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:  "cancelled mid-recording",
			field: "audio",
			mockSetup: func(m *mocks.MockPracticeService) {
				m.SubmitRecordingFunc = func(ctx context.Context, uid primitive.ObjectID, id string, r io.Reader) (*models.AttemptResponse, error) {
					return nil, apperrors.ErrRecordingCancelled
				}
			},
			expectedStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mocks.MockPracticeService{}
			tt.mockSetup(mockService)

			body, contentType := multipartAudio(t, tt.field, audio)
			req := httptest.NewRequest(http.MethodPost, "/practice/sessions/s1/attempts", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			newPracticeRouter(mockService, userID.Hex()).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.checkResponse != nil {
				tt.checkResponse(t, w)
			}
		})
	}
}

func TestPracticeHandler_SubmitTranscription(t *testing.T) {
	userID := primitive.NewObjectID()

	tests := []struct {
		name           string
		body           interface{}
		mockSetup      func(*mocks.MockPracticeService)
		expectedStatus int
	}{
		{
			name: "scores text",
			body: models.TranscriptionAttemptRequest{Transcription: "wiolin"},
			mockSetup: func(m *mocks.MockPracticeService) {
				m.SubmitTranscriptionFunc = func(ctx context.Context, uid primitive.ObjectID, id string, req *models.TranscriptionAttemptRequest) (*models.AttemptResponse, error) {
					assert.Equal(t, "wiolin", req.Transcription)
					return &models.AttemptResponse{Attempt: models.Attempt{Accuracy: 83}}, nil
				}
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "missing transcription",
			body:           map[string]string{},
			mockSetup:      func(m *mocks.MockPracticeService) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "session not found",
			body: models.TranscriptionAttemptRequest{Transcription: "ball"},
			mockSetup: func(m *mocks.MockPracticeService) {
				m.SubmitTranscriptionFunc = func(ctx context.Context, uid primitive.ObjectID, id string, req *models.TranscriptionAttemptRequest) (*models.AttemptResponse, error) {
					return nil, apperrors.ErrSessionNotFound
				}
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mocks.MockPracticeService{}
			tt.mockSetup(mockService)

			req := httptest.NewRequest(http.MethodPost, "/practice/sessions/s1/transcriptions", jsonBody(t, tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			newPracticeRouter(mockService, userID.Hex()).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestPracticeHandler_CancelRecording(t *testing.T) {
	userID := primitive.NewObjectID()

	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "cancels", err: nil, expectedStatus: http.StatusNoContent},
		{name: "nothing to cancel", err: apperrors.ErrNoActiveRecording, expectedStatus: http.StatusConflict},
		{name: "session not found", err: apperrors.ErrSessionNotFound, expectedStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mocks.MockPracticeService{
				CancelRecordingFunc: func(ctx context.Context, uid primitive.ObjectID, id string) error {
					return tt.err
				},
			}

			req := httptest.NewRequest(http.MethodDelete, "/practice/sessions/s1/recording", nil)
			w := httptest.NewRecorder()

			newPracticeRouter(mockService, userID.Hex()).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

func TestPracticeHandler_GetRemedy(t *testing.T) {
	userID := primitive.NewObjectID()

	mockService := &mocks.MockPracticeService{
		RemedyFunc: func(ctx context.Context, uid primitive.ObjectID, id string) (*models.RemedyResponse, error) {
			return &models.RemedyResponse{
				Target:          "v-b",
				AverageAccuracy: 55,
				Remedy:          "Let's practice together!",
				Source:          models.FeedbackFromFallback,
			}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/practice/sessions/s1/remedy", nil)
	w := httptest.NewRecorder()

	newPracticeRouter(mockService, userID.Hex()).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data models.RemedyResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "v-b", resp.Data.Target)
	assert.Equal(t, models.FeedbackFromFallback, resp.Data.Source)
}

func TestPracticeHandler_ListHistory(t *testing.T) {
	userID := primitive.NewObjectID()

	tests := []struct {
		name          string
		query         string
		expectedPage  int
		expectedLimit int
	}{
		{name: "defaults", query: "", expectedPage: 1, expectedLimit: 20},
		{name: "explicit paging", query: "?page=3&limit=5", expectedPage: 3, expectedLimit: 5},
		{name: "garbage falls through to service clamping", query: "?page=abc&limit=xyz", expectedPage: 0, expectedLimit: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mocks.MockPracticeService{
				HistoryFunc: func(ctx context.Context, uid primitive.ObjectID, page, limit int) (*models.AttemptListResponse, error) {
					assert.Equal(t, userID, uid)
					assert.Equal(t, tt.expectedPage, page)
					assert.Equal(t, tt.expectedLimit, limit)
					return &models.AttemptListResponse{Attempts: []models.AttemptRecord{}, Page: page, Limit: limit}, nil
				},
			}

			req := httptest.NewRequest(http.MethodGet, "/practice/history"+tt.query, nil)
			w := httptest.NewRecorder()

			newPracticeRouter(mockService, userID.Hex()).ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
		})
	}
}

func TestPracticeHandler_GetStats(t *testing.T) {
	userID := primitive.NewObjectID()

	tests := []struct {
		name           string
		mockSetup      func(*mocks.MockPracticeService)
		expectedStatus int
	}{
		{
			name: "returns stats",
			mockSetup: func(m *mocks.MockPracticeService) {
				m.StatsFunc = func(ctx context.Context, uid primitive.ObjectID) ([]models.TargetStats, error) {
					return []models.TargetStats{{Target: "B", Attempts: 3, AverageAccuracy: 80, BestAccuracy: 100}}, nil
				}
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "internal server error",
			mockSetup: func(m *mocks.MockPracticeService) {
				m.StatsFunc = func(ctx context.Context, uid primitive.ObjectID) ([]models.TargetStats, error) {
					return nil, errors.New("aggregate failed")
				}
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := &mocks.MockPracticeService{}
			tt.mockSetup(mockService)

			req := httptest.NewRequest(http.MethodGet, "/practice/stats", nil)
			w := httptest.NewRecorder()

			newPracticeRouter(mockService, userID.Hex()).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}
