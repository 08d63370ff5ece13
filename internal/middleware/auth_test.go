package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"phonics-coach/pkg/auth"
	"phonics-coach/pkg/auth/mocks"
	"phonics-coach/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const (
	testSecret = "testsecret"
	parentID   = "507f1f77bcf86cd799439011"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// practiceRouter mounts a stand-in for the recording endpoint that echoes
// what the middleware handed on.
func practiceRouter(tokens auth.TokenManager) *gin.Engine {
	router := gin.New()
	router.Use(Auth(tokens))
	router.POST("/practice/sessions/:id/attempts", func(c *gin.Context) {
		p, _ := auth.PrincipalFrom(c.Request.Context())
		response.Success(c, gin.H{
			"userId":  GetUserID(c),
			"consent": p.RecordingConsent,
			"age":     p.ChildAge,
		})
	})
	return router
}

func submit(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/practice/sessions/s-1/attempts", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// signed builds a token by hand for claims JWTManager would never issue.
func signed(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func TestAuth_HandsPrincipalToPractice(t *testing.T) {
	manager := auth.NewJWTManager(testSecret, 15*time.Minute)
	token, err := manager.GenerateToken(auth.Principal{UserID: parentID, RecordingConsent: true, ChildAge: 6})
	require.NoError(t, err)

	w := submit(practiceRouter(manager), "Bearer "+token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"userId":"`+parentID+`","consent":true,"age":6}}`, w.Body.String())
}

func TestAuth_WithoutConsentStillAuthenticates(t *testing.T) {
	manager := auth.NewJWTManager(testSecret, 15*time.Minute)
	token, err := manager.GenerateToken(auth.Principal{UserID: parentID})
	require.NoError(t, err)

	w := submit(practiceRouter(manager), "Bearer "+token)

	// consent is decided by the practice service, not here
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"consent":false`)
}

func TestAuth_Rejects(t *testing.T) {
	manager := auth.NewJWTManager(testSecret, 15*time.Minute)
	valid, err := manager.GenerateToken(auth.Principal{UserID: parentID, RecordingConsent: true})
	require.NoError(t, err)
	foreign, err := auth.NewJWTManager("another-clinic", 15*time.Minute).GenerateToken(auth.Principal{UserID: parentID})
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	expired := signed(t, &auth.Claims{
		RecordingConsent: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    auth.Issuer,
			Subject:   parentID,
			Audience:  jwt.ClaimStrings{auth.Audience},
			IssuedAt:  jwt.NewNumericDate(past),
			ExpiresAt: jwt.NewNumericDate(past.Add(15 * time.Minute)),
		},
	})

	tests := []struct {
		name          string
		authorization string
	}{
		{"no header", ""},
		{"token without scheme", valid},
		{"basic scheme", "Basic " + valid},
		{"empty bearer", "Bearer "},
		{"garbage", "Bearer not.a.token"},
		{"other secret", "Bearer " + foreign},
		{"expired", "Bearer " + expired},
	}

	router := practiceRouter(manager)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := submit(router, tt.authorization)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
			assert.NotContains(t, w.Body.String(), parentID)
		})
	}
}

func TestAuth_UsesTokenManager(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	claims := &auth.Claims{ChildAge: 8, RegisteredClaims: jwt.RegisteredClaims{Subject: "parent-1"}}
	tokens := mocks.NewMockTokenManager(ctrl)
	tokens.EXPECT().ValidateToken("opaque").Return(claims, nil)

	w := submit(practiceRouter(tokens), "Bearer opaque")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"userId":"parent-1"`)
	assert.Contains(t, w.Body.String(), `"age":8`)
}

func TestGetUserID(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Empty(t, GetUserID(c))

	c.Set(UserIDKey, parentID)
	assert.Equal(t, parentID, GetUserID(c))
}
