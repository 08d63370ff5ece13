package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"phonics-coach/internal/cache"
	cachemocks "phonics-coach/internal/cache/mocks"
	apperrors "phonics-coach/internal/errors"
	"phonics-coach/internal/models"
	repomocks "phonics-coach/internal/repository/mocks"
	"phonics-coach/pkg/auth"
	authmocks "phonics-coach/pkg/auth/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

type authDeps struct {
	users  *repomocks.MockUserRepository
	tokens *cachemocks.MockRefreshTokenStore
	jwt    *authmocks.MockTokenManager
	svc    *AuthService
}

func newAuthDeps(t *testing.T) *authDeps {
	ctrl := gomock.NewController(t)
	d := &authDeps{
		users:  repomocks.NewMockUserRepository(ctrl),
		tokens: cachemocks.NewMockRefreshTokenStore(ctrl),
		jwt:    authmocks.NewMockTokenManager(ctrl),
	}
	d.svc = NewAuthService(AuthServiceConfig{
		UserRepo:        d.users,
		TokenStore:      d.tokens,
		JWTManager:      d.jwt,
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 7 * 24 * time.Hour,
	})
	return d
}

func TestAuthService_Register(t *testing.T) {
	req := &models.CreateUserRequest{
		Name:               "Jane Doe",
		Email:              "jane@example.com",
		Password:           "secret123",
		PhoneNumber:        "+15551234567",
		ChildAge:           6,
		Region:             "US",
		ProblemDescription: "Mixes up V and B",
		RecordingConsent:   true,
	}

	t.Run("creates a completed profile and signs in", func(t *testing.T) {
		d := newAuthDeps(t)
		userID := primitive.NewObjectID()

		d.users.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, user *models.User) error {
				assert.Equal(t, req.Email, user.Email)
				assert.NotEqual(t, req.Password, user.Password)
				assert.Equal(t, 6, user.ChildAge)
				assert.True(t, user.RecordingConsent)
				assert.True(t, user.ProfileCompleted)
				user.ID = userID
				return nil
			})
		d.jwt.EXPECT().GenerateToken(auth.Principal{UserID: userID.Hex(), RecordingConsent: true, ChildAge: 6}).
			Return("access-token", nil)
		d.tokens.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), 7*24*time.Hour).
			DoAndReturn(func(_ context.Context, familyID string, data *cache.RefreshTokenData, _ time.Duration) error {
				assert.Len(t, familyID, 16)
				assert.Equal(t, userID.Hex(), data.UserID)
				assert.NotEmpty(t, data.CurrentTokenHash)
				return nil
			})

		resp, err := d.svc.Register(context.Background(), req)

		require.NoError(t, err)
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.True(t, strings.HasPrefix(resp.RefreshToken, "pcr."), resp.RefreshToken)
		assert.Equal(t, models.TokenTypeBearer, resp.TokenType)
		assert.Equal(t, 900, resp.ExpiresIn)
		assert.Equal(t, "Jane Doe", resp.User.Name)
	})

	t.Run("duplicate email", func(t *testing.T) {
		d := newAuthDeps(t)
		d.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(apperrors.ErrUserAlreadyExists)

		resp, err := d.svc.Register(context.Background(), req)

		assert.ErrorIs(t, err, apperrors.ErrUserAlreadyExists)
		assert.Nil(t, resp)
	})

	t.Run("token store failure", func(t *testing.T) {
		d := newAuthDeps(t)
		d.users.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		d.jwt.EXPECT().GenerateToken(gomock.Any()).Return("access-token", nil)
		d.tokens.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("redis down"))

		_, err := d.svc.Register(context.Background(), req)

		assert.Error(t, err)
	})
}

func TestAuthService_Login(t *testing.T) {
	hashed, err := auth.HashPassword("secret123")
	require.NoError(t, err)
	user := &models.User{ID: primitive.NewObjectID(), Email: "jane@example.com", Password: hashed, ChildAge: 7}
	login := &models.LoginRequest{Email: "jane@example.com", Password: "secret123"}

	t.Run("valid credentials", func(t *testing.T) {
		d := newAuthDeps(t)
		d.users.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(user, nil)
		d.jwt.EXPECT().GenerateToken(auth.Principal{UserID: user.ID.Hex(), ChildAge: 7}).Return("access-token", nil)
		d.tokens.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		resp, err := d.svc.Login(context.Background(), login)

		require.NoError(t, err)
		assert.Equal(t, "access-token", resp.AccessToken)
	})

	t.Run("unknown email", func(t *testing.T) {
		d := newAuthDeps(t)
		d.users.EXPECT().FindByEmail(gomock.Any(), "who@example.com").Return(nil, apperrors.ErrUserNotFound)

		_, err := d.svc.Login(context.Background(), &models.LoginRequest{Email: "who@example.com", Password: "secret123"})

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("wrong password", func(t *testing.T) {
		d := newAuthDeps(t)
		d.users.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(user, nil)

		_, err := d.svc.Login(context.Background(), &models.LoginRequest{Email: "jane@example.com", Password: "nope"})

		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestAuthService_Login_UpgradesOldHash(t *testing.T) {
	old, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	newUser := func() *models.User {
		return &models.User{ID: primitive.NewObjectID(), Email: "jane@example.com", Password: string(old)}
	}
	login := &models.LoginRequest{Email: "jane@example.com", Password: "secret123"}

	t.Run("stores a hash at the current cost", func(t *testing.T) {
		d := newAuthDeps(t)
		user := newUser()
		d.users.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(user, nil)
		d.users.EXPECT().UpdatePassword(gomock.Any(), user.ID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ primitive.ObjectID, hash string) error {
				assert.NoError(t, auth.CheckPassword("secret123", hash))
				assert.False(t, auth.NeedsRehash(hash))
				return nil
			})
		d.jwt.EXPECT().GenerateToken(gomock.Any()).Return("access-token", nil)
		d.tokens.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		_, err := d.svc.Login(context.Background(), login)

		require.NoError(t, err)
		assert.NotEqual(t, string(old), user.Password)
	})

	t.Run("a failed upgrade still signs in", func(t *testing.T) {
		d := newAuthDeps(t)
		user := newUser()
		d.users.EXPECT().FindByEmail(gomock.Any(), "jane@example.com").Return(user, nil)
		d.users.EXPECT().UpdatePassword(gomock.Any(), user.ID, gomock.Any()).Return(errors.New("mongo down"))
		d.jwt.EXPECT().GenerateToken(gomock.Any()).Return("access-token", nil)
		d.tokens.EXPECT().Create(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

		resp, err := d.svc.Login(context.Background(), login)

		require.NoError(t, err)
		assert.Equal(t, "access-token", resp.AccessToken)
		assert.Equal(t, string(old), user.Password)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	gen := auth.NewRefreshTokenGenerator()
	previous, err := gen.Issue()
	require.NoError(t, err)
	current, err := gen.Rotate(previous.FamilyID)
	require.NoError(t, err)
	familyID := current.FamilyID
	parent := primitive.NewObjectID()

	stored := func() *cache.RefreshTokenData {
		return &cache.RefreshTokenData{
			UserID:            parent.Hex(),
			CurrentTokenHash:  current.Hash,
			PreviousTokenHash: previous.Hash,
			ExpiresAt:         time.Now().Add(time.Hour),
		}
	}
	refresh := func(tok string) *models.RefreshRequest {
		return &models.RefreshRequest{RefreshToken: tok}
	}

	t.Run("rotates and reflects revoked consent", func(t *testing.T) {
		d := newAuthDeps(t)
		d.tokens.EXPECT().Get(gomock.Any(), familyID).Return(stored(), nil)
		d.users.EXPECT().FindByID(gomock.Any(), parent).
			Return(&models.User{ID: parent, ChildAge: 6, RecordingConsent: false}, nil)
		d.jwt.EXPECT().GenerateToken(auth.Principal{UserID: parent.Hex(), ChildAge: 6}).Return("new-access", nil)
		d.tokens.EXPECT().Rotate(gomock.Any(), familyID, gomock.Any(), 7*24*time.Hour).Return(nil)

		resp, err := d.svc.Refresh(context.Background(), refresh(current.Value))

		require.NoError(t, err)
		assert.Equal(t, "new-access", resp.AccessToken)
		assert.NotEqual(t, current.Value, resp.RefreshToken)
		got, err := gen.Parse(resp.RefreshToken)
		require.NoError(t, err)
		assert.Equal(t, familyID, got)
	})

	t.Run("account deleted since login", func(t *testing.T) {
		d := newAuthDeps(t)
		d.tokens.EXPECT().Get(gomock.Any(), familyID).Return(stored(), nil)
		d.users.EXPECT().FindByID(gomock.Any(), parent).Return(nil, apperrors.ErrUserNotFound)
		d.tokens.EXPECT().Delete(gomock.Any(), familyID).Return(nil)

		_, err := d.svc.Refresh(context.Background(), refresh(current.Value))

		assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})

	t.Run("profile lookup fails", func(t *testing.T) {
		d := newAuthDeps(t)
		d.tokens.EXPECT().Get(gomock.Any(), familyID).Return(stored(), nil)
		d.users.EXPECT().FindByID(gomock.Any(), parent).Return(nil, errors.New("mongo down"))

		_, err := d.svc.Refresh(context.Background(), refresh(current.Value))

		assert.EqualError(t, err, "mongo down")
	})

	t.Run("previous token revokes the family", func(t *testing.T) {
		d := newAuthDeps(t)
		d.tokens.EXPECT().Get(gomock.Any(), familyID).Return(stored(), nil)
		d.tokens.EXPECT().Delete(gomock.Any(), familyID).Return(nil)

		_, err := d.svc.Refresh(context.Background(), refresh(previous.Value))

		assert.ErrorIs(t, err, apperrors.ErrRefreshTokenReused)
	})

	t.Run("expired family", func(t *testing.T) {
		d := newAuthDeps(t)
		data := stored()
		data.ExpiresAt = time.Now().Add(-time.Minute)
		d.tokens.EXPECT().Get(gomock.Any(), familyID).Return(data, nil)
		d.tokens.EXPECT().Delete(gomock.Any(), familyID).Return(nil)

		_, err := d.svc.Refresh(context.Background(), refresh(current.Value))

		assert.ErrorIs(t, err, apperrors.ErrRefreshTokenExpired)
	})

	t.Run("unknown family", func(t *testing.T) {
		d := newAuthDeps(t)
		d.tokens.EXPECT().Get(gomock.Any(), familyID).Return(nil, nil)

		_, err := d.svc.Refresh(context.Background(), refresh(current.Value))

		assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})

	t.Run("malformed token", func(t *testing.T) {
		d := newAuthDeps(t)

		_, err := d.svc.Refresh(context.Background(), refresh("garbage"))

		assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})

	t.Run("token from nowhere in a known family", func(t *testing.T) {
		d := newAuthDeps(t)
		stranger, err := gen.Rotate(familyID)
		require.NoError(t, err)
		d.tokens.EXPECT().Get(gomock.Any(), familyID).Return(stored(), nil)

		_, err = d.svc.Refresh(context.Background(), refresh(stranger.Value))

		assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})

	t.Run("family vanished during rotation", func(t *testing.T) {
		d := newAuthDeps(t)
		d.tokens.EXPECT().Get(gomock.Any(), familyID).Return(stored(), nil)
		d.users.EXPECT().FindByID(gomock.Any(), parent).Return(&models.User{ID: parent}, nil)
		d.jwt.EXPECT().GenerateToken(gomock.Any()).Return("new-access", nil)
		d.tokens.EXPECT().Rotate(gomock.Any(), familyID, gomock.Any(), gomock.Any()).Return(apperrors.ErrRefreshFamilyMissing)

		_, err := d.svc.Refresh(context.Background(), refresh(current.Value))

		assert.ErrorIs(t, err, apperrors.ErrInvalidRefreshToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	token, err := auth.NewRefreshTokenGenerator().Issue()
	require.NoError(t, err)

	t.Run("deletes the family", func(t *testing.T) {
		d := newAuthDeps(t)
		d.tokens.EXPECT().Delete(gomock.Any(), token.FamilyID).Return(nil)

		assert.NoError(t, d.svc.Logout(context.Background(), &models.LogoutRequest{RefreshToken: token.Value}))
	})

	t.Run("malformed token is a no-op", func(t *testing.T) {
		d := newAuthDeps(t)

		assert.NoError(t, d.svc.Logout(context.Background(), &models.LogoutRequest{RefreshToken: "garbage"}))
	})

	t.Run("logout everywhere", func(t *testing.T) {
		d := newAuthDeps(t)
		userID := primitive.NewObjectID()
		d.tokens.EXPECT().DeleteAllByUserID(gomock.Any(), userID.Hex()).Return(nil)

		assert.NoError(t, d.svc.LogoutAll(context.Background(), userID))
	})
}
