// Package service contains business logic for the application.
package service

import (
	"context"
	"errors"
	"time"

	"phonics-coach/internal/cache"
	apperrors "phonics-coach/internal/errors"
	"phonics-coach/internal/models"
	"phonics-coach/internal/repository"
	"phonics-coach/pkg/auth"
	"phonics-coach/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuthService handles parent registration, login and token refresh.
// Refresh tokens are rotated on every use and grouped in families so that
// replaying an old token revokes the whole family.
type AuthService struct {
	userRepo        repository.UserRepository
	tokenStore      cache.RefreshTokenStore
	jwtManager      auth.TokenManager
	tokenGenerator  auth.RefreshTokenGenerator
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	now             func() time.Time
}

// AuthServiceConfig holds configuration for AuthService.
type AuthServiceConfig struct {
	UserRepo        repository.UserRepository
	TokenStore      cache.RefreshTokenStore
	JWTManager      auth.TokenManager
	TokenGenerator  auth.RefreshTokenGenerator
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	gen := cfg.TokenGenerator
	if gen == nil {
		gen = auth.NewRefreshTokenGenerator()
	}
	return &AuthService{
		userRepo:        cfg.UserRepo,
		tokenStore:      cfg.TokenStore,
		jwtManager:      cfg.JWTManager,
		tokenGenerator:  gen,
		accessTokenTTL:  cfg.AccessTokenTTL,
		refreshTokenTTL: cfg.RefreshTokenTTL,
		now:             time.Now,
	}
}

// Register creates a parent account and signs it in. The profile counts as
// completed because registration collects every profile field.
func (s *AuthService) Register(ctx context.Context, req *models.CreateUserRequest) (*models.AuthResponse, error) {
	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:              req.Email,
		Password:           hashedPassword,
		Name:               req.Name,
		PhoneNumber:        req.PhoneNumber,
		ChildAge:           req.ChildAge,
		Region:             req.Region,
		ProblemDescription: req.ProblemDescription,
		RecordingConsent:   req.RecordingConsent,
		ProfileCompleted:   true,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	logger.L().Info("user_registered", "user_id", user.ID.Hex(), "recording_consent", user.RecordingConsent)

	return s.generateAuthResponse(ctx, user)
}

// Login authenticates a parent and returns auth tokens.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := auth.CheckPassword(req.Password, user.Password); err != nil {
		return nil, apperrors.ErrInvalidCredentials
	}
	if auth.NeedsRehash(user.Password) {
		s.rehash(ctx, user, req.Password)
	}

	return s.generateAuthResponse(ctx, user)
}

// rehash upgrades a password hash made with an old cost. Failures only
// cost the upgrade, never the login.
func (s *AuthService) rehash(ctx context.Context, user *models.User, password string) {
	hash, err := auth.HashPassword(password)
	if err == nil {
		err = s.userRepo.UpdatePassword(ctx, user.ID, hash)
	}
	if err != nil {
		logger.L().Warn("password_rehash_failed", "user_id", user.ID.Hex(), "error", err)
		return
	}
	user.Password = hash
}

// Refresh exchanges a refresh token for a new access token and a new
// refresh token in the same family. The access token is built from the
// current profile, so consent changes show up after a refresh.
func (s *AuthService) Refresh(ctx context.Context, req *models.RefreshRequest) (*models.RefreshResponse, error) {
	familyID, err := s.tokenGenerator.Parse(req.RefreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	storedData, err := s.tokenStore.Get(ctx, familyID)
	if err != nil || storedData == nil {
		return nil, apperrors.ErrInvalidRefreshToken
	}

	if s.now().After(storedData.ExpiresAt) {
		_ = s.tokenStore.Delete(ctx, familyID)
		return nil, apperrors.ErrRefreshTokenExpired
	}

	if s.tokenGenerator.Matches(req.RefreshToken, storedData.CurrentTokenHash) {
		return s.rotate(ctx, familyID, storedData)
	}

	// the previous token was already exchanged once, so this is a replay
	if s.tokenGenerator.Matches(req.RefreshToken, storedData.PreviousTokenHash) {
		_ = s.tokenStore.Delete(ctx, familyID)
		logger.L().Warn("refresh_token_reused", "user_id", storedData.UserID, "family_id", familyID)
		return nil, apperrors.ErrRefreshTokenReused
	}

	return nil, apperrors.ErrInvalidRefreshToken
}

func (s *AuthService) rotate(ctx context.Context, familyID string, storedData *cache.RefreshTokenData) (*models.RefreshResponse, error) {
	user, err := s.familyOwner(ctx, familyID, storedData.UserID)
	if err != nil {
		return nil, err
	}

	next, err := s.tokenGenerator.Rotate(familyID)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwtManager.GenerateToken(principalOf(user))
	if err != nil {
		return nil, err
	}

	if err := s.tokenStore.Rotate(ctx, familyID, next.Hash, s.refreshTokenTTL); err != nil {
		if errors.Is(err, apperrors.ErrRefreshFamilyMissing) {
			return nil, apperrors.ErrInvalidRefreshToken
		}
		return nil, err
	}

	return &models.RefreshResponse{
		AccessToken:  accessToken,
		RefreshToken: next.Value,
		TokenType:    models.TokenTypeBearer,
		ExpiresIn:    int(s.accessTokenTTL.Seconds()),
	}, nil
}

// familyOwner loads the parent a refresh family belongs to. A family whose
// account is gone is revoked.
func (s *AuthService) familyOwner(ctx context.Context, familyID, userID string) (*models.User, error) {
	id, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		_ = s.tokenStore.Delete(ctx, familyID)
		return nil, apperrors.ErrInvalidRefreshToken
	}
	user, err := s.userRepo.FindByID(ctx, id)
	if errors.Is(err, apperrors.ErrUserNotFound) {
		_ = s.tokenStore.Delete(ctx, familyID)
		return nil, apperrors.ErrInvalidRefreshToken
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

// Logout revokes the family of the given refresh token. It is idempotent.
func (s *AuthService) Logout(ctx context.Context, req *models.LogoutRequest) error {
	familyID, err := s.tokenGenerator.Parse(req.RefreshToken)
	if err != nil {
		return nil
	}
	_ = s.tokenStore.Delete(ctx, familyID)
	return nil
}

// LogoutAll revokes every refresh token family of a user.
func (s *AuthService) LogoutAll(ctx context.Context, userID primitive.ObjectID) error {
	return s.tokenStore.DeleteAllByUserID(ctx, userID.Hex())
}

func (s *AuthService) generateAuthResponse(ctx context.Context, user *models.User) (*models.AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateToken(principalOf(user))
	if err != nil {
		return nil, err
	}

	refresh, err := s.tokenGenerator.Issue()
	if err != nil {
		return nil, err
	}

	now := s.now()
	tokenData := &cache.RefreshTokenData{
		UserID:           user.ID.Hex(),
		CurrentTokenHash: refresh.Hash,
		ExpiresAt:        now.Add(s.refreshTokenTTL),
		CreatedAt:        now,
	}
	if err := s.tokenStore.Create(ctx, refresh.FamilyID, tokenData, s.refreshTokenTTL); err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refresh.Value,
		TokenType:    models.TokenTypeBearer,
		ExpiresIn:    int(s.accessTokenTTL.Seconds()),
		User:         *user,
	}, nil
}

func principalOf(user *models.User) auth.Principal {
	return auth.Principal{
		UserID:           user.ID.Hex(),
		RecordingConsent: user.RecordingConsent,
		ChildAge:         user.ChildAge,
	}
}
