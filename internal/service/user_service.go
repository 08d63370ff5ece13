package service

import (
	"context"
	"time"

	"phonics-coach/internal/cache"
	"phonics-coach/internal/models"
	"phonics-coach/internal/repository"
	"phonics-coach/internal/storage"
	"phonics-coach/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const userCacheTTL = 15 * time.Minute

// UserService manages the signed-in parent's profile.
type UserService struct {
	repo     repository.UserRepository
	attempts repository.AttemptRepository
	storage  storage.Storage
	tokens   cache.RefreshTokenStore
	cache    cache.Cache
}

// UserServiceConfig holds the dependencies of UserService. Storage may be
// nil when audio archiving is disabled.
type UserServiceConfig struct {
	Repo       repository.UserRepository
	Attempts   repository.AttemptRepository
	Storage    storage.Storage
	TokenStore cache.RefreshTokenStore
	Cache      cache.Cache
}

// NewUserService creates a new UserService.
func NewUserService(cfg UserServiceConfig) *UserService {
	return &UserService{
		repo:     cfg.Repo,
		attempts: cfg.Attempts,
		storage:  cfg.Storage,
		tokens:   cfg.TokenStore,
		cache:    cfg.Cache,
	}
}

// GetMe retrieves a parent account, served from cache when possible.
func (s *UserService) GetMe(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	cacheKey := cache.UserCacheKey(id.Hex())
	if s.cache != nil {
		var user models.User
		found, err := s.cache.Get(ctx, cacheKey, &user)
		if err == nil && found {
			return &user, nil
		}
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// cache is best effort
	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, user, userCacheTTL)
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of req.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, req *models.UpdateUserRequest) (*models.User, error) {
	user, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, id)
	if req.RecordingConsent != nil {
		logger.L().Info("recording_consent_changed", "user_id", id.Hex(), "consent", *req.RecordingConsent)
	}
	return user, nil
}

// DeleteAccount removes a parent together with their archived attempts,
// recorded audio and sign-ins.
func (s *UserService) DeleteAccount(ctx context.Context, id primitive.ObjectID) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}

	keys, err := s.attempts.DeleteByUserID(ctx, id)
	if err != nil {
		return err
	}

	if s.storage != nil {
		for _, key := range keys {
			if err := s.storage.DeleteObject(ctx, key); err != nil {
				logger.L().Warn("attempt_audio_delete_failed", "user_id", id.Hex(), "key", key, "error", err)
			}
		}
	}

	if err := s.tokens.DeleteAllByUserID(ctx, id.Hex()); err != nil {
		logger.L().Warn("refresh_tokens_delete_failed", "user_id", id.Hex(), "error", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidate(ctx, id)
	logger.L().Info("user_deleted", "user_id", id.Hex(), "attempt_audio", len(keys))
	return nil
}

// RecordingAllowed reports whether the parent consented to recordings.
func (s *UserService) RecordingAllowed(ctx context.Context, id primitive.ObjectID) bool {
	user, err := s.GetMe(ctx, id)
	if err != nil {
		logger.L().Warn("recording_consent_lookup_failed", "user_id", id.Hex(), "error", err)
		return false
	}
	return user.RecordingConsent
}

func (s *UserService) invalidate(ctx context.Context, id primitive.ObjectID) {
	if s.cache != nil {
		_ = s.cache.Delete(ctx, cache.UserCacheKey(id.Hex()))
	}
}
