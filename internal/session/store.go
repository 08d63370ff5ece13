package session

import (
	"context"
	"fmt"
	"time"

	"phonics-coach/internal/cache"
	apperrors "phonics-coach/internal/errors"
	"phonics-coach/internal/models"
)

//go:generate mockgen -destination=mocks/mock_store.go -package=mocks phonics-coach/internal/session Store

// DefaultTTL is how long an untouched session lives.
const DefaultTTL = 2 * time.Hour

// Store keeps live sessions. Sessions are ephemeral and expire when idle.
type Store interface {
	Save(ctx context.Context, s *models.Session) error
	// Get returns apperrors.ErrSessionNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
}

type cacheStore struct {
	cache cache.Cache
	ttl   time.Duration
}

// NewStore creates a Store on top of c. Every save extends the TTL.
func NewStore(c cache.Cache, ttl time.Duration) Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &cacheStore{cache: c, ttl: ttl}
}

func (s *cacheStore) Save(ctx context.Context, sess *models.Session) error {
	if err := s.cache.Set(ctx, cache.SessionCacheKey(sess.ID), sess, s.ttl); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *cacheStore) Get(ctx context.Context, id string) (*models.Session, error) {
	var sess models.Session
	found, err := s.cache.Get(ctx, cache.SessionCacheKey(id), &sess)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if !found {
		return nil, apperrors.ErrSessionNotFound
	}
	if sess.Attempts == nil {
		sess.Attempts = []models.Attempt{}
	}
	return &sess, nil
}

func (s *cacheStore) Delete(ctx context.Context, id string) error {
	return s.cache.Delete(ctx, cache.SessionCacheKey(id))
}
