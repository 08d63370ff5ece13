package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	apperrors "phonics-coach/internal/errors"

	"github.com/redis/go-redis/v9"
)

// RefreshTokenData is one refresh token family: the account it belongs to
// and the hashes of its current and immediately previous token.
type RefreshTokenData struct {
	UserID            string    `json:"user_id"`
	CurrentTokenHash  string    `json:"current_token_hash"`
	PreviousTokenHash string    `json:"previous_token_hash,omitempty"`
	ExpiresAt         time.Time `json:"expires_at"`
	CreatedAt         time.Time `json:"created_at"`
}

// RefreshTokenStore keeps refresh token families for rotation and reuse
// detection.
type RefreshTokenStore interface {
	Create(ctx context.Context, familyID string, data *RefreshTokenData, ttl time.Duration) error
	// Get returns nil data for an unknown family.
	Get(ctx context.Context, familyID string) (*RefreshTokenData, error)
	// Rotate makes newTokenHash current and the old current hash previous.
	Rotate(ctx context.Context, familyID string, newTokenHash string, ttl time.Duration) error
	Delete(ctx context.Context, familyID string) error
	// DeleteAllByUserID signs an account out everywhere.
	DeleteAllByUserID(ctx context.Context, userID string) error
}

type refreshTokenStore struct {
	cache  Cache
	client *redis.Client
}

// NewRefreshTokenStore creates a RefreshTokenStore. When c also implements
// RedisClientProvider, rotation is atomic and families are indexed per user.
func NewRefreshTokenStore(c Cache) RefreshTokenStore {
	s := &refreshTokenStore{cache: c}
	if p, ok := c.(RedisClientProvider); ok {
		s.client = p.Client()
	}
	return s
}

func refreshFamilyKey(familyID string) string {
	return fmt.Sprintf("auth:refresh_family:%s", familyID)
}

func userFamiliesKey(userID string) string {
	return fmt.Sprintf("auth:user_families:%s", userID)
}

func (s *refreshTokenStore) Create(ctx context.Context, familyID string, data *RefreshTokenData, ttl time.Duration) error {
	if err := s.cache.Set(ctx, refreshFamilyKey(familyID), data, ttl); err != nil {
		return err
	}
	if s.client == nil {
		return nil
	}

	idx := userFamiliesKey(data.UserID)
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, idx, familyID)
	pipe.Expire(ctx, idx, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index refresh family: %w", err)
	}
	return nil
}

func (s *refreshTokenStore) Get(ctx context.Context, familyID string) (*RefreshTokenData, error) {
	var data RefreshTokenData
	found, err := s.cache.Get(ctx, refreshFamilyKey(familyID), &data)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &data, nil
}

// rotateScript shifts current to previous and stores the new hash in one step.
var rotateScript = redis.NewScript(`
local data = redis.call('GET', KEYS[1])
if not data then
    return redis.error_reply("family_missing")
end
local decoded = cjson.decode(data)
decoded.previous_token_hash = decoded.current_token_hash
decoded.current_token_hash = ARGV[1]
redis.call('SET', KEYS[1], cjson.encode(decoded), 'EX', tonumber(ARGV[2]))
return "OK"
`)

func (s *refreshTokenStore) Rotate(ctx context.Context, familyID string, newTokenHash string, ttl time.Duration) error {
	if s.client == nil {
		return s.rotateNonAtomic(ctx, familyID, newTokenHash, ttl)
	}

	err := rotateScript.Run(ctx, s.client, []string{refreshFamilyKey(familyID)}, newTokenHash, int(ttl.Seconds())).Err()
	if err != nil {
		if strings.Contains(err.Error(), "family_missing") {
			return apperrors.ErrRefreshFamilyMissing
		}
		return fmt.Errorf("rotate refresh family: %w", err)
	}
	return nil
}

// rotateNonAtomic serves caches without a raw Redis client, such as mocks.
func (s *refreshTokenStore) rotateNonAtomic(ctx context.Context, familyID string, newTokenHash string, ttl time.Duration) error {
	data, err := s.Get(ctx, familyID)
	if err != nil {
		return err
	}
	if data == nil {
		return apperrors.ErrRefreshFamilyMissing
	}

	data.PreviousTokenHash = data.CurrentTokenHash
	data.CurrentTokenHash = newTokenHash
	return s.cache.Set(ctx, refreshFamilyKey(familyID), data, ttl)
}

func (s *refreshTokenStore) Delete(ctx context.Context, familyID string) error {
	return s.cache.Delete(ctx, refreshFamilyKey(familyID))
}

func (s *refreshTokenStore) DeleteAllByUserID(ctx context.Context, userID string) error {
	if s.client == nil {
		return nil
	}

	idx := userFamiliesKey(userID)
	families, err := s.client.SMembers(ctx, idx).Result()
	if err != nil {
		return fmt.Errorf("list refresh families: %w", err)
	}

	keys := make([]string, 0, len(families)+1)
	for _, f := range families {
		keys = append(keys, refreshFamilyKey(f))
	}
	keys = append(keys, idx)
	return s.client.Del(ctx, keys...).Err()
}
