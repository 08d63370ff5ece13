package pronunciation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"phonics-coach/internal/audio"
	"phonics-coach/internal/cache"
	apperrors "phonics-coach/internal/errors"
	"phonics-coach/internal/metrics"
	"phonics-coach/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// DefaultCacheTTL keeps synthesized audio for a week. The word bank is
// static, so entries only age out to pick up voice or model changes.
const DefaultCacheTTL = 7 * 24 * time.Hour

// Service returns reference audio for words, synthesizing each word once and
// caching the result. Concurrent requests for the same word share one
// synthesis call.
type Service struct {
	synth Synthesizer
	cache cache.Cache
	ttl   time.Duration
	group singleflight.Group
}

// NewService creates a Service. synth may be nil when no speech endpoint is
// configured; c may be nil to disable caching.
func NewService(synth Synthesizer, c cache.Cache, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &Service{synth: synth, cache: c, ttl: ttl}
}

// Enabled reports whether audio can be produced at all.
func (s *Service) Enabled() bool {
	return s.synth != nil
}

// Pronounce returns WAV audio of word. Failures wrap
// apperrors.ErrPronunciationFailed.
func (s *Service) Pronounce(ctx context.Context, word string) ([]byte, error) {
	if s.synth == nil {
		metrics.RecordPronunciation("disabled")
		return nil, apperrors.ErrPronunciationFailed
	}

	key := cache.PronunciationCacheKey(word, s.synth.Voice())
	if data, ok := s.cached(ctx, key); ok {
		metrics.RecordPronunciation("cache")
		return data, nil
	}

	v, err, shared := s.group.Do(key, func() (interface{}, error) {
		data, err := s.synth.Synthesize(ctx, word)
		if err != nil {
			return nil, err
		}
		if _, err := audio.Inspect(data); err != nil {
			return nil, err
		}
		s.store(ctx, key, data)
		return data, nil
	})
	if err != nil {
		metrics.RecordPronunciation("error")
		logger.L().Warn("pronunciation_failed", "word", word, "error", err)
		return nil, fmt.Errorf("%w: %v", apperrors.ErrPronunciationFailed, err)
	}

	if shared {
		metrics.RecordPronunciation("shared")
	} else {
		metrics.RecordPronunciation("synthesized")
	}
	return v.([]byte), nil
}

func (s *Service) cached(ctx context.Context, key string) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	var data []byte
	found, err := s.cache.Get(ctx, key, &data)
	if err != nil {
		logger.L().Warn("pronunciation_cache_get_failed", "key", key, "error", err)
		return nil, false
	}
	if !found || len(data) == 0 {
		return nil, false
	}
	return data, true
}

func (s *Service) store(ctx context.Context, key string, data []byte) {
	if s.cache == nil {
		return
	}
	// a cancelled caller should not stop the shared result from being cached
	if err := s.cache.Set(context.WithoutCancel(ctx), key, data, s.ttl); err != nil {
		logger.L().Warn("pronunciation_cache_set_failed", "key", key, "error", err)
	}
}

// IsUnavailable reports whether err means no audio could be produced.
func IsUnavailable(err error) bool {
	return errors.Is(err, apperrors.ErrPronunciationFailed)
}
