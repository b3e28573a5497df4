package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jonesrussell/north-cloud/curator/internal/domain"
	"github.com/jonesrussell/north-cloud/curator/internal/logger"
)

const (
	// DefaultCacheTTL bounds staleness after out-of-band edits.
	DefaultCacheTTL = 5 * time.Minute

	cacheKeyPrefix = "curator:feed_config:"
)

// CachedStore layers read-through Redis caching over a ConfigStore.
// Writes go to the backing store first and then invalidate; a cache
// failure never fails the operation, it only costs a backing read.
type CachedStore struct {
	backing ConfigStore
	client  *redis.Client
	ttl     time.Duration
	logger  logger.Logger
}

// NewCachedStore wraps a backing store with Redis caching. A zero TTL
// takes the default.
func NewCachedStore(backing ConfigStore, client *redis.Client, ttl time.Duration, log logger.Logger) *CachedStore {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedStore{backing: backing, client: client, ttl: ttl, logger: log}
}

var _ ConfigStore = (*CachedStore)(nil)

// Create stores the config and primes the cache.
func (s *CachedStore) Create(ctx context.Context, cfg *domain.FeedConfig) error {
	if err := s.backing.Create(ctx, cfg); err != nil {
		return err
	}
	s.put(ctx, cfg)
	return nil
}

// Get returns the cached config when present, falling back to the
// backing store and priming the cache on a miss.
func (s *CachedStore) Get(ctx context.Context, id string) (*domain.FeedConfig, error) {
	raw, err := s.client.Get(ctx, cacheKey(id)).Result()
	if err == nil {
		var cfg domain.FeedConfig
		if unmarshalErr := json.Unmarshal([]byte(raw), &cfg); unmarshalErr == nil {
			return &cfg, nil
		}
		// Corrupt entry; drop it and fall through to the backing store.
		s.drop(ctx, id)
	} else if !errors.Is(err, redis.Nil) {
		s.logger.Warn("config cache read failed",
			logger.String("feed_id", id),
			logger.Error(err))
	}

	cfg, err := s.backing.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.put(ctx, cfg)
	return cfg, nil
}

// List always reads the backing store; the listing is not cached.
func (s *CachedStore) List(ctx context.Context) ([]domain.FeedConfig, error) {
	return s.backing.List(ctx)
}

// Update writes through and refreshes the cached entry.
func (s *CachedStore) Update(ctx context.Context, cfg *domain.FeedConfig) error {
	if err := s.backing.Update(ctx, cfg); err != nil {
		return err
	}
	s.put(ctx, cfg)
	return nil
}

// Delete removes the config and drops the cached entry.
func (s *CachedStore) Delete(ctx context.Context, id string) error {
	if err := s.backing.Delete(ctx, id); err != nil {
		return err
	}
	s.drop(ctx, id)
	return nil
}

func (s *CachedStore) put(ctx context.Context, cfg *domain.FeedConfig) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		s.logger.Warn("config cache marshal failed",
			logger.String("feed_id", cfg.ID),
			logger.Error(err))
		return
	}
	if err := s.client.Set(ctx, cacheKey(cfg.ID), raw, s.ttl).Err(); err != nil {
		s.logger.Warn("config cache write failed",
			logger.String("feed_id", cfg.ID),
			logger.Error(err))
	}
}

func (s *CachedStore) drop(ctx context.Context, id string) {
	if err := s.client.Del(ctx, cacheKey(id)).Err(); err != nil {
		s.logger.Warn("config cache invalidation failed",
			logger.String("feed_id", id),
			logger.Error(err))
	}
}

func cacheKey(id string) string {
	return fmt.Sprintf("%s%s", cacheKeyPrefix, id)
}
