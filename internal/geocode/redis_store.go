package geocode

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	redisKeyPrefix = "gigpilot:area:"

	// DefaultRedisTTL bounds how long a shared area name is trusted.
	DefaultRedisTTL = 24 * time.Hour
)

// RedisStore is a shared Store backed by Redis. Every Redis error is a miss.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger zerolog.Logger
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration, logger zerolog.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool) {
	v, err := s.client.Get(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn().Err(err).Str("key", key).Msg("area cache read failed")
		}
		return "", false
	}
	return v, true
}

// Put implements Store.
func (s *RedisStore) Put(ctx context.Context, key, value string) {
	if err := s.client.Set(ctx, redisKeyPrefix+key, value, s.ttl).Err(); err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("area cache write failed")
	}
}
