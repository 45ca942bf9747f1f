package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DedupeStore remembers which dedupe keys a browser session already used.
type DedupeStore interface {
	// Claim returns true for the first caller of (session, key) within ttl.
	Claim(ctx context.Context, session, key string, ttl time.Duration) (bool, error)
}

type RedisDedupeStore struct {
	rdb redis.Cmdable
}

func NewRedisDedupeStore(rdb redis.Cmdable) *RedisDedupeStore {
	return &RedisDedupeStore{rdb: rdb}
}

func DedupeKey(session, key string) string {
	return fmt.Sprintf("track:%s:%s", session, key)
}

func (s *RedisDedupeStore) Claim(ctx context.Context, session, key string, ttl time.Duration) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, DedupeKey(session, key), "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return ok, nil
}
