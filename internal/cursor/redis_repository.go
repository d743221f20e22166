package cursor

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/claytonbrgsdev/slack-translator-app/internal/constants"
)

// RedisSeenRepository claims message ids in Redis with SET NX so multiple
// relay processes sharing one channel do not double-publish.
type RedisSeenRepository struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSeenRepository(client *redis.Client, ttl time.Duration) *RedisSeenRepository {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSeenRepository{client: client, ttl: ttl}
}

func (r *RedisSeenRepository) FirstSeen(ctx context.Context, id string) (bool, error) {
	return r.client.SetNX(ctx, constants.CacheKeyPrefixSeen+id, "1", r.ttl).Result()
}
