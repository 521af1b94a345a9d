package redis

import (
	"context"
	"time"

	customErrors "github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/errors"
	"github.com/Miraines/MoonyAndStarry/board-service/internal/domain/auth/repo"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "refresh:"

// RedisRefreshRegistry stores one value-less key per live refresh token; the
// key TTL matches the token expiry, so expired entries disappear on their own.
type RedisRefreshRegistry struct {
	client *redis.Client
}

func NewRedisRefreshRegistry(client *redis.Client) *RedisRefreshRegistry {
	return &RedisRefreshRegistry{
		client: client,
	}
}

func key(userID, tokenID string) string {
	return keyPrefix + repo.RegistryKey(userID, tokenID)
}

func (r *RedisRefreshRegistry) Insert(ctx context.Context, userID, tokenID string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, key(userID, tokenID), 1, ttl).Err()
}

func (r *RedisRefreshRegistry) Validate(ctx context.Context, userID, tokenID string) error {
	n, err := r.client.Exists(ctx, key(userID, tokenID)).Result()
	if err != nil {
		return customErrors.WrapInternal(err, "registry validate")
	}
	if n == 0 {
		return customErrors.ErrInvalidToken
	}
	return nil
}

func (r *RedisRefreshRegistry) Invalidate(ctx context.Context, userID, tokenID string) error {
	if err := r.client.Del(ctx, key(userID, tokenID)).Err(); err != nil {
		return customErrors.WrapInternal(err, "registry invalidate")
	}
	return nil
}

// Consume relies on DEL being atomic: only the caller that actually removed
// the key sees a count of one.
func (r *RedisRefreshRegistry) Consume(ctx context.Context, userID, tokenID string) error {
	n, err := r.client.Del(ctx, key(userID, tokenID)).Result()
	if err != nil {
		return customErrors.WrapInternal(err, "registry consume")
	}
	if n == 0 {
		return customErrors.ErrInvalidToken
	}
	return nil
}
