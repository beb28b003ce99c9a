package mem

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "tourbook:reset:"

// RedisResetTokens shares reset tokens between API replicas. Expiry is left to Redis.
type RedisResetTokens struct {
	client *redis.Client
}

func NewRedisResetTokens(client *redis.Client) *RedisResetTokens {
	return &RedisResetTokens{client: client}
}

func (s *RedisResetTokens) Set(ctx context.Context, token string, accountEmail string, ttl time.Duration) error {
	if err := s.client.Set(ctx, redisKeyPrefix+tokenKey(token), accountEmail, ttl).Err(); err != nil {
		return fmt.Errorf("reset tokens: set: %w", err)
	}
	return nil
}

// Consume uses GETDEL so two concurrent resets cannot both redeem one token.
func (s *RedisResetTokens) Consume(ctx context.Context, token string) (string, error) {
	email, err := s.client.GetDel(ctx, redisKeyPrefix+tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reset tokens: consume: %w", err)
	}
	return email, nil
}
