package sessioncache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/avolkov/campus/internal/apperrors"
	"github.com/avolkov/campus/internal/models"
)

const keyPrefix = "session:"

type RedisCache struct {
	client *redis.Client
}

// Connect dials redis and verifies the connection with a ping, so a
// misconfigured cache fails at startup instead of on the first login
func Connect(ctx context.Context, addr string, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("cant connect to redis at %s. Err: %w", addr, err)
	}

	return &RedisCache{client: client}, nil
}

// NewRedisCache wraps an already connected client (used in tests)
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func key(userID uuid.UUID) string {
	return keyPrefix + userID.String()
}

func (c *RedisCache) Get(ctx context.Context, userID uuid.UUID) (models.PublicUser, error) {
	var user models.PublicUser

	val, err := c.client.Get(ctx, key(userID)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return user, apperrors.ErrSessionNotFound
	case err != nil:
		return user, fmt.Errorf("%w: %w", apperrors.ErrSessionStoreUnavailable, err)
	}

	if err := json.Unmarshal([]byte(val), &user); err != nil {
		// A snapshot we can't decode is as good as no session
		return user, apperrors.ErrSessionNotFound
	}

	return user, nil
}

func (c *RedisCache) Set(ctx context.Context, user models.PublicUser, ttl time.Duration) error {
	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("cant marshal session snapshot. Err: %w", err)
	}

	if err := c.client.Set(ctx, key(user.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrSessionStoreUnavailable, err)
	}

	return nil
}

func (c *RedisCache) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrSessionStoreUnavailable, err)
	}

	return nil
}
