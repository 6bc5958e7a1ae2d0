package session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"glowbook/internal/config"
	"glowbook/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisCache keeps holds and drafts in redis with kind-specific TTLs, so
// expiry is enforced by the store itself.
type RedisCache struct {
	client *redis.Client
}

// NewRedisClient builds a redis client from config.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func holdKey(sessionID string) string  { return "hold:" + sessionID }
func draftKey(sessionID string) string { return "draft:" + sessionID }

func (c *RedisCache) GetHold(ctx context.Context, sessionID string) (*models.Hold, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := c.client.Get(ctx, holdKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hold from redis: %w", err)
	}

	var hold models.Hold
	if err := json.Unmarshal([]byte(val), &hold); err != nil {
		return nil, fmt.Errorf("failed to unmarshal hold: %w", err)
	}
	if hold.Expired(time.Now()) {
		return nil, nil
	}
	return &hold, nil
}

func (c *RedisCache) SetHold(ctx context.Context, hold *models.Hold) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(hold)
	if err != nil {
		return fmt.Errorf("failed to marshal hold: %w", err)
	}

	ttl := time.Until(hold.ExpiresAt)
	if ttl <= 0 {
		return c.client.Del(ctx, holdKey(hold.SessionID)).Err()
	}
	if err := c.client.Set(ctx, holdKey(hold.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set hold in redis: %w", err)
	}
	return nil
}

func (c *RedisCache) DeleteHold(ctx context.Context, sessionID string) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Del(ctx, holdKey(sessionID)).Err()
}

func (c *RedisCache) GetDraft(ctx context.Context, sessionID string) (*models.BookingDraft, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	val, err := c.client.Get(ctx, draftKey(sessionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get draft from redis: %w", err)
	}

	var draft models.BookingDraft
	if err := json.Unmarshal([]byte(val), &draft); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	if draft.Expired(time.Now()) {
		return nil, nil
	}
	return &draft, nil
}

func (c *RedisCache) SetDraft(ctx context.Context, draft *models.BookingDraft) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}

	ttl := time.Until(draft.ExpiresAt)
	if ttl <= 0 {
		return c.client.Del(ctx, draftKey(draft.SessionID)).Err()
	}
	if err := c.client.Set(ctx, draftKey(draft.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set draft in redis: %w", err)
	}
	return nil
}

func (c *RedisCache) DeleteDraft(ctx context.Context, sessionID string) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Del(ctx, draftKey(sessionID)).Err()
}
