// Package session stores mention value tables in Redis, one hash per viewing session.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"contractview/internal/render"
)

var ErrInvalidSessionID = errors.New("invalid session id")

// RedisStore keeps each session's mention overrides under mentions:<sessionID>.
// The table outlives any single render, so swapping documents keeps the values.
type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisStore creates a new Redis-backed session store
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, ttl), nil
}

// NewRedisStoreWithClient creates a store from an existing Redis client
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{
		client: client,
		prefix: "mentions:",
		ttl:    ttl,
	}
}

func (s *RedisStore) key(sessionID string) string {
	return s.prefix + sessionID
}

// ValidateSessionID accepts short opaque identifiers without whitespace or key separators.
func ValidateSessionID(sessionID string) error {
	if sessionID == "" || len(sessionID) > 128 || strings.ContainsAny(sessionID, " \t\r\n:*") {
		return fmt.Errorf("%w: %q", ErrInvalidSessionID, sessionID)
	}
	return nil
}

// Values snapshots the session's table. An unknown session yields an empty table.
func (s *RedisStore) Values(ctx context.Context, sessionID string) (render.Table, error) {
	if err := ValidateSessionID(sessionID); err != nil {
		return nil, err
	}
	values, err := s.client.HGetAll(ctx, s.key(sessionID)).Result()
	if err != nil {
		return nil, fmt.Errorf("load mention values: %w", err)
	}
	return render.Table(values), nil
}

// SetValue records an override for one mention and refreshes the session TTL.
func (s *RedisStore) SetValue(ctx context.Context, sessionID, mentionID, value string) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}
	if mentionID == "" {
		return fmt.Errorf("set mention value: empty mention id")
	}
	key := s.key(sessionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, mentionID, value)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set mention value: %w", err)
	}
	return nil
}

// DeleteValue removes an override so the mention falls back to its default.
func (s *RedisStore) DeleteValue(ctx context.Context, sessionID, mentionID string) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}
	if err := s.client.HDel(ctx, s.key(sessionID), mentionID).Err(); err != nil {
		return fmt.Errorf("delete mention value: %w", err)
	}
	return nil
}

// Clear drops the whole table for a session.
func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := ValidateSessionID(sessionID); err != nil {
		return err
	}
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("clear mention values: %w", err)
	}
	return nil
}

// Close closes the Redis connection
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping checks if Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
