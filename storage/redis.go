package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const submissionKeyPrefix = "reportview:submission:"

// RedisTracker stores the current submission token of each session in Redis
// so that replicas behind a load balancer agree on which request is newest.
type RedisTracker struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisTracker creates a tracker whose keys expire after ttl.
func NewRedisTracker(client *redis.Client, ttl time.Duration) *RedisTracker {
	return &RedisTracker{client: client, ttl: ttl}
}

// NewRedisClient connects to addr and checks the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

func (t *RedisTracker) key(session string) string {
	return submissionKeyPrefix + session
}

// Begin issues a new token for session, superseding the previous one.
func (t *RedisTracker) Begin(ctx context.Context, session string) (string, error) {
	token := uuid.NewString()
	if err := t.client.SetEx(ctx, t.key(session), token, t.ttl).Err(); err != nil {
		return "", fmt.Errorf("failed to store submission token: %w", err)
	}
	return token, nil
}

// IsCurrent reports whether token is the latest one issued for session.
// An expired key means nobody superseded the submission.
func (t *RedisTracker) IsCurrent(ctx context.Context, session, token string) (bool, error) {
	current, err := t.client.Get(ctx, t.key(session)).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read submission token: %w", err)
	}
	return current == token, nil
}

// Forget removes the session's token.
func (t *RedisTracker) Forget(ctx context.Context, session string) error {
	return t.client.Del(ctx, t.key(session)).Err()
}

func (t *RedisTracker) Ping(ctx context.Context) error {
	return t.client.Ping(ctx).Err()
}
