package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store persists linktree collections and offline caches in Redis
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// Read returns the JSON document stored under key.
func (s *Store) Read(ctx context.Context, key string) (json.RawMessage, bool, error) {
	data, err := s.client.Get(ctx, KVKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return json.RawMessage(data), true, nil
}

// Write stores value under key without expiry. Last write wins.
func (s *Store) Write(ctx context.Context, key string, value json.RawMessage) error {
	if err := s.client.Set(ctx, KVKey(key), []byte(value), 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// Ping checks the connection, used by readiness probes.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
