package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/MrSnakeDoc/linktree/internal/offline"
	"github.com/redis/go-redis/v9"
)

// CacheStorage keeps offline caches in Redis so they survive restarts.
// Each cache is a hash keyed by request URL; the set of names is tracked
// separately so Keys does not need to scan.
type CacheStorage struct {
	client *redis.Client
}

// NewCacheStorage returns a Redis-backed offline.CacheStorage.
func NewCacheStorage(client *redis.Client) *CacheStorage {
	return &CacheStorage{client: client}
}

func (s *CacheStorage) Open(ctx context.Context, name string) (offline.Cache, error) {
	if err := s.client.SAdd(ctx, CacheNamesKey(), name).Err(); err != nil {
		return nil, fmt.Errorf("failed to register cache %s: %w", name, err)
	}
	return &cache{client: s.client, key: CacheKey(name)}, nil
}

func (s *CacheStorage) Keys(ctx context.Context) ([]string, error) {
	names, err := s.client.SMembers(ctx, CacheNamesKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list caches: %w", err)
	}
	sort.Strings(names)
	return names, nil
}

func (s *CacheStorage) Delete(ctx context.Context, name string) (bool, error) {
	var removed *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, CacheKey(name))
		removed = pipe.SRem(ctx, CacheNamesKey(), name)
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to delete cache %s: %w", name, err)
	}
	return removed.Val() > 0, nil
}

type cache struct {
	client *redis.Client
	key    string
}

func (c *cache) Match(ctx context.Context, url string) (*offline.Response, bool, error) {
	data, err := c.client.HGet(ctx, c.key, url).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil // Cache miss
		}
		return nil, false, fmt.Errorf("failed to read cached response: %w", err)
	}

	var resp offline.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal cached response: %w", err)
	}
	return &resp, true, nil
}

func (c *cache) Put(ctx context.Context, url string, resp *offline.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}
	if err := c.client.HSet(ctx, c.key, url, data).Err(); err != nil {
		return fmt.Errorf("failed to cache response: %w", err)
	}
	return nil
}

func (c *cache) Delete(ctx context.Context, url string) (bool, error) {
	n, err := c.client.HDel(ctx, c.key, url).Result()
	if err != nil {
		return false, fmt.Errorf("failed to evict cached response: %w", err)
	}
	return n > 0, nil
}

func (c *cache) Entries(ctx context.Context) ([]offline.Entry, error) {
	all, err := c.client.HGetAll(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list cached responses: %w", err)
	}

	entries := make([]offline.Entry, 0, len(all))
	for url, raw := range all {
		var resp offline.Response
		if err := json.Unmarshal([]byte(raw), &resp); err != nil {
			// Skip entries that can no longer be decoded
			continue
		}
		entries = append(entries, offline.Entry{Key: url, Response: &resp})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}
