package offline

import (
	"context"
	"sort"
	"sync"
)

// Entry is a cached response under its key.
type Entry struct {
	Key      string
	Response *Response
}

// Cache is one named request/response store.
type Cache interface {
	Match(ctx context.Context, key string) (*Response, bool, error)
	Put(ctx context.Context, key string, resp *Response) error
	Delete(ctx context.Context, key string) (bool, error)
	Entries(ctx context.Context) ([]Entry, error)
}

// CacheStorage is the set of named caches, like the browser's CacheStorage.
type CacheStorage interface {
	Open(ctx context.Context, name string) (Cache, error)
	Keys(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) (bool, error)
}

// MemoryStorage keeps caches in process memory.
type MemoryStorage struct {
	mu     sync.Mutex
	caches map[string]*memoryCache
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{caches: make(map[string]*memoryCache)}
}

func (s *MemoryStorage) Open(_ context.Context, name string) (Cache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.caches[name]
	if !ok {
		c = &memoryCache{entries: make(map[string]*Response)}
		s.caches[name] = c
	}
	return c, nil
}

func (s *MemoryStorage) Keys(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.caches))
	for name := range s.caches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemoryStorage) Delete(_ context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.caches[name]; !ok {
		return false, nil
	}
	delete(s.caches, name)
	return true, nil
}

type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]*Response
}

func (c *memoryCache) Match(_ context.Context, key string) (*Response, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	r, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	return r.Clone(), true, nil
}

func (c *memoryCache) Put(_ context.Context, key string, resp *Response) error {
	stored := resp.Clone()
	stored.Source = ""

	c.mu.Lock()
	c.entries[key] = stored
	c.mu.Unlock()
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; !ok {
		return false, nil
	}
	delete(c.entries, key)
	return true, nil
}

func (c *memoryCache) Entries(_ context.Context) ([]Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Entry, 0, len(c.entries))
	for k, r := range c.entries {
		out = append(out, Entry{Key: k, Response: r.Clone()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
