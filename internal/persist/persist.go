// Package persist defines the opaque key-value contract the tree is flushed to.
package persist

import (
	"context"
	"encoding/json"
	"sync"
)

// Storage keys for the two collections.
const (
	KeyLinks  = "linktree-links"
	KeyGroups = "linktree-groups"
)

// Adapter reads and writes JSON documents by key.
// A missing key is reported with ok=false and no error.
type Adapter interface {
	Read(ctx context.Context, key string) (json.RawMessage, bool, error)
	Write(ctx context.Context, key string, value json.RawMessage) error
}

// Memory is an in-process Adapter. Its content is lost on restart.
type Memory struct {
	mu   sync.RWMutex
	data map[string]json.RawMessage
}

// NewMemory returns an empty Memory adapter.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]json.RawMessage)}
}

func (m *Memory) Read(_ context.Context, key string) (json.RawMessage, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *Memory) Write(_ context.Context, key string, value json.RawMessage) error {
	buf := make(json.RawMessage, len(value))
	copy(buf, value)

	m.mu.Lock()
	m.data[key] = buf
	m.mu.Unlock()
	return nil
}
