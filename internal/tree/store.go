// Package tree holds the link/group forest and the mutation engine over it.
package tree

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/domain"
	"github.com/MrSnakeDoc/linktree/internal/logger"
	"github.com/MrSnakeDoc/linktree/internal/persist"
	"github.com/google/uuid"
)

// SyncRequester receives the topics touched by a successful mutation.
type SyncRequester interface {
	RequestSync(topic string)
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the id minting function.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

// WithSyncRequester sets the component notified after each mutation.
func WithSyncRequester(r SyncRequester) Option {
	return func(s *Store) { s.syncer = r }
}

// Store is the single source of truth for links and groups.
// Reads take the read lock; mutations are serialized and flushed to the
// adapter while the write lock is held so writes land in mutation order.
type Store struct {
	mu      sync.RWMutex
	st      *state
	adapter persist.Adapter
	syncer  SyncRequester
	log     logger.Logger

	now   func() time.Time
	newID func() string
}

// New creates an empty Store. Call Load to populate it from the adapter.
func New(adapter persist.Adapter, log logger.Logger, opts ...Option) *Store {
	s := &Store{
		st:      newState(),
		adapter: adapter,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the in-memory state with what the adapter holds.
// Unreadable documents are logged and treated as empty collections.
func (s *Store) Load(ctx context.Context) error {
	rawLinks, err := s.readKey(ctx, persist.KeyLinks)
	if err != nil {
		return err
	}
	rawGroups, err := s.readKey(ctx, persist.KeyGroups)
	if err != nil {
		return err
	}

	next, dropped := sanitize(rawLinks, rawGroups)

	s.mu.Lock()
	s.st = next
	s.mu.Unlock()

	s.log.Info("tree loaded",
		logger.Int("links", len(next.links)),
		logger.Int("groups", len(next.groups)),
		logger.Int("dropped", dropped))
	return nil
}

func (s *Store) readKey(ctx context.Context, key string) ([]json.RawMessage, error) {
	raw, ok, err := s.adapter.Read(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || len(raw) == 0 {
		return nil, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		s.log.Warn("stored collection unreadable, starting empty",
			logger.String("key", key),
			logger.Error(err))
		return nil, nil
	}
	return records, nil
}

// touched records which collections a mutation changed.
type touched struct {
	links  bool
	groups bool
}

func (t touched) any() bool { return t.links || t.groups }

// apply runs fn against a copy of the state. If fn succeeds and changed
// something, the copy is persisted and committed; otherwise the live state
// is left as it was.
func (s *Store) apply(ctx context.Context, op string, fn func(next *state) (touched, error)) error {
	s.mu.Lock()

	next := s.st.clone()
	t, err := fn(next)
	if err != nil || !t.any() {
		s.mu.Unlock()
		return err
	}

	if err := s.flush(ctx, s.st, next, t); err != nil {
		s.mu.Unlock()
		s.log.Error("mutation rolled back",
			logger.String("op", op),
			logger.Error(err))
		return err
	}
	s.st = next
	s.mu.Unlock()

	s.log.Debug("mutation applied",
		logger.String("op", op),
		logger.Bool("links", t.links),
		logger.Bool("groups", t.groups))

	s.requestSync(t)
	return nil
}

// flush writes the touched collections. If the second write fails the first
// one is restored so the adapter never holds a half-applied mutation.
func (s *Store) flush(ctx context.Context, prev, next *state, t touched) error {
	if t.links {
		if err := writeCollection(ctx, s.adapter, persist.KeyLinks, next.linkList()); err != nil {
			return err
		}
	}

	if t.groups {
		if err := writeCollection(ctx, s.adapter, persist.KeyGroups, next.groupList()); err != nil {
			if t.links {
				if rerr := writeCollection(ctx, s.adapter, persist.KeyLinks, prev.linkList()); rerr != nil {
					s.log.Error("failed to restore links after partial write", logger.Error(rerr))
				}
			}
			return err
		}
	}

	return nil
}

func writeCollection[T any](ctx context.Context, adapter persist.Adapter, key string, items []T) error {
	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := adapter.Write(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (s *Store) requestSync(t touched) {
	if s.syncer == nil {
		return
	}
	if t.links {
		s.syncer.RequestSync(domain.TopicLinks)
	}
	if t.groups {
		s.syncer.RequestSync(domain.TopicGroups)
	}
}
