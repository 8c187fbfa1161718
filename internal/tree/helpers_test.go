package tree

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/domain"
	"github.com/MrSnakeDoc/linktree/internal/logger"
	"github.com/MrSnakeDoc/linktree/internal/persist"
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// recordingSyncer remembers every requested topic.
type recordingSyncer struct {
	mu     sync.Mutex
	topics []string
}

func (r *recordingSyncer) RequestSync(topic string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
}

func (r *recordingSyncer) take() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.topics
	r.topics = nil
	return out
}

// failingAdapter wraps Memory and fails writes to the keys listed in failOn.
type failingAdapter struct {
	*persist.Memory
	failOn map[string]bool
}

func (f *failingAdapter) Write(ctx context.Context, key string, value json.RawMessage) error {
	if f.failOn[key] {
		return errors.New("disk full")
	}
	return f.Memory.Write(ctx, key, value)
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestStore(t *testing.T, adapter persist.Adapter) (*Store, *recordingSyncer) {
	t.Helper()
	if adapter == nil {
		adapter = persist.NewMemory()
	}
	rec := &recordingSyncer{}
	s := New(adapter, logger.Nop(),
		WithClock(func() time.Time { return fixedNow }),
		WithIDGenerator(sequentialIDs()),
		WithSyncRequester(rec),
	)
	return s, rec
}

func mustAddGroup(t *testing.T, s *Store, name, parent string) domain.Group {
	t.Helper()
	g, err := s.AddGroup(context.Background(), domain.GroupInput{Name: name}, parent)
	if err != nil {
		t.Fatalf("AddGroup(%s): %v", name, err)
	}
	return g
}

func mustAddLink(t *testing.T, s *Store, title, url, group string) domain.Link {
	t.Helper()
	l, err := s.AddLink(context.Background(), domain.LinkInput{Title: title, URL: url, GroupID: group})
	if err != nil {
		t.Fatalf("AddLink(%s): %v", title, err)
	}
	return l
}

// checkInvariants fails the test if the forest or referential rules are broken.
func checkInvariants(t *testing.T, s *Store) {
	t.Helper()

	groups := map[string]domain.Group{}
	for _, g := range s.Groups() {
		if _, dup := groups[g.ID]; dup {
			t.Fatalf("duplicate group id %s", g.ID)
		}
		groups[g.ID] = g
	}

	for _, g := range groups {
		if g.ParentGroupID != "" {
			if _, ok := groups[g.ParentGroupID]; !ok {
				t.Fatalf("group %s has dangling parent %s", g.ID, g.ParentGroupID)
			}
		}
		// Walking up must terminate within len(groups) steps.
		cur, steps := g.ParentGroupID, 0
		for cur != "" {
			steps++
			if steps > len(groups) {
				t.Fatalf("cycle detected through group %s", g.ID)
			}
			cur = groups[cur].ParentGroupID
		}
	}

	seen := map[string]bool{}
	for _, l := range s.Links() {
		if seen[l.ID] {
			t.Fatalf("duplicate link id %s", l.ID)
		}
		seen[l.ID] = true
		if l.GroupID != "" {
			if _, ok := groups[l.GroupID]; !ok {
				t.Fatalf("link %s has dangling group %s", l.ID, l.GroupID)
			}
		}
	}
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
