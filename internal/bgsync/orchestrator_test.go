package bgsync

import (
	"errors"
	"sync"
	"testing"

	"github.com/MrSnakeDoc/linktree/internal/domain"
	"github.com/MrSnakeDoc/linktree/internal/logger"
)

type fakeCapability struct {
	mu      sync.Mutex
	tags    []string
	online  []bool
	failErr error
}

func (f *fakeCapability) RegisterSync(tag string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failErr != nil {
		return f.failErr
	}
	f.tags = append(f.tags, tag)
	return nil
}

func (f *fakeCapability) SetOnline(online bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online = append(f.online, online)
}

func TestRequestSync_WithoutCapability(t *testing.T) {
	o := New(true, logger.Nop())
	// Must not panic.
	o.RequestSync(domain.TopicLinks)
}

func TestRequestSync_RegistersTag(t *testing.T) {
	o := New(true, logger.Nop())
	c := &fakeCapability{}
	o.Attach(c)

	o.RequestSync(domain.TopicLinks)
	o.RequestSync(domain.TopicGroups)

	if len(c.tags) != 2 || c.tags[0] != "sync-links" || c.tags[1] != "sync-groups" {
		t.Errorf("tags = %v", c.tags)
	}
}

func TestRequestSync_ErrorIsSwallowed(t *testing.T) {
	o := New(true, logger.Nop())
	o.Attach(&fakeCapability{failErr: errors.New("stopped")})

	o.RequestSync(domain.TopicLinks)
}

func TestSetOnline_Transitions(t *testing.T) {
	o := New(false, logger.Nop())
	c := &fakeCapability{}
	o.Attach(c)

	if o.SetOnline(false) {
		t.Error("same state must not report a change")
	}
	if !o.SetOnline(true) {
		t.Error("offline to online must report a change")
	}
	if !o.Online() {
		t.Error("Online() should be true")
	}

	// Attach pushes the initial state, then one transition.
	want := []bool{false, true}
	if len(c.online) != len(want) {
		t.Fatalf("capability saw %v", c.online)
	}
	for i := range want {
		if c.online[i] != want[i] {
			t.Errorf("transition %d = %v, want %v", i, c.online[i], want[i])
		}
	}
}

func TestSetOnline_ConcurrentTransitionsStayOrdered(t *testing.T) {
	for round := 0; round < 50; round++ {
		o := New(true, logger.Nop())
		c := &fakeCapability{}
		o.Attach(c)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(online bool) {
				defer wg.Done()
				o.SetOnline(online)
			}(i%2 == 0)
		}
		wg.Wait()

		c.mu.Lock()
		last := c.online[len(c.online)-1]
		c.mu.Unlock()
		if last != o.Online() {
			t.Fatalf("round %d: capability last saw online=%v, orchestrator reports %v", round, last, o.Online())
		}
	}
}
