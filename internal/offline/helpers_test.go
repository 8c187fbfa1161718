package offline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/logger"
)

var errOffline = errors.New("network unreachable")

// fakeFetcher serves canned responses keyed by absolute URL.
type fakeFetcher struct {
	mu      sync.Mutex
	routes  map[string]*Response
	offline bool
	calls   map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{routes: map[string]*Response{}, calls: map[string]int{}}
}

func (f *fakeFetcher) serve(target string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.routes[target] = &Response{
		Status: status,
		Header: http.Header{"Content-Type": []string{"text/plain"}},
		Body:   []byte(body),
	}
}

func (f *fakeFetcher) setOffline(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = v
}

func (f *fakeFetcher) count(target string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[target]
}

func (f *fakeFetcher) Fetch(_ context.Context, target string, _ http.Header) (*Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[target]++
	if f.offline {
		return nil, errOffline
	}
	r, ok := f.routes[target]
	if !ok {
		return &Response{Status: http.StatusNotFound, Header: http.Header{}, Body: []byte("not found")}, nil
	}
	return r.Clone(), nil
}

// gatedFetcher holds every fetch on gate while blocking is set.
type gatedFetcher struct {
	*fakeFetcher
	blocking atomic.Bool
	gate     chan struct{}
}

func newGatedFetcher(f *fakeFetcher) *gatedFetcher {
	return &gatedFetcher{fakeFetcher: f, gate: make(chan struct{})}
}

func (g *gatedFetcher) Fetch(ctx context.Context, target string, header http.Header) (*Response, error) {
	if g.blocking.Load() {
		select {
		case <-g.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.fakeFetcher.Fetch(ctx, target, header)
}

// fakeBus records broadcasts.
type fakeBus struct {
	mu         sync.Mutex
	messages   []Message
	claims     int
	recipients int
}

func (b *fakeBus) Broadcast(msg Message) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.messages = append(b.messages, msg)
	return b.recipients
}

func (b *fakeBus) Claim() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.claims++
	return b.recipients
}

func (b *fakeBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.messages))
	for _, m := range b.messages {
		out = append(out, m.Type)
	}
	return out
}

const testOrigin = "http://app.test"

func testConfig() Config {
	origin, _ := url.Parse(testOrigin)
	return Config{
		Origin:          origin,
		CachePrefix:     "link-drvo",
		Version:         "v1.2.0",
		ShellAssets:     []string{"/", "/index.html"},
		ExtraHosts:      []string{"www.google.com", "google.com"},
		SkipWaiting:     true,
		InstallRetry:    10 * time.Millisecond,
		InstallRetryMax: 20 * time.Millisecond,
	}
}

// startController runs c until the test ends and waits for wantState.
func startController(t *testing.T, c *Controller, wantState State) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-errCh
	})
	waitFor(t, func() bool { return c.State() == wantState })
}

func newTestController(t *testing.T, cfg Config, f *fakeFetcher, bus *fakeBus) (*Controller, *MemoryStorage) {
	t.Helper()
	storage := NewMemoryStorage()
	for _, asset := range cfg.ShellAssets {
		if _, ok := f.routes[testOrigin+asset]; !ok {
			f.serve(testOrigin+asset, http.StatusOK, "<html>shell "+asset+"</html>")
		}
	}
	c := New(cfg, storage, f, bus, logger.Nop())
	return c, storage
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func get(path string, header map[string]string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		r.Header.Set(k, v)
	}
	return r
}

func cacheLen(t *testing.T, s CacheStorage, name string) int {
	t.Helper()
	c, err := s.Open(context.Background(), name)
	if err != nil {
		t.Fatalf("open %s: %v", name, err)
	}
	entries, err := c.Entries(context.Background())
	if err != nil {
		t.Fatalf("entries %s: %v", name, err)
	}
	return len(entries)
}
