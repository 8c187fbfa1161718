package sqlite

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/offline"
	"github.com/MrSnakeDoc/linktree/internal/persist"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data", "linktree.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestKV_ReadWrite(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)

	if _, ok, err := s.Read(ctx, persist.KeyGroups); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v", ok, err)
	}

	if err := s.Write(ctx, persist.KeyGroups, json.RawMessage(`[]`)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := s.Write(ctx, persist.KeyGroups, json.RawMessage(`[{"id":"g"}]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	got, ok, err := s.Read(ctx, persist.KeyGroups)
	if err != nil || !ok || string(got) != `[{"id":"g"}]` {
		t.Fatalf("Read = %s ok=%v err=%v", got, ok, err)
	}

	// Data survives reopening the file.
	_ = s.Close()
	reopened, err := Open(ctx, path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, ok, err = reopened.Read(ctx, persist.KeyGroups)
	if err != nil || !ok || string(got) != `[{"id":"g"}]` {
		t.Errorf("after reopen = %s ok=%v err=%v", got, ok, err)
	}
}

func TestCaches(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	storage := s.Caches()

	dyn, err := storage.Open(ctx, "link-drvo-dynamic-v1.2.0")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	old, err := storage.Open(ctx, "link-drvo-dynamic-v1.1.0")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	stored := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	resp := &offline.Response{
		Status:   200,
		Header:   http.Header{"Content-Type": []string{"text/html"}},
		Body:     []byte("<html></html>"),
		StoredAt: stored,
	}
	if err := dyn.Put(ctx, "http://app.test/", resp); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := old.Put(ctx, "http://app.test/", resp); err != nil {
		t.Fatalf("Put old: %v", err)
	}

	got, ok, err := dyn.Match(ctx, "http://app.test/")
	if err != nil || !ok {
		t.Fatalf("Match: ok=%v err=%v", ok, err)
	}
	if string(got.Body) != "<html></html>" || !got.StoredAt.Equal(stored) {
		t.Errorf("got %+v", got)
	}

	names, err := storage.Keys(ctx)
	if err != nil || len(names) != 2 {
		t.Fatalf("Keys = %v err=%v", names, err)
	}

	deleted, err := storage.Delete(ctx, "link-drvo-dynamic-v1.1.0")
	if err != nil || !deleted {
		t.Fatalf("Delete: %v %v", deleted, err)
	}

	// Entries of a deleted cache go with it.
	entries, err := old.Entries(ctx)
	if err != nil || len(entries) != 0 {
		t.Errorf("orphan entries = %v err=%v", entries, err)
	}

	if ok, err := dyn.Delete(ctx, "http://app.test/"); err != nil || !ok {
		t.Errorf("evict: ok=%v err=%v", ok, err)
	}
	if ok, _ := dyn.Delete(ctx, "http://app.test/"); ok {
		t.Error("second evict should report false")
	}
}
