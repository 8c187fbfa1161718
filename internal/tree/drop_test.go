package tree

import (
	"context"
	"testing"

	"github.com/MrSnakeDoc/linktree/internal/domain"
)

func TestDrop(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)
	a := mustAddGroup(t, s, "A", "")
	b := mustAddGroup(t, s, "B", a.ID)
	l := mustAddLink(t, s, "x", "x.example", "")

	t.Run("link onto group", func(t *testing.T) {
		res, err := s.Drop(ctx, DropPayload{Type: DropLink, ID: l.ID}, b.ID)
		if err != nil || !res.Applied {
			t.Fatalf("res=%+v err=%v", res, err)
		}
		if got, _ := s.Link(l.ID); got.GroupID != b.ID {
			t.Errorf("group = %s", got.GroupID)
		}
	})

	t.Run("group into own child is ignored", func(t *testing.T) {
		res, err := s.Drop(ctx, DropPayload{Type: DropGroup, ID: a.ID}, b.ID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if res.Applied {
			t.Error("cycle-creating drop must not apply")
		}
	})

	t.Run("url creates link titled by host", func(t *testing.T) {
		res, err := s.Drop(ctx, DropPayload{Type: DropURL, URL: "see https://www.example.org/page for details"}, a.ID)
		if err != nil || !res.Applied || res.Link == nil {
			t.Fatalf("res=%+v err=%v", res, err)
		}
		if res.Link.Title != "example.org" || res.Link.URL != "https://www.example.org/page" || res.Link.GroupID != a.ID {
			t.Errorf("link = %+v", res.Link)
		}
	})

	t.Run("url without link text", func(t *testing.T) {
		_, err := s.Drop(ctx, DropPayload{Type: DropURL, URL: "just words"}, "")
		if !domain.IsValidation(err) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := s.Drop(ctx, DropPayload{Type: "file"}, "")
		if !domain.IsValidation(err) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	t.Run("link drop without id", func(t *testing.T) {
		_, err := s.Drop(ctx, DropPayload{Type: DropLink}, "")
		if !domain.IsValidation(err) {
			t.Errorf("expected ValidationError, got %v", err)
		}
	})

	checkInvariants(t, s)
}
