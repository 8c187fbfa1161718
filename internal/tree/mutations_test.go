package tree

import (
	"context"
	"errors"
	"testing"

	"github.com/MrSnakeDoc/linktree/internal/domain"
	"github.com/MrSnakeDoc/linktree/internal/persist"
)

func TestAddLink_Validation(t *testing.T) {
	tests := []struct {
		name      string
		input     domain.LinkInput
		wantField string
	}{
		{name: "empty title", input: domain.LinkInput{Title: "  ", URL: "example.com"}, wantField: "title"},
		{name: "empty url", input: domain.LinkInput{Title: "x", URL: ""}, wantField: "url"},
		{name: "invalid url", input: domain.LinkInput{Title: "x", URL: "not a url"}, wantField: "url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := newTestStore(t, nil)

			_, err := s.AddLink(context.Background(), tt.input)

			var verr domain.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if verr.Field != tt.wantField {
				t.Errorf("field = %s, want %s", verr.Field, tt.wantField)
			}
			if len(s.Links()) != 0 {
				t.Error("state must be untouched after validation failure")
			}
			if got := rec.take(); len(got) != 0 {
				t.Errorf("no sync expected, got %v", got)
			}
		})
	}
}

func TestAddLink_NormalizesAndSyncs(t *testing.T) {
	s, rec := newTestStore(t, nil)

	l := mustAddLink(t, s, " Go ", "go.dev", "")

	if l.URL != "https://go.dev" {
		t.Errorf("url = %s", l.URL)
	}
	if l.Title != "Go" {
		t.Errorf("title = %q", l.Title)
	}
	if l.ID == "" || !l.CreatedAt.Equal(fixedNow) {
		t.Errorf("id/createdAt not minted: %+v", l)
	}
	if got := rec.take(); len(got) != 1 || got[0] != domain.TopicLinks {
		t.Errorf("topics = %v", got)
	}
}

func TestAddLink_UnknownGroup(t *testing.T) {
	s, _ := newTestStore(t, nil)

	_, err := s.AddLink(context.Background(), domain.LinkInput{Title: "x", URL: "x.com", GroupID: "nope"})
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestEditLink(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestStore(t, nil)
	g := mustAddGroup(t, s, "Work", "")
	l := mustAddLink(t, s, "Docs", "docs.example.com", "")
	rec.take()

	title := "Team docs"
	updated, err := s.EditLink(ctx, l.ID, domain.LinkPatch{Title: &title, GroupID: &g.ID})
	if err != nil {
		t.Fatalf("EditLink: %v", err)
	}
	if updated.Title != title || updated.GroupID != g.ID || updated.URL != l.URL {
		t.Errorf("unexpected result %+v", updated)
	}
	if !updated.CreatedAt.Equal(l.CreatedAt) {
		t.Error("createdAt must not change on edit")
	}

	empty := ""
	if _, err := s.EditLink(ctx, l.ID, domain.LinkPatch{Title: &empty}); !domain.IsValidation(err) {
		t.Errorf("expected ValidationError for empty title, got %v", err)
	}
	if _, err := s.EditLink(ctx, "missing", domain.LinkPatch{Title: &title}); !domain.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}

	ungroup := ""
	updated, err = s.EditLink(ctx, l.ID, domain.LinkPatch{GroupID: &ungroup})
	if err != nil || !updated.Ungrouped() {
		t.Errorf("expected link ungrouped, got %+v err=%v", updated, err)
	}
}

func TestDeleteLink_Idempotent(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestStore(t, nil)
	l := mustAddLink(t, s, "x", "x.com", "")
	rec.take()

	deleted, err := s.DeleteLink(ctx, l.ID)
	if err != nil || !deleted {
		t.Fatalf("first delete: deleted=%v err=%v", deleted, err)
	}
	if got := rec.take(); len(got) != 1 {
		t.Errorf("expected one sync, got %v", got)
	}

	deleted, err = s.DeleteLink(ctx, l.ID)
	if err != nil || deleted {
		t.Fatalf("second delete: deleted=%v err=%v", deleted, err)
	}
	if got := rec.take(); len(got) != 0 {
		t.Errorf("absent delete must not sync, got %v", got)
	}
	if len(s.Links()) != 0 {
		t.Error("link still present")
	}
}

func TestAddGroup(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestStore(t, nil)

	g, err := s.AddGroup(ctx, domain.GroupInput{Name: "Tools", Color: "#ef4444"}, "")
	if err != nil {
		t.Fatalf("AddGroup: %v", err)
	}
	if g.Color != "#EF4444" || !g.TopLevel() {
		t.Errorf("unexpected group %+v", g)
	}
	if got := rec.take(); len(got) != 1 || got[0] != domain.TopicGroups {
		t.Errorf("topics = %v", got)
	}

	if _, err := s.AddGroup(ctx, domain.GroupInput{Name: ""}, ""); !domain.IsValidation(err) {
		t.Errorf("expected ValidationError for empty name, got %v", err)
	}
	if _, err := s.AddGroup(ctx, domain.GroupInput{Name: "x", Color: "#000000"}, ""); !domain.IsValidation(err) {
		t.Errorf("expected ValidationError for off-palette color, got %v", err)
	}
	if _, err := s.AddGroup(ctx, domain.GroupInput{Name: "x"}, "missing"); !domain.IsNotFound(err) {
		t.Errorf("expected NotFoundError for missing parent, got %v", err)
	}
	if len(s.Groups()) != 1 {
		t.Errorf("failed adds must not create groups, have %d", len(s.Groups()))
	}
}

func TestMoveGroup_RejectsMoveIntoOwnSubtree(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestStore(t, nil)
	a := mustAddGroup(t, s, "A", "")
	b := mustAddGroup(t, s, "B", a.ID)
	rec.take()

	moved, err := s.MoveGroup(ctx, a.ID, b.ID)
	if err != nil {
		t.Fatalf("MoveGroup: %v", err)
	}
	if moved {
		t.Error("move into descendant must be rejected")
	}

	gotA, _ := s.Group(a.ID)
	gotB, _ := s.Group(b.ID)
	if gotA.ParentGroupID != "" || gotB.ParentGroupID != a.ID {
		t.Errorf("state changed: A=%+v B=%+v", gotA, gotB)
	}
	if got := rec.take(); len(got) != 0 {
		t.Errorf("rejected move must not sync, got %v", got)
	}

	moved, err = s.MoveGroup(ctx, a.ID, a.ID)
	if err != nil || moved {
		t.Errorf("move onto self: moved=%v err=%v", moved, err)
	}

	checkInvariants(t, s)
}

func TestMoveGroup_Valid(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestStore(t, nil)
	a := mustAddGroup(t, s, "A", "")
	b := mustAddGroup(t, s, "B", "")
	rec.take()

	moved, err := s.MoveGroup(ctx, b.ID, a.ID)
	if err != nil || !moved {
		t.Fatalf("moved=%v err=%v", moved, err)
	}
	if subs := s.Subgroups(a.ID); len(subs) != 1 || subs[0].ID != b.ID {
		t.Errorf("subgroups of A = %+v", subs)
	}
	if got := rec.take(); len(got) != 1 || got[0] != domain.TopicGroups {
		t.Errorf("topics = %v", got)
	}

	moved, err = s.MoveGroup(ctx, b.ID, "")
	if err != nil || !moved {
		t.Fatalf("move to top-level: moved=%v err=%v", moved, err)
	}
	if len(s.TopLevelGroups()) != 2 {
		t.Error("B should be top-level again")
	}

	if _, err := s.MoveGroup(ctx, b.ID, "missing"); !domain.IsNotFound(err) {
		t.Errorf("expected NotFoundError for missing target, got %v", err)
	}
}

func TestMoveLink(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestStore(t, nil)
	g := mustAddGroup(t, s, "G", "")
	l := mustAddLink(t, s, "x", "x.com", "")
	rec.take()

	moved, err := s.MoveLink(ctx, l.ID, g.ID)
	if err != nil || !moved {
		t.Fatalf("moved=%v err=%v", moved, err)
	}
	if links := s.LinksOf(g.ID); len(links) != 1 {
		t.Errorf("LinksOf = %+v", links)
	}

	moved, err = s.MoveLink(ctx, l.ID, g.ID)
	if err != nil || moved {
		t.Errorf("same-target move: moved=%v err=%v", moved, err)
	}
	if got := rec.take(); len(got) != 1 {
		t.Errorf("expected exactly one sync, got %v", got)
	}

	if _, err := s.MoveLink(ctx, l.ID, "missing"); !domain.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
	if _, err := s.MoveLink(ctx, "missing", ""); !domain.IsNotFound(err) {
		t.Errorf("expected NotFoundError, got %v", err)
	}
}

func TestEditGroup_CycleIsValidationError(t *testing.T) {
	ctx := context.Background()
	s, _ := newTestStore(t, nil)
	a := mustAddGroup(t, s, "A", "")
	b := mustAddGroup(t, s, "B", a.ID)
	c := mustAddGroup(t, s, "C", b.ID)

	_, err := s.EditGroup(ctx, a.ID, domain.GroupPatch{ParentGroupID: &c.ID})
	var verr domain.ValidationError
	if !errors.As(err, &verr) || verr.Field != "parentGroupId" {
		t.Fatalf("expected parentGroupId ValidationError, got %v", err)
	}

	name := "Renamed"
	color := "#10b981"
	g, err := s.EditGroup(ctx, b.ID, domain.GroupPatch{Name: &name, Color: &color})
	if err != nil {
		t.Fatalf("EditGroup: %v", err)
	}
	if g.Name != name || g.Color != "#10B981" || g.ParentGroupID != a.ID {
		t.Errorf("unexpected group %+v", g)
	}

	checkInvariants(t, s)
}

func TestDeleteGroup_UngroupsLinksInSubtree(t *testing.T) {
	ctx := context.Background()
	s, rec := newTestStore(t, nil)
	a := mustAddGroup(t, s, "A", "")
	b := mustAddGroup(t, s, "B", a.ID)
	other := mustAddGroup(t, s, "Other", "")
	l := mustAddLink(t, s, "L", "l.example", b.ID)
	keep := mustAddLink(t, s, "K", "k.example", other.ID)
	rec.take()

	res, err := s.DeleteGroup(ctx, a.ID)
	if err != nil {
		t.Fatalf("DeleteGroup: %v", err)
	}

	if len(res.RemovedGroups) != 2 || !contains(res.RemovedGroups, a.ID) || !contains(res.RemovedGroups, b.ID) {
		t.Errorf("removed = %v", res.RemovedGroups)
	}
	if _, ok := s.Group(a.ID); ok {
		t.Error("A still present")
	}
	if _, ok := s.Group(b.ID); ok {
		t.Error("B still present")
	}

	got, _ := s.Link(l.ID)
	if !got.Ungrouped() {
		t.Errorf("link L should be ungrouped, has %s", got.GroupID)
	}
	kept, _ := s.Link(keep.ID)
	if kept.GroupID != other.ID {
		t.Error("links outside the subtree must keep their group")
	}

	topics := rec.take()
	if !contains(topics, domain.TopicLinks) || !contains(topics, domain.TopicGroups) {
		t.Errorf("expected both topics, got %v", topics)
	}

	if _, err := s.DeleteGroup(ctx, a.ID); !domain.IsNotFound(err) {
		t.Errorf("expected NotFoundError on second delete, got %v", err)
	}

	checkInvariants(t, s)
}

func TestPersistFailure_RollsBack(t *testing.T) {
	ctx := context.Background()
	adapter := &failingAdapter{Memory: persist.NewMemory(), failOn: map[string]bool{}}
	s, rec := newTestStore(t, adapter)
	g := mustAddGroup(t, s, "G", "")
	l := mustAddLink(t, s, "L", "l.example", g.ID)
	rec.take()

	adapter.failOn[persist.KeyLinks] = true
	if _, err := s.AddLink(ctx, domain.LinkInput{Title: "x", URL: "x.com"}); err == nil {
		t.Fatal("expected persist error")
	}
	if len(s.Links()) != 1 {
		t.Errorf("in-memory state not rolled back: %d links", len(s.Links()))
	}
	if got := rec.take(); len(got) != 0 {
		t.Errorf("failed mutation must not sync, got %v", got)
	}

	// Links write succeeds, groups write fails: the links document must be
	// restored so storage does not show a half-applied cascade.
	adapter.failOn = map[string]bool{persist.KeyGroups: true}
	if _, err := s.DeleteGroup(ctx, g.ID); err == nil {
		t.Fatal("expected persist error")
	}
	if got, _ := s.Link(l.ID); got.GroupID != g.ID {
		t.Error("link should still be grouped after rollback")
	}

	reloaded, _ := newTestStore(t, adapter.Memory)
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, _ := reloaded.Link(l.ID); got.GroupID != g.ID {
		t.Error("stored links were left half-applied")
	}
}
