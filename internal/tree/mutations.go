package tree

import (
	"context"
	"strings"

	"github.com/MrSnakeDoc/linktree/internal/domain"
)

// AddLink validates input and appends a new link.
func (s *Store) AddLink(ctx context.Context, in domain.LinkInput) (domain.Link, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return domain.Link{}, domain.ValidationError{Field: "title", Reason: "required"}
	}
	u, err := domain.NormalizeURL(in.URL)
	if err != nil {
		return domain.Link{}, err
	}

	var created domain.Link
	err = s.apply(ctx, "add_link", func(next *state) (touched, error) {
		if in.GroupID != "" {
			if _, ok := next.groups[in.GroupID]; !ok {
				return touched{}, domain.NotFoundError{Kind: "group", ID: in.GroupID}
			}
		}
		created = domain.Link{
			ID:          s.newID(),
			Title:       title,
			URL:         u,
			Description: strings.TrimSpace(in.Description),
			GroupID:     in.GroupID,
			CreatedAt:   s.now(),
		}
		next.putLink(created)
		return touched{links: true}, nil
	})
	if err != nil {
		return domain.Link{}, err
	}
	return created, nil
}

// EditLink merges patch into the link identified by id.
func (s *Store) EditLink(ctx context.Context, id string, patch domain.LinkPatch) (domain.Link, error) {
	var updated domain.Link
	err := s.apply(ctx, "edit_link", func(next *state) (touched, error) {
		l, ok := next.links[id]
		if !ok {
			return touched{}, domain.NotFoundError{Kind: "link", ID: id}
		}

		if patch.Title != nil {
			title := strings.TrimSpace(*patch.Title)
			if title == "" {
				return touched{}, domain.ValidationError{Field: "title", Reason: "required"}
			}
			l.Title = title
		}
		if patch.URL != nil {
			u, err := domain.NormalizeURL(*patch.URL)
			if err != nil {
				return touched{}, err
			}
			l.URL = u
		}
		if patch.Description != nil {
			l.Description = strings.TrimSpace(*patch.Description)
		}
		if patch.GroupID != nil {
			if *patch.GroupID != "" {
				if _, ok := next.groups[*patch.GroupID]; !ok {
					return touched{}, domain.NotFoundError{Kind: "group", ID: *patch.GroupID}
				}
			}
			l.GroupID = *patch.GroupID
		}

		updated = l
		next.putLink(l)
		return touched{links: true}, nil
	})
	if err != nil {
		return domain.Link{}, err
	}
	return updated, nil
}

// DeleteLink removes a link. Deleting an absent id is a silent no-op and
// reports false.
func (s *Store) DeleteLink(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := s.apply(ctx, "delete_link", func(next *state) (touched, error) {
		deleted = next.removeLink(id)
		return touched{links: deleted}, nil
	})
	if err != nil {
		return false, err
	}
	return deleted, nil
}

// AddGroup validates input and creates a group under parentID ("" for top-level).
func (s *Store) AddGroup(ctx context.Context, in domain.GroupInput, parentID string) (domain.Group, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return domain.Group{}, domain.ValidationError{Field: "name", Reason: "required"}
	}
	color, ok := domain.NormalizeColor(in.Color)
	if !ok {
		return domain.Group{}, domain.ValidationError{Field: "color", Reason: "not in palette"}
	}

	var created domain.Group
	err := s.apply(ctx, "add_group", func(next *state) (touched, error) {
		if parentID != "" {
			if _, ok := next.groups[parentID]; !ok {
				return touched{}, domain.NotFoundError{Kind: "group", ID: parentID}
			}
		}
		created = domain.Group{
			ID:            s.newID(),
			Name:          name,
			Color:         color,
			ParentGroupID: parentID,
			CreatedAt:     s.now(),
		}
		next.putGroup(created)
		return touched{groups: true}, nil
	})
	if err != nil {
		return domain.Group{}, err
	}
	return created, nil
}

// EditGroup merges patch into the group identified by id.
// A parent change that would create a cycle is refused with a ValidationError.
func (s *Store) EditGroup(ctx context.Context, id string, patch domain.GroupPatch) (domain.Group, error) {
	var updated domain.Group
	err := s.apply(ctx, "edit_group", func(next *state) (touched, error) {
		g, ok := next.groups[id]
		if !ok {
			return touched{}, domain.NotFoundError{Kind: "group", ID: id}
		}

		if patch.Name != nil {
			name := strings.TrimSpace(*patch.Name)
			if name == "" {
				return touched{}, domain.ValidationError{Field: "name", Reason: "required"}
			}
			g.Name = name
		}
		if patch.Color != nil {
			color, ok := domain.NormalizeColor(*patch.Color)
			if !ok {
				return touched{}, domain.ValidationError{Field: "color", Reason: "not in palette"}
			}
			g.Color = color
		}
		if patch.ParentGroupID != nil {
			target := *patch.ParentGroupID
			if target != "" {
				if _, ok := next.groups[target]; !ok {
					return touched{}, domain.NotFoundError{Kind: "group", ID: target}
				}
			}
			if next.createsCycle(id, target) {
				return touched{}, domain.ValidationError{Field: "parentGroupId", Reason: "would create a cycle"}
			}
			g.ParentGroupID = target
		}

		updated = g
		next.putGroup(g)
		return touched{groups: true}, nil
	})
	if err != nil {
		return domain.Group{}, err
	}
	return updated, nil
}

// DeleteResult describes the effect of a cascading group delete.
type DeleteResult struct {
	RemovedGroups  []string `json:"removedGroups"`
	UngroupedLinks []string `json:"ungroupedLinks"`
}

// DeleteGroup removes a group and all of its descendants in one step.
// Links that lived anywhere in the removed subtree become ungrouped.
func (s *Store) DeleteGroup(ctx context.Context, id string) (DeleteResult, error) {
	var res DeleteResult
	err := s.apply(ctx, "delete_group", func(next *state) (touched, error) {
		if _, ok := next.groups[id]; !ok {
			return touched{}, domain.NotFoundError{Kind: "group", ID: id}
		}

		ids := next.descendants(id)
		set := make(map[string]struct{}, len(ids))
		for _, gid := range ids {
			set[gid] = struct{}{}
		}

		res = DeleteResult{RemovedGroups: ids, UngroupedLinks: []string{}}
		for _, lid := range next.linkOrder {
			l := next.links[lid]
			if _, hit := set[l.GroupID]; hit {
				l.GroupID = ""
				next.links[lid] = l
				res.UngroupedLinks = append(res.UngroupedLinks, lid)
			}
		}
		next.removeGroups(set)

		return touched{links: len(res.UngroupedLinks) > 0, groups: true}, nil
	})
	if err != nil {
		return DeleteResult{}, err
	}
	return res, nil
}

// MoveLink places a link under target ("" for the root).
// Moving a link where it already is reports false without a sync.
func (s *Store) MoveLink(ctx context.Context, linkID, target string) (bool, error) {
	var moved bool
	err := s.apply(ctx, "move_link", func(next *state) (touched, error) {
		l, ok := next.links[linkID]
		if !ok {
			return touched{}, domain.NotFoundError{Kind: "link", ID: linkID}
		}
		if target != "" {
			if _, ok := next.groups[target]; !ok {
				return touched{}, domain.NotFoundError{Kind: "group", ID: target}
			}
		}
		if l.GroupID == target {
			return touched{}, nil
		}
		l.GroupID = target
		next.links[linkID] = l
		moved = true
		return touched{links: true}, nil
	})
	if err != nil {
		return false, err
	}
	return moved, nil
}

// MoveGroup reparents a group under target ("" for top-level).
// A move onto itself or into its own subtree is ignored and reports false.
func (s *Store) MoveGroup(ctx context.Context, groupID, target string) (bool, error) {
	var moved bool
	err := s.apply(ctx, "move_group", func(next *state) (touched, error) {
		g, ok := next.groups[groupID]
		if !ok {
			return touched{}, domain.NotFoundError{Kind: "group", ID: groupID}
		}
		if target != "" {
			if _, ok := next.groups[target]; !ok {
				return touched{}, domain.NotFoundError{Kind: "group", ID: target}
			}
		}
		if next.createsCycle(groupID, target) || g.ParentGroupID == target {
			return touched{}, nil
		}
		g.ParentGroupID = target
		next.groups[groupID] = g
		moved = true
		return touched{groups: true}, nil
	})
	if err != nil {
		return false, err
	}
	return moved, nil
}
