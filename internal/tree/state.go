package tree

import "github.com/MrSnakeDoc/linktree/internal/domain"

// state is the id-indexed snapshot of both collections.
// Order slices keep insertion order so views are stable.
type state struct {
	links      map[string]domain.Link
	linkOrder  []string
	groups     map[string]domain.Group
	groupOrder []string
}

func newState() *state {
	return &state{
		links:  make(map[string]domain.Link),
		groups: make(map[string]domain.Group),
	}
}

func (s *state) clone() *state {
	c := &state{
		links:      make(map[string]domain.Link, len(s.links)),
		linkOrder:  append([]string(nil), s.linkOrder...),
		groups:     make(map[string]domain.Group, len(s.groups)),
		groupOrder: append([]string(nil), s.groupOrder...),
	}
	for id, l := range s.links {
		c.links[id] = l
	}
	for id, g := range s.groups {
		c.groups[id] = g
	}
	return c
}

func (s *state) putLink(l domain.Link) {
	if _, ok := s.links[l.ID]; !ok {
		s.linkOrder = append(s.linkOrder, l.ID)
	}
	s.links[l.ID] = l
}

func (s *state) putGroup(g domain.Group) {
	if _, ok := s.groups[g.ID]; !ok {
		s.groupOrder = append(s.groupOrder, g.ID)
	}
	s.groups[g.ID] = g
}

func (s *state) removeLink(id string) bool {
	if _, ok := s.links[id]; !ok {
		return false
	}
	delete(s.links, id)
	s.linkOrder = without(s.linkOrder, map[string]struct{}{id: {}})
	return true
}

func (s *state) removeGroups(ids map[string]struct{}) {
	for id := range ids {
		delete(s.groups, id)
	}
	s.groupOrder = without(s.groupOrder, ids)
}

func without(order []string, drop map[string]struct{}) []string {
	out := order[:0:0]
	for _, id := range order {
		if _, ok := drop[id]; !ok {
			out = append(out, id)
		}
	}
	return out
}

func (s *state) linkList() []domain.Link {
	out := make([]domain.Link, 0, len(s.linkOrder))
	for _, id := range s.linkOrder {
		out = append(out, s.links[id])
	}
	return out
}

func (s *state) groupList() []domain.Group {
	out := make([]domain.Group, 0, len(s.groupOrder))
	for _, id := range s.groupOrder {
		out = append(out, s.groups[id])
	}
	return out
}

func (s *state) children(parentID string) []domain.Group {
	var out []domain.Group
	for _, id := range s.groupOrder {
		if g := s.groups[id]; g.ParentGroupID == parentID {
			out = append(out, g)
		}
	}
	return out
}

func (s *state) linksIn(groupID string) []domain.Link {
	var out []domain.Link
	for _, id := range s.linkOrder {
		if l := s.links[id]; l.GroupID == groupID {
			out = append(out, l)
		}
	}
	return out
}

// descendants returns groupID followed by every transitive subgroup, depth first.
// An unknown groupID yields just itself.
func (s *state) descendants(groupID string) []string {
	out := []string{groupID}
	seen := map[string]struct{}{groupID: {}}

	var walk func(id string)
	walk = func(id string) {
		for _, child := range s.children(id) {
			if _, ok := seen[child.ID]; ok {
				continue
			}
			seen[child.ID] = struct{}{}
			out = append(out, child.ID)
			walk(child.ID)
		}
	}
	walk(groupID)

	return out
}

// createsCycle reports whether making target the parent of groupID would
// close a loop in the parent graph.
func (s *state) createsCycle(groupID, target string) bool {
	if target == "" {
		return false
	}
	if target == groupID {
		return true
	}
	for _, id := range s.descendants(groupID) {
		if id == target {
			return true
		}
	}
	return false
}
