package tree

import (
	"strings"

	"github.com/MrSnakeDoc/linktree/internal/domain"
)

// TopLevelGroups returns groups without a parent, in held order.
func (s *Store) TopLevelGroups() []domain.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.children("")
}

// Subgroups returns the direct children of groupID.
func (s *Store) Subgroups(groupID string) []domain.Group {
	if groupID == "" {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.children(groupID)
}

// UngroupedLinks returns links that sit at the root.
func (s *Store) UngroupedLinks() []domain.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.linksIn("")
}

// LinksOf returns the links directly inside groupID.
func (s *Store) LinksOf(groupID string) []domain.Link {
	if groupID == "" {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.linksIn(groupID)
}

// DescendantIDs returns groupID and every group transitively below it.
func (s *Store) DescendantIDs(groupID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.descendants(groupID)
}

// Links returns every link in held order.
func (s *Store) Links() []domain.Link {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.linkList()
}

// Groups returns every group in held order.
func (s *Store) Groups() []domain.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.groupList()
}

// Link returns the link with id, if any.
func (s *Store) Link(id string) (domain.Link, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.st.links[id]
	return l, ok
}

// Group returns the group with id, if any.
func (s *Store) Group(id string) (domain.Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.st.groups[id]
	return g, ok
}

// GroupPath renders the ancestry of a group as "Root > Child > Leaf".
// Unknown ids yield an empty string.
func (s *Store) GroupPath(id string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var names []string
	seen := make(map[string]struct{})
	for cur := id; cur != ""; {
		g, ok := s.st.groups[cur]
		if !ok {
			break
		}
		if _, loop := seen[cur]; loop {
			break
		}
		seen[cur] = struct{}{}
		names = append(names, g.Name)
		cur = g.ParentGroupID
	}

	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return strings.Join(names, " > ")
}

// Search ranks links by how well their title or host matches query.
func (s *Store) Search(query string) []domain.LinkCandidate {
	return domain.RankLinks(query, s.Links())
}

// GroupNode is a group with its links and subgroups resolved.
type GroupNode struct {
	domain.Group
	Path      string        `json:"path"`
	Links     []domain.Link `json:"links"`
	Subgroups []GroupNode   `json:"subgroups"`
}

// Tree is the fully nested view served to app instances.
type Tree struct {
	Groups    []GroupNode   `json:"groups"`
	Ungrouped []domain.Link `json:"ungrouped"`
}

// Snapshot builds the nested tree from the current state.
func (s *Store) Snapshot() Tree {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var build func(g domain.Group, path string) GroupNode
	build = func(g domain.Group, path string) GroupNode {
		if path == "" {
			path = g.Name
		} else {
			path = path + " > " + g.Name
		}
		node := GroupNode{
			Group:     g,
			Path:      path,
			Links:     nonNil(s.st.linksIn(g.ID)),
			Subgroups: []GroupNode{},
		}
		for _, child := range s.st.children(g.ID) {
			node.Subgroups = append(node.Subgroups, build(child, path))
		}
		return node
	}

	t := Tree{
		Groups:    []GroupNode{},
		Ungrouped: nonNil(s.st.linksIn("")),
	}
	for _, g := range s.st.children("") {
		t.Groups = append(t.Groups, build(g, ""))
	}
	return t
}

func nonNil(links []domain.Link) []domain.Link {
	if links == nil {
		return []domain.Link{}
	}
	return links
}
