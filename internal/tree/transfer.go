package tree

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/domain"
)

// ExportVersion is written into every export document.
const ExportVersion = "1.0"

// ExportDocument is the backup format for both collections.
type ExportDocument struct {
	Links      []domain.Link  `json:"links"`
	Groups     []domain.Group `json:"groups"`
	ExportDate time.Time      `json:"exportDate"`
	Version    string         `json:"version"`
}

// ImportDocument is decoded leniently: each record is kept raw so that one
// malformed entry does not reject the whole file.
type ImportDocument struct {
	Links  []json.RawMessage `json:"links"`
	Groups []json.RawMessage `json:"groups"`
}

// ImportResult reports how many records survived sanitization.
type ImportResult struct {
	Links   int `json:"links"`
	Groups  int `json:"groups"`
	Dropped int `json:"dropped"`
}

// Export returns both collections with an export timestamp.
func (s *Store) Export() ExportDocument {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ExportDocument{
		Links:      s.st.linkList(),
		Groups:     s.st.groupList(),
		ExportDate: s.now(),
		Version:    ExportVersion,
	}
}

// Import replaces both collections with the records of doc.
// Records missing a required field are dropped.
func (s *Store) Import(ctx context.Context, doc ImportDocument) (ImportResult, error) {
	if doc.Links == nil || doc.Groups == nil {
		return ImportResult{}, domain.ValidationError{Field: "document", Reason: "links and groups arrays are required"}
	}

	imported, dropped := sanitize(doc.Links, doc.Groups)

	err := s.apply(ctx, "import", func(next *state) (touched, error) {
		*next = *imported
		return touched{links: true, groups: true}, nil
	})
	if err != nil {
		return ImportResult{}, err
	}

	return ImportResult{
		Links:   len(imported.links),
		Groups:  len(imported.groups),
		Dropped: dropped,
	}, nil
}

// Clear empties both collections.
func (s *Store) Clear(ctx context.Context) error {
	return s.apply(ctx, "clear", func(next *state) (touched, error) {
		*next = *newState()
		return touched{links: true, groups: true}, nil
	})
}

// MergeResult reports what an upsert changed.
type MergeResult struct {
	Links  int `json:"links"`
	Groups int `json:"groups"`
}

// Merge upserts links and groups by id without touching other records.
// Existing records keep their createdAt. References to unknown groups are
// cleared and a parent that would close a cycle is dropped.
func (s *Store) Merge(ctx context.Context, links []domain.Link, groups []domain.Group) (MergeResult, error) {
	var res MergeResult
	err := s.apply(ctx, "merge", func(next *state) (touched, error) {
		for _, g := range groups {
			if !completeGroup(g) {
				continue
			}
			color, ok := domain.NormalizeColor(g.Color)
			if !ok {
				color = domain.DefaultColor
			}
			g.Color = color
			if cur, ok := next.groups[g.ID]; ok {
				g.CreatedAt = cur.CreatedAt
				if cur == g {
					continue
				}
			}
			next.putGroup(g)
			res.Groups++
		}

		// Second pass so parents declared later in the batch resolve.
		if res.Groups > 0 {
			repairGroups(next)
		}

		for _, l := range links {
			if !completeLink(l) {
				continue
			}
			u, err := domain.NormalizeURL(l.URL)
			if err != nil {
				continue
			}
			l.URL = u
			if l.GroupID != "" {
				if _, ok := next.groups[l.GroupID]; !ok {
					l.GroupID = ""
				}
			}
			if cur, ok := next.links[l.ID]; ok {
				l.CreatedAt = cur.CreatedAt
				if cur == l {
					continue
				}
			}
			next.putLink(l)
			res.Links++
		}

		return touched{links: res.Links > 0, groups: res.Groups > 0}, nil
	})
	if err != nil {
		return MergeResult{}, err
	}
	return res, nil
}

func completeLink(l domain.Link) bool {
	return l.ID != "" && strings.TrimSpace(l.Title) != "" && l.URL != "" && !l.CreatedAt.IsZero()
}

func completeGroup(g domain.Group) bool {
	return g.ID != "" && strings.TrimSpace(g.Name) != "" && g.Color != "" && !g.CreatedAt.IsZero()
}

// sanitize decodes raw records into a state that satisfies every tree
// invariant. It returns the number of records that had to be dropped.
func sanitize(rawLinks, rawGroups []json.RawMessage) (*state, int) {
	st := newState()
	dropped := 0

	for _, raw := range rawGroups {
		var g domain.Group
		if err := json.Unmarshal(raw, &g); err != nil || !completeGroup(g) {
			dropped++
			continue
		}
		if _, dup := st.groups[g.ID]; dup {
			dropped++
			continue
		}
		if color, ok := domain.NormalizeColor(g.Color); ok {
			g.Color = color
		} else {
			g.Color = domain.DefaultColor
		}
		st.putGroup(g)
	}
	repairGroups(st)

	for _, raw := range rawLinks {
		var l domain.Link
		if err := json.Unmarshal(raw, &l); err != nil || !completeLink(l) {
			dropped++
			continue
		}
		if _, dup := st.links[l.ID]; dup {
			dropped++
			continue
		}
		u, err := domain.NormalizeURL(l.URL)
		if err != nil {
			dropped++
			continue
		}
		l.URL = u
		if l.GroupID != "" {
			if _, ok := st.groups[l.GroupID]; !ok {
				l.GroupID = ""
			}
		}
		st.putLink(l)
	}

	return st, dropped
}

// repairGroups clears dangling parents and breaks cycles by promoting the
// first group found on a loop to top-level.
func repairGroups(st *state) {
	for _, id := range st.groupOrder {
		g := st.groups[id]
		if g.ParentGroupID == "" {
			continue
		}
		if _, ok := st.groups[g.ParentGroupID]; !ok {
			g.ParentGroupID = ""
			st.groups[id] = g
		}
	}

	for _, id := range st.groupOrder {
		if onCycle(st, id) {
			g := st.groups[id]
			g.ParentGroupID = ""
			st.groups[id] = g
		}
	}
}

func onCycle(st *state, id string) bool {
	seen := map[string]struct{}{}
	for cur := st.groups[id].ParentGroupID; cur != ""; cur = st.groups[cur].ParentGroupID {
		if cur == id {
			return true
		}
		if _, ok := seen[cur]; ok {
			return false
		}
		seen[cur] = struct{}{}
	}
	return false
}
