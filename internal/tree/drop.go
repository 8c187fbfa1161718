package tree

import (
	"context"

	"github.com/MrSnakeDoc/linktree/internal/domain"
)

// Drop payload kinds.
const (
	DropLink  = "link"
	DropGroup = "group"
	DropURL   = "url"
)

// DropPayload is what a drag gesture carries onto a target.
// ID is set for link/group drops, URL holds the raw dropped text otherwise.
type DropPayload struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	URL  string `json:"url,omitempty"`
}

// DropResult tells the caller what a drop did.
type DropResult struct {
	Type    string       `json:"type"`
	Applied bool         `json:"applied"`
	Link    *domain.Link `json:"link,omitempty"`
}

// Drop applies a drag payload onto target ("" for the root).
// Group drops that would create a cycle are ignored, matching MoveGroup.
func (s *Store) Drop(ctx context.Context, p DropPayload, target string) (DropResult, error) {
	switch p.Type {
	case DropLink:
		if p.ID == "" {
			return DropResult{}, domain.ValidationError{Field: "id", Reason: "required for link drops"}
		}
		moved, err := s.MoveLink(ctx, p.ID, target)
		return DropResult{Type: p.Type, Applied: moved}, err

	case DropGroup:
		if p.ID == "" {
			return DropResult{}, domain.ValidationError{Field: "id", Reason: "required for group drops"}
		}
		moved, err := s.MoveGroup(ctx, p.ID, target)
		return DropResult{Type: p.Type, Applied: moved}, err

	case DropURL:
		extracted := domain.ExtractURLFromText(p.URL)
		if extracted == "" {
			return DropResult{}, domain.ValidationError{Field: "url", Reason: "no URL found in dropped text"}
		}
		u, err := domain.NormalizeURL(extracted)
		if err != nil {
			return DropResult{}, err
		}
		link, err := s.AddLink(ctx, domain.LinkInput{
			Title:   domain.HostnameTitle(u),
			URL:     u,
			GroupID: target,
		})
		if err != nil {
			return DropResult{}, err
		}
		return DropResult{Type: p.Type, Applied: true, Link: &link}, nil

	default:
		return DropResult{}, domain.ValidationError{Field: "type", Reason: "must be link, group or url"}
	}
}
