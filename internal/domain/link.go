package domain

import "time"

// Link is a single bookmarked URL.
// A Link lives either at the root ("ungrouped") or inside exactly one Group.
type Link struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is minted by the mutation engine and never changes.
	ID string `json:"id"`

	// ─────────────────────────────
	// User-editable fields
	// ─────────────────────────────

	// Title is the display label. Never empty.
	Title string `json:"title"`

	// URL is always stored normalized (absolute, scheme present).
	// Example: https://example.com
	URL string `json:"url"`

	// Description is optional free text.
	Description string `json:"description,omitempty"`

	// ─────────────────────────────
	// Placement
	// ─────────────────────────────

	// GroupID references the owning Group. Empty means ungrouped.
	GroupID string `json:"groupId,omitempty"`

	// ─────────────────────────────
	// Metadata
	// ─────────────────────────────

	// CreatedAt is set once when the link is added.
	CreatedAt time.Time `json:"createdAt"`
}

// Ungrouped reports whether the link sits at the root.
func (l Link) Ungrouped() bool { return l.GroupID == "" }

// LinkInput carries the user-supplied fields of a new link.
type LinkInput struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	GroupID     string `json:"groupId,omitempty"`
}

// LinkPatch is a shallow merge: nil fields are left unchanged.
// A non-nil GroupID pointing at "" moves the link to the root.
type LinkPatch struct {
	Title       *string `json:"title,omitempty"`
	URL         *string `json:"url,omitempty"`
	Description *string `json:"description,omitempty"`
	GroupID     *string `json:"groupId,omitempty"`
}
