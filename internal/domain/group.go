package domain

import (
	"strings"
	"time"
)

// Palette is the fixed set of color tokens a Group may carry.
var Palette = []string{
	"#3B82F6", "#10B981", "#F59E0B", "#EF4444", "#8B5CF6",
	"#06B6D4", "#F97316", "#84CC16", "#EC4899", "#6B7280",
}

// DefaultColor is used when a group is created without a color.
const DefaultColor = "#3B82F6"

// Group is a named, colored container for links and other groups.
// Groups form a forest through ParentGroupID.
type Group struct {
	// ID is minted by the mutation engine and never changes.
	ID string `json:"id"`

	// Name is the display label. Never empty.
	Name string `json:"name"`

	// Color is one of Palette.
	Color string `json:"color"`

	// ParentGroupID references the parent Group. Empty means top-level.
	ParentGroupID string `json:"parentGroupId,omitempty"`

	// CreatedAt is set once when the group is added.
	CreatedAt time.Time `json:"createdAt"`
}

// TopLevel reports whether the group has no parent.
func (g Group) TopLevel() bool { return g.ParentGroupID == "" }

// GroupInput carries the user-supplied fields of a new group.
type GroupInput struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// GroupPatch is a shallow merge: nil fields are left unchanged.
// A non-nil ParentGroupID pointing at "" makes the group top-level.
type GroupPatch struct {
	Name          *string `json:"name,omitempty"`
	Color         *string `json:"color,omitempty"`
	ParentGroupID *string `json:"parentGroupId,omitempty"`
}

// NormalizeColor returns the canonical palette token for c.
// ok is false when c is not part of the palette.
func NormalizeColor(c string) (string, bool) {
	c = strings.TrimSpace(c)
	if c == "" {
		return DefaultColor, true
	}
	for _, p := range Palette {
		if strings.EqualFold(p, c) {
			return p, true
		}
	}
	return "", false
}

// PaletteColor picks a palette color by index, wrapping around.
func PaletteColor(i int) string {
	if i < 0 {
		i = -i
	}
	return Palette[i%len(Palette)]
}
