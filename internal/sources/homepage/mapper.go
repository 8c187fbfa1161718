package homepage

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/domain"
)

// ErrEmpty is returned when a config yields no importable link.
var ErrEmpty = errors.New("no valid links found in homepage config")

// Collection is what a Homepage file contributes to the tree: one
// top-level group per category and one link per entry.
type Collection struct {
	Groups []domain.Group
	Links  []domain.Link
}

// Add appends other, keeping the first occurrence of every id.
func (c *Collection) Add(other Collection) {
	seen := make(map[string]struct{}, len(c.Groups)+len(c.Links))
	for _, g := range c.Groups {
		seen[g.ID] = struct{}{}
	}
	for _, l := range c.Links {
		seen[l.ID] = struct{}{}
	}
	for _, g := range other.Groups {
		if _, ok := seen[g.ID]; !ok {
			seen[g.ID] = struct{}{}
			c.Groups = append(c.Groups, g)
		}
	}
	for _, l := range other.Links {
		if _, ok := seen[l.ID]; !ok {
			seen[l.ID] = struct{}{}
			c.Links = append(c.Links, l)
		}
	}
}

// Mapper converts Homepage configs to groups and links
type Mapper struct {
	now func() time.Time
}

// NewMapper creates a new mapper instance
func NewMapper() *Mapper {
	return &Mapper{now: time.Now}
}

// MapServices converts a services.yaml config. Entries without a usable
// href are skipped.
func (m *Mapper) MapServices(config ServicesConfig) (Collection, error) {
	b := m.builder()
	for _, groupMap := range config {
		for _, groupName := range sortedKeys(groupMap) {
			groupID := b.group(groupName)
			for _, serviceMap := range groupMap[groupName] {
				for _, serviceName := range sortedKeys(serviceMap) {
					props := serviceMap[serviceName]
					b.link(groupID, serviceName, props.Href, props.Description)
				}
			}
		}
	}
	return b.result()
}

// MapBookmarks converts a bookmarks.yaml config. Each bookmark holds a list
// with a single entry; the abbreviation becomes the description.
func (m *Mapper) MapBookmarks(config BookmarksConfig) (Collection, error) {
	b := m.builder()
	for _, category := range config {
		for _, categoryName := range sortedKeys(category) {
			groupID := b.group(categoryName)
			for _, bookmarkMap := range category[categoryName] {
				for _, bookmarkName := range sortedKeys(bookmarkMap) {
					entries := bookmarkMap[bookmarkName]
					if len(entries) == 0 {
						continue
					}
					entry := entries[0]
					b.link(groupID, bookmarkName, entry.Href, entry.Abbr)
				}
			}
		}
	}
	return b.result()
}

type builder struct {
	now    time.Time
	out    Collection
	groups map[string]int
}

func (m *Mapper) builder() *builder {
	return &builder{now: m.now().UTC(), groups: make(map[string]int)}
}

// group registers a category and returns its stable id. Colors follow the
// palette round-robin in category order.
func (b *builder) group(name string) string {
	name = strings.TrimSpace(name)
	id := stableID("group", name)
	if _, ok := b.groups[id]; ok {
		return id
	}
	b.groups[id] = len(b.out.Groups)
	b.out.Groups = append(b.out.Groups, domain.Group{
		ID:        id,
		Name:      name,
		Color:     domain.PaletteColor(len(b.out.Groups)),
		CreatedAt: b.now,
	})
	return id
}

func (b *builder) link(groupID, name, href, description string) {
	u, err := domain.NormalizeURL(href)
	if err != nil {
		return
	}
	title := strings.TrimSpace(name)
	if title == "" {
		title = domain.HostnameTitle(u)
	}
	b.out.Links = append(b.out.Links, domain.Link{
		ID:          stableID("link", u),
		Title:       title,
		URL:         u,
		Description: strings.TrimSpace(description),
		GroupID:     groupID,
		CreatedAt:   b.now,
	})
}

func (b *builder) result() (Collection, error) {
	if len(b.out.Links) == 0 {
		return Collection{}, ErrEmpty
	}
	// Categories with no valid entry are not imported.
	used := make(map[string]struct{}, len(b.out.Groups))
	for _, l := range b.out.Links {
		used[l.GroupID] = struct{}{}
	}
	groups := b.out.Groups[:0]
	for _, g := range b.out.Groups {
		if _, ok := used[g.ID]; ok {
			groups = append(groups, g)
		}
	}
	b.out.Groups = groups
	return b.out, nil
}

// stableID hashes kind and key so re-imports upsert the same records.
func stableID(kind, key string) string {
	hash := sha256.Sum256([]byte(kind + ":" + key))
	return hex.EncodeToString(hash[:])[:16]
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
