package homepage

import (
	"errors"
	"testing"
	"time"

	"github.com/MrSnakeDoc/linktree/internal/domain"
)

func fixedMapper() *Mapper {
	return &Mapper{now: func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }}
}

func TestMapperMapServices(t *testing.T) {
	config := ServicesConfig{
		{
			"Infrastructure": []map[string]ServiceProps{
				{
					"AdGuard Home": {
						Icon:        "adguard-home.svg",
						Href:        "https://adguard.domain.ext",
						Description: "Network-wide ads blocking",
					},
				},
				{
					"Traefik": {
						Icon: "traefik.svg",
						Href: "traefik.domain.ext",
					},
				},
			},
		},
	}

	got, err := fixedMapper().MapServices(config)
	if err != nil {
		t.Fatalf("MapServices() error = %v", err)
	}

	if len(got.Groups) != 1 || got.Groups[0].Name != "Infrastructure" {
		t.Fatalf("groups = %+v", got.Groups)
	}
	if got.Groups[0].Color != domain.PaletteColor(0) || !got.Groups[0].TopLevel() {
		t.Errorf("group = %+v", got.Groups[0])
	}
	if len(got.Links) != 2 {
		t.Fatalf("MapServices() returned %v links, want 2", len(got.Links))
	}

	adguard := got.Links[0]
	if adguard.Title != "AdGuard Home" || adguard.Description != "Network-wide ads blocking" {
		t.Errorf("adguard = %+v", adguard)
	}
	if adguard.GroupID != got.Groups[0].ID {
		t.Errorf("adguard group = %q, want %q", adguard.GroupID, got.Groups[0].ID)
	}
	if got.Links[1].URL != "https://traefik.domain.ext" {
		t.Errorf("traefik url = %q", got.Links[1].URL)
	}
}

func TestMapperStableIDs(t *testing.T) {
	config := ServicesConfig{
		{"Media": []map[string]ServiceProps{{"Jellyfin": {Href: "https://jellyfin.domain.ext"}}}},
	}

	first, err := NewMapper().MapServices(config)
	if err != nil {
		t.Fatalf("MapServices() error = %v", err)
	}
	second, err := NewMapper().MapServices(config)
	if err != nil {
		t.Fatalf("MapServices() error = %v", err)
	}

	if first.Groups[0].ID != second.Groups[0].ID || first.Links[0].ID != second.Links[0].ID {
		t.Error("ids should not change between imports")
	}
	if len(first.Links[0].ID) != 16 {
		t.Errorf("id length = %d, want 16", len(first.Links[0].ID))
	}
}

func TestMapperMapServicesEmptyConfig(t *testing.T) {
	_, err := NewMapper().MapServices(ServicesConfig{})
	if !errors.Is(err, ErrEmpty) {
		t.Errorf("MapServices() error = %v, want ErrEmpty", err)
	}
}

func TestMapperMapServicesInvalidURL(t *testing.T) {
	config := ServicesConfig{
		{
			"Test": []map[string]ServiceProps{
				{"Invalid Service": {Href: "not a url"}},
				{"Missing Href": {Icon: "test.svg"}},
			},
		},
	}

	if _, err := NewMapper().MapServices(config); !errors.Is(err, ErrEmpty) {
		t.Errorf("MapServices() error = %v, want ErrEmpty", err)
	}
}

func TestMapperMapServicesMultipleGroups(t *testing.T) {
	config := ServicesConfig{
		{"Group1": []map[string]ServiceProps{{"Service1": {Href: "https://service1.example.com"}}}},
		{"Empty": []map[string]ServiceProps{{"Broken": {Href: ""}}}},
		{"Group2": []map[string]ServiceProps{{"Service2": {Href: "https://service2.example.com"}}}},
	}

	got, err := NewMapper().MapServices(config)
	if err != nil {
		t.Fatalf("MapServices() error = %v", err)
	}

	if len(got.Links) != 2 {
		t.Errorf("MapServices() returned %v links, want 2", len(got.Links))
	}
	// Categories without a valid entry are dropped.
	if len(got.Groups) != 2 {
		t.Fatalf("groups = %+v", got.Groups)
	}
	if got.Groups[0].Color == got.Groups[1].Color {
		t.Error("categories should rotate through the palette")
	}
}

func TestMapperMapBookmarks(t *testing.T) {
	config := BookmarksConfig{
		{
			"Developer": []map[string][]BookmarkEntry{
				{"Github": {{Abbr: "GH", Href: "https://github.com/"}}},
				{"Empty": {}},
			},
		},
		{
			"Social": []map[string][]BookmarkEntry{
				{"Reddit": {{Href: "https://reddit.com/"}}},
			},
		},
	}

	got, err := fixedMapper().MapBookmarks(config)
	if err != nil {
		t.Fatalf("MapBookmarks() error = %v", err)
	}
	if len(got.Groups) != 2 || len(got.Links) != 2 {
		t.Fatalf("got %d groups, %d links", len(got.Groups), len(got.Links))
	}
	if got.Links[0].Title != "Github" || got.Links[0].Description != "GH" {
		t.Errorf("github = %+v", got.Links[0])
	}
	if got.Links[1].GroupID != got.Groups[1].ID {
		t.Errorf("reddit should sit in Social")
	}
}

func TestCollectionAdd(t *testing.T) {
	services := ServicesConfig{
		{"Developer": []map[string]ServiceProps{{"Gitea": {Href: "https://git.domain.ext"}}}},
	}
	bookmarks := BookmarksConfig{
		{"Developer": []map[string][]BookmarkEntry{
			{"Gitea": {{Href: "https://git.domain.ext"}}},
			{"Github": {{Href: "https://github.com"}}},
		}},
	}

	m := fixedMapper()
	all, err := m.MapServices(services)
	if err != nil {
		t.Fatalf("MapServices() error = %v", err)
	}
	more, err := m.MapBookmarks(bookmarks)
	if err != nil {
		t.Fatalf("MapBookmarks() error = %v", err)
	}
	all.Add(more)

	if len(all.Groups) != 1 {
		t.Errorf("shared category should merge, got %d groups", len(all.Groups))
	}
	if len(all.Links) != 2 {
		t.Errorf("duplicate url should merge, got %d links", len(all.Links))
	}
}
