package homepage

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	path := writeFile(t, "services.yaml", `---
- Infrastructure:
    - AdGuard Home:
        icon: adguard-home.svg
        href: https://adguard.domain.ext
        description: Network-wide ads & trackers blocking DNS server
`)

	config, err := NewServicesLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	props := config[0]["Infrastructure"][0]["AdGuard Home"]
	if props.Href != "https://adguard.domain.ext" {
		t.Errorf("href = %q", props.Href)
	}
}

func TestLoaderLoadWithTemplateVariables(t *testing.T) {
	path := writeFile(t, "services.yaml", `---
- Infrastructure:
    - AdGuard Home:
        icon: adguard-home.svg
        href: {{HOMEPAGE_VAR_ADGUARD_URL}}
        description: Test
`)

	config, err := NewServicesLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if href := config[0]["Infrastructure"][0]["AdGuard Home"].Href; href != "" {
		t.Errorf("template variable should be blanked, got %q", href)
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	if _, err := NewServicesLoader("/nonexistent/path/services.yaml").Load(); err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestBookmarkLoaderLoad(t *testing.T) {
	path := writeFile(t, "bookmarks.yaml", `---
- Developer:
    - Github:
        - abbr: GH
          href: https://github.com/
- Social:
    - Reddit:
        - icon: reddit.png
          href: https://reddit.com/
`)

	config, err := NewBookmarkLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(config) != 2 {
		t.Fatalf("categories = %d, want 2", len(config))
	}
	if gh := config[0]["Developer"][0]["Github"][0]; gh.Abbr != "GH" {
		t.Errorf("abbr = %q", gh.Abbr)
	}
}

func TestBookmarkLoaderInvalidYAML(t *testing.T) {
	path := writeFile(t, "bookmarks.yaml", "- Developer: [unclosed")
	if _, err := NewBookmarkLoader(path).Load(); err == nil {
		t.Error("Load() with invalid yaml should return error")
	}
}

func TestTemplateVariablesBlanked(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"single", "url: {{HOMEPAGE_VAR_URL}}", `url: ""`},
		{"several", "a: {{X}} b: {{Y}}", `a: "" b: ""`},
		{"none", "plain text", "plain text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(templateVariable.ReplaceAll([]byte(tt.input), []byte(`""`)))
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoaderPath(t *testing.T) {
	if p := NewServicesLoader("/data/services.yaml").Path(); p != "/data/services.yaml" {
		t.Errorf("Path() = %q", p)
	}
	if p := NewBookmarkLoader("/data/bookmarks.yaml").Path(); p != "/data/bookmarks.yaml" {
		t.Errorf("Path() = %q", p)
	}
}
