package homepage

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

// Homepage template variables ({{HOMEPAGE_VAR_...}}) cannot be resolved
// outside Homepage and are blanked before parsing.
var templateVariable = regexp.MustCompile(`\{\{[^}]+\}\}`)

// Loader reads one Homepage YAML file into T.
type Loader[T any] struct {
	path string
	kind string
}

// NewServicesLoader reads services.yaml.
func NewServicesLoader(path string) *Loader[ServicesConfig] {
	return &Loader[ServicesConfig]{path: path, kind: "services"}
}

// NewBookmarkLoader reads bookmarks.yaml.
func NewBookmarkLoader(path string) *Loader[BookmarksConfig] {
	return &Loader[BookmarksConfig]{path: path, kind: "bookmarks"}
}

func (l *Loader[T]) Path() string { return l.path }

// Load reads and parses the file. It is re-read on every call.
func (l *Loader[T]) Load() (T, error) {
	var out T

	data, err := os.ReadFile(l.path)
	if err != nil {
		return out, fmt.Errorf("failed to read %s file: %w", l.kind, err)
	}

	data = templateVariable.ReplaceAll(data, []byte(`""`))

	if err := yaml.Unmarshal(data, &out); err != nil {
		return out, fmt.Errorf("failed to parse %s yaml: %w", l.kind, err)
	}
	return out, nil
}
