package homepage

// Both Homepage files are lists of single-key maps: the key is a category
// name, the value lists single-key maps of entry name to properties.
//
//	- Developer:
//	    - Gitea:
//	        href: https://git.example.com
//
// Only the fields that become link attributes are decoded. Everything else
// (widgets, pings, monitors) is ignored by the YAML decoder.

// ServicesConfig is the root of services.yaml.
type ServicesConfig []map[string][]map[string]ServiceProps

// ServiceProps are the properties of one service.
type ServiceProps struct {
	Href        string `yaml:"href"`
	Icon        string `yaml:"icon,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// BookmarksConfig is the root of bookmarks.yaml. Bookmarks wrap their
// properties in a one-element list.
type BookmarksConfig []map[string][]map[string][]BookmarkEntry

// BookmarkEntry are the properties of one bookmark. Abbr becomes the link
// description.
type BookmarkEntry struct {
	Href string `yaml:"href"`
	Icon string `yaml:"icon,omitempty"`
	Abbr string `yaml:"abbr,omitempty"`
}
