package domain

import (
	"net/url"
	"regexp"
	"strings"
)

var urlInText = regexp.MustCompile(`(?i)\b(?:https?://|www\.)[^\s<>"']+`)

// FormatURL trims s and prefixes https:// when no http(s) scheme is present.
func FormatURL(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return s
	}
	return "https://" + s
}

// IsValidURL reports whether s parses as an absolute URL with a host.
func IsValidURL(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// NormalizeURL formats s and validates the result.
func NormalizeURL(s string) (string, error) {
	formatted := FormatURL(s)
	if formatted == "" {
		return "", ValidationError{Field: "url", Reason: "required"}
	}
	if !IsValidURL(formatted) {
		return "", ValidationError{Field: "url", Reason: "not a valid absolute URL"}
	}
	return formatted, nil
}

// ExtractURLFromText returns the first URL-looking token in text.
// A lone token without spaces is returned as-is when it looks like a host.
func ExtractURLFromText(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	// text/uri-list may carry comment lines starting with '#'
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if m := urlInText.FindString(line); m != "" {
			return strings.TrimRight(m, ".,;:!?)")
		}
	}

	if !strings.ContainsAny(text, " \t\r\n") && strings.Contains(text, ".") {
		return text
	}
	return ""
}

// HostnameTitle derives a display title from a URL: its hostname without "www.".
func HostnameTitle(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Hostname() == "" {
		return raw
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
