package target

import (
	"net/url"
	"strings"
)

// ParseURLs splits text on newlines and commas, trims each entry and keeps
// only valid absolute http/https URLs. Input order is preserved and invalid
// entries are dropped silently.
func ParseURLs(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == '\r' || r == ','
	})

	urls := make([]string, 0, len(fields))
	for _, f := range fields {
		candidate := strings.TrimSpace(f)
		if IsValidURL(candidate) {
			urls = append(urls, candidate)
		}
	}
	return urls
}

// ParseURLList runs every element of list through ParseURLs and concatenates
// the results. It is used for inputs that already arrive as a list, such as
// CLI arguments or a JSON array, where an element may still contain several
// comma separated URLs.
func ParseURLList(list []string) []string {
	var urls []string
	for _, item := range list {
		urls = append(urls, ParseURLs(item)...)
	}
	if urls == nil {
		return []string{}
	}
	return urls
}

// IsValidURL reports whether s is an absolute http or https URL with a host.
func IsValidURL(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t") {
		return false
	}

	u, err := url.Parse(s)
	if err != nil {
		return false
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}

	return u.Host != "" && u.Hostname() != ""
}
