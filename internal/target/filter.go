package target

import (
	"net/url"
	"path"
	"strings"
)

// Filter returns the URLs whose path matches none of the exclude patterns.
// Order is preserved. A nil or empty pattern list returns urls unchanged.
//
// Design decision: Patterns match the URL path only, not the host or query,
// so one site config can be reused across staging and production hosts.
func Filter(urls []string, excludePatterns []string) []string {
	if len(excludePatterns) == 0 {
		return urls
	}

	kept := make([]string, 0, len(urls))
	for _, u := range urls {
		if !IsExcluded(u, excludePatterns) {
			kept = append(kept, u)
		}
	}
	return kept
}

// IsExcluded reports whether the path of rawURL matches any of the patterns.
// Unparseable URLs are never excluded; validation is ParseURLs' job.
func IsExcluded(rawURL string, patterns []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	p := u.Path
	if p == "" {
		p = "/"
	}

	for _, pattern := range patterns {
		if matchPattern(pattern, p) {
			return true
		}
	}
	return false
}

// matchPattern checks if a URL path matches a glob pattern.
// Patterns can use:
//   - * to match any sequence of non-separator characters
//   - ? to match any single character
//   - a trailing /* to match everything below a prefix
//
// Examples:
//   - "/admin/*" matches "/admin", "/admin/users", "/admin/users/1"
//   - "*.pdf" matches "/docs/file.pdf"
//   - "/blog/20??" matches "/blog/2024"
func matchPattern(pattern, urlPath string) bool {
	if pattern == "" {
		return false
	}

	if strings.HasSuffix(pattern, "/*") {
		prefix := strings.TrimSuffix(pattern, "/*")
		if strings.HasPrefix(urlPath, prefix+"/") || urlPath == prefix {
			return true
		}
	}

	if strings.HasPrefix(pattern, "*.") {
		if strings.HasSuffix(urlPath, strings.TrimPrefix(pattern, "*")) {
			return true
		}
	}

	matched, err := path.Match(pattern, urlPath)
	if err != nil {
		return false
	}
	if matched {
		return true
	}

	// Patterns without a slash are matched against the last path segment.
	if !strings.Contains(pattern, "/") {
		matched, err := path.Match(pattern, path.Base(urlPath))
		if err == nil && matched {
			return true
		}
	}

	return false
}
