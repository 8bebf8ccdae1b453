package processing

import (
	"crypto/sha1"
	"encoding/hex"
	"html"
	"net/url"
	"regexp"
	"strings"
)

var whitespace = regexp.MustCompile(`\s+`)

// CleanText decodes HTML entities and squeezes whitespace.
func CleanText(input string) string {
	if input == "" {
		return ""
	}
	decoded := html.UnescapeString(input)
	decoded = whitespace.ReplaceAllString(decoded, " ")
	return strings.TrimSpace(decoded)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	runes := []rune(s)
	if n <= 0 || len(runes) <= n {
		return s
	}
	if n <= 3 {
		return string(runes[:n])
	}
	return string(runes[:n-3]) + "..."
}

// AllowedLink reports whether link contains any of the allowed domains.
// Matching is by substring, so "livemint.com" admits "www.livemint.com/x".
// An empty allow-list admits nothing.
func AllowedLink(link string, domains []string) bool {
	for _, d := range domains {
		if d != "" && strings.Contains(link, d) {
			return true
		}
	}
	return false
}

// Host returns the host part of link without a leading "www.", or "" when
// link is not an absolute URL.
func Host(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

// BuildDocumentID hashes the article link into a stable index id.
func BuildDocumentID(link string) string {
	s := sha1.Sum([]byte(strings.TrimSpace(link)))
	return hex.EncodeToString(s[:])
}
