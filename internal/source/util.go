package source

import (
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var htmlTagRegex = regexp.MustCompile(`<[^>]*>`)

// extractText converts an HTML or HTML-encoded string to plain text: it
// unescapes entities, strips all tags, then collapses whitespace.
func extractText(content string) string {
	unescaped := html.UnescapeString(content)
	plain := htmlTagRegex.ReplaceAllString(unescaped, "")
	return strings.Join(strings.Fields(plain), " ")
}

// parseRetryAfter parses the Retry-After header value into a duration.
// Supports seconds format (e.g. "120"). Returns zero if absent or unparseable.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

var internshipKeywords = []string{"实习", "intern"}

// isInternship reports whether a title advertises an internship. Internships
// are excluded at the source, matching every adapter's upstream behavior.
func isInternship(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range internshipKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
