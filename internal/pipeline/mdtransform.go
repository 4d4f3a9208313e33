package pipeline

import (
	"regexp"
	"strings"
)

var crlfOrCR = regexp.MustCompile(`\r\n?`)

// PreprocessMarkdown normalizes line endings so byte offsets found by the
// parser line up with the rewritten source. Everything else, blank lines
// included, is left as written.
func PreprocessMarkdown(content string) string {
	return crlfOrCR.ReplaceAllString(content, "\n")
}

// RelativeRoot returns the path from a page URL back to the site root.
// "" and "index.html" give ".", "guide/" gives "..", "guide/a.html" gives "..".
func RelativeRoot(pageURL string) string {
	u := strings.TrimPrefix(pageURL, "/")
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	depth := strings.Count(u, "/")
	if depth == 0 {
		return "."
	}
	return strings.TrimSuffix(strings.Repeat("../", depth), "/")
}
