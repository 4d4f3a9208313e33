package pipeline

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// LinkMapper maps a relative .md link target to its page URL.
// It returns false to leave the link untouched.
type LinkMapper func(target string) (string, bool)

// RewriteMarkdownLinks rewrites a[href] values pointing at relative .md files,
// keeping any #fragment. URLs, anchors and absolute paths are left alone.
func RewriteMarkdownLinks(htmlContent string, mapLink LinkMapper) (string, error) {
	if mapLink == nil {
		return htmlContent, nil
	}

	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", err
	}

	rewriteNode(doc, mapLink)

	return renderHTML(doc, isFragment)
}

// rewriteNode traverses the DOM and rewrites link targets.
func rewriteNode(n *html.Node, mapLink LinkMapper) {
	if n.Type == html.ElementNode && n.DataAtom == atom.A {
		rewriteAttr(n, "href", mapLink)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		rewriteNode(c, mapLink)
	}
}

// rewriteAttr rewrites a single attribute if it's a relative .md path.
func rewriteAttr(n *html.Node, attrName string, mapLink LinkMapper) {
	for i, attr := range n.Attr {
		if attr.Key != attrName || !isRelativePath(attr.Val) {
			continue
		}

		target, fragment, _ := strings.Cut(attr.Val, "#")
		unescaped, err := url.PathUnescape(target)
		if err != nil || !strings.HasSuffix(unescaped, ".md") {
			continue
		}

		mapped, ok := mapLink(unescaped)
		if !ok {
			continue
		}
		if fragment != "" {
			mapped += "#" + fragment
		}
		n.Attr[i].Val = mapped
	}
}

// isRelativePath returns true if the path should be rewritten.
func isRelativePath(path string) bool {
	if path == "" {
		return false
	}

	// URLs with a scheme and protocol-relative URLs.
	if strings.Contains(path, "://") ||
		strings.HasPrefix(path, "mailto:") ||
		strings.HasPrefix(path, "data:") ||
		strings.HasPrefix(path, "//") {
		return false
	}

	return !strings.HasPrefix(path, "#") && !strings.HasPrefix(path, "/")
}
