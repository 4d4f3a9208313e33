package pipeline

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// InjectScript appends <script src="..."> to the body of an HTML document.
// A document that already loads src is returned unchanged.
func InjectScript(htmlContent, src string) (string, error) {
	doc, isFragment, err := parseHTML(htmlContent)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLInjection, err)
	}
	if hasScript(doc, src) {
		return htmlContent, nil
	}

	target := findElement(doc, atom.Body)
	if target == nil {
		target = doc
	}
	target.AppendChild(&html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Script,
		Data:     "script",
		Attr:     []html.Attribute{{Key: "src", Val: src}},
	})
	// Keep the closing tag on its own line.
	target.AppendChild(&html.Node{Type: html.TextNode, Data: "\n"})

	out, err := renderHTML(doc, isFragment)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHTMLInjection, err)
	}
	return out, nil
}

func hasScript(n *html.Node, src string) bool {
	if n.Type == html.ElementNode && n.DataAtom == atom.Script {
		for _, a := range n.Attr {
			if a.Key == "src" && a.Val == src {
				return true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasScript(c, src) {
			return true
		}
	}
	return false
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findElement(c, a); found != nil {
			return found
		}
	}
	return nil
}

// parseHTML parses HTML content, handling both full documents and fragments.
// Returns the parsed node, whether it was a fragment, and any error.
func parseHTML(content string) (*html.Node, bool, error) {
	trimmed := strings.ToLower(strings.TrimSpace(content))

	if strings.HasPrefix(trimmed, "<!doctype") || strings.HasPrefix(trimmed, "<html") {
		doc, err := html.Parse(strings.NewReader(content))
		return doc, false, err
	}

	// Fragments are parsed in a <div> context and rendered back child by child.
	container := &html.Node{Type: html.ElementNode, DataAtom: atom.Div, Data: "div"}
	nodes, err := html.ParseFragment(strings.NewReader(content), container)
	if err != nil {
		return nil, true, err
	}
	for _, n := range nodes {
		container.AppendChild(n)
	}
	return container, true, nil
}

// renderHTML renders the document back to string.
// For fragments, only renders the children (avoids adding a wrapper).
func renderHTML(doc *html.Node, isFragment bool) (string, error) {
	var buf strings.Builder

	if isFragment {
		for c := doc.FirstChild; c != nil; c = c.NextSibling {
			if err := html.Render(&buf, c); err != nil {
				return "", err
			}
		}
		return buf.String(), nil
	}

	if err := html.Render(&buf, doc); err != nil {
		return "", err
	}
	return buf.String(), nil
}
