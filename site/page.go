package site

import (
	"path"
	"strings"
)

// Page is a Markdown source being rendered.
type Page struct {
	File     File
	Markdown string         // source, including front matter
	Meta     map[string]any // front matter, filled when the page is rendered
	URL      string         // site-relative URL, "" for the home page
	AbsURL   string         // URL with a leading slash
	Title    string
	HTML     string // rendered body, filled after OnPageMarkdown
}

// PageURL maps a Markdown source path to its site-relative URL.
//
// With directory URLs "guide/setup.md" becomes "guide/setup/" and
// "guide/index.md" becomes "guide/". Without them the page keeps its name
// with an .html extension.
func PageURL(srcPath string, directoryURLs bool) string {
	dir, name := path.Split(srcPath)
	stem := strings.TrimSuffix(name, path.Ext(name))
	isIndex := stem == "index" || strings.EqualFold(stem, "README")
	switch {
	case isIndex && directoryURLs:
		return dir
	case isIndex:
		return dir + "index.html"
	case directoryURLs:
		return dir + stem + "/"
	default:
		return dir + stem + ".html"
	}
}

// OutputPath returns the file a page URL is written to, relative to the
// site directory.
func OutputPath(url string) string {
	if url == "" || strings.HasSuffix(url, "/") {
		return url + "index.html"
	}
	return url
}
