// Package pipeline implements the Markdown and HTML stages shared by the
// plugin and the reference site builder.
//
// This package handles:
//   - Markdown preprocessing (line normalization)
//   - Front matter parsing via goldmark-meta
//   - Embed marker detection on the goldmark AST and rewriting into iframes
//   - Markdown to HTML conversion via Goldmark with syntax highlighting
//   - Script injection into runtime HTML documents
//   - Relative .md link rewriting for rendered pages
package pipeline
