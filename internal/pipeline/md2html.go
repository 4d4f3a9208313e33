package pipeline

import (
	"bytes"
	"context"
	"fmt"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
)

// Rendered is the HTML body and front matter of one page.
type Rendered struct {
	HTML  string
	Meta  map[string]any
	Title string
}

// GoldmarkConverter converts page Markdown to HTML fragments.
type GoldmarkConverter struct {
	md goldmark.Markdown
}

// NewGoldmarkConverter creates a GoldmarkConverter with GFM, footnotes,
// front matter and syntax highlighting. Raw HTML passes through so embed
// iframes written by plugins survive rendering.
func NewGoldmarkConverter(style string) *GoldmarkConverter {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			extension.Footnote,
			meta.Meta,
			highlighting.NewHighlighting(
				highlighting.WithStyle(style),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(true),
				),
			),
		),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithXHTML(),
			html.WithUnsafe(),
		),
	)
	return &GoldmarkConverter{md: md}
}

// ToHTML converts Markdown to an HTML fragment.
// Goldmark has no context support, so conversion runs in a goroutine and
// the caller's context bounds the wait.
func (c *GoldmarkConverter) ToHTML(ctx context.Context, content []byte) (*Rendered, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type result struct {
		r   *Rendered
		err error
	}
	done := make(chan result, 1)

	go func() {
		pc := parser.NewContext()
		doc := c.md.Parser().Parse(text.NewReader(content), parser.WithContext(pc))

		var buf bytes.Buffer
		if err := c.md.Renderer().Render(&buf, content, doc); err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrHTMLConversion, err)}
			return
		}
		fm, err := meta.TryGet(pc)
		if err != nil {
			done <- result{err: fmt.Errorf("%w: %v", ErrFrontMatter, err)}
			return
		}
		if fm == nil {
			fm = map[string]any{}
		}
		done <- result{r: &Rendered{HTML: buf.String(), Meta: fm, Title: firstHeading(doc, content)}}
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-done:
		return r.r, r.err
	}
}

// firstHeading returns the text of the first level-1 heading, if any.
func firstHeading(doc ast.Node, src []byte) string {
	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		h, ok := n.(*ast.Heading)
		if !ok || h.Level != 1 {
			return ast.WalkContinue, nil
		}
		var buf bytes.Buffer
		_ = ast.Walk(h, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
			if t, ok := c.(*ast.Text); ok && entering {
				buf.Write(t.Segment.Value(src))
			}
			return ast.WalkContinue, nil
		})
		title = buf.String()
		return ast.WalkStop, nil
	})
	return title
}
