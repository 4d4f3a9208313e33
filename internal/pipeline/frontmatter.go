package pipeline

import (
	"fmt"

	"github.com/yuin/goldmark"
	meta "github.com/yuin/goldmark-meta"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// metaParser parses only front matter and block structure.
var metaParser = goldmark.New(goldmark.WithExtensions(meta.Meta))

// ParseFrontMatter returns the YAML front matter of a Markdown document.
// A document without front matter yields an empty map.
func ParseFrontMatter(src []byte) (map[string]any, error) {
	ctx := parser.NewContext()
	metaParser.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	m, err := meta.TryGet(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFrontMatter, err)
	}
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}
