package pipeline

import (
	"bytes"
	"fmt"
	"html/template"
	"sort"
	"strconv"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

const (
	// EmbedLanguage is the fence info string that marks an embed.
	EmbedLanguage = "jupyterlite"

	// FrontMatterKey is the front matter key that requests an embed.
	FrontMatterKey = "jupyterlite"

	// DefaultHeight is the iframe height in pixels when none is given.
	DefaultHeight = 600

	maxHeight = 10000
)

// Embed is one request to show a notebook on a page.
type Embed struct {
	Notebook    string // logical name
	Height      int
	FrontMatter bool

	// Byte range of the fenced block in the source, including fences.
	Start, Stop int
}

// FindEmbeds locates embed markers in src. Only top-level fenced blocks
// whose language is "jupyterlite" count; fences nested in lists, quotes or
// other code blocks are left alone. A front matter "jupyterlite" key adds a
// trailing embed.
func FindEmbeds(src []byte) ([]Embed, error) {
	ctx := parser.NewContext()
	doc := metaParser.Parser().Parse(text.NewReader(src), parser.WithContext(ctx))

	var embeds []Embed
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		fcb, ok := n.(*ast.FencedCodeBlock)
		if !ok || fcb.Info == nil {
			continue
		}
		info := string(fcb.Info.Segment.Value(src))
		fields := strings.Fields(info)
		if len(fields) == 0 || fields[0] != EmbedLanguage {
			continue
		}

		var body strings.Builder
		lines := fcb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			body.Write(seg.Value(src))
		}

		e := Embed{Height: DefaultHeight}
		name, err := notebookName(body.String())
		if err != nil {
			return nil, err
		}
		e.Notebook = name
		if e.Height, err = parseAttrs(fields[1:]); err != nil {
			return nil, err
		}
		e.Start, e.Stop = fenceRange(src, fcb)
		embeds = append(embeds, e)
	}

	fm, err := ParseFrontMatter(src)
	if err != nil {
		return nil, err
	}
	if e, ok, err := frontMatterEmbed(fm); err != nil {
		return nil, err
	} else if ok {
		embeds = append(embeds, e)
	}

	return embeds, nil
}

// frontMatterEmbed reads "jupyterlite: intro" or
// "jupyterlite: {notebook: intro, height: 400}".
func frontMatterEmbed(fm map[string]any) (Embed, bool, error) {
	v, ok := fm[FrontMatterKey]
	if !ok || v == nil {
		return Embed{}, false, nil
	}

	e := Embed{Height: DefaultHeight, FrontMatter: true, Start: -1, Stop: -1}
	switch val := v.(type) {
	case string:
		name, err := notebookName(val)
		if err != nil {
			return Embed{}, false, err
		}
		e.Notebook = name
		return e, true, nil
	case map[any]any:
		return embedFromMap(e, func(k string) any { return val[k] })
	case map[string]any:
		return embedFromMap(e, func(k string) any { return val[k] })
	case bool:
		return Embed{}, false, nil
	}
	return Embed{}, false, fmt.Errorf("%w: front matter %q must be a notebook name", ErrEmbedSyntax, FrontMatterKey)
}

func embedFromMap(e Embed, get func(string) any) (Embed, bool, error) {
	nb, _ := get("notebook").(string)
	name, err := notebookName(nb)
	if err != nil {
		return Embed{}, false, err
	}
	e.Notebook = name
	switch h := get("height").(type) {
	case nil:
	case int:
		e.Height = h
	case string:
		if e.Height, err = parseHeight(h); err != nil {
			return Embed{}, false, err
		}
	default:
		return Embed{}, false, fmt.Errorf("%w: height %v", ErrEmbedSyntax, h)
	}
	if e.Height <= 0 || e.Height > maxHeight {
		return Embed{}, false, fmt.Errorf("%w: height %d out of range", ErrEmbedSyntax, e.Height)
	}
	return e, true, nil
}

// notebookName accepts "intro", "intro.ipynb" or "notebooks/intro.ipynb".
func notebookName(body string) (string, error) {
	name := strings.TrimSpace(body)
	if name == "" {
		return "", fmt.Errorf("%w: missing notebook name", ErrEmbedSyntax)
	}
	if strings.ContainsAny(name, "\n\"'<>") {
		return "", fmt.Errorf("%w: %q is not a notebook name", ErrEmbedSyntax, name)
	}
	name = strings.TrimPrefix(name, "notebooks/")
	name = strings.TrimSuffix(name, ".ipynb")
	return name, nil
}

func parseAttrs(fields []string) (int, error) {
	height := DefaultHeight
	for _, f := range fields {
		key, val, ok := strings.Cut(f, "=")
		if !ok || key != "height" {
			return 0, fmt.Errorf("%w: unknown attribute %q", ErrEmbedSyntax, f)
		}
		h, err := parseHeight(strings.Trim(val, `"'`))
		if err != nil {
			return 0, err
		}
		height = h
	}
	return height, nil
}

func parseHeight(s string) (int, error) {
	h, err := strconv.Atoi(strings.TrimSuffix(s, "px"))
	if err != nil || h <= 0 || h > maxHeight {
		return 0, fmt.Errorf("%w: height %q", ErrEmbedSyntax, s)
	}
	return h, nil
}

// fenceRange returns the byte range of a fenced block from the start of its
// opening fence line to the end of its closing fence line.
func fenceRange(src []byte, fcb *ast.FencedCodeBlock) (int, int) {
	start := bytes.LastIndexByte(src[:fcb.Info.Segment.Start], '\n') + 1

	// End of the opening line, or of the last content line.
	pos := lineEnd(src, fcb.Info.Segment.Stop)
	if lines := fcb.Lines(); lines.Len() > 0 {
		pos = lineEnd(src, lines.At(lines.Len()-1).Stop-1)
	}
	if pos >= len(src) {
		return start, len(src)
	}

	// The closing fence is absent when the block runs to end of input.
	closing := src[pos:lineEnd(src, pos)]
	trimmed := bytes.TrimLeft(closing, " ")
	if bytes.HasPrefix(trimmed, []byte("```")) || bytes.HasPrefix(trimmed, []byte("~~~")) {
		return start, lineEnd(src, pos)
	}
	return start, pos
}

// lineEnd returns the offset just past the newline ending the line at pos.
func lineEnd(src []byte, pos int) int {
	if pos < 0 {
		pos = 0
	}
	if pos >= len(src) {
		return len(src)
	}
	i := bytes.IndexByte(src[pos:], '\n')
	if i < 0 {
		return len(src)
	}
	return pos + i + 1
}

// IframeView is the data rendered for one embed.
type IframeView struct {
	Src    string
	Title  string
	Height int
}

var iframeTemplate = template.Must(template.New("iframe").Parse(
	`<div class="jupyterlite-embed">` +
		`<iframe data-jupyterlite src="{{.Src}}" title="{{.Title}}" width="100%" height="{{.Height}}" style="border: 0" loading="lazy"></iframe>` +
		`</div>`))

// RenderIframe renders an embed as an HTML block.
func RenderIframe(v IframeView) string {
	var buf strings.Builder
	// Execution over a fixed struct cannot fail.
	_ = iframeTemplate.Execute(&buf, v)
	return buf.String()
}

// ScriptBlock renders a script tag as a standalone HTML block.
func ScriptBlock(src string) string {
	return "<script src=\"" + template.HTMLEscapeString(src) + "\"></script>"
}

// RewriteEmbeds replaces each fenced embed with render(e) and appends
// front matter embeds at the end. Blocks are separated by blank lines so
// the output stays an HTML block in Markdown.
func RewriteEmbeds(src []byte, embeds []Embed, render func(Embed) string) []byte {
	fenced := make([]Embed, 0, len(embeds))
	var trailing []Embed
	for _, e := range embeds {
		if e.FrontMatter {
			trailing = append(trailing, e)
			continue
		}
		fenced = append(fenced, e)
	}
	sort.Slice(fenced, func(i, j int) bool { return fenced[i].Start < fenced[j].Start })

	var out bytes.Buffer
	last := 0
	for _, e := range fenced {
		out.Write(src[last:e.Start])
		out.WriteString("\n" + render(e) + "\n\n")
		last = e.Stop
	}
	out.Write(src[last:])

	for _, e := range trailing {
		if out.Len() > 0 && !bytes.HasSuffix(out.Bytes(), []byte("\n")) {
			out.WriteByte('\n')
		}
		out.WriteString("\n" + render(e) + "\n")
	}
	return out.Bytes()
}
