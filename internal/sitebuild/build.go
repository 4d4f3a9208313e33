package sitebuild

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/styles"
	"go.uber.org/zap"

	"github.com/alnah/go-jupyterlite/internal/fileutil"
	"github.com/alnah/go-jupyterlite/internal/pipeline"
	"github.com/alnah/go-jupyterlite/site"
)

// highlightCSS is written to the site for class-based code highlighting.
const highlightCSS = "assets/highlight.css"

// ErrUnsafeSiteDir is returned when cleaning would delete the docs directory.
var ErrUnsafeSiteDir = errors.New("site_dir must not contain docs_dir")

//go:embed layout.html
var layoutHTML string

var layout = template.Must(template.New("layout").Parse(layoutHTML))

type layoutView struct {
	SiteName string
	Title    string
	Root     string
	Body     template.HTML
}

// Result summarizes one build.
type Result struct {
	Pages int
	Files int // non-page files written, including virtual ones
	Took  time.Duration
}

// Builder renders a docs directory into a site directory.
// A Builder runs one build at a time.
type Builder struct {
	cfg       site.Config
	plugins   []site.Plugin
	converter *pipeline.GoldmarkConverter
	style     string
	clean     bool
	logger    *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithPlugins appends plugins, called in order.
func WithPlugins(plugins ...site.Plugin) Option {
	return func(b *Builder) { b.plugins = append(b.plugins, plugins...) }
}

// WithHighlightStyle sets the chroma style used for code blocks.
func WithHighlightStyle(style string) Option {
	return func(b *Builder) {
		if style != "" {
			b.style = style
		}
	}
}

// WithClean removes the site directory before writing.
func WithClean(clean bool) Option {
	return func(b *Builder) { b.clean = clean }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) {
		if l != nil {
			b.logger = l
		}
	}
}

// New creates a Builder for cfg. DocsDir and SiteDir must be absolute.
func New(cfg site.Config, opts ...Option) *Builder {
	b := &Builder{cfg: cfg, style: "github", logger: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	b.converter = pipeline.NewGoldmarkConverter(b.style)
	return b
}

// Build runs one full pass.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()
	cfg := &b.cfg

	for _, p := range b.plugins {
		next, err := p.OnConfig(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		cfg = next
	}

	files, err := collect(cfg.DocsDir)
	if err != nil {
		return nil, err
	}
	for _, p := range b.plugins {
		next, err := p.OnFiles(ctx, files, cfg)
		if err != nil {
			return nil, fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		files = next
	}

	if b.clean {
		if err := cleanDir(cfg.SiteDir, cfg.DocsDir); err != nil {
			return nil, err
		}
	}

	res := &Result{}
	for _, f := range files.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isPage(f) {
			if err := b.renderPage(ctx, f, files, cfg); err != nil {
				return nil, err
			}
			res.Pages++
			continue
		}
		dest := filepath.Join(cfg.SiteDir, filepath.FromSlash(f.SrcPath()))
		if err := f.Materialize(dest); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.SrcPath(), err)
		}
		res.Files++
	}

	if err := b.writeHighlightCSS(cfg.SiteDir); err != nil {
		return nil, err
	}

	for _, p := range b.plugins {
		if err := p.OnPostBuild(ctx, cfg); err != nil {
			return nil, fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
	}

	res.Took = time.Since(start)
	b.logger.Info("site built",
		zap.String("site_dir", cfg.SiteDir),
		zap.Int("pages", res.Pages),
		zap.Int("files", res.Files),
		zap.Duration("took", res.Took))
	return res, nil
}

func (b *Builder) renderPage(ctx context.Context, f site.File, files *site.Files, cfg *site.Config) error {
	src, err := f.Content()
	if err != nil {
		return fmt.Errorf("reading %s: %w", f.SrcPath(), err)
	}

	url := site.PageURL(f.SrcPath(), cfg.UseDirectoryURLs)
	page := &site.Page{
		File:     f,
		Markdown: string(src),
		URL:      url,
		AbsURL:   "/" + url,
	}

	md := page.Markdown
	for _, p := range b.plugins {
		if md, err = p.OnPageMarkdown(ctx, md, page, cfg, files); err != nil {
			return fmt.Errorf("plugin %s: page %s: %w", p.Name(), f.SrcPath(), err)
		}
	}

	rendered, err := b.converter.ToHTML(ctx, []byte(md))
	if err != nil {
		return fmt.Errorf("rendering %s: %w", f.SrcPath(), err)
	}
	page.Meta = rendered.Meta
	page.Title = pageTitle(page, rendered)

	body, err := pipeline.RewriteMarkdownLinks(rendered.HTML, linkMapper(page, files, cfg.UseDirectoryURLs))
	if err != nil {
		return fmt.Errorf("rewriting links in %s: %w", f.SrcPath(), err)
	}
	page.HTML = body

	var out bytes.Buffer
	if err := layout.Execute(&out, layoutView{
		SiteName: cfg.SiteName,
		Title:    page.Title,
		Root:     pipeline.RelativeRoot(url),
		Body:     template.HTML(body), // #nosec G203 -- rendered from the site's own Markdown
	}); err != nil {
		return fmt.Errorf("layout %s: %w", f.SrcPath(), err)
	}

	output := out.String()
	for _, p := range b.plugins {
		if output, err = p.OnPostPage(ctx, output, page, cfg); err != nil {
			return fmt.Errorf("plugin %s: page %s: %w", p.Name(), f.SrcPath(), err)
		}
	}

	dest := filepath.Join(cfg.SiteDir, filepath.FromSlash(site.OutputPath(url)))
	return fileutil.WriteFile(dest, []byte(output))
}

// pageTitle prefers a front matter title, then the first heading, then the file name.
func pageTitle(page *site.Page, r *pipeline.Rendered) string {
	if t, ok := page.Meta["title"].(string); ok && t != "" {
		return t
	}
	if r.Title != "" {
		return r.Title
	}
	name := path.Base(page.File.SrcPath())
	return strings.TrimSuffix(name, path.Ext(name))
}

// linkMapper maps relative .md links to the URL of the page they name,
// relative to the current page.
func linkMapper(page *site.Page, files *site.Files, directoryURLs bool) pipeline.LinkMapper {
	root := pipeline.RelativeRoot(page.URL)
	dir := path.Dir(page.File.SrcPath())
	return func(target string) (string, bool) {
		resolved := path.Join(dir, target)
		if _, ok := files.Get(resolved); !ok {
			return "", false
		}
		return root + "/" + site.PageURL(resolved, directoryURLs), true
	}
}

func (b *Builder) writeHighlightCSS(siteDir string) error {
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true))
	if err := formatter.WriteCSS(&buf, styles.Get(b.style)); err != nil {
		return fmt.Errorf("writing highlight CSS: %w", err)
	}
	return fileutil.WriteFile(filepath.Join(siteDir, filepath.FromSlash(highlightCSS)), buf.Bytes())
}

// cleanDir removes siteDir unless it holds docsDir.
func cleanDir(siteDir, docsDir string) error {
	rel, err := filepath.Rel(siteDir, docsDir)
	if err == nil && (rel == "." || !strings.HasPrefix(rel, "..")) {
		return fmt.Errorf("%w: %s", ErrUnsafeSiteDir, siteDir)
	}
	if err := os.RemoveAll(siteDir); err != nil {
		return fmt.Errorf("cleaning %s: %w", siteDir, err)
	}
	return nil
}
