package jupyterlite

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/alnah/go-jupyterlite/internal/assemble"
	"github.com/alnah/go-jupyterlite/internal/assets"
	"github.com/alnah/go-jupyterlite/internal/notebook"
	"github.com/alnah/go-jupyterlite/internal/pipeline"
	"github.com/alnah/go-jupyterlite/internal/resolver"
	"github.com/alnah/go-jupyterlite/site"
)

// PluginName is the key of the plugin section in the site configuration.
const PluginName = "jupyterlite"

// State is the position of a Plugin within a build pass.
type State int

const (
	StateIdle State = iota
	StateConfigLoaded
	StateFilesCollected
	StatePagesRendered
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConfigLoaded:
		return "config-loaded"
	case StateFilesCollected:
		return "files-collected"
	case StatePagesRendered:
		return "pages-rendered"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Report summarizes the last build pass.
type Report struct {
	Notebooks []string // logical names registered
	Packages  []string // name==version, install order
	Skipped   []string // notebooks dropped by the skip policy
	Failures  []ResolutionFailure
	Files     int // virtual files registered
	Embeds    int // iframes written into pages
}

// Plugin assembles the notebook runtime and registers it with the host build.
// A Plugin runs one pass at a time and is not safe for concurrent use.
type Plugin struct {
	cfg        Config
	bctx       *BuildContext
	httpClient *http.Client
	logger     *zap.Logger

	state    State
	specs    []resolver.Spec
	manifest *assemble.Manifest
	skipped  map[string]bool
	report   Report
}

// Option configures a Plugin.
type Option func(*Plugin)

// WithBuildContext shares a BuildContext across plugins, so a dev server
// reuses resolved packages between rebuilds.
func WithBuildContext(b *BuildContext) Option {
	return func(p *Plugin) {
		if b != nil {
			p.bctx = b
		}
	}
}

// WithHTTPClient sets the client used to reach the package index.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Plugin) {
		if c != nil {
			p.httpClient = c
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Plugin) {
		if l != nil {
			p.logger = l
		}
	}
}

// New creates a Plugin for cfg. Without WithBuildContext the plugin gets
// its own empty BuildContext.
func New(cfg Config, opts ...Option) *Plugin {
	p := &Plugin{
		cfg:    cfg,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bctx == nil {
		p.bctx = NewBuildContext()
	}
	p.logger = p.logger.Named(PluginName)
	return p
}

// Name implements site.Plugin.
func (p *Plugin) Name() string { return PluginName }

// State returns the current state.
func (p *Plugin) State() State { return p.state }

// BuildContext returns the package cache used by the plugin.
func (p *Plugin) BuildContext() *BuildContext { return p.bctx }

// Report returns the summary of the current or last pass.
func (p *Plugin) Report() Report { return p.report }

// advance moves to next when the current state is one of from.
func (p *Plugin) advance(event string, next State, from ...State) error {
	for _, s := range from {
		if p.state == s {
			p.state = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, p.state)
}

// fail ends the pass. The next pass starts again with OnConfig.
func (p *Plugin) fail(err error) error {
	p.state = StateIdle
	return err
}

// OnConfig validates the plugin configuration. It starts a pass and may be
// called from Idle or, for the next pass, from Done.
func (p *Plugin) OnConfig(ctx context.Context, cfg *site.Config) (*site.Config, error) {
	if err := p.advance("config", StateConfigLoaded, StateIdle, StateDone); err != nil {
		return nil, err
	}
	p.manifest = nil
	p.skipped = nil
	p.report = Report{}

	if err := p.cfg.Validate(); err != nil {
		return nil, p.fail(err)
	}
	if !p.cfg.IsEnabled() {
		p.logger.Info("plugin disabled")
		return cfg, nil
	}

	specs, err := p.cfg.Specs()
	if err != nil {
		return nil, p.fail(err)
	}
	p.specs = specs
	return cfg, nil
}

// OnFiles resolves packages, collects notebooks, assembles the runtime and
// registers every produced file under output_dir. Nothing is registered
// unless every step succeeds.
func (p *Plugin) OnFiles(ctx context.Context, files *site.Files, cfg *site.Config) (*site.Files, error) {
	if err := p.advance("files", StateFilesCollected, StateConfigLoaded); err != nil {
		return nil, err
	}
	if !p.cfg.IsEnabled() {
		return files, nil
	}

	start := time.Now()
	batch, err := p.build(ctx, cfg)
	if err != nil {
		return nil, p.fail(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, p.fail(err)
	}
	if err := files.AddAll(batch); err != nil {
		return nil, p.fail(convertError(err))
	}
	p.report.Files = len(batch)

	p.logger.Info("registered runtime",
		zap.String("output_dir", p.cfg.Output()),
		zap.Int("files", len(batch)),
		zap.Int("notebooks", len(p.report.Notebooks)),
		zap.Int("packages", len(p.report.Packages)),
		zap.Duration("took", time.Since(start)))
	return files, nil
}

// build runs resolve, collect and assemble and returns the wrapped tree.
func (p *Plugin) build(ctx context.Context, cfg *site.Config) ([]site.File, error) {
	baseDir := cfg.ConfigDir

	r := resolver.New(
		resolver.WithHTTPClient(p.httpClient),
		resolver.WithIndexURL(p.cfg.IndexURL),
		resolver.WithBaseDir(baseDir),
		resolver.WithWorkers(p.cfg.Workers),
		resolver.WithRetry(p.cfg.RetryPolicy()),
		resolver.WithCache(p.bctx.cache),
		resolver.WithLogger(p.logger),
	)
	result, err := r.Resolve(ctx, p.specs)
	if err != nil {
		return nil, err
	}
	if dropped := p.bctx.Retain(specStrings(p.specs)); dropped > 0 {
		p.logger.Debug("dropped stale packages", zap.Int("count", dropped))
	}

	// Notebooks are collected even when resolution already failed so one
	// pass reports every problem.
	collector := notebook.NewCollector(os.DirFS(baseDir), notebook.WithLogger(p.logger))
	notebooks, collectErr := collector.Collect(p.cfg.Notebooks)

	failedNames := make(map[string]bool)
	if len(result.Failures) > 0 {
		rerr := newSpecResolutionError(result.Failures)
		p.report.Failures = rerr.Failures
		if p.cfg.Policy() == OnFailureFatal {
			if collectErr != nil {
				return nil, errors.Join(rerr, convertError(collectErr))
			}
			return nil, rerr
		}
		for _, f := range result.Failures {
			p.logger.Warn("skipping package", zap.String("spec", f.Spec.Raw), zap.Error(f.Err))
			if name := specName(f.Spec); name != "" {
				failedNames[name] = true
			}
		}
	}
	if collectErr != nil {
		return nil, convertError(collectErr)
	}
	notebooks = p.dropBroken(notebooks, failedNames)

	loader, err := assets.NewAssetResolver(p.resolvePath(baseDir, p.cfg.TemplateDir))
	if err != nil {
		return nil, convertError(err)
	}
	template, err := loader.LoadTemplate()
	if err != nil {
		return nil, convertError(err)
	}

	opts := []assemble.Option{
		assemble.WithRoot(p.cfg.Output()),
		assemble.WithScripts(loader),
		assemble.WithLogger(p.logger),
	}
	if p.cfg.SettingsOverrides != "" {
		src, err := os.ReadFile(p.resolvePath(baseDir, p.cfg.SettingsOverrides))
		if err != nil {
			return nil, fmt.Errorf("%w: settings_overrides: %v", ErrConfiguration, err)
		}
		opts = append(opts, assemble.WithSettingsOverrides(src))
	}

	tree, manifest, err := assemble.New(opts...).Assemble(template, notebooks, result.Packages)
	if err != nil {
		return nil, convertError(err)
	}
	p.manifest = manifest

	for _, nb := range manifest.Notebooks {
		p.report.Notebooks = append(p.report.Notebooks, nb.Name)
	}
	for _, pkg := range manifest.Packages {
		p.report.Packages = append(p.report.Packages, pkg.Name+"=="+pkg.Version)
	}
	return wrapTree(tree, p.cfg.Output(), cfg.DocsDir), nil
}

// dropBroken removes notebooks importing a package that failed to resolve.
func (p *Plugin) dropBroken(notebooks []*notebook.Source, failed map[string]bool) []*notebook.Source {
	if len(failed) == 0 {
		return notebooks
	}
	p.skipped = make(map[string]bool)
	kept := notebooks[:0:0]
	for _, nb := range notebooks {
		var missing string
		for _, mod := range nb.Imports() {
			if failed[resolver.NormalizeName(mod)] {
				missing = mod
				break
			}
		}
		if missing == "" {
			kept = append(kept, nb)
			continue
		}
		p.skipped[nb.LogicalName] = true
		p.report.Skipped = append(p.report.Skipped, nb.LogicalName)
		p.logger.Warn("skipping notebook",
			zap.String("notebook", nb.Origin),
			zap.String("missing", missing))
	}
	return kept
}

func (p *Plugin) resolvePath(baseDir, name string) string {
	if name == "" || filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(baseDir, filepath.FromSlash(name))
}

// OnPageMarkdown replaces embed markers with an iframe on the runtime and
// adds the page-side helper script once. Pages without markers are returned
// unchanged.
func (p *Plugin) OnPageMarkdown(ctx context.Context, markdown string, page *site.Page, cfg *site.Config, files *site.Files) (string, error) {
	if err := p.advance("page markdown", StatePagesRendered, StateFilesCollected, StatePagesRendered); err != nil {
		return "", err
	}
	if !p.cfg.IsEnabled() {
		return markdown, nil
	}

	src := pipeline.PreprocessMarkdown(markdown)
	embeds, err := pipeline.FindEmbeds([]byte(src))
	if err != nil {
		return "", p.fail(fmt.Errorf("%w: page %q: %v", ErrConfiguration, pageName(page), err))
	}
	if len(embeds) == 0 {
		return markdown, nil
	}

	for _, e := range embeds {
		if _, ok := p.manifest.Notebook(e.Notebook); !ok && !p.skipped[e.Notebook] {
			return "", p.fail(fmt.Errorf("%w: page %q embeds unknown notebook %q", ErrConfiguration, pageName(page), e.Notebook))
		}
	}

	root := path.Join(pipeline.RelativeRoot(page.URL), p.cfg.Output())
	out := pipeline.RewriteEmbeds([]byte(src), embeds, func(e pipeline.Embed) string {
		if p.skipped[e.Notebook] {
			return unavailableBlock(e.Notebook)
		}
		p.report.Embeds++
		return pipeline.RenderIframe(pipeline.IframeView{
			Src:    root + "/notebooks/index.html?" + url.Values{"path": {e.Notebook + notebook.Extension}}.Encode(),
			Title:  e.Notebook,
			Height: e.Height,
		})
	})

	rendered := strings.TrimRight(string(out), "\n") + "\n\n" + pipeline.ScriptBlock(root+"/static/"+assets.TOCHandlerScript+".js") + "\n"
	p.logger.Debug("rewrote embeds", zap.String("page", pageName(page)), zap.Int("count", len(embeds)))
	return rendered, nil
}

// OnPostPage logs the page and returns output unchanged.
func (p *Plugin) OnPostPage(ctx context.Context, output string, page *site.Page, cfg *site.Config) (string, error) {
	if err := p.advance("post page", StatePagesRendered, StateFilesCollected, StatePagesRendered); err != nil {
		return "", err
	}
	if p.cfg.IsEnabled() && page != nil && page.AbsURL != "" {
		p.logger.Debug("page rendered", zap.String("url", page.AbsURL))
	}
	return output, nil
}

// OnPostBuild logs a summary and ends the pass.
func (p *Plugin) OnPostBuild(ctx context.Context, cfg *site.Config) error {
	if err := p.advance("post build", StateDone, StateFilesCollected, StatePagesRendered); err != nil {
		return err
	}
	if !p.cfg.IsEnabled() {
		return nil
	}
	p.logger.Info("build finished",
		zap.Int("files", p.report.Files),
		zap.Int("embeds", p.report.Embeds),
		zap.Strings("skipped", p.report.Skipped),
		zap.Int("failures", len(p.report.Failures)),
		zap.Int("cached_packages", p.bctx.Len()))
	return nil
}

var _ site.Plugin = (*Plugin)(nil)

func unavailableBlock(name string) string {
	return `<div class="jupyterlite-embed jupyterlite-unavailable"><p>Notebook <code>` +
		html.EscapeString(name) + `</code> is unavailable in this build.</p></div>`
}

func pageName(page *site.Page) string {
	if page == nil || page.File == nil {
		return ""
	}
	return page.File.SrcPath()
}

func specStrings(specs []resolver.Spec) []string {
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.Raw
	}
	return out
}

// specName returns the normalized project a spec refers to. URL and local
// specs are named after the wheel file.
func specName(s resolver.Spec) string {
	if s.Name != "" {
		return resolver.NormalizeName(s.Name)
	}
	base := path.Base(filepath.ToSlash(s.Location))
	name, _, ok := strings.Cut(base, "-")
	if !ok {
		return ""
	}
	return resolver.NormalizeName(name)
}
