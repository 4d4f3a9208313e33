// Package assemble merges a runtime template, notebooks and resolved
// packages into one ordered file tree and its manifest.
package assemble

import (
	"fmt"
	"io/fs"
	"path"
	"sort"

	"go.uber.org/zap"

	"github.com/alnah/go-jupyterlite/internal/assets"
	"github.com/alnah/go-jupyterlite/internal/notebook"
	"github.com/alnah/go-jupyterlite/internal/pipeline"
	"github.com/alnah/go-jupyterlite/internal/resolver"
)

const (
	// ManifestFile is written last at the root of the tree.
	ManifestFile = "manifest.json"

	// PipliteFile is the piplite package index.
	PipliteFile = "packages/all.json"

	notebooksDir = "notebooks"
	packagesDir  = "packages"
	staticDir    = "static"
)

// runtimePages receive the scroll handler script when the template has them.
var runtimePages = []string{"notebooks/index.html", "lab/index.html"}

// ScriptLoader supplies the helper scripts shipped with the site.
type ScriptLoader interface {
	LoadScript(name string) ([]byte, error)
}

// Assembler builds site trees. It holds no per-build state.
type Assembler struct {
	root      string
	scripts   ScriptLoader
	overrides []byte
	logger    *zap.Logger
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithRoot sets the output directory used to build site-relative URLs.
func WithRoot(root string) Option {
	return func(a *Assembler) { a.root = root }
}

// WithScripts sets where helper scripts come from.
func WithScripts(s ScriptLoader) Option {
	return func(a *Assembler) {
		if s != nil {
			a.scripts = s
		}
	}
}

// WithSettingsOverrides adds overrides.json from JSONC source.
func WithSettingsOverrides(src []byte) Option {
	return func(a *Assembler) { a.overrides = src }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Assembler) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Assembler.
func New(opts ...Option) *Assembler {
	a := &Assembler{
		root:    "jupyterlite",
		scripts: assets.NewEmbeddedLoader(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble lays the template down in lexical order, then overlays notebooks,
// packages, helper scripts, runtime configuration and finally the manifest.
// Identical inputs give byte-identical trees.
func (a *Assembler) Assemble(template fs.FS, notebooks []*notebook.Source, packages []*resolver.Package) (*Tree, *Manifest, error) {
	if template == nil {
		return nil, nil, fmt.Errorf("%w: no template", ErrTemplateLoad)
	}

	tree := NewTree()
	if err := addTemplate(tree, template); err != nil {
		return nil, nil, err
	}

	o := &overlay{tree: tree, claimed: make(map[string]string)}
	manifest := &Manifest{Version: ManifestVersion, Root: a.root}

	for _, nb := range notebooks {
		p := nb.Path()
		if err := o.put(NewEntry(p, notebook.ContentType, nb.Origin, nb.Raw)); err != nil {
			return nil, nil, err
		}
		manifest.Notebooks = append(manifest.Notebooks, NotebookEntry{
			Name:        nb.LogicalName,
			Origin:      nb.Origin,
			Path:        p,
			URL:         a.url(p),
			ContentType: notebook.ContentType,
		})
	}

	unique, err := a.addPackages(o, manifest, packages)
	if err != nil {
		return nil, nil, err
	}

	if err := a.addScripts(o); err != nil {
		return nil, nil, err
	}
	if err := a.injectScrollHandler(tree, o); err != nil {
		return nil, nil, err
	}

	index, err := buildPiplite(unique)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding %s: %w", PipliteFile, err)
	}
	if err := o.put(NewEntry(PipliteFile, ContentTypeFor(PipliteFile), "piplite index", index)); err != nil {
		return nil, nil, err
	}

	var base []byte
	if e, ok := tree.Get(LiteConfigFile); ok {
		if base, err = e.Bytes(); err != nil {
			return nil, nil, err
		}
	}
	liteConfig, err := mergeLiteConfig(base)
	if err != nil {
		return nil, nil, err
	}
	if err := o.put(NewEntry(LiteConfigFile, ContentTypeFor(LiteConfigFile), "runtime configuration", liteConfig)); err != nil {
		return nil, nil, err
	}

	if a.overrides != nil {
		data, err := normalizeOverrides(a.overrides)
		if err != nil {
			return nil, nil, err
		}
		if err := o.put(NewEntry(OverridesFile, ContentTypeFor(OverridesFile), "settings overrides", data)); err != nil {
			return nil, nil, err
		}
	}

	data, err := manifest.Marshal()
	if err != nil {
		return nil, nil, fmt.Errorf("encoding manifest: %w", err)
	}
	if err := o.put(NewEntry(ManifestFile, ContentTypeFor(ManifestFile), "manifest", data)); err != nil {
		return nil, nil, err
	}

	a.logger.Debug("assembled site",
		zap.String("root", a.root),
		zap.Int("entries", tree.Len()),
		zap.Int("notebooks", len(manifest.Notebooks)),
		zap.Int("packages", len(manifest.Packages)))

	return tree, manifest, nil
}

// addPackages stores each distinct artifact once and records install order.
// Two different artifacts for one project name collide.
func (a *Assembler) addPackages(o *overlay, m *Manifest, packages []*resolver.Package) ([]*resolver.Package, error) {
	byHash := make(map[string]int)
	byName := make(map[string]*resolver.Package)
	var unique []*resolver.Package

	for _, p := range packages {
		if i, ok := byHash[p.Hash]; ok {
			m.Packages[i].Specs = appendUnique(m.Packages[i].Specs, p.Spec.Raw)
			continue
		}
		key := p.Key()
		if prev, ok := byName[key]; ok {
			return nil, &CollisionError{
				Path:    key,
				Sources: []string{prev.Spec.Raw + " (" + prev.Version + ")", p.Spec.Raw + " (" + p.Version + ")"},
			}
		}
		byName[key] = p

		rel := path.Join(packagesDir, p.Filename)
		if err := o.put(NewEntry(rel, resolver.ContentType, p.Spec.Raw, p.Data)); err != nil {
			return nil, err
		}
		byHash[p.Hash] = len(m.Packages)
		unique = append(unique, p)
		m.Packages = append(m.Packages, PackageEntry{
			Name:        p.Name,
			Version:     p.Version,
			Specs:       []string{p.Spec.Raw},
			Path:        rel,
			URL:         a.url(rel),
			Hash:        p.Digest(),
			ContentType: resolver.ContentType,
		})
		m.InstallOrder = append(m.InstallOrder, key)
	}
	return unique, nil
}

func (a *Assembler) addScripts(o *overlay) error {
	for _, name := range []string{assets.TOCHandlerScript, assets.ScrollHandlerScript} {
		data, err := a.scripts.LoadScript(name)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrTemplateLoad, err)
		}
		p := path.Join(staticDir, name+".js")
		if err := o.put(NewEntry(p, ContentTypeFor(p), "helper script", data)); err != nil {
			return err
		}
	}
	return nil
}

// injectScrollHandler loads the scroll handler from each runtime page.
func (a *Assembler) injectScrollHandler(tree *Tree, o *overlay) error {
	for _, page := range runtimePages {
		e, ok := tree.Get(page)
		if !ok {
			continue
		}
		src, err := e.Bytes()
		if err != nil {
			return err
		}
		rel := relativeTo(page, path.Join(staticDir, assets.ScrollHandlerScript+".js"))
		out, err := pipeline.InjectScript(string(src), rel)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrTemplateLoad, page, err)
		}
		if err := o.put(NewEntry(page, e.ContentType, "runtime page", []byte(out))); err != nil {
			return err
		}
	}
	return nil
}

// url returns the site-relative URL of a path inside the tree.
func (a *Assembler) url(p string) string {
	return path.Join(a.root, p)
}

// overlay tracks paths written over the template so a second write collides.
type overlay struct {
	tree    *Tree
	claimed map[string]string
}

func (o *overlay) put(e *Entry) error {
	if prev, ok := o.claimed[e.Path]; ok {
		return &CollisionError{Path: e.Path, Sources: []string{prev, e.Origin}}
	}
	o.claimed[e.Path] = e.Origin
	o.tree.Replace(e)
	return nil
}

// addTemplate adds every regular file of fsys in lexical path order.
func addTemplate(tree *Tree, fsys fs.FS) error {
	var names []string
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.Type().IsRegular() {
			names = append(names, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTemplateLoad, err)
	}
	if len(names) == 0 {
		return fmt.Errorf("%w: template is empty", ErrTemplateLoad)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := tree.Add(newTemplateEntry(fsys, name)); err != nil {
			return err
		}
	}
	return nil
}

// relativeTo returns target relative to the directory of from.
func relativeTo(from, target string) string {
	depth := len(splitDir(path.Dir(from)))
	prefix := ""
	for i := 0; i < depth; i++ {
		prefix += "../"
	}
	if prefix == "" {
		prefix = "./"
	}
	return prefix + target
}

func splitDir(dir string) []string {
	if dir == "." || dir == "" {
		return nil
	}
	var parts []string
	for dir != "." && dir != "/" {
		parts = append(parts, path.Base(dir))
		dir = path.Dir(dir)
	}
	return parts
}

func appendUnique(list []string, s string) []string {
	for _, v := range list {
		if v == s {
			return list
		}
	}
	return append(list, s)
}
