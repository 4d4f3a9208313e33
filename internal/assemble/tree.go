package assemble

import (
	"fmt"
	"io/fs"
	"mime"
	"path"
	"sync"
)

// Entry is one file of the assembled site. Content is either held bytes or
// read lazily from the template filesystem on first use.
type Entry struct {
	Path        string // slash path relative to the output directory
	ContentType string
	Origin      string // what produced the entry, for diagnostics

	once sync.Once
	data []byte
	err  error
	open func() ([]byte, error)
}

// NewEntry returns an entry holding data.
func NewEntry(p, contentType, origin string, data []byte) *Entry {
	e := &Entry{Path: p, ContentType: contentType, Origin: origin, data: data}
	e.once.Do(func() {})
	return e
}

// newTemplateEntry returns an entry read from fsys when first needed.
func newTemplateEntry(fsys fs.FS, name string) *Entry {
	return &Entry{
		Path:        name,
		ContentType: ContentTypeFor(name),
		Origin:      "template",
		open:        func() ([]byte, error) { return fs.ReadFile(fsys, name) },
	}
}

// Bytes returns the entry content, reading it on first call for template entries.
func (e *Entry) Bytes() ([]byte, error) {
	e.once.Do(func() {
		if e.open != nil {
			e.data, e.err = e.open()
			if e.err != nil {
				e.err = fmt.Errorf("%w: %s: %v", ErrTemplateLoad, e.Path, e.err)
			}
		}
	})
	return e.data, e.err
}

// Lazy reports whether content comes from the template filesystem.
func (e *Entry) Lazy() bool {
	return e.open != nil
}

// Tree is an insertion-ordered set of entries keyed by path.
type Tree struct {
	order   []string
	entries map[string]*Entry
}

// NewTree creates an empty Tree.
func NewTree() *Tree {
	return &Tree{entries: make(map[string]*Entry)}
}

// Add appends e. Adding an existing path is a collision.
func (t *Tree) Add(e *Entry) error {
	if prev, ok := t.entries[e.Path]; ok {
		return &CollisionError{Path: e.Path, Sources: []string{prev.Origin, e.Origin}}
	}
	t.entries[e.Path] = e
	t.order = append(t.order, e.Path)
	return nil
}

// Replace swaps the entry at e.Path in place, or appends it when absent.
// It reports whether an entry was replaced.
func (t *Tree) Replace(e *Entry) bool {
	_, ok := t.entries[e.Path]
	t.entries[e.Path] = e
	if !ok {
		t.order = append(t.order, e.Path)
	}
	return ok
}

// Get returns the entry at p.
func (t *Tree) Get(p string) (*Entry, bool) {
	e, ok := t.entries[p]
	return e, ok
}

// Len returns the number of entries.
func (t *Tree) Len() int {
	return len(t.order)
}

// Entries returns entries in insertion order.
func (t *Tree) Entries() []*Entry {
	out := make([]*Entry, 0, len(t.order))
	for _, p := range t.order {
		out = append(out, t.entries[p])
	}
	return out
}

// Paths returns entry paths in insertion order.
func (t *Tree) Paths() []string {
	return append([]string(nil), t.order...)
}

// ContentTypeFor guesses a media type from a file extension.
func ContentTypeFor(name string) string {
	switch path.Ext(name) {
	case ".ipynb":
		return "application/x-ipynb+json"
	case ".whl":
		return "application/octet-stream"
	case ".json":
		return "application/json"
	case ".js", ".mjs":
		return "text/javascript; charset=utf-8"
	case ".html":
		return "text/html; charset=utf-8"
	case ".css":
		return "text/css; charset=utf-8"
	case ".svg":
		return "image/svg+xml"
	case ".wasm":
		return "application/wasm"
	}
	if t := mime.TypeByExtension(path.Ext(name)); t != "" {
		return t
	}
	return "application/octet-stream"
}
