package jupyterlite

import (
	"path"
	"path/filepath"

	"github.com/alnah/go-jupyterlite/internal/assemble"
	"github.com/alnah/go-jupyterlite/internal/fileutil"
	"github.com/alnah/go-jupyterlite/site"
)

// virtualDir is the docs subdirectory virtual files pretend to live in.
// Nothing is ever written there.
const virtualDir = "virtual"

// VirtualFile exposes one assembled entry to the host build. It has no
// source on disk; Materialize writes the held bytes straight to the
// destination.
type VirtualFile struct {
	entry   *assemble.Entry
	srcPath string
	absPath string
}

// newVirtualFile places entry under outputDir. docsDir only seeds AbsSrcPath.
func newVirtualFile(entry *assemble.Entry, outputDir, docsDir string) *VirtualFile {
	src := path.Join(outputDir, entry.Path)
	return &VirtualFile{
		entry:   entry,
		srcPath: src,
		absPath: filepath.Join(docsDir, virtualDir, filepath.FromSlash(src)),
	}
}

func (f *VirtualFile) SrcPath() string     { return f.srcPath }
func (f *VirtualFile) AbsSrcPath() string  { return f.absPath }
func (f *VirtualFile) Virtual() bool       { return true }
func (f *VirtualFile) ContentType() string { return f.entry.ContentType }

// Content returns the entry bytes.
func (f *VirtualFile) Content() ([]byte, error) {
	data, err := f.entry.Bytes()
	if err != nil {
		return nil, convertError(err)
	}
	return data, nil
}

// Materialize writes the entry bytes to dest. AbsSrcPath is never read.
func (f *VirtualFile) Materialize(dest string) error {
	data, err := f.Content()
	if err != nil {
		return err
	}
	return fileutil.WriteFile(dest, data)
}

var _ site.File = (*VirtualFile)(nil)

// wrapTree turns every entry into a VirtualFile, in tree order.
func wrapTree(tree *assemble.Tree, outputDir, docsDir string) []site.File {
	entries := tree.Entries()
	files := make([]site.File, len(entries))
	for i, e := range entries {
		files[i] = newVirtualFile(e, outputDir, docsDir)
	}
	return files
}
