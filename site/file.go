package site

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/alnah/go-jupyterlite/internal/fileutil"
)

// File is one source file tracked by the build.
type File interface {
	// SrcPath is the slash-separated path relative to the docs directory.
	// It is also the path the file is written to under the site directory.
	SrcPath() string

	// AbsSrcPath is the absolute path of the source. Virtual files return a
	// path that does not exist.
	AbsSrcPath() string

	// Content returns the file bytes.
	Content() ([]byte, error)

	// Materialize writes the file to dest, creating parent directories.
	Materialize(dest string) error

	// Virtual reports whether the file has no backing source on disk.
	Virtual() bool
}

// SourceFile is a File backed by a file on disk.
type SourceFile struct {
	srcPath string
	absPath string
}

// NewSourceFile returns the file at docsDir/srcPath.
func NewSourceFile(docsDir, srcPath string) (*SourceFile, error) {
	clean, err := CleanPath(srcPath)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(filepath.Join(docsDir, filepath.FromSlash(clean)))
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", srcPath, err)
	}
	return &SourceFile{srcPath: clean, absPath: abs}, nil
}

func (f *SourceFile) SrcPath() string    { return f.srcPath }
func (f *SourceFile) AbsSrcPath() string { return f.absPath }
func (f *SourceFile) Virtual() bool      { return false }

// Content reads the source file.
func (f *SourceFile) Content() ([]byte, error) {
	return os.ReadFile(f.absPath)
}

// Materialize copies the source file to dest.
func (f *SourceFile) Materialize(dest string) error {
	return fileutil.CopyFile(f.absPath, dest)
}

var _ File = (*SourceFile)(nil)

// CleanPath validates p as a relative slash path and returns its clean form.
func CleanPath(p string) (string, error) {
	if p == "" || strings.Contains(p, "\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	clean := path.Clean(p)
	if clean == "." || !fileutil.IsSafeRelative(clean) {
		return "", fmt.Errorf("%w: %q", ErrInvalidPath, p)
	}
	return clean, nil
}
