package site

import (
	"fmt"
	"slices"
)

// Files is the ordered set of files in a build, keyed by SrcPath.
type Files struct {
	order []string
	files map[string]File
}

// NewFiles returns a collection holding files in the given order.
// Duplicate paths are an error.
func NewFiles(files ...File) (*Files, error) {
	fs := &Files{files: make(map[string]File, len(files))}
	for _, f := range files {
		if err := fs.Add(f); err != nil {
			return nil, err
		}
	}
	return fs, nil
}

// Add appends f. A path already present is ErrDuplicateFile.
func (fs *Files) Add(f File) error {
	p := f.SrcPath()
	if _, ok := fs.files[p]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateFile, p)
	}
	if fs.files == nil {
		fs.files = make(map[string]File)
	}
	fs.order = append(fs.order, p)
	fs.files[p] = f
	return nil
}

// AddAll appends every file or none of them. It fails when a path is
// already registered or appears twice in files, reporting each conflict.
func (fs *Files) AddAll(files []File) error {
	var conflicts []string
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		p := f.SrcPath()
		if _, ok := fs.files[p]; ok || seen[p] {
			conflicts = append(conflicts, p)
		}
		seen[p] = true
	}
	if len(conflicts) > 0 {
		return fmt.Errorf("%w: %q", ErrDuplicateFile, conflicts)
	}
	for _, f := range files {
		// Checked above.
		_ = fs.Add(f)
	}
	return nil
}

// Get returns the file registered at p.
func (fs *Files) Get(p string) (File, bool) {
	f, ok := fs.files[p]
	return f, ok
}

// Remove drops the file at p and reports whether it was present.
func (fs *Files) Remove(p string) bool {
	if _, ok := fs.files[p]; !ok {
		return false
	}
	delete(fs.files, p)
	fs.order = slices.DeleteFunc(fs.order, func(s string) bool { return s == p })
	return true
}

// Len returns the number of files.
func (fs *Files) Len() int {
	return len(fs.order)
}

// Paths returns the registered paths in insertion order.
func (fs *Files) Paths() []string {
	return slices.Clone(fs.order)
}

// All returns the files in insertion order.
func (fs *Files) All() []File {
	out := make([]File, 0, len(fs.order))
	for _, p := range fs.order {
		out = append(out, fs.files[p])
	}
	return out
}
