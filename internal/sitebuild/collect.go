package sitebuild

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alnah/go-jupyterlite/site"
)

// collect returns every file under docsDir in lexical order.
// Hidden files and directories are skipped.
func collect(docsDir string) (*site.Files, error) {
	var paths []string
	err := filepath.WalkDir(docsDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p != docsDir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(docsDir, p)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("collecting %s: %w", docsDir, err)
	}
	sort.Strings(paths)

	files := &site.Files{}
	for _, rel := range paths {
		f, err := site.NewSourceFile(docsDir, rel)
		if err != nil {
			return nil, err
		}
		if err := files.Add(f); err != nil {
			return nil, err
		}
	}
	return files, nil
}

// isPage reports whether a file is rendered as a Markdown page.
func isPage(f site.File) bool {
	return strings.EqualFold(filepath.Ext(f.SrcPath()), ".md")
}
