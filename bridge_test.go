package jupyterlite

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/alnah/go-jupyterlite/internal/assemble"
)

// ---------------------------------------------------------------------------
// TestVirtualFile
// ---------------------------------------------------------------------------

func TestVirtualFile_MaterializeWithoutSource(t *testing.T) {
	t.Parallel()

	docs := t.TempDir()
	entry := assemble.NewEntry("notebooks/intro.ipynb", "application/x-ipynb+json", "intro.ipynb", []byte(`{"cells": []}`))
	f := newVirtualFile(entry, "lite", docs)

	if f.SrcPath() != "lite/notebooks/intro.ipynb" {
		t.Errorf("SrcPath() = %q, want lite/notebooks/intro.ipynb", f.SrcPath())
	}
	if want := filepath.Join(docs, "virtual", "lite", "notebooks", "intro.ipynb"); f.AbsSrcPath() != want {
		t.Errorf("AbsSrcPath() = %q, want %q", f.AbsSrcPath(), want)
	}
	if _, err := os.Stat(f.AbsSrcPath()); !os.IsNotExist(err) {
		t.Errorf("AbsSrcPath() exists on disk: %v", err)
	}
	if !f.Virtual() || f.ContentType() != "application/x-ipynb+json" {
		t.Errorf("Virtual() = %v, ContentType() = %q", f.Virtual(), f.ContentType())
	}

	dest := filepath.Join(t.TempDir(), "site", filepath.FromSlash(f.SrcPath()))
	if err := f.Materialize(dest); err != nil {
		t.Fatalf("Materialize() unexpected error: %v", err)
	}
	got, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != `{"cells": []}` {
		t.Errorf("materialized %q", got)
	}
	if _, err := os.Stat(filepath.Join(docs, "virtual")); !os.IsNotExist(err) {
		t.Error("Materialize() wrote under the docs dir")
	}
}

func TestWrapTree_KeepsOrderAndSharesEntries(t *testing.T) {
	t.Parallel()

	tmpl := fstest.MapFS{
		"index.html":           {Data: []byte("<html><body></body></html>")},
		"notebooks/index.html": {Data: []byte("<html><body></body></html>")},
	}
	tree, _, err := assemble.New(assemble.WithRoot("lite")).Assemble(tmpl, nil, nil)
	if err != nil {
		t.Fatalf("Assemble() unexpected error: %v", err)
	}

	files := wrapTree(tree, "lite", t.TempDir())
	entries := tree.Entries()
	if len(files) != len(entries) {
		t.Fatalf("wrapTree() gave %d files for %d entries", len(files), len(entries))
	}
	for i, f := range files {
		vf := f.(*VirtualFile)
		if vf.entry != entries[i] {
			t.Errorf("file %d does not point at entry %q", i, entries[i].Path)
		}
		if vf.SrcPath() != "lite/"+entries[i].Path {
			t.Errorf("file %d SrcPath() = %q, want lite/%s", i, vf.SrcPath(), entries[i].Path)
		}
	}
}
