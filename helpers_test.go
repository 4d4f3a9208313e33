package jupyterlite

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/alnah/go-jupyterlite/site"
)

const notebookJSON = `{"cells": [%s], "metadata": {}, "nbformat": 4, "nbformat_minor": 5}`

// codeNotebook returns a notebook with one code cell per source line.
func codeNotebook(lines ...string) string {
	cells := make([]string, len(lines))
	for i, l := range lines {
		src, _ := json.Marshal(l)
		cells[i] = `{"cell_type": "code", "metadata": {}, "source": ` + string(src) + `, "outputs": [], "execution_count": null}`
	}
	return fmt.Sprintf(notebookJSON, strings.Join(cells, ", "))
}

// wheel returns a minimal pure-Python wheel.
func wheel(t *testing.T, name, version string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	distInfo := fmt.Sprintf("%s-%s.dist-info/", name, version)
	files := map[string]string{
		name + "/__init__.py": "",
		distInfo + "METADATA": fmt.Sprintf("Metadata-Version: 2.1\nName: %s\nVersion: %s\n", name, version),
		distInfo + "WHEEL":    "Wheel-Version: 1.0\nRoot-Is-Purelib: true\nTag: py3-none-any\n",
		distInfo + "RECORD":   "",
	}
	for _, n := range []string{name + "/__init__.py", distInfo + "METADATA", distInfo + "WHEEL", distInfo + "RECORD"} {
		w, err := zw.Create(n)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(files[n])); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// pypi serves pinned releases over a PyPI-compatible JSON API.
type pypi struct {
	server  *httptest.Server
	wheels  map[string][]byte // "name/version" -> wheel
	missing map[string]bool   // names answering 404
	hits    atomic.Int64
}

func newPyPI(t *testing.T) *pypi {
	t.Helper()
	p := &pypi{wheels: make(map[string][]byte), missing: make(map[string]bool)}
	p.server = httptest.NewServer(http.HandlerFunc(p.serve))
	t.Cleanup(p.server.Close)
	return p
}

func (p *pypi) add(t *testing.T, name, version string) []byte {
	t.Helper()
	data := wheel(t, name, version)
	p.wheels[name+"/"+version] = data
	return data
}

func (p *pypi) serve(w http.ResponseWriter, r *http.Request) {
	p.hits.Add(1)
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case len(parts) == 3 && parts[0] == "files":
		data, ok := p.wheels[parts[1]+"/"+strings.TrimSuffix(parts[2], ".whl")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)

	case len(parts) == 4 && parts[0] == "pypi" && parts[3] == "json":
		name, version := parts[1], parts[2]
		if _, ok := p.wheels[name+"/"+version]; !ok || p.missing[name] {
			http.NotFound(w, r)
			return
		}
		filename := fmt.Sprintf("%s-%s-py3-none-any.whl", name, version)
		body := map[string]any{
			"info": map[string]string{"name": name, "version": version},
			"urls": []map[string]any{{
				"filename":    filename,
				"url":         p.server.URL + "/files/" + name + "/" + version + ".whl",
				"packagetype": "bdist_wheel",
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)

	default:
		http.NotFound(w, r)
	}
}

// project is a temporary site layout with a config dir and a docs dir.
type project struct {
	root string
	cfg  *site.Config
}

func newProject(t *testing.T) *project {
	t.Helper()
	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	if err := os.MkdirAll(docs, 0o755); err != nil {
		t.Fatal(err)
	}
	return &project{
		root: root,
		cfg: &site.Config{
			SiteName:         "Test",
			DocsDir:          docs,
			SiteDir:          filepath.Join(root, "site"),
			ConfigDir:        root,
			UseDirectoryURLs: true,
		},
	}
}

func (p *project) write(t *testing.T, rel, content string) {
	t.Helper()
	full := filepath.Join(p.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// docsFiles returns a Files set holding every path as a source file.
func (p *project) docsFiles(t *testing.T, paths ...string) *site.Files {
	t.Helper()
	files := &site.Files{}
	for _, rel := range paths {
		p.write(t, "docs/"+rel, "# "+rel+"\n")
		f, err := site.NewSourceFile(p.cfg.DocsDir, rel)
		if err != nil {
			t.Fatal(err)
		}
		if err := files.Add(f); err != nil {
			t.Fatal(err)
		}
	}
	return files
}

func boolPtr(b bool) *bool { return &b }
