package sitebuild

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	jupyterlite "github.com/alnah/go-jupyterlite"
	"github.com/alnah/go-jupyterlite/site"
)

// Notes:
// - recorder implements site.Plugin and logs each hook so tests can check
//   the order a build calls them in.
// - The jupyterlite test uses the embedded runtime and no packages, so it
//   never touches the network.

type recorder struct {
	calls   []string
	rewrite func(string) string
	failOn  string
}

func (r *recorder) Name() string { return "recorder" }

func (r *recorder) hook(name string) error {
	r.calls = append(r.calls, name)
	if name == r.failOn {
		return errors.New("boom")
	}
	return nil
}

func (r *recorder) OnConfig(_ context.Context, cfg *site.Config) (*site.Config, error) {
	return cfg, r.hook("config")
}

func (r *recorder) OnFiles(_ context.Context, files *site.Files, _ *site.Config) (*site.Files, error) {
	return files, r.hook("files")
}

func (r *recorder) OnPageMarkdown(_ context.Context, md string, page *site.Page, _ *site.Config, _ *site.Files) (string, error) {
	if r.rewrite != nil {
		md = r.rewrite(md)
	}
	return md, r.hook("page:" + page.File.SrcPath())
}

func (r *recorder) OnPostPage(_ context.Context, out string, page *site.Page, _ *site.Config) (string, error) {
	return out, r.hook("post:" + page.URL)
}

func (r *recorder) OnPostBuild(_ context.Context, _ *site.Config) error {
	return r.hook("build")
}

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func testConfig(t *testing.T) site.Config {
	t.Helper()
	root := t.TempDir()
	return site.Config{
		SiteName:         "Demo",
		DocsDir:          filepath.Join(root, "docs"),
		SiteDir:          filepath.Join(root, "site"),
		ConfigDir:        root,
		UseDirectoryURLs: true,
	}
}

// ---------------------------------------------------------------------------
// TestBuild
// ---------------------------------------------------------------------------

func TestBuild_PagesAndAssets(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	writeTree(t, cfg.DocsDir, map[string]string{
		"index.md":        "# Home\n\nSee [setup](guide/setup.md#install).\n",
		"guide/setup.md":  "---\ntitle: Installing\n---\n# Setup\n\n```go\nfmt.Println(1)\n```\n",
		"img/logo.svg":    "<svg/>",
		".hidden/skip.md": "# hidden",
	})

	rec := &recorder{}
	res, err := New(cfg, WithPlugins(rec)).Build(context.Background())
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	if res.Pages != 2 || res.Files != 1 {
		t.Errorf("Result = %+v, want 2 pages and 1 file", res)
	}

	wantCalls := []string{"config", "files", "page:guide/setup.md", "post:guide/setup/", "page:index.md", "post:", "build"}
	if diff := cmp.Diff(wantCalls, rec.calls); diff != "" {
		t.Errorf("hook order mismatch (-want +got):\n%s", diff)
	}

	home := readFile(t, filepath.Join(cfg.SiteDir, "index.html"))
	for _, want := range []string{"<title>Home - Demo</title>", `href="./guide/setup/#install"`, `href="./assets/highlight.css"`} {
		if !strings.Contains(home, want) {
			t.Errorf("index.html missing %q:\n%s", want, home)
		}
	}

	setup := readFile(t, filepath.Join(cfg.SiteDir, "guide", "setup", "index.html"))
	for _, want := range []string{"<title>Installing - Demo</title>", `class="chroma"`, `href="../../assets/highlight.css"`} {
		if !strings.Contains(setup, want) {
			t.Errorf("guide/setup/index.html missing %q", want)
		}
	}
	if strings.Contains(setup, "title: Installing") {
		t.Error("front matter leaked into the page body")
	}

	if got := readFile(t, filepath.Join(cfg.SiteDir, "img", "logo.svg")); got != "<svg/>" {
		t.Errorf("img/logo.svg = %q", got)
	}
	if !strings.Contains(readFile(t, filepath.Join(cfg.SiteDir, "assets", "highlight.css")), ".chroma") {
		t.Error("highlight.css has no chroma rules")
	}
	if _, err := os.Stat(filepath.Join(cfg.SiteDir, ".hidden")); !os.IsNotExist(err) {
		t.Error("hidden directory was published")
	}
}

func TestBuild_FlatURLs(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.UseDirectoryURLs = false
	writeTree(t, cfg.DocsDir, map[string]string{
		"index.md":   "[a](guide/a.md)\n",
		"guide/a.md": "# A\n",
	})

	if _, err := New(cfg).Build(context.Background()); err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	if !strings.Contains(readFile(t, filepath.Join(cfg.SiteDir, "index.html")), `href="./guide/a.html"`) {
		t.Error("link not mapped to guide/a.html")
	}
	readFile(t, filepath.Join(cfg.SiteDir, "guide", "a.html"))
}

func TestBuild_PluginErrorStops(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	writeTree(t, cfg.DocsDir, map[string]string{"index.md": "# Home\n"})

	rec := &recorder{failOn: "files"}
	_, err := New(cfg, WithPlugins(rec)).Build(context.Background())
	if err == nil || !strings.Contains(err.Error(), "recorder") {
		t.Fatalf("Build() error = %v, want plugin error", err)
	}
	if diff := cmp.Diff([]string{"config", "files"}, rec.calls); diff != "" {
		t.Errorf("hook calls mismatch (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(cfg.SiteDir); !os.IsNotExist(err) {
		t.Error("site dir written after a failed build")
	}
}

func TestBuild_Clean(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	writeTree(t, cfg.DocsDir, map[string]string{"index.md": "# Home\n"})
	writeTree(t, cfg.SiteDir, map[string]string{"stale.html": "old"})

	if _, err := New(cfg, WithClean(true)).Build(context.Background()); err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.SiteDir, "stale.html")); !os.IsNotExist(err) {
		t.Error("stale file survived a clean build")
	}

	unsafe := cfg
	unsafe.SiteDir = filepath.Dir(cfg.DocsDir)
	if _, err := New(unsafe, WithClean(true)).Build(context.Background()); !errors.Is(err, ErrUnsafeSiteDir) {
		t.Errorf("Build() error = %v, want ErrUnsafeSiteDir", err)
	}
}

// ---------------------------------------------------------------------------
// TestBuild_JupyterLite
// ---------------------------------------------------------------------------

func TestBuild_JupyterLite(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	writeTree(t, cfg.ConfigDir, map[string]string{
		"notebooks/intro.ipynb": `{"cells": [], "metadata": {}, "nbformat": 4, "nbformat_minor": 5}`,
	})
	writeTree(t, cfg.DocsDir, map[string]string{
		"index.md":    "# Home\n\n```jupyterlite\nintro\n```\n",
		"guide/fm.md": "---\njupyterlite:\n  notebook: intro\n  height: 300\n---\n# Front matter\n",
	})

	plugin := jupyterlite.New(jupyterlite.Config{Notebooks: []string{"notebooks/*.ipynb"}, OutputDir: "lite"})
	if _, err := New(cfg, WithPlugins(plugin)).Build(context.Background()); err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	for _, rel := range []string{"lite/index.html", "lite/manifest.json", "lite/notebooks/intro.ipynb", "lite/static/toc-handler.js"} {
		if _, err := os.Stat(filepath.Join(cfg.SiteDir, filepath.FromSlash(rel))); err != nil {
			t.Errorf("%s not written: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(cfg.DocsDir, "virtual")); !os.IsNotExist(err) {
		t.Error("virtual files touched the docs dir")
	}

	home := readFile(t, filepath.Join(cfg.SiteDir, "index.html"))
	if !strings.Contains(home, `src="lite/notebooks/index.html?path=intro.ipynb"`) {
		t.Errorf("home page has no iframe:\n%s", home)
	}
	fm := readFile(t, filepath.Join(cfg.SiteDir, "guide", "fm", "index.html"))
	if !strings.Contains(fm, `height="300"`) || !strings.Contains(fm, `src="../../lite/static/toc-handler.js"`) {
		t.Errorf("front matter page missing embed:\n%s", fm)
	}
	if plugin.State() != jupyterlite.StateDone {
		t.Errorf("plugin state = %s, want done", plugin.State())
	}
}
