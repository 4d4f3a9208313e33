package main

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

// ---------------------------------------------------------------------------
// Test Infrastructure - Environment and project fixtures
// ---------------------------------------------------------------------------

// syncBuffer is a bytes.Buffer safe for the server goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// testEnv returns an Environment writing to buffers.
func testEnv() (*Environment, *syncBuffer, *syncBuffer) {
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	return &Environment{
		Stdout: stdout,
		Stderr: stderr,
	}, stdout, stderr
}

const introNotebook = `{"cells": [{"cell_type": "code", "metadata": {}, "source": "print(1)", "outputs": [], "execution_count": null}], "metadata": {}, "nbformat": 4, "nbformat_minor": 5}`

// writeTree writes files under a temp root and returns it.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return root
}

// liteProject returns a project with one notebook embedded on the home page.
func liteProject(t *testing.T) string {
	t.Helper()
	return writeTree(t, map[string]string{
		"litedocs.yml": "site_name: Demo\n" +
			"plugins:\n" +
			"  jupyterlite:\n" +
			"    notebooks: [intro.ipynb]\n" +
			"    output_dir: lite\n",
		"intro.ipynb":   introNotebook,
		"docs/index.md": "# Home\n\n```jupyterlite\nintro\n```\n",
	})
}

// readFile returns the content of root/rel or fails the test.
func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("reading %s: %v", rel, err)
	}
	return string(data)
}
