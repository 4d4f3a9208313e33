package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// Notes:
// - Filesystem events are asynchronous, so watcher tests poll for the
//   first batch with a generous deadline instead of sleeping a fixed time.

type batches struct {
	mu  sync.Mutex
	got [][]string
	ch  chan struct{}
}

func newBatches() *batches { return &batches{ch: make(chan struct{}, 16)} }

func (b *batches) add(paths []string) {
	b.mu.Lock()
	b.got = append(b.got, paths)
	b.mu.Unlock()
	b.ch <- struct{}{}
}

func (b *batches) wait(t *testing.T) []string {
	t.Helper()
	select {
	case <-b.ch:
	case <-time.After(5 * time.Second):
		t.Fatal("no change batch within 5s")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.got[len(b.got)-1]
}

// ---------------------------------------------------------------------------
// TestDebouncer
// ---------------------------------------------------------------------------

func TestDebouncer_CoalescesAndSorts(t *testing.T) {
	t.Parallel()

	b := newBatches()
	d := NewDebouncer(20*time.Millisecond, b.add)
	defer d.Stop()

	d.Add("b.md")
	d.Add("a.md")
	d.Add("b.md")

	if diff := cmp.Diff([]string{"a.md", "b.md"}, b.wait(t)); diff != "" {
		t.Errorf("batch mismatch (-want +got):\n%s", diff)
	}
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	t.Parallel()

	b := newBatches()
	d := NewDebouncer(20*time.Millisecond, b.add)
	d.Add("a.md")
	d.Stop()
	d.Add("b.md")

	select {
	case <-b.ch:
		t.Error("callback ran after Stop")
	case <-time.After(100 * time.Millisecond):
	}
}

// ---------------------------------------------------------------------------
// TestWatcher
// ---------------------------------------------------------------------------

func TestWatcher_ReportsChanges(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	docs := filepath.Join(root, "docs")
	out := filepath.Join(root, "site")
	for _, d := range []string{docs, out} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			t.Fatal(err)
		}
	}

	b := newBatches()
	w, err := New([]string{docs, out}, b.add, WithIgnore(out), WithDelay(20*time.Millisecond))
	if err != nil {
		t.Fatalf("New() unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run() error = %v", err)
		}
	})

	// Give Run time to register the roots.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(filepath.Join(out, "index.html"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(docs, ".hidden.md"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	page := filepath.Join(docs, "index.md")
	if err := os.WriteFile(page, []byte("# Home"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := b.wait(t)
	if diff := cmp.Diff([]string{page}, got); diff != "" {
		t.Errorf("batch mismatch (-want +got):\n%s", diff)
	}
}

func TestWatcher_ShouldIgnore(t *testing.T) {
	t.Parallel()

	w := &Watcher{}
	WithIgnore("/srv/site")(w)

	tests := []struct {
		path string
		want bool
	}{
		{path: "/srv/docs/index.md", want: false},
		{path: "/srv/docs/.git", want: true},
		{path: "/srv/docs/index.md~", want: true},
		{path: "/srv/docs/.index.md.swp", want: true},
		{path: "/srv/site", want: true},
		{path: "/srv/site/index.html", want: true},
		{path: "/srv/site2/index.html", want: false},
	}

	for _, tt := range tests {
		if got := w.shouldIgnore(filepath.FromSlash(tt.path)); got != tt.want {
			t.Errorf("shouldIgnore(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
