package resolver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"
)

// buildWheel returns a minimal wheel archive.
func buildWheel(t *testing.T, name, version, tag string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	distInfo := fmt.Sprintf("%s-%s.dist-info/", escapeName(name), version)
	files := []struct{ name, body string }{
		{escapeName(name) + "/__init__.py", "VERSION = " + fmt.Sprintf("%q", version) + "\n"},
		{distInfo + "METADATA", fmt.Sprintf("Metadata-Version: 2.1\nName: %s\nVersion: %s\n\nLong description.\n", name, version)},
		{distInfo + "WHEEL", fmt.Sprintf("Wheel-Version: 1.0\nGenerator: test\nRoot-Is-Purelib: true\nTag: %s\n", tag)},
		{distInfo + "RECORD", ""},
	}
	for _, f := range files {
		w, err := zw.Create(f.name)
		if err != nil {
			t.Fatalf("zip create: %v", err)
		}
		if _, err := w.Write([]byte(f.body)); err != nil {
			t.Fatalf("zip write: %v", err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

// fakeIndex serves a PyPI-compatible JSON API and wheel downloads.
type fakeIndex struct {
	t      *testing.T
	server *httptest.Server

	mu       sync.Mutex
	releases map[string]map[string]string // name -> version -> wheel filename
	latest   map[string]string
	files    map[string][]byte
	delays   map[string]time.Duration
	failures map[string][]int // path -> status codes to return before succeeding

	hits   atomic.Int64
	byPath sync.Map // path -> *atomic.Int64
}

func newFakeIndex(t *testing.T) *fakeIndex {
	t.Helper()
	fi := &fakeIndex{
		t:        t,
		releases: make(map[string]map[string]string),
		latest:   make(map[string]string),
		files:    make(map[string][]byte),
		delays:   make(map[string]time.Duration),
		failures: make(map[string][]int),
	}
	fi.server = httptest.NewServer(http.HandlerFunc(fi.serve))
	t.Cleanup(fi.server.Close)
	return fi
}

// add registers a compatible wheel for name==version and returns its bytes.
func (fi *fakeIndex) add(name, version string) []byte {
	return fi.addTagged(name, version, "py3-none-any")
}

func (fi *fakeIndex) addTagged(name, version, tag string) []byte {
	data := buildWheel(fi.t, name, version, tag)
	filename := fmt.Sprintf("%s-%s-%s.whl", escapeName(name), version, tag)

	fi.mu.Lock()
	defer fi.mu.Unlock()
	if fi.releases[name] == nil {
		fi.releases[name] = make(map[string]string)
	}
	fi.releases[name][version] = filename
	fi.latest[name] = version
	fi.files[filename] = data
	return data
}

func (fi *fakeIndex) fileURL(filename string) string {
	return fi.server.URL + "/files/" + filename
}

func (fi *fakeIndex) count(path string) int64 {
	v, ok := fi.byPath.Load(path)
	if !ok {
		return 0
	}
	return v.(*atomic.Int64).Load()
}

func (fi *fakeIndex) serve(w http.ResponseWriter, r *http.Request) {
	fi.hits.Add(1)
	v, _ := fi.byPath.LoadOrStore(r.URL.Path, new(atomic.Int64))
	v.(*atomic.Int64).Add(1)

	fi.mu.Lock()
	delay := fi.delays[r.URL.Path]
	var status int
	if codes := fi.failures[r.URL.Path]; len(codes) > 0 {
		status = codes[0]
		fi.failures[r.URL.Path] = codes[1:]
	}
	fi.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	if status != 0 {
		w.WriteHeader(status)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	switch {
	case len(parts) == 2 && parts[0] == "files":
		fi.mu.Lock()
		data, ok := fi.files[parts[1]]
		fi.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)

	case parts[0] == "pypi" && (len(parts) == 3 || len(parts) == 4) && parts[len(parts)-1] == "json":
		name := parts[1]
		fi.mu.Lock()
		version := fi.latest[name]
		if len(parts) == 4 {
			version = parts[2]
		}
		filename, ok := fi.releases[name][version]
		fi.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		body := map[string]any{
			"info": map[string]string{"name": name, "version": version},
			"urls": []map[string]any{
				{"filename": name + "-" + version + ".tar.gz", "url": "/files/sdist", "packagetype": "sdist"},
				{"filename": filename, "url": fi.fileURL(filename), "packagetype": "bdist_wheel", "yanked": false},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)

	default:
		http.NotFound(w, r)
	}
}

// fastRetry keeps retry tests quick.
var fastRetry = RetryPolicy{MaxAttempts: 4, BaseBackoff: time.Millisecond}

func mustSpecs(t *testing.T, raws ...string) []Spec {
	t.Helper()
	specs, err := ParseSpecs(raws)
	if err != nil {
		t.Fatalf("ParseSpecs() error = %v", err)
	}
	return specs
}
