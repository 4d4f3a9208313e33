package assemble

import (
	"bytes"
	"encoding/json"
)

// ManifestVersion is the schema version written to manifest.json.
const ManifestVersion = 1

// Manifest describes the notebooks and packages of an assembled site.
type Manifest struct {
	Version      int             `json:"version"`
	Root         string          `json:"root"`
	Notebooks    []NotebookEntry `json:"notebooks"`
	Packages     []PackageEntry  `json:"packages"`
	InstallOrder []string        `json:"install_order"`
}

// NotebookEntry is one notebook in the manifest.
type NotebookEntry struct {
	Name        string `json:"name"`
	Origin      string `json:"origin"`
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}

// PackageEntry is one stored wheel in the manifest. Specs lists every
// specifier that resolved to these bytes.
type PackageEntry struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Specs       []string `json:"specs"`
	Path        string   `json:"path"`
	URL         string   `json:"url"`
	Hash        string   `json:"hash"`
	ContentType string   `json:"content_type"`
}

// Marshal encodes the manifest as indented JSON with a trailing newline.
// Empty lists encode as [] rather than null.
func (m *Manifest) Marshal() ([]byte, error) {
	out := *m
	if out.Notebooks == nil {
		out.Notebooks = []NotebookEntry{}
	}
	if out.Packages == nil {
		out.Packages = []PackageEntry{}
	}
	if out.InstallOrder == nil {
		out.InstallOrder = []string{}
	}
	return marshalJSON(out)
}

// Notebook returns the entry with the given logical name.
func (m *Manifest) Notebook(name string) (NotebookEntry, bool) {
	for _, nb := range m.Notebooks {
		if nb.Name == name {
			return nb, true
		}
	}
	return NotebookEntry{}, false
}

// marshalJSON encodes v with two-space indentation and no HTML escaping.
func marshalJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
