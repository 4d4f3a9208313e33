package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// DefaultIndexURL is the public Python Package Index.
const DefaultIndexURL = "https://pypi.org"

// release is the subset of the PyPI JSON API response used here.
type release struct {
	Info struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	} `json:"info"`
	URLs []releaseFile `json:"urls"`
}

type releaseFile struct {
	Filename    string `json:"filename"`
	URL         string `json:"url"`
	PackageType string `json:"packagetype"`
	Yanked      bool   `json:"yanked"`
}

// index queries a PyPI-compatible JSON API.
type index struct {
	baseURL string
	fetch   *fetcher
}

// releaseURL returns the JSON endpoint for name and an optional version.
func (ix *index) releaseURL(name, version string) string {
	base := strings.TrimSuffix(ix.baseURL, "/")
	if version == "" {
		return fmt.Sprintf("%s/pypi/%s/json", base, url.PathEscape(name))
	}
	return fmt.Sprintf("%s/pypi/%s/%s/json", base, url.PathEscape(name), url.PathEscape(version))
}

// wheel picks the first browser-compatible wheel of a release and returns its URL.
func (ix *index) wheel(ctx context.Context, name, version string) (string, error) {
	endpoint := ix.releaseURL(name, version)
	data, err := ix.fetch.get(ctx, endpoint)
	if err != nil {
		return "", err
	}

	var rel release
	if err := json.Unmarshal(data, &rel); err != nil {
		return "", fmt.Errorf("decoding %s: %w", endpoint, err)
	}

	for _, f := range rel.URLs {
		if f.PackageType != "bdist_wheel" || f.Yanked {
			continue
		}
		if CompatibleFilename(f.Filename) {
			return ix.absolute(endpoint, f.URL)
		}
	}

	v := version
	if v == "" {
		v = rel.Info.Version
	}
	return "", fmt.Errorf("%w: %s %s has no pure-Python or emscripten wheel", ErrNoCompatibleWheel, name, v)
}

// absolute resolves file URLs that indexes report relative to the endpoint.
func (ix *index) absolute(endpoint, ref string) (string, error) {
	base, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}
	u, err := base.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid file URL %q: %w", ref, err)
	}
	return u.String(), nil
}
