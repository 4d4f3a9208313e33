package assemble

import (
	"encoding/json"
	"fmt"

	"github.com/tidwall/jsonc"
)

const (
	// LiteConfigFile is the runtime configuration file at the site root.
	LiteConfigFile = "jupyter-lite.json"

	// OverridesFile holds default JupyterLab settings.
	OverridesFile = "overrides.json"

	configDataKey     = "jupyter-config-data"
	pluginSettingsKey = "litePluginSettings"
	pyodideKernelKey  = "@jupyterlite/pyodide-kernel-extension:kernel"
	pipliteURLsKey    = "pipliteUrls"

	// pipliteURL is all.json relative to the site root.
	pipliteURL = "./packages/all.json"
)

// mergeLiteConfig adds the piplite index to the runtime configuration.
// Existing settings and other piplite URLs are preserved.
func mergeLiteConfig(base []byte) ([]byte, error) {
	doc := map[string]any{}
	if len(base) > 0 {
		if err := json.Unmarshal(jsonc.ToJSON(base), &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTemplateLoad, LiteConfigFile, err)
		}
	}
	if _, ok := doc["jupyter-lite-schema-version"]; !ok {
		doc["jupyter-lite-schema-version"] = 0
	}

	configData := childObject(doc, configDataKey)
	settings := childObject(configData, pluginSettingsKey)
	kernel := childObject(settings, pyodideKernelKey)

	urls := []any{pipliteURL}
	if existing, ok := kernel[pipliteURLsKey].([]any); ok {
		for _, u := range existing {
			if u != pipliteURL {
				urls = append(urls, u)
			}
		}
	}
	kernel[pipliteURLsKey] = urls

	return marshalJSON(doc)
}

// childObject returns parent[key] as an object, creating or replacing it.
func childObject(parent map[string]any, key string) map[string]any {
	if m, ok := parent[key].(map[string]any); ok {
		return m
	}
	m := map[string]any{}
	parent[key] = m
	return m
}

// normalizeOverrides converts JSONC settings to canonical JSON.
// The top level must be an object keyed by plugin id.
func normalizeOverrides(src []byte) ([]byte, error) {
	var doc map[string]any
	if err := json.Unmarshal(jsonc.ToJSON(src), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSettings, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: top level must be an object", ErrSettings)
	}
	for id, v := range doc {
		if _, ok := v.(map[string]any); !ok {
			return nil, fmt.Errorf("%w: settings for %q must be an object", ErrSettings, id)
		}
	}
	return marshalJSON(doc)
}
