package assets

import (
	"errors"
	"io/fs"
)

// AssetResolver combines a custom runtime tree with the embedded baseline.
// The template comes from the custom tree when one is configured. Scripts are
// looked up in the custom tree first and fall back to the embedded copies.
type AssetResolver struct {
	custom   AssetLoader // nil if no template_dir configured
	embedded AssetLoader
}

// NewAssetResolver creates an AssetResolver.
// If customBasePath is empty, only embedded assets are used.
// Returns error if customBasePath is set but invalid.
func NewAssetResolver(customBasePath string) (*AssetResolver, error) {
	resolver := &AssetResolver{
		embedded: NewEmbeddedLoader(),
	}

	if customBasePath != "" {
		fsLoader, err := NewFilesystemLoader(customBasePath)
		if err != nil {
			return nil, err
		}
		resolver.custom = fsLoader
	}

	return resolver, nil
}

// HasCustomLoader reports whether a custom runtime tree is configured.
func (r *AssetResolver) HasCustomLoader() bool {
	return r.custom != nil
}

// LoadTemplate returns the custom tree when configured, the embedded one otherwise.
// A configured but invalid custom tree is an error, never a silent fallback.
func (r *AssetResolver) LoadTemplate() (fs.FS, error) {
	if r.custom == nil {
		return r.embedded.LoadTemplate()
	}
	return r.custom.LoadTemplate()
}

// LoadScript loads a helper script, trying the custom tree first if available.
func (r *AssetResolver) LoadScript(name string) ([]byte, error) {
	if r.custom == nil {
		return r.embedded.LoadScript(name)
	}

	content, err := r.custom.LoadScript(name)
	if err == nil {
		return content, nil
	}

	// Only fall back for "not found" errors, not validation or I/O errors
	if !errors.Is(err, ErrScriptNotFound) {
		return nil, err
	}

	return r.embedded.LoadScript(name)
}

// Compile-time interface check.
var _ AssetLoader = (*AssetResolver)(nil)
