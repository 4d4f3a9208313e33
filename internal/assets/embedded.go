package assets

import (
	"embed"
	"fmt"
	"io/fs"
)

//go:embed all:runtime
var runtimeFS embed.FS

//go:embed static/*.js
var scripts embed.FS

// EmbeddedLoader loads assets from embedded filesystem.
// Implements AssetLoader interface.
type EmbeddedLoader struct{}

// NewEmbeddedLoader creates an EmbeddedLoader.
func NewEmbeddedLoader() *EmbeddedLoader {
	return &EmbeddedLoader{}
}

// LoadTemplate returns the embedded baseline runtime rooted at its top directory.
func (e *EmbeddedLoader) LoadTemplate() (fs.FS, error) {
	sub, err := fs.Sub(runtimeFS, "runtime")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateNotFound, err)
	}
	if err := validateTemplate(sub, "embedded runtime"); err != nil {
		return nil, err
	}
	return sub, nil
}

// LoadScript loads a helper script from embedded assets by name.
// The name should not include the .js extension.
func (e *EmbeddedLoader) LoadScript(name string) ([]byte, error) {
	if err := ValidateAssetName(name); err != nil {
		return nil, err
	}

	content, err := scripts.ReadFile("static/" + name + ".js")
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrScriptNotFound, name)
	}

	return content, nil
}

// Compile-time interface check.
var _ AssetLoader = (*EmbeddedLoader)(nil)
