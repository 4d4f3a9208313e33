package assets

import "io/fs"

// Helper script names shipped with every assembled site.
const (
	// TOCHandlerScript runs on host pages and forwards TOC clicks to the runtime iframe.
	TOCHandlerScript = "toc-handler"

	// ScrollHandlerScript runs inside the runtime and scrolls to forwarded headings.
	ScrollHandlerScript = "iframe-scroll-handler"
)

// RequiredTemplateEntry must exist at the root of every runtime template.
const RequiredTemplateEntry = "index.html"

// AssetLoader defines the contract for loading the runtime template and scripts.
// Implementations may load from embedded assets, filesystem, archives, etc.
type AssetLoader interface {
	// LoadTemplate returns the runtime template tree.
	// Returns ErrTemplateNotFound if no template is available.
	// Returns ErrInvalidTemplate if the tree lacks RequiredTemplateEntry.
	LoadTemplate() (fs.FS, error)

	// LoadScript loads a helper script by name (without .js extension).
	// Returns ErrScriptNotFound if the script doesn't exist.
	// Returns ErrInvalidAssetName if the name contains invalid characters.
	LoadScript(name string) ([]byte, error)
}
