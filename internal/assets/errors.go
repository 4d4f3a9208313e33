package assets

import "errors"

// Sentinel errors for asset operations.
var (
	// ErrTemplateNotFound indicates no runtime template is available.
	ErrTemplateNotFound = errors.New("runtime template not found")

	// ErrInvalidTemplate indicates the runtime tree lacks required entries.
	ErrInvalidTemplate = errors.New("invalid runtime template")

	// ErrScriptNotFound indicates the requested helper script does not exist.
	ErrScriptNotFound = errors.New("script not found")

	// ErrInvalidAssetName indicates the asset name contains invalid characters
	// such as path separators or traversal sequences.
	ErrInvalidAssetName = errors.New("invalid asset name")

	// ErrInvalidBasePath indicates the configured base path is not a valid directory.
	ErrInvalidBasePath = errors.New("invalid base path")

	// ErrAssetRead indicates an I/O error occurred while reading an asset file.
	ErrAssetRead = errors.New("failed to read asset")

	// ErrPathTraversal indicates an attempt to access files outside the base path.
	ErrPathTraversal = errors.New("path traversal detected")
)
