// Package assets provides the JupyterLite runtime template and the helper
// scripts shipped alongside it.
//
// # Loader Architecture
//
// The package implements a layered loading system:
//
//	AssetLoader (interface)
//	    │
//	    ├── EmbeddedLoader    - baseline runtime shell and scripts (go:embed)
//	    ├── FilesystemLoader  - prebuilt JupyterLite tree on disk
//	    └── AssetResolver     - combines both with custom-first fallback
//
// The embedded runtime is a minimal shell that lets a site build succeed
// without a JupyterLite build on disk. Production sites point template_dir at
// the output of `jupyter lite build`, which FilesystemLoader exposes as an
// fs.FS without copying it.
//
// # Directory Structure
//
//	{basePath}/
//	├── index.html               # required: marks a usable runtime tree
//	├── jupyter-lite.json        # runtime configuration, merged at assembly
//	├── lab/index.html
//	├── notebooks/index.html
//	└── static/
//	    └── {name}.js            # optional overrides for helper scripts
//
// # Security
//
// Script names are validated to prevent path traversal attacks.
// FilesystemLoader resolves symlinks and verifies paths stay within basePath.
package assets
