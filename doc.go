// Package jupyterlite builds a browser-runnable JupyterLite site from
// notebooks and Python package specifiers, and hands the result to a
// static-site build as virtual files.
//
// # Quick Start
//
// Create a plugin from its configuration and register it with a host that
// implements the [site] contract:
//
//	cfg := jupyterlite.Config{
//	    Notebooks: []string{"notebooks/*.ipynb"},
//	    PipURLs:   []string{"numpy==1.26.0"},
//	    OutputDir: "lite",
//	}
//	plugin := jupyterlite.New(cfg, jupyterlite.WithLogger(logger))
//
// The host calls the hooks in order. OnFiles resolves every specifier,
// collects the notebooks, assembles the runtime tree and registers each
// file under output_dir. OnPageMarkdown turns embed markers into iframes:
//
//	```jupyterlite height=400
//	intro
//	```
//
// A page can also request an embed from its front matter:
//
//	---
//	jupyterlite: intro
//	---
//
// # Output
//
// The runtime lands under output_dir with notebooks/, packages/ (including
// the piplite index all.json), static/, jupyter-lite.json and a
// manifest.json describing every notebook and package. Files are virtual:
// nothing is written outside the site directory.
//
// # Failures
//
// With on_failure set to "fatal" (the default) one unresolvable specifier
// aborts the build and a [*SpecResolutionError] lists all of them. With
// "skip" failed packages are left out together with the notebooks that
// import them. Errors match the sentinels in this package with errors.Is.
//
// # Incremental Builds
//
// A [BuildContext] caches resolved packages. Share one across plugins with
// [WithBuildContext] so rebuilds only fetch what changed.
package jupyterlite
