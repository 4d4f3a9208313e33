// Package site defines the contract between a static-site build and the
// plugins that extend it.
//
// A build collects source files into a [Files] collection, renders each
// Markdown [Page], and writes every file to the site directory. Plugins
// observe and modify that pass through the hooks of [Plugin]. Files do not
// need to exist on disk: a [File] reports whether it is virtual and knows
// how to materialize itself at its destination.
package site
