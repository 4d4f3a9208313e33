// Package sitebuild is a small static-site builder used by the litedocs
// command. It collects files under docs_dir, renders Markdown pages and
// writes the result to site_dir, calling site.Plugin hooks along the way.
package sitebuild
