package jupyterlite

import "github.com/alnah/go-jupyterlite/internal/resolver"

// BuildContext carries resolved packages across incremental rebuilds.
// Pass the same BuildContext to successive plugins with WithBuildContext so
// unchanged specifiers are not fetched again. Safe for concurrent use.
type BuildContext struct {
	cache *resolver.Cache
}

// NewBuildContext returns an empty BuildContext.
func NewBuildContext() *BuildContext {
	return &BuildContext{cache: resolver.NewCache()}
}

// Len returns the number of cached specifiers.
func (b *BuildContext) Len() int { return b.cache.Len() }

// Artifacts returns the number of distinct wheels held in memory.
func (b *BuildContext) Artifacts() int { return b.cache.Blobs() }

// Invalidate drops one specifier so the next build fetches it again.
func (b *BuildContext) Invalidate(spec string) bool {
	return b.cache.Invalidate(spec)
}

// InvalidateLocal drops every local wheel, for when files on disk changed.
func (b *BuildContext) InvalidateLocal() int {
	return b.cache.InvalidateKind(resolver.KindLocal)
}

// InvalidateLatest drops every unpinned specifier so the index is queried again.
func (b *BuildContext) InvalidateLatest() int {
	return b.cache.InvalidateKind(resolver.KindLatest)
}

// Retain drops every specifier not listed in keep.
func (b *BuildContext) Retain(keep []string) int {
	return b.cache.Retain(keep)
}
