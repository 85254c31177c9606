// Package reconcile keeps the block registry consistent with what is actually
// still present in the surface. Users can delete a tagged region by hand at
// any time; after every edit a sweep evicts the registry entries whose regions
// are gone, so visible indicators stay truthful.
package reconcile

import (
	"fmt"

	"ctxweave/internal/block"
	"ctxweave/internal/logging"
	"ctxweave/internal/region"
	"ctxweave/internal/surface"
)

// Reconciler sweeps one registry against one surface.
type Reconciler struct {
	registry *block.Registry
	// onEvict is called at most once per sweep, with the surviving blocks,
	// so indicators re-render exactly once no matter how many blocks were
	// evicted.
	onEvict func(remaining []block.Metadata)
}

// New creates a reconciler. onEvict may be nil.
func New(registry *block.Registry, onEvict func(remaining []block.Metadata)) *Reconciler {
	return &Reconciler{registry: registry, onEvict: onEvict}
}

// Sweep checks every registered block against the surface's current content
// and evicts, in one batch, those whose id attribute is no longer present.
// The check is a cheap literal membership test, not a tag parse. It returns
// the evicted block ids.
func (r *Reconciler) Sweep(s surface.Surface) ([]string, error) {
	content, err := s.Content()
	if err != nil {
		return nil, fmt.Errorf("read surface content: %w", err)
	}

	var evicted []string
	for _, b := range r.registry.List() {
		if !region.ContainsID(content, b.BlockID) {
			evicted = append(evicted, b.BlockID)
		}
	}
	if len(evicted) == 0 {
		return nil, nil
	}

	r.registry.RemoveBatch(evicted)
	logging.Get(logging.CategoryReconcile).Debugf("evicted %d hand-deleted block(s): %v", len(evicted), evicted)
	if r.onEvict != nil {
		r.onEvict(r.registry.List())
	}
	return evicted, nil
}
