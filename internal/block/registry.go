package block

import "sync"

// Registry is the ordered set of blocks currently believed to be live in the
// bound surface. It holds metadata only, never surface content, and is kept
// consistent with the surface by the reconciler.
type Registry struct {
	mu     sync.RWMutex
	blocks []Metadata
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends a block to the registry. Insertion order is preserved; List
// returns blocks in the order they were added.
func (r *Registry) Add(m Metadata) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks = append(r.blocks, m)
}

// Remove deletes the block with the given id. Removing an unknown id is a
// no-op; it reports whether anything was removed.
func (r *Registry) Remove(blockID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, b := range r.blocks {
		if b.BlockID == blockID {
			r.blocks = append(r.blocks[:i], r.blocks[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveBatch deletes every listed id in one pass. Used by the reconciler so a
// sweep mutates the registry once, not once per evicted block.
func (r *Registry) RemoveBatch(blockIDs []string) int {
	if len(blockIDs) == 0 {
		return 0
	}
	gone := make(map[string]bool, len(blockIDs))
	for _, id := range blockIDs {
		gone[id] = true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.blocks[:0]
	removed := 0
	for _, b := range r.blocks {
		if gone[b.BlockID] {
			removed++
			continue
		}
		kept = append(kept, b)
	}
	r.blocks = kept
	return removed
}

// List returns a copy of the active blocks in insertion order.
func (r *Registry) List() []Metadata {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Metadata, len(r.blocks))
	copy(out, r.blocks)
	return out
}

// Get returns the block with the given id.
func (r *Registry) Get(blockID string) (Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.blocks {
		if b.BlockID == blockID {
			return b, true
		}
	}
	return Metadata{}, false
}

// IsDuplicateSource reports whether any live block already came from the given
// source. Callers must check this before fetching content.
func (r *Registry) IsDuplicateSource(sourceID string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, b := range r.blocks {
		if b.SourceID == sourceID {
			return true
		}
	}
	return false
}

// Len returns the number of active blocks.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.blocks)
}

// Clear drops every block. Called when a floating-UI session ends and a later
// activation starts a fresh registry scope.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.blocks = nil
}
