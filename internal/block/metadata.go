package block

import "github.com/google/uuid"

// Metadata describes one injected block. It is created only after an insertion
// has actually succeeded and lives in the Registry until the block is removed,
// reconciled away, or the session ends.
type Metadata struct {
	// BlockID is the opaque token written into the wrapper tag's id attribute.
	BlockID string `json:"block_id"`
	// SourceID identifies the originating file/folder/tree/etc. No two live
	// blocks may share a source.
	SourceID string `json:"source_id"`
	Kind     Kind   `json:"kind"`
	// Label is what indicators show, typically a base name or a short title.
	Label string `json:"label"`
	// Workspace is the provider-side workspace the content came from.
	Workspace string `json:"workspace,omitempty"`
	// OriginWindow records which provider window served the fetch, so a view
	// or refresh can be routed back to it.
	OriginWindow string `json:"origin_window,omitempty"`
}

// NewID generates a fresh block id for content whose provider did not supply
// a server-side one.
func NewID() string {
	return uuid.NewString()
}
