// Package surface models the editable element bound to a floating-UI session.
// Two structurally different surface kinds share one capability interface:
// plain linear text buffers (textarea-like) and structured editable regions
// (contenteditable-like). All shared logic goes through the interface; nothing
// outside this package branches on the surface kind.
package surface

import "ctxweave/internal/block"

// Surface is the protocol a bound editable element must support. Every
// mutating call ends with a change notification on the underlying element so
// host-page reactive bindings observe the new content, and scrolls the
// element to show the end of its content.
type Surface interface {
	// Describe names the surface for logs.
	Describe() string

	// Content returns the surface's full current content: the raw string
	// value for linear surfaces, the serialized inner HTML for structured
	// ones. Region membership checks and text-pattern fallbacks run over
	// this string.
	Content() (string, error)

	// InsertBlock splices a new tagged region for (kind, id, body) at the
	// managed/user boundary: after every existing block, before free-form
	// user text. The trigger text ("@" or "@query") is removed from the
	// user portion best-effort; if the caret moved and it is gone, nothing
	// unrelated is deleted.
	InsertBlock(kind block.Kind, id, body, trigger string) error

	// RemoveBlock strips the region with the given id. A miss reports
	// (false, nil): the caller logs it and evicts the registry entry anyway.
	RemoveBlock(kind block.Kind, id string) (bool, error)

	// ExtractBlock reads a region's body without removing it.
	ExtractBlock(kind block.Kind, id string) (string, bool, error)
}
