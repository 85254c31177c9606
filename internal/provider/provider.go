// Package provider defines the contract to the external workspace provider.
// Retrieval and transport are external collaborators: this package owns the
// request/response types and a deterministic in-memory implementation used by
// tests and the browserless demo. Every response carries typed content plus
// block metadata, or a coded error.
package provider

import (
	"context"
	"fmt"

	"ctxweave/internal/block"
	"ctxweave/internal/format"
)

// Error codes mirrored from the messaging bridge.
const (
	CodeNotFound    = "not_found"
	CodeUnavailable = "unavailable"
	CodeInternal    = "internal"
)

// Error is a failed provider response.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("provider: %s (%s)", e.Message, e.Code)
}

// Scope addresses a workspace (and the provider window serving it).
type Scope struct {
	Workspace string
	Window    string
}

// SearchItem is one selectable result for the floating UI.
type SearchItem struct {
	SourceID string
	Label    string
	Path     string
	Kind     block.Kind
}

// Content is a successful fetch: block metadata plus the raw content. Files
// is set for file/folder/codebase content; Raw for pre-rendered bodies (tree
// listings, diagnostics reports, snippets).
type Content struct {
	Meta  block.Metadata
	Files []format.FileItem
	Raw   string
}

// Body renders the content into the plain-text payload for insertion,
// applying tag neutralization.
func (c *Content) Body() string {
	if len(c.Files) > 0 {
		return format.Files(c.Files)
	}
	return format.Raw(c.Raw)
}

// Provider is the consumed interface to the external workspace provider. All
// calls may suspend; callers capture their insertion target before calling.
type Provider interface {
	Search(ctx context.Context, query string, scope Scope) ([]SearchItem, error)
	FileContent(ctx context.Context, ref string) (*Content, error)
	FolderContent(ctx context.Context, ref string, scope Scope) (*Content, error)
	FileTree(ctx context.Context, scope Scope) (*Content, error)
	EntireCodebase(ctx context.Context, scope Scope) (*Content, error)
	OpenFiles(ctx context.Context) ([]SearchItem, error)
	ContentsForFiles(ctx context.Context, refs []string) (*Content, error)
	WorkspaceProblems(ctx context.Context, scope Scope) (*Content, error)
}
