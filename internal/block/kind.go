// Package block defines the metadata model for injected context blocks and the
// ordered registry that tracks which blocks are currently live in a surface.
package block

import "fmt"

// Kind identifies what a block's content was sourced from. The kind alone
// determines the wrapper tag used on the wire, so every switch over Kind must
// be exhaustive.
type Kind int

const (
	KindFileContent Kind = iota
	KindFolderContent
	KindCodebase
	KindFileTree
	KindSnippet
	KindDiagnostics
)

// Wrapper tag names. These four strings are the entire tag vocabulary; the
// formatter neutralizes them inside user content and the region matcher
// recognizes only these.
const (
	TagFileContents      = "FileContents"
	TagFileTree          = "FileTree"
	TagCodeSnippet       = "CodeSnippet"
	TagWorkspaceProblems = "WorkspaceProblems"
)

// TagNames returns every wrapper tag name, in a fixed order.
func TagNames() []string {
	return []string{TagFileContents, TagFileTree, TagCodeSnippet, TagWorkspaceProblems}
}

// TagName returns the wrapper tag for this kind. File, folder and whole-codebase
// content all share the FileContents wrapper.
func (k Kind) TagName() string {
	switch k {
	case KindFileContent, KindFolderContent, KindCodebase:
		return TagFileContents
	case KindFileTree:
		return TagFileTree
	case KindSnippet:
		return TagCodeSnippet
	case KindDiagnostics:
		return TagWorkspaceProblems
	default:
		panic(fmt.Sprintf("block: unknown kind %d", int(k)))
	}
}

// String returns a short human-readable name for logs and indicators.
func (k Kind) String() string {
	switch k {
	case KindFileContent:
		return "file"
	case KindFolderContent:
		return "folder"
	case KindCodebase:
		return "codebase"
	case KindFileTree:
		return "file-tree"
	case KindSnippet:
		return "snippet"
	case KindDiagnostics:
		return "problems"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}
