package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctxweave/internal/block"
)

func TestNeutralize_DefusesWrapperTags(t *testing.T) {
	in := `console.log("</FileContents>")` + "\n<FileTree></FileTree>"
	out := Neutralize(in)

	// No literal wrapper tag survives.
	for _, tag := range block.TagNames() {
		assert.NotContains(t, out, "<"+tag, "open tag %s not defused", tag)
		assert.NotContains(t, out, "</"+tag, "close tag %s not defused", tag)
	}
	// The separator sits between bracket and name.
	assert.Contains(t, out, "</"+ZeroWidthSep+"FileContents>")
	assert.Contains(t, out, "<"+ZeroWidthSep+"FileTree>")
}

func TestNeutralize_LeavesOrdinaryContentAlone(t *testing.T) {
	in := "func main() {\n\tfmt.Println(\"<div>\")\n}"
	assert.Equal(t, in, Neutralize(in))
}

func TestRestore_InvertsNeutralize(t *testing.T) {
	cases := []string{
		`console.log("</FileContents>")`,
		"<FileContents id=\"x\">nested</FileContents>",
		"plain text, no tags",
		"<WorkspaceProblems><CodeSnippet>",
	}
	for _, in := range cases {
		assert.Equal(t, in, Restore(Neutralize(in)), "round trip failed for %q", in)
	}
}

func TestFiles_FencedBlocks(t *testing.T) {
	out := Files([]FileItem{
		{Path: "/src/a.go", Content: "package a\n", Language: "go"},
		{Path: "/src/b.ts", Content: "export {}", Language: "typescript"},
	})

	require.Contains(t, out, "File: /src/a.go\n```go\npackage a\n```")
	require.Contains(t, out, "File: /src/b.ts\n```typescript\nexport {}\n```")
	// Blocks separated by a blank line, first before second.
	i := strings.Index(out, "File: /src/a.go")
	j := strings.Index(out, "File: /src/b.ts")
	assert.Less(t, i, j)
	assert.Contains(t, out, "```\n\nFile: /src/b.ts")
}

func TestEnvelope(t *testing.T) {
	got := Envelope(block.KindFileContent, "b1", "body text")
	assert.Equal(t, "<FileContents id=\"b1\">\nbody text\n</FileContents>", got)

	got = Envelope(block.KindDiagnostics, "p1", "warnings")
	assert.Equal(t, "<WorkspaceProblems id=\"p1\">\nwarnings\n</WorkspaceProblems>", got)
}

func TestFragmentHTML_EscapesBody(t *testing.T) {
	got := FragmentHTML(block.KindSnippet, "s1", "if a < b {\n\treturn\n}")
	assert.Equal(t, "<CodeSnippet id=\"s1\">if a &lt; b {<br>\treturn<br>}</CodeSnippet>", got)

	// And the inverse restores the body.
	body := got[strings.Index(got, ">")+1 : strings.LastIndex(got, "</")]
	assert.Equal(t, "if a < b {\n\treturn\n}", BodyFromHTML(body))
}
