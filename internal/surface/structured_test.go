package surface

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ctxweave/internal/block"
)

func TestStructured_InsertPrependsWhenNoPriorBlock(t *testing.T) {
	dom := NewMemoryDOM("hello @")
	s := NewStructured("test", dom)

	require.NoError(t, s.InsertBlock(block.KindFileContent, "b1", "body", "@"))

	blocks := dom.Blocks()
	require.Len(t, blocks, 1)
	assert.True(t, strings.HasPrefix(blocks[0], `<FileContents id="b1">`))
	assert.Equal(t, "hello ", dom.UserHTML(), "activation text must be stripped")
	assert.Equal(t, 1, dom.Notifies)
	assert.Equal(t, 1, dom.Scrolls)
}

func TestStructured_InsertAfterLastBlock(t *testing.T) {
	dom := NewMemoryDOM("user text")
	s := NewStructured("test", dom)

	require.NoError(t, s.InsertBlock(block.KindFileTree, "t1", "tree", ""))
	require.NoError(t, s.InsertBlock(block.KindSnippet, "s1", "snip", ""))

	blocks := dom.Blocks()
	require.Len(t, blocks, 2)
	assert.Contains(t, blocks[0], `id="t1"`)
	assert.Contains(t, blocks[1], `id="s1"`)

	html, _ := dom.HTML()
	assert.Less(t, strings.Index(html, `id="t1"`), strings.Index(html, `id="s1"`))
	assert.True(t, strings.HasSuffix(html, "user text"))
}

func TestStructured_BodyIsEscapedInFragment(t *testing.T) {
	dom := NewMemoryDOM("")
	s := NewStructured("test", dom)

	require.NoError(t, s.InsertBlock(block.KindSnippet, "s1", "a < b\n<div>", ""))

	html, _ := dom.HTML()
	assert.NotContains(t, html, "<div>", "file content must not become live elements")
	assert.Contains(t, html, "a &lt; b")
}

func TestStructured_RemoveByIdentifier(t *testing.T) {
	dom := NewMemoryDOM("tail")
	s := NewStructured("test", dom)
	require.NoError(t, s.InsertBlock(block.KindFileTree, "t1", "tree", ""))
	require.NoError(t, s.InsertBlock(block.KindSnippet, "s1", "snip", ""))
	dom.Notifies = 0

	ok, err := s.RemoveBlock(block.KindFileTree, "t1")
	require.NoError(t, err)
	assert.True(t, ok)

	html, _ := dom.HTML()
	assert.NotContains(t, html, "t1")
	assert.Contains(t, html, `id="s1"`)
	assert.Equal(t, 1, dom.Notifies)
}

func TestStructured_RemoveMissIsNoOp(t *testing.T) {
	dom := NewMemoryDOM("tail")
	s := NewStructured("test", dom)
	require.NoError(t, s.InsertBlock(block.KindSnippet, "s1", "snip", ""))
	dom.Notifies = 0

	ok, err := s.RemoveBlock(block.KindSnippet, "ghost")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, dom.Notifies)
}

func TestStructured_RemoveFallsBackToTextPattern(t *testing.T) {
	// Structure not intact: the structural query errors, the text-pattern
	// fallback still strips the region from the serialized HTML.
	dom := NewMemoryDOM("tail")
	s := NewStructured("test", dom)
	require.NoError(t, s.InsertBlock(block.KindSnippet, "s1", "snip", ""))
	dom.Broken = true

	ok, err := s.RemoveBlock(block.KindSnippet, "s1")
	require.NoError(t, err)
	assert.True(t, ok)

	html, _ := dom.HTML()
	assert.NotContains(t, html, `id="s1"`)
	assert.Contains(t, html, "tail")
}

func TestStructured_InsertAfterFallbackRewriteStaysVisible(t *testing.T) {
	// A text-pattern removal rewrites the serialized region; a block inserted
	// afterwards must still show up in Content() so reconciliation sees it.
	dom := NewMemoryDOM("tail")
	s := NewStructured("test", dom)
	require.NoError(t, s.InsertBlock(block.KindSnippet, "s1", "snip", ""))
	dom.Broken = true
	ok, err := s.RemoveBlock(block.KindSnippet, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	dom.Broken = false

	require.NoError(t, s.InsertBlock(block.KindFileTree, "t1", "tree", ""))

	html, err := s.Content()
	require.NoError(t, err)
	assert.Contains(t, html, `id="t1"`,
		"a block inserted after a fallback rewrite must be part of the content")
	assert.Contains(t, html, "tail")
}

func TestStructured_ExtractRestoresBody(t *testing.T) {
	dom := NewMemoryDOM("")
	s := NewStructured("test", dom)
	body := "if a < b {\n\treturn\n}"
	require.NoError(t, s.InsertBlock(block.KindSnippet, "s1", body, ""))

	got, ok, err := s.ExtractBlock(block.KindSnippet, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, body, got)
}

func TestStructured_ExtractFallsBackToTextPattern(t *testing.T) {
	dom := NewMemoryDOM("")
	s := NewStructured("test", dom)
	require.NoError(t, s.InsertBlock(block.KindSnippet, "s1", "snip body", ""))
	dom.Broken = true

	got, ok, err := s.ExtractBlock(block.KindSnippet, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "snip body", got)
}
