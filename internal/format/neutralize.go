package format

import (
	"strings"

	"ctxweave/internal/block"
)

// ZeroWidthSep is inserted between an angle bracket and a wrapper tag name
// found inside user content. It is invisible when rendered but breaks the
// literal tag text, so the region matcher can never mistake user content for a
// real block boundary.
const ZeroWidthSep = "​"

// Neutralize defuses every occurrence of the system's own wrapper tags inside
// user-sourced content. A file containing the literal text </FileContents>
// comes out as </​FileContents>, which displays identically.
func Neutralize(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	for _, tag := range block.TagNames() {
		s = strings.ReplaceAll(s, "</"+tag, "</"+ZeroWidthSep+tag)
		s = strings.ReplaceAll(s, "<"+tag, "<"+ZeroWidthSep+tag)
	}
	return s
}

// Restore inverts Neutralize for display purposes.
func Restore(s string) string {
	if !strings.Contains(s, ZeroWidthSep) {
		return s
	}
	for _, tag := range block.TagNames() {
		s = strings.ReplaceAll(s, "</"+ZeroWidthSep+tag, "</"+tag)
		s = strings.ReplaceAll(s, "<"+ZeroWidthSep+tag, "<"+tag)
	}
	return s
}
