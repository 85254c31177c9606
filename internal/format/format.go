// Package format turns raw retrieved items into the plain-text payloads that
// get spliced into a surface, and builds the tagged envelopes around them.
// All user-sourced content passes through tag neutralization before emission.
package format

import (
	"fmt"
	"html"
	"strings"

	"ctxweave/internal/block"
)

// FileItem is one retrieved file: its path (or label), raw content, and the
// language tag for the code fence.
type FileItem struct {
	Path     string
	Content  string
	Language string
}

// Files renders multiple files as path-headed fenced blocks, concatenated with
// blank lines. The result is content only, without an envelope.
func Files(items []FileItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		var sb strings.Builder
		sb.WriteString("File: ")
		sb.WriteString(it.Path)
		sb.WriteString("\n```")
		sb.WriteString(it.Language)
		sb.WriteString("\n")
		sb.WriteString(it.Content)
		if !strings.HasSuffix(it.Content, "\n") {
			sb.WriteString("\n")
		}
		sb.WriteString("```")
		parts = append(parts, sb.String())
	}
	return Neutralize(strings.Join(parts, "\n\n"))
}

// Raw neutralizes a single pre-rendered string (a tree listing or a
// diagnostics report).
func Raw(s string) string {
	return Neutralize(s)
}

// Envelope wraps a formatted body in the wrapper tag for the given kind. This
// is the wire format for linear surfaces:
//
//	<Kind id="ID">
//	body
//	</Kind>
func Envelope(kind block.Kind, id, body string) string {
	tag := kind.TagName()
	return fmt.Sprintf("<%s id=%q>\n%s\n</%s>", tag, id, body, tag)
}

// FragmentHTML builds the same region as an HTML fragment for structured
// surfaces. The body is HTML-escaped with newlines as <br>, so file content
// can never inject live elements into the host page; the wrapper element
// itself is real so structural queries can find it.
func FragmentHTML(kind block.Kind, id, body string) string {
	tag := kind.TagName()
	escaped := strings.ReplaceAll(html.EscapeString(body), "\n", "<br>")
	return fmt.Sprintf("<%s id=%q>%s</%s>", tag, html.EscapeString(id), escaped, tag)
}

// BodyFromHTML inverts FragmentHTML's body transform: <br> back to newlines,
// entities unescaped. Used when extracting a block from a structured surface.
func BodyFromHTML(s string) string {
	s = strings.ReplaceAll(s, "<br>", "\n")
	s = strings.ReplaceAll(s, "<br/>", "\n")
	s = strings.ReplaceAll(s, "<br />", "\n")
	return html.UnescapeString(s)
}
