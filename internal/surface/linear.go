package surface

import (
	"fmt"
	"strings"

	"ctxweave/internal/block"
	"ctxweave/internal/format"
	"ctxweave/internal/region"
)

// TextBuffer is the minimal contract a linear editable element must expose.
// The rod implementation drives a real textarea; the memory implementation
// backs tests and headless runs.
type TextBuffer interface {
	Value() (string, error)
	SetValue(string) error
	CaretOffset() (int, error)
	SetCaretToEnd() error
	NotifyChanged() error
	ScrollToEnd() error
}

// Linear operates directly on the full string value of a plain text buffer.
// Managed-boundary detection uses last-index-of on the literal closing tags.
type Linear struct {
	buf     TextBuffer
	matcher region.Matcher
	desc    string
}

// NewLinear wraps a text buffer as a Surface.
func NewLinear(desc string, buf TextBuffer) *Linear {
	return &Linear{buf: buf, matcher: region.TextMatcher{}, desc: desc}
}

// Buffer exposes the underlying text buffer, mainly for caret reads during
// trigger detection.
func (l *Linear) Buffer() TextBuffer { return l.buf }

func (l *Linear) Describe() string { return l.desc }

func (l *Linear) Content() (string, error) { return l.buf.Value() }

func (l *Linear) InsertBlock(kind block.Kind, id, body, trigger string) error {
	content, err := l.buf.Value()
	if err != nil {
		return fmt.Errorf("read surface value: %w", err)
	}

	payload := format.Envelope(kind, id, body)

	managedEnd := region.LastManagedBoundary(content)
	managed := strings.TrimRight(content[:managedEnd], " \t\r\n")
	rest := content[managedEnd:]
	if trigger != "" {
		// Best-effort: if the caret moved and the activation text is gone,
		// do not delete unrelated text.
		rest = strings.Replace(rest, trigger, "", 1)
	}
	rest = strings.TrimLeft(rest, " \t\r\n")

	var sb strings.Builder
	if managed != "" {
		sb.WriteString(managed)
		sb.WriteString("\n\n")
	}
	sb.WriteString(payload)
	if rest != "" {
		sb.WriteString("\n\n")
		sb.WriteString(rest)
	}

	if err := l.buf.SetValue(sb.String()); err != nil {
		return fmt.Errorf("write surface value: %w", err)
	}
	if err := l.buf.SetCaretToEnd(); err != nil {
		return err
	}
	if err := l.buf.NotifyChanged(); err != nil {
		return err
	}
	return l.buf.ScrollToEnd()
}

func (l *Linear) RemoveBlock(kind block.Kind, id string) (bool, error) {
	content, err := l.buf.Value()
	if err != nil {
		return false, fmt.Errorf("read surface value: %w", err)
	}
	span, ok := l.matcher.Locate(content, kind, id)
	if !ok {
		return false, nil
	}
	head, tail := content[:span.Start], content[span.End:]
	if head == "" {
		// The region was first; drop the separator it left behind. Anywhere
		// else the gap stays, so hand-written newlines elsewhere in the
		// buffer are never touched.
		tail = strings.TrimLeft(tail, "\n")
	}
	spliced := head + tail
	if spliced == content {
		// Nothing actually changed; skip the notification.
		return true, nil
	}
	if err := l.buf.SetValue(spliced); err != nil {
		return false, fmt.Errorf("write surface value: %w", err)
	}
	return true, l.buf.NotifyChanged()
}

func (l *Linear) ExtractBlock(kind block.Kind, id string) (string, bool, error) {
	content, err := l.buf.Value()
	if err != nil {
		return "", false, fmt.Errorf("read surface value: %w", err)
	}
	body, ok := region.Extract(content, kind, id)
	return body, ok, nil
}
