package surface

import (
	"fmt"

	"ctxweave/internal/block"
	"ctxweave/internal/format"
	"ctxweave/internal/region"
)

// DOMRegion is the contract a structured editable region must expose. Element
// location goes through structural queries, not string search; the serialized
// HTML is only used for membership checks and as a last-resort fallback.
type DOMRegion interface {
	HTML() (string, error)
	SetHTML(string) error
	// InsertBlockHTML places the fragment immediately after the last wrapper
	// element, or prepends it to the region when no prior block exists, with
	// explicit line-break separators.
	InsertBlockHTML(fragment string) error
	// RemoveTriggerText deletes the first occurrence of the activation text
	// from the region's text nodes. A miss is not an error.
	RemoveTriggerText(trigger string) error
	// RemoveElementByID removes the wrapper element carrying the id.
	RemoveElementByID(tag, id string) (bool, error)
	// ElementText returns the rendered text of the wrapper element carrying
	// the id.
	ElementText(tag, id string) (string, bool, error)
	NotifyChanged() error
	ScrollToEnd() error
}

// Structured adapts a DOM region to the Surface protocol. Blocks are real
// elements: insertion and removal prefer structural queries by identifier and
// fall back to text-pattern matching over the serialized HTML only when the
// structural path cannot serve.
type Structured struct {
	dom     DOMRegion
	matcher region.Matcher
	desc    string
}

// NewStructured wraps a DOM region as a Surface.
func NewStructured(desc string, dom DOMRegion) *Structured {
	return &Structured{dom: dom, matcher: region.TextMatcher{}, desc: desc}
}

// Region exposes the underlying DOM region.
func (s *Structured) Region() DOMRegion { return s.dom }

func (s *Structured) Describe() string { return s.desc }

func (s *Structured) Content() (string, error) { return s.dom.HTML() }

func (s *Structured) InsertBlock(kind block.Kind, id, body, trigger string) error {
	if trigger != "" {
		if err := s.dom.RemoveTriggerText(trigger); err != nil {
			return fmt.Errorf("strip activation text: %w", err)
		}
	}
	fragment := format.FragmentHTML(kind, id, body)
	if err := s.dom.InsertBlockHTML(fragment); err != nil {
		return fmt.Errorf("insert block fragment: %w", err)
	}
	if err := s.dom.NotifyChanged(); err != nil {
		return err
	}
	return s.dom.ScrollToEnd()
}

func (s *Structured) RemoveBlock(kind block.Kind, id string) (bool, error) {
	removed, err := s.dom.RemoveElementByID(kind.TagName(), id)
	if err == nil && removed {
		return true, s.dom.NotifyChanged()
	}
	// Structural path missed or the structure is broken: treat the whole
	// region as text. The block body is opaque here; a pattern miss leaves
	// the content untouched.
	html, herr := s.dom.HTML()
	if herr != nil {
		if err != nil {
			return false, err
		}
		return false, herr
	}
	spliced, ok := s.matcher.Splice(html, kind, id)
	if !ok {
		return false, nil
	}
	if err := s.dom.SetHTML(spliced); err != nil {
		return false, fmt.Errorf("write region html: %w", err)
	}
	return true, s.dom.NotifyChanged()
}

func (s *Structured) ExtractBlock(kind block.Kind, id string) (string, bool, error) {
	text, ok, err := s.dom.ElementText(kind.TagName(), id)
	if err == nil && ok {
		return text, true, nil
	}
	html, herr := s.dom.HTML()
	if herr != nil {
		if err != nil {
			return "", false, err
		}
		return "", false, herr
	}
	body, ok := region.Extract(html, kind, id)
	if !ok {
		return "", false, nil
	}
	return format.BodyFromHTML(body), true, nil
}
