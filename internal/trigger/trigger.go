// Package trigger classifies the text immediately before the caret on every
// edit, deciding whether an activation gesture (@) is in play. Detection is
// stateless: each edit is evaluated from scratch against the current caret.
package trigger

import (
	"strings"
	"unicode/utf16"
)

// Classification is the outcome of scanning the text before the caret.
type Classification int

const (
	// None means no activation is in play; any open UI for the surface
	// should be dismissed.
	None Classification = iota
	// Search means @ followed by a non-empty query run.
	Search
	// General means a bare @ with nothing (or only whitespace) after it.
	General
	// Ambiguous means an @ exists but the text after it does not cleanly
	// resolve to a query. Policy: dismiss any open UI, never open a new
	// one; opening on ambiguous input causes flicker mid-type.
	Ambiguous
)

func (c Classification) String() string {
	switch c {
	case None:
		return "none"
	case Search:
		return "search"
	case General:
		return "general"
	case Ambiguous:
		return "ambiguous"
	default:
		return "unknown"
	}
}

// Match is the result of one detection pass. It is derived purely from
// caret-relative text and never persisted.
type Match struct {
	Class Classification
	// FullMatch is the literal activation text, e.g. "@" or "@query". It is
	// what the insertion engine later strips from the surface.
	FullMatch string
	// Query is the run after the @ for Search matches, empty otherwise.
	Query string
}

// Detect scans the text before the caret for the activation gesture.
//
// The last @ in the pre-caret text anchors the decision. Everything between
// that @ and the caret is the run:
//   - run with no whitespace and non-empty  -> Search, query = run
//   - empty run (@ sits at the caret)       -> General
//   - run that is all whitespace            -> General (bare @ then spaces)
//   - anything else                         -> Ambiguous
//
// No @ before the caret, or a caret outside the text, classifies None.
func Detect(text string, caret int) Match {
	if caret < 0 || caret > len(text) {
		return Match{Class: None}
	}
	before := text[:caret]
	at := strings.LastIndexByte(before, '@')
	if at < 0 {
		return Match{Class: None}
	}
	run := before[at+1:]
	switch {
	case run == "":
		return Match{Class: General, FullMatch: "@"}
	case !containsSpace(run):
		return Match{Class: Search, FullMatch: "@" + run, Query: run}
	case strings.TrimSpace(run) == "":
		return Match{Class: General, FullMatch: "@"}
	default:
		return Match{Class: Ambiguous}
	}
}

func containsSpace(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}) >= 0
}

// Detect takes a byte offset, but caret positions arrive in whatever unit the
// edit source counts in: DOM selections report UTF-16 code units, terminal
// inputs report runes. These convert at the bridge so non-ASCII text before
// the caret cannot shift the anchor.

// ByteOffsetFromRunes converts a rune-indexed caret into a byte offset.
func ByteOffsetFromRunes(text string, runes int) int {
	if runes <= 0 {
		return 0
	}
	seen := 0
	for i := range text {
		if seen == runes {
			return i
		}
		seen++
	}
	return len(text)
}

// ByteOffsetFromUTF16 converts a UTF-16 code unit caret into a byte offset.
func ByteOffsetFromUTF16(text string, units int) int {
	if units <= 0 {
		return 0
	}
	seen := 0
	for i, r := range text {
		if seen >= units {
			return i
		}
		if l := utf16.RuneLen(r); l > 0 {
			seen += l
		} else {
			seen++
		}
	}
	return len(text)
}
