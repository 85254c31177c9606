// Package region locates, extracts, and removes tagged block regions inside
// unstructured surface text. There is no document model here: regions are
// found by identifier-aware pattern matching, and anything that does not match
// cleanly is treated as ordinary text rather than an error.
package region

import (
	"regexp"
	"strings"
	"sync"

	"ctxweave/internal/block"
)

// Matcher is the strategy surface implementations use to find and splice
// regions. The default is the regex matcher below; it is an interface so the
// strategy (regex vs a hand-rolled tokenizer) can change without touching
// callers.
type Matcher interface {
	// Locate returns the bounds of the region with the given id, and its
	// body, or ok=false when no well-formed region matches.
	Locate(content string, kind block.Kind, id string) (Span, bool)
	// Splice removes the first region with the given id. It reports whether
	// anything was removed; a miss leaves content untouched.
	Splice(content string, kind block.Kind, id string) (string, bool)
}

// Span is a located region: half-open byte offsets of the whole tagged region
// plus the body between the tags.
type Span struct {
	Start int
	End   int
	Body  string
}

// patternCache avoids recompiling per keystroke during reconciliation-heavy
// editing.
var (
	patternMu    sync.Mutex
	patternCache = map[string]*regexp.Regexp{}
)

// Pattern builds the matcher for one block: the open tag with the id attribute
// anywhere among its attributes, the shortest possible body, and the matching
// close tag. The tag name is fully determined by the kind, so it appears
// literally at both ends, so the close tag cannot mismatch.
// The id is quoted against all regex metacharacters.
func Pattern(kind block.Kind, id string) *regexp.Regexp {
	tag := kind.TagName()
	key := tag + "\x00" + id
	patternMu.Lock()
	defer patternMu.Unlock()
	if re, ok := patternCache[key]; ok {
		return re
	}
	expr := `(?s)<` + tag + `\b[^>]*\bid="` + regexp.QuoteMeta(id) + `"[^>]*>\r?\n?(.*?)\r?\n?</` + tag + `>`
	re := regexp.MustCompile(expr)
	patternCache[key] = re
	return re
}

// TextMatcher is the regex-backed Matcher.
type TextMatcher struct{}

// Locate finds the first region carrying the id.
func (TextMatcher) Locate(content string, kind block.Kind, id string) (Span, bool) {
	m := Pattern(kind, id).FindStringSubmatchIndex(content)
	if m == nil {
		return Span{}, false
	}
	return Span{Start: m[0], End: m[1], Body: content[m[2]:m[3]]}, true
}

// Splice removes the first region carrying the id.
func (TextMatcher) Splice(content string, kind block.Kind, id string) (string, bool) {
	sp, ok := TextMatcher{}.Locate(content, kind, id)
	if !ok {
		return content, false
	}
	return content[:sp.Start] + content[sp.End:], true
}

// Extract returns the body of the region carrying the id.
func Extract(content string, kind block.Kind, id string) (string, bool) {
	sp, ok := TextMatcher{}.Locate(content, kind, id)
	if !ok {
		return "", false
	}
	return sp.Body, true
}

// LastManagedBoundary returns the offset immediately after the last closing
// wrapper tag in the content. Everything before it is managed content;
// everything after is the user's. Returns 0 when no block is present.
func LastManagedBoundary(content string) int {
	end := 0
	for _, tag := range block.TagNames() {
		close := "</" + tag + ">"
		if i := strings.LastIndex(content, close); i >= 0 && i+len(close) > end {
			end = i + len(close)
		}
	}
	return end
}

// ContainsID is the cheap membership test the reconciler runs per block: does
// the content still carry the literal id attribute? This is deliberately not a
// full tag parse.
func ContainsID(content, blockID string) bool {
	return strings.Contains(content, `id="`+blockID+`"`)
}
