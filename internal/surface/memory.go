package surface

import (
	"errors"
	"strings"
	"sync"

	"ctxweave/internal/format"
)

// MemoryBuffer is an in-memory TextBuffer. It backs package tests and the
// browserless demo mode.
type MemoryBuffer struct {
	mu       sync.Mutex
	value    string
	caret    int
	Notifies int
	Scrolls  int
}

// NewMemoryBuffer creates a buffer with initial text and the caret at its end.
func NewMemoryBuffer(text string) *MemoryBuffer {
	return &MemoryBuffer{value: text, caret: len(text)}
}

func (b *MemoryBuffer) Value() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.value, nil
}

func (b *MemoryBuffer) SetValue(v string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value = v
	if b.caret > len(v) {
		b.caret = len(v)
	}
	return nil
}

func (b *MemoryBuffer) CaretOffset() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.caret, nil
}

// Type simulates the user typing text at the caret.
func (b *MemoryBuffer) Type(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.value = b.value[:b.caret] + text + b.value[b.caret:]
	b.caret += len(text)
}

// SetCaret moves the caret to an absolute offset.
func (b *MemoryBuffer) SetCaret(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n < 0 {
		n = 0
	}
	if n > len(b.value) {
		n = len(b.value)
	}
	b.caret = n
}

func (b *MemoryBuffer) SetCaretToEnd() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.caret = len(b.value)
	return nil
}

func (b *MemoryBuffer) NotifyChanged() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Notifies++
	return nil
}

func (b *MemoryBuffer) ScrollToEnd() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Scrolls++
	return nil
}

// MemoryDOM is an in-memory DOMRegion: an ordered list of block fragments
// followed by free-form user text. Structural operations work on the list,
// never on serialized strings, which mirrors how the rod implementation
// queries real elements.
type MemoryDOM struct {
	mu        sync.Mutex
	fragments []string // block outer HTML, insertion order
	userHTML  string
	Broken    bool // simulate a region whose structure is not intact
	Notifies  int
	Scrolls   int
}

// ErrStructureBroken is returned by structural operations when the region's
// structure is not intact.
var ErrStructureBroken = errors.New("surface: region structure not intact")

// NewMemoryDOM creates a region holding only user text.
func NewMemoryDOM(userHTML string) *MemoryDOM {
	return &MemoryDOM{userHTML: userHTML}
}

func (d *MemoryDOM) HTML() (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.htmlLocked(), nil
}

func (d *MemoryDOM) htmlLocked() string {
	var sb strings.Builder
	for _, f := range d.fragments {
		sb.WriteString(f)
		sb.WriteString("<br><br>")
	}
	sb.WriteString(d.userHTML)
	return sb.String()
}

// SetHTML replaces the whole region, the way a text-pattern rewrite does. The
// rewritten serialization becomes the user portion so that fragments inserted
// afterwards still render ahead of it.
func (d *MemoryDOM) SetHTML(h string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fragments = nil
	d.userHTML = h
	return nil
}

func (d *MemoryDOM) InsertBlockHTML(fragment string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fragments = append(d.fragments, fragment)
	return nil
}

func (d *MemoryDOM) RemoveTriggerText(trigger string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.userHTML = strings.Replace(d.userHTML, trigger, "", 1)
	return nil
}

func (d *MemoryDOM) RemoveElementByID(tag, id string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Broken {
		return false, ErrStructureBroken
	}
	needle := `id="` + id + `"`
	for i, f := range d.fragments {
		if strings.HasPrefix(f, "<"+tag) && strings.Contains(f, needle) {
			d.fragments = append(d.fragments[:i], d.fragments[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (d *MemoryDOM) ElementText(tag, id string) (string, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Broken {
		return "", false, ErrStructureBroken
	}
	needle := `id="` + id + `"`
	for _, f := range d.fragments {
		if !strings.HasPrefix(f, "<"+tag) || !strings.Contains(f, needle) {
			continue
		}
		open := strings.Index(f, ">")
		close := strings.LastIndex(f, "</")
		if open < 0 || close <= open {
			return "", false, nil
		}
		return format.BodyFromHTML(f[open+1 : close]), true, nil
	}
	return "", false, nil
}

func (d *MemoryDOM) NotifyChanged() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Notifies++
	return nil
}

func (d *MemoryDOM) ScrollToEnd() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Scrolls++
	return nil
}

// UserHTML returns the free-form user portion of the region.
func (d *MemoryDOM) UserHTML() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.userHTML
}

// Blocks returns the block fragments in order.
func (d *MemoryDOM) Blocks() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.fragments))
	copy(out, d.fragments)
	return out
}
