package surface

import (
	"fmt"
	"strings"

	"github.com/go-rod/rod"

	"ctxweave/internal/block"
)

// RodBuffer drives a real textarea/input element over CDP.
type RodBuffer struct {
	el *rod.Element
}

// NewRodBuffer wraps a rod element known to be a linear text input.
func NewRodBuffer(el *rod.Element) *RodBuffer {
	return &RodBuffer{el: el}
}

// NewLinearFromElement is the usual entry point from the host attacher.
func NewLinearFromElement(desc string, el *rod.Element) *Linear {
	return NewLinear(desc, NewRodBuffer(el))
}

func (b *RodBuffer) Value() (string, error) {
	obj, err := b.el.Eval(`() => this.value`)
	if err != nil {
		return "", fmt.Errorf("read value: %w", err)
	}
	return obj.Value.Str(), nil
}

func (b *RodBuffer) SetValue(v string) error {
	_, err := b.el.Eval(`(v) => { this.value = v }`, v)
	return err
}

func (b *RodBuffer) CaretOffset() (int, error) {
	obj, err := b.el.Eval(`() => this.selectionStart`)
	if err != nil {
		return 0, fmt.Errorf("read caret: %w", err)
	}
	return obj.Value.Int(), nil
}

func (b *RodBuffer) SetCaretToEnd() error {
	_, err := b.el.Eval(`() => { const n = this.value.length; this.setSelectionRange(n, n); this.focus() }`)
	return err
}

func (b *RodBuffer) NotifyChanged() error {
	_, err := b.el.Eval(`() => this.dispatchEvent(new Event('input', { bubbles: true }))`)
	return err
}

func (b *RodBuffer) ScrollToEnd() error {
	_, err := b.el.Eval(`() => { this.scrollTop = this.scrollHeight }`)
	return err
}

// RodDOM drives a contenteditable region over CDP. Wrapper blocks are real
// (unknown-tag) elements inside it, so structural queries work directly.
type RodDOM struct {
	el *rod.Element
}

// NewRodDOM wraps a rod element known to be a structured editable region.
func NewRodDOM(el *rod.Element) *RodDOM {
	return &RodDOM{el: el}
}

// NewStructuredFromElement is the usual entry point from the host attacher.
func NewStructuredFromElement(desc string, el *rod.Element) *Structured {
	return NewStructured(desc, NewRodDOM(el))
}

func (d *RodDOM) HTML() (string, error) {
	obj, err := d.el.Eval(`() => this.innerHTML`)
	if err != nil {
		return "", fmt.Errorf("read region html: %w", err)
	}
	return obj.Value.Str(), nil
}

func (d *RodDOM) SetHTML(h string) error {
	_, err := d.el.Eval(`(h) => { this.innerHTML = h }`, h)
	return err
}

func (d *RodDOM) InsertBlockHTML(fragment string) error {
	selector := wrapperSelector()
	_, err := d.el.Eval(`(sel, frag) => {
		const blocks = this.querySelectorAll(sel)
		if (blocks.length > 0) {
			blocks[blocks.length - 1].insertAdjacentHTML('afterend', '<br><br>' + frag)
		} else {
			this.insertAdjacentHTML('afterbegin', frag + '<br><br>')
		}
	}`, selector, fragment)
	return err
}

func (d *RodDOM) RemoveTriggerText(trigger string) error {
	_, err := d.el.Eval(`(t) => {
		const walker = document.createTreeWalker(this, NodeFilter.SHOW_TEXT)
		let node
		while ((node = walker.nextNode())) {
			const i = node.textContent.indexOf(t)
			if (i >= 0) {
				node.textContent = node.textContent.slice(0, i) + node.textContent.slice(i + t.length)
				return true
			}
		}
		return false
	}`, trigger)
	return err
}

func (d *RodDOM) RemoveElementByID(tag, id string) (bool, error) {
	obj, err := d.el.Eval(`(tag, id) => {
		const el = this.querySelector(tag + '[id=' + JSON.stringify(id) + ']')
		if (!el) return false
		el.remove()
		return true
	}`, tag, id)
	if err != nil {
		return false, fmt.Errorf("remove element by id: %w", err)
	}
	return obj.Value.Bool(), nil
}

func (d *RodDOM) ElementText(tag, id string) (string, bool, error) {
	obj, err := d.el.Eval(`(tag, id) => {
		const el = this.querySelector(tag + '[id=' + JSON.stringify(id) + ']')
		if (!el) return null
		return el.innerText
	}`, tag, id)
	if err != nil {
		return "", false, fmt.Errorf("read element text: %w", err)
	}
	if obj.Value.Nil() {
		return "", false, nil
	}
	return obj.Value.Str(), true, nil
}

func (d *RodDOM) NotifyChanged() error {
	_, err := d.el.Eval(`() => this.dispatchEvent(new Event('input', { bubbles: true }))`)
	return err
}

func (d *RodDOM) ScrollToEnd() error {
	_, err := d.el.Eval(`() => { this.scrollTop = this.scrollHeight }`)
	return err
}

func wrapperSelector() string {
	return strings.Join(block.TagNames(), ",")
}
