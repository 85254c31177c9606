package host

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-rod/rod"

	"ctxweave/internal/config"
	"ctxweave/internal/logging"
	"ctxweave/internal/session"
	"ctxweave/internal/surface"
	"ctxweave/internal/trigger"
)

// editEvent is one queued edit from the injected hook. Caret is in UTF-16
// code units, the unit DOM selections count in.
type editEvent struct {
	Text  string `json:"text"`
	Caret int    `json:"caret"`
}

// attachment is the registration record for one watched surface: the page,
// the element hook, and the drain goroutine. Detach is explicit so repeated
// activations never leak handlers.
type attachment struct {
	pageID   string
	hostname string
	rule     config.HostRule
	el       *rod.Element
	surf     surface.Surface
	sess     *session.Session
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// hookJS queues edits on the element itself; the drain loop polls and empties
// the queue. The caret is the length of the text before the selection focus,
// which is what trigger detection needs.
const hookJS = `() => {
	if (this.__ctxweaveHooked) return
	this.__ctxweaveHooked = true
	this.__ctxweaveEdits = []
	this.addEventListener('input', () => {
		let text, caret
		if (this.value !== undefined) {
			text = this.value
			caret = this.selectionStart === null ? text.length : this.selectionStart
		} else {
			text = this.innerText
			caret = text.length
			const sel = window.getSelection()
			if (sel && sel.rangeCount > 0 && this.contains(sel.anchorNode)) {
				const live = sel.getRangeAt(0)
				const r = live.cloneRange()
				r.selectNodeContents(this)
				r.setEnd(live.endContainer, live.endOffset)
				caret = r.toString().length
			}
		}
		this.__ctxweaveEdits.push({ text, caret })
	})
}`

const drainJS = `() => {
	const out = this.__ctxweaveEdits || []
	this.__ctxweaveEdits = []
	return JSON.stringify(out)
}`

// editPollInterval is how often each attachment drains its edit queue.
const editPollInterval = 150 * time.Millisecond

func (w *Watcher) attach(ctx context.Context, page *rod.Page, pageID, hostname string, rule config.HostRule) (*attachment, error) {
	has, el, err := page.Has(rule.Locator)
	if err != nil {
		return nil, fmt.Errorf("locate surface %q: %w", rule.Locator, err)
	}
	if !has {
		return nil, fmt.Errorf("no element matches %q on %s", rule.Locator, hostname)
	}

	var surf surface.Surface
	desc := hostname + " " + rule.Locator
	switch rule.Surface {
	case config.SurfaceStructured:
		surf = surface.NewStructuredFromElement(desc, el)
	default:
		surf = surface.NewLinearFromElement(desc, el)
	}

	if _, err := el.Eval(hookJS); err != nil {
		return nil, fmt.Errorf("install edit hook: %w", err)
	}

	a := &attachment{
		pageID:   pageID,
		hostname: hostname,
		rule:     rule,
		el:       el,
		surf:     surf,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go a.drainLoop(ctx, w)
	logging.Get(logging.CategoryHost).Infof("attached to %s (%s surface)", desc, rule.Surface)
	return a, nil
}

// detach stops the drain loop. The page-side hook dies with the page.
func (a *attachment) detach() {
	close(a.stopCh)
	<-a.doneCh
	logging.Get(logging.CategoryHost).Infof("detached from %s", a.hostname)
}

func (a *attachment) drainLoop(ctx context.Context, w *Watcher) {
	defer close(a.doneCh)
	ticker := time.NewTicker(editPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			obj, err := a.el.Eval(drainJS)
			if err != nil {
				// The element went away; the scan loop will detach us.
				continue
			}
			var events []editEvent
			if err := json.Unmarshal([]byte(obj.Value.Str()), &events); err != nil {
				logging.Get(logging.CategoryHost).Warnf("bad edit payload from %s: %v", a.hostname, err)
				continue
			}
			for _, ev := range events {
				w.routeEdit(ctx, a, ev)
			}
		}
	}
}

// routeEdit forwards an edit to the active session, starting one only when a
// real activation gesture is present. Ambiguous input never opens a session.
func (w *Watcher) routeEdit(ctx context.Context, a *attachment, ev editEvent) {
	caret := trigger.ByteOffsetFromUTF16(ev.Text, ev.Caret)
	active, ok := w.sessions.Active()
	if !ok || a.sess == nil || active != a.sess || !a.sess.Bound() {
		m := trigger.Detect(ev.Text, caret)
		if m.Class != trigger.Search && m.Class != trigger.General {
			return
		}
		a.sess = w.sessions.Activate(session.Config{
			Surface:        a.surf,
			Provider:       w.prov,
			Presenter:      w.presenter,
			SearchDebounce: w.debounce,
		})
		logging.Get(logging.CategorySession).Infof("session activated on %s", a.surf.Describe())
	}
	a.sess.HandleEdit(ctx, ev.Text, caret)
}
