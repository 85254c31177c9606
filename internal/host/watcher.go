package host

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"golang.org/x/sync/errgroup"

	"ctxweave/internal/config"
	"ctxweave/internal/logging"
	"ctxweave/internal/provider"
	"ctxweave/internal/session"
)

// Watcher connects to a browser over CDP, finds pages whose hostname matches
// a configured rule, and binds each matching chat surface to the session
// layer. One attachment exists per page; the page that the user last typed an
// activation gesture into owns the single active session.
type Watcher struct {
	cfg       config.Config
	prov      provider.Provider
	presenter session.Presenter
	sessions  *session.Manager
	debounce  time.Duration

	browser *rod.Browser

	mu       sync.Mutex
	attached map[string]*attachment
}

// New creates a watcher over the given configuration. Connect must be called
// before Run.
func New(cfg config.Config, prov provider.Provider, presenter session.Presenter) *Watcher {
	return &Watcher{
		cfg:       cfg,
		prov:      prov,
		presenter: presenter,
		sessions:  session.NewManager(),
		debounce:  time.Duration(cfg.SearchDebounceMs) * time.Millisecond,
		attached:  make(map[string]*attachment),
	}
}

// Sessions exposes the session manager, mainly for shutdown hooks.
func (w *Watcher) Sessions() *session.Manager {
	return w.sessions
}

// Connect attaches to a running browser via the configured debugger URL, or
// launches one when no URL is set.
func (w *Watcher) Connect(ctx context.Context) error {
	controlURL := w.cfg.Browser.DebuggerURL
	if controlURL == "" {
		u, err := launcher.New().Headless(w.cfg.Browser.Headless).Launch()
		if err != nil {
			return fmt.Errorf("no debugger_url and failed to launch: %w", err)
		}
		controlURL = u
	}
	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to browser: %w", err)
	}
	w.browser = browser
	logging.Get(logging.CategoryHost).Infof("connected to browser at %s", controlURL)
	return nil
}

// Run polls the browser's page list, attaching to new matching pages and
// detaching from ones that closed or navigated away. It blocks until the
// context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	if w.browser == nil {
		return fmt.Errorf("watcher not connected")
	}
	interval := time.Duration(w.cfg.Browser.PollIntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			w.detachAll()
			w.sessions.Shutdown()
			return ctx.Err()
		case <-ticker.C:
			if err := w.scan(ctx); err != nil {
				logging.Get(logging.CategoryHost).Warnf("page scan failed: %v", err)
			}
		}
	}
}

// scan reconciles attachments against the browser's current page list.
func (w *Watcher) scan(ctx context.Context) error {
	pages, err := w.browser.Pages()
	if err != nil {
		return fmt.Errorf("list pages: %w", err)
	}

	seen := make(map[string]string) // page id -> hostname
	type candidate struct {
		page     *rod.Page
		id       string
		hostname string
		rule     config.HostRule
	}
	var pending []candidate

	for _, page := range pages {
		info, err := page.Info()
		if err != nil {
			continue
		}
		id := string(page.TargetID)
		hostname := Hostname(info.URL)
		seen[id] = hostname
		if hostname == "" {
			continue
		}
		rule, ok := w.cfg.RuleFor(hostname)
		if !ok {
			continue
		}
		w.mu.Lock()
		prev, exists := w.attached[id]
		w.mu.Unlock()
		if exists {
			if prev.hostname == hostname {
				continue
			}
			// Same target navigated to a different matching host.
			w.detachOne(id)
		}
		pending = append(pending, candidate{page: page, id: id, hostname: hostname, rule: rule})
	}

	// Drop attachments whose page closed or navigated off a matching host.
	w.mu.Lock()
	var stale []string
	for id, a := range w.attached {
		host, alive := seen[id]
		if !alive || host != a.hostname {
			stale = append(stale, id)
		}
	}
	w.mu.Unlock()
	for _, id := range stale {
		w.detachOne(id)
	}

	if len(pending) == 0 {
		return nil
	}
	// The elements must outlive this scan, so the pages keep the run context
	// rather than a per-scan group context.
	var g errgroup.Group
	g.SetLimit(4)
	for _, c := range pending {
		g.Go(func() error {
			a, err := w.attach(ctx, c.page.Context(ctx), c.id, c.hostname, c.rule)
			if err != nil {
				logging.Get(logging.CategoryHost).Debugf("attach %s: %v", c.hostname, err)
				return nil
			}
			w.mu.Lock()
			w.attached[c.id] = a
			w.mu.Unlock()
			return nil
		})
	}
	return g.Wait()
}

func (w *Watcher) detachOne(id string) {
	w.mu.Lock()
	a, ok := w.attached[id]
	if ok {
		delete(w.attached, id)
	}
	w.mu.Unlock()
	if !ok {
		return
	}
	a.detach()
	// If the vanished page owned the active session, end its scope.
	if active, ok := w.sessions.Active(); ok && a.sess == active {
		w.sessions.Shutdown()
	}
}

func (w *Watcher) detachAll() {
	w.mu.Lock()
	all := make([]*attachment, 0, len(w.attached))
	for _, a := range w.attached {
		all = append(all, a)
	}
	w.attached = make(map[string]*attachment)
	w.mu.Unlock()
	for _, a := range all {
		a.detach()
	}
}

// Hostname extracts the host portion of a page URL, without any port.
// Non-web schemes such as chrome:// and devtools:// yield an empty string.
func Hostname(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	switch u.Scheme {
	case "http", "https":
		return u.Hostname()
	}
	return ""
}
