// Package session owns the floating-UI session: the binding between one
// editable surface, the block registry tracking what was injected into it,
// and the presentation layer showing indicators and pickers. At most one
// session is active at a time; activating a new one tears down the previous
// session first.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"ctxweave/internal/block"
	"ctxweave/internal/format"
	"ctxweave/internal/logging"
	"ctxweave/internal/provider"
	"ctxweave/internal/reconcile"
	"ctxweave/internal/surface"
	"ctxweave/internal/trigger"
)

// DefaultSearchDebounce is the delay applied to search-mode queries before a
// provider search is issued.
const DefaultSearchDebounce = 300 * time.Millisecond

var (
	// ErrDuplicateSource reports that the source already has a live block.
	// It is raised before any fetch happens.
	ErrDuplicateSource = errors.New("session: source already added")
	// ErrNoTargetSurface reports that the activation lost its surface before
	// insertion could run.
	ErrNoTargetSurface = errors.New("session: no target surface bound")
)

// NoticeLevel grades user-facing notifications. Nothing here is fatal; every
// failure degrades to a dismissible notice.
type NoticeLevel int

const (
	NoticeInfo NoticeLevel = iota
	NoticeWarn
	NoticeError
)

// Presenter is the produced interface to the presentation layer. Block
// remove/view requests flow the other way, as calls into the Session.
type Presenter interface {
	// OnActivation fires when a trigger resolves to Search or General, with
	// the (possibly empty) selectable items for the floating list.
	OnActivation(match trigger.Match, items []provider.SearchItem)
	// RenderIndicators redraws the block indicator row. Called at most once
	// per state change.
	RenderIndicators(blocks []block.Metadata)
	// Notify shows a dismissible notification.
	Notify(level NoticeLevel, message string)
	// Dismiss closes any open floating UI for this session.
	Dismiss()
}

// Request names one insertion the user picked from the floating UI.
type Request struct {
	Kind     block.Kind
	SourceID string
	// Ref is the path (file/folder) or selection ref the provider resolves.
	Ref string
	// Refs is set instead of Ref for multi-file fetches.
	Refs []string
	// Trigger is the activation text to strip from the surface on splice.
	Trigger string
}

// Config assembles a session.
type Config struct {
	Surface        surface.Surface
	Provider       provider.Provider
	Presenter      Presenter
	Scope          provider.Scope
	SearchDebounce time.Duration
}

// Session binds one target surface for the lifetime of a floating-UI scope.
type Session struct {
	mu        sync.Mutex
	target    surface.Surface
	registry  *block.Registry
	rec       *reconcile.Reconciler
	prov      provider.Provider
	presenter Presenter
	scope     provider.Scope
	debounce  *Debouncer
	fetches   singleflight.Group
	closed    bool
}

// New binds a surface and starts a fresh registry scope.
func New(cfg Config) *Session {
	if cfg.SearchDebounce <= 0 {
		cfg.SearchDebounce = DefaultSearchDebounce
	}
	reg := block.NewRegistry()
	s := &Session{
		target:    cfg.Surface,
		registry:  reg,
		prov:      cfg.Provider,
		presenter: cfg.Presenter,
		scope:     cfg.Scope,
		debounce:  NewDebouncer(cfg.SearchDebounce),
	}
	s.rec = reconcile.New(reg, func(remaining []block.Metadata) {
		s.presenter.RenderIndicators(remaining)
	})
	return s
}

// Registry exposes the session's block registry.
func (s *Session) Registry() *block.Registry { return s.registry }

// Bound reports whether the session still has a target surface. A dismissed
// session keeps its registry but can no longer act on edits; callers use this
// to decide when a fresh activation needs a fresh session.
func (s *Session) Bound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target != nil && !s.closed
}

// HandleEdit is called on every edit event on the bound surface with the
// surface's current text and caret offset. It reconciles the registry against
// the live content, then classifies the activation gesture.
func (s *Session) HandleEdit(ctx context.Context, text string, caret int) {
	s.mu.Lock()
	target := s.target
	closed := s.closed
	s.mu.Unlock()
	if closed || target == nil {
		return
	}

	if _, err := s.rec.Sweep(target); err != nil {
		logging.Get(logging.CategoryReconcile).Warnf("sweep failed on %s: %v", target.Describe(), err)
	}

	m := trigger.Detect(text, caret)
	switch m.Class {
	case trigger.None, trigger.Ambiguous:
		// Ambiguous must never open a session; both dismiss whatever is
		// open for this surface.
		s.debounce.Cancel()
		s.presenter.Dismiss()
	case trigger.General:
		s.debounce.Cancel()
		items, err := s.prov.OpenFiles(ctx)
		if err != nil {
			logging.Get(logging.CategoryProvider).Warnf("open files listing failed: %v", err)
			items = nil
		}
		s.presenter.OnActivation(m, items)
	case trigger.Search:
		s.debounce.Debounce(func() {
			items, err := s.prov.Search(ctx, m.Query, s.scope)
			if err != nil {
				logging.Get(logging.CategoryProvider).Warnf("search %q failed: %v", m.Query, err)
				s.presenter.Notify(NoticeError, "Search failed: "+err.Error())
				return
			}
			s.presenter.OnActivation(m, items)
		})
	}
}

// Insert fetches content for the request and splices it into the bound
// surface. The duplicate-source check runs before the fetch; the target
// surface is captured by value at fetch start so a focus change mid-fetch
// cannot redirect where content lands.
func (s *Session) Insert(ctx context.Context, req Request) error {
	if s.registry.IsDuplicateSource(req.SourceID) {
		s.presenter.Notify(NoticeWarn, fmt.Sprintf("%q is already added", req.SourceID))
		return ErrDuplicateSource
	}

	s.mu.Lock()
	target := s.target
	s.mu.Unlock()
	if target == nil {
		logging.Get(logging.CategorySession).Warnf("insertion skipped: activation lost its surface (source %s)", req.SourceID)
		return ErrNoTargetSurface
	}

	content, err := s.fetch(ctx, req)
	if err != nil {
		s.presenter.Notify(NoticeError, "Failed to fetch content: "+err.Error())
		return fmt.Errorf("fetch %s: %w", req.SourceID, err)
	}

	meta := content.Meta
	if meta.BlockID == "" {
		meta.BlockID = block.NewID()
	}
	if meta.SourceID == "" {
		meta.SourceID = req.SourceID
	}

	// Mutations are serialized per surface behind the session lock.
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := target.InsertBlock(meta.Kind, meta.BlockID, content.Body(), req.Trigger); err != nil {
		s.presenter.Notify(NoticeError, "Failed to insert content: "+err.Error())
		return fmt.Errorf("insert block %s: %w", meta.BlockID, err)
	}
	s.registry.Add(meta)
	s.presenter.RenderIndicators(s.registry.List())
	logging.Get(logging.CategorySession).Infof("inserted %s block %s from %s into %s",
		meta.Kind, meta.BlockID, meta.SourceID, target.Describe())
	return nil
}

// fetch issues the provider call for the request. Concurrent fetches for the
// same source collapse into one flight.
func (s *Session) fetch(ctx context.Context, req Request) (*provider.Content, error) {
	v, err, _ := s.fetches.Do(req.SourceID, func() (interface{}, error) {
		switch req.Kind {
		case block.KindFileContent:
			if len(req.Refs) > 0 {
				return s.prov.ContentsForFiles(ctx, req.Refs)
			}
			return s.prov.FileContent(ctx, req.Ref)
		case block.KindFolderContent:
			return s.prov.FolderContent(ctx, req.Ref, s.scope)
		case block.KindCodebase:
			return s.prov.EntireCodebase(ctx, s.scope)
		case block.KindFileTree:
			return s.prov.FileTree(ctx, s.scope)
		case block.KindDiagnostics:
			return s.prov.WorkspaceProblems(ctx, s.scope)
		case block.KindSnippet:
			// Snippets arrive pre-rendered through the file-content path.
			return s.prov.FileContent(ctx, req.Ref)
		default:
			return nil, fmt.Errorf("unknown content kind %d", int(req.Kind))
		}
	})
	if err != nil {
		return nil, err
	}
	return v.(*provider.Content), nil
}

// RemoveBlock handles a block's close control. A pattern miss during removal
// is logged as a warning and the registry entry is evicted anyway, so an
// indicator can never stick around for a region that cannot be found.
func (s *Session) RemoveBlock(blockID string) {
	meta, ok := s.registry.Get(blockID)
	if !ok {
		return
	}
	// The splice is a read-modify-write of the surface; it holds the session
	// lock for its whole span so a concurrent insert cannot interleave.
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target != nil {
		removed, err := s.target.RemoveBlock(meta.Kind, blockID)
		if err != nil {
			logging.Get(logging.CategorySurface).Warnf("removal of %s errored: %v", blockID, err)
		} else if !removed {
			logging.Get(logging.CategorySurface).Warnf("removal miss: no region found for %s (%s)", blockID, meta.Kind)
		}
	}
	s.registry.Remove(blockID)
	s.presenter.RenderIndicators(s.registry.List())
}

// ViewBlock reads a block's content back without removing it, restoring the
// neutralization transform for display.
func (s *Session) ViewBlock(blockID string) (string, error) {
	meta, ok := s.registry.Get(blockID)
	if !ok {
		return "", fmt.Errorf("no active block %q", blockID)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.target == nil {
		return "", ErrNoTargetSurface
	}
	body, found, err := s.target.ExtractBlock(meta.Kind, blockID)
	if err != nil {
		return "", fmt.Errorf("extract block %s: %w", blockID, err)
	}
	if !found {
		return "", fmt.Errorf("region for block %q not found", blockID)
	}
	return format.Restore(body), nil
}

// Dismiss closes the floating UI and clears the surface binding. Blocks
// already inserted stay in the surface; the registry scope itself ends when
// the session is closed by the next activation.
func (s *Session) Dismiss() {
	s.debounce.Cancel()
	s.mu.Lock()
	s.target = nil
	s.mu.Unlock()
	s.presenter.Dismiss()
}

// Close ends the session scope entirely.
func (s *Session) Close() {
	s.debounce.Cancel()
	s.mu.Lock()
	s.closed = true
	s.target = nil
	s.mu.Unlock()
	s.registry.Clear()
}
