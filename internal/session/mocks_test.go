package session

import (
	"sync"
	"sync/atomic"

	"ctxweave/internal/block"
	"ctxweave/internal/provider"
	"ctxweave/internal/surface"
	"ctxweave/internal/trigger"
)

// stallingBuffer delays one Value read until released, so a concurrent
// mutation can try to interleave with an in-flight read-modify-write.
type stallingBuffer struct {
	*surface.MemoryBuffer
	armed   atomic.Bool
	release chan struct{}
}

func newStallingBuffer() *stallingBuffer {
	return &stallingBuffer{
		MemoryBuffer: surface.NewMemoryBuffer(""),
		release:      make(chan struct{}),
	}
}

func (b *stallingBuffer) Value() (string, error) {
	v, err := b.MemoryBuffer.Value()
	if b.armed.CompareAndSwap(true, false) {
		<-b.release
	}
	return v, err
}

// fakePresenter records every call so tests can assert on presentation
// traffic without a UI.
type fakePresenter struct {
	mu          sync.Mutex
	activations []trigger.Match
	items       [][]provider.SearchItem
	renders     [][]block.Metadata
	notices     []string
	levels      []NoticeLevel
	dismissals  int
}

func (p *fakePresenter) OnActivation(m trigger.Match, items []provider.SearchItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activations = append(p.activations, m)
	p.items = append(p.items, items)
}

func (p *fakePresenter) RenderIndicators(blocks []block.Metadata) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renders = append(p.renders, blocks)
}

func (p *fakePresenter) Notify(level NoticeLevel, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.levels = append(p.levels, level)
	p.notices = append(p.notices, message)
}

func (p *fakePresenter) Dismiss() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dismissals++
}

func (p *fakePresenter) renderCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.renders)
}

func (p *fakePresenter) lastRender() []block.Metadata {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.renders) == 0 {
		return nil
	}
	return p.renders[len(p.renders)-1]
}

func (p *fakePresenter) activationCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.activations)
}

func (p *fakePresenter) lastActivation() (trigger.Match, []provider.SearchItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.activations)
	if n == 0 {
		return trigger.Match{}, nil
	}
	return p.activations[n-1], p.items[n-1]
}

func (p *fakePresenter) dismissCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dismissals
}

func (p *fakePresenter) lastNotice() (NoticeLevel, string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := len(p.notices)
	if n == 0 {
		return NoticeInfo, ""
	}
	return p.levels[n-1], p.notices[n-1]
}
