package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"ctxweave/internal/block"
	"ctxweave/internal/provider"
	"ctxweave/internal/session"
	"ctxweave/internal/surface"
	"ctxweave/internal/trigger"
)

// The demo runs the whole pipeline against an in-memory surface and
// workspace, so the trigger/insert/remove loop can be exercised without a
// browser. Type @ to open the picker, enter to insert, ctrl+r to remove the
// last block, ctrl+v to preview it.

type pickItem struct {
	item provider.SearchItem
}

func (p pickItem) Title() string       { return p.item.Label }
func (p pickItem) Description() string { return p.item.Path }
func (p pickItem) FilterValue() string { return p.item.Label }

type activationMsg struct {
	match trigger.Match
	items []provider.SearchItem
}

type indicatorsMsg []block.Metadata

type noticeMsg struct {
	level   session.NoticeLevel
	message string
}

type dismissMsg struct{}

type insertedMsg struct{ err error }

// teaPresenter bridges session callbacks into the bubbletea event loop.
type teaPresenter struct {
	prog *tea.Program
}

func (p *teaPresenter) OnActivation(m trigger.Match, items []provider.SearchItem) {
	p.prog.Send(activationMsg{match: m, items: items})
}

func (p *teaPresenter) RenderIndicators(blocks []block.Metadata) {
	p.prog.Send(indicatorsMsg(blocks))
}

func (p *teaPresenter) Notify(level session.NoticeLevel, message string) {
	p.prog.Send(noticeMsg{level: level, message: message})
}

func (p *teaPresenter) Dismiss() {
	p.prog.Send(dismissMsg{})
}

type demoModel struct {
	input      textinput.Model
	picker     list.Model
	showPicker bool
	match      trigger.Match

	buf  *surface.MemoryBuffer
	surf surface.Surface
	prov *provider.Memory
	pres *teaPresenter
	mgr  *session.Manager
	sess *session.Session

	indicators []block.Metadata
	notice     string
	preview    string
	renderer   *glamour.TermRenderer

	width int
}

var (
	surfaceBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2a3850")).
			Padding(0, 1)
	demoHelpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

func newDemoModel() *demoModel {
	ti := textinput.New()
	ti.Placeholder = "Type a message, @ attaches context"
	ti.Focus()
	ti.CharLimit = 0
	ti.Width = 72

	delegate := list.NewDefaultDelegate()
	lst := list.New(nil, delegate, 76, 10)
	lst.SetShowTitle(false)
	lst.SetShowStatusBar(false)
	lst.SetFilteringEnabled(false)
	lst.SetShowHelp(false)

	return &demoModel{
		input:  ti,
		picker: lst,
		buf:    surface.NewMemoryBuffer(""),
	}
}

func demoFiles() map[string]string {
	return map[string]string{
		"/src/main.go":     "package main\n\nfunc main() {\n\tprintln(\"hi\")\n}\n",
		"/src/parser.go":   "package main\n\nfunc parse(s string) error {\n\treturn nil\n}\n",
		"/docs/README.md":  "# Demo workspace\n\nSample content for the picker.\n",
		"/web/index.ts":    "console.log(\"</FileContents>\")\n",
		"/web/handlers.ts": "export function handle() {}\n",
	}
}

func (m *demoModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *demoModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.picker.SetWidth(msg.Width - 4)
		return m, nil

	case activationMsg:
		items := make([]list.Item, 0, len(msg.items))
		for _, it := range msg.items {
			items = append(items, pickItem{item: it})
		}
		m.match = msg.match
		m.showPicker = true
		return m, m.picker.SetItems(items)

	case dismissMsg:
		m.showPicker = false
		return m, nil

	case indicatorsMsg:
		m.indicators = []block.Metadata(msg)
		return m, nil

	case noticeMsg:
		m.notice = noticeLine(msg.level, msg.message)
		return m, nil

	case insertedMsg:
		if msg.err == nil {
			m.input.SetValue("")
			m.showPicker = false
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "esc":
			if m.showPicker {
				if m.sess != nil {
					m.sess.Dismiss()
				}
				m.showPicker = false
				return m, nil
			}
			if m.preview != "" {
				m.preview = ""
				return m, nil
			}
			return m, tea.Quit
		case "enter":
			if m.showPicker {
				return m, m.insertSelected()
			}
		case "ctrl+r":
			return m, m.removeLast()
		case "ctrl+v":
			m.previewLast()
			return m, nil
		}
		if m.showPicker {
			switch msg.String() {
			case "up", "down", "pgup", "pgdown":
				var cmd tea.Cmd
				m.picker, cmd = m.picker.Update(msg)
				return m, cmd
			}
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.routeEdit(m.input.Value(), m.input.Position())
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// routeEdit mirrors what the page watcher does: a dismissed or absent session
// is replaced only when a real activation gesture shows up. The textinput
// caret is a rune index and detection works on bytes.
func (m *demoModel) routeEdit(text string, caretRunes int) {
	caret := trigger.ByteOffsetFromRunes(text, caretRunes)
	if m.sess == nil || !m.sess.Bound() {
		t := trigger.Detect(text, caret)
		if t.Class != trigger.Search && t.Class != trigger.General {
			return
		}
		m.sess = m.mgr.Activate(session.Config{
			Surface:        m.surf,
			Provider:       m.prov,
			Presenter:      m.pres,
			SearchDebounce: 150 * time.Millisecond,
		})
	}
	m.sess.HandleEdit(context.Background(), text, caret)
}

func (m *demoModel) insertSelected() tea.Cmd {
	sel, ok := m.picker.SelectedItem().(pickItem)
	if !ok || m.sess == nil {
		return nil
	}
	req := session.Request{
		Kind:     sel.item.Kind,
		SourceID: sel.item.SourceID,
		Ref:      sel.item.Path,
		Trigger:  m.match.FullMatch,
	}
	sess := m.sess
	return func() tea.Msg {
		return insertedMsg{err: sess.Insert(context.Background(), req)}
	}
}

func (m *demoModel) removeLast() tea.Cmd {
	if len(m.indicators) == 0 || m.sess == nil {
		return nil
	}
	last := m.indicators[len(m.indicators)-1]
	sess := m.sess
	return func() tea.Msg {
		sess.RemoveBlock(last.BlockID)
		return nil
	}
}

func (m *demoModel) previewLast() {
	if len(m.indicators) == 0 || m.sess == nil {
		return
	}
	last := m.indicators[len(m.indicators)-1]
	body, err := m.sess.ViewBlock(last.BlockID)
	if err != nil {
		m.notice = noticeLine(session.NoticeWarn, "Preview failed: "+err.Error())
		return
	}
	if m.renderer == nil {
		m.renderer, _ = glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(76),
		)
	}
	if m.renderer != nil {
		if out, rerr := m.renderer.Render(body); rerr == nil {
			m.preview = out
			return
		}
	}
	m.preview = body
}

func (m *demoModel) View() string {
	var b strings.Builder

	content, _ := m.buf.Value()
	if content == "" {
		content = dimStyle.Render("(surface empty)")
	} else if len(content) > 1200 {
		content = content[:1200] + dimStyle.Render("\n... truncated ...")
	}
	b.WriteString(surfaceBoxStyle.Render(content))
	b.WriteString("\n")
	b.WriteString(indicatorRow(m.indicators))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.showPicker {
		b.WriteString(m.picker.View())
		b.WriteString("\n")
	}
	if m.preview != "" {
		b.WriteString(m.preview)
		b.WriteString("\n")
	}
	if m.notice != "" {
		b.WriteString(m.notice)
		b.WriteString("\n")
	}
	b.WriteString(demoHelpStyle.Render("@ picker - enter insert - ctrl+r remove last - ctrl+v preview - esc close - ctrl+c quit"))
	return b.String()
}

func runDemo() error {
	m := newDemoModel()
	presenter := &teaPresenter{}
	prog := tea.NewProgram(m, tea.WithAltScreen())
	presenter.prog = prog

	m.prov = provider.NewMemory(demoFiles())
	m.prov.SetProblems("parser.go:3: declared and not used: s")
	m.pres = presenter
	m.surf = surface.NewLinear("demo", m.buf)
	m.mgr = session.NewManager()
	defer m.mgr.Shutdown()

	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("demo ui: %w", err)
	}
	return nil
}
