package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"ctxweave/internal/block"
	"ctxweave/internal/logging"
	"ctxweave/internal/provider"
	"ctxweave/internal/session"
	"ctxweave/internal/trigger"
)

var (
	chipStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#101F38")).
			Background(lipgloss.Color("#8BC34A")).
			Padding(0, 1)
	chipKindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2a3850")).
			Background(lipgloss.Color("#e1e4e8")).
			Padding(0, 1)
	noticeInfoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#2196F3"))
	noticeWarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107"))
	noticeErrStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true)
	dimStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

// kindBadge is the short letter shown on an indicator chip.
func kindBadge(k block.Kind) string {
	switch k {
	case block.KindFileContent:
		return "F"
	case block.KindFolderContent:
		return "D"
	case block.KindCodebase:
		return "CB"
	case block.KindFileTree:
		return "T"
	case block.KindSnippet:
		return "S"
	case block.KindDiagnostics:
		return "!"
	}
	return "?"
}

// indicatorRow renders one chip per live block, in insertion order.
func indicatorRow(blocks []block.Metadata) string {
	if len(blocks) == 0 {
		return dimStyle.Render("(no context attached)")
	}
	chips := make([]string, 0, len(blocks))
	for _, m := range blocks {
		chips = append(chips, lipgloss.JoinHorizontal(lipgloss.Top,
			chipKindStyle.Render(kindBadge(m.Kind)),
			chipStyle.Render(m.Label)))
	}
	return strings.Join(chips, " ")
}

func noticeLine(level session.NoticeLevel, message string) string {
	switch level {
	case session.NoticeWarn:
		return noticeWarnStyle.Render("! " + message)
	case session.NoticeError:
		return noticeErrStyle.Render("x " + message)
	}
	return noticeInfoStyle.Render("i " + message)
}

// logPresenter is the presenter for headless runs against a live browser: the
// floating UI lives in the page, so activations and notices only go to the
// log. Indicators are still rendered so operators can see registry state.
type logPresenter struct{}

func (logPresenter) OnActivation(m trigger.Match, items []provider.SearchItem) {
	logging.Get(logging.CategorySession).Infof("activation %q with %d items", m.FullMatch, len(items))
}

func (logPresenter) RenderIndicators(blocks []block.Metadata) {
	labels := make([]string, 0, len(blocks))
	for _, b := range blocks {
		labels = append(labels, fmt.Sprintf("%s:%s", kindBadge(b.Kind), b.Label))
	}
	logging.Get(logging.CategorySession).Infof("indicators: [%s]", strings.Join(labels, " "))
}

func (logPresenter) Notify(level session.NoticeLevel, message string) {
	switch level {
	case session.NoticeError:
		logging.Get(logging.CategorySession).Errorf("%s", message)
	case session.NoticeWarn:
		logging.Get(logging.CategorySession).Warnf("%s", message)
	default:
		logging.Get(logging.CategorySession).Infof("%s", message)
	}
}

func (logPresenter) Dismiss() {}
