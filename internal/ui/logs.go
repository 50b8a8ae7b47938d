package ui

import (
	"log/slog"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/five82/streetlens/internal/logtail"
)

// updateLogViewport renders the cached entries into the log viewport and
// keeps following the tail.
func (m *Model) updateLogViewport() {
	styles := m.theme.Styles()
	if len(m.logEntries) == 0 {
		m.logViewport.SetContent(styles.MutedText.Render(m.tr.T("logs.empty")))
		return
	}
	width := m.logViewport.Width
	lines := lo.Map(m.logEntries, func(e logtail.Entry, _ int) string {
		return levelStyle(e.Level, styles).Render(truncate(e.Format(), width))
	})
	m.logViewport.SetContent(strings.Join(lines, "\n"))
	m.logViewport.GotoBottom()
}

func levelStyle(level slog.Level, styles Styles) lipgloss.Style {
	switch {
	case level >= slog.LevelError:
		return styles.DangerText
	case level >= slog.LevelWarn:
		return styles.WarningText
	case level < slog.LevelInfo:
		return styles.FaintText
	default:
		return styles.Text
	}
}

// renderLogs renders the log overlay.
func (m Model) renderLogs() string {
	styles := m.theme.Styles()

	title := styles.Logo.Render(m.tr.T("logs.title"))
	if m.logPath != "" {
		title += "  " + styles.FaintText.Render(truncateMiddle(m.logPath, max(m.width-20, 10)))
	}

	box := styles.Panel.
		Width(max(m.width-2, 1)).
		Height(max(m.height-3, 1)).
		Render(m.logViewport.View())

	return lipgloss.JoinVertical(lipgloss.Left, title, box)
}
