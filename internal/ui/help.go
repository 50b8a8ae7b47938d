package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

// helpSection groups bindings under a translated heading.
type helpSection struct {
	title    string
	bindings []helpEntry
}

type helpEntry struct {
	binding key.Binding
	desc    string
}

func (m Model) helpSections() []helpSection {
	k := m.keys
	t := m.tr.T
	return []helpSection{
		{t("help.explore"), []helpEntry{
			{k.Next, t("help.next")},
			{k.Mode, t("help.mode")},
			{k.Interest, t("help.interest")},
			{k.Language, t("help.language")},
		}},
		{t("help.description"), []helpEntry{
			{k.Retry, t("help.retry")},
			{k.Cancel, t("help.cancel")},
			{k.Detailed, t("help.detailed")},
			{k.Down, t("help.scroll")},
		}},
		{t("help.general"), []helpEntry{
			{k.Logs, t("help.logs")},
			{k.CycleTheme, t("help.theme")},
			{k.Escape, t("help.close")},
			{k.Help, t("help.help")},
			{k.Quit, t("help.quit")},
		}},
	}
}

// renderHelp renders the key binding overlay centered on screen.
func (m Model) renderHelp() string {
	styles := m.theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Logo.Render(m.tr.T("help.title")))
	b.WriteString("\n")
	for _, section := range m.helpSections() {
		b.WriteString("\n")
		b.WriteString(styles.AccentText.Bold(true).Render(section.title))
		b.WriteString("\n")
		for _, e := range section.bindings {
			keys := e.binding.Help().Key
			b.WriteString("  ")
			b.WriteString(styles.Text.Render(padRight(keys, 10)))
			b.WriteString(styles.MutedText.Render(e.desc))
			b.WriteString("\n")
		}
	}

	box := styles.PanelFocus.Padding(1, 2).Render(strings.TrimRight(b.String(), "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

func padRight(s string, width int) string {
	if n := width - lipgloss.Width(s); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s + " "
}
