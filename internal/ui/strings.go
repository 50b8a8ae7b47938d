package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// truncate shortens s to max display cells with an ellipsis.
func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if lipgloss.Width(s) <= max {
		return s
	}
	runes := []rune(s)
	if max == 1 {
		return "…"
	}
	out := make([]rune, 0, max)
	width := 0
	for _, r := range runes {
		w := lipgloss.Width(string(r))
		if width+w > max-1 {
			break
		}
		out = append(out, r)
		width += w
	}
	return string(out) + "…"
}

// truncateMiddle keeps the start and the end of s, which suits file paths.
func truncateMiddle(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 5 {
		return string(runes[:max])
	}
	// Keep more of the end (file name) than the start
	endLen := (max - 1) * 2 / 3
	startLen := max - 1 - endLen
	return string(runes[:startLen]) + "…" + string(runes[len(runes)-endLen:])
}

// wrapText soft-wraps text to width, keeping paragraph breaks.
func wrapText(text string, width int) string {
	text = strings.TrimSpace(text)
	if width <= 0 || text == "" {
		return text
	}
	return lipgloss.NewStyle().Width(width).Render(text)
}
