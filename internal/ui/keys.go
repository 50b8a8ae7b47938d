package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	Logs       key.Binding
	Escape     key.Binding

	// Exploration
	Next     key.Binding
	Mode     key.Binding
	Interest key.Binding
	Language key.Binding

	// Description
	Retry    key.Binding
	Cancel   key.Binding
	Detailed key.Binding

	// Scrolling
	Up       key.Binding
	Down     key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Input
	Confirm key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "e"),
			key.WithHelp("e", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("h", "?"),
			key.WithHelp("h/?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		Logs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Toggle logs"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close overlay"),
		),

		Next: key.NewBinding(
			key.WithKeys(" ", "g"),
			key.WithHelp("space/g", "Next location"),
		),
		Mode: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "Toggle exploration mode"),
		),
		Interest: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Set interest"),
		),
		Language: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "Cycle language"),
		),

		Retry: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Retry description"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Cancel request"),
		),
		Detailed: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Toggle detailed description"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Scroll up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Scroll down"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdown", "Page down"),
		),

		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Confirm"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Retry, k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Mode, k.Interest, k.Language},
		{k.Retry, k.Cancel, k.Detailed, k.Up, k.Down},
		{k.Logs, k.CycleTheme, k.Help, k.Quit},
	}
}
