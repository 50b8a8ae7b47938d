package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/five82/streetlens/internal/describe"
	"github.com/five82/streetlens/internal/i18n"
	"github.com/five82/streetlens/internal/prefs"
	"github.com/five82/streetlens/internal/session"
)

// panelLayout describes how the body splits between the two panels.
type panelLayout struct {
	stacked   bool
	leftW     int
	rightW    int
	locationH int
	describeH int
}

// computeLayout sizes the panels for the current terminal. Heights and
// widths are outer sizes including borders.
func (m Model) computeLayout() panelLayout {
	bodyH := max(m.height-3, 6) // header, command bar, footer
	if m.width >= LayoutCompactWidth {
		leftW := lo.Clamp(m.width*2/5, 34, 64)
		return panelLayout{
			leftW:     leftW,
			rightW:    m.width - leftW,
			locationH: bodyH,
			describeH: bodyH,
		}
	}
	locationH := min(7, bodyH/2)
	return panelLayout{
		stacked:   true,
		leftW:     m.width,
		rightW:    m.width,
		locationH: locationH,
		describeH: bodyH - locationH,
	}
}

// resize fits the viewports to the current layout.
func (m *Model) resize() {
	l := m.computeLayout()
	m.descViewport.Width = max(l.rightW-4, 1)
	m.descViewport.Height = max(l.describeH-5, 1) // borders, title, status, gap
	m.logViewport.Width = max(m.width-4, 1)
	m.logViewport.Height = max(m.height-5, 1)
	m.interest.Width = max(m.width-24, 10)
	m.refreshDescriptionViewport()
	m.updateLogViewport()
}

func (m *Model) refreshDescriptionViewport() {
	if !m.desc.HasDescription {
		m.descViewport.SetContent("")
		return
	}
	styles := m.theme.Styles()
	m.descViewport.SetContent(styles.Text.Render(wrapText(m.desc.Description, m.descViewport.Width)))
}

// renderMain composes the header, panels and footer.
func (m Model) renderMain() string {
	l := m.computeLayout()
	location := m.renderLocationPanel(l.leftW, l.locationH, l.stacked)
	description := m.renderDescriptionPanel(l.rightW, l.describeH)

	body := lipgloss.JoinHorizontal(lipgloss.Top, location, description)
	if l.stacked {
		body = lipgloss.JoinVertical(lipgloss.Left, location, description)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderCommandBar(),
		body,
		m.renderFooter(),
	)
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	// Header uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	parts := []string{bg.Render("streetlens", styles.Logo)}

	// Connectivity
	if m.online {
		parts = append(parts, bg.Render("● "+m.tr.T("status.online"), styles.SuccessText))
	} else {
		parts = append(parts, bg.Render("● "+m.tr.T("status.offline"), styles.DangerText))
	}

	// Description phase badge
	phase := m.desc.Phase()
	if phase != describe.PhaseIdle {
		parts = append(parts, styles.StatusStyle(phase.String()).Render(strings.ToUpper(phase.String())))
	}

	// Exploration mode and language
	parts = append(parts,
		bg.Pair(m.tr.T("mode.title")+":", m.modeLabel(), styles.MutedText, styles.Text),
		bg.Render(strings.ToUpper(m.tr.Language()), styles.AccentText),
		bg.Render(m.tr.T("status.viewed", m.location.Viewed), styles.MutedText),
	)

	if m.width >= LayoutSessionWidth && m.sessionID != "" {
		parts = append(parts,
			bg.Pair(m.tr.T("status.session"), session.Short(m.sessionID), styles.FaintText, styles.MutedText))
	}

	return styles.Header.Width(m.width).Render(bg.Join(parts, "  "))
}

func (m Model) modeLabel() string {
	if m.prefs.ExplorationMode == prefs.ModeCustom {
		return m.tr.T("mode.custom", truncate(m.prefs.ExplorationInterest, 24))
	}
	return m.tr.T("mode.random")
}

// renderCommandBar renders the key hints bar.
func (m Model) renderCommandBar() string {
	// Command bar uses Surface background
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)

	type cmd struct{ key, desc string }
	commands := []cmd{
		{"space", m.tr.T("help.next")},
		{"r", m.tr.T("help.retry")},
		{"x", m.tr.T("help.cancel")},
		{"d", m.tr.T("help.detailed")},
		{"m", m.tr.T("help.mode")},
		{"/", m.tr.T("help.interest")},
		{"L", m.tr.T("help.language")},
		{"l", m.tr.T("help.logs")},
		{"?", m.tr.T("help.help")},
	}
	if m.width < LayoutCompactWidth {
		commands = commands[:4]
		commands = append(commands, cmd{"?", m.tr.T("help.help")})
	}

	colon := bg.Render(":", styles.FaintText)
	segments := lo.Map(commands, func(c cmd, _ int) string {
		return bg.Render(c.key, styles.AccentText) + colon + bg.Render(c.desc, styles.MutedText)
	})

	// Theme indicator
	segments = append(segments,
		bg.Render("T", styles.AccentText)+colon+bg.Render(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(bg.Join(segments, "  "))
}

// renderLocationPanel renders the address, coordinates and minimap.
func (m Model) renderLocationPanel(width, height int, compact bool) string {
	styles := m.theme.Styles()
	innerW := max(width-4, 1)
	innerH := max(height-2, 1)

	lines := []string{styles.AccentText.Bold(true).Render(m.tr.T("location.title"))}

	snap := m.location
	switch {
	case !snap.HasLocation && snap.Loading:
		lines = append(lines, m.spinner.View()+" "+styles.MutedText.Render(m.tr.T("location.loading")))
	case !snap.HasLocation:
		lines = append(lines, styles.MutedText.Render(truncate(m.tr.T("location.none"), innerW)))
	default:
		loc := snap.Location
		address := loc.DisplayAddress()
		if snap.Loading {
			address = m.spinner.View() + " " + address
		}
		lines = append(lines,
			styles.Text.Bold(true).Render(truncate(address, innerW)),
			styles.MutedText.Render(m.tr.T("location.coords")+" ")+
				styles.Text.Render(fmt.Sprintf("%.5f, %.5f", loc.Latitude, loc.Longitude)),
			styles.MutedText.Render(m.tr.T("location.pano")+" ")+
				styles.FaintText.Render(truncate(loc.PanoID, max(innerW-12, 4))),
		)
	}

	if !compact {
		mapH := min(innerH-len(lines)-1, innerW/4)
		if mapH >= 3 {
			lines = append(lines, "",
				renderMinimap(snap.Location.Latitude, snap.Location.Longitude, innerW, mapH, snap.HasLocation, styles))
		}
	}

	return styles.Panel.
		Width(width - 2).
		Height(innerH).
		Render(strings.Join(lines, "\n"))
}

// renderDescriptionPanel renders the description status line and text.
func (m Model) renderDescriptionPanel(width, height int) string {
	styles := m.theme.Styles()
	innerW := max(width-4, 1)

	title := lo.Ternary(m.detailed, m.tr.T("description.detailed"), m.tr.T("description.title"))
	lines := []string{
		styles.AccentText.Bold(true).Render(title),
		m.renderDescriptionStatus(styles, innerW),
		"",
	}
	if m.desc.HasDescription {
		lines = append(lines, m.descViewport.View())
	}

	return styles.PanelFocus.
		Width(width - 2).
		Height(max(height-2, 1)).
		Render(strings.Join(lines, "\n"))
}

func (m Model) renderDescriptionStatus(styles Styles, width int) string {
	status, tone := descriptionStatus(m.desc, m.tr)
	switch tone {
	case toneBusy:
		return m.spinner.View() + " " + styles.InfoText.Render(truncate(status, width-2))
	case toneWarning:
		return m.spinner.View() + " " + styles.WarningText.Render(truncate(status, width-2))
	case toneDanger:
		return styles.DangerText.Render(truncate(status, width))
	default:
		return styles.MutedText.Render(truncate(status, width))
	}
}

type statusTone int

const (
	toneMuted statusTone = iota
	toneBusy
	toneWarning
	toneDanger
)

// descriptionStatus returns the status line shown above the description.
func descriptionStatus(st describe.State, tr *i18n.Translator) (string, statusTone) {
	switch st.Phase() {
	case describe.PhaseLoading:
		return tr.T("description.loading"), toneBusy
	case describe.PhaseRetrying:
		return tr.T("description.retrying", st.RetryCount, st.MaxRetries), toneWarning
	case describe.PhaseFailed:
		if errors.Is(st.Err, describe.ErrNetworkUnavailable) {
			return tr.T("description.offline"), toneDanger
		}
		return tr.T("description.failed", errorText(st.Err, tr)) + " · " + tr.T("description.retry_hint"), toneDanger
	case describe.PhaseSuccess:
		return "", toneMuted
	default:
		if st.SubjectID == "" {
			return tr.T("description.empty"), toneMuted
		}
		return "", toneMuted
	}
}

// errorText turns a controller error into a short user-facing message.
func errorText(err error, tr *i18n.Translator) string {
	var serverErr *describe.ServerError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, describe.ErrTimeout):
		return tr.T("error.timeout")
	case errors.Is(err, describe.ErrNetworkUnavailable):
		return tr.T("error.network")
	case errors.As(err, &serverErr):
		return tr.T("error.server", serverErr.Message)
	default:
		return err.Error()
	}
}

// renderFooter shows the interest editor, a flash message or the tagline.
func (m Model) renderFooter() string {
	styles := m.theme.Styles()
	switch {
	case m.editingInterest:
		return styles.AccentText.Render("/ ") + m.interest.View()
	case m.flash != "":
		style := lo.Ternary(m.flashDanger, styles.DangerText, styles.WarningText)
		return style.Render(truncate(m.flash, m.width))
	default:
		return styles.FaintText.Render(truncate(m.tr.T("app.tagline"), m.width))
	}
}
