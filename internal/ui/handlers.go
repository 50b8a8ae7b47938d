package ui

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"

	"github.com/five82/streetlens/internal/describe"
	"github.com/five82/streetlens/internal/prefs"
	"github.com/five82/streetlens/internal/state"
	"github.com/five82/streetlens/internal/telemetry"
)

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.editingInterest {
		return m.handleInterestKey(msg)
	}

	// Help overlay: any key closes it
	if m.showHelp {
		if key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.showHelp = false
		return m, nil
	}

	if m.showLogs {
		return m.handleLogsKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.Logs):
		m.showLogs = true
		m.updateLogViewport()
		return m, tea.Batch(readLogsCmd(m.logPath), logTickCmd())

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.persistPrefs()
		m.refreshDescriptionViewport()
		cmd := m.setFlash(m.tr.T("theme.changed", m.theme.Name), false)
		return m, cmd

	case key.Matches(msg, m.keys.Next):
		cmd := m.nextLocation()
		return m, cmd

	case key.Matches(msg, m.keys.Retry):
		return m.retryDescription()

	case key.Matches(msg, m.keys.Cancel):
		if m.describer == nil {
			return m, nil
		}
		wasLoading := m.describer.State().IsLoading
		m.describer.Cancel()
		if !wasLoading {
			return m, nil
		}
		cmd := m.setFlash(m.tr.T("description.cancelled"), false)
		return m, cmd

	case key.Matches(msg, m.keys.Detailed):
		m.detailed = !m.detailed
		m.requestDescription()
		return m, nil

	case key.Matches(msg, m.keys.Language):
		lang := m.tr.SetLanguage(m.tr.Next())
		m.prefs.Language = lang
		m.interest.Placeholder = m.tr.T("interest.prompt")
		m.persistPrefs()
		m.requestDescription()
		cmd := m.setFlash(m.tr.T("language.changed", lang), false)
		return m, cmd

	case key.Matches(msg, m.keys.Mode):
		return m.toggleMode()

	case key.Matches(msg, m.keys.Interest):
		return m.startInterestEdit()

	case key.Matches(msg, m.keys.Up):
		m.descViewport.ScrollUp(1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.descViewport.ScrollDown(1)
		return m, nil

	case key.Matches(msg, m.keys.PageUp):
		m.descViewport.PageUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.descViewport.PageDown()
		return m, nil
	}

	return m, nil
}

func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit) && msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.Logs), key.Matches(msg, m.keys.Escape):
		m.showLogs = false
		return m, nil
	case key.Matches(msg, m.keys.Up):
		m.logViewport.ScrollUp(1)
	case key.Matches(msg, m.keys.Down):
		m.logViewport.ScrollDown(1)
	case key.Matches(msg, m.keys.PageUp):
		m.logViewport.PageUp()
	case key.Matches(msg, m.keys.PageDown):
		m.logViewport.PageDown()
	}
	return m, nil
}

func (m Model) handleInterestKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.editingInterest = false
		m.interest.Blur()
		m.interest.SetValue(m.prefs.ExplorationInterest)
		return m, nil
	case key.Matches(msg, m.keys.Confirm):
		m.editingInterest = false
		m.interest.Blur()
		interest := strings.TrimSpace(m.interest.Value())
		mode := lo.Ternary(interest == "", prefs.ModeRandom, prefs.ModeCustom)
		return m, explorationCmd(m.ctx, m.api, mode, interest, m.fetchTimeout)
	}

	var cmd tea.Cmd
	m.interest, cmd = m.interest.Update(msg)
	return m, cmd
}

func (m Model) startInterestEdit() (tea.Model, tea.Cmd) {
	if m.api == nil {
		return m, nil
	}
	m.editingInterest = true
	m.interest.SetValue(m.prefs.ExplorationInterest)
	m.interest.CursorEnd()
	cmd := m.interest.Focus()
	return m, cmd
}

func (m Model) toggleMode() (tea.Model, tea.Cmd) {
	if m.api == nil {
		return m, nil
	}
	if m.prefs.ExplorationMode == prefs.ModeCustom {
		return m, explorationCmd(m.ctx, m.api, prefs.ModeRandom, "", m.fetchTimeout)
	}
	interest := strings.TrimSpace(m.prefs.ExplorationInterest)
	if interest == "" {
		next, focus := m.startInterestEdit()
		nm := next.(Model)
		flash := nm.setFlash(nm.tr.T("mode.need_interest"), false)
		return nm, tea.Batch(focus, flash)
	}
	return m, explorationCmd(m.ctx, m.api, prefs.ModeCustom, interest, m.fetchTimeout)
}

func (m Model) retryDescription() (tea.Model, tea.Cmd) {
	if m.describer == nil {
		return m, nil
	}
	err := m.describer.Retry()
	switch {
	case err == nil, errors.Is(err, describe.ErrNetworkUnavailable):
		return m, nil
	case errors.Is(err, describe.ErrNoSubject):
		// Nothing described yet; describe whatever is on screen.
		m.requestDescription()
		return m, nil
	default:
		m.logger.Warn("retry description", "error", err)
		return m, nil
	}
}

// nextLocation starts a location fetch unless the store refuses it.
func (m *Model) nextLocation() tea.Cmd {
	if m.api == nil {
		return nil
	}
	if m.network != nil && !m.network.Online() {
		return m.setFlash(m.tr.T("error.network"), true)
	}
	if err := m.store.Begin(); err != nil {
		var rl *state.RateLimitError
		switch {
		case errors.As(err, &rl):
			return m.setFlash(m.tr.T("location.ratelimited", rl.Wait.Round(100*time.Millisecond)), false)
		case errors.Is(err, state.ErrBusy):
			return m.setFlash(m.tr.T("location.busy"), false)
		default:
			return m.setFlash(err.Error(), true)
		}
	}
	m.location = m.store.Snapshot()
	return fetchLocationCmd(m.ctx, m.api, m.store, m.fetchTimeout)
}

// requestDescription asks the controller to describe the location on screen
// in the current language and detail level.
func (m *Model) requestDescription() {
	if m.describer == nil || !m.location.HasLocation {
		return
	}
	id := m.location.Location.PanoID
	lang := m.tr.Language()

	var err error
	if m.detailed {
		err = m.describer.RequestDetailedDescription(id, lang)
	} else {
		err = m.describer.RequestDescription(id, lang)
	}
	// Offline shows up in the controller state.
	if err != nil && !errors.Is(err, describe.ErrNetworkUnavailable) {
		m.logger.Warn("request description", "pano_id", id, "error", err)
	}
}

func (m Model) handleLocation(msg locationMsg) (tea.Model, tea.Cmd) {
	m.location = msg.snapshot
	if msg.err != nil {
		m.logger.Warn("fetch location", "error", msg.err)
		cmd := m.setFlash(m.tr.T("location.failed", msg.err.Error()), true)
		return m, cmd
	}

	loc := m.location.Location
	m.logger.Info("location viewed", "pano_id", loc.PanoID, "address", loc.DisplayAddress())
	m.track(telemetry.EventLocationViewed, map[string]any{
		"pano_id": loc.PanoID,
		"country": loc.Country,
		"mode":    m.prefs.ExplorationMode,
	})
	m.descViewport.GotoTop()
	m.requestDescription()
	return m, nil
}

func (m Model) handleDescribe(st describe.State) (tea.Model, tea.Cmd) {
	prev := m.desc
	m.desc = st

	prevPhase, phase := prev.Phase(), st.Phase()
	changed := prevPhase != phase || prev.SubjectID != st.SubjectID
	switch {
	case phase == describe.PhaseSuccess && changed:
		m.track(telemetry.EventDescriptionLoaded, map[string]any{
			"pano_id":  st.SubjectID,
			"language": st.Language,
			"kind":     st.Kind.String(),
			"retries":  prev.RetryCount,
		})
	case phase == describe.PhaseFailed && changed:
		m.logger.Warn("description failed",
			"pano_id", st.SubjectID,
			"retries", st.RetryCount,
			"error", st.Err,
		)
		m.track(telemetry.EventDescriptionFailed, map[string]any{
			"pano_id": st.SubjectID,
			"kind":    st.Kind.String(),
			"error":   st.Err.Error(),
		})
	}

	if st.Description != prev.Description {
		m.refreshDescriptionViewport()
		m.descViewport.GotoTop()
	}
	return m, listenDescribe(m.describer)
}

func (m Model) handleNetwork(online bool) (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{listenNetwork(m.netEvents)}
	was := m.online
	m.online = online
	if online == was {
		return m, tea.Batch(cmds...)
	}

	m.logger.Info("connectivity changed", "online", online)
	if !online {
		cmds = append(cmds, m.setFlash(m.tr.T("description.offline"), true))
		return m, tea.Batch(cmds...)
	}

	// Back online: pick up whatever the outage interrupted.
	if !m.location.HasLocation && !m.location.Loading {
		cmds = append(cmds, m.nextLocation())
	} else if errors.Is(m.desc.Err, describe.ErrNetworkUnavailable) && m.describer != nil {
		if err := m.describer.Retry(); err != nil {
			m.logger.Debug("retry after reconnect", "error", err)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleExploration(msg explorationMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.logger.Warn("update exploration preference", "mode", msg.mode, "error", msg.err)
		cmd := m.setFlash(msg.err.Error(), true)
		return m, cmd
	}

	m.prefs.ExplorationMode = msg.mode
	if msg.interest != "" {
		m.prefs.ExplorationInterest = msg.interest
	}
	m.interest.SetValue(m.prefs.ExplorationInterest)
	m.persistPrefs()
	m.track(telemetry.EventExplorationChanged, map[string]any{
		"mode":     msg.mode,
		"interest": msg.interest,
	})

	text := lo.Ternary(msg.mode == prefs.ModeCustom,
		m.tr.T("interest.saved", msg.interest),
		m.tr.T("interest.cleared"))
	flash := m.setFlash(text, false)
	next := m.nextLocation()
	return m, tea.Batch(flash, next)
}

// setFlash shows a footer message and schedules its removal.
func (m *Model) setFlash(text string, danger bool) tea.Cmd {
	m.flashSeq++
	m.flash = text
	m.flashDanger = danger
	return clearFlashCmd(m.flashSeq)
}

func (m Model) track(event string, props map[string]any) {
	if m.tracker == nil {
		return
	}
	m.tracker.Track(event, props)
}

// persistPrefs schedules a debounced write of the current preferences.
func (m Model) persistPrefs() {
	if m.savePrefs == nil {
		return
	}
	m.savePrefs(m.savePrefsNow)
}

func (m Model) savePrefsNow() {
	p := m.prefs
	if m.sessionID != "" {
		p.SessionID = m.sessionID
	}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save preferences", "path", m.prefsPath, "error", err)
	}
}
