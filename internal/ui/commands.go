package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/streetlens/internal/describe"
	"github.com/five82/streetlens/internal/logtail"
	"github.com/five82/streetlens/internal/prefs"
	"github.com/five82/streetlens/internal/state"
)

// Message types

// locationMsg carries the store after a location fetch finished.
type locationMsg struct {
	snapshot state.Snapshot
	err      error
}

// describeMsg carries the controller state after a change notification.
type describeMsg describe.State

// networkMsg reports the latest connectivity.
type networkMsg bool

// explorationMsg reports the outcome of posting an exploration preference.
type explorationMsg struct {
	mode     string
	interest string
	err      error
}

// logsMsg carries freshly read log entries.
type logsMsg struct {
	entries []logtail.Entry
	err     error
}

// logTickMsg triggers a log refresh while the overlay is open.
type logTickMsg struct{}

// clearFlashMsg clears the footer message if it is still the one identified.
type clearFlashMsg int

// Commands

// fetchLocationCmd fetches a random location and records the outcome in the
// store. The caller must have called store.Begin.
func fetchLocationCmd(ctx context.Context, api LocationAPI, store *state.Store, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		loc, err := api.FetchRandomLocation(reqCtx)
		if err != nil {
			store.Update(nil, err)
			return locationMsg{snapshot: store.Snapshot(), err: err}
		}
		store.Update(&loc, nil)
		return locationMsg{snapshot: store.Snapshot()}
	}
}

// listenDescribe waits for the next controller change. It returns nil once
// the controller is closed so the listen loop ends.
func listenDescribe(d Describer) tea.Cmd {
	changes := d.Changes()
	return func() tea.Msg {
		if _, ok := <-changes; !ok {
			return nil
		}
		return describeMsg(d.State())
	}
}

// listenNetwork waits for the next connectivity transition.
func listenNetwork(events <-chan bool) tea.Cmd {
	return func() tea.Msg {
		return networkMsg(<-events)
	}
}

// sendLatest delivers v without blocking, replacing an undelivered value.
func sendLatest(ch chan bool, v bool) {
	for {
		select {
		case ch <- v:
			return
		default:
		}
		select {
		case <-ch:
		default:
		}
	}
}

// explorationCmd posts or clears the exploration preference for mode.
func explorationCmd(ctx context.Context, api LocationAPI, mode, interest string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		reqCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var err error
		if mode == prefs.ModeCustom {
			err = api.SetExplorationPreference(reqCtx, interest)
		} else {
			err = api.DeleteExplorationPreference(reqCtx)
		}
		return explorationMsg{mode: mode, interest: interest, err: err}
	}
}

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logsMsg{}
		}
		entries, err := logtail.ReadEntries(path, LogFetchLimit)
		return logsMsg{entries: entries, err: err}
	}
}

func logTickCmd() tea.Cmd {
	return tea.Tick(LogRefreshInterval, func(time.Time) tea.Msg {
		return logTickMsg{}
	})
}

func clearFlashCmd(seq int) tea.Cmd {
	return tea.Tick(FlashDuration, func(time.Time) tea.Msg {
		return clearFlashMsg(seq)
	})
}
