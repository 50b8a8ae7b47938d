package ui

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/streetlens/internal/describe"
	"github.com/five82/streetlens/internal/i18n"
	"github.com/five82/streetlens/internal/prefs"
	"github.com/five82/streetlens/internal/state"
	"github.com/five82/streetlens/internal/streetapi"
)

type describeCall struct {
	subjectID string
	lang      string
	detailed  bool
}

type fakeDescriber struct {
	mu       sync.Mutex
	calls    []describeCall
	retries  int
	cancels  int
	retryErr error
	st       describe.State
	changes  chan struct{}
}

func newFakeDescriber() *fakeDescriber {
	return &fakeDescriber{changes: make(chan struct{}, 1)}
}

func (f *fakeDescriber) RequestDescription(subjectID, lang string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, describeCall{subjectID: subjectID, lang: lang})
	return nil
}

func (f *fakeDescriber) RequestDetailedDescription(subjectID, lang string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, describeCall{subjectID: subjectID, lang: lang, detailed: true})
	return nil
}

func (f *fakeDescriber) Retry() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.retries++
	return f.retryErr
}

func (f *fakeDescriber) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
}

func (f *fakeDescriber) State() describe.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.st
}

func (f *fakeDescriber) Changes() <-chan struct{} { return f.changes }

func (f *fakeDescriber) lastCall(t *testing.T) describeCall {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		t.Fatal("no description requested")
	}
	return f.calls[len(f.calls)-1]
}

type fakeAPI struct {
	mu       sync.Mutex
	loc      streetapi.Location
	err      error
	interest string
	deleted  int
}

func (a *fakeAPI) FetchRandomLocation(context.Context) (streetapi.Location, error) {
	return a.loc, a.err
}

func (a *fakeAPI) SetExplorationPreference(_ context.Context, interest string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.interest = interest
	return nil
}

func (a *fakeAPI) DeleteExplorationPreference(context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.deleted++
	return nil
}

type fakeNetwork struct{ online bool }

func (n *fakeNetwork) Online() bool { return n.online }
func (n *fakeNetwork) Subscribe(func(online bool)) func() { return func() {} }

func newTestModel(t *testing.T, d *fakeDescriber, api *fakeAPI) Model {
	t.Helper()
	m := New(Options{
		API:        api,
		Describer:  d,
		Store:      state.NewStore(0),
		Network:    &fakeNetwork{online: true},
		Translator: i18n.New("en"),
		Prefs:      prefs.Defaults(),
		PrefsPath:  filepath.Join(t.TempDir(), "prefs.toml"),
		SessionID:  "0123456789abcdef",
	})
	m.savePrefs = func(f func()) { f() }
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	return next.(Model)
}

// withLocation runs a location fetch through the model.
func withLocation(t *testing.T, m Model, api *fakeAPI) Model {
	t.Helper()
	cmd := m.nextLocation()
	if cmd == nil {
		t.Fatal("nextLocation returned nil command")
	}
	msg := cmd()
	if _, ok := msg.(locationMsg); !ok {
		t.Fatalf("fetch command returned %T, want locationMsg", msg)
	}
	return press(t, m, msg)
}

func TestLocationRequestsDescription(t *testing.T) {
	d := newFakeDescriber()
	api := &fakeAPI{loc: streetapi.Location{PanoID: "pano_1", City: "Oslo", Country: "Norway"}}
	m := withLocation(t, newTestModel(t, d, api), api)

	if !m.location.HasLocation || m.location.Location.PanoID != "pano_1" {
		t.Fatalf("location = %#v, want pano_1", m.location)
	}
	call := d.lastCall(t)
	if call != (describeCall{subjectID: "pano_1", lang: "en"}) {
		t.Fatalf("request = %#v, want pano_1/en standard", call)
	}
}

func TestLocationFailureFlashes(t *testing.T) {
	d := newFakeDescriber()
	api := &fakeAPI{err: errors.New("boom")}
	m := withLocation(t, newTestModel(t, d, api), api)

	if m.location.HasLocation {
		t.Fatal("HasLocation = true after failure")
	}
	if !m.flashDanger || !strings.Contains(m.flash, "boom") {
		t.Fatalf("flash = %q (danger=%v), want boom", m.flash, m.flashDanger)
	}
	if len(d.calls) != 0 {
		t.Fatalf("description requests = %d, want 0", len(d.calls))
	}
}

func TestNextLocationBusy(t *testing.T) {
	d := newFakeDescriber()
	api := &fakeAPI{}
	m := newTestModel(t, d, api)
	if cmd := m.nextLocation(); cmd == nil {
		t.Fatal("first nextLocation returned nil")
	}
	m.nextLocation()
	if m.flash != m.tr.T("location.busy") {
		t.Fatalf("flash = %q, want busy message", m.flash)
	}
}

func TestNextLocationOffline(t *testing.T) {
	d := newFakeDescriber()
	api := &fakeAPI{}
	m := newTestModel(t, d, api)
	m.network = &fakeNetwork{online: false}

	m.nextLocation()
	if m.store.Snapshot().Loading {
		t.Fatal("store began a fetch while offline")
	}
	if !m.flashDanger {
		t.Fatal("expected an offline flash")
	}
}

func TestDetailedToggleAndLanguage(t *testing.T) {
	d := newFakeDescriber()
	api := &fakeAPI{loc: streetapi.Location{PanoID: "pano_1"}}
	m := withLocation(t, newTestModel(t, d, api), api)

	m = press(t, m, keyRunes("d"))
	if call := d.lastCall(t); !call.detailed || call.subjectID != "pano_1" {
		t.Fatalf("request = %#v, want detailed pano_1", call)
	}

	m = press(t, m, keyRunes("L"))
	if m.tr.Language() != "zh" || m.prefs.Language != "zh" {
		t.Fatalf("language = %q / prefs %q, want zh", m.tr.Language(), m.prefs.Language)
	}
	if call := d.lastCall(t); call.lang != "zh" || !call.detailed {
		t.Fatalf("request = %#v, want detailed zh", call)
	}

	saved, err := prefs.Load(m.prefsPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if saved.Language != "zh" || saved.SessionID != "0123456789abcdef" {
		t.Fatalf("saved prefs = %#v, want zh with session id", saved)
	}
}

func TestRetryKey(t *testing.T) {
	d := newFakeDescriber()
	api := &fakeAPI{loc: streetapi.Location{PanoID: "pano_1"}}
	m := withLocation(t, newTestModel(t, d, api), api)
	before := len(d.calls)

	press(t, m, keyRunes("r"))
	if d.retries != 1 {
		t.Fatalf("retries = %d, want 1", d.retries)
	}

	// Nothing described yet: fall back to a fresh request.
	d.retryErr = describe.ErrNoSubject
	press(t, m, keyRunes("r"))
	if len(d.calls) != before+1 {
		t.Fatalf("requests = %d, want %d", len(d.calls), before+1)
	}
}

func TestCancelKey(t *testing.T) {
	d := newFakeDescriber()
	m := newTestModel(t, d, &fakeAPI{})

	m = press(t, m, keyRunes("x"))
	if d.cancels != 1 || m.flash != "" {
		t.Fatalf("idle cancel: cancels=%d flash=%q", d.cancels, m.flash)
	}

	d.st = describe.State{SubjectID: "p", IsLoading: true}
	m = press(t, m, keyRunes("x"))
	if d.cancels != 2 || m.flash != m.tr.T("description.cancelled") {
		t.Fatalf("loading cancel: cancels=%d flash=%q", d.cancels, m.flash)
	}
}

func TestReconnectRetriesOfflineDescription(t *testing.T) {
	d := newFakeDescriber()
	api := &fakeAPI{loc: streetapi.Location{PanoID: "pano_1"}}
	m := withLocation(t, newTestModel(t, d, api), api)

	m = press(t, m, networkMsg(false))
	m = press(t, m, describeMsg(describe.State{SubjectID: "pano_1", Err: describe.ErrNetworkUnavailable}))
	if d.retries != 0 {
		t.Fatalf("retries while offline = %d, want 0", d.retries)
	}

	m = press(t, m, networkMsg(true))
	if !m.online {
		t.Fatal("online = false after reconnect")
	}
	if d.retries != 1 {
		t.Fatalf("retries after reconnect = %d, want 1", d.retries)
	}

	// A repeated online report is not a transition.
	press(t, m, networkMsg(true))
	if d.retries != 1 {
		t.Fatalf("retries after duplicate online = %d, want 1", d.retries)
	}
}

func TestDescribeMsgUpdatesViewport(t *testing.T) {
	d := newFakeDescriber()
	m := newTestModel(t, d, &fakeAPI{})

	next, cmd := m.Update(describeMsg(describe.State{SubjectID: "p", Description: "A quiet harbour.", HasDescription: true}))
	m = next.(Model)
	if cmd == nil {
		t.Fatal("describeMsg should keep listening")
	}
	if !strings.Contains(m.descViewport.View(), "quiet harbour") {
		t.Fatalf("viewport = %q, want description", m.descViewport.View())
	}
}

func TestListenDescribeStopsOnClose(t *testing.T) {
	d := newFakeDescriber()
	close(d.changes)
	if msg := listenDescribe(d)(); msg != nil {
		t.Fatalf("listenDescribe after close = %#v, want nil", msg)
	}
}

func TestExplorationToggle(t *testing.T) {
	d := newFakeDescriber()
	api := &fakeAPI{}
	m := newTestModel(t, d, api)

	// Random without an interest opens the editor.
	m = press(t, m, keyRunes("m"))
	if !m.editingInterest {
		t.Fatal("mode toggle without interest should open the interest editor")
	}
	m = press(t, m, keyRunes("lighthouses"))
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(Model)
	if cmd == nil || m.editingInterest {
		t.Fatalf("enter: cmd=%v editing=%v", cmd, m.editingInterest)
	}
	msg := cmd().(explorationMsg)
	if msg.mode != prefs.ModeCustom || api.interest != "lighthouses" {
		t.Fatalf("exploration = %#v, api interest %q", msg, api.interest)
	}
	m = press(t, m, msg)
	if m.prefs.ExplorationMode != prefs.ModeCustom || m.prefs.ExplorationInterest != "lighthouses" {
		t.Fatalf("prefs = %#v, want custom lighthouses", m.prefs)
	}

	// Custom back to random clears the preference.
	_, cmd = m.Update(keyRunes("m"))
	msg = cmd().(explorationMsg)
	if msg.mode != prefs.ModeRandom || api.deleted != 1 {
		t.Fatalf("exploration = %#v, deleted %d", msg, api.deleted)
	}
}

func TestInterestEscapeRestoresValue(t *testing.T) {
	m := newTestModel(t, newFakeDescriber(), &fakeAPI{})
	m = press(t, m, keyRunes("/"))
	m = press(t, m, keyRunes("bridges"))
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.editingInterest || m.interest.Value() != "" {
		t.Fatalf("editing=%v value=%q, want closed and empty", m.editingInterest, m.interest.Value())
	}
}

func TestOverlaysAndView(t *testing.T) {
	m := newTestModel(t, newFakeDescriber(), &fakeAPI{})

	if view := m.View(); !strings.Contains(view, "streetlens") {
		t.Fatal("main view missing logo")
	}

	m = press(t, m, keyRunes("?"))
	if !m.showHelp || !strings.Contains(m.View(), m.tr.T("help.title")) {
		t.Fatal("help overlay not shown")
	}
	m = press(t, m, keyRunes("j"))
	if m.showHelp {
		t.Fatal("any key should close help")
	}

	m = press(t, m, keyRunes("l"))
	if !m.showLogs || !strings.Contains(m.View(), m.tr.T("logs.title")) {
		t.Fatal("log overlay not shown")
	}
	m = press(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.showLogs {
		t.Fatal("esc should close logs")
	}

	m = press(t, m, keyRunes("T"))
	if m.theme.Name != "Kanagawa" || m.prefs.Theme != "Kanagawa" {
		t.Fatalf("theme = %q prefs %q, want Kanagawa", m.theme.Name, m.prefs.Theme)
	}
}

func TestClearFlashIgnoresStaleSequence(t *testing.T) {
	m := newTestModel(t, newFakeDescriber(), &fakeAPI{})
	m.setFlash("first", false)
	m.setFlash("second", false)

	m = press(t, m, clearFlashMsg(1))
	if m.flash != "second" {
		t.Fatalf("flash = %q, want second", m.flash)
	}
	m = press(t, m, clearFlashMsg(2))
	if m.flash != "" {
		t.Fatalf("flash = %q, want empty", m.flash)
	}
}

func TestDescriptionStatus(t *testing.T) {
	tr := i18n.New("en")
	tests := []struct {
		name string
		st   describe.State
		want string
		tone statusTone
	}{
		{"idle", describe.State{}, "No description yet", toneMuted},
		{"loading", describe.State{SubjectID: "p", IsLoading: true}, "Writing a description…", toneBusy},
		{"retrying", describe.State{SubjectID: "p", IsLoading: true, RetryCount: 2, MaxRetries: 3}, "Retrying (2/3)", toneWarning},
		{"timeout", describe.State{SubjectID: "p", Err: describe.ErrTimeout},
			"Could not load the description: the request timed out · Press r to retry", toneDanger},
		{"offline", describe.State{SubjectID: "p", Err: describe.ErrNetworkUnavailable},
			"You are offline. The description will load when the connection returns.", toneDanger},
		{"success", describe.State{SubjectID: "p", Description: "x", HasDescription: true}, "", toneMuted},
	}
	for _, tt := range tests {
		got, tone := descriptionStatus(tt.st, tr)
		if got != tt.want || tone != tt.tone {
			t.Fatalf("%s: descriptionStatus = (%q, %d), want (%q, %d)", tt.name, got, tone, tt.want, tt.tone)
		}
	}
}

func TestErrorText(t *testing.T) {
	tr := i18n.New("en")
	if got := errorText(&describe.ServerError{Status: 500, Message: "overloaded"}, tr); got != "server error: overloaded" {
		t.Fatalf("errorText(server) = %q", got)
	}
	if got := errorText(errors.New("odd"), tr); got != "odd" {
		t.Fatalf("errorText(other) = %q", got)
	}
	if got := errorText(nil, tr); got != "" {
		t.Fatalf("errorText(nil) = %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello world", 6, "hello…"},
		{"hello", 1, "…"},
		{"hello", 0, ""},
		{"日本語テキスト", 5, "日本…"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
	if got := truncateMiddle("/var/log/streetlens/streetlens.log", 16); got != "/var/…etlens.log" {
		t.Fatalf("truncateMiddle = %q", got)
	}
}

func TestSendLatestKeepsNewest(t *testing.T) {
	ch := make(chan bool, 1)
	sendLatest(ch, false)
	sendLatest(ch, true)
	select {
	case v := <-ch:
		if !v {
			t.Fatal("sendLatest kept the stale value")
		}
	case <-time.After(time.Second):
		t.Fatal("no value delivered")
	}
}
