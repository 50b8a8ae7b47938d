package ui

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/bep/debounce"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/streetlens/internal/describe"
	"github.com/five82/streetlens/internal/i18n"
	"github.com/five82/streetlens/internal/logtail"
	"github.com/five82/streetlens/internal/prefs"
	"github.com/five82/streetlens/internal/state"
	"github.com/five82/streetlens/internal/streetapi"
	"github.com/five82/streetlens/internal/telemetry"
)

// LocationAPI is the part of the exploration API the UI calls directly.
type LocationAPI interface {
	FetchRandomLocation(ctx context.Context) (streetapi.Location, error)
	SetExplorationPreference(ctx context.Context, interest string) error
	DeleteExplorationPreference(ctx context.Context) error
}

// Describer drives the description panel. *describe.Controller implements it.
type Describer interface {
	RequestDescription(subjectID, lang string) error
	RequestDetailedDescription(subjectID, lang string) error
	Retry() error
	Cancel()
	State() describe.State
	Changes() <-chan struct{}
}

// Options configures the UI.
type Options struct {
	Context      context.Context
	API          LocationAPI
	Describer    Describer
	Store        *state.Store
	Network      describe.Network
	Translator   *i18n.Translator
	Tracker      *telemetry.Tracker
	SessionID    string
	Prefs        prefs.Prefs
	PrefsPath    string
	LogPath      string
	FetchTimeout time.Duration
	Logger       *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Collaborators
	ctx          context.Context
	api          LocationAPI
	describer    Describer
	store        *state.Store
	network      describe.Network
	tr           *i18n.Translator
	tracker      *telemetry.Tracker
	logger       *slog.Logger
	sessionID    string
	logPath      string
	fetchTimeout time.Duration

	// Preferences
	prefs     prefs.Prefs
	prefsPath string
	savePrefs func(func())

	// Network events from the monitor subscription
	netEvents   chan bool
	unsubscribe func()

	// UI state
	keys   keyMap
	theme  Theme
	width  int
	height int
	ready  bool

	// Data state
	online   bool
	location state.Snapshot
	desc     describe.State
	detailed bool

	// Widgets
	spinner      spinner.Model
	descViewport viewport.Model
	logViewport  viewport.Model
	interest     textinput.Model

	// Overlays
	editingInterest bool
	showHelp        bool
	showLogs        bool
	logEntries      []logtail.Entry

	// Transient footer message
	flash       string
	flashDanger bool
	flashSeq    int
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	store := opts.Store
	if store == nil {
		store = state.NewStore(time.Second)
	}
	tr := opts.Translator
	if tr == nil {
		tr = i18n.New(opts.Prefs.Language)
	}
	fetchTimeout := opts.FetchTimeout
	if fetchTimeout <= 0 {
		fetchTimeout = describe.DefaultStandardTimeout
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	p := opts.Prefs.Normalize()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	input := textinput.New()
	input.Placeholder = tr.T("interest.prompt")
	input.CharLimit = 80
	input.SetValue(p.ExplorationInterest)

	m := Model{
		ctx:          ctx,
		api:          opts.API,
		describer:    opts.Describer,
		store:        store,
		network:      opts.Network,
		tr:           tr,
		tracker:      opts.Tracker,
		logger:       logger.With("component", "ui"),
		sessionID:    opts.SessionID,
		logPath:      opts.LogPath,
		fetchTimeout: fetchTimeout,
		prefs:        p,
		prefsPath:    prefsPath,
		savePrefs:    debounce.New(PrefsSaveDebounce),
		netEvents:    make(chan bool, 1),
		unsubscribe:  func() {},
		keys:         DefaultKeyMap(),
		theme:        GetTheme(p.Theme),
		online:       true,
		spinner:      sp,
		descViewport: viewport.New(0, 0),
		logViewport:  viewport.New(0, 0),
		interest:     input,
	}
	if opts.Network != nil {
		m.online = opts.Network.Online()
		events := m.netEvents
		m.unsubscribe = opts.Network.Subscribe(func(online bool) {
			sendLatest(events, online)
		})
	}
	if m.describer != nil {
		m.desc = m.describer.State()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		listenNetwork(m.netEvents),
	}
	if m.describer != nil {
		cmds = append(cmds, listenDescribe(m.describer))
	}
	if cmd := m.nextLocation(); cmd != nil {
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.location = m.store.Snapshot()
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case locationMsg:
		return m.handleLocation(msg)

	case describeMsg:
		return m.handleDescribe(describe.State(msg))

	case networkMsg:
		return m.handleNetwork(bool(msg))

	case explorationMsg:
		return m.handleExploration(msg)

	case logsMsg:
		if msg.err != nil {
			m.logger.Debug("read log", "error", msg.err)
		}
		m.logEntries = msg.entries
		m.updateLogViewport()
		return m, nil

	case logTickMsg:
		if !m.showLogs {
			return m, nil
		}
		return m, tea.Batch(readLogsCmd(m.logPath), logTickCmd())

	case clearFlashMsg:
		if int(msg) == m.flashSeq {
			m.flash = ""
			m.flashDanger = false
		}
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.showLogs {
		return m.renderLogs()
	}
	return m.renderMain()
}

// Run starts the Bubble Tea program and persists preferences on exit.
func Run(opts Options) error {
	m := New(opts)
	defer m.unsubscribe()

	programOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		programOpts = append(programOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, programOpts...)
	final, err := p.Run()
	if fm, ok := final.(Model); ok {
		fm.savePrefsNow()
	}
	return err
}
