package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/five82/streetlens/internal/config"
	"github.com/five82/streetlens/internal/describe"
	"github.com/five82/streetlens/internal/i18n"
	"github.com/five82/streetlens/internal/netstate"
	"github.com/five82/streetlens/internal/prefs"
	"github.com/five82/streetlens/internal/session"
	"github.com/five82/streetlens/internal/state"
	"github.com/five82/streetlens/internal/streetapi"
	"github.com/five82/streetlens/internal/telemetry"
	"github.com/five82/streetlens/internal/ui"
)

// Options configure the streetlens application.
type Options struct {
	ConfigPath string
	PrefsPath  string // empty uses default ~/.config/streetlens/prefs.toml
	APIURL     string // overrides api_url from the config file
	Language   string // overrides the stored language
	Debug      bool
	Version    string
}

// Run boots the streetlens TUI until the user quits or the context is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.APIURL != "" {
		cfg.APIURL = opts.APIURL
	}

	logger, logFile, err := openLog(cfg.LogPath(), opts.Debug)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()

	userPrefs, err := prefs.Load(opts.PrefsPath)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}
	if opts.Language != "" {
		userPrefs.Language = opts.Language
		userPrefs = userPrefs.Normalize()
	}

	sessions := session.NewProvider(session.PrefsStore{Path: opts.PrefsPath}, logger)
	sessionID := sessions.ID()
	userPrefs.SessionID = sessionID

	client, err := streetapi.NewClient(cfg.APIURL, cfg.APIPrefix, sessions)
	if err != nil {
		return fmt.Errorf("init api client: %w", err)
	}
	fetcher, err := newFetcher(client, cfg.CacheSize)
	if err != nil {
		return fmt.Errorf("init description cache: %w", err)
	}

	// Assume online until the first probe says otherwise.
	monitor := netstate.NewMonitor(true)
	netstate.StartProber(ctx, monitor, client.Ping, cfg.ProbeInterval, logger)

	controller := describe.New(fetcher, monitor, cfg.Describe(), logger)
	defer controller.Close()

	tracker, err := telemetry.New(cfg.PostHogKey, cfg.PostHogHost, opts.Version, sessions, logger)
	if err != nil {
		// Telemetry is optional; keep going with the no-op tracker.
		logger.Warn("telemetry disabled", "error", err)
	}
	defer tracker.Close()

	translator := i18n.New(userPrefs.Language)

	logger.Info("streetlens starting",
		"version", opts.Version,
		"api_url", cfg.APIURL,
		"language", translator.Language(),
		"session", session.Short(sessionID),
		"cache_size", cfg.CacheSize,
	)
	tracker.Track(telemetry.EventAppStarted, map[string]any{
		"language": translator.Language(),
		"mode":     userPrefs.ExplorationMode,
	})

	go func() {
		if err := restoreExploration(ctx, client, userPrefs, cfg.RequestTimeout); err != nil {
			logger.Warn("restore exploration preference", "error", err)
		}
	}()

	return ui.Run(ui.Options{
		Context:      ctx,
		API:          client,
		Describer:    controller,
		Store:        state.NewStore(cfg.RefreshLimit),
		Network:      monitor,
		Translator:   translator,
		Tracker:      tracker,
		SessionID:    sessionID,
		Prefs:        userPrefs,
		PrefsPath:    opts.PrefsPath,
		LogPath:      cfg.LogPath(),
		FetchTimeout: cfg.RequestTimeout,
		Logger:       logger,
	})
}

// openLog opens path for appending and returns a JSON logger writing to it.
func openLog(path string, debug bool) (*slog.Logger, io.Closer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create log dir: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
	return slog.New(handler), file, nil
}

// newFetcher wraps client in an LRU cache unless size is zero.
func newFetcher(client *streetapi.Client, size int) (describe.Fetcher, error) {
	if size <= 0 {
		return client, nil
	}
	cached, err := streetapi.NewCachedDescriptions(client, size)
	if err != nil {
		return nil, err
	}
	return cached, nil
}

type explorationAPI interface {
	SetExplorationPreference(ctx context.Context, interest string) error
}

// restoreExploration re-posts a stored custom interest so the server picks
// locations the same way as in the previous run.
func restoreExploration(ctx context.Context, api explorationAPI, p prefs.Prefs, timeout time.Duration) error {
	if p.ExplorationMode != prefs.ModeCustom || p.ExplorationInterest == "" {
		return nil
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return api.SetExplorationPreference(reqCtx, p.ExplorationInterest)
}
