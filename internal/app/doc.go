// Package app is the composition root for streetlens.
//
// # Overview
//
// Run loads configuration and preferences, builds every collaborator and
// hands them to the UI:
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()              Read config.toml
//	       ├─────> openLog()                  JSON slog file at cfg.LogPath()
//	       ├─────> prefs.Load()               Theme, language, exploration
//	       ├─────> session.NewProvider()      X-Session-ID, persisted in prefs
//	       ├─────> streetapi.NewClient()      HTTP client
//	       ├─────> newFetcher()               Optional LRU description cache
//	       ├─────> netstate.StartProber()     Connectivity from /health
//	       ├─────> describe.New()             Description fetch controller
//	       ├─────> telemetry.New()            PostHog, no-op without a key
//	       ├─────> restoreExploration()       Re-post a stored interest
//	       └─────> ui.Run()                   Start TUI (blocks)
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Invalid configuration file
//   - Log file cannot be created
//   - Invalid API URL
//
// Recoverable errors (logged):
//   - Telemetry initialization
//   - Restoring the exploration preference
//   - Anything the UI or controller hits at runtime
//
// Nothing is written to the terminal while the UI runs; diagnostics go to
// the log file, which the UI can show with "l".
package app
