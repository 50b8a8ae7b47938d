// Package config loads the streetlens configuration file.
//
// # Overview
//
// streetlens reads a single TOML file describing where the exploration API
// lives and how patient the description controller should be with it. Every
// field is optional; a missing file yields Default().
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/streetlens/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing/empty, use defaults
//
// # TOML Format
//
//	api_url = "http://127.0.0.1:8080"
//	api_prefix = "/api/v1"
//	request_timeout_ms = 10000   # standard description attempt budget
//	detailed_timeout_ms = 30000  # detailed description attempt budget
//	max_retries = 3              # automatic retries after the first attempt
//	debounce_ms = 300
//	retry_base_ms = 2000         # backoff = min(base*(n+1), cap)
//	retry_cap_ms = 5000
//	probe_interval_ms = 5000     # connectivity probe cadence
//	refresh_limit_ms = 1000      # minimum gap between "next location" requests
//	cache_size = 128             # cached descriptions, 0 disables
//	log_dir = "~/.local/state/streetlens"
//	posthog_key = ""             # empty disables session analytics
//	posthog_host = ""
//
// max_retries, debounce_ms, refresh_limit_ms and cache_size accept an
// explicit zero. Other durations treat zero or negative values as unset.
//
// # Error Handling
//
// Load returns errors for path expansion failures, read errors other than
// os.ErrNotExist, TOML parse errors and negative retry/debounce values.
//
// # Usage Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//		return fmt.Errorf("load config: %w", err)
//	}
//	ctrl := describe.New(fetcher, monitor, cfg.Describe())
package config
