package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/streetlens/internal/describe"
)

// Config captures everything streetlens reads from config.toml.
type Config struct {
	APIURL    string
	APIPrefix string

	RequestTimeout  time.Duration
	DetailedTimeout time.Duration
	MaxRetries      int
	Debounce        time.Duration
	RetryBase       time.Duration
	RetryCap        time.Duration

	ProbeInterval time.Duration
	RefreshLimit  time.Duration
	CacheSize     int

	LogDir string

	PostHogKey  string
	PostHogHost string
}

const (
	defaultConfigPath = "~/.config/streetlens/config.toml"
	defaultLogDir     = "~/.local/state/streetlens"
	defaultAPIURL     = "http://127.0.0.1:8080"
	defaultAPIPrefix  = "/api/v1"

	defaultRequestTimeout  = 10 * time.Second
	defaultDetailedTimeout = 30 * time.Second
	defaultMaxRetries      = 3
	defaultDebounce        = 300 * time.Millisecond
	defaultRetryBase       = 2 * time.Second
	defaultRetryCap        = 5 * time.Second
	defaultProbeInterval   = 5 * time.Second
	defaultRefreshLimit    = time.Second
	defaultCacheSize       = 128
)

type rawConfig struct {
	APIURL            string `toml:"api_url"`
	APIPrefix         string `toml:"api_prefix"`
	RequestTimeoutMS  int    `toml:"request_timeout_ms"`
	DetailedTimeoutMS int    `toml:"detailed_timeout_ms"`
	MaxRetries        *int   `toml:"max_retries"`
	DebounceMS        *int   `toml:"debounce_ms"`
	RetryBaseMS       int    `toml:"retry_base_ms"`
	RetryCapMS        int    `toml:"retry_cap_ms"`
	ProbeIntervalMS   int    `toml:"probe_interval_ms"`
	RefreshLimitMS    *int   `toml:"refresh_limit_ms"`
	CacheSize         *int   `toml:"cache_size"`
	LogDir            string `toml:"log_dir"`
	PostHogKey        string `toml:"posthog_key"`
	PostHogHost       string `toml:"posthog_host"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:          defaultAPIURL,
		APIPrefix:       defaultAPIPrefix,
		RequestTimeout:  defaultRequestTimeout,
		DetailedTimeout: defaultDetailedTimeout,
		MaxRetries:      defaultMaxRetries,
		Debounce:        defaultDebounce,
		RetryBase:       defaultRetryBase,
		RetryCap:        defaultRetryCap,
		ProbeInterval:   defaultProbeInterval,
		RefreshLimit:    defaultRefreshLimit,
		CacheSize:       defaultCacheSize,
		LogDir:          mustExpand(defaultLogDir),
	}
}

// Load locates and parses config.toml, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.APIPrefix); v != "" {
		cfg.APIPrefix = "/" + strings.Trim(v, "/")
	}
	cfg.RequestTimeout = millis(raw.RequestTimeoutMS, cfg.RequestTimeout)
	cfg.DetailedTimeout = millis(raw.DetailedTimeoutMS, cfg.DetailedTimeout)
	cfg.RetryBase = millis(raw.RetryBaseMS, cfg.RetryBase)
	cfg.RetryCap = millis(raw.RetryCapMS, cfg.RetryCap)
	cfg.ProbeInterval = millis(raw.ProbeIntervalMS, cfg.ProbeInterval)

	// Zero is meaningful for these, so only negative values are rejected.
	if raw.MaxRetries != nil {
		if *raw.MaxRetries < 0 {
			return Config{}, fmt.Errorf("max_retries must be >= 0, got %d", *raw.MaxRetries)
		}
		cfg.MaxRetries = *raw.MaxRetries
	}
	if raw.DebounceMS != nil {
		if *raw.DebounceMS < 0 {
			return Config{}, fmt.Errorf("debounce_ms must be >= 0, got %d", *raw.DebounceMS)
		}
		cfg.Debounce = time.Duration(*raw.DebounceMS) * time.Millisecond
	}
	if raw.RefreshLimitMS != nil && *raw.RefreshLimitMS >= 0 {
		cfg.RefreshLimit = time.Duration(*raw.RefreshLimitMS) * time.Millisecond
	}
	if raw.CacheSize != nil && *raw.CacheSize >= 0 {
		cfg.CacheSize = *raw.CacheSize
	}
	if cfg.RetryCap < cfg.RetryBase {
		cfg.RetryCap = cfg.RetryBase
	}

	if v := strings.TrimSpace(raw.LogDir); v != "" {
		cfg.LogDir = mustExpand(v)
	}
	cfg.PostHogKey = strings.TrimSpace(raw.PostHogKey)
	cfg.PostHogHost = strings.TrimSpace(raw.PostHogHost)

	return cfg, nil
}

// Describe converts the timing fields into controller options.
func (c Config) Describe() describe.Options {
	return describe.Options{
		StandardTimeout: c.RequestTimeout,
		DetailedTimeout: c.DetailedTimeout,
		MaxRetries:      c.MaxRetries,
		Debounce:        c.Debounce,
		RetryBase:       c.RetryBase,
		RetryCap:        c.RetryCap,
	}
}

// LogPath returns the path of the structured log file.
func (c Config) LogPath() string {
	if strings.TrimSpace(c.LogDir) == "" {
		return mustExpand(defaultLogDir + "/streetlens.log")
	}
	return filepath.Join(c.LogDir, "streetlens.log")
}

func millis(ms int, fallback time.Duration) time.Duration {
	if ms <= 0 {
		return fallback
	}
	return time.Duration(ms) * time.Millisecond
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
