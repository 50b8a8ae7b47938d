// Package telemetry reports anonymous usage events to PostHog.
package telemetry

import (
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/posthog/posthog-go"
)

// Event names.
const (
	EventLocationViewed     = "location_viewed"
	EventDescriptionLoaded  = "description_loaded"
	EventDescriptionFailed  = "description_failed"
	EventExplorationChanged = "exploration_changed"
	EventAppStarted         = "app_started"
)

// IDSource supplies the distinct id events are attributed to.
type IDSource interface {
	ID() string
}

// capturer is the part of posthog.Client the tracker uses.
type capturer interface {
	Enqueue(posthog.Message) error
	Close() error
}

// Tracker enqueues events. A Tracker without a PostHog key does nothing.
type Tracker struct {
	client   capturer
	ids      IDSource
	logger   *slog.Logger
	version  string
	closeOne sync.Once
}

// New builds a Tracker. An empty key yields a no-op tracker.
func New(key, host, version string, ids IDSource, logger *slog.Logger) (*Tracker, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	t := &Tracker{ids: ids, logger: logger.With("component", "telemetry"), version: version}
	key = strings.TrimSpace(key)
	if key == "" {
		return t, nil
	}
	cfg := posthog.Config{}
	if host = strings.TrimSpace(host); host != "" {
		cfg.Endpoint = host
	}
	client, err := posthog.NewWithConfig(key, cfg)
	if err != nil {
		return t, fmt.Errorf("init posthog: %w", err)
	}
	t.client = client
	return t, nil
}

// Enabled reports whether events are sent anywhere.
func (t *Tracker) Enabled() bool {
	return t != nil && t.client != nil
}

// Track enqueues event with props. Failures are logged, never returned.
func (t *Tracker) Track(event string, props map[string]any) {
	if !t.Enabled() {
		return
	}
	properties := posthog.NewProperties().
		Set("app_version", t.version).
		Set("os", runtime.GOOS)
	for k, v := range props {
		properties.Set(k, v)
	}
	distinct := "anonymous"
	if t.ids != nil {
		if id := t.ids.ID(); id != "" {
			distinct = id
		}
	}
	if err := t.client.Enqueue(posthog.Capture{
		DistinctId: distinct,
		Event:      event,
		Properties: properties,
	}); err != nil {
		t.logger.Warn("enqueue telemetry event", "event", event, "error", err)
	}
}

// Close flushes pending events.
func (t *Tracker) Close() {
	if !t.Enabled() {
		return
	}
	t.closeOne.Do(func() {
		if err := t.client.Close(); err != nil {
			t.logger.Warn("close telemetry", "error", err)
		}
	})
}
