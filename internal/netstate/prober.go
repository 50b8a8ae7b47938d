package netstate

import (
	"context"
	"log/slog"
	"time"
)

const (
	defaultProbeInterval = 5 * time.Second
	maxBackoff           = 30 * time.Second

	// offlineAfter matches the number of consecutive failed probes before the
	// client is declared offline.
	offlineAfter = 2
)

// ProbeFunc checks reachability of the API. Any nil return means online.
type ProbeFunc func(ctx context.Context) error

// StartProber launches a background goroutine that keeps monitor in sync
// with probe results. It returns immediately. While probes fail, the wait
// between them grows exponentially up to maxBackoff.
func StartProber(ctx context.Context, monitor *Monitor, probe ProbeFunc, interval time.Duration, logger *slog.Logger) {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	go func() {
		failures := 0
		for {
			failures = probeOnce(ctx, monitor, probe, interval, failures, logger)

			wait := interval
			if failures > 0 {
				wait = calculateBackoff(failures-1, interval)
			}
			t := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
		}
	}()
}

// probeOnce runs a single probe bounded by interval and returns the updated
// consecutive failure count.
func probeOnce(ctx context.Context, monitor *Monitor, probe ProbeFunc, interval time.Duration, failures int, logger *slog.Logger) int {
	probeCtx, cancel := context.WithTimeout(ctx, interval)
	defer cancel()

	if err := probe(probeCtx); err != nil {
		if ctx.Err() != nil {
			return failures
		}
		failures++
		logger.Debug("connectivity probe failed", "error", err, "failures", failures)
		if failures >= offlineAfter && monitor.Online() {
			logger.Warn("api unreachable, marking offline", "error", err)
			monitor.Set(false)
		}
		return failures
	}

	if !monitor.Online() {
		logger.Info("api reachable again, marking online")
		monitor.Set(true)
	}
	return 0
}

// calculateBackoff returns base doubled per failure, capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	delay := base
	for i := 0; i < failures; i++ {
		delay *= 2
		if delay >= maxBackoff {
			return maxBackoff
		}
	}
	return delay
}
