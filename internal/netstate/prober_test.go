package netstate

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	baseInterval := 2 * time.Second

	tests := []struct {
		name     string
		failures int
		want     time.Duration
	}{
		{"zero failures", 0, 2 * time.Second},
		{"negative failures", -1, 2 * time.Second},
		{"one failure", 1, 4 * time.Second},
		{"two failures", 2, 8 * time.Second},
		{"three failures", 3, 16 * time.Second},
		{"four failures capped", 4, 30 * time.Second}, // 32s capped to 30s
		{"many failures capped", 10, 30 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := calculateBackoff(tt.failures, baseInterval)
			if got != tt.want {
				t.Errorf("calculateBackoff(%d, %v) = %v, want %v", tt.failures, baseInterval, got, tt.want)
			}
		})
	}
}

func TestCalculateBackoff_MaxCap(t *testing.T) {
	baseInterval := 2 * time.Second
	for failures := 0; failures <= 20; failures++ {
		got := calculateBackoff(failures, baseInterval)
		if got > maxBackoff {
			t.Errorf("calculateBackoff(%d, %v) = %v, exceeds maxBackoff %v", failures, baseInterval, got, maxBackoff)
		}
	}
}

func TestProbeOnce_OfflineAfterConsecutiveFailures(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := NewMonitor(true)
	fail := func(context.Context) error { return errors.New("connection refused") }

	failures := probeOnce(context.Background(), m, fail, time.Second, 0, logger)
	if failures != 1 {
		t.Fatalf("failures = %d, want 1", failures)
	}
	if !m.Online() {
		t.Fatal("Online() = false after one failure, want true")
	}

	failures = probeOnce(context.Background(), m, fail, time.Second, failures, logger)
	if failures != 2 {
		t.Fatalf("failures = %d, want 2", failures)
	}
	if m.Online() {
		t.Fatal("Online() = true after two failures, want false")
	}

	ok := func(context.Context) error { return nil }
	failures = probeOnce(context.Background(), m, ok, time.Second, failures, logger)
	if failures != 0 {
		t.Fatalf("failures = %d, want 0 after success", failures)
	}
	if !m.Online() {
		t.Fatal("Online() = false after success, want true")
	}
}

func TestStartProber_FlipsMonitor(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	m := NewMonitor(true)
	transitions := make(chan bool, 4)
	m.Subscribe(func(online bool) { transitions <- online })

	StartProber(ctx, m, func(context.Context) error {
		return errors.New("down")
	}, 5*time.Millisecond, slog.New(slog.NewTextHandler(io.Discard, nil)))

	select {
	case online := <-transitions:
		if online {
			t.Fatal("first transition = online, want offline")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("prober never marked the monitor offline")
	}
}
