package state

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/five82/streetlens/internal/streetapi"
)

func TestStore_UpdateAndSnapshot(t *testing.T) {
	var s Store

	if err := s.Begin(); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if !s.Snapshot().Loading {
		t.Fatal("Loading = false after Begin, want true")
	}

	before := time.Now()
	s.Update(&streetapi.Location{PanoID: "pano_1", City: "Oslo"}, nil)

	snap := s.Snapshot()
	if !snap.HasLocation || snap.Location.PanoID != "pano_1" {
		t.Fatalf("snapshot location = %#v, want pano_1", snap.Location)
	}
	if snap.Loading {
		t.Fatal("Loading = true after Update, want false")
	}
	if snap.Viewed != 1 {
		t.Fatalf("Viewed = %d, want 1", snap.Viewed)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update(&streetapi.Location{PanoID: "pano_1"}, nil)
	prev := s.Snapshot()

	origErr := errors.New("boom")
	s.Update(nil, origErr)

	snap := s.Snapshot()
	if snap.Location != prev.Location || !snap.HasLocation {
		t.Fatalf("location changed on error: got %#v want %#v", snap.Location, prev.Location)
	}
	if snap.LastError == nil || snap.LastError.Error() != "boom" {
		t.Fatalf("LastError = %v, want boom", snap.LastError)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatal("LastError should wrap the original error")
	}
	if reflect.ValueOf(snap.LastError).Pointer() == reflect.ValueOf(origErr).Pointer() {
		t.Fatalf("Snapshot should clone error instance")
	}
}

func TestStore_BeginIsSingleFlight(t *testing.T) {
	var s Store

	if err := s.Begin(); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	if err := s.Begin(); !errors.Is(err, ErrBusy) {
		t.Fatalf("second Begin = %v, want ErrBusy", err)
	}
	s.Update(nil, errors.New("fail"))
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin after Update returned error: %v", err)
	}
}

func TestStore_BeginRateLimited(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s := NewStore(time.Second)
	s.now = func() time.Time { return now }

	if err := s.Begin(); err != nil {
		t.Fatalf("Begin returned error: %v", err)
	}
	s.Update(&streetapi.Location{PanoID: "a"}, nil)

	now = now.Add(300 * time.Millisecond)
	err := s.Begin()
	var rl *RateLimitError
	if !errors.As(err, &rl) {
		t.Fatalf("Begin = %v, want *RateLimitError", err)
	}
	if rl.Wait != 700*time.Millisecond {
		t.Fatalf("Wait = %v, want 700ms", rl.Wait)
	}

	now = now.Add(700 * time.Millisecond)
	if err := s.Begin(); err != nil {
		t.Fatalf("Begin after interval returned error: %v", err)
	}
}

func TestStore_ConsecutiveFailures(t *testing.T) {
	var s Store

	snap := s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("fresh store: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(nil, errors.New("fail 1"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("after 1 failure: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(nil, errors.New("fail 2"))
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("after 2 failures: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(&streetapi.Location{PanoID: "p"}, nil)
	snap = s.Snapshot()
	if snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("after success: failures=%d offline=%v", snap.ConsecutiveFailures, snap.IsOffline())
	}
}
