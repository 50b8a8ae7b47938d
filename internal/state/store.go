package state

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/five82/streetlens/internal/streetapi"
)

// ErrBusy means a location fetch is already in flight.
var ErrBusy = errors.New("location fetch already in progress")

// RateLimitError means the previous fetch started too recently.
type RateLimitError struct {
	Wait time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("next location available in %s", e.Wait.Round(100*time.Millisecond))
}

// Snapshot represents the latest location data available to the UI.
type Snapshot struct {
	Location            streetapi.Location
	HasLocation         bool
	Loading             bool
	Viewed              int // Locations successfully fetched this session
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive fetch failures
}

// IsOffline returns true when the API has failed several fetches in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the current location. The zero
// value has no rate limit.
type Store struct {
	// MinInterval is the minimum gap between two Begin calls.
	MinInterval time.Duration

	mu        sync.RWMutex
	snapshot  Snapshot
	lastBegin time.Time
	now       func() time.Time
}

// NewStore returns a store enforcing minInterval between fetches.
func NewStore(minInterval time.Duration) *Store {
	return &Store{MinInterval: minInterval}
}

// Begin reserves the single fetch slot. It fails with ErrBusy while a fetch
// is in flight and with *RateLimitError when called again too soon.
func (s *Store) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snapshot.Loading {
		return ErrBusy
	}
	now := s.clock()
	if !s.lastBegin.IsZero() && s.MinInterval > 0 {
		if elapsed := now.Sub(s.lastBegin); elapsed < s.MinInterval {
			return &RateLimitError{Wait: s.MinInterval - elapsed}
		}
	}
	s.lastBegin = now
	s.snapshot.Loading = true
	return nil
}

// Update finishes the fetch started by Begin. When err is non-nil the
// previous location is kept but the error is recorded for visibility.
func (s *Store) Update(loc *streetapi.Location, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.snapshot.Loading = false
	s.snapshot.LastUpdated = s.clock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.ConsecutiveFailures++
		return
	}

	if loc != nil {
		s.snapshot.Location = *loc
		s.snapshot.HasLocation = true
		s.snapshot.Viewed++
	}
	s.snapshot.LastError = nil
	s.snapshot.ConsecutiveFailures = 0
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func (s *Store) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
