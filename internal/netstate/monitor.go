package netstate

import (
	"sync"
	"sync/atomic"
)

// Monitor holds the process-wide online flag. Only connectivity signals
// write it; everything else reads.
type Monitor struct {
	online atomic.Bool

	mu     sync.Mutex
	nextID int
	subs   map[int]func(bool)
}

// NewMonitor returns a monitor starting in the given state.
func NewMonitor(online bool) *Monitor {
	m := &Monitor{subs: make(map[int]func(bool))}
	m.online.Store(online)
	return m
}

// Online reports the last known connectivity.
func (m *Monitor) Online() bool {
	return m.online.Load()
}

// Set records connectivity and notifies subscribers when it changed.
// Subscribers run on the caller's goroutine, outside the monitor lock.
func (m *Monitor) Set(online bool) {
	if m.online.Swap(online) == online {
		return
	}

	m.mu.Lock()
	fns := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(online)
	}
}

// Subscribe registers fn for transitions and returns its removal func.
func (m *Monitor) Subscribe(fn func(online bool)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subs, id)
			m.mu.Unlock()
		})
	}
}
