// Package session owns the opaque session identifier sent with every API
// request as X-Session-ID.
package session

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/five82/streetlens/internal/prefs"
)

// Store persists the identifier between runs.
type Store interface {
	LoadSessionID() (string, error)
	SaveSessionID(id string) error
}

// Provider creates the identifier at most once and hands it out. It is safe
// for concurrent use.
type Provider struct {
	store  Store
	logger *slog.Logger
	newID  func() string

	mu sync.Mutex
	id string
}

// NewProvider returns a Provider backed by store, which may be nil for an
// in-memory session.
func NewProvider(store Store, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Provider{store: store, logger: logger, newID: uuid.NewString}
}

// ID returns the session identifier, loading or creating it on first use.
func (p *Provider) ID() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.id != "" {
		return p.id
	}
	if p.store != nil {
		id, err := p.store.LoadSessionID()
		if err != nil {
			p.logger.Warn("load session id", "error", err)
		}
		if id = strings.TrimSpace(id); id != "" {
			p.id = id
			return p.id
		}
	}

	p.id = p.newID()
	if p.store != nil {
		if err := p.store.SaveSessionID(p.id); err != nil {
			p.logger.Warn("save session id", "error", err)
		}
	}
	p.logger.Info("created session", "session_id", Short(p.id))
	return p.id
}

// Short returns the first eight characters of id for display.
func Short(id string) string {
	id = strings.TrimSpace(id)
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

// PrefsStore keeps the identifier in the preferences file.
type PrefsStore struct {
	Path string
}

// LoadSessionID reads session_id from the preferences file.
func (s PrefsStore) LoadSessionID() (string, error) {
	p, err := prefs.Load(s.Path)
	if err != nil {
		return "", fmt.Errorf("load prefs: %w", err)
	}
	return p.SessionID, nil
}

// SaveSessionID writes id while keeping every other preference.
func (s PrefsStore) SaveSessionID(id string) error {
	p, err := prefs.Load(s.Path)
	if err != nil {
		return fmt.Errorf("load prefs: %w", err)
	}
	p.SessionID = id
	return prefs.Save(s.Path, p)
}
