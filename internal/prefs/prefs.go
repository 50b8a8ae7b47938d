// Package prefs handles streetlens user preferences persistence.
// Preferences are stored in ~/.config/streetlens/prefs.toml.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Exploration modes.
const (
	ModeRandom = "random"
	ModeCustom = "custom"
)

// Prefs holds user preferences for streetlens.
type Prefs struct {
	Theme               string `toml:"theme"`
	Language            string `toml:"language"`
	ExplorationMode     string `toml:"exploration_mode"`
	ExplorationInterest string `toml:"exploration_interest"`
	SessionID           string `toml:"session_id"`
}

const (
	defaultPrefsPath = "~/.config/streetlens/prefs.toml"
	defaultTheme     = "Nightfox"
	defaultLanguage  = "en"
)

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Defaults returns the preferences used when nothing is stored.
func Defaults() Prefs {
	return Prefs{Theme: defaultTheme, Language: defaultLanguage, ExplorationMode: ModeRandom}
}

// Load reads preferences from the given path, falling back to defaults if missing.
func Load(path string) (Prefs, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Defaults(), nil
	}

	prefs := Defaults()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return prefs, nil
		}
		return prefs, nil // Graceful degradation
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs, nil // Graceful degradation
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Defaults(), nil // Graceful degradation
	}

	return prefs.Normalize(), nil
}

// Normalize fills blanks with defaults. Custom exploration without an
// interest falls back to random.
func (p Prefs) Normalize() Prefs {
	p.Theme = strings.TrimSpace(p.Theme)
	if p.Theme == "" {
		p.Theme = defaultTheme
	}
	p.Language = strings.ToLower(strings.TrimSpace(p.Language))
	if p.Language == "" {
		p.Language = defaultLanguage
	}
	p.ExplorationInterest = strings.TrimSpace(p.ExplorationInterest)
	p.SessionID = strings.TrimSpace(p.SessionID)
	switch strings.ToLower(strings.TrimSpace(p.ExplorationMode)) {
	case ModeCustom:
		p.ExplorationMode = ModeCustom
	default:
		p.ExplorationMode = ModeRandom
	}
	if p.ExplorationMode == ModeCustom && p.ExplorationInterest == "" {
		p.ExplorationMode = ModeRandom
	}
	return p
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	if err := os.WriteFile(resolved, bytes, 0o644); err != nil {
		return fmt.Errorf("write prefs: %w", err)
	}

	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
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
