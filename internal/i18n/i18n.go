// Package i18n translates UI strings.
//
// Catalogs are flat TOML tables embedded in the binary, one per language.
// The active catalog is loaded lazily through a loader.Loader and dropped on
// SetLanguage. Lookups fall back to English, then to the key itself.
package i18n

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/samber/lo"

	"github.com/five82/streetlens/internal/loader"
)

// Fallback is the language used for unknown languages and missing keys.
const Fallback = "en"

//go:embed catalogs/*.toml
var catalogFS embed.FS

// Catalog maps message keys to format strings.
type Catalog map[string]string

// Languages lists the bundled languages in display order.
func Languages() []string {
	return []string{"en", "zh"}
}

// Supported reports whether lang has a bundled catalog.
func Supported(lang string) bool {
	return lo.Contains(Languages(), normalize(lang))
}

// LoadCatalog parses the embedded catalog for lang.
func LoadCatalog(lang string) (Catalog, error) {
	lang = normalize(lang)
	raw, err := catalogFS.ReadFile("catalogs/" + lang + ".toml")
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", lang, err)
	}
	var cat Catalog
	if err := toml.Unmarshal(raw, &cat); err != nil {
		return nil, fmt.Errorf("parse catalog %q: %w", lang, err)
	}
	return cat, nil
}

// Translator resolves message keys for the active language. It is safe for
// concurrent use.
type Translator struct {
	mu       sync.RWMutex
	lang     string
	active   *loader.Loader[Catalog]
	fallback *loader.Loader[Catalog]
}

// New returns a Translator for lang; unsupported languages use Fallback.
func New(lang string) *Translator {
	t := &Translator{
		fallback: loader.New(func(context.Context) (Catalog, error) {
			return LoadCatalog(Fallback)
		}),
	}
	t.lang = lo.Ternary(Supported(lang), normalize(lang), Fallback)
	t.active = loader.New(t.loadActive)
	return t
}

func (t *Translator) loadActive(context.Context) (Catalog, error) {
	return LoadCatalog(t.Language())
}

// Language returns the active language code.
func (t *Translator) Language() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lang
}

// SetLanguage switches the active catalog and reports the language actually
// selected.
func (t *Translator) SetLanguage(lang string) string {
	next := lo.Ternary(Supported(lang), normalize(lang), Fallback)
	t.mu.Lock()
	changed := next != t.lang
	t.lang = next
	t.mu.Unlock()
	if changed {
		t.active.Reset()
	}
	return next
}

// Next returns the language after the active one, wrapping around.
func (t *Translator) Next() string {
	langs := Languages()
	_, idx, _ := lo.FindIndexOf(langs, func(l string) bool { return l == t.Language() })
	return langs[(idx+1)%len(langs)]
}

// T looks key up and formats it with args when any are given.
func (t *Translator) T(key string, args ...any) string {
	format, ok := t.lookup(t.active, key)
	if !ok {
		format, ok = t.lookup(t.fallback, key)
	}
	if !ok {
		format = key
	}
	if len(args) == 0 {
		return format
	}
	return fmt.Sprintf(format, args...)
}

func (t *Translator) lookup(l *loader.Loader[Catalog], key string) (string, bool) {
	cat, err := l.Get(context.Background())
	if err != nil {
		return "", false
	}
	s, ok := cat[key]
	return s, ok
}

func normalize(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}
