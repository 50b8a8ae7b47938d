package streetapi

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Describer is anything that can fetch a description.
type Describer interface {
	Describe(ctx context.Context, kind DescriptionKind, subjectID, lang string) (Description, error)
}

type cacheKey struct {
	kind      DescriptionKind
	subjectID string
	lang      string
}

// CachedDescriptions keeps recently fetched descriptions so revisiting a
// panorama, or toggling between standard and detailed text, does not hit the
// API again. Failures are never cached.
type CachedDescriptions struct {
	next  Describer
	cache *lru.Cache[cacheKey, Description]
}

// NewCachedDescriptions wraps next with an LRU of the given size.
func NewCachedDescriptions(next Describer, size int) (*CachedDescriptions, error) {
	if next == nil {
		return nil, fmt.Errorf("describer is nil")
	}
	cache, err := lru.New[cacheKey, Description](size)
	if err != nil {
		return nil, fmt.Errorf("create description cache: %w", err)
	}
	return &CachedDescriptions{next: next, cache: cache}, nil
}

// Describe serves from cache when possible.
func (c *CachedDescriptions) Describe(ctx context.Context, kind DescriptionKind, subjectID, lang string) (Description, error) {
	key := cacheKey{kind: kind, subjectID: strings.TrimSpace(subjectID), lang: strings.TrimSpace(lang)}
	if desc, ok := c.cache.Get(key); ok {
		return desc, nil
	}
	desc, err := c.next.Describe(ctx, kind, subjectID, lang)
	if err != nil {
		return Description{}, err
	}
	if strings.TrimSpace(desc.Text) != "" {
		c.cache.Add(key, desc)
	}
	return desc, nil
}

// Purge drops every cached description.
func (c *CachedDescriptions) Purge() {
	c.cache.Purge()
}

// Len returns the number of cached entries.
func (c *CachedDescriptions) Len() int {
	return c.cache.Len()
}
