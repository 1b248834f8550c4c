// Package cache layers a bounded in-process tier over an optional durable
// store. Both tiers expire entries after the same TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/jaki95/songinfo/config"
	"github.com/jaki95/songinfo/internal/domain"
	"github.com/jaki95/songinfo/internal/storage"
)

type entry struct {
	data     domain.SongMetadata
	storedAt time.Time
}

// TwoTier is a fast in-memory tier over a persistent storage.Store.
//
// The fast tier evicts in insertion order: reads use Peek so they never
// refresh an entry's position, and re-setting a key counts as a new insert.
type TwoTier struct {
	fast  *lru.Cache[string, entry]
	store storage.Store
	ttl   time.Duration
	now   func() time.Time
}

type Option func(*TwoTier)

// WithClock replaces the time source used for expiry.
func WithClock(now func() time.Time) Option {
	return func(c *TwoTier) {
		c.now = now
	}
}

// New creates a TwoTier cache. store may be nil, in which case only the
// fast tier is used.
func New(cfg config.CacheConfig, store storage.Store, opts ...Option) (*TwoTier, error) {
	if cfg.MaxEntries <= 0 {
		return nil, fmt.Errorf("cache size must be positive, got %d", cfg.MaxEntries)
	}
	if cfg.TTL <= 0 {
		return nil, fmt.Errorf("cache TTL must be positive, got %s", cfg.TTL)
	}

	fast, err := lru.New[string, entry](cfg.MaxEntries)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}

	c := &TwoTier{
		fast:  fast,
		store: store,
		ttl:   cfg.TTL,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Get looks key up in the fast tier, then in the persistent tier. A
// persistent hit is promoted into the fast tier with a fresh timestamp.
// Persistent tier failures are logged and treated as misses.
func (c *TwoTier) Get(ctx context.Context, key string) (domain.SongMetadata, domain.Provenance, bool) {
	if e, ok := c.fast.Peek(key); ok {
		if c.now().Sub(e.storedAt) <= c.ttl {
			return e.data, domain.ProvenanceMemory, true
		}
		c.fast.Remove(key)
	}

	if c.store == nil {
		return domain.SongMetadata{}, "", false
	}

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Persistent cache read failed", "key", key, "error", err)
		}
		return domain.SongMetadata{}, "", false
	}

	var persisted domain.CacheEntry
	if err := json.Unmarshal(raw, &persisted); err != nil {
		slog.Warn("Discarding unreadable persistent cache entry", "key", key, "error", err)
		return domain.SongMetadata{}, "", false
	}

	c.fast.Add(key, entry{data: persisted.Data, storedAt: c.now()})
	return persisted.Data, domain.ProvenancePersistent, true
}

// Set stores data in the fast tier and writes it through to the persistent
// tier with the same TTL.
func (c *TwoTier) Set(ctx context.Context, key string, data domain.SongMetadata) {
	now := c.now()
	c.fast.Add(key, entry{data: data, storedAt: now})

	if c.store == nil {
		return
	}

	raw, err := json.Marshal(domain.CacheEntry{
		Key:       key,
		Data:      data,
		Timestamp: now.UnixMilli(),
	})
	if err != nil {
		slog.Warn("Failed to encode cache entry", "key", key, "error", err)
		return
	}

	if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
		slog.Warn("Persistent cache write failed", "key", key, "error", err)
	}
}

// Len returns the number of entries in the fast tier, expired ones included.
func (c *TwoTier) Len() int {
	return c.fast.Len()
}

// Keys returns the fast tier keys from oldest to newest.
func (c *TwoTier) Keys() []string {
	return c.fast.Keys()
}
