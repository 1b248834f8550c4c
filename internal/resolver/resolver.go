package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jaki95/songinfo/internal/domain"
)

// ErrMissingInput is returned when artist or title is blank.
var ErrMissingInput = errors.New("artist and title are required")

type Scraper interface {
	Scrape(ctx context.Context, artist, title string) (domain.SongMetadata, error)
}

type Cache interface {
	Get(ctx context.Context, key string) (domain.SongMetadata, domain.Provenance, bool)
	Set(ctx context.Context, key string, data domain.SongMetadata)
}

// Result is a resolved record together with where it was served from.
type Result struct {
	Metadata   domain.SongMetadata
	Provenance domain.Provenance
}

// Resolver serves song metadata from cache, scraping on a miss.
type Resolver struct {
	scraper Scraper
	cache   Cache
}

func New(scraper Scraper, cache Cache) *Resolver {
	return &Resolver{
		scraper: scraper,
		cache:   cache,
	}
}

// Resolve returns metadata for a song. Any scrape result is cached,
// including an all-null one, so unknown songs are not scraped again until
// the entry expires. Scrape errors are returned and nothing is cached.
func (r *Resolver) Resolve(ctx context.Context, artist, title string) (*Result, error) {
	if strings.TrimSpace(artist) == "" || strings.TrimSpace(title) == "" {
		return nil, ErrMissingInput
	}

	key := domain.SongCacheKey(artist, title)
	if data, prov, ok := r.cache.Get(ctx, key); ok {
		slog.Debug("Cache hit", "key", key, "layer", prov)
		return &Result{Metadata: data, Provenance: prov}, nil
	}

	data, err := r.scraper.Scrape(ctx, artist, title)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %q by %q: %w", title, artist, err)
	}

	r.cache.Set(ctx, key, data)
	slog.Info("Resolved song info", "artist", artist, "title", title, "found", data.Found())

	return &Result{Metadata: data, Provenance: domain.ProvenanceFresh}, nil
}
