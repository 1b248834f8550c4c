package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jaki95/songinfo/config"
	"github.com/jaki95/songinfo/internal/cache"
	"github.com/jaki95/songinfo/internal/catalog"
	"github.com/jaki95/songinfo/internal/resolver"
	"github.com/jaki95/songinfo/internal/scraper"
	"github.com/jaki95/songinfo/internal/storage"
)

// Service holds the long-lived components shared by the server and the CLI.
// It is built once at startup.
type Service struct {
	Resolver *resolver.Resolver
	Cache    *cache.TwoTier
	Store    storage.Store

	// Searcher is nil when catalog credentials are not configured.
	Searcher catalog.Searcher
}

// New wires scraper, persistent store, cache and resolver from cfg. ctx must
// outlive the service; it bounds catalog token requests.
func New(ctx context.Context, cfg *config.Config) (*Service, error) {
	sc, err := scraper.New(cfg.Scraper)
	if err != nil {
		return nil, fmt.Errorf("failed to create scraper: %w", err)
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s storage: %w", cfg.Storage.Type, err)
	}

	tiers, err := cache.New(cfg.Cache, store)
	if err != nil {
		closeStore(store)
		return nil, err
	}

	svc := &Service{
		Resolver: resolver.New(sc, tiers),
		Cache:    tiers,
		Store:    store,
	}

	if cfg.Spotify.Enabled() {
		client, err := catalog.NewSpotifyClient(ctx, cfg.Spotify)
		if err != nil {
			closeStore(store)
			return nil, fmt.Errorf("failed to create spotify client: %w", err)
		}
		svc.Searcher = client
	} else {
		slog.Warn("Spotify credentials not set, search is disabled")
	}

	slog.Info("Service initialized",
		"storage", cfg.Storage.Type,
		"cacheTTL", cfg.Cache.TTL,
		"cacheSize", cfg.Cache.MaxEntries,
		"search", svc.Searcher != nil,
	)
	return svc, nil
}

// Close releases the persistent store.
func (s *Service) Close() error {
	if s.Store == nil {
		return nil
	}
	return s.Store.Close()
}

func closeStore(store storage.Store) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		slog.Warn("Failed to close storage", "error", err)
	}
}
