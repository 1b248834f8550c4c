package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/gocolly/colly"

	"github.com/jaki95/songinfo/config"
	"github.com/jaki95/songinfo/internal/domain"
	"github.com/jaki95/songinfo/internal/slug"
)

// Scraper resolves song metadata from songbpm-style pages. A direct song
// URL is tried first and the artist index page is used as a fallback for
// songs published under hashed URLs.
type Scraper struct {
	baseURL   *url.URL
	collector *colly.Collector
}

// New creates a Scraper for the provider at cfg.BaseURL.
func New(cfg config.ScraperConfig) (*Scraper, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid scraper base URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid scraper base URL %q", cfg.BaseURL)
	}

	c := colly.NewCollector(
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
		colly.Async(false),
	)
	c.SetRequestTimeout(cfg.Timeout)
	// Non-2xx answers are classified by fetch instead of surfacing as errors
	c.ParseHTTPErrorResponse = true

	return &Scraper{
		baseURL:   base,
		collector: c,
	}, nil
}

// Scrape returns the metadata published for a song. A song the provider
// does not know yields an all-null record and a nil error. An error is only
// returned when both the direct page and the fallback failed upstream.
func (s *Scraper) Scrape(ctx context.Context, artist, title string) (domain.SongMetadata, error) {
	artistSlug := slug.Normalize(artist)
	titleSlug := slug.Normalize(title)
	if artistSlug == "" || titleSlug == "" {
		slog.Debug("Cannot build song URL", "artist", artist, "title", title)
		return domain.SongMetadata{}, nil
	}

	directURL := s.resolve("/@" + artistSlug + "/" + titleSlug)
	body, directErr := s.fetch(ctx, directURL)
	if directErr == nil {
		md := Extract(body)
		if md.Found() {
			slog.Debug("Found song info via direct URL", "url", directURL, "bpm", *md.BPM)
			return md, nil
		}
		slog.Debug("Direct page has no tempo", "url", directURL)
	} else {
		slog.Debug("Direct URL failed", "url", directURL, "error", directErr)
	}

	if err := ctx.Err(); err != nil {
		return domain.SongMetadata{}, err
	}

	md, fallbackErr := s.scrapeArtistPage(ctx, artistSlug, titleSlug)
	if fallbackErr == nil {
		return md, nil
	}
	if err := ctx.Err(); err != nil {
		return domain.SongMetadata{}, err
	}

	if transient(directErr) && transient(fallbackErr) {
		return domain.SongMetadata{}, fmt.Errorf("scrape %s/%s: %w", artistSlug, titleSlug, errors.Join(directErr, fallbackErr))
	}

	slog.Info("Song info not found", "artist", artistSlug, "title", titleSlug, "error", fallbackErr)
	return domain.SongMetadata{}, nil
}

// scrapeArtistPage looks the song up through the artist index page.
func (s *Scraper) scrapeArtistPage(ctx context.Context, artistSlug, titleSlug string) (domain.SongMetadata, error) {
	artistURL := s.resolve("/@" + artistSlug)
	body, err := s.fetch(ctx, artistURL)
	if err != nil {
		return domain.SongMetadata{}, err
	}

	href, ok := FindSongLink(body, artistSlug, titleSlug)
	if !ok {
		slog.Debug("No matching song on artist page", "url", artistURL, "title", titleSlug)
		return domain.SongMetadata{}, nil
	}

	songURL := s.resolve(href)
	body, err = s.fetch(ctx, songURL)
	if err != nil {
		return domain.SongMetadata{}, err
	}

	md := Extract(body)
	slog.Debug("Scraped song page from artist index", "url", songURL, "found", md.Found())
	return md, nil
}

// fetch retrieves a page and returns its body on any 2xx status.
func (s *Scraper) fetch(ctx context.Context, pageURL string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Clones share the transport but not callbacks
	c := s.collector.Clone()
	c.ParseHTTPErrorResponse = true
	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
		r.Headers.Set("Accept-Language", "en-US,en;q=0.9")
		r.Headers.Set("Connection", "keep-alive")
	})

	var (
		body   []byte
		status int
	)
	c.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, fmt.Errorf("GET %s: %w: %w", pageURL, ErrUpstream, err)
	}

	switch {
	case status == 404:
		return nil, fmt.Errorf("GET %s: %w", pageURL, ErrNotFound)
	case status < 200 || status > 299:
		return nil, &HTTPError{URL: pageURL, StatusCode: status}
	}

	return body, nil
}

func (s *Scraper) resolve(ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return s.baseURL.String() + ref
	}
	return s.baseURL.ResolveReference(u).String()
}
