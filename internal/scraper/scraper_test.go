package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaki95/songinfo/config"
)

// fakeProvider serves canned pages by path and records every request.
type fakeProvider struct {
	mu       sync.Mutex
	pages    map[string]string
	statuses map[string]int
	requests []string
	agents   []string
}

func (p *fakeProvider) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.Lock()
	p.requests = append(p.requests, r.URL.Path)
	p.agents = append(p.agents, r.UserAgent())
	status, hasStatus := p.statuses[r.URL.Path]
	page, hasPage := p.pages[r.URL.Path]
	p.mu.Unlock()

	if hasStatus {
		w.WriteHeader(status)
		return
	}
	if !hasPage {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page))
}

func (p *fakeProvider) Requests() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.requests...)
}

func newTestScraper(t *testing.T, provider *fakeProvider) *Scraper {
	t.Helper()

	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)

	s, err := New(config.ScraperConfig{
		BaseURL:   srv.URL,
		Timeout:   2 * time.Second,
		UserAgent: "songinfo-test/1.0",
	})
	require.NoError(t, err)
	return s
}

func TestScrape_DirectHit(t *testing.T) {
	provider := &fakeProvider{
		pages: map[string]string{
			"/@the-weeknd/blinding-lights": songPage,
		},
	}
	s := newTestScraper(t, provider)

	md, err := s.Scrape(context.Background(), "The Weeknd", "Blinding Lights")
	require.NoError(t, err)

	require.NotNil(t, md.BPM)
	assert.Equal(t, 171, *md.BPM)
	assert.Equal(t, "F minor", *md.Key)
	assert.Equal(t, []string{"/@the-weeknd/blinding-lights"}, provider.Requests())
	assert.Equal(t, "songinfo-test/1.0", provider.agents[0])
}

func TestScrape_FeaturedArtistIsStrippedFromURL(t *testing.T) {
	provider := &fakeProvider{
		pages: map[string]string{
			"/@dua-lipa/levitating": songPage,
		},
	}
	s := newTestScraper(t, provider)

	md, err := s.Scrape(context.Background(), "Dua Lipa", "Levitating (feat. DaBaby)")
	require.NoError(t, err)
	assert.True(t, md.Found())
}

func TestScrape_FallbackAfterDirect404(t *testing.T) {
	provider := &fakeProvider{
		pages: map[string]string{
			"/@daniel-caesar":                         artistPage,
			"/@daniel-caesar/superpowers-CyBjWG7f7w": `<dl><dt>BPM</dt><dd>130</dd><dt>Key</dt><dd>F minor</dd><dt>Genre</dt><dd>R&amp;B</dd></dl>`,
		},
	}
	s := newTestScraper(t, provider)

	md, err := s.Scrape(context.Background(), "Daniel Caesar", "Superpowers")
	require.NoError(t, err)

	require.NotNil(t, md.BPM)
	assert.Equal(t, 130, *md.BPM)
	assert.Equal(t, "R&B", *md.Genre)
	assert.Equal(t, []string{
		"/@daniel-caesar/superpowers",
		"/@daniel-caesar",
		"/@daniel-caesar/superpowers-CyBjWG7f7w",
	}, provider.Requests())
}

func TestScrape_FallbackWhenDirectPageHasNoTempo(t *testing.T) {
	provider := &fakeProvider{
		pages: map[string]string{
			"/@daniel-caesar/superpowers":            `<dl><dt>Key</dt><dd>F minor</dd></dl>`,
			"/@daniel-caesar":                         artistPage,
			"/@daniel-caesar/superpowers-CyBjWG7f7w": `<dl><dt>BPM</dt><dd>130</dd></dl>`,
		},
	}
	s := newTestScraper(t, provider)

	md, err := s.Scrape(context.Background(), "Daniel Caesar", "Superpowers")
	require.NoError(t, err)
	require.NotNil(t, md.BPM)
	assert.Equal(t, 130, *md.BPM)
	assert.Len(t, provider.Requests(), 3)
}

func TestScrape_NotFoundAnywhere(t *testing.T) {
	provider := &fakeProvider{
		pages: map[string]string{
			"/@daniel-caesar": artistPage,
		},
	}
	s := newTestScraper(t, provider)

	md, err := s.Scrape(context.Background(), "Daniel Caesar", "Not A Real Song")
	require.NoError(t, err)
	assert.True(t, md.IsEmpty())
}

func TestScrape_UnknownArtist(t *testing.T) {
	s := newTestScraper(t, &fakeProvider{})

	md, err := s.Scrape(context.Background(), "Nobody", "Nothing")
	require.NoError(t, err)
	assert.True(t, md.IsEmpty())
}

func TestScrape_EmptySlugSkipsFetching(t *testing.T) {
	provider := &fakeProvider{}
	s := newTestScraper(t, provider)

	md, err := s.Scrape(context.Background(), "!!!", "Song")
	require.NoError(t, err)
	assert.True(t, md.IsEmpty())
	assert.Empty(t, provider.Requests())
}

func TestScrape_BothAttemptsFailUpstream(t *testing.T) {
	provider := &fakeProvider{
		statuses: map[string]int{
			"/@the-weeknd/blinding-lights": http.StatusInternalServerError,
			"/@the-weeknd":                 http.StatusBadGateway,
		},
	}
	s := newTestScraper(t, provider)

	_, err := s.Scrape(context.Background(), "The Weeknd", "Blinding Lights")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusInternalServerError, httpErr.StatusCode)

	// no same-URL retries
	assert.Len(t, provider.Requests(), 2)
}

func TestScrape_TransientDirectThenFallback404(t *testing.T) {
	provider := &fakeProvider{
		statuses: map[string]int{
			"/@the-weeknd/blinding-lights": http.StatusServiceUnavailable,
		},
	}
	s := newTestScraper(t, provider)

	md, err := s.Scrape(context.Background(), "The Weeknd", "Blinding Lights")
	require.NoError(t, err)
	assert.True(t, md.IsEmpty())
}

func TestScrape_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	s, err := New(config.ScraperConfig{
		BaseURL:   srv.URL,
		Timeout:   time.Second,
		UserAgent: "songinfo-test/1.0",
	})
	require.NoError(t, err)

	_, err = s.Scrape(context.Background(), "The Weeknd", "Blinding Lights")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestScrape_CanceledContext(t *testing.T) {
	provider := &fakeProvider{}
	s := newTestScraper(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Scrape(ctx, "The Weeknd", "Blinding Lights")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, provider.Requests())
}

func TestNew_InvalidBaseURL(t *testing.T) {
	_, err := New(config.ScraperConfig{BaseURL: "not a url"})
	assert.Error(t, err)
}
