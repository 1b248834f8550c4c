package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"

	"github.com/jaki95/songinfo/config"
	"github.com/jaki95/songinfo/internal/domain"
	"github.com/jaki95/songinfo/internal/slug"
)

// Tokens are replaced this long before their advertised expiry.
const tokenRefreshAhead = 60 * time.Second

// Searcher finds the single best catalog match for free text.
type Searcher interface {
	Search(ctx context.Context, text string) (*domain.SearchCandidate, error)
}

// SpotifyClient searches the Spotify track catalog with app credentials.
type SpotifyClient struct {
	client  *spotify.Client
	limiter *rate.Limiter
	limit   int
}

// credentialsSource requests a new token on every call; caching is left to
// the reuse wrapper so the refresh-ahead window applies.
type credentialsSource struct {
	ctx  context.Context
	conf *clientcredentials.Config
}

func (s credentialsSource) Token() (*oauth2.Token, error) {
	return s.conf.Token(s.ctx)
}

// NewSpotifyClient creates a client using the client-credentials flow. ctx
// bounds token requests and should live as long as the client.
func NewSpotifyClient(ctx context.Context, cfg config.SpotifyConfig) (*SpotifyClient, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("spotify client id and secret are required")
	}

	conf := &clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
	}
	tokens := oauth2.ReuseTokenSourceWithExpiry(nil, credentialsSource{ctx: ctx, conf: conf}, tokenRefreshAhead)
	httpClient := oauth2.NewClient(ctx, tokens)

	baseURL := cfg.APIBaseURL
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	limit := cfg.SearchLimit
	if limit <= 0 {
		limit = 10
	}
	perSecond := cfg.RateLimit
	if perSecond <= 0 {
		perSecond = 5
	}

	return &SpotifyClient{
		client:  spotify.New(httpClient, spotify.WithBaseURL(baseURL)),
		limiter: rate.NewLimiter(rate.Limit(perSecond), 1),
		limit:   limit,
	}, nil
}

// Search returns the best matching track for text, or nil when the catalog
// has no candidates.
func (c *SpotifyClient) Search(ctx context.Context, text string) (*domain.SearchCandidate, error) {
	query := slug.SearchQuery(text)
	if query == "" {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	res, err := c.client.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(c.limit))
	if err != nil {
		return nil, fmt.Errorf("spotify search failed: %w", err)
	}
	if res.Tracks == nil || len(res.Tracks.Tracks) == 0 {
		slog.Debug("No catalog results", "query", query)
		return nil, nil
	}

	candidates := make([]domain.SearchCandidate, 0, len(res.Tracks.Tracks))
	for _, t := range res.Tracks.Tracks {
		candidates = append(candidates, toCandidate(t))
	}

	best := PickBest(query, candidates)
	slog.Debug("Picked catalog match", "query", query, "title", best.Title, "artist", best.Artist, "candidates", len(candidates))
	return best, nil
}

func toCandidate(t spotify.FullTrack) domain.SearchCandidate {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	return domain.SearchCandidate{
		Title:       t.Name,
		Artist:      strings.Join(artists, ", "),
		ID:          string(t.ID),
		ExternalURL: t.ExternalURLs["spotify"],
		Popularity:  int(t.Popularity),
	}
}
