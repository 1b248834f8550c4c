package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jaki95/songinfo/internal/slug"
)

// healthCheck godoc
// @Summary Health check
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (s *Server) healthCheck(c *gin.Context) {
	entries := 0
	if s.deps.Cache != nil {
		entries = s.deps.Cache.Len()
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:       "ok",
		CacheEntries: entries,
	})
}

// search godoc
// @Summary Find the best catalog match for free text
// @Description Always returns an array with zero or one element. A query with no match yields a placeholder with source "not-found".
// @Produce json
// @Param query query string true "Search text"
// @Success 200 {array} SearchResult
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/search [get]
func (s *Server) search(c *gin.Context) {
	query := strings.TrimSpace(c.Query("query"))
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   codeMissingQuery,
			Example: exampleSearchURL,
		})
		return
	}

	if slug.SearchQuery(query) == "" {
		c.JSON(http.StatusOK, []SearchResult{})
		return
	}

	if s.deps.Searcher == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   codeServerError,
			Details: "catalog search is not configured",
		})
		return
	}

	best, err := s.deps.Searcher.Search(c.Request.Context(), query)
	if err != nil {
		logHandlerError(c, "Catalog search failed", err, "query", query)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   codeServerError,
			Details: err.Error(),
		})
		return
	}

	if best == nil {
		c.JSON(http.StatusOK, []SearchResult{{
			Title:  query,
			Artist: "Unknown",
			Source: sourceNotFound,
		}})
		return
	}

	c.JSON(http.StatusOK, []SearchResult{{
		Title:      best.Title,
		Artist:     best.Artist,
		TrackID:    &best.ID,
		SpotifyURL: &best.ExternalURL,
		Source:     sourceSpotify,
	}})
}

// songInfo godoc
// @Summary Resolve tempo, key and genre for a song
// @Produce json
// @Param artist query string true "Artist name"
// @Param title query string true "Song title"
// @Success 200 {object} SongInfoResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/song-info [get]
func (s *Server) songInfo(c *gin.Context) {
	artist := strings.TrimSpace(c.Query("artist"))
	title := strings.TrimSpace(c.Query("title"))
	if artist == "" || title == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   codeMissingParameters,
			Example: exampleSongInfoURL,
		})
		return
	}

	res, err := s.deps.Resolver.Resolve(c.Request.Context(), artist, title)
	if err != nil {
		logHandlerError(c, "Song info lookup failed", err, "artist", artist, "title", title)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   codeDetectionFailed,
			Details: err.Error(),
		})
		return
	}

	resp := SongInfoResponse{
		Artist: artist,
		Title:  title,
		BPM:    res.Metadata.BPM,
		Key:    res.Metadata.Key,
		Genre:  res.Metadata.Genre,
		Source: sourceNotFound,
		Cached: res.Provenance.Cached(),
	}
	if res.Metadata.Found() {
		resp.Source = sourceSongBPM
	}
	if resp.Cached {
		layer := string(res.Provenance)
		resp.CacheLayer = &layer
	}

	c.JSON(http.StatusOK, resp)
}

// features godoc
// @Summary Audio features for a catalog track
// @Description Resolves tempo, key and genre for the track's artist and title.
// @Produce json
// @Param trackId path string true "Catalog track id"
// @Param artist query string true "Artist name"
// @Param title query string true "Song title"
// @Success 200 {object} FeaturesResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/features/{trackId} [get]
func (s *Server) features(c *gin.Context) {
	trackID := c.Param("trackId")
	artist := strings.TrimSpace(c.Query("artist"))
	title := strings.TrimSpace(c.Query("title"))
	if artist == "" || title == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   codeMissingParameters,
			Example: "/api/features/" + trackID + "?artist=The%20Weeknd&title=Blinding%20Lights",
		})
		return
	}

	res, err := s.deps.Resolver.Resolve(c.Request.Context(), artist, title)
	if err != nil {
		logHandlerError(c, "Feature lookup failed", err, "trackId", trackID)
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   codeDetectionFailed,
			Details: err.Error(),
		})
		return
	}

	source := sourceNotFound
	if res.Metadata.Found() {
		source = sourceSongBPM
	}

	c.JSON(http.StatusOK, FeaturesResponse{
		Tempo:   res.Metadata.BPM,
		Key:     res.Metadata.Key,
		Genre:   res.Metadata.Genre,
		TrackID: trackID,
		Source:  source,
	})
}
