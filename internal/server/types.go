package server

// SearchResult is one entry of the /api/search response array.
type SearchResult struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	TrackID    *string `json:"trackId"`
	SpotifyURL *string `json:"spotifyUrl"`
	Source     string  `json:"source"`
}

// SongInfoResponse is the /api/song-info payload.
type SongInfoResponse struct {
	Artist     string  `json:"artist"`
	Title      string  `json:"title"`
	BPM        *int    `json:"bpm"`
	Key        *string `json:"key"`
	Genre      *string `json:"genre"`
	Source     string  `json:"source"`
	Cached     bool    `json:"cached"`
	CacheLayer *string `json:"cacheLayer"`
}

// FeaturesResponse is the /api/features/:trackId payload.
type FeaturesResponse struct {
	Tempo   *int    `json:"tempo"`
	Key     *string `json:"key"`
	Genre   *string `json:"genre"`
	TrackID string  `json:"trackId"`
	Source  string  `json:"source"`
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status       string `json:"status"`
	CacheEntries int    `json:"cacheEntries"`
}

// ErrorResponse represents a generic error payload used for error responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Example string `json:"example,omitempty"`
	Details string `json:"details,omitempty"`
}

const (
	sourceSongBPM  = "songbpm"
	sourceSpotify  = "spotify"
	sourceNotFound = "not-found"
)
