package domain

import "strings"

const (
	MinBPM = 40
	MaxBPM = 240
)

// SongMetadata is the tempo/key/genre record resolved for a song.
// Every field is explicitly nullable; an all-nil record means the song was
// looked up but nothing was found.
type SongMetadata struct {
	BPM   *int    `json:"bpm"`
	Key   *string `json:"key"`
	Genre *string `json:"genre"`
}

// Found reports whether a tempo was resolved.
func (m SongMetadata) Found() bool {
	return m.BPM != nil
}

// IsEmpty reports whether no field was resolved at all.
func (m SongMetadata) IsEmpty() bool {
	return m.BPM == nil && m.Key == nil && m.Genre == nil
}

// ValidBPM reports whether n is a plausible tempo rather than page noise.
func ValidBPM(n int) bool {
	return n >= MinBPM && n <= MaxBPM
}

// Provenance tags where a resolved record came from.
type Provenance string

const (
	ProvenanceFresh      Provenance = "fresh"
	ProvenanceMemory     Provenance = "memory"
	ProvenancePersistent Provenance = "persistent"
)

// Cached reports whether the record was served from a cache layer.
func (p Provenance) Cached() bool {
	return p == ProvenanceMemory || p == ProvenancePersistent
}

// SongCacheKey builds the cache key for an artist/title pair.
func SongCacheKey(artist, title string) string {
	return "song:" + strings.ToLower(strings.TrimSpace(artist)) + ":" + strings.ToLower(strings.TrimSpace(title))
}

// CacheEntry is the persisted form of a cached record. Timestamp is the
// write time in epoch milliseconds.
type CacheEntry struct {
	Key       string       `json:"key"`
	Data      SongMetadata `json:"data"`
	Timestamp int64        `json:"timestamp"`
}

// SearchCandidate is one track returned by the music catalog.
type SearchCandidate struct {
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	ID          string `json:"id"`
	ExternalURL string `json:"externalUrl"`
	Popularity  int    `json:"popularity"`
}

func IntPtr(v int) *int {
	return &v
}

func StringPtr(v string) *string {
	return &v
}
