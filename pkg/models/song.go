package models

import "time"

// SongEntry is a cached song analysis. At most one entry exists per
// normalized (artist, title) pair.
type SongEntry struct {
	ID           int64     `json:"id"`
	Artist       string    `json:"artist"`
	Title        string    `json:"title"`
	Lyrics       string    `json:"lyrics"`
	Summary      string    `json:"summary,omitempty"`
	CachedAt     time.Time `json:"cached_at"`
	AccessCount  int64     `json:"access_count"`
	LastAccessed time.Time `json:"last_accessed"`
}

// AnalysisResult is the outcome of a single analyze call.
type AnalysisResult struct {
	Artist          string `json:"artist"`
	Title           string `json:"title"`
	Lyrics          string `json:"lyrics"`
	Summary         string `json:"summary"`
	ServedFromCache bool   `json:"served_from_cache"`
}

// StoreStats reports result-store counters for the current process.
type StoreStats struct {
	Entries int64 `json:"entries"`
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
}
