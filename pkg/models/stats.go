package models

// ServiceStats is a point-in-time projection over the result store and
// history ledger.
type ServiceStats struct {
	TotalRequesters    int64 `json:"total_requesters"`
	TotalQueries       int64 `json:"total_queries"`
	CachedSongs        int64 `json:"cached_songs"`
	Queries24h         int64 `json:"queries_24h"`
	ActiveRequesters7d int64 `json:"active_requesters_7d"`
}
