package models

import "time"

// HistoryRecord is one logged analysis attempt. Artist and title are kept
// exactly as the requester typed them.
type HistoryRecord struct {
	ID          int64     `json:"id"`
	RequesterID string    `json:"requester_id"`
	Artist      string    `json:"artist"`
	Title       string    `json:"title"`
	Success     bool      `json:"success"`
	ErrorDetail string    `json:"error_detail,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RequesterProfile tracks a requester across analysis attempts.
// RequestCount is a best-effort projection of the history log.
type RequesterProfile struct {
	ID           string    `json:"id"`
	DisplayName  string    `json:"display_name,omitempty"`
	FirstSeen    time.Time `json:"first_seen"`
	LastActivity time.Time `json:"last_activity"`
	RequestCount int64     `json:"request_count"`
}
