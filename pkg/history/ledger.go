// Package history keeps the append-only log of analysis attempts and the
// per-requester profiles derived from it. The log is the durable record of
// what happened; profile counters are a best-effort projection and never
// block an append.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/lyriclens/lyriclens/pkg/models"
)

// Ledger records and queries analysis attempts.
type Ledger struct {
	db  *sql.DB
	log zerolog.Logger
}

const createTables = `
CREATE TABLE IF NOT EXISTS requesters (
	id TEXT PRIMARY KEY,
	display_name TEXT NOT NULL DEFAULT '',
	first_seen DATETIME NOT NULL,
	last_activity DATETIME NOT NULL,
	request_count INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS query_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	requester_id TEXT NOT NULL,
	artist TEXT NOT NULL,
	title TEXT NOT NULL,
	success INTEGER NOT NULL DEFAULT 1,
	error_detail TEXT NOT NULL DEFAULT '',
	created_at DATETIME NOT NULL,
	FOREIGN KEY (requester_id) REFERENCES requesters (id)
);
CREATE INDEX IF NOT EXISTS idx_history_requester ON query_history(requester_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_history_created ON query_history(created_at DESC);
`

// New opens the ledger database and creates the schema.
func New(dbPath string, log zerolog.Logger) (*Ledger, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}

	if _, err := db.Exec(createTables); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate history db: %w", err)
	}

	return &Ledger{db: db, log: log}, nil
}

// Touch creates a requester profile on first contact, or refreshes the
// display name and activity timestamp on a repeat visit.
func (l *Ledger) Touch(ctx context.Context, requesterID, displayName string) error {
	now := time.Now().UTC()
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO requesters (id, display_name, first_seen, last_activity)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			last_activity = excluded.last_activity`,
		requesterID, displayName, now, now)
	if err != nil {
		return fmt.Errorf("touch requester: %w", err)
	}
	return nil
}

// Append logs one analysis attempt, artist and title exactly as typed.
// Repeated content is logged again, never deduplicated. The requester's
// counter is incremented best-effort: a failure there is logged and does
// not roll back the append. Returns the record id.
func (l *Ledger) Append(ctx context.Context, rec models.HistoryRecord) (int64, error) {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	err := l.db.QueryRowContext(ctx,
		`INSERT INTO query_history (requester_id, artist, title, success, error_detail, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 RETURNING id`,
		rec.RequesterID, rec.Artist, rec.Title, rec.Success, rec.ErrorDetail, createdAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("append history: %w", err)
	}

	_, err = l.db.ExecContext(ctx,
		`UPDATE requesters SET request_count = request_count + 1, last_activity = ? WHERE id = ?`,
		createdAt, rec.RequesterID)
	if err != nil {
		l.log.Warn().Err(err).Str("requester", rec.RequesterID).Msg("requester counter update failed")
	}

	return id, nil
}

const historyColumns = `id, requester_id, artist, title, success, error_detail, created_at`

func (l *Ledger) queryRecords(ctx context.Context, query string, args ...any) ([]models.HistoryRecord, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var records []models.HistoryRecord
	for rows.Next() {
		var r models.HistoryRecord
		if err := rows.Scan(&r.ID, &r.RequesterID, &r.Artist, &r.Title,
			&r.Success, &r.ErrorDetail, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// RecentFor returns a requester's attempts, most recent first.
func (l *Ledger) RecentFor(ctx context.Context, requesterID string, limit int) ([]models.HistoryRecord, error) {
	return l.queryRecords(ctx,
		`SELECT `+historyColumns+` FROM query_history
		 WHERE requester_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		requesterID, limit)
}

// RecentGlobal returns attempts across all requesters from the last
// sinceDays days, most recent first.
func (l *Ledger) RecentGlobal(ctx context.Context, sinceDays, limit int) ([]models.HistoryRecord, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -sinceDays)
	return l.queryRecords(ctx,
		`SELECT `+historyColumns+` FROM query_history
		 WHERE created_at >= ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		cutoff, limit)
}

// Profile returns a requester's profile, or (nil, nil) if never seen.
func (l *Ledger) Profile(ctx context.Context, requesterID string) (*models.RequesterProfile, error) {
	var p models.RequesterProfile
	err := l.db.QueryRowContext(ctx,
		`SELECT id, display_name, first_seen, last_activity, request_count
		 FROM requesters WHERE id = ?`, requesterID,
	).Scan(&p.ID, &p.DisplayName, &p.FirstSeen, &p.LastActivity, &p.RequestCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("requester profile: %w", err)
	}
	return &p, nil
}

// CountRecords returns the total number of logged attempts.
func (l *Ledger) CountRecords(ctx context.Context) (int64, error) {
	return l.count(ctx, `SELECT COUNT(*) FROM query_history`)
}

// CountRecordsSince returns the number of attempts logged at or after since.
func (l *Ledger) CountRecordsSince(ctx context.Context, since time.Time) (int64, error) {
	return l.count(ctx, `SELECT COUNT(*) FROM query_history WHERE created_at >= ?`, since)
}

// CountRequesters returns the total number of known requesters.
func (l *Ledger) CountRequesters(ctx context.Context) (int64, error) {
	return l.count(ctx, `SELECT COUNT(*) FROM requesters`)
}

// CountActiveRequesters returns the number of requesters active at or
// after since.
func (l *Ledger) CountActiveRequesters(ctx context.Context, since time.Time) (int64, error) {
	return l.count(ctx, `SELECT COUNT(*) FROM requesters WHERE last_activity >= ?`, since)
}

func (l *Ledger) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := l.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count history: %w", err)
	}
	return n, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}
