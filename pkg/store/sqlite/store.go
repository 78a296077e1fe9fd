// Package sqlite implements the persistent song-analysis store. Entries are
// keyed by the normalized (artist, title) pair; concurrent writers for the
// same song converge on a single row via an atomic upsert.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/lyriclens/lyriclens/pkg/models"
	"github.com/lyriclens/lyriclens/pkg/songkey"
)

// Store is the SQLite-backed song analysis cache.
type Store struct {
	db     *sql.DB
	log    zerolog.Logger
	hits   atomic.Int64
	misses atomic.Int64
}

const createSongTable = `
CREATE TABLE IF NOT EXISTS song_cache (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	artist TEXT NOT NULL,
	title TEXT NOT NULL,
	artist_norm TEXT NOT NULL,
	title_norm TEXT NOT NULL,
	lyrics TEXT NOT NULL,
	summary TEXT NOT NULL DEFAULT '',
	cached_at DATETIME NOT NULL,
	access_count INTEGER NOT NULL DEFAULT 1,
	last_accessed DATETIME NOT NULL,
	UNIQUE(artist_norm, title_norm)
);
CREATE INDEX IF NOT EXISTS idx_song_cache_access ON song_cache(access_count DESC);
`

// New opens the store database and creates the schema. Transactions start
// with BEGIN IMMEDIATE: Get upgrades its read to a write, and a deferred
// upgrade that loses a race fails with SQLITE_BUSY before busy_timeout
// can retry it. With the write lock taken up front, concurrent hits queue
// on the timeout.
func New(dbPath string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("open store db: %w", err)
	}

	if _, err := db.Exec(createSongTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate store db: %w", err)
	}

	return &Store{db: db, log: log}, nil
}

const songColumns = `id, artist, title, lyrics, summary, cached_at, access_count, last_accessed`

func scanSong(row interface{ Scan(...any) error }) (*models.SongEntry, error) {
	var e models.SongEntry
	err := row.Scan(&e.ID, &e.Artist, &e.Title, &e.Lyrics, &e.Summary,
		&e.CachedAt, &e.AccessCount, &e.LastAccessed)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Get looks up a song by its normalized key. On a hit the access counter is
// incremented and last_accessed refreshed inside the same transaction; the
// returned entry reflects the state at read time, so the increment is only
// visible to subsequent reads. Returns (nil, nil) on a miss.
func (s *Store) Get(ctx context.Context, artist, title string) (*models.SongEntry, error) {
	key := songkey.Normalize(artist, title)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store get: %w", err)
	}
	defer tx.Rollback()

	entry, err := scanSong(tx.QueryRowContext(ctx,
		`SELECT `+songColumns+` FROM song_cache WHERE artist_norm = ? AND title_norm = ?`,
		key.Artist, key.Title,
	))
	if errors.Is(err, sql.ErrNoRows) {
		s.misses.Add(1)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("store get: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE song_cache SET access_count = access_count + 1, last_accessed = ? WHERE id = ?`,
		time.Now().UTC(), entry.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("store get: touch entry: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store get: %w", err)
	}

	s.hits.Add(1)
	s.log.Debug().Str("artist", artist).Str("title", title).Msg("cache hit")
	return entry, nil
}

// Put inserts a song entry, or updates the existing one if another writer
// already populated the same normalized key. The conflict path overwrites
// lyrics and summary, bumps the access counter, and refreshes last_accessed.
// A uniqueness violation is never surfaced to the caller. Returns the row id.
func (s *Store) Put(ctx context.Context, artist, title, lyrics, summary string) (int64, error) {
	key := songkey.Normalize(artist, title)
	now := time.Now().UTC()

	var id int64
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO song_cache
			(artist, title, artist_norm, title_norm, lyrics, summary, cached_at, access_count, last_accessed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?)
		 ON CONFLICT(artist_norm, title_norm) DO UPDATE SET
			lyrics = excluded.lyrics,
			summary = excluded.summary,
			access_count = access_count + 1,
			last_accessed = excluded.last_accessed
		 RETURNING id`,
		artist, title, key.Artist, key.Title, lyrics, summary, now, now,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("store put: %w", err)
	}
	return id, nil
}

// Popular returns up to limit entries ordered by access count, ties broken
// by most recent access.
func (s *Store) Popular(ctx context.Context, limit int) ([]models.SongEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+songColumns+` FROM song_cache
		 ORDER BY access_count DESC, last_accessed DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store popular: %w", err)
	}
	defer rows.Close()

	var entries []models.SongEntry
	for rows.Next() {
		e, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("scan song: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

// EvictStale deletes entries whose last access is older than maxAgeDays and
// whose access count is below minAccessCount. Both conditions are required:
// a popular-but-old entry survives. Returns the number of deleted rows.
func (s *Store) EvictStale(ctx context.Context, maxAgeDays int, minAccessCount int64) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -maxAgeDays)
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM song_cache WHERE last_accessed < ? AND access_count < ?`,
		cutoff, minAccessCount)
	if err != nil {
		return 0, fmt.Errorf("store evict: %w", err)
	}
	deleted, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store evict: %w", err)
	}
	if deleted > 0 {
		s.log.Info().Int64("deleted", deleted).Msg("evicted stale cache entries")
	}
	return deleted, nil
}

// CountEntries returns the number of cached songs.
func (s *Store) CountEntries(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM song_cache`).Scan(&count); err != nil {
		return 0, fmt.Errorf("store count: %w", err)
	}
	return count, nil
}

// Stats returns entry count plus in-process hit/miss counters.
func (s *Store) Stats(ctx context.Context) (models.StoreStats, error) {
	count, err := s.CountEntries(ctx)
	if err != nil {
		return models.StoreStats{}, err
	}
	return models.StoreStats{
		Entries: count,
		Hits:    s.hits.Load(),
		Misses:  s.misses.Load(),
	}, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
