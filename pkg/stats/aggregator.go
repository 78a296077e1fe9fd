// Package stats provides read-only projections over the result store and
// the history ledger. Values are computed fresh per call.
package stats

import (
	"context"
	"time"

	"github.com/lyriclens/lyriclens/pkg/models"
)

// SongStore is the slice of the result store the aggregator reads.
type SongStore interface {
	CountEntries(ctx context.Context) (int64, error)
	Popular(ctx context.Context, limit int) ([]models.SongEntry, error)
}

// HistorySource is the slice of the history ledger the aggregator reads.
type HistorySource interface {
	CountRecords(ctx context.Context) (int64, error)
	CountRecordsSince(ctx context.Context, since time.Time) (int64, error)
	CountRequesters(ctx context.Context) (int64, error)
	CountActiveRequesters(ctx context.Context, since time.Time) (int64, error)
}

// Aggregator composes service-wide statistics.
type Aggregator struct {
	store   SongStore
	history HistorySource
}

// New creates an Aggregator over the given sources.
func New(store SongStore, history HistorySource) *Aggregator {
	return &Aggregator{store: store, history: history}
}

// Global returns service totals plus recent-activity windows.
func (a *Aggregator) Global(ctx context.Context) (models.ServiceStats, error) {
	now := time.Now().UTC()
	var s models.ServiceStats
	var err error

	if s.TotalRequesters, err = a.history.CountRequesters(ctx); err != nil {
		return models.ServiceStats{}, err
	}
	if s.TotalQueries, err = a.history.CountRecords(ctx); err != nil {
		return models.ServiceStats{}, err
	}
	if s.CachedSongs, err = a.store.CountEntries(ctx); err != nil {
		return models.ServiceStats{}, err
	}
	if s.Queries24h, err = a.history.CountRecordsSince(ctx, now.AddDate(0, 0, -1)); err != nil {
		return models.ServiceStats{}, err
	}
	if s.ActiveRequesters7d, err = a.history.CountActiveRequesters(ctx, now.AddDate(0, 0, -7)); err != nil {
		return models.ServiceStats{}, err
	}
	return s, nil
}

// Popular passes through to the store's popularity ranking.
func (a *Aggregator) Popular(ctx context.Context, limit int) ([]models.SongEntry, error) {
	return a.store.Popular(ctx, limit)
}
