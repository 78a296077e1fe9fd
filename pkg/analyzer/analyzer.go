// Package analyzer orchestrates the cache-aside analysis of a song: consult
// the result store, and on a miss fetch lyrics and compute a summary before
// writing the result back. The pipeline holds no state of its own and does
// not log history; that is the caller's job.
package analyzer

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/lyriclens/lyriclens/pkg/models"
)

// Store is the slice of the result store the pipeline needs.
type Store interface {
	Get(ctx context.Context, artist, title string) (*models.SongEntry, error)
	Put(ctx context.Context, artist, title, lyrics, summary string) (int64, error)
}

// LyricsFetcher retrieves raw lyrics for a song.
type LyricsFetcher interface {
	FetchLyrics(ctx context.Context, artist, title string) (string, error)
}

// Summarizer produces an interpretation summary for a song's lyrics.
type Summarizer interface {
	Summarize(ctx context.Context, title, artist, lyrics string) (string, error)
}

// Analyzer runs the cache-aside analysis pipeline.
type Analyzer struct {
	store      Store
	fetcher    LyricsFetcher
	summarizer Summarizer
	log        zerolog.Logger
}

// New creates an Analyzer wired with its collaborators.
func New(store Store, fetcher LyricsFetcher, summarizer Summarizer, log zerolog.Logger) *Analyzer {
	return &Analyzer{
		store:      store,
		fetcher:    fetcher,
		summarizer: summarizer,
		log:        log,
	}
}

// Analyze returns the interpretation of a song, serving a stored result when
// one with a summary exists. Two concurrent calls for the same song may both
// miss and compute redundantly; the store's upsert reconciles the writes.
//
// Store failures are contained: a failed read degrades to a miss, and a
// failed write-back after a successful analysis is logged but does not fail
// the call. Fetch and compute failures abort the call as FetchError or
// ComputeError; nothing is cached on either (a retry after a failed
// summarize fetches the lyrics again).
func (a *Analyzer) Analyze(ctx context.Context, artist, title string) (models.AnalysisResult, error) {
	entry, err := a.store.Get(ctx, artist, title)
	if err != nil {
		a.log.Warn().Err(err).Str("artist", artist).Str("title", title).
			Msg("cache read failed, treating as miss")
		entry = nil
	}
	// An entry without a summary is a partial leftover; re-analyze it.
	if entry != nil && entry.Summary != "" {
		return models.AnalysisResult{
			Artist:          artist,
			Title:           title,
			Lyrics:          entry.Lyrics,
			Summary:         entry.Summary,
			ServedFromCache: true,
		}, nil
	}

	text, err := a.fetcher.FetchLyrics(ctx, artist, title)
	if err != nil {
		return models.AnalysisResult{}, &FetchError{Artist: artist, Title: title, Err: err}
	}

	summary, err := a.summarizer.Summarize(ctx, title, artist, text)
	if err != nil {
		return models.AnalysisResult{}, &ComputeError{Artist: artist, Title: title, Err: err}
	}

	if _, err := a.store.Put(ctx, artist, title, text, summary); err != nil {
		a.log.Warn().Err(err).Str("artist", artist).Str("title", title).
			Msg("cache write failed, returning uncached result")
	}

	return models.AnalysisResult{
		Artist:          artist,
		Title:           title,
		Lyrics:          text,
		Summary:         summary,
		ServedFromCache: false,
	}, nil
}
