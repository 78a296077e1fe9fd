package analyzer

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/lyriclens/lyriclens/pkg/lyrics"
	"github.com/lyriclens/lyriclens/pkg/models"
	sqlitestore "github.com/lyriclens/lyriclens/pkg/store/sqlite"
)

type fetchFunc func(ctx context.Context, artist, title string) (string, error)

func (f fetchFunc) FetchLyrics(ctx context.Context, artist, title string) (string, error) {
	return f(ctx, artist, title)
}

type summarizeFunc func(ctx context.Context, title, artist, lyrics string) (string, error)

func (f summarizeFunc) Summarize(ctx context.Context, title, artist, lyrics string) (string, error) {
	return f(ctx, title, artist, lyrics)
}

func newTestStore(t *testing.T) *sqlitestore.Store {
	t.Helper()
	s, err := sqlitestore.New(filepath.Join(t.TempDir(), "analyzer_test.db"), zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func staticFetch(text string) fetchFunc {
	return func(context.Context, string, string) (string, error) { return text, nil }
}

func staticSummarize(summary string) summarizeFunc {
	return func(context.Context, string, string, string) (string, error) { return summary, nil }
}

func TestAnalyzeEndToEnd(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	fetches := 0
	a := New(store, fetchFunc(func(context.Context, string, string) (string, error) {
		fetches++
		return "L", nil
	}), staticSummarize("S"), zerolog.Nop())

	res, err := a.Analyze(ctx, "Radiohead", "Creep")
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary != "S" || res.Lyrics != "L" {
		t.Errorf("unexpected result: %+v", res)
	}
	if res.ServedFromCache {
		t.Error("first call should not be served from cache")
	}

	res2, err := a.Analyze(ctx, "Radiohead", "Creep")
	if err != nil {
		t.Fatal(err)
	}
	if !res2.ServedFromCache {
		t.Error("second call should be served from cache")
	}
	if res2.Summary != res.Summary {
		t.Errorf("summaries differ: %q vs %q", res2.Summary, res.Summary)
	}
	if fetches != 1 {
		t.Errorf("cached hit must not refetch, got %d fetches", fetches)
	}

	entries, err := store.Popular(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if entries[0].AccessCount != 2 {
		t.Errorf("expected access count 2 after hit, got %d", entries[0].AccessCount)
	}
}

func TestAnalyzeNormalizedHit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := New(store, staticFetch("L"), staticSummarize("S"), zerolog.Nop())
	if _, err := a.Analyze(ctx, "Drake", "Hotline Bling"); err != nil {
		t.Fatal(err)
	}

	res, err := a.Analyze(ctx, " drake ", "HOTLINE BLING")
	if err != nil {
		t.Fatal(err)
	}
	if !res.ServedFromCache {
		t.Error("differently-cased key should hit the same entry")
	}
}

func TestAnalyzeFetchNotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := New(store, fetchFunc(func(context.Context, string, string) (string, error) {
		return "", lyrics.ErrNotFound
	}), staticSummarize("S"), zerolog.Nop())

	_, err := a.Analyze(ctx, "Nobody", "Nothing")
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Fatalf("expected FetchError, got %v", err)
	}
	if !errors.Is(err, lyrics.ErrNotFound) {
		t.Errorf("not-found cause should survive wrapping, got %v", err)
	}

	count, _ := store.CountEntries(ctx)
	if count != 0 {
		t.Errorf("nothing should be cached on fetch failure, got %d entries", count)
	}
}

func TestAnalyzeComputeFailure(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := New(store, staticFetch("L"), summarizeFunc(func(context.Context, string, string, string) (string, error) {
		return "", errors.New("model overloaded")
	}), zerolog.Nop())

	_, err := a.Analyze(ctx, "Radiohead", "Creep")
	var ce *ComputeError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ComputeError, got %v", err)
	}

	// No partial caching: the lyrics are not stored, a retry refetches.
	count, _ := store.CountEntries(ctx)
	if count != 0 {
		t.Errorf("nothing should be cached on compute failure, got %d entries", count)
	}
}

func TestAnalyzePartialEntryRecomputed(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// A summary-less entry left over from an earlier failure.
	if _, err := store.Put(ctx, "Radiohead", "Creep", "old lyrics", ""); err != nil {
		t.Fatal(err)
	}

	a := New(store, staticFetch("new lyrics"), staticSummarize("S"), zerolog.Nop())
	res, err := a.Analyze(ctx, "Radiohead", "Creep")
	if err != nil {
		t.Fatal(err)
	}
	if res.ServedFromCache {
		t.Error("a partial entry must not be served from cache")
	}
	if res.Summary != "S" || res.Lyrics != "new lyrics" {
		t.Errorf("unexpected result: %+v", res)
	}
}

type failingStore struct{}

func (failingStore) Get(context.Context, string, string) (*models.SongEntry, error) {
	return nil, errors.New("db locked")
}

func (failingStore) Put(context.Context, string, string, string, string) (int64, error) {
	return 0, errors.New("db locked")
}

func TestAnalyzeStoreFailuresContained(t *testing.T) {
	a := New(failingStore{}, staticFetch("L"), staticSummarize("S"), zerolog.Nop())

	// Read failure degrades to a miss, write failure is swallowed; the
	// computed result is still returned.
	res, err := a.Analyze(context.Background(), "Radiohead", "Creep")
	if err != nil {
		t.Fatal(err)
	}
	if res.Summary != "S" || res.ServedFromCache {
		t.Errorf("unexpected result: %+v", res)
	}
}
