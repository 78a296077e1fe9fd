package lyrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchLyrics(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/Radiohead/Creep" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok-1" {
			t.Error("expected bearer token in request")
		}
		w.Write([]byte(`{"lyrics":"When you were here before"}`))
	}))
	defer upstream.Close()

	c := New(upstream.URL, "tok-1")
	text, err := c.FetchLyrics(context.Background(), "Radiohead", "Creep")
	if err != nil {
		t.Fatal(err)
	}
	if text != "When you were here before" {
		t.Errorf("unexpected lyrics: %q", text)
	}
}

func TestFetchLyricsNotFound(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"No lyrics found"}`, http.StatusNotFound)
	}))
	defer upstream.Close()

	c := New(upstream.URL, "")
	_, err := c.FetchLyrics(context.Background(), "Nobody", "Nothing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchLyricsUpstreamError(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	c := New(upstream.URL, "")
	_, err := c.FetchLyrics(context.Background(), "A", "T")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrNotFound) {
		t.Error("a 500 must not be reported as not-found")
	}
}

func TestFetchLyricsEscapesPath(t *testing.T) {
	var gotPath string
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		w.Write([]byte(`{"lyrics":"x"}`))
	}))
	defer upstream.Close()

	c := New(upstream.URL, "")
	if _, err := c.FetchLyrics(context.Background(), "AC/DC", "Back in Black"); err != nil {
		t.Fatal(err)
	}
	if gotPath != "/v1/AC%2FDC/Back%20in%20Black" {
		t.Errorf("unexpected escaped path: %s", gotPath)
	}
}
