// Package lyrics fetches raw song lyrics from an upstream provider.
package lyrics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// ErrNotFound is returned when the provider has no lyrics for the requested
// artist and title.
var ErrNotFound = errors.New("song not found")

// Client talks to a lyrics.ovh-compatible provider.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New creates a Client for the given provider base URL. token may be empty
// for providers that need no authentication.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// FetchLyrics returns the raw lyrics text for a song. The artist and title
// are sent exactly as given; any matching leniency is the provider's.
func (c *Client) FetchLyrics(ctx context.Context, artist, title string) (string, error) {
	u := fmt.Sprintf("%s/v1/%s/%s", c.baseURL,
		url.PathEscape(artist), url.PathEscape(title))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", fmt.Errorf("create lyrics request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("lyrics provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%q by %q: %w", title, artist, ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("lyrics provider returned %d: %s", resp.StatusCode, body)
	}

	var payload struct {
		Lyrics string `json:"lyrics"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode lyrics response: %w", err)
	}
	if payload.Lyrics == "" {
		return "", fmt.Errorf("%q by %q: %w", title, artist, ErrNotFound)
	}
	return payload.Lyrics, nil
}
