package analyzer

import "fmt"

// FetchError reports a lyrics-provider failure for a specific song. The
// underlying cause (including lyrics.ErrNotFound) is reachable via Unwrap.
type FetchError struct {
	Artist string
	Title  string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch lyrics for %q by %q: %v", e.Title, e.Artist, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ComputeError reports a summarization failure for a specific song.
type ComputeError struct {
	Artist string
	Title  string
	Err    error
}

func (e *ComputeError) Error() string {
	return fmt.Sprintf("summarize %q by %q: %v", e.Title, e.Artist, e.Err)
}

func (e *ComputeError) Unwrap() error { return e.Err }
