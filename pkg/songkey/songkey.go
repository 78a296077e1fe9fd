// Package songkey canonicalizes (artist, title) pairs into the lookup key
// used by the result store. Two raw pairs map to the same key iff they are
// equal after trimming outer whitespace and lowercasing.
package songkey

import "strings"

// Key is a normalized (artist, title) pair.
type Key struct {
	Artist string
	Title  string
}

// Normalize returns the canonical key for an artist/title pair. Internal
// whitespace is left untouched.
func Normalize(artist, title string) Key {
	return Key{
		Artist: fold(artist),
		Title:  fold(title),
	}
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
