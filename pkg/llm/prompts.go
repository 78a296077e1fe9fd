package llm

import "fmt"

func artistInfoPrompt(artist string) string {
	return fmt.Sprintf(`You are a music analyst. Identify the main themes of the artist %s.
Review their body of work and list only the core themes and motifs that recur in their songs.
Format the output as a bullet list, keeping each item to a few keywords.`, artist)
}

func summaryPrompt(lyrics, artistInfo string) string {
	return fmt.Sprintf(`You are a music analyst.
Give a short overview of the main themes and motifs in these lyrics, explain what the song is about, and point out notable references.
Use markdown quotes to illustrate the meaning of specific lines.
Use the following notes about the artist as additional context:
%s

Lyrics:
%s`, artistInfo, lyrics)
}
