package mcp

import (
	"fmt"
	"strings"

	"github.com/lyriclens/lyriclens/pkg/models"
)

// formatAnalysis formats an analysis result for display.
func formatAnalysis(r models.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Interpretation of %q by %s", r.Title, r.Artist)
	if r.ServedFromCache {
		b.WriteString(" (cached)")
	}
	b.WriteString("\n\n")
	b.WriteString(r.Summary)
	return b.String()
}

// formatSongs formats the popularity ranking as a text table.
func formatSongs(entries []models.SongEntry) string {
	if len(entries) == 0 {
		return "No cached songs yet."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-25s %-30s %8s %-20s\n", "Artist", "Title", "Requests", "Last Accessed")
	b.WriteString(strings.Repeat("-", 86) + "\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%-25s %-30s %8d %-20s\n",
			clip(e.Artist, 25), clip(e.Title, 30), e.AccessCount,
			e.LastAccessed.Format("2006-01-02 15:04:05"))
	}
	return b.String()
}

// formatHistory formats history records as a text table.
func formatHistory(records []models.HistoryRecord) string {
	if len(records) == 0 {
		return "No history found for this requester."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%-20s %-25s %-30s %-7s %s\n", "Time", "Artist", "Title", "OK", "Detail")
	b.WriteString(strings.Repeat("-", 95) + "\n")
	for _, r := range records {
		ok := "yes"
		if !r.Success {
			ok = "no"
		}
		fmt.Fprintf(&b, "%-20s %-25s %-30s %-7s %s\n",
			r.CreatedAt.Format("2006-01-02 15:04:05"),
			clip(r.Artist, 25), clip(r.Title, 30), ok, clip(r.ErrorDetail, 40))
	}
	return b.String()
}

// formatStats formats service stats as text.
func formatStats(s models.ServiceStats) string {
	return fmt.Sprintf("Service Statistics\n"+
		"  Requesters:            %d\n"+
		"  Total queries:         %d\n"+
		"  Cached songs:          %d\n"+
		"  Queries (24h):         %d\n"+
		"  Active requesters (7d): %d\n",
		s.TotalRequesters, s.TotalQueries, s.CachedSongs,
		s.Queries24h, s.ActiveRequesters7d)
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
