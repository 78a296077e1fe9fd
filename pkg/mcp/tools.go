package mcp

import (
	"context"
	"encoding/json"

	"github.com/lyriclens/lyriclens/pkg/models"
)

// defaultRequester attributes MCP calls that carry no requester of their own.
const defaultRequester = "mcp"

// toolHandler is a function that handles a tool call.
type toolHandler func(ctx context.Context, s *Server, args json.RawMessage) ToolCallResult

// toolHandlers maps tool names to their handlers.
var toolHandlers = map[string]toolHandler{
	"analyze_song":      handleAnalyzeSong,
	"popular_songs":     handlePopularSongs,
	"requester_history": handleRequesterHistory,
	"service_stats":     handleServiceStats,
}

// allTools is the list of tool definitions exposed via tools/list.
var allTools = []ToolDefinition{
	{
		Name:        "analyze_song",
		Description: "Interpret a song: fetch its lyrics and produce a thematic summary. Cached results are reused.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"artist", "title"},
			"properties": map[string]any{
				"artist": map[string]any{
					"type":        "string",
					"description": "Artist name",
				},
				"title": map[string]any{
					"type":        "string",
					"description": "Song title",
				},
				"requester_id": map[string]any{
					"type":        "string",
					"description": "Requester to attribute the request to (optional)",
				},
			},
		},
	},
	{
		Name:        "popular_songs",
		Description: "List the most requested songs in the analysis cache.",
		InputSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of songs to return (optional, default 10)",
				},
			},
		},
	},
	{
		Name:        "requester_history",
		Description: "Show a requester's recent analysis attempts, most recent first.",
		InputSchema: map[string]any{
			"type":     "object",
			"required": []string{"requester_id"},
			"properties": map[string]any{
				"requester_id": map[string]any{
					"type":        "string",
					"description": "The requester to inspect",
				},
				"limit": map[string]any{
					"type":        "integer",
					"description": "Maximum number of records (optional, default 10)",
				},
			},
		},
	},
	{
		Name:        "service_stats",
		Description: "Show service-wide totals: requesters, queries, cached songs, and recent activity.",
		InputSchema: map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
	},
}

func textResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
	}
}

func errorResult(text string) ToolCallResult {
	return ToolCallResult{
		Content: []ContentBlock{{Type: "text", Text: text}},
		IsError: true,
	}
}

type analyzeSongArgs struct {
	Artist      string `json:"artist"`
	Title       string `json:"title"`
	RequesterID string `json:"requester_id"`
}

func handleAnalyzeSong(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args analyzeSongArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.Artist == "" || args.Title == "" {
		return errorResult("artist and title are required")
	}
	if args.RequesterID == "" {
		args.RequesterID = defaultRequester
	}

	if err := s.history.Touch(ctx, args.RequesterID, ""); err != nil {
		s.log.Warn().Err(err).Msg("requester touch failed")
	}

	result, err := s.pipeline.Analyze(ctx, args.Artist, args.Title)

	rec := models.HistoryRecord{
		RequesterID: args.RequesterID,
		Artist:      args.Artist,
		Title:       args.Title,
		Success:     err == nil,
	}
	if err != nil {
		rec.ErrorDetail = err.Error()
	}
	if _, aerr := s.history.Append(ctx, rec); aerr != nil {
		s.log.Warn().Err(aerr).Msg("history append failed")
	}

	if err != nil {
		return errorResult("Analysis failed: " + err.Error())
	}
	return textResult(formatAnalysis(result))
}

type limitArgs struct {
	Limit int `json:"limit"`
}

func handlePopularSongs(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args limitArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.Limit <= 0 {
		args.Limit = 10
	}
	entries, err := s.stats.Popular(ctx, args.Limit)
	if err != nil {
		return errorResult("Error fetching popular songs: " + err.Error())
	}
	return textResult(formatSongs(entries))
}

type requesterHistoryArgs struct {
	RequesterID string `json:"requester_id"`
	Limit       int    `json:"limit"`
}

func handleRequesterHistory(ctx context.Context, s *Server, rawArgs json.RawMessage) ToolCallResult {
	var args requesterHistoryArgs
	if len(rawArgs) > 0 {
		_ = json.Unmarshal(rawArgs, &args)
	}
	if args.RequesterID == "" {
		return errorResult("requester_id is required")
	}
	if args.Limit <= 0 {
		args.Limit = 10
	}
	records, err := s.history.RecentFor(ctx, args.RequesterID, args.Limit)
	if err != nil {
		return errorResult("Error fetching history: " + err.Error())
	}
	return textResult(formatHistory(records))
}

func handleServiceStats(ctx context.Context, s *Server, _ json.RawMessage) ToolCallResult {
	stats, err := s.stats.Global(ctx)
	if err != nil {
		return errorResult("Error fetching stats: " + err.Error())
	}
	return textResult(formatStats(stats))
}
