// Package mcp exposes the song analysis service to chat assistants over a
// minimal MCP (Model Context Protocol) stdio transport.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/lyriclens/lyriclens/pkg/models"
)

// Pipeline runs a song analysis.
type Pipeline interface {
	Analyze(ctx context.Context, artist, title string) (models.AnalysisResult, error)
}

// HistorySource records and lists analysis attempts.
type HistorySource interface {
	Touch(ctx context.Context, requesterID, displayName string) error
	Append(ctx context.Context, rec models.HistoryRecord) (int64, error)
	RecentFor(ctx context.Context, requesterID string, limit int) ([]models.HistoryRecord, error)
}

// StatsSource provides service statistics and the popularity ranking.
type StatsSource interface {
	Global(ctx context.Context) (models.ServiceStats, error)
	Popular(ctx context.Context, limit int) ([]models.SongEntry, error)
}

// Server is a minimal MCP server that communicates over stdio using
// JSON-RPC 2.0.
type Server struct {
	pipeline Pipeline
	history  HistorySource
	stats    StatsSource
	log      zerolog.Logger
	version  string
}

// New creates a new MCP Server.
func New(p Pipeline, h HistorySource, s StatsSource, log zerolog.Logger, version string) *Server {
	return &Server{
		pipeline: p,
		history:  h,
		stats:    s,
		log:      log,
		version:  version,
	}
}

// Run reads JSON-RPC requests from r line-by-line and writes responses to w.
// It blocks until r is closed or ctx is cancelled.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.writeResponse(w, Response{
				JSONRPC: "2.0",
				Error:   &RPCError{Code: CodeParseError, Message: "parse error"},
			})
			continue
		}

		resp := s.dispatch(ctx, &req)
		if resp == nil {
			// notification, no response
			continue
		}
		s.writeResponse(w, *resp)
	}
	return scanner.Err()
}

func (s *Server) dispatch(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		return nil // notification, no response
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: CodeMethodNotFound, Message: fmt.Sprintf("unknown method: %s", req.Method)},
		}
	}
}

func (s *Server) handleInitialize(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: InitializeResult{
			ProtocolVersion: "2024-11-05",
			ServerInfo:      ServerInfo{Name: "lyriclens", Version: s.version},
			Capabilities:    map[string]any{"tools": map[string]any{}},
		},
	}
}

func (s *Server) handleToolsList(req *Request) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  ToolsListResult{Tools: allTools},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) *Response {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: CodeInvalidParams, Message: "invalid tool call params"},
		}
	}

	handler, ok := toolHandlers[params.Name]
	if !ok {
		return &Response{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error:   &RPCError{Code: CodeInvalidParams, Message: fmt.Sprintf("unknown tool: %s", params.Name)},
		}
	}

	return &Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  handler(ctx, s, params.Arguments),
	}
}

func (s *Server) writeResponse(w io.Writer, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Warn().Err(err).Msg("marshal mcp response failed")
		return
	}
	fmt.Fprintf(w, "%s\n", data)
}
