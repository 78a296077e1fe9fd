// Package server exposes the analysis pipeline, history ledger, and stats
// aggregator over HTTP. It is the thin surface a chat frontend calls:
// take artist and title, run the pipeline, record the attempt.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lyriclens/lyriclens/pkg/analyzer"
	"github.com/lyriclens/lyriclens/pkg/config"
	"github.com/lyriclens/lyriclens/pkg/history"
	"github.com/lyriclens/lyriclens/pkg/lyrics"
	"github.com/lyriclens/lyriclens/pkg/models"
	"github.com/lyriclens/lyriclens/pkg/stats"
)

// Server is the lyriclens HTTP API.
type Server struct {
	cfg        *config.Config
	analyzer   *analyzer.Analyzer
	ledger     *history.Ledger
	aggregator *stats.Aggregator
	log        zerolog.Logger
	router     chi.Router
}

// New creates a Server wired with all dependencies.
func New(cfg *config.Config, a *analyzer.Analyzer, l *history.Ledger, agg *stats.Aggregator, log zerolog.Logger) *Server {
	s := &Server{
		cfg:        cfg,
		analyzer:   a,
		ledger:     l,
		aggregator: agg,
		log:        log,
	}

	r := chi.NewRouter()
	r.Use(s.requestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.handleAnalyze)
		r.Get("/songs/popular", s.handlePopular)
		r.Get("/history", s.handleHistory)
		r.Get("/history/recent", s.handleRecent)
		r.Get("/stats", s.handleStats)
	})
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe starts the API server with graceful shutdown support.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.cfg.Listen,
		Handler: s,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.cfg.Listen).Msg("lyriclens api listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutCtx)
	case err := <-errCh:
		return err
	}
}

// requestID tags each request with a UUID for log correlation.
func (s *Server) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		log := s.log.With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(log.WithContext(r.Context())))
	})
}

type analyzeRequest struct {
	RequesterID   string `json:"requester_id"`
	RequesterName string `json:"requester_name,omitempty"`
	Artist        string `json:"artist"`
	Title         string `json:"title"`
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RequesterID == "" || req.Artist == "" || req.Title == "" {
		writeJSONError(w, http.StatusBadRequest, "requester_id, artist, and title are required")
		return
	}

	log := zerolog.Ctx(r.Context())
	if err := s.ledger.Touch(r.Context(), req.RequesterID, req.RequesterName); err != nil {
		log.Warn().Err(err).Msg("requester touch failed")
	}

	result, err := s.analyzer.Analyze(r.Context(), req.Artist, req.Title)

	// Every attempt lands in the ledger, whatever the outcome. A ledger
	// failure must not clobber the response already computed.
	rec := models.HistoryRecord{
		RequesterID: req.RequesterID,
		Artist:      req.Artist,
		Title:       req.Title,
		Success:     err == nil,
	}
	if err != nil {
		rec.ErrorDetail = err.Error()
	}
	if _, aerr := s.ledger.Append(r.Context(), rec); aerr != nil {
		log.Warn().Err(aerr).Msg("history append failed")
	}

	if err != nil {
		log.Error().Err(err).Str("artist", req.Artist).Str("title", req.Title).Msg("analysis failed")
		if errors.Is(err, lyrics.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "song not found")
			return
		}
		writeJSONError(w, http.StatusBadGateway, "analysis failed, retry later")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handlePopular(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", s.cfg.Limits.Popular)
	entries, err := s.aggregator.Popular(r.Context(), limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list popular songs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"songs": entries})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	requesterID := r.URL.Query().Get("requester_id")
	if requesterID == "" {
		writeJSONError(w, http.StatusBadRequest, "requester_id is required")
		return
	}
	limit := queryInt(r, "limit", s.cfg.Limits.History)
	records, err := s.ledger.RecentFor(r.Context(), requesterID, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": records})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 7)
	limit := queryInt(r, "limit", 100)
	records, err := s.ledger.RecentGlobal(r.Context(), days, limit)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to list recent history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"history": records})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	global, err := s.aggregator.Global(r.Context())
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "failed to compute stats")
		return
	}
	writeJSON(w, http.StatusOK, global)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
