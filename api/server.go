package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"weather-bot/bot"
	"weather-bot/logger"
)

// StatsSource reports the router's counters
type StatsSource interface {
	Snapshot() bot.StatsSnapshot
}

// Counter is implemented by preference stores that can report their size
type Counter interface {
	Len() int
}

// Server exposes health and counters of a running bot over HTTP
type Server struct {
	stats   StatsSource
	prefs   Counter
	started time.Time
	server  *http.Server
	logger  logger.Logger
}

// NewServer creates the ops API server. prefs may be nil.
func NewServer(stats StatsSource, prefs Counter, port int, l logger.Logger) *Server {
	if l == nil {
		l = logger.Discard()
	}
	s := &Server{
		stats:   stats,
		prefs:   prefs,
		started: time.Now(),
		logger:  l.WithField("component", "api"),
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Routes builds the HTTP handler
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealthCheck)
		r.Get("/stats", s.handleStats)
	})
	return r
}

// Start begins the API server and blocks until it stops
func (s *Server) Start() error {
	s.logger.Infof("starting API server on %s", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// handleStats returns the event counters and the number of stored preferences
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"events":    s.stats.Snapshot(),
		"timestamp": time.Now().Format(time.RFC3339),
	}

	if s.prefs != nil {
		response["preferences"] = s.prefs.Len()
	}
	s.logger.WithField("request_id", middleware.GetReqID(r.Context())).Debug("stats requested")

	writeJSON(w, http.StatusOK, response)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
