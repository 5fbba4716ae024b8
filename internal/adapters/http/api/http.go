// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	FeedDependencies
	StationDependencies
	StatsProvider
}

// Server wires HTTP routes for the station API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	dashboardHandler *dashboardHandler
	feedHandler      *FeedHandler
	stationsHandler  *StationsHandler
	limiter          *RateLimiter
}

// ServerOption applies a configuration option to the Server.
type ServerOption func(*Server)

// WithRateLimiter throttles /api routes with rl. Nil disables throttling.
func WithRateLimiter(rl *RateLimiter) ServerOption {
	return func(s *Server) {
		s.limiter = rl
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...ServerOption) *Server {
	s := &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(deps),
		dashboardHandler: newDashboardHandler(),
		feedHandler:      NewFeedHandler(deps),
		stationsHandler:  NewStationsHandler(deps, deps),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux. ctx bounds background work such
// as rate-limiter cleanup.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	if s.limiter != nil {
		s.limiter.Start(ctx)
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/dashboard", s.dashboardHandler.HandleDashboard)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/feed", s.api(s.feedHandler.HandleGetFeed, "feed"))
	mux.HandleFunc("/api/feed/refresh", s.api(s.feedHandler.HandleRefresh, "feed_refresh"))
	mux.HandleFunc("/api/years", s.api(s.stationsHandler.HandleYears, "years"))
	mux.HandleFunc("/api/stations", s.api(s.stationsHandler.HandleStations, "stations"))
	mux.HandleFunc("/api/counts", s.api(s.stationsHandler.HandleCounts, "counts"))
	mux.HandleFunc("/api/series", s.api(s.stationsHandler.HandleSeries, "series"))
}

func (s *Server) api(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	if s.limiter != nil {
		next = s.limiter.Middleware(next, endpoint)
	}
	return MetricsMiddleware(next, endpoint)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned in errorResponse.Code.
const (
	codeBadRequest       = "bad_request"
	codeMethodNotAllowed = "method_not_allowed"
	codeUnavailable      = "feed_unavailable"
	codeRefreshFailed    = "refresh_failed"
	codeRateLimited      = "rate_limited"
	codeInternal         = "internal_error"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method || (method == http.MethodGet && r.Method == http.MethodHead) {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, nil)
	return false
}
