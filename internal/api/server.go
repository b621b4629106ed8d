// Package api exposes the availability and booking engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"toran/internal/booking"
	"toran/internal/database"
	"toran/internal/metrics"
)

// Server is the public HTTP surface.
type Server struct {
	db      *database.DB
	booking *booking.Service
	cache   *Cache
	logger  *zerolog.Logger
	apiKey  string
	limiter *clientLimiter
	now     func() time.Time

	httpServer *http.Server
}

func NewServer(addr string, db *database.DB, svc *booking.Service, cache *Cache, apiKey string, ratePerMinute int, logger *zerolog.Logger) *Server {
	s := &Server{
		db:      db,
		booking: svc,
		cache:   cache,
		logger:  logger,
		apiKey:  apiKey,
		limiter: newClientLimiter(ratePerMinute),
		now:     time.Now,
	}
	if apiKey == "" {
		logger.Warn().Msg("API key is empty, management endpoints will reject every request")
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/businesses", s.handleListBusinesses)
	mux.HandleFunc("GET /api/businesses/{id}", s.handleGetBusiness)
	mux.HandleFunc("PUT /api/businesses/{id}", s.requireKey(s.handleUpsertBusiness))
	mux.HandleFunc("GET /api/businesses/{id}/dates", s.handleDates)
	mux.HandleFunc("GET /api/businesses/{id}/slots", s.handleSlots)
	mux.HandleFunc("GET /api/businesses/{id}/hours", s.handleHours)
	mux.HandleFunc("GET /api/businesses/{id}/bookings", s.requireKey(s.handleListBookings))
	mux.HandleFunc("POST /api/bookings", s.rateLimited(s.handleCreateBooking))
	mux.HandleFunc("GET /api/bookings/{id}", s.handleGetBooking)
	mux.HandleFunc("POST /api/bookings/{id}/reschedule", s.rateLimited(s.handleReschedule))
	mux.HandleFunc("POST /api/bookings/{id}/cancel", s.handleCancel)
	mux.HandleFunc("POST /api/bookings/{id}/approve", s.requireKey(s.handleApprove))
	mux.HandleFunc("GET /api/users/{id}/bookings", s.handleUserBookings)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.withRequestLog(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start blocks serving HTTP until the listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
	err := s.httpServer.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		// The route pattern keeps the label set bounded; raw paths would
		// mint a label value per booking ID.
		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.IncHTTP(endpoint)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("elapsed", time.Since(start)).
			Msg("Request handled")
	})
}

// requireKey gates management endpoints behind the configured API key.
func (s *Server) requireKey(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.Header.Get("X-API-Key") != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid api key")
			return
		}
		next(w, r)
	}
}

// decodeStrict decodes a JSON request body, rejecting fields the target
// struct does not declare.
func decodeStrict(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(out)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
