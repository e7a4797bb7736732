// Package api provides the HTTP API server for the ACE migration estimator.
package api

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"ace-estimator/internal/audit"
	"ace-estimator/internal/estimator"
	"ace-estimator/internal/history"
	"ace-estimator/internal/insight"
)

// Version is the service version reported on /version. Overridden at build
// time via -ldflags.
var Version = "0.1.0"

// Config holds server configuration.
type Config struct {
	Port           int
	RequestTimeout time.Duration
	MaxRequestSize int64
	CORSOrigins    []string
}

// DefaultConfig returns default server configuration.
func DefaultConfig() *Config {
	return &Config{
		Port:           8080,
		RequestTimeout: 60 * time.Second,
		MaxRequestSize: 1 * 1024 * 1024, // 1MB, questionnaires are small
		CORSOrigins:    []string{"*"},
	}
}

// Server is the HTTP API server. The history store and audit log are
// optional; without them the server still serves deterministic estimates.
type Server struct {
	httpServer *http.Server
	service    *estimator.Service
	advisor    insight.Advisor
	store      history.Store
	auditLog   *audit.Log
	config     *Config
	log        zerolog.Logger
	startTime  time.Time
}

// NewServer creates the API server.
func NewServer(service *estimator.Service, advisor insight.Advisor, store history.Store, auditLog *audit.Log, config *Config, log zerolog.Logger) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	return &Server{
		service:   service,
		advisor:   advisor,
		store:     store,
		auditLog:  auditLog,
		config:    config,
		log:       log.With().Str("component", "api").Logger(),
		startTime: time.Now(),
	}
}

// Router builds the chi router with all routes registered.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(s.config.RequestTimeout))
	r.Use(s.corsMiddleware)
	r.Use(s.loggingMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/health/live", s.handleLiveness)
	r.Get("/health/ready", s.handleReadiness)
	r.Get("/version", s.handleVersion)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/estimate", func(r chi.Router) {
			r.Post("/live", s.handleLiveEstimate)
			r.Post("/report", s.handleReport)
			r.Get("/quick", s.handleQuickEstimate)
		})
		r.Get("/insights", s.handleInsights)
		r.Get("/insights/similar-projects", s.handleSimilarProjects)
		r.Post("/insights/risk-assessment", s.handleRiskAssessment)
		r.Get("/insights/collection-stats", s.handleCollectionStats)
	})

	return r
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: s.config.RequestTimeout + 5*time.Second,
	}

	s.log.Info().Int("port", s.config.Port).Str("version", Version).Msg("starting API server")
	return s.httpServer.ListenAndServe()
}

// StartWithGracefulShutdown runs the server until SIGINT/SIGTERM, then
// drains in-flight requests.
func (s *Server) StartWithGracefulShutdown() error {
	errChan := make(chan error, 1)
	go func() {
		if err := s.Start(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case <-quit:
		s.log.Info().Msg("shutting down server")
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(ctx)
	}
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("request")
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		allowed := false
		for _, o := range s.config.CORSOrigins {
			if o == "*" || o == origin {
				allowed = true
				break
			}
		}

		if allowed {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Set("Access-Control-Max-Age", "86400")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"service": "ace-estimator",
		"version": Version,
		"uptime":  time.Since(s.startTime).String(),
	})
}

func (s *Server) handleLiveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *Server) handleReadiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	// The deterministic estimator needs no backing services; readiness only
	// degrades when a configured store stops answering.
	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			s.jsonResponse(w, http.StatusServiceUnavailable, map[string]string{
				"status": "not ready",
				"reason": "history store unreachable",
			})
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("READY"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"version": Version,
		"service": "ace-estimator",
	})
}
