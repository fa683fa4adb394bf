// Package api exposes statement building and return valuation over HTTP.
// It can be started from the CLI or mounted programmatically.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/aqlanhadi/tally/reconcile"
	"github.com/aqlanhadi/tally/source"
)

// Config holds the API server configuration
type Config struct {
	Port           string
	LogPrefix      string
	RequestTimeout time.Duration
	MaxBodyBytes   int64
}

// DefaultConfig returns the default API configuration
func DefaultConfig() Config {
	return Config{
		Port:           ":8080",
		LogPrefix:      "API: ",
		RequestTimeout: 30 * time.Second,
		MaxBodyBytes:   10 << 20,
	}
}

// SnapshotStore loads stored snapshots. *postgres.DB satisfies it.
type SnapshotStore interface {
	LoadSnapshot(ctx context.Context, counterpartyType, externalID string) (reconcile.Snapshot, error)
}

// Deps are the collaborators of the server. Nil Service and Normalizer fall
// back to the defaults; a nil Store disables the stored-statement route.
type Deps struct {
	Service    *reconcile.Service
	Normalizer *source.Normalizer
	Store      SnapshotStore
}

// Server represents the HTTP API server
type Server struct {
	config     Config
	router     chi.Router
	service    *reconcile.Service
	normalizer *source.Normalizer
	store      SnapshotStore
	validate   *validator.Validate
}

// New creates a new API server with the given configuration
func New(cfg Config, deps Deps) *Server {
	s := &Server{
		config:     cfg,
		router:     chi.NewRouter(),
		service:    deps.Service,
		normalizer: deps.Normalizer,
		store:      deps.Store,
		validate:   validator.New(),
	}
	if s.service == nil {
		s.service = reconcile.New(reconcile.DefaultConfig())
	}
	if s.normalizer == nil {
		s.normalizer = source.NewNormalizer()
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	timeout := s.config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s.router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Timeout(timeout),
	)

	s.router.Get("/health", s.handleHealth)
	s.router.Post("/statement", s.handleStatement)
	s.router.Post("/returns/valuate", s.handleValuate)
	s.router.Get("/counterparties/{type}/{id}/statement", s.handleStoredStatement)
}

// Handler returns the http.Handler for the server
// This allows the server to be used with custom http.Server configurations
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("%sStarting server on %s", s.config.LogPrefix, s.config.Port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Printf("%sShutting down", s.config.LogPrefix)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// coalesce returns the first non-empty string
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
