// internal/api/server.go
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/newthinker/ddm/internal/api/handler/api"
	"github.com/newthinker/ddm/internal/api/middleware"
	"github.com/newthinker/ddm/internal/api/response"
	"github.com/newthinker/ddm/internal/app"
	"github.com/newthinker/ddm/internal/metrics"
	"github.com/newthinker/ddm/internal/storage/archive"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server represents the HTTP server for DDM
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	mux        *http.ServeMux
	deps       Dependencies
}

// Config holds server configuration
type Config struct {
	Host        string
	Port        int
	APIKey      string
	MetricsPath string
}

// Dependencies are the services the routes are served from. Archive and
// Metrics are optional.
type Dependencies struct {
	App     *app.App
	Archive *archive.Archive
	Metrics *metrics.Registry
}

// NewServer creates a new HTTP server
func NewServer(cfg Config, deps Dependencies, logger *zap.Logger) (*Server, error) {
	if deps.App == nil {
		return nil, fmt.Errorf("app is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := http.NewServeMux()

	var handler http.Handler = mux
	if deps.Metrics != nil {
		handler = metrics.HTTPMiddleware(deps.Metrics)(handler)
	}
	handler = metrics.LoggingMiddleware(logger)(handler)

	s := &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger: logger,
		mux:    mux,
		deps:   deps,
	}

	s.setupRoutes(cfg)
	return s, nil
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes(cfg Config) {
	auth := middleware.APIKeyAuth(cfg.APIKey)
	protect := func(pattern string, h http.HandlerFunc) {
		s.mux.Handle(pattern, auth(h))
	}

	valuationHandler := api.NewValuationHandler(s.deps.App)
	protect("GET /api/valuation/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		valuationHandler.Get(w, r, r.PathValue("symbol"))
	})

	watchlistHandler := api.NewWatchlistHandler(s.deps.App)
	protect("GET /api/watchlist", watchlistHandler.List)
	protect("POST /api/watchlist", watchlistHandler.Add)
	protect("GET /api/watchlist/values", watchlistHandler.Values)
	protect("DELETE /api/watchlist/{symbol}", func(w http.ResponseWriter, r *http.Request) {
		watchlistHandler.Remove(w, r, r.PathValue("symbol"))
	})

	if s.deps.Archive != nil {
		reportsHandler := api.NewReportsHandler(s.deps.Archive)
		protect("GET /api/reports/{symbol}", func(w http.ResponseWriter, r *http.Request) {
			reportsHandler.List(w, r, r.PathValue("symbol"))
		})
		protect("GET /api/reports/{symbol}/latest", func(w http.ResponseWriter, r *http.Request) {
			reportsHandler.Latest(w, r, r.PathValue("symbol"))
		})
	}

	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	if s.deps.Metrics != nil {
		path := cfg.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		s.mux.Handle("GET "+path, promhttp.HandlerFor(s.deps.Metrics, promhttp.HandlerOpts{}))
	}
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"app":    s.deps.App.GetStats(),
	})
}
