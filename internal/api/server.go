package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/K-Le-PaaS/backend-hybrid-sub002/internal/notifier"
)

// Server exposes the notification HTTP API.
type Server struct {
	logger     *zap.Logger
	engine     *notifier.Engine
	router     chi.Router
	httpServer *http.Server
}

// New creates a Server around the given engine.
func New(logger *zap.Logger, engine *notifier.Engine, listen string) *Server {
	s := &Server{
		logger: logger.Named("api"),
		engine: engine,
	}
	s.router = s.buildRouter()
	s.httpServer = &http.Server{
		Addr:              listen,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/notifications", s.handleNotify)
	})

	return r
}

// Router returns the handler, for tests.
func (s *Server) Router() http.Handler { return s.router }

// Start begins listening on the configured address. Blocks until the
// listener fails or Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP API listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
