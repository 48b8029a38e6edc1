// internal/httpserver/server.go
package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/tutor/internal/config"
	"github.com/MrSnakeDoc/tutor/internal/httpserver/deps"
	"github.com/MrSnakeDoc/tutor/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/tutor/internal/httpserver/mw"
	"github.com/MrSnakeDoc/tutor/internal/httpserver/routes"
	"github.com/MrSnakeDoc/tutor/internal/logger"
)

// Server wraps the HTTP server and its dependencies.
type Server struct {
	http    *http.Server
	logger  logger.Logger
	started time.Time
}

// New builds the HTTP server (router, middlewares, route registration).
func New(cfg *config.Config, loggerClient logger.Logger, d deps.Deps) *Server {
	return &Server{
		http: &http.Server{
			Addr:              cfg.ListenPort,
			Handler:           NewRouter(cfg, d),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
		logger:  loggerClient,
		started: d.StartTime,
	}
}

// NewRouter wires middlewares and every registered route.
func NewRouter(cfg *config.Config, d deps.Deps) http.Handler {
	r := chi.NewRouter()

	// --- Global middlewares (safe defaults)
	r.Use(middleware.GetHead)
	r.Use(middleware.RequestID) // X-Request-ID on each request
	r.Use(middleware.Recoverer) // never crash the process on panic
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(mw.Log(d.Logger, cfg.TrustProxy)) // structured access logs

	routes.RegisterAll(r, d)

	// "/404" is not registered and lands here too. Unknown paths are pages,
	// so the host check applies before the not-found page is rendered.
	r.NotFound(mw.EnforceHost(d.AllowedHosts, d.Logger)(handlers.NotFound(d)).ServeHTTP)

	return r
}

// Start runs the HTTP server (blocks until error or shutdown).
func (s *Server) Start() error {
	s.logger.Infof("HTTP server listening on %s", s.http.Addr)
	err := s.http.ListenAndServe()
	// http.ErrServerClosed is expected on graceful shutdown.
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Stop gracefully shuts down the server with the provided context deadline.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("HTTP server shutting down...")
	return s.http.Shutdown(ctx)
}
