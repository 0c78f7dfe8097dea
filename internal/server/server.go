// Package server provides the HTTP API for the scheme engine.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/margdarshak/schemeseek/internal/config"
	"github.com/margdarshak/schemeseek/internal/engine"
	"go.uber.org/zap"
)

// Server is the HTTP server for the schemeseek API.
type Server struct {
	engine *engine.Engine
	config *config.Config
	logger *zap.Logger
	server *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(eng *engine.Engine, cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		engine: eng,
		config: cfg,
		logger: logger,
	}
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/recommend", s.handleRecommend)
	r.Post("/api/v1/chat", s.handleChat)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/api/v1/schemes/search", s.handleSchemeSearch)
	r.Get("/api/v1/schemes/{id}", s.handleGetScheme)
	r.Post("/api/v1/reload", s.handleReload)
	r.Get("/health", s.handleHealth)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: r,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
