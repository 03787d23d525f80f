// Package webui provides the web-based user interface for GenAI Studio.
// This file contains the Server organism that wires together all web UI
// components.
package webui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"genai_studio/logging"
	"genai_studio/webui/static"
)

// Server is the main HTTP server organism for the studio.
// It wires together:
//   - StudioAPI for the REST endpoints
//   - LoggingMiddleware for request logging
//   - the embedded static page
//
// Methods:
//   - NewServer() creates a configured server instance
//   - Start() begins listening on the configured port
//   - Shutdown() gracefully shuts down the server
type Server struct {
	httpServer *http.Server
	mux        *http.ServeMux
	config     ServerConfig
	logger     *logging.Logger
	api        *StudioAPI
	loggingMw  *LoggingMiddleware
}

// ServerConfig configures the Server.
type ServerConfig struct {
	// Port to listen on (default: 8080)
	Port int

	// Host to bind to (default: "localhost")
	Host string

	// ReadTimeout for HTTP requests (default: 15s)
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses. Must exceed the generation
	// timeout or slow provider calls are cut off mid-response
	// (default: 90s).
	WriteTimeout time.Duration

	// IdleTimeout for keep-alive connections (default: 120s)
	IdleTimeout time.Duration

	// ShutdownTimeout for graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration

	// LogSkipPaths are paths to skip logging
	LogSkipPaths []string
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:            8080,
		Host:            "localhost",
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    90 * time.Second,
		IdleTimeout:     120 * time.Second,
		ShutdownTimeout: 15 * time.Second,
		LogSkipPaths:    []string{"/health", "/api/tip"},
	}
}

// NewServer creates a new Server with the given configuration and API.
func NewServer(config ServerConfig, api *StudioAPI, logger *logging.Logger) (*Server, error) {
	if api == nil {
		return nil, fmt.Errorf("webui: api cannot be nil")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if config.Port == 0 {
		config.Port = 8080
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.ReadTimeout <= 0 {
		config.ReadTimeout = 15 * time.Second
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = 90 * time.Second
	}
	if config.IdleTimeout <= 0 {
		config.IdleTimeout = 120 * time.Second
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = 15 * time.Second
	}

	server := &Server{
		mux:       http.NewServeMux(),
		config:    config,
		logger:    logger.Named("webui"),
		api:       api,
		loggingMw: NewLoggingMiddleware(logger, config.LogSkipPaths),
	}
	server.setupRoutes()

	addr := fmt.Sprintf("%s:%d", config.Host, config.Port)
	server.httpServer = &http.Server{
		Addr:         addr,
		Handler:      server.loggingMw.Handler(server.mux),
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		IdleTimeout:  config.IdleTimeout,
	}

	server.logger.Info("web server created", zap.String("addr", addr))
	return server, nil
}

// setupRoutes configures all the HTTP routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.api.RegisterRoutes(s.mux)
	s.mux.HandleFunc("/", s.handleRoot)
}

// handleRoot serves the embedded studio page at the root path only.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	page, err := static.ReadFile("index.html")
	if err != nil {
		s.logger.Error("embedded page missing", zap.Error(err))
		http.Error(w, "page unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page)
}

// handleHealth handles health check requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// Start begins listening for HTTP requests. It blocks until the server
// is shut down.
func (s *Server) Start() error {
	s.logger.Info("web server starting", zap.String("addr", s.httpServer.Addr))

	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("webui: http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server, waiting for in-flight
// requests up to the configured shutdown timeout.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down web server")

	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("webui: shutdown error: %w", err)
	}

	s.logger.Info("web server stopped")
	return nil
}

// Addr returns the server's address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Handler returns the fully wired root handler for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
