// Package web is the upload-and-trigger surface over the pipeline: POST a
// dataset, run deduplication on it, fetch the summary and top pairs. It
// contains no matching logic of its own.
package web

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/azraattar/deduplication-system/internal/pipeline"
)

// Config represents the web server configuration
type Config struct {
	Host       string
	Port       int
	UploadDir  string
	OutputPath string // predictions artifact location for web-triggered runs
	TopPairs   int    // how many pairs /api/results returns
}

// DefaultConfig returns the default web configuration.
func DefaultConfig() *Config {
	return &Config{
		Host:       "0.0.0.0",
		Port:       8080,
		UploadDir:  "data/uploads",
		OutputPath: "data/raw/dynamic_predictions.csv",
		TopPairs:   100,
	}
}

// Server serves the upload/run/results API.
type Server struct {
	config     *Config
	driver     *pipeline.Driver
	router     *mux.Router
	httpServer *http.Server

	mu      sync.Mutex
	uploads map[string]string // upload id -> stored path
	last    *pipeline.Summary // most recent run, nil before first run
}

// NewServer creates a new web server instance
func NewServer(config *Config, driver *pipeline.Driver) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := os.MkdirAll(config.UploadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}

	server := &Server{
		config:  config,
		driver:  driver,
		uploads: make(map[string]string),
	}
	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	s.router = mux.NewRouter()

	s.router.HandleFunc("/health", s.Health).Methods("GET")

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/upload", s.Upload).Methods("POST")
	api.HandleFunc("/run", s.Run).Methods("POST")
	api.HandleFunc("/results", s.Results).Methods("GET")
	api.HandleFunc("/artifact", s.Artifact).Methods("GET")
}

// Start starts the web server and blocks until SIGINT/SIGTERM, then shuts
// down gracefully.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		fmt.Printf("Starting server on http://%s\n", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Printf("Server error: %v\n", err)
		}
	}()

	<-stop
	fmt.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
