package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"go-remote-handlebars/internal/models"
	"go-remote-handlebars/internal/render"
)

// ViewsConfig locates the files served by GET /views/{name}
type ViewsConfig struct {
	Dir       string
	Extension string
}

// Server represents the HTTP render server
type Server struct {
	engine   *render.Engine
	views    ViewsConfig
	validate *validator.Validate
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates a new render HTTP server
func NewServer(engine *render.Engine, views ViewsConfig, logger *zap.Logger) *Server {
	return &Server{
		engine:   engine,
		views:    views,
		validate: validator.New(),
		logger:   logger,
	}
}

// Start starts the HTTP server on a TCP address
func (s *Server) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}

	s.server = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("Starting render HTTP server", zap.String("address", listener.Addr().String()))
	if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping render HTTP server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the router serving every endpoint
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()

	// Render endpoints
	router.HandleFunc("/render", s.handleRender).Methods("POST")
	router.HandleFunc("/views/{name:.+}", s.handleView).Methods("GET")

	// Store sizes
	router.HandleFunc("/cache/stats", s.handleStats).Methods("GET")

	// Health check
	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// Prometheus metrics endpoint
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, map[string]interface{}{
		"status": "healthy",
		"time":   time.Now().UTC(),
	})
}

// handleStats reports store sizes
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.writeResponse(w, &StatsResponse{
		Success: true,
		Entries: s.engine.Stats(),
	})
}

// parseRequest parses JSON request body
func (s *Server) parseRequest(r *http.Request, v interface{}) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return err
	}
	defer r.Body.Close()

	return json.Unmarshal(body, v)
}

// writeResponse writes JSON response
func (s *Server) writeResponse(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeHTML writes a rendered document
func (s *Server) writeHTML(w http.ResponseWriter, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := io.WriteString(w, html); err != nil {
		s.logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeErrorResponse writes error response
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(&ErrorResponse{Success: false, Error: message}); err != nil {
		s.logger.Error("Failed to write error response", zap.Error(err))
	}
}

// writeRenderError maps a render failure to a status code by its kind
func (s *Server) writeRenderError(w http.ResponseWriter, err error) {
	status := StatusCode(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Render failed", zap.Error(err))
	} else {
		s.logger.Debug("Render rejected", zap.Error(err))
	}
	s.writeErrorResponse(w, err.Error(), status)
}

// StatusCode returns the HTTP status reported for a render error
func StatusCode(err error) int {
	switch {
	case errors.Is(err, models.ErrConfig):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrRead):
		return http.StatusNotFound
	case errors.Is(err, models.ErrFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
