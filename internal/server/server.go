// Package server exposes the operational HTTP surface: health and metrics.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cortexhub/mediabot/internal/conversation"
)

// Status describes the runtime facts the health endpoint reports.
type Status struct {
	ChannelEnabled      bool
	RecognizerAvailable bool
}

// HealthResponse is the health check response body.
type HealthResponse struct {
	Status        string                   `json:"status"`
	Uptime        string                   `json:"uptime"`
	Services      map[string]ServiceHealth `json:"services"`
	Conversations int                      `json:"conversations"`
	Timestamp     string                   `json:"timestamp"`
}

// ServiceHealth is one service entry in the health response.
type ServiceHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

type Server struct {
	status     Status
	store      *conversation.Store
	httpServer *http.Server
	startTime  time.Time
	logger     *slog.Logger
}

func New(host string, port int, status Status, store *conversation.Store, logger *slog.Logger) *Server {
	s := &Server{
		status:    status,
		store:     store,
		logger:    logger,
		startTime: time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.healthHandler)
	mux.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

// Start blocks serving until Shutdown is called.
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	services := map[string]ServiceHealth{
		"telegram": {Healthy: s.status.ChannelEnabled},
		"recognizer": {
			Healthy: s.status.RecognizerAvailable,
			Message: recognizerMessage(s.status.RecognizerAvailable),
		},
	}

	response := HealthResponse{
		Status:        "healthy",
		Uptime:        time.Since(s.startTime).String(),
		Services:      services,
		Conversations: s.store.Len(),
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

func recognizerMessage(available bool) string {
	if available {
		return ""
	}
	return "speech recognition disabled: engine failed to initialize"
}
