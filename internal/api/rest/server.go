package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fortuna/nyx/internal/cache"
	"github.com/fortuna/nyx/internal/scheduler"
	"github.com/fortuna/nyx/internal/store"
)

// Server represents the REST API server
type Server struct {
	port    string
	server  *http.Server
	handler *Handler
}

// NewServer creates a new REST API server
func NewServer(port string, db *store.Database, rc *cache.RedisCache, orch *scheduler.Orchestrator) *Server {
	handler := NewHandler(db, rc, orch)

	router := mux.NewRouter()

	// Apply middleware
	router.Use(RecoveryMiddleware)
	router.Use(LoggingMiddleware)
	router.Use(CORSMiddleware)
	router.Use(RateLimitMiddleware(120, time.Minute))

	// Health check
	router.HandleFunc("/health", handler.HealthCheck).Methods("GET")

	// API v1 routes
	api := router.PathPrefix("/api/v1").Subrouter()

	// Night windows
	api.HandleFunc("/night", handler.GetNight).Methods("GET")
	api.HandleFunc("/games", handler.GetGames).Methods("GET")
	api.HandleFunc("/injuries", handler.GetInjuries).Methods("GET")
	api.HandleFunc("/injuries/history", handler.GetInjuryHistory).Methods("GET")

	// Teams
	api.HandleFunc("/teams", handler.GetTeams).Methods("GET")

	// Sync operations
	api.HandleFunc("/sync/injuries", handler.TriggerInjurySync).Methods("POST")
	api.HandleFunc("/sync/schedule", handler.TriggerScheduleImport).Methods("POST")
	api.HandleFunc("/status", handler.GetStatus).Methods("GET")

	return &Server{
		port:    port,
		handler: handler,
		server: &http.Server{
			Addr:    fmt.Sprintf(":%s", port),
			Handler: router,
		},
	}
}

// Start starts the REST API server
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
