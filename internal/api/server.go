package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/clockwise-hq/clockwise-web/internal/auth"
	"github.com/clockwise-hq/clockwise-web/internal/db"
	"github.com/clockwise-hq/clockwise-web/internal/logger"
	"github.com/clockwise-hq/clockwise-web/internal/ratelimit"
	"github.com/clockwise-hq/clockwise-web/internal/report"
	"github.com/clockwise-hq/clockwise-web/internal/storage"
)

// maxRequestBody caps report request bodies at 10 MB. Generated bundles for
// a quarter of tracker data stay well under this.
const maxRequestBody = 10 << 20

// Server holds dependencies for API handlers
type Server struct {
	db        *db.DB
	storage   *storage.S3Storage
	engine    *report.Engine
	snapshots *report.Snapshots
	limiter   ratelimit.RateLimiter
}

// NewServer creates a new API server
func NewServer(database *db.DB, store *storage.S3Storage, limiter ratelimit.RateLimiter) *Server {
	return &Server{
		db:      database,
		storage: store,
		engine: &report.Engine{
			Records: database,
			Refs:    database,
		},
		snapshots: &report.Snapshots{
			DB:    database,
			Blobs: store,
		},
		limiter: limiter,
	}
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.Middleware)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Content-Encoding"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)
	r.Get("/", s.handleRoot)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.Middleware(s.db))
		r.Use(ratelimit.Middleware(s.limiter))
		r.Use(decompressMiddleware())
		r.Use(middleware.RequestSize(maxRequestBody))

		// Report generation and snapshots
		r.Post("/reports", s.handleGenerateReport)
		r.Post("/reports/save", s.handleSaveReport)
		r.Post("/reports/fetch", s.handleFetchReport)
		r.Get("/reports", s.handleListSavedReports)

		// Activity ingest (trackers)
		r.Post("/activities", s.handleIngestActivity)

		// API key management
		r.Post("/keys", HandleCreateAPIKey(s.db))
		r.Get("/keys", HandleListAPIKeys(s.db))
		r.Delete("/keys/{id}", HandleDeleteAPIKey(s.db))
	})

	return r
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// handleRoot returns API info
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"service": "clockwise-backend",
		"version": "v1",
	})
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError writes an error JSON response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
