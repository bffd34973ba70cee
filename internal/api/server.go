package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/dgallion1/notegest/internal/config"
	"github.com/dgallion1/notegest/internal/onenote"
	"github.com/dgallion1/notegest/internal/pipeline"
)

// Server is the HTTP API server for notegest.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	stats        *onenote.CallStats
	outputDir    string
	log          *zap.Logger
	cfg          config.ServerConfig
}

// NewServer creates and configures the HTTP server. stats may be nil when
// live automation is not in use.
func NewServer(orch *pipeline.Orchestrator, stats *onenote.CallStats, outputDir string, log *zap.Logger, cfg config.ServerConfig) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		orchestrator: orch,
		stats:        stats,
		outputDir:    outputDir,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/extract", s.handleExtract)
		r.Get("/api/extract/{jobID}/status", s.handleExtractStatus)

		r.Get("/api/exports", s.handleListExports)
		r.Get("/api/exports/{name}", s.handleGetExport)
		r.Delete("/api/exports/{name}", s.handleDeleteExport)

		r.Get("/api/stats/automation", s.handleAutomationStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}
