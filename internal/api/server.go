package api

import (
	"log/slog"
	"net/http"

	"github.com/doctrans/doctrans/internal/authgate"
	"github.com/doctrans/doctrans/internal/config"
	"github.com/doctrans/doctrans/internal/docstore"
	"github.com/doctrans/doctrans/internal/engine"
	"github.com/doctrans/doctrans/internal/pipeline"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the HTTP API server for doctrans.
type Server struct {
	router chi.Router
	texts  *pipeline.TextService
	queue  *pipeline.Queue
	store  pipeline.Store
	docs   *docstore.Store
	gate   authgate.Gate
	stats  *engine.CallStats
	log    *slog.Logger
	cfg    config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(texts *pipeline.TextService, queue *pipeline.Queue, store pipeline.Store, docs *docstore.Store, gate authgate.Gate, stats *engine.CallStats, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		texts: texts,
		queue: queue,
		store: store,
		docs:  docs,
		gate:  gate,
		stats: stats,
		log:   log,
		cfg:   cfg,
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

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/translate", s.handleTranslate)

		r.Post("/api/documents", s.handleSubmitDocument)
		r.Get("/api/documents", s.handleListDocuments)
		r.Get("/api/documents/{taskID}/status", s.handleDocumentStatus)
		r.Get("/api/documents/{taskID}/download", s.handleDocumentDownload)
		r.Delete("/api/documents/{taskID}", s.handleDeleteDocument)

		r.Get("/api/queue", s.handleQueueSnapshot)
		r.Post("/api/queue/pause", s.handleQueuePause)
		r.Post("/api/queue/resume", s.handleQueueResume)
		r.Post("/api/queue/clear", s.handleQueueClear)

		r.Get("/api/stats/engine", s.handleEngineStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
