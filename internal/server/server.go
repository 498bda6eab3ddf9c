package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/coachtaylor/transfit/internal/catalog"
	"github.com/coachtaylor/transfit/internal/config"
	"github.com/coachtaylor/transfit/internal/regression"
	"github.com/coachtaylor/transfit/internal/storage"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	registry *Registry
	catalog  *catalog.DB
	db       *storage.DB
	advisor  regression.Advisor
	safety   config.SafetyConfig
	log      *slog.Logger
	apiKey   string
	router   chi.Router
}

// New creates a new Server with all routes configured.
func New(registry *Registry, cat *catalog.DB, db *storage.DB, advisor regression.Advisor, safety config.SafetyConfig, apiKey string, log *slog.Logger) *Server {
	s := &Server{
		registry: registry,
		catalog:  cat,
		db:       db,
		advisor:  advisor,
		safety:   safety,
		log:      log,
		apiKey:   apiKey,
		router:   chi.NewRouter(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Use(RequestLogging(s.log))
	s.router.Use(CORS)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Mutating endpoints (API key required)
		r.Group(func(r chi.Router) {
			r.Use(APIKeyAuth(s.apiKey))
			r.Post("/sessions", s.handleCreateSession)
			r.Post("/sessions/{id}/commands/{command}", s.handleCommand)
			r.Post("/sessions/{id}/retry-persist", s.handleRetryPersist)
			r.Delete("/sessions/{id}", s.handleDeleteSession)
		})

		// Read endpoints (no auth; tsnet handles access)
		r.Get("/sessions", s.handleListSessions)
		r.Get("/sessions/{id}", s.handleGetSession)
		r.Get("/history/sessions", s.handleHistorySessions)
		r.Get("/history/sessions/{id}", s.handleHistorySessionSets)
		r.Get("/exercises/{id}", s.handleGetExercise)
	})
}
