package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (s *Server) setupRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(LoggerMiddleware(s.logger))
	s.router.Use(middleware.Recoverer)

	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics)
	}

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))

		r.Get("/health", s.handleHealth)

		r.Route("/widgets", func(r chi.Router) {
			r.Get("/", s.handleListWidgets)   // GET /api/v1/widgets
			r.Get("/{id}", s.handleGetWidget) // GET /api/v1/widgets/{id}
		})

		r.Get("/profiles", s.handleListProfiles)

		r.Route("/profiles/{profile}", func(r chi.Router) {
			r.Get("/widgets", s.handleVisibleWidgets)
			r.Route("/visibility", func(r chi.Router) {
				r.Get("/", s.handleGetVisibility)
				r.Post("/reset", s.handleResetVisibility)
				r.Put("/{id}", s.handleSetVisibility)
				r.Post("/{id}/toggle", s.handleToggleVisibility)
			})
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
