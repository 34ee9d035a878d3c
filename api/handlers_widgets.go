package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleListWidgets returns the registry in definition order.
func (s *Server) handleListWidgets(w http.ResponseWriter, r *http.Request) {
	s.respondWithJSON(w, r, http.StatusOK, s.manager.Registry().All())
}

func (s *Server) handleGetWidget(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	widget, found := s.manager.Registry().Lookup(id)
	if !found {
		s.respondWithError(w, r, http.StatusNotFound, "Widget not found", nil)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, widget)
}
