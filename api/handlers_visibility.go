package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CreativeUnicorns/widgetprefs"
)

// visibilityResponse is the body returned by every visibility endpoint.
type visibilityResponse struct {
	Profile    string                    `json:"profile"`
	Visibility widgetprefs.VisibilityMap `json:"visibility"`
	Visible    []string                  `json:"visible"`
	UpdatedAt  *time.Time                `json:"updated_at,omitempty"`
}

type setVisibilityRequest struct {
	Visible *bool `json:"visible"`
}

func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.manager.Profiles(r.Context())
	if err != nil {
		s.respondWithError(w, r, http.StatusServiceUnavailable, "Failed to list profiles", err)
		return
	}
	s.respondWithJSON(w, r, http.StatusOK, map[string][]string{"profiles": profiles})
}

func (s *Server) handleGetVisibility(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")
	s.respondWithVisibility(w, r, profile, s.manager.Load(r.Context(), profile))
}

func (s *Server) handleVisibleWidgets(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")
	widgets := s.manager.VisibleWidgets(r.Context(), profile)
	if widgets == nil {
		widgets = []widgetprefs.Widget{}
	}
	s.respondWithJSON(w, r, http.StatusOK, widgets)
}

func (s *Server) handleSetVisibility(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")
	id, ok := s.widgetParam(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, 1024)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	var req setVisibilityRequest
	if err := decoder.Decode(&req); err != nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	if req.Visible == nil {
		s.respondWithError(w, r, http.StatusBadRequest, "Invalid request payload", errors.New(`"visible" is required`))
		return
	}

	s.respondWithVisibility(w, r, profile, s.manager.Set(r.Context(), profile, id, *req.Visible))
}

func (s *Server) handleToggleVisibility(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")
	id, ok := s.widgetParam(w, r)
	if !ok {
		return
	}
	s.respondWithVisibility(w, r, profile, s.manager.Toggle(r.Context(), profile, id))
}

func (s *Server) handleResetVisibility(w http.ResponseWriter, r *http.Request) {
	profile := chi.URLParam(r, "profile")
	s.respondWithVisibility(w, r, profile, s.manager.Reset(r.Context(), profile))
}

// widgetParam resolves {id} against the registry; unknown ids get a 404.
func (s *Server) widgetParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if _, found := s.manager.Registry().Lookup(id); !found {
		s.respondWithError(w, r, http.StatusNotFound, "Widget not found", nil)
		return "", false
	}
	return id, true
}

func (s *Server) respondWithVisibility(w http.ResponseWriter, r *http.Request, profile string, v widgetprefs.VisibilityMap) {
	if profile == "" {
		profile = widgetprefs.DefaultProfile
	}
	resp := visibilityResponse{
		Profile:    profile,
		Visibility: v,
		Visible:    []string{},
	}
	for _, widget := range s.manager.Registry().Visible(v) {
		resp.Visible = append(resp.Visible, widget.ID)
	}
	if ts, err := s.manager.LastSaved(r.Context(), profile); err == nil {
		resp.UpdatedAt = &ts
	}
	s.respondWithJSON(w, r, http.StatusOK, resp)
}
