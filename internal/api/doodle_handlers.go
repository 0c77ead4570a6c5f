package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cozyshelfapp/shelf-server/internal/service"
)

func (s *Server) handleGetDoodle(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	doodle, err := s.services.Doodles.Get(r.Context(), user.ID, chi.URLParam(r, "bookID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, doodle)
}

func (s *Server) handleSaveDoodle(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req service.SaveDoodleRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	doodle, err := s.services.Doodles.Save(r.Context(), user.ID, chi.URLParam(r, "bookID"), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, doodle)
}

func (s *Server) handleClearDoodle(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	doodle, err := s.services.Doodles.Clear(r.Context(), user.ID, chi.URLParam(r, "bookID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, doodle)
}

func (s *Server) handleDoodleThumbnail(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	png, err := s.services.Doodles.ThumbnailPNG(r.Context(), user.ID, chi.URLParam(r, "bookID"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		s.logger.Warn("failed to write thumbnail", "error", err)
	}
}
