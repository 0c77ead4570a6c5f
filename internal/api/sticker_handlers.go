package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cozyshelfapp/shelf-server/internal/service"
)

func (s *Server) handleListStickers(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	stickers, err := s.services.Stickers.List(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, stickers)
}

func (s *Server) handleCreateSticker(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req service.CreateStickerRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	sticker, err := s.services.Stickers.Create(r.Context(), user.ID, &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, sticker)
}

func (s *Server) handleDeleteSticker(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.services.Stickers.Delete(r.Context(), user.ID, chi.URLParam(r, "stickerID")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}

// handleDailySticker grants the sticker-of-the-day. Responds with the new
// sticker, or granted=false when today's was already collected.
func (s *Server) handleDailySticker(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	sticker, err := s.services.Stickers.GrantDaily(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if sticker == nil {
		s.writeData(w, http.StatusOK, map[string]any{"granted": false})
		return
	}
	s.writeData(w, http.StatusCreated, map[string]any{"granted": true, "sticker": sticker})
}
