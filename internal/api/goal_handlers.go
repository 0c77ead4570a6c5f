package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cozyshelfapp/shelf-server/internal/service"
)

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	goals, err := s.services.Goals.List(r.Context(), user.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, goals)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req service.CreateGoalRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	goal, err := s.services.Goals.Create(r.Context(), user.ID, &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, goal)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req service.UpdateGoalRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	goal, err := s.services.Goals.Update(r.Context(), user.ID, chi.URLParam(r, "goalID"), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, goal)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.services.Goals.Delete(r.Context(), user.ID, chi.URLParam(r, "goalID")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}
