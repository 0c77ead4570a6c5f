package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cozyshelfapp/shelf-server/internal/service"
	"github.com/cozyshelfapp/shelf-server/internal/shelf"
)

func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	q := shelf.Query{
		Status: r.URL.Query().Get("status"),
		Search: r.URL.Query().Get("search"),
	}

	books, err := s.services.Books.List(r.Context(), user.ID, q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, books)
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req service.CreateBookRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	book, err := s.services.Books.Create(r.Context(), user.ID, &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, book)
}

func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	book, err := s.services.Books.Get(r.Context(), user.ID, chi.URLParam(r, "bookID"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, book)
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	var req service.UpdateBookRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	book, err := s.services.Books.Update(r.Context(), user.ID, chi.URLParam(r, "bookID"), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, book)
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())

	if err := s.services.Books.Delete(r.Context(), user.ID, chi.URLParam(r, "bookID")); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, map[string]bool{"deleted": true})
}
