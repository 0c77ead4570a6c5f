// Package api exposes the shelf over HTTP: a JSON API under /api/v1 plus
// an SSE stream for live updates.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cozyshelfapp/shelf-server/internal/logger"
	"github.com/cozyshelfapp/shelf-server/internal/service"
	"github.com/cozyshelfapp/shelf-server/internal/sse"
)

// Services bundles everything the handlers call into.
type Services struct {
	Auth     *service.AuthService
	Books    *service.BookService
	Stickers *service.StickerService
	Goals    *service.GoalService
	Doodles  *service.DoodleService
	Backups  *service.BackupService
}

// Server is the HTTP API server.
type Server struct {
	router   chi.Router
	services Services
	sse      *sse.Handler
	logger   *logger.Logger
}

// NewServer builds the router with all routes mounted.
func NewServer(services Services, sseHandler *sse.Handler, log *logger.Logger, allowedOrigins []string) *Server {
	s := &Server{
		services: services,
		sse:      sseHandler,
		logger:   log,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", s.handleSignup)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/auth/me", s.handleMe)

			r.Get("/books", s.handleListBooks)
			r.Post("/books", s.handleCreateBook)
			r.Get("/books/{bookID}", s.handleGetBook)
			r.Patch("/books/{bookID}", s.handleUpdateBook)
			r.Delete("/books/{bookID}", s.handleDeleteBook)

			r.Get("/books/{bookID}/doodle", s.handleGetDoodle)
			r.Put("/books/{bookID}/doodle", s.handleSaveDoodle)
			r.Delete("/books/{bookID}/doodle", s.handleClearDoodle)
			r.Get("/books/{bookID}/doodle/thumbnail.png", s.handleDoodleThumbnail)

			r.Get("/stickers", s.handleListStickers)
			r.Post("/stickers", s.handleCreateSticker)
			r.Delete("/stickers/{stickerID}", s.handleDeleteSticker)
			r.Post("/stickers/daily", s.handleDailySticker)

			r.Get("/goals", s.handleListGoals)
			r.Post("/goals", s.handleCreateGoal)
			r.Patch("/goals/{goalID}", s.handleUpdateGoal)
			r.Delete("/goals/{goalID}", s.handleDeleteGoal)

			r.Get("/export", s.handleExport)
			r.Post("/import", s.handleImport)

			r.Get("/events", s.handleEvents)
		})
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeData(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleEvents upgrades the request to an SSE stream scoped to the
// authenticated user.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	s.sse.Serve(w, r, user.ID)
}
