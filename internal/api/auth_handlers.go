package api

import (
	"net/http"

	"github.com/cozyshelfapp/shelf-server/internal/service"
)

// userResponse is the public shape of a user; the password hash never
// crosses the wire.
type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	CreatedAtMs int64  `json:"created_at_ms"`
}

type authResponse struct {
	User        userResponse `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
}

func toAuthResponse(res *service.AuthResult) authResponse {
	return authResponse{
		User: userResponse{
			ID:          res.User.ID,
			Email:       res.User.Email,
			DisplayName: res.User.DisplayName,
			CreatedAtMs: res.User.CreatedAtMs,
		},
		AccessToken: res.AccessToken,
		ExpiresIn:   res.ExpiresIn,
	}
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req service.SignupRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.services.Auth.Signup(r.Context(), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusCreated, toAuthResponse(res))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	res, err := s.services.Auth.Login(r.Context(), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, http.StatusOK, toAuthResponse(res))
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	user := userFrom(r.Context())
	s.writeData(w, http.StatusOK, userResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAtMs: user.CreatedAtMs,
	})
}
