// Package service implements the application's use cases on top of the
// store, keeping HTTP handlers thin.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/cozyshelfapp/shelf-server/internal/auth"
	"github.com/cozyshelfapp/shelf-server/internal/daily"
	"github.com/cozyshelfapp/shelf-server/internal/domain"
	apperr "github.com/cozyshelfapp/shelf-server/internal/errors"
	"github.com/cozyshelfapp/shelf-server/internal/id"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
	"github.com/cozyshelfapp/shelf-server/internal/store"
	"github.com/cozyshelfapp/shelf-server/internal/validation"
)

// AuthService handles signup, login, and token verification.
type AuthService struct {
	store        *store.Store
	tokenService *auth.TokenService
	validator    *validation.Validator
	logger       *logger.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(s *store.Store, tokens *auth.TokenService, v *validation.Validator, log *logger.Logger) *AuthService {
	return &AuthService{
		store:        s,
		tokenService: tokens,
		validator:    v,
		logger:       log,
	}
}

// SignupRequest contains new account data.
type SignupRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"display_name" validate:"required,max=100"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult carries the authenticated user and their access token.
type AuthResult struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"access_token"`
	ExpiresIn   int64        `json:"expires_in"`
}

// Signup creates a new account and seeds its starter sticker pack.
func (s *AuthService) Signup(ctx context.Context, req *SignupRequest) (*AuthResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperr.Wrap(err, apperr.CodeValidation, "invalid password")
	}

	now := time.Now()
	user := &domain.User{
		ID:           id.MustGenerate("usr"),
		Email:        domain.NormalizeEmail(req.Email),
		DisplayName:  req.DisplayName,
		PasswordHash: hash,
		CreatedAt:    now,
		CreatedAtMs:  now.UnixMilli(),
	}

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	// New shelves start with the built-in sticker pack so the tray is
	// never empty.
	if err := s.store.ImportBatch(ctx, user.ID, nil, daily.StarterPack(now.UnixMilli()), nil); err != nil {
		return nil, fmt.Errorf("seed starter pack: %w", err)
	}

	s.logger.Info("user signed up", "user_id", user.ID)
	return s.issueToken(user)
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, req *LoginRequest) (*AuthResult, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		// Same error for unknown email and wrong password.
		return nil, apperr.InvalidCredentials("invalid email or password")
	}

	ok, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, apperr.Internal("password verification failed").WithCause(err)
	}
	if !ok {
		return nil, apperr.InvalidCredentials("invalid email or password")
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return s.issueToken(user)
}

// Verify resolves an access token to the authenticated user ID.
func (s *AuthService) Verify(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		return nil, apperr.Unauthorized("invalid or expired token")
	}
	return s.store.GetUser(ctx, claims.UserID)
}

func (s *AuthService) issueToken(user *domain.User) (*AuthResult, error) {
	token, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, apperr.Internal("failed to issue token").WithCause(err)
	}

	return &AuthResult{
		User:        user,
		AccessToken: token,
		ExpiresIn:   int64(s.tokenService.AccessTokenDuration().Seconds()),
	}, nil
}
