package service

import (
	"context"
	"time"

	"github.com/cozyshelfapp/shelf-server/internal/daily"
	"github.com/cozyshelfapp/shelf-server/internal/domain"
	"github.com/cozyshelfapp/shelf-server/internal/draw"
	apperr "github.com/cozyshelfapp/shelf-server/internal/errors"
	"github.com/cozyshelfapp/shelf-server/internal/id"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
	"github.com/cozyshelfapp/shelf-server/internal/store"
	"github.com/cozyshelfapp/shelf-server/internal/validation"
)

// StickerService manages the sticker tray.
type StickerService struct {
	store     *store.Store
	daily     *daily.Generator
	validator *validation.Validator
	logger    *logger.Logger
}

// NewStickerService creates a new sticker service.
func NewStickerService(s *store.Store, gen *daily.Generator, v *validation.Validator, log *logger.Logger) *StickerService {
	return &StickerService{
		store:     s,
		daily:     gen,
		validator: v,
		logger:    log,
	}
}

// CreateStickerRequest contains a new sticker upload.
type CreateStickerRequest struct {
	Name    string `json:"name" validate:"max=100"`
	DataURL string `json:"data_url" validate:"required,startswith=data:"`
}

// List returns the user's sticker tray, newest first.
func (s *StickerService) List(ctx context.Context, userID string) ([]domain.Sticker, error) {
	return s.store.Stickers.Snapshot(ctx, userID)
}

// Create adds a sticker to the tray. The payload must be a decodable
// image; rejecting it here keeps broken payloads out of every later
// doodle render.
func (s *StickerService) Create(ctx context.Context, userID string, req *CreateStickerRequest) (*domain.Sticker, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if _, err := draw.DecodeDataURL(req.DataURL); err != nil {
		return nil, apperr.Validation("data_url is not a decodable image").WithCause(err)
	}

	now := id.NowMs()
	sticker := &domain.Sticker{
		ID:          id.MustGenerate("stk"),
		Name:        req.Name,
		DataURL:     req.DataURL,
		CreatedAt:   time.UnixMilli(now),
		CreatedAtMs: now,
	}
	sticker.Normalize(now)

	if err := s.store.Stickers.Create(ctx, userID, sticker); err != nil {
		return nil, err
	}

	s.logger.Info("sticker created", "user_id", userID, "sticker_id", sticker.ID)
	return sticker, nil
}

// Delete removes a sticker and clears every reference to it: book badges
// and goal rewards that pointed at it become unset instead of dangling.
// Placed copies inside doodles keep their own payload and are untouched.
func (s *StickerService) Delete(ctx context.Context, userID, stickerID string) error {
	if err := s.store.Stickers.Delete(ctx, userID, stickerID); err != nil {
		return err
	}

	books, err := s.store.Books.Snapshot(ctx, userID)
	if err != nil {
		return err
	}
	goals, err := s.store.Goals.Snapshot(ctx, userID)
	if err != nil {
		return err
	}

	bookIDs, goalIDs := domain.StickerReferents(stickerID, books, goals)

	for _, bookID := range bookIDs {
		book, err := s.store.Books.Get(ctx, userID, bookID)
		if err != nil {
			continue
		}
		book.StickerID = ""
		if err := s.store.Books.Put(ctx, userID, book); err != nil {
			return err
		}
	}
	for _, goalID := range goalIDs {
		goal, err := s.store.Goals.Get(ctx, userID, goalID)
		if err != nil {
			continue
		}
		goal.RewardStickerID = ""
		if err := s.store.Goals.Put(ctx, userID, goal); err != nil {
			return err
		}
	}

	s.logger.Info("sticker deleted",
		"user_id", userID,
		"sticker_id", stickerID,
		"cleared_books", len(bookIDs),
		"cleared_goals", len(goalIDs),
	)
	return nil
}

// GrantDaily issues the sticker-of-the-day if the user has not received it
// yet. Returns nil when today's sticker was already granted.
func (s *StickerService) GrantDaily(ctx context.Context, userID string) (*domain.Sticker, error) {
	return s.daily.Grant(ctx, userID, time.Now())
}
