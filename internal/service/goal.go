package service

import (
	"context"
	"time"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
	apperr "github.com/cozyshelfapp/shelf-server/internal/errors"
	"github.com/cozyshelfapp/shelf-server/internal/id"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
	"github.com/cozyshelfapp/shelf-server/internal/store"
	"github.com/cozyshelfapp/shelf-server/internal/validation"
)

// GoalService manages reading goals.
type GoalService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *logger.Logger
}

// NewGoalService creates a new goal service.
func NewGoalService(s *store.Store, v *validation.Validator, log *logger.Logger) *GoalService {
	return &GoalService{store: s, validator: v, logger: log}
}

// CreateGoalRequest contains new goal data.
type CreateGoalRequest struct {
	Text            string `json:"text" validate:"required,max=500"`
	Due             string `json:"due"`
	RewardStickerID string `json:"reward_sticker_id"`
}

// UpdateGoalRequest patches a goal. Nil fields are left untouched.
type UpdateGoalRequest struct {
	Text            *string `json:"text" validate:"omitempty,max=500"`
	Due             *string `json:"due"`
	Done            *bool   `json:"done"`
	RewardStickerID *string `json:"reward_sticker_id"`
}

// List returns the user's goals, newest first.
func (s *GoalService) List(ctx context.Context, userID string) ([]domain.Goal, error) {
	return s.store.Goals.Snapshot(ctx, userID)
}

// Create adds a goal.
func (s *GoalService) Create(ctx context.Context, userID string, req *CreateGoalRequest) (*domain.Goal, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	ref := domain.StickerRef(req.RewardStickerID)
	if !ref.IsZero() {
		if _, err := s.store.Stickers.Get(ctx, userID, string(ref)); err != nil {
			return nil, apperr.Validationf("sticker %s does not exist", ref)
		}
	}

	now := id.NowMs()
	goal := &domain.Goal{
		ID:              id.MustGenerate("gl"),
		Text:            req.Text,
		Due:             req.Due,
		RewardStickerID: ref,
		CreatedAt:       time.UnixMilli(now),
		CreatedAtMs:     now,
	}
	goal.Normalize(now)

	if err := s.store.Goals.Create(ctx, userID, goal); err != nil {
		return nil, err
	}

	s.logger.Info("goal created", "user_id", userID, "goal_id", goal.ID)
	return goal, nil
}

// Update applies a partial update to a goal.
func (s *GoalService) Update(ctx context.Context, userID, goalID string, req *UpdateGoalRequest) (*domain.Goal, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	goal, err := s.store.Goals.Get(ctx, userID, goalID)
	if err != nil {
		return nil, err
	}

	if req.Text != nil {
		goal.Text = *req.Text
	}
	if req.Due != nil {
		goal.Due = *req.Due
	}
	if req.Done != nil {
		goal.Done = *req.Done
	}
	if req.RewardStickerID != nil {
		ref := domain.StickerRef(*req.RewardStickerID)
		if !ref.IsZero() {
			if _, err := s.store.Stickers.Get(ctx, userID, string(ref)); err != nil {
				return nil, apperr.Validationf("sticker %s does not exist", ref)
			}
		}
		goal.RewardStickerID = ref
	}

	goal.Normalize(goal.CreatedAtMs)
	if err := s.store.Goals.Put(ctx, userID, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

// Delete removes a goal. Idempotent.
func (s *GoalService) Delete(ctx context.Context, userID, goalID string) error {
	return s.store.Goals.Delete(ctx, userID, goalID)
}
