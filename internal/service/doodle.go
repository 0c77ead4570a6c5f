package service

import (
	"context"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
	"github.com/cozyshelfapp/shelf-server/internal/draw"
	"github.com/cozyshelfapp/shelf-server/internal/id"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
	"github.com/cozyshelfapp/shelf-server/internal/store"
	"github.com/cozyshelfapp/shelf-server/internal/validation"
)

// DoodleService manages per-book doodles.
type DoodleService struct {
	store     *store.Store
	validator *validation.Validator
	logger    *logger.Logger
}

// NewDoodleService creates a new doodle service.
func NewDoodleService(s *store.Store, v *validation.Validator, log *logger.Logger) *DoodleService {
	return &DoodleService{store: s, validator: v, logger: log}
}

// SaveDoodleRequest is one committed editor session: the strokes and
// placed stickers drawn since the editor opened. Committing appends to the
// persisted doodle; it never replaces it.
type SaveDoodleRequest struct {
	Strokes  []domain.Stroke        `json:"strokes"`
	Elements []domain.PlacedSticker `json:"elements"`
}

// Get returns a book's doodle.
func (s *DoodleService) Get(ctx context.Context, userID, bookID string) (*domain.Doodle, error) {
	book, err := s.store.Books.Get(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}
	return &book.Doodle, nil
}

// Save merges a committed session into the book's doodle. Non-persistable
// strokes are dropped, budgets enforced, and the thumbnail hash refreshed
// before the book is written back.
func (s *DoodleService) Save(ctx context.Context, userID, bookID string, req *SaveDoodleRequest) (*domain.Doodle, error) {
	book, err := s.store.Books.Get(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	session := domain.Doodle{Strokes: req.Strokes, Elements: req.Elements}
	session.Normalize()

	book.Doodle.MergeSession(session.Strokes, session.Elements, id.NowMs())
	_, book.Doodle.ThumbHash = draw.RenderThumbnail(&book.Doodle)

	if err := s.store.Books.Put(ctx, userID, book); err != nil {
		return nil, err
	}

	s.logger.Debug("doodle saved",
		"user_id", userID,
		"book_id", bookID,
		"points", book.Doodle.PointCount(),
		"elements", len(book.Doodle.Elements),
	)
	return &book.Doodle, nil
}

// Clear wipes a book's doodle.
func (s *DoodleService) Clear(ctx context.Context, userID, bookID string) (*domain.Doodle, error) {
	book, err := s.store.Books.Get(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	book.Doodle.Clear(id.NowMs())
	if err := s.store.Books.Put(ctx, userID, book); err != nil {
		return nil, err
	}

	s.logger.Info("doodle cleared", "user_id", userID, "book_id", bookID)
	return &book.Doodle, nil
}

// ThumbnailPNG renders a book's doodle thumbnail as PNG bytes.
func (s *DoodleService) ThumbnailPNG(ctx context.Context, userID, bookID string) ([]byte, error) {
	book, err := s.store.Books.Get(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	png, _, err := draw.ThumbnailPNG(&book.Doodle)
	return png, err
}
