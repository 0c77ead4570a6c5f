package service

import (
	"context"
	"time"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
	apperr "github.com/cozyshelfapp/shelf-server/internal/errors"
	"github.com/cozyshelfapp/shelf-server/internal/id"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
	"github.com/cozyshelfapp/shelf-server/internal/shelf"
	"github.com/cozyshelfapp/shelf-server/internal/store"
	"github.com/cozyshelfapp/shelf-server/internal/validation"
)

// coverFetchTimeout bounds the background cover lookup after a book is
// created.
const coverFetchTimeout = 30 * time.Second

// CoverLookup finds a cover image URL for a title. Satisfied by
// covers.Client. Lookups are best effort and return "" on failure.
type CoverLookup interface {
	Lookup(ctx context.Context, title string) string
}

// BookService manages the shelf's books.
type BookService struct {
	store     *store.Store
	covers    CoverLookup
	validator *validation.Validator
	logger    *logger.Logger
}

// NewBookService creates a new book service. covers may be nil to disable
// automatic cover lookup.
func NewBookService(s *store.Store, covers CoverLookup, v *validation.Validator, log *logger.Logger) *BookService {
	return &BookService{
		store:     s,
		covers:    covers,
		validator: v,
		logger:    log,
	}
}

// CreateBookRequest contains new book data. Everything except the title is
// optional.
type CreateBookRequest struct {
	Title      string `json:"title" validate:"max=500"`
	Link       string `json:"link" validate:"omitempty,url"`
	Notes      string `json:"notes"`
	Status     string `json:"status" validate:"omitempty,oneof=read toread"`
	Rating     int    `json:"rating" validate:"gte=0,lte=5"`
	FinishedAt string `json:"finished_at"`
	CoverURL   string `json:"cover_url" validate:"omitempty,url"`
}

// UpdateBookRequest patches a book. Nil fields are left untouched, so a
// client can change one field without racing writes to the others.
type UpdateBookRequest struct {
	Title      *string `json:"title" validate:"omitempty,max=500"`
	Link       *string `json:"link"`
	Notes      *string `json:"notes"`
	Status     *string `json:"status" validate:"omitempty,oneof=read toread"`
	Rating     *int    `json:"rating" validate:"omitempty,gte=0,lte=5"`
	FinishedAt *string `json:"finished_at"`
	CoverURL   *string `json:"cover_url"`
	StickerID  *string `json:"sticker_id"`
}

// List returns the user's shelf filtered and ordered by the query.
func (s *BookService) List(ctx context.Context, userID string, q shelf.Query) ([]domain.Book, error) {
	snap, err := s.store.Books.Snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return shelf.Apply(snap, q), nil
}

// Get retrieves one book.
func (s *BookService) Get(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	return s.store.Books.Get(ctx, userID, bookID)
}

// Create adds a book to the shelf. When the book carries no cover URL, a
// background lookup tries to find one; the book is usable immediately
// either way.
func (s *BookService) Create(ctx context.Context, userID string, req *CreateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	now := id.NowMs()
	book := &domain.Book{
		ID:          id.MustGenerate("bk"),
		Title:       req.Title,
		Link:        req.Link,
		Notes:       req.Notes,
		Status:      domain.Status(req.Status),
		Rating:      req.Rating,
		FinishedAt:  req.FinishedAt,
		CoverURL:    req.CoverURL,
		CreatedAtMs: now,
		Doodle:      domain.NewDoodle(),
	}
	book.Normalize(now)

	if err := s.store.Books.Create(ctx, userID, book); err != nil {
		return nil, err
	}

	if req.CoverURL == "" && s.covers != nil {
		go s.fetchCover(userID, book.ID, book.Title)
	}

	s.logger.Info("book created", "user_id", userID, "book_id", book.ID)
	return book, nil
}

// Update applies a partial update to a book.
func (s *BookService) Update(ctx context.Context, userID, bookID string, req *UpdateBookRequest) (*domain.Book, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.store.Books.Get(ctx, userID, bookID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Link != nil {
		book.Link = *req.Link
	}
	if req.Notes != nil {
		book.Notes = *req.Notes
	}
	if req.Status != nil {
		book.Status = domain.Status(*req.Status)
	}
	if req.Rating != nil {
		book.Rating = *req.Rating
	}
	if req.FinishedAt != nil {
		book.FinishedAt = *req.FinishedAt
	}
	if req.CoverURL != nil {
		book.CoverURL = *req.CoverURL
	}
	if req.StickerID != nil {
		ref := domain.StickerRef(*req.StickerID)
		if !ref.IsZero() {
			if _, err := s.store.Stickers.Get(ctx, userID, string(ref)); err != nil {
				return nil, apperr.Validationf("sticker %s does not exist", ref)
			}
		}
		book.StickerID = ref
	}

	book.Normalize(book.CreatedAtMs)
	if err := s.store.Books.Put(ctx, userID, book); err != nil {
		return nil, err
	}
	return book, nil
}

// Delete removes a book. Deleting an already deleted book succeeds.
func (s *BookService) Delete(ctx context.Context, userID, bookID string) error {
	if err := s.store.Books.Delete(ctx, userID, bookID); err != nil {
		return err
	}
	s.logger.Info("book deleted", "user_id", userID, "book_id", bookID)
	return nil
}

// fetchCover looks a cover up in the background and attaches it. Every
// failure path leaves the book exactly as it was; a missing cover is never
// an error the user sees.
func (s *BookService) fetchCover(userID, bookID, title string) {
	ctx, cancel := context.WithTimeout(context.Background(), coverFetchTimeout)
	defer cancel()

	coverURL := s.covers.Lookup(ctx, title)
	if coverURL == "" {
		return
	}

	// Re-read: the book may have been edited or deleted while we looked.
	book, err := s.store.Books.Get(ctx, userID, bookID)
	if err != nil {
		return
	}
	if book.CoverURL != "" || book.FetchedCoverURL != "" {
		return
	}

	book.FetchedCoverURL = coverURL
	if err := s.store.Books.Put(ctx, userID, book); err != nil {
		s.logger.Warn("failed to attach fetched cover",
			"user_id", userID,
			"book_id", bookID,
			"error", err,
		)
		return
	}

	s.logger.Debug("cover attached", "book_id", bookID, "cover_url", coverURL)
}
