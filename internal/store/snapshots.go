package store

import (
	"context"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
)

// Typed snapshot accessors. Live views depend on these through their own
// narrow interfaces instead of reaching into the collection fields.

// BookSnapshot returns the user's books, newest first.
func (s *Store) BookSnapshot(ctx context.Context, userID string) ([]domain.Book, error) {
	return s.Books.Snapshot(ctx, userID)
}

// StickerSnapshot returns the user's sticker tray, newest first.
func (s *Store) StickerSnapshot(ctx context.Context, userID string) ([]domain.Sticker, error) {
	return s.Stickers.Snapshot(ctx, userID)
}

// GoalSnapshot returns the user's goals, newest first.
func (s *Store) GoalSnapshot(ctx context.Context, userID string) ([]domain.Goal, error) {
	return s.Goals.Snapshot(ctx, userID)
}
