package store

import (
	"context"
	"errors"

	"github.com/dgraph-io/badger/v4"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
)

// userMeta is the per-user meta document. It holds small account-scoped
// state that does not belong to any collection.
type userMeta struct {
	// DailyStickerDay is the day-key of the last granted daily sticker.
	DailyStickerDay string `json:"daily_sticker_day"`
}

// DailyMarker returns the day-key of the last granted daily sticker, or ""
// if none has been granted yet.
func (s *Store) DailyMarker(ctx context.Context, userID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	var meta userMeta
	err := s.get([]byte(metaKey(userID)), &meta)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return meta.DailyStickerDay, nil
}

// SetDailyMarker records the day-key of the last granted daily sticker.
func (s *Store) SetDailyMarker(ctx context.Context, userID, dayKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var meta userMeta
	err := s.get([]byte(metaKey(userID)), &meta)
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}

	meta.DailyStickerDay = dayKey
	return s.set([]byte(metaKey(userID)), &meta)
}

// CreateSticker stores a sticker in the user's tray. Satisfies the daily
// generator's store dependency.
func (s *Store) CreateSticker(ctx context.Context, userID string, sticker *domain.Sticker) error {
	return s.Stickers.Create(ctx, userID, sticker)
}
