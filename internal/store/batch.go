package store

import (
	"context"
	"encoding/json/v2"
	"fmt"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
)

// ImportBatch writes an imported backup's entities in bulk using Badger's
// WriteBatch. Imports are additive; existing entries are never touched
// because the caller mints fresh IDs for everything it imports. One change
// event per non-empty collection is emitted after the flush.
func (s *Store) ImportBatch(ctx context.Context, userID string, books []domain.Book, stickers []domain.Sticker, goals []domain.Goal) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	batch := s.db.NewWriteBatch()
	defer batch.Cancel()

	for i := range books {
		if err := batchSet(batch.Set, collectionPrefix(userID, CollectionBooks)+books[i].ID, &books[i]); err != nil {
			return fmt.Errorf("batch set book: %w", err)
		}
	}
	for i := range stickers {
		if err := batchSet(batch.Set, collectionPrefix(userID, CollectionStickers)+stickers[i].ID, &stickers[i]); err != nil {
			return fmt.Errorf("batch set sticker: %w", err)
		}
	}
	for i := range goals {
		if err := batchSet(batch.Set, collectionPrefix(userID, CollectionGoals)+goals[i].ID, &goals[i]); err != nil {
			return fmt.Errorf("batch set goal: %w", err)
		}
	}

	if err := batch.Flush(); err != nil {
		return fmt.Errorf("flush batch: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("import batch flushed",
			"user_id", userID,
			"books", len(books),
			"stickers", len(stickers),
			"goals", len(goals),
		)
	}

	if len(books) > 0 {
		s.emit(userID, CollectionBooks)
	}
	if len(stickers) > 0 {
		s.emit(userID, CollectionStickers)
	}
	if len(goals) > 0 {
		s.emit(userID, CollectionGoals)
	}
	return nil
}

// batchSet marshals an entity and adds it to the write batch.
func batchSet(set func(key, val []byte) error, key string, entity any) error {
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("marshal entity: %w", err)
	}
	return set([]byte(key), data)
}
