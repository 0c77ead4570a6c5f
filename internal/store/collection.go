package store

import (
	"context"
	"encoding/json/v2"
	"errors"
	"fmt"
	"iter"
	"sort"

	"github.com/dgraph-io/badger/v4"

	apperr "github.com/cozyshelfapp/shelf-server/internal/errors"
)

// Collection provides CRUD and snapshot reads over one per-user keyspace.
// Every mutation emits a ChangeEvent for the affected user.
type Collection[T any] struct {
	store *Store
	name  string
	keyOf func(*T) string
	less  func(a, b *T) bool
}

// NewCollection creates a collection named name. keyOf extracts the entity
// ID; less defines the snapshot order.
func NewCollection[T any](s *Store, name string, keyOf func(*T) string, less func(a, b *T) bool) *Collection[T] {
	return &Collection[T]{store: s, name: name, keyOf: keyOf, less: less}
}

// Name returns the collection name as carried in change events.
func (c *Collection[T]) Name() string {
	return c.name
}

// Create stores a new entity. Returns ErrAlreadyExists if an entity with
// the same ID already exists for this user.
func (c *Collection[T]) Create(ctx context.Context, userID string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(collectionPrefix(userID, c.name) + c.keyOf(entity))
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	err = c.store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if err == nil {
			return apperr.ErrAlreadyExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to check existing key: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	c.store.emit(userID, c.name)
	return nil
}

// Get retrieves an entity by ID. Returns ErrNotFound if it does not exist.
func (c *Collection[T]) Get(ctx context.Context, userID, id string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := []byte(collectionPrefix(userID, c.name) + id)
	var entity T

	err := c.store.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperr.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}

		return item.Value(func(val []byte) error {
			if err := json.Unmarshal(val, &entity); err != nil {
				return fmt.Errorf("failed to unmarshal entity: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return &entity, nil
}

// Put overwrites an existing entity. Returns ErrNotFound if it does not
// exist; creation must go through Create so ID collisions surface.
func (c *Collection[T]) Put(ctx context.Context, userID string, entity *T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(collectionPrefix(userID, c.name) + c.keyOf(entity))
	data, err := json.Marshal(entity)
	if err != nil {
		return fmt.Errorf("failed to marshal entity: %w", err)
	}

	err = c.store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return apperr.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to get existing key: %w", err)
		}
		return txn.Set(key, data)
	})
	if err != nil {
		return err
	}

	c.store.emit(userID, c.name)
	return nil
}

// Delete removes an entity by ID. Deleting a missing entity is a no-op and
// emits no event.
func (c *Collection[T]) Delete(ctx context.Context, userID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := []byte(collectionPrefix(userID, c.name) + id)
	deleted := false

	err := c.store.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to get key: %w", err)
		}
		deleted = true
		return txn.Delete(key)
	})
	if err != nil {
		return err
	}

	if deleted {
		c.store.emit(userID, c.name)
	}
	return nil
}

// List returns an iterator over one user's entities in key order.
func (c *Collection[T]) List(ctx context.Context, userID string) iter.Seq2[*T, error] {
	prefix := []byte(collectionPrefix(userID, c.name))

	return func(yield func(*T, error) bool) {
		c.store.db.View(func(txn *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			opts.PrefetchValues = true

			it := txn.NewIterator(opts)
			defer it.Close()

			for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
				if ctx.Err() != nil {
					yield(nil, ctx.Err())
					return ctx.Err()
				}

				var entity T
				err := it.Item().Value(func(val []byte) error {
					return json.Unmarshal(val, &entity)
				})
				if err != nil {
					yield(nil, err)
					return err
				}

				if !yield(&entity, nil) {
					return nil // Consumer stopped early
				}
			}
			return nil
		})
	}
}

// Snapshot returns all of one user's entities in the collection's snapshot
// order. The slice is freshly allocated; callers own it outright, so a
// listener holding an older snapshot never sees it mutate underneath.
func (c *Collection[T]) Snapshot(ctx context.Context, userID string) ([]T, error) {
	var entities []T
	for entity, err := range c.List(ctx, userID) {
		if err != nil {
			return nil, err
		}
		entities = append(entities, *entity)
	}

	sort.SliceStable(entities, func(i, j int) bool {
		return c.less(&entities[i], &entities[j])
	})
	return entities, nil
}
