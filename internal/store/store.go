// Package store persists shelf data in a Badger key-value database. All
// collections are namespaced per user, and every mutation emits a change
// event so live views can refresh their snapshots.
package store

import (
	"encoding/json/v2"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
	"github.com/cozyshelfapp/shelf-server/internal/id"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
)

// EventEmitter receives change events for every store mutation. The store
// broadcasts changes without depending on who listens (SSE, reconcilers).
type EventEmitter interface {
	Emit(event any)
}

// NoopEmitter is a no-op implementation of EventEmitter for testing.
type NoopEmitter struct{}

// Emit implements EventEmitter.Emit as a no-op.
func (NoopEmitter) Emit(_ any) {}

// NewNoopEmitter creates a new no-op emitter for testing.
func NewNoopEmitter() EventEmitter {
	return NoopEmitter{}
}

// multiEmitter forwards every event to a list of emitters in order.
type multiEmitter []EventEmitter

func (m multiEmitter) Emit(event any) {
	for _, e := range m {
		e.Emit(event)
	}
}

// NewMultiEmitter fans events out to all given emitters.
func NewMultiEmitter(emitters ...EventEmitter) EventEmitter {
	return multiEmitter(emitters)
}

// ChangeEvent signals that one user's collection changed. Listeners are
// expected to re-read the collection snapshot; events carry no deltas.
type ChangeEvent struct {
	UserID     string `json:"user_id"`
	Collection string `json:"collection"`
	At         int64  `json:"at"`
}

// Collection names carried in change events.
const (
	CollectionBooks    = "books"
	CollectionStickers = "stickers"
	CollectionGoals    = "goals"
)

// Store wraps a Badger database instance.
type Store struct {
	db      *badger.DB
	logger  *logger.Logger
	emitter EventEmitter

	Books    *Collection[domain.Book]
	Stickers *Collection[domain.Sticker]
	Goals    *Collection[domain.Goal]
}

// New opens (or creates) the database at path. The emitter is required and
// receives a ChangeEvent for every collection mutation.
func New(path string, log *logger.Logger, emitter EventEmitter) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Sync writes to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	return open(opts, log, emitter)
}

// NewInMemory opens an ephemeral database. For tests.
func NewInMemory(log *logger.Logger, emitter EventEmitter) (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil

	return open(opts, log, emitter)
}

func open(opts badger.Options, log *logger.Logger, emitter EventEmitter) (*Store, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Store{
		db:      db,
		logger:  log,
		emitter: emitter,
	}
	s.initCollections()

	if log != nil {
		log.Info("database opened", "path", opts.Dir, "in_memory", opts.InMemory)
	}
	return s, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	if s.logger != nil {
		s.logger.Info("closing database connection")
	}
	return s.db.Close()
}

// initCollections wires the per-user collections with their snapshot order.
// All three feeds present newest entries first.
func (s *Store) initCollections() {
	s.Books = NewCollection[domain.Book](s, CollectionBooks,
		func(b *domain.Book) string { return b.ID },
		func(a, b *domain.Book) bool { return a.CreatedAtMs > b.CreatedAtMs },
	)
	s.Stickers = NewCollection[domain.Sticker](s, CollectionStickers,
		func(st *domain.Sticker) string { return st.ID },
		func(a, b *domain.Sticker) bool { return a.CreatedAtMs > b.CreatedAtMs },
	)
	s.Goals = NewCollection[domain.Goal](s, CollectionGoals,
		func(g *domain.Goal) string { return g.ID },
		func(a, b *domain.Goal) bool { return a.CreatedAtMs > b.CreatedAtMs },
	)
}

// emit broadcasts a collection change.
func (s *Store) emit(userID, collection string) {
	s.emitter.Emit(ChangeEvent{
		UserID:     userID,
		Collection: collection,
		At:         id.NowMs(),
	})
}

// Helper methods for database operations.

// get retrieves a value by key.
func (s *Store) get(key []byte, dest any) error {
	return s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, dest)
		})
	})
}

// set stores a value by key.
func (s *Store) set(key []byte, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	})
}

// exists checks if a key exists.
func (s *Store) exists(key []byte) (bool, error) {
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
