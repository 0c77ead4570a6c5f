package sync

import (
	"context"
	stdsync "sync"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
	"github.com/cozyshelfapp/shelf-server/internal/store"
)

// Source reads collection snapshots. Satisfied by store.Store.
type Source interface {
	BookSnapshot(ctx context.Context, userID string) ([]domain.Book, error)
	StickerSnapshot(ctx context.Context, userID string) ([]domain.Sticker, error)
	GoalSnapshot(ctx context.Context, userID string) ([]domain.Goal, error)
}

// Hooks are invoked after a collection snapshot is replaced, with the new
// snapshot. Nil hooks are skipped. The slice passed to a hook is owned by
// the reconciler's current state; hooks must treat it as read-only.
type Hooks struct {
	OnBooks    func([]domain.Book)
	OnStickers func([]domain.Sticker)
	OnGoals    func([]domain.Goal)
}

// Reconciler maintains live snapshots of one user's three collections. It
// subscribes to the hub on Start and refreshes the affected collection on
// every change event. Each refresh swaps in a freshly read slice, so a
// snapshot handed out earlier never changes under its holder, including
// after Stop.
type Reconciler struct {
	source Source
	hub    *Hub
	logger *logger.Logger
	userID string
	hooks  Hooks

	mu       stdsync.RWMutex
	books    []domain.Book
	stickers []domain.Sticker
	goals    []domain.Goal

	unsubs []func()
	once   stdsync.Once
}

// NewReconciler creates a reconciler for one user.
func NewReconciler(source Source, hub *Hub, log *logger.Logger, userID string, hooks Hooks) *Reconciler {
	return &Reconciler{
		source: source,
		hub:    hub,
		logger: log,
		userID: userID,
		hooks:  hooks,
	}
}

// Start loads the initial snapshots and subscribes to all three
// collections. The initial load runs the hooks too, so views render once
// from persisted state before any change arrives.
func (r *Reconciler) Start(ctx context.Context) error {
	if err := r.refreshBooks(ctx); err != nil {
		return err
	}
	if err := r.refreshStickers(ctx); err != nil {
		return err
	}
	if err := r.refreshGoals(ctx); err != nil {
		return err
	}

	r.unsubs = []func(){
		r.hub.Subscribe(r.userID, store.CollectionBooks, func(store.ChangeEvent) {
			r.refreshOrLog(ctx, store.CollectionBooks, r.refreshBooks)
		}),
		r.hub.Subscribe(r.userID, store.CollectionStickers, func(store.ChangeEvent) {
			r.refreshOrLog(ctx, store.CollectionStickers, r.refreshStickers)
		}),
		r.hub.Subscribe(r.userID, store.CollectionGoals, func(store.ChangeEvent) {
			r.refreshOrLog(ctx, store.CollectionGoals, r.refreshGoals)
		}),
	}
	return nil
}

// Stop detaches all three subscriptions. Safe to call more than once, and
// safe to call without Start.
func (r *Reconciler) Stop() {
	r.once.Do(func() {
		for _, unsub := range r.unsubs {
			unsub()
		}
		r.unsubs = nil
	})
}

// Books returns the current book snapshot.
func (r *Reconciler) Books() []domain.Book {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.books
}

// Stickers returns the current sticker tray snapshot.
func (r *Reconciler) Stickers() []domain.Sticker {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.stickers
}

// Goals returns the current goal snapshot.
func (r *Reconciler) Goals() []domain.Goal {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.goals
}

// Book looks up one book in the current snapshot.
func (r *Reconciler) Book(bookID string) (*domain.Book, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.books {
		if r.books[i].ID == bookID {
			b := r.books[i]
			return &b, true
		}
	}
	return nil, false
}

// refreshOrLog refreshes one collection and logs failures. A failed refresh
// keeps the previous snapshot; the next change event retries.
func (r *Reconciler) refreshOrLog(ctx context.Context, collection string, refresh func(context.Context) error) {
	if err := refresh(ctx); err != nil && r.logger != nil {
		r.logger.Warn("snapshot refresh failed",
			"user_id", r.userID,
			"collection", collection,
			"error", err,
		)
	}
}

func (r *Reconciler) refreshBooks(ctx context.Context) error {
	snap, err := r.source.BookSnapshot(ctx, r.userID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.books = snap
	r.mu.Unlock()

	if r.hooks.OnBooks != nil {
		r.hooks.OnBooks(snap)
	}
	return nil
}

func (r *Reconciler) refreshStickers(ctx context.Context) error {
	snap, err := r.source.StickerSnapshot(ctx, r.userID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.stickers = snap
	r.mu.Unlock()

	if r.hooks.OnStickers != nil {
		r.hooks.OnStickers(snap)
	}
	return nil
}

func (r *Reconciler) refreshGoals(ctx context.Context) error {
	snap, err := r.source.GoalSnapshot(ctx, r.userID)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.goals = snap
	r.mu.Unlock()

	if r.hooks.OnGoals != nil {
		r.hooks.OnGoals(snap)
	}
	return nil
}
