package sync_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
	"github.com/cozyshelfapp/shelf-server/internal/store"
	"github.com/cozyshelfapp/shelf-server/internal/sync"
)

func setup(t *testing.T) (*store.Store, *sync.Hub) {
	t.Helper()

	hub := sync.NewHub()
	s, err := store.NewInMemory(nil, hub)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, hub
}

func book(id string, createdAtMs int64) *domain.Book {
	return &domain.Book{
		ID:          id,
		Title:       "Book " + id,
		Status:      domain.StatusRead,
		CreatedAt:   time.UnixMilli(createdAtMs),
		CreatedAtMs: createdAtMs,
	}
}

func TestReconciler_InitialLoadRunsHooks(t *testing.T) {
	s, hub := setup(t)
	ctx := context.Background()
	require.NoError(t, s.Books.Create(ctx, "usr-1", book("bk-1", 100)))

	var rendered [][]domain.Book
	r := sync.NewReconciler(s, hub, nil, "usr-1", sync.Hooks{
		OnBooks: func(books []domain.Book) { rendered = append(rendered, books) },
	})
	require.NoError(t, r.Start(ctx))
	defer r.Stop()

	require.Len(t, rendered, 1, "persisted state renders before any change event")
	assert.Len(t, rendered[0], 1)
	assert.Len(t, r.Books(), 1)
}

func TestReconciler_ChangeRefreshesOnlyThatCollection(t *testing.T) {
	s, hub := setup(t)
	ctx := context.Background()

	var bookRenders, goalRenders int
	r := sync.NewReconciler(s, hub, nil, "usr-1", sync.Hooks{
		OnBooks: func([]domain.Book) { bookRenders++ },
		OnGoals: func([]domain.Goal) { goalRenders++ },
	})
	require.NoError(t, r.Start(ctx))
	defer r.Stop()
	bookRenders, goalRenders = 0, 0 // drop the initial-load renders

	require.NoError(t, s.Books.Create(ctx, "usr-1", book("bk-1", 100)))

	assert.Equal(t, 1, bookRenders)
	assert.Zero(t, goalRenders, "a book change does not touch the goal view")
	assert.Len(t, r.Books(), 1)
	assert.Empty(t, r.Goals())
}

func TestReconciler_SnapshotReplacedWholesale(t *testing.T) {
	s, hub := setup(t)
	ctx := context.Background()
	require.NoError(t, s.Books.Create(ctx, "usr-1", book("bk-1", 100)))

	r := sync.NewReconciler(s, hub, nil, "usr-1", sync.Hooks{})
	require.NoError(t, r.Start(ctx))
	defer r.Stop()

	before := r.Books()
	require.NoError(t, s.Books.Create(ctx, "usr-1", book("bk-2", 200)))

	after := r.Books()
	assert.Len(t, after, 2)
	assert.Len(t, before, 1, "an earlier snapshot never mutates under its holder")
	assert.Equal(t, "bk-2", after[0].ID, "newest first")
}

func TestReconciler_OtherUsersChangesIgnored(t *testing.T) {
	s, hub := setup(t)
	ctx := context.Background()

	r := sync.NewReconciler(s, hub, nil, "usr-1", sync.Hooks{})
	require.NoError(t, r.Start(ctx))
	defer r.Stop()

	require.NoError(t, s.Books.Create(ctx, "usr-2", book("bk-1", 100)))

	assert.Empty(t, r.Books())
}

func TestReconciler_StopDetachesAndIsIdempotent(t *testing.T) {
	s, hub := setup(t)
	ctx := context.Background()
	require.NoError(t, s.Books.Create(ctx, "usr-1", book("bk-1", 100)))

	var renders int
	r := sync.NewReconciler(s, hub, nil, "usr-1", sync.Hooks{
		OnBooks: func([]domain.Book) { renders++ },
	})
	require.NoError(t, r.Start(ctx))

	held := r.Books()
	r.Stop()
	r.Stop() // second stop is a no-op

	require.NoError(t, s.Books.Create(ctx, "usr-1", book("bk-2", 200)))

	assert.Equal(t, 1, renders, "no renders after stop")
	assert.Len(t, held, 1, "snapshots taken before stop stay frozen")
	assert.Len(t, r.Books(), 1, "the reconciler state itself stops updating")
}

func TestReconciler_Book(t *testing.T) {
	s, hub := setup(t)
	ctx := context.Background()
	require.NoError(t, s.Books.Create(ctx, "usr-1", book("bk-1", 100)))

	r := sync.NewReconciler(s, hub, nil, "usr-1", sync.Hooks{})
	require.NoError(t, r.Start(ctx))
	defer r.Stop()

	got, ok := r.Book("bk-1")
	require.True(t, ok)
	assert.Equal(t, "Book bk-1", got.Title)

	_, ok = r.Book("bk-missing")
	assert.False(t, ok)
}

func TestHub_UnsubscribeIdempotent(t *testing.T) {
	hub := sync.NewHub()

	var calls int
	unsub := hub.Subscribe("usr-1", store.CollectionBooks, func(store.ChangeEvent) { calls++ })

	hub.Emit(store.ChangeEvent{UserID: "usr-1", Collection: store.CollectionBooks})
	unsub()
	unsub()
	hub.Emit(store.ChangeEvent{UserID: "usr-1", Collection: store.CollectionBooks})

	assert.Equal(t, 1, calls)
}

func TestHub_IgnoresForeignEvents(t *testing.T) {
	hub := sync.NewHub()

	var calls int
	defer hub.Subscribe("usr-1", store.CollectionBooks, func(store.ChangeEvent) { calls++ })()

	hub.Emit("not a change event")
	hub.Emit(store.ChangeEvent{UserID: "usr-1", Collection: store.CollectionGoals})

	assert.Zero(t, calls)
}
