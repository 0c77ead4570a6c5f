package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cozyshelfapp/shelf-server/internal/domain"
	apperr "github.com/cozyshelfapp/shelf-server/internal/errors"
	"github.com/cozyshelfapp/shelf-server/internal/shelf"
)

func TestBookService_CreateDefaults(t *testing.T) {
	env := setupServices(t, nil)
	userID := env.signup(t, "reader@example.com")

	book, err := env.books.Create(context.Background(), userID, &CreateBookRequest{})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultTitle, book.Title, "an empty title defaults")
	assert.Equal(t, domain.StatusToRead, book.Status)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, domain.CanvasWidth, book.Doodle.Width)
}

func TestBookService_CreateValidation(t *testing.T) {
	env := setupServices(t, nil)
	userID := env.signup(t, "reader@example.com")

	_, err := env.books.Create(context.Background(), userID, &CreateBookRequest{
		Link: "not a url", Rating: 9,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestBookService_AsyncCoverFetch(t *testing.T) {
	env := setupServices(t, stubCovers{url: "https://covers.test/b/id/42-L.jpg"})
	userID := env.signup(t, "reader@example.com")

	book, err := env.books.Create(context.Background(), userID, &CreateBookRequest{Title: "Deep Work"})
	require.NoError(t, err)
	assert.Empty(t, book.FetchedCoverURL, "creation returns before the lookup finishes")

	require.Eventually(t, func() bool {
		got, err := env.books.Get(context.Background(), userID, book.ID)
		return err == nil && got.FetchedCoverURL == "https://covers.test/b/id/42-L.jpg"
	}, 3*time.Second, 10*time.Millisecond)
}

func TestBookService_CoverFetchFailureLeavesBookIntact(t *testing.T) {
	env := setupServices(t, stubCovers{url: ""})
	userID := env.signup(t, "reader@example.com")

	book, err := env.books.Create(context.Background(), userID, &CreateBookRequest{Title: "Obscure Zine"})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	got, err := env.books.Get(context.Background(), userID, book.ID)
	require.NoError(t, err)
	assert.Empty(t, got.FetchedCoverURL)
	assert.Equal(t, "Obscure Zine", got.Title)
}

func TestBookService_ExplicitCoverSkipsLookup(t *testing.T) {
	env := setupServices(t, stubCovers{url: "https://covers.test/should-not-be-used.jpg"})
	userID := env.signup(t, "reader@example.com")

	book, err := env.books.Create(context.Background(), userID, &CreateBookRequest{
		Title:    "Covered",
		CoverURL: "https://example.com/mine.jpg",
	})
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
	got, err := env.books.Get(context.Background(), userID, book.ID)
	require.NoError(t, err)
	assert.Empty(t, got.FetchedCoverURL, "a user-set cover suppresses the lookup")
	assert.Equal(t, "https://example.com/mine.jpg", got.CoverSource())
}

func TestBookService_UpdatePatchesOnlyGivenFields(t *testing.T) {
	env := setupServices(t, nil)
	userID := env.signup(t, "reader@example.com")

	book, err := env.books.Create(context.Background(), userID, &CreateBookRequest{
		Title: "Deep Work", Notes: "keep these notes",
	})
	require.NoError(t, err)

	rating := 4
	status := "read"
	updated, err := env.books.Update(context.Background(), userID, book.ID, &UpdateBookRequest{
		Rating: &rating,
		Status: &status,
	})
	require.NoError(t, err)

	assert.Equal(t, 4, updated.Rating)
	assert.Equal(t, domain.StatusRead, updated.Status)
	assert.Equal(t, "Deep Work", updated.Title)
	assert.Equal(t, "keep these notes", updated.Notes)
}

func TestBookService_UpdateStickerRef(t *testing.T) {
	env := setupServices(t, nil)
	userID := env.signup(t, "reader@example.com")

	book, err := env.books.Create(context.Background(), userID, &CreateBookRequest{Title: "Badged"})
	require.NoError(t, err)

	tray, err := env.stickers.List(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, tray)

	stickerID := tray[0].ID
	updated, err := env.books.Update(context.Background(), userID, book.ID, &UpdateBookRequest{
		StickerID: &stickerID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StickerRef(stickerID), updated.StickerID)

	ghost := "stk-ghost"
	_, err = env.books.Update(context.Background(), userID, book.ID, &UpdateBookRequest{StickerID: &ghost})
	assert.ErrorIs(t, err, apperr.ErrValidation, "refs to missing stickers are rejected")

	empty := ""
	updated, err = env.books.Update(context.Background(), userID, book.ID, &UpdateBookRequest{StickerID: &empty})
	require.NoError(t, err)
	assert.True(t, updated.StickerID.IsZero(), "an empty id clears the badge")
}

func TestBookService_ListAppliesQuery(t *testing.T) {
	env := setupServices(t, nil)
	userID := env.signup(t, "reader@example.com")

	_, err := env.books.Create(context.Background(), userID, &CreateBookRequest{
		Title: "Deep Work", Status: "read", FinishedAt: "2026-03-01",
	})
	require.NoError(t, err)
	_, err = env.books.Create(context.Background(), userID, &CreateBookRequest{
		Title: "Unread Pile", Status: "toread",
	})
	require.NoError(t, err)

	books, err := env.books.List(context.Background(), userID, shelf.Query{Status: "read"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Deep Work", books[0].Title)

	books, err = env.books.List(context.Background(), userID, shelf.Query{Search: "pile"})
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Unread Pile", books[0].Title)
}

func TestBookService_Delete(t *testing.T) {
	env := setupServices(t, nil)
	userID := env.signup(t, "reader@example.com")

	book, err := env.books.Create(context.Background(), userID, &CreateBookRequest{Title: "Gone"})
	require.NoError(t, err)

	require.NoError(t, env.books.Delete(context.Background(), userID, book.ID))
	require.NoError(t, env.books.Delete(context.Background(), userID, book.ID))

	_, err = env.books.Get(context.Background(), userID, book.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
