package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/cozyshelfapp/shelf-server/internal/errors"
)

func TestBackupService_ExportImportRoundTrip(t *testing.T) {
	env := setupServices(t, nil)
	ctx := context.Background()
	userID := env.signup(t, "reader@example.com")

	_, err := env.books.Create(ctx, userID, &CreateBookRequest{Title: "Deep Work", Status: "read"})
	require.NoError(t, err)
	_, err = env.goals.Create(ctx, userID, &CreateGoalRequest{Text: "Read 12 books"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, env.backups.Export(ctx, userID, &buf))

	// Import into a different account.
	otherID := env.signup(t, "other@example.com")
	res, err := env.backups.Import(ctx, otherID, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Books)
	assert.Equal(t, 1, res.Goals)
	assert.Positive(t, res.Stickers, "the starter pack travels with the export")

	books, err := env.store.Books.Snapshot(ctx, otherID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.Equal(t, "Deep Work", books[0].Title)
}

func TestBackupService_ImportIsAdditive(t *testing.T) {
	env := setupServices(t, nil)
	ctx := context.Background()
	userID := env.signup(t, "reader@example.com")

	existing, err := env.books.Create(ctx, userID, &CreateBookRequest{Title: "Already Here"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, env.backups.Export(ctx, userID, &buf))

	res, err := env.backups.Import(ctx, userID, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Books)

	books, err := env.store.Books.Snapshot(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, books, 2, "re-importing duplicates rather than overwrites")

	got, err := env.books.Get(ctx, userID, existing.ID)
	require.NoError(t, err)
	assert.Equal(t, "Already Here", got.Title)
}

func TestBackupService_ImportRejectsGarbage(t *testing.T) {
	env := setupServices(t, nil)
	userID := env.signup(t, "reader@example.com")

	_, err := env.backups.Import(context.Background(), userID, strings.NewReader("{broken"))
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
