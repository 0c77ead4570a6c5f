package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cozyshelfapp/shelf-server/internal/auth"
	"github.com/cozyshelfapp/shelf-server/internal/daily"
	"github.com/cozyshelfapp/shelf-server/internal/logger"
	"github.com/cozyshelfapp/shelf-server/internal/store"
	"github.com/cozyshelfapp/shelf-server/internal/validation"
)

// testEnv bundles the services under test over one in-memory store.
type testEnv struct {
	store    *store.Store
	auth     *AuthService
	books    *BookService
	stickers *StickerService
	goals    *GoalService
	doodles  *DoodleService
	backups  *BackupService
}

func setupServices(t *testing.T, covers CoverLookup) *testEnv {
	t.Helper()

	s, err := store.NewInMemory(nil, store.NewNoopEmitter())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	keyHex, err := auth.GenerateKeyHex()
	require.NoError(t, err)
	tokens, err := auth.NewTokenService(keyHex, time.Hour)
	require.NoError(t, err)

	log := logger.NewDiscard()
	v := validation.New()
	gen := daily.NewGenerator(s, log)

	return &testEnv{
		store:    s,
		auth:     NewAuthService(s, tokens, v, log),
		books:    NewBookService(s, covers, v, log),
		stickers: NewStickerService(s, gen, v, log),
		goals:    NewGoalService(s, v, log),
		doodles:  NewDoodleService(s, v, log),
		backups:  NewBackupService(s, log),
	}
}

// signup creates a test account and returns its user ID.
func (e *testEnv) signup(t *testing.T, email string) string {
	t.Helper()

	res, err := e.auth.Signup(context.Background(), &SignupRequest{
		Email:       email,
		Password:    "hunter22hunter22",
		DisplayName: "Reader",
	})
	require.NoError(t, err)
	return res.User.ID
}

// stubCovers is a deterministic CoverLookup for tests.
type stubCovers struct {
	url string
}

func (c stubCovers) Lookup(_ context.Context, _ string) string {
	return c.url
}
